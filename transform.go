// ref: MS-SMB2 2.2.41, 2.2.42

package smbmsg

import (
	"github.com/omnifocal/smbmsg/encode"
)

// MAGIC_TRANSFORM opens an encrypted (transformed) message envelope.
var MAGIC_TRANSFORM = []byte{0xfd, 'S', 'M', 'B'}

// MAGIC_COMPRESSED opens a compressed message envelope.
var MAGIC_COMPRESSED = []byte{0xfc, 'S', 'M', 'B'}

const SMB2_TRANSFORM_ENCRYPTED = 0x0001

// TransformedMessage is the 52-byte transform header plus the opaque
// ciphertext it envelopes. Encryption and decryption happen elsewhere;
// this type only frames the bytes.
type TransformedMessage struct {
	Signature           [16]byte
	Nonce               [16]byte
	OriginalMessageSize uint32
	Flags               uint16
	SessionId           uint64
	Ciphertext          []byte
}

// TransformHeaderSize is the fixed prefix before the ciphertext.
const TransformHeaderSize = 52

func (msg *TransformedMessage) Encode() []byte {
	p := make([]byte, TransformHeaderSize+len(msg.Ciphertext))

	copy(p[:4], MAGIC_TRANSFORM)
	copy(p[4:20], msg.Signature[:])
	copy(p[20:36], msg.Nonce[:])
	le.PutUint32(p[36:40], msg.OriginalMessageSize)
	le.PutUint16(p[42:44], msg.Flags)
	le.PutUint64(p[44:52], msg.SessionId)
	copy(p[52:], msg.Ciphertext)

	return p
}

func DecodeTransformed(p []byte) (*TransformedMessage, error) {
	if len(p) < TransformHeaderSize {
		return nil, &MalformedHeaderError{Message: "packet shorter than the transform header"}
	}
	if p[0] != MAGIC_TRANSFORM[0] || p[1] != MAGIC_TRANSFORM[1] || p[2] != MAGIC_TRANSFORM[2] || p[3] != MAGIC_TRANSFORM[3] {
		return nil, &MalformedHeaderError{Message: "bad transform protocol id"}
	}

	msg := &TransformedMessage{
		OriginalMessageSize: le.Uint32(p[36:40]),
		Flags:               le.Uint16(p[42:44]),
		SessionId:           le.Uint64(p[44:52]),
		Ciphertext:          append([]byte(nil), p[52:]...),
	}
	copy(msg.Signature[:], p[4:20])
	copy(msg.Nonce[:], p[20:36])

	return msg, nil
}

// ----------------------------------------------------------------------------
// Compressed envelope
//

const SMB2_COMPRESSION_FLAG_CHAINED = 0x0001

// CompressedMessage is the compression transform header plus its opaque
// payload. In the unchained form Offset is the count of uncompressed
// bytes preceding the compressed region; in the chained form the payload
// is a sequence of payload items read with ChainItems.
type CompressedMessage struct {
	OriginalCompressedSegmentSize uint32
	CompressionAlgorithm          uint16
	Flags                         uint16
	Offset                        uint32
	Payload                       []byte
}

func (msg *CompressedMessage) Chained() bool {
	return msg.Flags&SMB2_COMPRESSION_FLAG_CHAINED != 0
}

func (msg *CompressedMessage) Encode() []byte {
	p := make([]byte, 16+len(msg.Payload))

	copy(p[:4], MAGIC_COMPRESSED)
	le.PutUint32(p[4:8], msg.OriginalCompressedSegmentSize)
	le.PutUint16(p[8:10], msg.CompressionAlgorithm)
	le.PutUint16(p[10:12], msg.Flags)
	le.PutUint32(p[12:16], msg.Offset)
	copy(p[16:], msg.Payload)

	return p
}

func DecodeCompressed(p []byte) (*CompressedMessage, error) {
	if len(p) < 16 {
		return nil, &MalformedHeaderError{Message: "packet shorter than the compression header"}
	}
	if p[0] != MAGIC_COMPRESSED[0] || p[1] != MAGIC_COMPRESSED[1] || p[2] != MAGIC_COMPRESSED[2] || p[3] != MAGIC_COMPRESSED[3] {
		return nil, &MalformedHeaderError{Message: "bad compression protocol id"}
	}

	return &CompressedMessage{
		OriginalCompressedSegmentSize: le.Uint32(p[4:8]),
		CompressionAlgorithm:          le.Uint16(p[8:10]),
		Flags:                         le.Uint16(p[10:12]),
		Offset:                        le.Uint32(p[12:16]),
		Payload:                       append([]byte(nil), p[16:]...),
	}, nil
}

// CompressedChainItem is one payload of a chained compressed message.
type CompressedChainItem struct {
	CompressionAlgorithm uint16
	Flags                uint16
	OriginalPayloadSize  uint32
	Data                 []byte
}

// hasOriginalPayloadSize reports whether a chain item of this algorithm
// carries the OriginalPayloadSize field. It exists on the wire only for
// algorithms that actually compress.
func hasOriginalPayloadSize(algorithm uint16) bool {
	return algorithm != SMB2_COMPRESSION_NONE && algorithm != SMB2_COMPRESSION_PATTERN_V1
}

// ChainItems parses a chained compressed message into its payload items.
// The first item's header overlaps the envelope's algorithm, flags and
// offset fields, so its declared length counts from the start of Payload;
// later items carry their own 8-byte headers. The declared length covers
// the OriginalPayloadSize field when present.
func (msg *CompressedMessage) ChainItems() ([]CompressedChainItem, error) {
	if !msg.Chained() {
		return nil, &MalformedHeaderError{Message: "compressed message is not chained"}
	}

	var items []CompressedChainItem

	p := msg.Payload
	algorithm, flags := msg.CompressionAlgorithm, msg.Flags
	length := uint64(msg.Offset)

	for {
		item := CompressedChainItem{
			CompressionAlgorithm: algorithm,
			Flags:                flags,
		}

		if hasOriginalPayloadSize(algorithm) {
			if len(p) < 4 || length < 4 {
				return nil, &encoder.TruncatedBufferError{Expected: 4, Actual: len(p)}
			}
			item.OriginalPayloadSize = le.Uint32(p[:4])
			p = p[4:]
			length -= 4
		}

		if length > uint64(len(p)) {
			return nil, &encoder.TruncatedBufferError{Expected: int(length), Actual: len(p)}
		}
		item.Data = append([]byte(nil), p[:length]...)
		p = p[length:]

		items = append(items, item)

		if len(p) == 0 {
			return items, nil
		}
		if len(p) < 8 {
			return nil, &encoder.TruncatedBufferError{Expected: 8, Actual: len(p)}
		}
		algorithm = le.Uint16(p[:2])
		flags = le.Uint16(p[2:4])
		length = uint64(le.Uint32(p[4:8]))
		p = p[8:]
	}
}

// NewChainedCompressed frames items into a chained compressed message.
// The inverse of ChainItems: the first item's header becomes the
// envelope's algorithm, flags and offset fields.
func NewChainedCompressed(originalSize uint32, items []CompressedChainItem) (*CompressedMessage, error) {
	if len(items) == 0 {
		return nil, &MalformedHeaderError{Message: "chained compressed message needs at least one item"}
	}

	itemBytes := func(item *CompressedChainItem) []byte {
		var b []byte
		if hasOriginalPayloadSize(item.CompressionAlgorithm) {
			b = appendLeUint32(b, item.OriginalPayloadSize)
		}
		return append(b, item.Data...)
	}

	first := itemBytes(&items[0])

	msg := &CompressedMessage{
		OriginalCompressedSegmentSize: originalSize,
		CompressionAlgorithm:          items[0].CompressionAlgorithm,
		Flags:                         items[0].Flags | SMB2_COMPRESSION_FLAG_CHAINED,
		Offset:                        uint32(len(first)),
		Payload:                       first,
	}

	for i := 1; i < len(items); i++ {
		b := itemBytes(&items[i])

		var hdr [8]byte
		le.PutUint16(hdr[:2], items[i].CompressionAlgorithm)
		le.PutUint16(hdr[2:4], items[i].Flags)
		le.PutUint32(hdr[4:8], uint32(len(b)))
		msg.Payload = append(msg.Payload, hdr[:]...)
		msg.Payload = append(msg.Payload, b...)
	}

	return msg, nil
}

func appendLeUint32(b []byte, v uint32) []byte {
	var x [4]byte
	le.PutUint32(x[:], v)
	return append(b, x[:]...)
}
