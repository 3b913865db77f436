// ref: MS-SMB2 2.2.1

package smbmsg

// HeaderSize is the fixed size of the packet header for every dialect.
const HeaderSize = 64

// MAGIC is the protocol identifier opening every plain SMB2 message.
var MAGIC = []byte{0xfe, 'S', 'M', 'B'}

// Header is the 64-byte packet header shared by requests and responses.
//
// Bytes 8:12 are a union: responses carry Status, SMB3 requests carry
// ChannelSequence in the low 16 bits. Both views are kept after decode;
// Encode writes Status when it is nonzero and ChannelSequence otherwise.
// Bytes 32:40 are the async/sync union selected by
// SMB2_FLAGS_ASYNC_COMMAND: AsyncId in async form, reserved bytes plus
// TreeId in sync form.
type Header struct {
	CreditCharge    uint16
	Status          NtStatus
	ChannelSequence uint16
	Command         Command
	CreditRequest   uint16
	Flags           uint32
	NextCommand     uint32
	MessageId       uint64
	AsyncId         uint64
	TreeId          uint32
	SessionId       uint64
	Signature       [16]byte
}

func (hdr *Header) IsResponse() bool {
	return hdr.Flags&SMB2_FLAGS_SERVER_TO_REDIR != 0
}

func (hdr *Header) IsAsync() bool {
	return hdr.Flags&SMB2_FLAGS_ASYNC_COMMAND != 0
}

func (hdr *Header) IsRelated() bool {
	return hdr.Flags&SMB2_FLAGS_RELATED_OPERATIONS != 0
}

func (hdr *Header) IsSigned() bool {
	return hdr.Flags&SMB2_FLAGS_SIGNED != 0
}

func (hdr *Header) Priority() uint32 {
	return (hdr.Flags & SMB2_FLAGS_PRIORITY_MASK) >> 4
}

// Encode renders the header into a fresh 64-byte slice.
func (hdr *Header) Encode() []byte {
	p := make([]byte, HeaderSize)
	hdr.EncodeTo(p)
	return p
}

// EncodeTo renders the header into p, which must hold at least
// HeaderSize bytes.
func (hdr *Header) EncodeTo(p []byte) {
	copy(p[:4], MAGIC)
	le.PutUint16(p[4:6], 64) // StructureSize
	le.PutUint16(p[6:8], hdr.CreditCharge)

	switch {
	case hdr.Status != 0:
		le.PutUint32(p[8:12], uint32(hdr.Status))
	default:
		le.PutUint16(p[8:10], hdr.ChannelSequence)
		le.PutUint16(p[10:12], 0)
	}

	le.PutUint16(p[12:14], uint16(hdr.Command))
	le.PutUint16(p[14:16], hdr.CreditRequest)
	le.PutUint32(p[16:20], hdr.Flags)
	le.PutUint32(p[20:24], hdr.NextCommand)
	le.PutUint64(p[24:32], hdr.MessageId)

	if hdr.IsAsync() {
		le.PutUint64(p[32:40], hdr.AsyncId)
	} else {
		le.PutUint32(p[32:36], 0) // Reserved
		le.PutUint32(p[36:40], hdr.TreeId)
	}

	le.PutUint64(p[40:48], hdr.SessionId)
	copy(p[48:64], hdr.Signature[:])
}

// DecodeHeader validates and decodes the header at the front of p and
// returns the remaining bytes of the message.
func DecodeHeader(p []byte) (*Header, []byte, error) {
	if len(p) < HeaderSize {
		return nil, nil, &MalformedHeaderError{
			Message: "packet shorter than the 64-byte header",
		}
	}

	if p[0] != MAGIC[0] || p[1] != MAGIC[1] || p[2] != MAGIC[2] || p[3] != MAGIC[3] {
		return nil, nil, &MalformedHeaderError{Message: "bad protocol id"}
	}

	if le.Uint16(p[4:6]) != 64 {
		return nil, nil, &MalformedHeaderError{Message: "bad header structure size"}
	}

	hdr := &Header{
		CreditCharge:    le.Uint16(p[6:8]),
		Status:          NtStatus(le.Uint32(p[8:12])),
		ChannelSequence: le.Uint16(p[8:10]),
		Command:         Command(le.Uint16(p[12:14])),
		CreditRequest:   le.Uint16(p[14:16]),
		Flags:           le.Uint32(p[16:20]),
		NextCommand:     le.Uint32(p[20:24]),
		MessageId:       le.Uint64(p[24:32]),
		SessionId:       le.Uint64(p[40:48]),
	}

	if hdr.IsAsync() {
		hdr.AsyncId = le.Uint64(p[32:40])
	} else {
		hdr.TreeId = le.Uint32(p[36:40])
	}

	copy(hdr.Signature[:], p[48:64])

	return hdr, p[HeaderSize:], nil
}
