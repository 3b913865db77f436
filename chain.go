// ref: MS-SMB2 3.2.5.1.5, 2.2.1

package smbmsg

import (
	"github.com/omnifocal/smbmsg/encode"
)

// ChainDecoder walks a compounded packet one message at a time:
//
//	chain := NewChainDecoder(p)
//	for chain.Next() {
//		hdr, body := chain.Header(), chain.Body()
//		...
//	}
//	if err := chain.Err(); err != nil { ... }
//
// Each body slice runs from the end of its header to the start of the
// next chained header (or the end of the packet for the last message),
// so header-relative buffer offsets inside it stay resolvable.
type ChainDecoder struct {
	buf  []byte
	pos  int
	hdr  *Header
	body []byte
	done bool
	err  error
}

func NewChainDecoder(p []byte) *ChainDecoder {
	return &ChainDecoder{buf: p}
}

// Next advances to the next message in the chain. It returns false when
// the chain is exhausted or malformed; Err distinguishes the two.
func (d *ChainDecoder) Next() bool {
	if d.done || d.err != nil {
		return false
	}

	rest := d.buf[d.pos:]

	hdr, body, err := DecodeHeader(rest)
	if err != nil {
		d.err = err
		return false
	}

	next := hdr.NextCommand
	if next == 0 {
		d.hdr = hdr
		d.body = body
		d.done = true
		return true
	}

	// NextCommand is relative to this header; anything inside the header
	// itself would revisit bytes already consumed.
	if next < HeaderSize {
		d.err = &ChainCycleError{Offset: next}
		return false
	}
	if uint64(d.pos)+uint64(next) > uint64(len(d.buf)) {
		d.err = &encoder.TruncatedBufferError{
			Expected: d.pos + int(next),
			Actual:   len(d.buf),
		}
		return false
	}

	d.hdr = hdr
	d.body = rest[HeaderSize:next]
	d.pos += int(next)

	return true
}

// Header returns the header of the current message.
func (d *ChainDecoder) Header() *Header {
	return d.hdr
}

// Body returns the body bytes of the current message, padding included.
func (d *ChainDecoder) Body() []byte {
	return d.body
}

// Err returns the first structural error hit while walking the chain.
func (d *ChainDecoder) Err() error {
	return d.err
}

// EncodeCompound chains msgs into one packet. Every message but the
// last is padded to an 8-byte boundary and has NextCommand set; every
// message after the first gets the related-operations flag so the
// receiver resolves handles from its predecessors.
func EncodeCompound(msgs []Message) ([]byte, error) {
	var out []byte

	for i := range msgs {
		hdr := msgs[i].Header // copied so the caller's header stays untouched

		if i > 0 {
			hdr.Flags |= SMB2_FLAGS_RELATED_OPERATIONS
		}

		body, err := EncodeBody(msgs[i].Body)
		if err != nil {
			return nil, err
		}

		size := HeaderSize + len(body)
		if i < len(msgs)-1 {
			hdr.NextCommand = uint32(Roundup(size, 8))
		} else {
			hdr.NextCommand = 0
		}
		if _, ok := msgs[i].Body.(*ErrorResponse); !ok {
			hdr.Command = msgs[i].Body.CommandCode()
		}

		p := make([]byte, Roundup(size, 8))
		hdr.EncodeTo(p)
		copy(p[HeaderSize:], body)
		if i == len(msgs)-1 {
			p = p[:size]
		}

		out = append(out, p...)
	}

	return out, nil
}
