package smbmsg

// Body is one typed command body, request or response. ErrorResponse
// also satisfies it so DecodeMessage has a single result type.
type Body interface {
	CommandCode() Command
}

// Message pairs a header with its body, mainly for compounding.
type Message struct {
	Header Header
	Body   Body
}

// EncodeMessage renders a single complete message. The header's Command
// field is filled from the body, so callers only set the bookkeeping
// fields (credits, message id, session, tree, flags).
func EncodeMessage(hdr *Header, body Body) ([]byte, error) {
	b, err := EncodeBody(body)
	if err != nil {
		return nil, err
	}

	h := *hdr
	if _, ok := body.(*ErrorResponse); !ok {
		h.Command = body.CommandCode()
	}

	out := make([]byte, HeaderSize+len(b))
	h.EncodeTo(out)
	copy(out[HeaderSize:], b)

	return out, nil
}

// DecodeMessage decodes a single unchained message. For compounded
// packets use ChainDecoder and DecodeBody per message.
func DecodeMessage(p []byte) (*Header, Body, error) {
	hdr, rest, err := DecodeHeader(p)
	if err != nil {
		return nil, nil, err
	}

	body, err := DecodeBody(hdr, rest)
	if err != nil {
		return nil, nil, err
	}

	return hdr, body, nil
}
