// ref: MS-CIFS 2.2.4.52

package smbmsg

// MAGIC_SMB1 opens an SMB1 message. The only SMB1 message this layer
// knows is the negotiate used for multi-protocol negotiation.
var MAGIC_SMB1 = []byte{0xff, 'S', 'M', 'B'}

const SMB1_COM_NEGOTIATE = 0x72

// smb1HeaderSize is the fixed part of the negotiate message: the 32-byte
// SMB1 header plus WordCount and ByteCount.
const smb1HeaderSize = 35

// SMB1NegotiateMessage is a minimal SMB_COM_NEGOTIATE, just enough for a
// client to announce SMB2/3 dialects and for a server to recognize them.
// Dialect strings travel as 0x02-prefixed null-terminated ASCII.
type SMB1NegotiateMessage struct {
	Status           uint32
	Flags            uint8
	Flags2           uint16
	SecurityFeatures [8]byte
	Dialects         []string
}

// NewSMB1NegotiateMessage returns the negotiate a client opens
// multi-protocol negotiation with, offering SMB2 alongside NT LM 0.12.
func NewSMB1NegotiateMessage() *SMB1NegotiateMessage {
	return &SMB1NegotiateMessage{
		Flags:    0x18,
		Flags2:   0xc853,
		Dialects: []string{"NT LM 0.12", "SMB 2.002", "SMB 2.???"},
	}
}

// SupportsSMB2 reports whether the dialect list offers SMB 2.002, the
// marker a server keys the protocol upgrade on.
func (msg *SMB1NegotiateMessage) SupportsSMB2() bool {
	for _, d := range msg.Dialects {
		if d == "SMB 2.002" {
			return true
		}
	}
	return false
}

func (msg *SMB1NegotiateMessage) Encode() []byte {
	byteCount := 0
	for _, d := range msg.Dialects {
		byteCount += 1 + len(d) + 1
	}

	p := make([]byte, smb1HeaderSize, smb1HeaderSize+byteCount)

	copy(p[:4], MAGIC_SMB1)
	p[4] = SMB1_COM_NEGOTIATE
	le.PutUint32(p[5:9], msg.Status)
	p[9] = msg.Flags
	le.PutUint16(p[10:12], msg.Flags2)
	// PidHigh zero.
	copy(p[14:22], msg.SecurityFeatures[:])
	// Reserved zero.
	le.PutUint16(p[24:26], 0xffff) // Tid
	le.PutUint16(p[26:28], 1)     // PidLow
	// Uid and Mid zero; WordCount is always zero for this command.
	le.PutUint16(p[33:35], uint16(byteCount))

	for _, d := range msg.Dialects {
		p = append(p, 0x02)
		p = append(p, d...)
		p = append(p, 0)
	}

	return p
}

func DecodeSMB1Negotiate(p []byte) (*SMB1NegotiateMessage, error) {
	if len(p) < smb1HeaderSize {
		return nil, &MalformedHeaderError{Message: "packet shorter than the SMB1 negotiate header"}
	}
	if p[0] != MAGIC_SMB1[0] || p[1] != MAGIC_SMB1[1] || p[2] != MAGIC_SMB1[2] || p[3] != MAGIC_SMB1[3] {
		return nil, &MalformedHeaderError{Message: "bad SMB1 protocol id"}
	}
	if p[4] != SMB1_COM_NEGOTIATE {
		return nil, &MalformedHeaderError{Message: "not an SMB1 negotiate"}
	}
	if p[32] != 0 {
		return nil, &MalformedHeaderError{Message: "nonzero SMB1 negotiate word count"}
	}

	msg := &SMB1NegotiateMessage{
		Status: le.Uint32(p[5:9]),
		Flags:  p[9],
		Flags2: le.Uint16(p[10:12]),
	}
	copy(msg.SecurityFeatures[:], p[14:22])

	byteCount := uint64(le.Uint16(p[33:35]))
	if smb1HeaderSize+byteCount > uint64(len(p)) {
		return nil, &MalformedHeaderError{Message: "SMB1 negotiate byte count out of range"}
	}

	data := p[smb1HeaderSize : smb1HeaderSize+byteCount]
	for len(data) > 0 {
		if data[0] != 0x02 {
			return nil, &MalformedHeaderError{Message: "bad SMB1 dialect format"}
		}
		end := 1
		for ; ; end++ {
			if end == len(data) {
				return nil, &MalformedHeaderError{Message: "unterminated SMB1 dialect"}
			}
			if data[end] == 0 {
				break
			}
		}
		msg.Dialects = append(msg.Dialects, string(data[1:end]))
		data = data[end+1:]
	}

	return msg, nil
}
