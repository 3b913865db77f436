package smbmsg

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smb1NegotiateFixture = "ff534d4272000000001853c8000000000000000000000000ffff010000000000002200024e54204c4d20302e31320002534d4220322e3030320002534d4220322e3f3f3f00"

func TestSMB1NegotiateFixture(t *testing.T) {
	p := mustHex(t, smb1NegotiateFixture)

	assert.Equal(t, hex.EncodeToString(p), hex.EncodeToString(NewSMB1NegotiateMessage().Encode()))

	msg, err := DecodeSMB1Negotiate(p)
	require.NoError(t, err)
	assert.Equal(t, uint8(0x18), msg.Flags)
	assert.Equal(t, uint16(0xc853), msg.Flags2)
	assert.Equal(t, []string{"NT LM 0.12", "SMB 2.002", "SMB 2.???"}, msg.Dialects)
	assert.True(t, msg.SupportsSMB2())
}

func TestSMB1NegotiateRoundTrip(t *testing.T) {
	msg := &SMB1NegotiateMessage{
		Flags:            0x18,
		Flags2:           0xc801,
		SecurityFeatures: [8]byte{0x01, 0x02},
		Dialects:         []string{"NT LM 0.12"},
	}

	got, err := DecodeSMB1Negotiate(msg.Encode())
	require.NoError(t, err)
	assert.Equal(t, msg, got)
	assert.False(t, got.SupportsSMB2())
}

func TestDecodeSMB1NegotiateErrors(t *testing.T) {
	var malformed *MalformedHeaderError

	_, err := DecodeSMB1Negotiate(make([]byte, smb1HeaderSize-1))
	require.ErrorAs(t, err, &malformed)

	p := mustHex(t, smb1NegotiateFixture)

	bad := append([]byte(nil), p...)
	copy(bad, MAGIC)
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)

	bad = append([]byte(nil), p...)
	bad[4] = 0x73
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)

	bad = append([]byte(nil), p...)
	bad[32] = 1
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)

	// Byte count past the end of the packet.
	bad = append([]byte(nil), p...)
	le.PutUint16(bad[33:35], 0xffff)
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)

	// A dialect without the 0x02 marker, and one without a terminator.
	bad = append([]byte(nil), p...)
	bad[35] = 0x03
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)

	bad = append([]byte(nil), p...)
	bad[len(bad)-1] = 'x'
	_, err = DecodeSMB1Negotiate(bad)
	require.ErrorAs(t, err, &malformed)
}

func FuzzDecodeSMB1Negotiate(f *testing.F) {
	f.Add(mustFuzzHex(smb1NegotiateFixture))

	f.Fuzz(func(t *testing.T, p []byte) {
		msg, err := DecodeSMB1Negotiate(p)
		if err != nil {
			return
		}
		if _, err := DecodeSMB1Negotiate(msg.Encode()); err != nil {
			t.Fatalf("re-encode of a decoded negotiate does not parse: %v", err)
		}
	})
}
