package encoder

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type setupMsg struct {
	StructureSize        uint16 `smb:"const:25"`
	Flags                uint8
	SecurityMode         uint8
	Capabilities         uint32
	Channel              uint32
	SecurityBufferOffset uint16 `smb:"offsetof:SecurityBuffer"`
	SecurityBufferLength uint16 `smb:"lenof:SecurityBuffer"`
	PreviousSessionId    uint64
	SecurityBuffer       []byte `smb:"trailing"`
}

func TestMarshalTrailing(t *testing.T) {
	msg := &setupMsg{
		Flags:          0x01,
		SecurityMode:   0x02,
		Capabilities:   0x00000001,
		SecurityBuffer: []byte{0xaa, 0xbb, 0xcc},
	}

	p, err := Marshal(msg, nil)
	require.NoError(t, err)

	// 24 bytes of fixed head plus the buffer.
	require.Len(t, p, 27)
	assert.Equal(t, uint16(25), le.Uint16(p[:2]))
	assert.Equal(t, uint16(64+24), le.Uint16(p[12:14]), "offset counts from the header")
	assert.Equal(t, uint16(3), le.Uint16(p[14:16]))
	assert.Equal(t, []byte{0xaa, 0xbb, 0xcc}, p[24:])

	var got setupMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, msg.SecurityBuffer, got.SecurityBuffer)
	assert.Equal(t, uint16(88), got.SecurityBufferOffset)
}

func TestMarshalAbsentRegion(t *testing.T) {
	p, err := Marshal(&setupMsg{}, nil)
	require.NoError(t, err)

	// StructureSize 25 counts one buffer byte, so the empty body is
	// padded from 24 to 25.
	require.Len(t, p, 25)
	assert.Equal(t, uint16(0), le.Uint16(p[12:14]))
	assert.Equal(t, uint16(0), le.Uint16(p[14:16]))

	var got setupMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Nil(t, got.SecurityBuffer)
}

func TestMarshalHeaderOffset(t *testing.T) {
	msg := &setupMsg{SecurityBuffer: []byte{0x01}}

	p, err := Marshal(msg, &Options{HeaderOffset: 0})
	require.NoError(t, err)
	assert.Equal(t, uint16(24), le.Uint16(p[12:14]))

	p, err = Marshal(msg, &Options{HeaderOffset: 128})
	require.NoError(t, err)
	assert.Equal(t, uint16(152), le.Uint16(p[12:14]))
}

func TestUnmarshalStructureSizeMismatch(t *testing.T) {
	p, err := Marshal(&setupMsg{}, nil)
	require.NoError(t, err)
	le.PutUint16(p[:2], 9)

	var got setupMsg
	err = Unmarshal(p, &got, nil)

	var mismatch *StructureSizeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "setupMsg", mismatch.Struct)
	assert.Equal(t, uint16(25), mismatch.Expected)
	assert.Equal(t, uint16(9), mismatch.Actual)
}

func TestUnmarshalInvalidOffset(t *testing.T) {
	p, err := Marshal(&setupMsg{SecurityBuffer: []byte{0x01, 0x02}}, nil)
	require.NoError(t, err)

	// Points past the end of the buffer.
	le.PutUint16(p[12:14], 0xff00)
	var got setupMsg
	var invalid *InvalidOffsetError
	require.ErrorAs(t, Unmarshal(p, &got, nil), &invalid)
	assert.Equal(t, "SecurityBuffer", invalid.Field)

	// Points inside the header, before the structure itself.
	le.PutUint16(p[12:14], 10)
	require.ErrorAs(t, Unmarshal(p, &got, nil), &invalid)
}

func TestUnmarshalNonstandardPadding(t *testing.T) {
	// A region placed further out than Marshal would put it must still
	// be found through its offset field.
	p, err := Marshal(&setupMsg{}, nil)
	require.NoError(t, err)
	p = p[:24]
	p = append(p, 0, 0, 0, 0, 0, 0, 0, 0) // extra padding
	p = append(p, 0xde, 0xad)
	le.PutUint16(p[12:14], 64+32)
	le.PutUint16(p[14:16], 2)

	var got setupMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, []byte{0xde, 0xad}, got.SecurityBuffer)
}

func TestUnmarshalTruncated(t *testing.T) {
	p, err := Marshal(&setupMsg{}, nil)
	require.NoError(t, err)

	var got setupMsg
	var truncated *TruncatedBufferError
	require.ErrorAs(t, Unmarshal(p[:10], &got, nil), &truncated)
	assert.Equal(t, 10, truncated.Actual)
}

func TestUnmarshalCopiesRegions(t *testing.T) {
	p, err := Marshal(&setupMsg{SecurityBuffer: []byte{0x11, 0x22}}, nil)
	require.NoError(t, err)

	var got setupMsg
	require.NoError(t, Unmarshal(p, &got, nil))

	p[24] = 0xff
	assert.Equal(t, []byte{0x11, 0x22}, got.SecurityBuffer, "decoded region must not alias the input")
}

type countedMsg struct {
	DialectCount uint16 `smb:"countof:Dialects"`
	SecurityMode uint16
	Dialects     []uint16
}

func TestInlineCountedRegion(t *testing.T) {
	msg := &countedMsg{SecurityMode: 1, Dialects: []uint16{0x0202, 0x0210, 0x0311}}

	p, err := Marshal(msg, nil)
	require.NoError(t, err)
	require.Equal(t, "03000100020210021103", hex.EncodeToString(p))

	var got countedMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, msg.Dialects, got.Dialects)

	// An oversized count must not read past the buffer.
	le.PutUint16(p[:2], 200)
	var truncated *TruncatedBufferError
	require.ErrorAs(t, Unmarshal(p, &got, nil), &truncated)
}

type lockMsg struct {
	LockCount uint16 `smb:"countof:Locks"`
	Sequence  uint16
	Locks     []lockRange
}

type lockRange struct {
	Offset uint64
	Length uint64
}

func TestInlineStructSlice(t *testing.T) {
	msg := &lockMsg{Locks: []lockRange{{Offset: 1, Length: 2}, {Offset: 3, Length: 4}}}

	p, err := Marshal(msg, nil)
	require.NoError(t, err)
	require.Len(t, p, 4+2*16)

	var got lockMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, msg.Locks, got.Locks)
	assert.Equal(t, uint16(2), got.LockCount)
}

type restMsg struct {
	Kind uint32
	Rest []byte
}

func TestInlineRestOfBuffer(t *testing.T) {
	p, err := Marshal(&restMsg{Kind: 7, Rest: []byte{0x01, 0x02, 0x03}}, nil)
	require.NoError(t, err)
	require.Equal(t, "07000000010203", hex.EncodeToString(p))

	var got restMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, got.Rest)
}

type pathMsg struct {
	PathOffset uint16   `smb:"offsetof:Path"`
	PathLength uint16   `smb:"lenof:Path"`
	Path       []uint16 `smb:"trailing"`
}

func TestWideRegionOddLength(t *testing.T) {
	p, err := Marshal(&pathMsg{Path: []uint16{'a', 'b'}}, nil)
	require.NoError(t, err)

	var got pathMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, []uint16{'a', 'b'}, got.Path)

	// An odd byte length cannot hold whole UTF-16 units; it must error
	// rather than drop the trailing byte.
	le.PutUint16(p[2:4], 3)
	var truncated *TruncatedBufferError
	require.ErrorAs(t, Unmarshal(p, &got, nil), &truncated)
}

type selfBasedMsg struct {
	NameOffset uint16 `smb:"offsetof:Name"`
	NameLength uint16 `smb:"lenof:Name"`
	Name       []byte `smb:"trailing,base:self,align:8"`
}

func TestSelfBasedRegion(t *testing.T) {
	p, err := Marshal(&selfBasedMsg{Name: []byte{0x41, 0x42}}, nil)
	require.NoError(t, err)

	// Aligned to 8 from the start of the structure, not the header.
	require.Len(t, p, 10)
	assert.Equal(t, uint16(8), le.Uint16(p[:2]))
	assert.Equal(t, []byte{0x41, 0x42}, p[8:])

	var got selfBasedMsg
	require.NoError(t, Unmarshal(p, &got, nil))
	assert.Equal(t, []byte{0x41, 0x42}, got.Name)
}

type tinyOffsetMsg struct {
	DataOffset uint8  `smb:"offsetof:Data"`
	DataLength uint8  `smb:"lenof:Data"`
	Data       []byte `smb:"trailing"`
}

func TestFieldOverflow(t *testing.T) {
	_, err := Marshal(&tinyOffsetMsg{Data: []byte{0x01}}, &Options{HeaderOffset: 300})

	var overflow *FieldOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "DataOffset", overflow.Field)
	assert.Equal(t, uint64(302), overflow.Value)
	assert.Equal(t, uint64(255), overflow.Max)

	_, err = Marshal(&tinyOffsetMsg{Data: make([]byte, 300)}, &Options{HeaderOffset: 0})
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, "DataLength", overflow.Field)
}

func TestUnmarshalRejectsNonPointer(t *testing.T) {
	var msg setupMsg
	assert.Error(t, Unmarshal(nil, msg, nil))
	assert.Error(t, Unmarshal(nil, nil, nil))
}

func TestErrorStrings(t *testing.T) {
	for _, err := range []error{
		&TruncatedBufferError{Expected: 8, Actual: 4},
		&InvalidOffsetError{Field: "Data", Offset: 128, Length: 16, Limit: 100},
		&StructureSizeMismatchError{Struct: "setupMsg", Expected: 25, Actual: 9},
		&FieldOverflowError{Field: "DataOffset", Value: 300, Max: 255},
	} {
		assert.NotEmpty(t, err.Error())
	}
}

func FuzzUnmarshal(f *testing.F) {
	seed, err := Marshal(&setupMsg{SecurityBuffer: []byte("token")}, nil)
	if err != nil {
		f.Fatal(err)
	}
	f.Add(seed)
	f.Add(seed[:24])
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, p []byte) {
		var setup setupMsg
		if err := Unmarshal(p, &setup, nil); err == nil {
			if _, err := Marshal(&setup, nil); err != nil {
				var overflow *FieldOverflowError
				if !errors.As(err, &overflow) {
					t.Fatalf("re-marshal of a decoded structure: %v", err)
				}
			}
		}

		var counted countedMsg
		_ = Unmarshal(p, &counted, nil)

		var locks lockMsg
		_ = Unmarshal(p, &locks, nil)
	})
}
