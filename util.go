package smbmsg

import (
	"encoding/binary"
	"unicode/utf16"
)

var (
	le = binary.LittleEndian
)

func Roundup(x, align int) int {
	return (x + (align - 1)) &^ (align - 1)
}

func UTF16FromString(s string) []uint16 {
	return utf16.Encode([]rune(s))
}

func UTF16ToString(s []uint16) string {
	return string(utf16.Decode(s))
}

func BytesToUTF16(bs []byte) []uint16 {
	if len(bs) == 0 {
		return nil
	}

	ws := make([]uint16, len(bs)/2)
	for i := range ws {
		ws[i] = le.Uint16(bs[2*i : 2*i+2])
	}
	return ws
}

func PutUTF16(bs []byte, ws []uint16) {
	for i, w := range ws {
		le.PutUint16(bs[2*i:2*i+2], w)
	}
}

// UTF16BytesFromString encodes s as little-endian UTF-16 without a
// terminator.
func UTF16BytesFromString(s string) []byte {
	ws := UTF16FromString(s)
	bs := make([]byte, len(ws)*2)
	PutUTF16(bs, ws)
	return bs
}

// UTF16StringFromBytes decodes little-endian UTF-16, stopping at the
// first NUL if one is present.
func UTF16StringFromBytes(bs []byte) string {
	ws := BytesToUTF16(bs)
	for i, w := range ws {
		if w == 0 {
			ws = ws[:i]
			break
		}
	}
	return UTF16ToString(ws)
}
