// ref: MS-DTYP

package smbmsg

import (
	"github.com/google/uuid"
)

// ----------------------------------------------------------------------------
// FILETIME
//

type Filetime struct {
	LowDateTime  uint32
	HighDateTime uint32
}

func (ft Filetime) Nanoseconds() int64 {
	nsec := int64(ft.HighDateTime)<<32 + int64(ft.LowDateTime)
	nsec -= 116444736000000000
	nsec *= 100
	return nsec
}

func NsecToFiletime(nsec int64) Filetime {
	nsec /= 100
	nsec += 116444736000000000

	return Filetime{
		LowDateTime:  uint32(nsec & 0xffffffff),
		HighDateTime: uint32(nsec >> 32 & 0xffffffff),
	}
}

// ----------------------------------------------------------------------------
// SMB2 FILEID
//

type FileId struct {
	Persistent [8]byte
	Volatile   [8]byte
}

func (fd FileId) IsZero() bool {
	for _, b := range fd.Persistent[:] {
		if b != 0 {
			return false
		}
	}
	for _, b := range fd.Volatile[:] {
		if b != 0 {
			return false
		}
	}
	return true
}

// ----------------------------------------------------------------------------
// GUID
//

// GUID holds a Windows GUID in its on-wire byte order: the first three
// groups little-endian, the last eight bytes as-is. uuid.UUID keeps the
// RFC 4122 big-endian order, so conversions swap those groups.
type GUID [16]byte

func GUIDFromUUID(u uuid.UUID) GUID {
	var g GUID
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:], u[8:])
	return g
}

func (g GUID) UUID() uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = g[3], g[2], g[1], g[0]
	u[4], u[5] = g[5], g[4]
	u[6], u[7] = g[7], g[6]
	copy(u[8:], g[8:])
	return u
}

func (g GUID) String() string {
	return g.UUID().String()
}

func (g GUID) IsZero() bool {
	return g == GUID{}
}

func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, err
	}
	return GUIDFromUUID(u), nil
}

func NewGUID() GUID {
	return GUIDFromUUID(uuid.New())
}
