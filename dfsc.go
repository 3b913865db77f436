// ref: MS-DFSC 2.2

package smbmsg

import (
	"github.com/omnifocal/smbmsg/encode"
)

const (
	DFS_REFERRAL_V1 = 0x0001
	DFS_REFERRAL_V2 = 0x0002
	DFS_REFERRAL_V3 = 0x0003
	DFS_REFERRAL_V4 = 0x0004
)

const (
	DFS_REFERRAL_SERVERS = 0x00000001
	DFS_STORAGE_SERVERS  = 0x00000002
	DFS_TARGET_FAILBACK  = 0x00000004
)

const (
	DFS_ENTRY_NAME_LIST_REFERRAL  = 0x0002
	DFS_ENTRY_TARGET_SET_BOUNDARY = 0x0004
)

const (
	DFS_SERVER_NON_ROOT = 0x0000
	DFS_SERVER_ROOT     = 0x0001
)

// putNullWideString appends s as null-terminated little-endian UTF-16.
func putNullWideString(out []byte, s string) []byte {
	out = append(out, UTF16BytesFromString(s)...)
	return append(out, 0, 0)
}

// readNullWideString reads a null-terminated UTF-16 string starting at
// off within p.
func readNullWideString(p []byte, off int) (string, error) {
	if off < 0 || off > len(p) {
		return "", &encoder.InvalidOffsetError{Offset: uint64(off), Limit: len(p)}
	}
	var ws []uint16
	for pos := off; ; pos += 2 {
		if pos+2 > len(p) {
			return "", &encoder.TruncatedBufferError{Expected: pos + 2, Actual: len(p)}
		}
		w := le.Uint16(p[pos : pos+2])
		if w == 0 {
			return UTF16ToString(ws), nil
		}
		ws = append(ws, w)
	}
}

// ----------------------------------------------------------------------------
// REQ_GET_DFS_REFERRAL
//

// GetDfsReferralRequest travels as the input buffer of an IOCTL with
// CtlCode FSCTL_DFS_GET_REFERRALS.
type GetDfsReferralRequest struct {
	MaxReferralLevel uint16
	RequestFileName  string
}

func (req *GetDfsReferralRequest) Encode() []byte {
	out := make([]byte, 2, 2+len(req.RequestFileName)*2+2)
	le.PutUint16(out[:2], req.MaxReferralLevel)
	return putNullWideString(out, req.RequestFileName)
}

func DecodeGetDfsReferralRequest(p []byte) (*GetDfsReferralRequest, error) {
	if len(p) < 4 {
		return nil, &encoder.TruncatedBufferError{Expected: 4, Actual: len(p)}
	}
	name, err := readNullWideString(p, 2)
	if err != nil {
		return nil, err
	}
	return &GetDfsReferralRequest{
		MaxReferralLevel: le.Uint16(p[:2]),
		RequestFileName:  name,
	}, nil
}

// ----------------------------------------------------------------------------
// REQ_GET_DFS_REFERRAL_EX
//

const DFS_REQUEST_FLAG_SITE_NAME = 0x0001

// GetDfsReferralRequestEx travels as the input buffer of an IOCTL with
// CtlCode FSCTL_DFS_GET_REFERRALS_EX. Unlike the plain request its
// strings are length-prefixed, not null-terminated.
type GetDfsReferralRequestEx struct {
	MaxReferralLevel uint16
	RequestFlags     uint16
	RequestFileName  string
	SiteName         string
}

func (req *GetDfsReferralRequestEx) Encode() []byte {
	name := UTF16BytesFromString(req.RequestFileName)
	site := UTF16BytesFromString(req.SiteName)

	dataLength := 2 + len(name)
	if req.RequestFlags&DFS_REQUEST_FLAG_SITE_NAME != 0 {
		dataLength += 2 + len(site)
	}

	out := make([]byte, 8, 8+dataLength)
	le.PutUint16(out[:2], req.MaxReferralLevel)
	le.PutUint16(out[2:4], req.RequestFlags)
	le.PutUint32(out[4:8], uint32(dataLength))

	var l [2]byte
	le.PutUint16(l[:], uint16(len(name)))
	out = append(out, l[:]...)
	out = append(out, name...)
	if req.RequestFlags&DFS_REQUEST_FLAG_SITE_NAME != 0 {
		le.PutUint16(l[:], uint16(len(site)))
		out = append(out, l[:]...)
		out = append(out, site...)
	}

	return out
}

func DecodeGetDfsReferralRequestEx(p []byte) (*GetDfsReferralRequestEx, error) {
	if len(p) < 10 {
		return nil, &encoder.TruncatedBufferError{Expected: 10, Actual: len(p)}
	}

	req := &GetDfsReferralRequestEx{
		MaxReferralLevel: le.Uint16(p[:2]),
		RequestFlags:     le.Uint16(p[2:4]),
	}

	dataLength := uint64(le.Uint32(p[4:8]))
	if 8+dataLength > uint64(len(p)) {
		return nil, &encoder.TruncatedBufferError{Expected: 8 + int(dataLength), Actual: len(p)}
	}
	data := p[8 : 8+dataLength]

	nameLength := int(le.Uint16(data[:2]))
	if 2+nameLength > len(data) {
		return nil, &encoder.TruncatedBufferError{Expected: 2 + nameLength, Actual: len(data)}
	}
	req.RequestFileName = UTF16ToString(BytesToUTF16(data[2 : 2+nameLength]))
	data = data[2+nameLength:]

	if req.RequestFlags&DFS_REQUEST_FLAG_SITE_NAME != 0 {
		if len(data) < 2 {
			return nil, &encoder.TruncatedBufferError{Expected: 2, Actual: len(data)}
		}
		siteLength := int(le.Uint16(data[:2]))
		if 2+siteLength > len(data) {
			return nil, &encoder.TruncatedBufferError{Expected: 2 + siteLength, Actual: len(data)}
		}
		req.SiteName = UTF16ToString(BytesToUTF16(data[2 : 2+siteLength]))
	}

	return req, nil
}

// ----------------------------------------------------------------------------
// RESP_GET_DFS_REFERRAL
//

// DfsReferral is one referral entry, any version. String offsets on the
// wire are relative to the entry's own start; decoded entries hold the
// resolved strings. Fields apply per version: Proximity is version 2
// only, ServiceSiteGuid versions 3 and 4, SpecialName/ExpandedNames only
// when the name-list flag is set.
type DfsReferral struct {
	VersionNumber      uint16
	ServerType         uint16
	ReferralEntryFlags uint16
	Proximity          uint32
	TimeToLive         uint32
	DfsPath            string
	DfsAlternatePath   string
	NetworkAddress     string
	ServiceSiteGuid    GUID
	SpecialName        string
	ExpandedNames      []string
}

func (r *DfsReferral) IsNameListReferral() bool {
	return r.ReferralEntryFlags&DFS_ENTRY_NAME_LIST_REFERRAL != 0
}

type GetDfsReferralResponse struct {
	PathConsumed        uint16
	ReferralHeaderFlags uint32
	Referrals           []DfsReferral
}

func (res *GetDfsReferralResponse) entrySize(r *DfsReferral) int {
	switch r.VersionNumber {
	case DFS_REFERRAL_V1:
		return 8 + len(UTF16FromString(r.NetworkAddress))*2 + 2
	case DFS_REFERRAL_V2:
		return 22
	default:
		if r.IsNameListReferral() {
			return 18
		}
		return 34
	}
}

// Encode renders the response. Identical strings referenced by the same
// field of several entries share one copy in the string buffer, the way
// Windows servers emit referral lists.
func (res *GetDfsReferralResponse) Encode() ([]byte, error) {
	out := make([]byte, 8)
	le.PutUint16(out[:2], res.PathConsumed)
	le.PutUint16(out[2:4], uint16(len(res.Referrals)))
	le.PutUint32(out[4:8], res.ReferralHeaderFlags)

	entryStarts := make([]int, len(res.Referrals))
	pos := 8
	for i := range res.Referrals {
		entryStarts[i] = pos
		pos += res.entrySize(&res.Referrals[i])
	}

	strings := make([]byte, 0)
	stringBase := pos
	interned := make(map[string]int) // field+value -> absolute offset

	intern := func(field, s string) int {
		key := field + "\x00" + s
		if off, ok := interned[key]; ok {
			return off
		}
		off := stringBase + len(strings)
		strings = putNullWideString(strings, s)
		interned[key] = off
		return off
	}

	for i := range res.Referrals {
		r := &res.Referrals[i]
		start := entryStarts[i]
		size := res.entrySize(r)

		entry := make([]byte, size)
		le.PutUint16(entry[:2], r.VersionNumber)
		le.PutUint16(entry[2:4], uint16(size))
		le.PutUint16(entry[4:6], r.ServerType)
		le.PutUint16(entry[6:8], r.ReferralEntryFlags)

		switch r.VersionNumber {
		case DFS_REFERRAL_V1:
			name := UTF16BytesFromString(r.NetworkAddress)
			copy(entry[8:], name)
		case DFS_REFERRAL_V2:
			le.PutUint32(entry[8:12], r.Proximity)
			le.PutUint32(entry[12:16], r.TimeToLive)
			le.PutUint16(entry[16:18], uint16(intern("dfs", r.DfsPath)-start))
			le.PutUint16(entry[18:20], uint16(intern("alt", r.DfsAlternatePath)-start))
			le.PutUint16(entry[20:22], uint16(intern("net", r.NetworkAddress)-start))
		case DFS_REFERRAL_V3, DFS_REFERRAL_V4:
			le.PutUint32(entry[8:12], r.TimeToLive)
			if r.IsNameListReferral() {
				le.PutUint16(entry[12:14], uint16(intern("special", r.SpecialName)-start))
				le.PutUint16(entry[14:16], uint16(len(r.ExpandedNames)))
				expandedOff := stringBase + len(strings)
				for _, name := range r.ExpandedNames {
					strings = putNullWideString(strings, name)
				}
				le.PutUint16(entry[16:18], uint16(expandedOff-start))
			} else {
				le.PutUint16(entry[12:14], uint16(intern("dfs", r.DfsPath)-start))
				le.PutUint16(entry[14:16], uint16(intern("alt", r.DfsAlternatePath)-start))
				le.PutUint16(entry[16:18], uint16(intern("net", r.NetworkAddress)-start))
				copy(entry[18:34], r.ServiceSiteGuid[:])
			}
		default:
			return nil, &encoder.FieldOverflowError{Field: "VersionNumber", Value: uint64(r.VersionNumber), Max: DFS_REFERRAL_V4}
		}

		out = append(out, entry...)
	}

	return append(out, strings...), nil
}

func DecodeGetDfsReferralResponse(p []byte) (*GetDfsReferralResponse, error) {
	if len(p) < 8 {
		return nil, &encoder.TruncatedBufferError{Expected: 8, Actual: len(p)}
	}

	res := &GetDfsReferralResponse{
		PathConsumed:        le.Uint16(p[:2]),
		ReferralHeaderFlags: le.Uint32(p[4:8]),
	}
	count := int(le.Uint16(p[2:4]))

	pos := 8
	for i := 0; i < count; i++ {
		if pos+4 > len(p) {
			return nil, &encoder.TruncatedBufferError{Expected: pos + 4, Actual: len(p)}
		}

		// String offsets are entry-relative, so the entry view reaches to
		// the end of the buffer even though the next entry starts after
		// Size bytes.
		entry := p[pos:]
		size := int(le.Uint16(entry[2:4]))
		if size < 4 || pos+size > len(p) {
			return nil, &encoder.InvalidOffsetError{Field: "Size", Offset: uint64(size), Limit: len(p) - pos}
		}

		r := DfsReferral{VersionNumber: le.Uint16(entry[:2])}

		var err error
		switch r.VersionNumber {
		case DFS_REFERRAL_V1:
			if size < 8 {
				return nil, &encoder.TruncatedBufferError{Expected: 8, Actual: size}
			}
			r.ServerType = le.Uint16(entry[4:6])
			r.ReferralEntryFlags = le.Uint16(entry[6:8])
			if r.NetworkAddress, err = readNullWideString(entry[:size], 8); err != nil {
				return nil, err
			}
		case DFS_REFERRAL_V2:
			if size < 22 {
				return nil, &encoder.TruncatedBufferError{Expected: 22, Actual: size}
			}
			r.ServerType = le.Uint16(entry[4:6])
			r.ReferralEntryFlags = le.Uint16(entry[6:8])
			r.Proximity = le.Uint32(entry[8:12])
			r.TimeToLive = le.Uint32(entry[12:16])
			if r.DfsPath, err = readNullWideString(entry, int(le.Uint16(entry[16:18]))); err != nil {
				return nil, err
			}
			if r.DfsAlternatePath, err = readNullWideString(entry, int(le.Uint16(entry[18:20]))); err != nil {
				return nil, err
			}
			if r.NetworkAddress, err = readNullWideString(entry, int(le.Uint16(entry[20:22]))); err != nil {
				return nil, err
			}
		case DFS_REFERRAL_V3, DFS_REFERRAL_V4:
			if size < 12 {
				return nil, &encoder.TruncatedBufferError{Expected: 12, Actual: size}
			}
			r.ServerType = le.Uint16(entry[4:6])
			r.ReferralEntryFlags = le.Uint16(entry[6:8])
			r.TimeToLive = le.Uint32(entry[8:12])
			if r.ReferralEntryFlags&DFS_ENTRY_NAME_LIST_REFERRAL != 0 {
				if size < 18 {
					return nil, &encoder.TruncatedBufferError{Expected: 18, Actual: size}
				}
				if r.SpecialName, err = readNullWideString(entry, int(le.Uint16(entry[12:14]))); err != nil {
					return nil, err
				}
				expanded := int(le.Uint16(entry[14:16]))
				off := int(le.Uint16(entry[16:18]))
				for j := 0; j < expanded; j++ {
					name, err := readNullWideString(entry, off)
					if err != nil {
						return nil, err
					}
					r.ExpandedNames = append(r.ExpandedNames, name)
					off += len(UTF16FromString(name))*2 + 2
				}
			} else {
				if size < 34 {
					return nil, &encoder.TruncatedBufferError{Expected: 34, Actual: size}
				}
				if r.DfsPath, err = readNullWideString(entry, int(le.Uint16(entry[12:14]))); err != nil {
					return nil, err
				}
				if r.DfsAlternatePath, err = readNullWideString(entry, int(le.Uint16(entry[14:16]))); err != nil {
					return nil, err
				}
				if r.NetworkAddress, err = readNullWideString(entry, int(le.Uint16(entry[16:18]))); err != nil {
					return nil, err
				}
				copy(r.ServiceSiteGuid[:], entry[18:34])
			}
		default:
			return nil, &encoder.InvalidOffsetError{Field: "VersionNumber", Offset: uint64(r.VersionNumber), Limit: DFS_REFERRAL_V4}
		}

		res.Referrals = append(res.Referrals, r)
		pos += size
	}

	return res, nil
}
