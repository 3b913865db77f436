// ref: MS-FSCC 2.7.1

package smbmsg

import (
	"github.com/omnifocal/smbmsg/encode"
)

// FileNotifyInformation is one change record in a CHANGE_NOTIFY
// response buffer.
type FileNotifyInformation struct {
	Action   uint32
	FileName string
}

// FileNotifyInfoList is the 4-aligned FILE_NOTIFY_INFORMATION chain
// linked through NextEntryOffset.
type FileNotifyInfoList []FileNotifyInformation

func (l FileNotifyInfoList) MarshalSMB() ([]byte, error) {
	var out []byte

	for i, info := range l {
		name := UTF16BytesFromString(info.FileName)
		size := 12 + len(name)

		next := 0
		if i < len(l)-1 {
			next = Roundup(size, 4)
		}

		p := make([]byte, Roundup(size, 4))
		le.PutUint32(p[:4], uint32(next))
		le.PutUint32(p[4:8], info.Action)
		le.PutUint32(p[8:12], uint32(len(name)))
		copy(p[12:], name)

		if i == len(l)-1 {
			p = p[:size]
		}

		out = append(out, p...)
	}

	return out, nil
}

func (l *FileNotifyInfoList) UnmarshalSMB(p []byte) error {
	var infos FileNotifyInfoList

	for {
		if len(p) < 12 {
			return &encoder.TruncatedBufferError{Expected: 12, Actual: len(p)}
		}

		next := le.Uint32(p[:4])
		nameLength := uint64(le.Uint32(p[8:12]))
		if 12+nameLength > uint64(len(p)) {
			return &encoder.InvalidOffsetError{Field: "FileName", Offset: 12, Length: nameLength, Limit: len(p)}
		}

		infos = append(infos, FileNotifyInformation{
			Action:   le.Uint32(p[4:8]),
			FileName: UTF16ToString(BytesToUTF16(p[12 : 12+nameLength])),
		})

		if next == 0 {
			break
		}
		if next < 12 || uint64(next) > uint64(len(p)) {
			return &encoder.InvalidOffsetError{Field: "NextEntryOffset", Offset: uint64(next), Length: 0, Limit: len(p)}
		}
		p = p[next:]
	}

	*l = infos

	return nil
}
