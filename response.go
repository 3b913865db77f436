// ref: MS-SMB2 2.2

package smbmsg

// ----------------------------------------------------------------------------
// SMB2 ERROR Response Packet
//

// ErrorResponse is the body of any response whose header status has the
// error severity. ErrorData is empty for most statuses; SMB 3.1.1
// servers chain error contexts through it, and STATUS_STOPPED_ON_SYMLINK
// carries a symbolic link error payload.
type ErrorResponse struct {
	StructureSize     uint16 `smb:"const:9"`
	ErrorContextCount uint8
	Reserved          uint8
	ByteCount         uint32 `smb:"lenof:ErrorData"`
	ErrorData         []byte
}

// CommandCode returns an out-of-range code: an error response belongs
// to whichever command failed, which only its header knows.
func (*ErrorResponse) CommandCode() Command { return Command(0xffff) }

// ErrorContext is one SMB2 ERROR Context record chained inside
// ErrorResponse.ErrorData.
type ErrorContext struct {
	ErrorId uint32
	Data    []byte
}

const (
	SMB2_ERROR_ID_DEFAULT        = 0x00000000
	SMB2_ERROR_ID_SHARE_REDIRECT = 0x72645253
)

// Contexts parses ErrorData as the 8-aligned error context chain used
// by 3.1.1 servers. ErrorContextCount must be nonzero for the data to
// have this shape.
func (res *ErrorResponse) Contexts() ([]ErrorContext, error) {
	ctxs := make([]ErrorContext, 0, res.ErrorContextCount)

	p := res.ErrorData
	for i := 0; i < int(res.ErrorContextCount); i++ {
		if len(p) < 8 {
			return nil, &MalformedHeaderError{Message: "short error context"}
		}
		length := uint64(le.Uint32(p[:4]))
		if 8+length > uint64(len(p)) {
			return nil, &MalformedHeaderError{Message: "error context data out of range"}
		}
		ctx := ErrorContext{
			ErrorId: le.Uint32(p[4:8]),
			Data:    append([]byte(nil), p[8:8+length]...),
		}
		ctxs = append(ctxs, ctx)

		next := Roundup(8+int(length), 8)
		if next > len(p) {
			next = len(p)
		}
		p = p[next:]
	}

	return ctxs, nil
}

// ----------------------------------------------------------------------------
// SMB2 Symbolic Link Error Response
//

const SYMLINK_ERROR_TAG = 0x4c4d5953

const SYMLINK_FLAG_RELATIVE = 0x00000001

type SymlinkErrorResponse struct {
	ReparseTag         uint32
	UnparsedPathLength uint16
	Flags              uint32
	SubstituteName     string
	PrintName          string
}

func (s *SymlinkErrorResponse) IsRelative() bool {
	return s.Flags&SYMLINK_FLAG_RELATIVE != 0
}

// DecodeSymlinkError decodes the symbolic link error payload carried in
// ErrorData when the status is STATUS_STOPPED_ON_SYMLINK.
func DecodeSymlinkError(p []byte) (*SymlinkErrorResponse, error) {
	if len(p) < 28 {
		return nil, &MalformedHeaderError{Message: "short symlink error payload"}
	}

	length := uint64(le.Uint32(p[:4]))
	if 4+length > uint64(len(p)) {
		return nil, &MalformedHeaderError{Message: "symlink error length out of range"}
	}
	if le.Uint32(p[4:8]) != SYMLINK_ERROR_TAG {
		return nil, &MalformedHeaderError{Message: "bad symlink error tag"}
	}

	res := &SymlinkErrorResponse{
		ReparseTag:         le.Uint32(p[8:12]),
		UnparsedPathLength: le.Uint16(p[14:16]),
		Flags:              le.Uint32(p[24:28]),
	}

	subOff := int(le.Uint16(p[16:18]))
	subLen := int(le.Uint16(p[18:20]))
	prOff := int(le.Uint16(p[20:22]))
	prLen := int(le.Uint16(p[22:24]))

	// Path buffer offsets are relative to the byte after the flags field.
	buf := p[28:]
	if subOff+subLen > len(buf) || prOff+prLen > len(buf) {
		return nil, &MalformedHeaderError{Message: "symlink error path out of range"}
	}

	res.SubstituteName = UTF16ToString(BytesToUTF16(buf[subOff : subOff+subLen]))
	res.PrintName = UTF16ToString(BytesToUTF16(buf[prOff : prOff+prLen]))

	return res, nil
}

// ----------------------------------------------------------------------------
// SMB2 NEGOTIATE Response Packet
//

type NegotiateResponse struct {
	StructureSize          uint16 `smb:"const:65"`
	SecurityMode           uint16
	DialectRevision        uint16
	NegotiateContextCount  uint16 `smb:"countof:NegotiateContextList"`
	ServerGuid             GUID
	Capabilities           uint32
	MaxTransactSize        uint32
	MaxReadSize            uint32
	MaxWriteSize           uint32
	SystemTime             Filetime
	ServerStartTime        Filetime
	SecurityBufferOffset   uint16 `smb:"offsetof:SecurityBuffer"`
	SecurityBufferLength   uint16 `smb:"lenof:SecurityBuffer"`
	NegotiateContextOffset uint32 `smb:"offsetof:NegotiateContextList"`
	SecurityBuffer         []byte            `smb:"trailing"`
	NegotiateContextList   NegotiateContexts `smb:"trailing,align:8"`
}

func (*NegotiateResponse) CommandCode() Command { return SMB2_NEGOTIATE }

// ----------------------------------------------------------------------------
// SMB2 SESSION_SETUP Response Packet
//

type SessionSetupResponse struct {
	StructureSize        uint16 `smb:"const:9"`
	SessionFlags         uint16
	SecurityBufferOffset uint16 `smb:"offsetof:SecurityBuffer"`
	SecurityBufferLength uint16 `smb:"lenof:SecurityBuffer"`
	SecurityBuffer       []byte `smb:"trailing"`
}

func (*SessionSetupResponse) CommandCode() Command { return SMB2_SESSION_SETUP }

// ----------------------------------------------------------------------------
// SMB2 LOGOFF Response Packet
//

type LogoffResponse struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*LogoffResponse) CommandCode() Command { return SMB2_LOGOFF }

// ----------------------------------------------------------------------------
// SMB2 TREE_CONNECT Response Packet
//

type TreeConnectResponse struct {
	StructureSize uint16 `smb:"const:16"`
	ShareType     uint8
	Reserved      uint8
	ShareFlags    uint32
	Capabilities  uint32
	MaximalAccess uint32
}

func (*TreeConnectResponse) CommandCode() Command { return SMB2_TREE_CONNECT }

// ----------------------------------------------------------------------------
// SMB2 TREE_DISCONNECT Response Packet
//

type TreeDisconnectResponse struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*TreeDisconnectResponse) CommandCode() Command { return SMB2_TREE_DISCONNECT }

// ----------------------------------------------------------------------------
// SMB2 CREATE Response Packet
//

type CreateResponse struct {
	StructureSize        uint16 `smb:"const:89"`
	OplockLevel          uint8
	Flags                uint8
	CreateAction         uint32
	CreationTime         Filetime
	LastAccessTime       Filetime
	LastWriteTime        Filetime
	ChangeTime           Filetime
	AllocationSize       uint64
	EndofFile            uint64
	FileAttributes       uint32
	Reserved2            uint32
	FileId               FileId
	CreateContextsOffset uint32 `smb:"offsetof:CreateContextList"`
	CreateContextsLength uint32 `smb:"lenof:CreateContextList"`
	CreateContextList    CreateContexts `smb:"trailing,align:8"`
}

func (*CreateResponse) CommandCode() Command { return SMB2_CREATE }

// ----------------------------------------------------------------------------
// SMB2 CLOSE Response Packet
//

type CloseResponse struct {
	StructureSize  uint16 `smb:"const:60"`
	Flags          uint16
	Reserved       uint32
	CreationTime   Filetime
	LastAccessTime Filetime
	LastWriteTime  Filetime
	ChangeTime     Filetime
	AllocationSize uint64
	EndofFile      uint64
	FileAttributes uint32
}

func (*CloseResponse) CommandCode() Command { return SMB2_CLOSE }

// ----------------------------------------------------------------------------
// SMB2 FLUSH Response Packet
//

type FlushResponse struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*FlushResponse) CommandCode() Command { return SMB2_FLUSH }

// ----------------------------------------------------------------------------
// SMB2 READ Response Packet
//

type ReadResponse struct {
	StructureSize uint16 `smb:"const:17"`
	DataOffset    uint8  `smb:"offsetof:Data"`
	Reserved      uint8
	DataLength    uint32 `smb:"lenof:Data"`
	DataRemaining uint32
	Reserved2     uint32
	Data          []byte `smb:"trailing"`
}

func (*ReadResponse) CommandCode() Command { return SMB2_READ }

// ----------------------------------------------------------------------------
// SMB2 WRITE Response Packet
//

type WriteResponse struct {
	StructureSize          uint16 `smb:"const:17"`
	Reserved               uint16
	Count                  uint32
	Remaining              uint32
	WriteChannelInfoOffset uint16
	WriteChannelInfoLength uint16
}

func (*WriteResponse) CommandCode() Command { return SMB2_WRITE }

// ----------------------------------------------------------------------------
// SMB2 LOCK Response Packet
//

type LockResponse struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*LockResponse) CommandCode() Command { return SMB2_LOCK }

// ----------------------------------------------------------------------------
// SMB2 IOCTL Response Packet
//

type IoctlResponse struct {
	StructureSize uint16 `smb:"const:49"`
	Reserved      uint16
	CtlCode       uint32
	FileId        FileId
	InputOffset   uint32 `smb:"offsetof:Input"`
	InputCount    uint32 `smb:"lenof:Input"`
	OutputOffset  uint32 `smb:"offsetof:Output"`
	OutputCount   uint32 `smb:"lenof:Output"`
	Flags         uint32
	Reserved2     uint32
	Input         []byte `smb:"trailing"`
	Output        []byte `smb:"trailing"`
}

func (*IoctlResponse) CommandCode() Command { return SMB2_IOCTL }

// ----------------------------------------------------------------------------
// SMB2 ECHO Response Packet
//

type EchoResponse struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*EchoResponse) CommandCode() Command { return SMB2_ECHO }

// ----------------------------------------------------------------------------
// SMB2 QUERY_DIRECTORY Response Packet
//

type QueryDirectoryResponse struct {
	StructureSize      uint16 `smb:"const:9"`
	OutputBufferOffset uint16 `smb:"offsetof:OutputBuffer"`
	OutputBufferLength uint32 `smb:"lenof:OutputBuffer"`
	OutputBuffer       []byte `smb:"trailing"`
}

func (*QueryDirectoryResponse) CommandCode() Command { return SMB2_QUERY_DIRECTORY }

// ----------------------------------------------------------------------------
// SMB2 CHANGE_NOTIFY Response Packet
//

type ChangeNotifyResponse struct {
	StructureSize      uint16 `smb:"const:9"`
	OutputBufferOffset uint16 `smb:"offsetof:Buffer"`
	OutputBufferLength uint32 `smb:"lenof:Buffer"`
	Buffer             FileNotifyInfoList `smb:"trailing"`
}

func (*ChangeNotifyResponse) CommandCode() Command { return SMB2_CHANGE_NOTIFY }

// ----------------------------------------------------------------------------
// SMB2 QUERY_INFO Response Packet
//

type QueryInfoResponse struct {
	StructureSize      uint16 `smb:"const:9"`
	OutputBufferOffset uint16 `smb:"offsetof:OutputBuffer"`
	OutputBufferLength uint32 `smb:"lenof:OutputBuffer"`
	OutputBuffer       []byte `smb:"trailing"`
}

func (*QueryInfoResponse) CommandCode() Command { return SMB2_QUERY_INFO }

// ----------------------------------------------------------------------------
// SMB2 SET_INFO Response Packet
//

type SetInfoResponse struct {
	StructureSize uint16 `smb:"const:2"`
}

func (*SetInfoResponse) CommandCode() Command { return SMB2_SET_INFO }

// ----------------------------------------------------------------------------
// SMB2 OPLOCK_BREAK Notification/Response Packet
//

// OplockBreak is both the break notification and the break response;
// the two server-to-client shapes are identical on the wire.
type OplockBreak struct {
	StructureSize uint16 `smb:"const:24"`
	OplockLevel   uint8
	Reserved      uint8
	Reserved2     uint32
	FileId        FileId
}

func (*OplockBreak) CommandCode() Command { return SMB2_OPLOCK_BREAK }

// ----------------------------------------------------------------------------
// SMB2 LEASE_BREAK Notification Packet
//

const SMB2_NOTIFY_BREAK_LEASE_FLAG_ACK_REQUIRED = 0x01

type LeaseBreakNotify struct {
	StructureSize     uint16 `smb:"const:44"`
	NewEpoch          uint16
	Flags             uint32
	LeaseKey          GUID
	CurrentLeaseState uint32
	NewLeaseState     uint32
	BreakReason       uint32
	AccessMaskHint    uint32
	ShareMaskHint     uint32
}

func (*LeaseBreakNotify) CommandCode() Command { return SMB2_OPLOCK_BREAK }

func (n *LeaseBreakNotify) AckRequired() bool {
	return n.Flags&SMB2_NOTIFY_BREAK_LEASE_FLAG_ACK_REQUIRED != 0
}

// ----------------------------------------------------------------------------
// SMB2 LEASE_BREAK Response Packet
//

type LeaseBreakResponse struct {
	StructureSize uint16 `smb:"const:36"`
	Reserved      uint16
	Flags         uint32
	LeaseKey      GUID
	LeaseState    uint32
	LeaseDuration uint64
}

func (*LeaseBreakResponse) CommandCode() Command { return SMB2_OPLOCK_BREAK }

// ----------------------------------------------------------------------------
// SMB2 SERVER_TO_CLIENT_NOTIFICATION Packet
//

type ServerToClientNotification struct {
	StructureSize    uint16
	Reserved         uint16
	NotificationType uint32
	Notification     []byte
}

func (*ServerToClientNotification) CommandCode() Command {
	return SMB2_SERVER_TO_CLIENT_NOTIFICATION
}

// SessionClosed reports whether the notification announces a closed
// session; the notification body is reserved bytes in that case.
func (n *ServerToClientNotification) SessionClosed() bool {
	return n.NotificationType == SMB2_NOTIFY_SESSION_CLOSED
}
