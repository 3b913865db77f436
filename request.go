// ref: MS-SMB2 2.2

package smbmsg

// ----------------------------------------------------------------------------
// SMB2 NEGOTIATE Request Packet
//

type NegotiateRequest struct {
	StructureSize          uint16 `smb:"const:36"`
	DialectCount           uint16 `smb:"countof:Dialects"`
	SecurityMode           uint16
	Reserved               uint16
	Capabilities           uint32
	ClientGuid             GUID
	NegotiateContextOffset uint32 `smb:"offsetof:NegotiateContextList"`
	NegotiateContextCount  uint16 `smb:"countof:NegotiateContextList"`
	Reserved2              uint16
	Dialects               []uint16
	NegotiateContextList   NegotiateContexts `smb:"trailing,align:8"`
}

func (*NegotiateRequest) CommandCode() Command { return SMB2_NEGOTIATE }

// ClientStartTime reads the pre-3.1.1 view of the context offset/count
// union. Dialects before 3.1.1 carry a client start time there instead.
func (req *NegotiateRequest) ClientStartTime() Filetime {
	return Filetime{
		LowDateTime:  req.NegotiateContextOffset,
		HighDateTime: uint32(req.NegotiateContextCount) | uint32(req.Reserved2)<<16,
	}
}

// ----------------------------------------------------------------------------
// SMB2 SESSION_SETUP Request Packet
//

type SessionSetupRequest struct {
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

func (*SessionSetupRequest) CommandCode() Command { return SMB2_SESSION_SETUP }

// ----------------------------------------------------------------------------
// SMB2 LOGOFF Request Packet
//

type LogoffRequest struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*LogoffRequest) CommandCode() Command { return SMB2_LOGOFF }

// ----------------------------------------------------------------------------
// SMB2 TREE_CONNECT Request Packet
//

type TreeConnectRequest struct {
	StructureSize uint16 `smb:"const:9"`
	Flags         uint16 // reserved before 3.1.1
	PathOffset    uint16 `smb:"offsetof:Path"`
	PathLength    uint16 `smb:"lenof:Path"`
	Path          []uint16 `smb:"trailing"`
}

func (*TreeConnectRequest) CommandCode() Command { return SMB2_TREE_CONNECT }

// ----------------------------------------------------------------------------
// SMB2 TREE_DISCONNECT Request Packet
//

type TreeDisconnectRequest struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*TreeDisconnectRequest) CommandCode() Command { return SMB2_TREE_DISCONNECT }

// ----------------------------------------------------------------------------
// SMB2 CREATE Request Packet
//

type CreateRequest struct {
	StructureSize        uint16 `smb:"const:57"`
	SecurityFlags        uint8
	RequestedOplockLevel uint8
	ImpersonationLevel   uint32
	SmbCreateFlags       uint64
	Reserved             uint64
	DesiredAccess        uint32
	FileAttributes       uint32
	ShareAccess          uint32
	CreateDisposition    uint32
	CreateOptions        uint32
	NameOffset           uint16 `smb:"offsetof:Name"`
	NameLength           uint16 `smb:"lenof:Name"`
	CreateContextsOffset uint32 `smb:"offsetof:CreateContextList"`
	CreateContextsLength uint32 `smb:"lenof:CreateContextList"`
	Name                 []uint16       `smb:"trailing"`
	CreateContextList    CreateContexts `smb:"trailing,align:8"`
}

func (*CreateRequest) CommandCode() Command { return SMB2_CREATE }

// ----------------------------------------------------------------------------
// SMB2 CLOSE Request Packet
//

type CloseRequest struct {
	StructureSize uint16 `smb:"const:24"`
	Flags         uint16
	Reserved      uint32
	FileId        FileId
}

func (*CloseRequest) CommandCode() Command { return SMB2_CLOSE }

// ----------------------------------------------------------------------------
// SMB2 FLUSH Request Packet
//

type FlushRequest struct {
	StructureSize uint16 `smb:"const:24"`
	Reserved1     uint16
	Reserved2     uint32
	FileId        FileId
}

func (*FlushRequest) CommandCode() Command { return SMB2_FLUSH }

// ----------------------------------------------------------------------------
// SMB2 READ Request Packet
//

type ReadRequest struct {
	StructureSize         uint16 `smb:"const:49"`
	Padding               uint8
	Flags                 uint8
	Length                uint32
	Offset                uint64
	FileId                FileId
	MinimumCount          uint32
	Channel               uint32
	RemainingBytes        uint32
	ReadChannelInfoOffset uint16 `smb:"offsetof:ReadChannelInfo"`
	ReadChannelInfoLength uint16 `smb:"lenof:ReadChannelInfo"`
	ReadChannelInfo       []byte `smb:"trailing"`
}

func (*ReadRequest) CommandCode() Command { return SMB2_READ }

// ----------------------------------------------------------------------------
// SMB2 WRITE Request Packet
//

type WriteRequest struct {
	StructureSize          uint16 `smb:"const:49"`
	DataOffset             uint16 `smb:"offsetof:Data"`
	Length                 uint32 `smb:"lenof:Data"`
	Offset                 uint64
	FileId                 FileId
	Channel                uint32
	RemainingBytes         uint32
	WriteChannelInfoOffset uint16 `smb:"offsetof:WriteChannelInfo"`
	WriteChannelInfoLength uint16 `smb:"lenof:WriteChannelInfo"`
	Flags                  uint32
	WriteChannelInfo       []byte `smb:"trailing"`
	Data                   []byte `smb:"trailing"`
}

func (*WriteRequest) CommandCode() Command { return SMB2_WRITE }

// ----------------------------------------------------------------------------
// SMB2 LOCK Request Packet
//

type LockElement struct {
	Offset   uint64
	Length   uint64
	Flags    uint32
	Reserved uint32
}

type LockRequest struct {
	StructureSize uint16 `smb:"const:48"`
	LockCount     uint16 `smb:"countof:Locks"`
	LockSequence  uint32
	FileId        FileId
	Locks         []LockElement
}

func (*LockRequest) CommandCode() Command { return SMB2_LOCK }

// ----------------------------------------------------------------------------
// SMB2 IOCTL Request Packet
//

type IoctlRequest struct {
	StructureSize     uint16 `smb:"const:57"`
	Reserved          uint16
	CtlCode           uint32
	FileId            FileId
	InputOffset       uint32 `smb:"offsetof:Input"`
	InputCount        uint32 `smb:"lenof:Input"`
	MaxInputResponse  uint32
	OutputOffset      uint32 `smb:"offsetof:Output"`
	OutputCount       uint32 `smb:"lenof:Output"`
	MaxOutputResponse uint32
	Flags             uint32
	Reserved2         uint32
	Input             []byte `smb:"trailing"`
	Output            []byte `smb:"trailing"`
}

func (*IoctlRequest) CommandCode() Command { return SMB2_IOCTL }

// ----------------------------------------------------------------------------
// SMB2 CANCEL Request Packet
//

type CancelRequest struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*CancelRequest) CommandCode() Command { return SMB2_CANCEL }

// ----------------------------------------------------------------------------
// SMB2 ECHO Request Packet
//

type EchoRequest struct {
	StructureSize uint16 `smb:"const:4"`
	Reserved      uint16
}

func (*EchoRequest) CommandCode() Command { return SMB2_ECHO }

// ----------------------------------------------------------------------------
// SMB2 QUERY_DIRECTORY Request Packet
//

type QueryDirectoryRequest struct {
	StructureSize        uint16 `smb:"const:33"`
	FileInformationClass uint8
	Flags                uint8
	FileIndex            uint32
	FileId               FileId
	FileNameOffset       uint16 `smb:"offsetof:FileName"`
	FileNameLength       uint16 `smb:"lenof:FileName"`
	OutputBufferLength   uint32
	FileName             []uint16 `smb:"trailing"`
}

func (*QueryDirectoryRequest) CommandCode() Command { return SMB2_QUERY_DIRECTORY }

// ----------------------------------------------------------------------------
// SMB2 CHANGE_NOTIFY Request Packet
//

type ChangeNotifyRequest struct {
	StructureSize      uint16 `smb:"const:32"`
	Flags              uint16
	OutputBufferLength uint32
	FileId             FileId
	CompletionFilter   uint32
	Reserved           uint32
}

func (*ChangeNotifyRequest) CommandCode() Command { return SMB2_CHANGE_NOTIFY }

// ----------------------------------------------------------------------------
// SMB2 QUERY_INFO Request Packet
//

type QueryInfoRequest struct {
	StructureSize         uint16 `smb:"const:41"`
	InfoType              uint8
	FileInfoClass         uint8
	OutputBufferLength    uint32
	InputBufferOffset     uint16 `smb:"offsetof:InputBuffer"`
	Reserved              uint16
	InputBufferLength     uint32 `smb:"lenof:InputBuffer"`
	AdditionalInformation uint32
	Flags                 uint32
	FileId                FileId
	InputBuffer           []byte `smb:"trailing"`
}

func (*QueryInfoRequest) CommandCode() Command { return SMB2_QUERY_INFO }

// ----------------------------------------------------------------------------
// SMB2 SET_INFO Request Packet
//

type SetInfoRequest struct {
	StructureSize         uint16 `smb:"const:33"`
	InfoType              uint8
	FileInfoClass         uint8
	BufferLength          uint32 `smb:"lenof:Buffer"`
	BufferOffset          uint16 `smb:"offsetof:Buffer"`
	Reserved              uint16
	AdditionalInformation uint32
	FileId                FileId
	Buffer                []byte `smb:"trailing"`
}

func (*SetInfoRequest) CommandCode() Command { return SMB2_SET_INFO }

// ----------------------------------------------------------------------------
// SMB2 OPLOCK_BREAK Acknowledgment Packet
//

type OplockBreakAck struct {
	StructureSize uint16 `smb:"const:24"`
	OplockLevel   uint8
	Reserved      uint8
	Reserved2     uint32
	FileId        FileId
}

func (*OplockBreakAck) CommandCode() Command { return SMB2_OPLOCK_BREAK }

// ----------------------------------------------------------------------------
// SMB2 LEASE_BREAK Acknowledgment Packet
//

type LeaseBreakAck struct {
	StructureSize uint16 `smb:"const:36"`
	Reserved      uint16
	Flags         uint32
	LeaseKey      GUID
	LeaseState    uint32
	LeaseDuration uint64
}

func (*LeaseBreakAck) CommandCode() Command { return SMB2_OPLOCK_BREAK }
