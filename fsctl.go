// ref: MS-SMB2 2.2.31.4, 2.2.32.5

package smbmsg

// Typed payloads for the well-known IOCTL control codes. They travel in
// IoctlRequest.Input and IoctlResponse.Output and are encoded with
// encode.Marshal/Unmarshal using a zero header offset, since IOCTL
// buffers are self-contained.

// ----------------------------------------------------------------------------
// FSCTL_VALIDATE_NEGOTIATE_INFO
//

type ValidateNegotiateInfoRequest struct {
	Capabilities uint32
	Guid         GUID
	SecurityMode uint16
	DialectCount uint16 `smb:"countof:Dialects"`
	Dialects     []uint16
}

type ValidateNegotiateInfoResponse struct {
	Capabilities uint32
	Guid         GUID
	SecurityMode uint16
	Dialect      uint16
}

// ----------------------------------------------------------------------------
// FSCTL_SRV_REQUEST_RESUME_KEY
//

type SrvRequestResumeKeyResponse struct {
	ResumeKey     [24]byte
	ContextLength uint32 `smb:"lenof:Context"`
	Context       []byte
}

// ----------------------------------------------------------------------------
// FSCTL_SRV_COPYCHUNK / FSCTL_SRV_COPYCHUNK_WRITE
//

type SrvCopychunk struct {
	SourceOffset uint64
	TargetOffset uint64
	Length       uint32
	Reserved     uint32
}

type SrvCopychunkCopy struct {
	SourceKey  [24]byte
	ChunkCount uint32 `smb:"countof:Chunks"`
	Reserved   uint32
	Chunks     []SrvCopychunk
}

type SrvCopychunkResponse struct {
	ChunksWritten     uint32
	ChunkBytesWritten uint32
	TotalBytesWritten uint32
}

// ----------------------------------------------------------------------------
// FSCTL_PIPE_WAIT
//

type PipeWaitRequest struct {
	Timeout          uint64
	NameLength       uint32 `smb:"lenof:Name"`
	TimeoutSpecified uint8
	Padding          uint8
	Name             []uint16
}
