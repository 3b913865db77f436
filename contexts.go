// ref: MS-SMB2 2.2.3.1, 2.2.13.2

package smbmsg

import (
	"github.com/omnifocal/smbmsg/encode"
)

// ----------------------------------------------------------------------------
// SMB2 NEGOTIATE Contexts
//

// From SMB311

// NegotiateContext is one element of the 8-aligned context chain at the
// tail of 3.1.1 negotiate messages. Data keeps the raw payload; the
// typed context structures below convert to and from it.
type NegotiateContext struct {
	ContextType uint16
	Data        []byte
}

// Decode unmarshals the context payload into one of the typed context
// structures.
func (ctx *NegotiateContext) Decode(v interface{}) error {
	return encoder.Unmarshal(ctx.Data, v, &encoder.Options{})
}

// NewNegotiateContext marshals a typed context payload.
func NewNegotiateContext(contextType uint16, v interface{}) (NegotiateContext, error) {
	data, err := encoder.Marshal(v, &encoder.Options{})
	if err != nil {
		return NegotiateContext{}, err
	}
	return NegotiateContext{ContextType: contextType, Data: data}, nil
}

type NegotiateContexts []NegotiateContext

func (cs NegotiateContexts) Count() int { return len(cs) }

func (cs NegotiateContexts) MarshalSMB() ([]byte, error) {
	var out []byte

	for i, ctx := range cs {
		if i > 0 {
			for len(out)%8 != 0 {
				out = append(out, 0)
			}
		}

		var hdr [8]byte
		le.PutUint16(hdr[:2], ctx.ContextType)
		le.PutUint16(hdr[2:4], uint16(len(ctx.Data)))
		out = append(out, hdr[:]...)
		out = append(out, ctx.Data...)
	}

	return out, nil
}

func (cs *NegotiateContexts) UnmarshalSMBCount(p []byte, count int) error {
	ctxs := make(NegotiateContexts, 0, count)

	for i := 0; i < count; i++ {
		if len(p) < 8 {
			return &encoder.TruncatedBufferError{Expected: 8, Actual: len(p)}
		}

		dataLength := int(le.Uint16(p[2:4]))
		if 8+dataLength > len(p) {
			return &encoder.TruncatedBufferError{Expected: 8 + dataLength, Actual: len(p)}
		}

		ctxs = append(ctxs, NegotiateContext{
			ContextType: le.Uint16(p[:2]),
			Data:        append([]byte(nil), p[8:8+dataLength]...),
		})

		next := Roundup(8+dataLength, 8)
		if next > len(p) {
			next = len(p)
		}
		p = p[next:]
	}

	*cs = ctxs

	return nil
}

// From SMB311

type PreauthIntegrityContext struct {
	HashAlgorithmCount uint16 `smb:"countof:HashAlgorithms"`
	SaltLength         uint16 `smb:"lenof:Salt"`
	HashAlgorithms     []uint16
	Salt               []byte
}

type EncryptionContext struct {
	CipherCount uint16 `smb:"countof:Ciphers"`
	Ciphers     []uint16
}

type CompressionContext struct {
	CompressionAlgorithmCount uint16 `smb:"countof:CompressionAlgorithms"`
	Padding                   uint16
	Flags                     uint32
	CompressionAlgorithms     []uint16
}

type NetnameContext struct {
	Netname []uint16
}

func (c *NetnameContext) String() string {
	return UTF16ToString(c.Netname)
}

type TransportContext struct {
	Flags uint32
}

type RdmaTransformContext struct {
	TransformCount   uint16 `smb:"countof:RdmaTransformIds"`
	Reserved1        uint16
	Reserved2        uint32
	RdmaTransformIds []uint16
}

type SigningContext struct {
	SigningAlgorithmCount uint16 `smb:"countof:SigningAlgorithms"`
	SigningAlgorithms     []uint16
}

// ----------------------------------------------------------------------------
// SMB2 CREATE Contexts
//

const (
	SMB2_CREATE_EA_BUFFER                    = "ExtA"
	SMB2_CREATE_SD_BUFFER                    = "SecD"
	SMB2_CREATE_DURABLE_HANDLE_REQUEST       = "DHnQ"
	SMB2_CREATE_DURABLE_HANDLE_RECONNECT     = "DHnC"
	SMB2_CREATE_ALLOCATION_SIZE              = "AlSi"
	SMB2_CREATE_QUERY_MAXIMAL_ACCESS_REQUEST = "MxAc"
	SMB2_CREATE_TIMEWARP_TOKEN               = "TWrp"
	SMB2_CREATE_QUERY_ON_DISK_ID             = "QFid"
	SMB2_CREATE_REQUEST_LEASE                = "RqLs"
	SMB2_CREATE_DURABLE_HANDLE_REQUEST_V2    = "DH2Q"
	SMB2_CREATE_DURABLE_HANDLE_RECONNECT_V2  = "DH2C"
)

// CreateContext is one element of the create context chain. Name is the
// tag identifying the context (a 4-byte string for the well-known ones);
// Data keeps the raw payload.
type CreateContext struct {
	Name []byte
	Data []byte
}

func (ctx *CreateContext) NameString() string {
	return string(ctx.Name)
}

func (ctx *CreateContext) Decode(v interface{}) error {
	return encoder.Unmarshal(ctx.Data, v, &encoder.Options{})
}

func NewCreateContext(name string, v interface{}) (CreateContext, error) {
	ctx := CreateContext{Name: []byte(name)}
	if v != nil {
		data, err := encoder.Marshal(v, &encoder.Options{})
		if err != nil {
			return CreateContext{}, err
		}
		ctx.Data = data
	}
	return ctx, nil
}

type CreateContexts []CreateContext

func (cs CreateContexts) Lookup(name string) (*CreateContext, bool) {
	for i := range cs {
		if string(cs[i].Name) == name {
			return &cs[i], true
		}
	}
	return nil, false
}

func (cs CreateContexts) MarshalSMB() ([]byte, error) {
	var out []byte

	for i, ctx := range cs {
		nameOffset := 16
		dataOffset := 0
		if len(ctx.Data) > 0 {
			dataOffset = Roundup(nameOffset+len(ctx.Name), 8)
		}

		size := nameOffset + len(ctx.Name)
		if dataOffset > 0 {
			size = dataOffset + len(ctx.Data)
		}

		next := 0
		if i < len(cs)-1 {
			next = Roundup(size, 8)
		}

		p := make([]byte, Roundup(size, 8))
		le.PutUint32(p[:4], uint32(next))
		le.PutUint16(p[4:6], uint16(nameOffset))
		le.PutUint16(p[6:8], uint16(len(ctx.Name)))
		le.PutUint16(p[10:12], uint16(dataOffset))
		le.PutUint32(p[12:16], uint32(len(ctx.Data)))
		copy(p[nameOffset:], ctx.Name)
		if dataOffset > 0 {
			copy(p[dataOffset:], ctx.Data)
		}

		if i == len(cs)-1 {
			p = p[:size]
		}

		out = append(out, p...)
	}

	return out, nil
}

func (cs *CreateContexts) UnmarshalSMB(p []byte) error {
	var ctxs CreateContexts

	for {
		if len(p) < 16 {
			return &encoder.TruncatedBufferError{Expected: 16, Actual: len(p)}
		}

		next := le.Uint32(p[:4])
		nameOffset := uint64(le.Uint16(p[4:6]))
		nameLength := uint64(le.Uint16(p[6:8]))
		dataOffset := uint64(le.Uint16(p[10:12]))
		dataLength := uint64(le.Uint32(p[12:16]))

		if nameOffset+nameLength > uint64(len(p)) {
			return &encoder.InvalidOffsetError{Field: "Name", Offset: nameOffset, Length: nameLength, Limit: len(p)}
		}
		if dataOffset+dataLength > uint64(len(p)) {
			return &encoder.InvalidOffsetError{Field: "Data", Offset: dataOffset, Length: dataLength, Limit: len(p)}
		}

		ctx := CreateContext{
			Name: append([]byte(nil), p[nameOffset:nameOffset+nameLength]...),
		}
		if dataLength > 0 {
			ctx.Data = append([]byte(nil), p[dataOffset:dataOffset+dataLength]...)
		}
		ctxs = append(ctxs, ctx)

		if next == 0 {
			break
		}
		// Next must move forward past this context's header or the chain
		// would loop.
		if next < 16 || uint64(next) > uint64(len(p)) {
			return &encoder.InvalidOffsetError{Field: "Next", Offset: uint64(next), Length: 0, Limit: len(p)}
		}
		p = p[next:]
	}

	*cs = ctxs

	return nil
}

// ----------------------------------------------------------------------------
// Well-known CREATE context payloads
//

type DurableHandleRequest struct {
	DurableRequest [16]byte
}

type DurableHandleReconnect struct {
	FileId FileId
}

type DurableHandleResponse struct {
	Reserved uint64
}

type DurableHandleRequestV2 struct {
	Timeout    uint32
	Flags      uint32
	Reserved   uint64
	CreateGuid GUID
}

const SMB2_DHANDLE_FLAG_PERSISTENT = 0x00000002

type DurableHandleReconnectV2 struct {
	FileId     FileId
	CreateGuid GUID
	Flags      uint32
}

type DurableHandleResponseV2 struct {
	Timeout uint32
	Flags   uint32
}

type LeaseContext struct {
	LeaseKey      GUID
	LeaseState    uint32
	LeaseFlags    uint32
	LeaseDuration uint64
}

const SMB2_LEASE_FLAG_PARENT_LEASE_KEY_SET = 0x00000004

type LeaseContextV2 struct {
	LeaseKey       GUID
	LeaseState     uint32
	LeaseFlags     uint32
	LeaseDuration  uint64
	ParentLeaseKey GUID
	Epoch          uint16
	Reserved       uint16
}

type MaximalAccessRequest struct {
	Timestamp Filetime
}

type MaximalAccessResponse struct {
	QueryStatus   uint32
	MaximalAccess uint32
}

type QueryOnDiskIdResponse struct {
	DiskFileId uint64
	VolumeId   uint64
	Reserved   [16]byte
}

type AllocationSizeContext struct {
	AllocationSize uint64
}

type TimewarpTokenContext struct {
	Timestamp Filetime
}

type AppInstanceIdContext struct {
	StructureSize uint16 `smb:"const:20"`
	Reserved      uint16
	AppInstanceId GUID
}

type AppInstanceVersionContext struct {
	StructureSize uint16 `smb:"const:24"`
	Reserved      uint16
	Padding       uint32
	VersionHigh   uint64
	VersionLow    uint64
}
