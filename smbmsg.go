// Package smbmsg implements the SMB2/SMB3 message layer: the 64-byte
// packet header, one typed body per command and direction, chained
// (compounded) message iteration, and the auxiliary wire structures
// carried inside bodies (negotiate contexts, create contexts, DFS
// referrals, change-notify records).
//
// The package is a stateless codec. It converts between byte slices and
// typed structures and validates structural invariants only; transport
// framing, authentication, signing and credit accounting belong to the
// layers around it.
package smbmsg

// ----------------------------------------------------------------------------
// SMB2 Commands
//

type Command uint16

const (
	SMB2_NEGOTIATE                     Command = 0x0000
	SMB2_SESSION_SETUP                 Command = 0x0001
	SMB2_LOGOFF                        Command = 0x0002
	SMB2_TREE_CONNECT                  Command = 0x0003
	SMB2_TREE_DISCONNECT               Command = 0x0004
	SMB2_CREATE                        Command = 0x0005
	SMB2_CLOSE                         Command = 0x0006
	SMB2_FLUSH                         Command = 0x0007
	SMB2_READ                          Command = 0x0008
	SMB2_WRITE                         Command = 0x0009
	SMB2_LOCK                          Command = 0x000a
	SMB2_IOCTL                         Command = 0x000b
	SMB2_CANCEL                        Command = 0x000c
	SMB2_ECHO                          Command = 0x000d
	SMB2_QUERY_DIRECTORY               Command = 0x000e
	SMB2_CHANGE_NOTIFY                 Command = 0x000f
	SMB2_QUERY_INFO                    Command = 0x0010
	SMB2_SET_INFO                      Command = 0x0011
	SMB2_OPLOCK_BREAK                  Command = 0x0012
	SMB2_SERVER_TO_CLIENT_NOTIFICATION Command = 0x0013
)

var commandNames = map[Command]string{
	SMB2_NEGOTIATE:                     "NEGOTIATE",
	SMB2_SESSION_SETUP:                 "SESSION_SETUP",
	SMB2_LOGOFF:                        "LOGOFF",
	SMB2_TREE_CONNECT:                  "TREE_CONNECT",
	SMB2_TREE_DISCONNECT:               "TREE_DISCONNECT",
	SMB2_CREATE:                        "CREATE",
	SMB2_CLOSE:                         "CLOSE",
	SMB2_FLUSH:                         "FLUSH",
	SMB2_READ:                          "READ",
	SMB2_WRITE:                         "WRITE",
	SMB2_LOCK:                          "LOCK",
	SMB2_IOCTL:                         "IOCTL",
	SMB2_CANCEL:                        "CANCEL",
	SMB2_ECHO:                          "ECHO",
	SMB2_QUERY_DIRECTORY:               "QUERY_DIRECTORY",
	SMB2_CHANGE_NOTIFY:                 "CHANGE_NOTIFY",
	SMB2_QUERY_INFO:                    "QUERY_INFO",
	SMB2_SET_INFO:                      "SET_INFO",
	SMB2_OPLOCK_BREAK:                  "OPLOCK_BREAK",
	SMB2_SERVER_TO_CLIENT_NOTIFICATION: "SERVER_TO_CLIENT_NOTIFICATION",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "UNKNOWN_COMMAND"
}

// ----------------------------------------------------------------------------
// SMB2 Header Flags
//

const (
	SMB2_FLAGS_SERVER_TO_REDIR    = 0x00000001
	SMB2_FLAGS_ASYNC_COMMAND      = 0x00000002
	SMB2_FLAGS_RELATED_OPERATIONS = 0x00000004
	SMB2_FLAGS_SIGNED             = 0x00000008
	SMB2_FLAGS_PRIORITY_MASK      = 0x00000070
	SMB2_FLAGS_DFS_OPERATIONS     = 0x10000000
	SMB2_FLAGS_REPLAY_OPERATION   = 0x20000000
)

// ----------------------------------------------------------------------------
// SMB2 Dialects
//

const (
	SMB202 = 0x0202
	SMB210 = 0x0210
	SMB300 = 0x0300
	SMB302 = 0x0302
	SMB311 = 0x0311

	SMB2_WILDCARD = 0x02ff
)

// ----------------------------------------------------------------------------
// SMB2 NEGOTIATE
//

const (
	SMB2_NEGOTIATE_SIGNING_ENABLED  = 0x0001
	SMB2_NEGOTIATE_SIGNING_REQUIRED = 0x0002
)

const (
	SMB2_GLOBAL_CAP_DFS                = 0x00000001
	SMB2_GLOBAL_CAP_LEASING            = 0x00000002
	SMB2_GLOBAL_CAP_LARGE_MTU          = 0x00000004
	SMB2_GLOBAL_CAP_MULTI_CHANNEL      = 0x00000008
	SMB2_GLOBAL_CAP_PERSISTENT_HANDLES = 0x00000010
	SMB2_GLOBAL_CAP_DIRECTORY_LEASING  = 0x00000020
	SMB2_GLOBAL_CAP_ENCRYPTION         = 0x00000040
	SMB2_GLOBAL_CAP_NOTIFICATIONS      = 0x00000080
)

const (
	SMB2_PREAUTH_INTEGRITY_CAPABILITIES = 0x0001
	SMB2_ENCRYPTION_CAPABILITIES        = 0x0002
	SMB2_COMPRESSION_CAPABILITIES       = 0x0003
	SMB2_NETNAME_NEGOTIATE_CONTEXT_ID   = 0x0005
	SMB2_TRANSPORT_CAPABILITIES         = 0x0006
	SMB2_RDMA_TRANSFORM_CAPABILITIES    = 0x0007
	SMB2_SIGNING_CAPABILITIES           = 0x0008
)

const (
	SHA512 = 0x0001
)

const (
	AES128CCM = 0x0001
	AES128GCM = 0x0002
	AES256CCM = 0x0003
	AES256GCM = 0x0004
)

const (
	SMB2_COMPRESSION_NONE       = 0x0000
	SMB2_COMPRESSION_LZNT1      = 0x0001
	SMB2_COMPRESSION_LZ77       = 0x0002
	SMB2_COMPRESSION_LZ77_HUFF  = 0x0003
	SMB2_COMPRESSION_PATTERN_V1 = 0x0004
	SMB2_COMPRESSION_LZ4        = 0x0005
)

const (
	SMB2_HMAC_SHA256 = 0x0000
	SMB2_AES_CMAC    = 0x0001
	SMB2_AES_GMAC    = 0x0002
)

// ----------------------------------------------------------------------------
// SMB2 SESSION_SETUP
//

const (
	SMB2_SESSION_FLAG_BINDING = 0x01
)

const (
	SMB2_SESSION_FLAG_IS_GUEST     = 0x0001
	SMB2_SESSION_FLAG_IS_NULL      = 0x0002
	SMB2_SESSION_FLAG_ENCRYPT_DATA = 0x0004
)

// ----------------------------------------------------------------------------
// SMB2 TREE_CONNECT
//

const (
	SMB2_SHARE_TYPE_DISK  = 0x01
	SMB2_SHARE_TYPE_PIPE  = 0x02
	SMB2_SHARE_TYPE_PRINT = 0x03
)

const (
	SMB2_SHAREFLAG_DFS                         = 0x00000001
	SMB2_SHAREFLAG_DFS_ROOT                    = 0x00000002
	SMB2_SHAREFLAG_RESTRICT_EXCLUSIVE_OPENS    = 0x00000100
	SMB2_SHAREFLAG_FORCE_SHARED_DELETE         = 0x00000200
	SMB2_SHAREFLAG_ALLOW_NAMESPACE_CACHING     = 0x00000400
	SMB2_SHAREFLAG_ACCESS_BASED_DIRECTORY_ENUM = 0x00000800
	SMB2_SHAREFLAG_FORCE_LEVELII_OPLOCK        = 0x00001000
	SMB2_SHAREFLAG_ENABLE_HASH_V1              = 0x00002000
	SMB2_SHAREFLAG_ENABLE_HASH_V2              = 0x00004000
	SMB2_SHAREFLAG_ENCRYPT_DATA                = 0x00008000
)

const (
	SMB2_SHARE_CAP_DFS                     = 0x00000008
	SMB2_SHARE_CAP_CONTINUOUS_AVAILABILITY = 0x00000010
	SMB2_SHARE_CAP_SCALEOUT                = 0x00000020
	SMB2_SHARE_CAP_CLUSTER                 = 0x00000040
	SMB2_SHARE_CAP_ASYMMETRIC              = 0x00000080
)

// ----------------------------------------------------------------------------
// SMB2 CREATE
//

const (
	SMB2_OPLOCK_LEVEL_NONE      = 0x00
	SMB2_OPLOCK_LEVEL_II        = 0x01
	SMB2_OPLOCK_LEVEL_EXCLUSIVE = 0x08
	SMB2_OPLOCK_LEVEL_BATCH     = 0x09
	SMB2_OPLOCK_LEVEL_LEASE     = 0xff
)

const (
	Anonymous      = 0x00000000
	Identification = 0x00000001
	Impersonation  = 0x00000002
	Delegate       = 0x00000003
)

const (
	FILE_SUPERSEDE    = 0x00000000
	FILE_OPEN         = 0x00000001
	FILE_CREATE       = 0x00000002
	FILE_OPEN_IF      = 0x00000003
	FILE_OVERWRITE    = 0x00000004
	FILE_OVERWRITE_IF = 0x00000005
)

const (
	FILE_SHARE_READ   = 0x00000001
	FILE_SHARE_WRITE  = 0x00000002
	FILE_SHARE_DELETE = 0x00000004
)

const (
	SMB2_CREATE_ACTION_SUPERSEDED  = 0x00000000
	SMB2_CREATE_ACTION_OPENED      = 0x00000001
	SMB2_CREATE_ACTION_CREATED     = 0x00000002
	SMB2_CREATE_ACTION_OVERWRITTEN = 0x00000003
)

// ----------------------------------------------------------------------------
// SMB2 READ / WRITE
//

const (
	SMB2_READFLAG_READ_UNBUFFERED = 0x01
)

const (
	SMB2_WRITEFLAG_WRITE_THROUGH    = 0x00000001
	SMB2_WRITEFLAG_WRITE_UNBUFFERED = 0x00000002
)

const (
	SMB2_CHANNEL_NONE               = 0x00000000
	SMB2_CHANNEL_RDMA_V1            = 0x00000001
	SMB2_CHANNEL_RDMA_V1_INVALIDATE = 0x00000002
)

// ----------------------------------------------------------------------------
// SMB2 LOCK
//

const (
	SMB2_LOCKFLAG_SHARED_LOCK      = 0x00000001
	SMB2_LOCKFLAG_EXCLUSIVE_LOCK   = 0x00000002
	SMB2_LOCKFLAG_UNLOCK           = 0x00000004
	SMB2_LOCKFLAG_FAIL_IMMEDIATELY = 0x00000010
)

// ----------------------------------------------------------------------------
// SMB2 IOCTL
//

const (
	FSCTL_DFS_GET_REFERRALS            = 0x00060194
	FSCTL_PIPE_PEEK                    = 0x0011400c
	FSCTL_PIPE_WAIT                    = 0x00110018
	FSCTL_PIPE_TRANSCEIVE              = 0x0011c017
	FSCTL_SRV_COPYCHUNK                = 0x001440f2
	FSCTL_SRV_ENUMERATE_SNAPSHOTS      = 0x00144064
	FSCTL_SRV_REQUEST_RESUME_KEY       = 0x00140078
	FSCTL_SRV_READ_HASH                = 0x001441bb
	FSCTL_SRV_COPYCHUNK_WRITE          = 0x001480f2
	FSCTL_LMR_REQUEST_RESILIENCY       = 0x001401d4
	FSCTL_QUERY_NETWORK_INTERFACE_INFO = 0x001401fc
	FSCTL_SET_REPARSE_POINT            = 0x000900a4
	FSCTL_GET_REPARSE_POINT            = 0x000900a8
	FSCTL_DFS_GET_REFERRALS_EX         = 0x000601b0
	FSCTL_FILE_LEVEL_TRIM              = 0x00098208
	FSCTL_VALIDATE_NEGOTIATE_INFO      = 0x00140204
)

const (
	SMB2_0_IOCTL_IS_FSCTL = 0x00000001
)

// ----------------------------------------------------------------------------
// SMB2 QUERY_DIRECTORY
//

const (
	SMB2_RESTART_SCANS       = 0x01
	SMB2_RETURN_SINGLE_ENTRY = 0x02
	SMB2_INDEX_SPECIFIED     = 0x04
	SMB2_REOPEN              = 0x10
)

// ----------------------------------------------------------------------------
// SMB2 CHANGE_NOTIFY
//

const (
	SMB2_WATCH_TREE = 0x0001
)

const (
	FILE_NOTIFY_CHANGE_FILE_NAME    = 0x00000001
	FILE_NOTIFY_CHANGE_DIR_NAME     = 0x00000002
	FILE_NOTIFY_CHANGE_ATTRIBUTES   = 0x00000004
	FILE_NOTIFY_CHANGE_SIZE         = 0x00000008
	FILE_NOTIFY_CHANGE_LAST_WRITE   = 0x00000010
	FILE_NOTIFY_CHANGE_LAST_ACCESS  = 0x00000020
	FILE_NOTIFY_CHANGE_CREATION     = 0x00000040
	FILE_NOTIFY_CHANGE_EA           = 0x00000080
	FILE_NOTIFY_CHANGE_SECURITY     = 0x00000100
	FILE_NOTIFY_CHANGE_STREAM_NAME  = 0x00000200
	FILE_NOTIFY_CHANGE_STREAM_SIZE  = 0x00000400
	FILE_NOTIFY_CHANGE_STREAM_WRITE = 0x00000800
)

const (
	FILE_ACTION_ADDED            = 0x00000001
	FILE_ACTION_REMOVED          = 0x00000002
	FILE_ACTION_MODIFIED         = 0x00000003
	FILE_ACTION_RENAMED_OLD_NAME = 0x00000004
	FILE_ACTION_RENAMED_NEW_NAME = 0x00000005
)

// ----------------------------------------------------------------------------
// SMB2 QUERY_INFO / SET_INFO
//

const (
	SMB2_0_INFO_FILE       = 0x01
	SMB2_0_INFO_FILESYSTEM = 0x02
	SMB2_0_INFO_SECURITY   = 0x03
	SMB2_0_INFO_QUOTA      = 0x04
)

// ----------------------------------------------------------------------------
// SMB2 OPLOCK_BREAK / LEASE_BREAK
//

const (
	SMB2_LEASE_NONE           = 0x00000000
	SMB2_LEASE_READ_CACHING   = 0x00000001
	SMB2_LEASE_HANDLE_CACHING = 0x00000002
	SMB2_LEASE_WRITE_CACHING  = 0x00000004
)

const (
	SMB2_NOTIFY_SESSION_CLOSED = 0x00000000
)
