// ref: MS-ERREF 2.3

package smbmsg

import "fmt"

// NtStatus is the 32-bit status code carried in the header of every
// response. The top two bits encode the severity; anything with the
// error severity set carries an ErrorResponse body instead of the
// command's own response structure.
type NtStatus uint32

const (
	STATUS_SEVERITY_SUCCESS       = 0x0
	STATUS_SEVERITY_INFORMATIONAL = 0x1
	STATUS_SEVERITY_WARNING       = 0x2
	STATUS_SEVERITY_ERROR         = 0x3
)

func (s NtStatus) Severity() uint32 {
	return uint32(s) >> 30
}

func (s NtStatus) IsError() bool {
	return s.Severity() == STATUS_SEVERITY_ERROR
}

func (s NtStatus) String() string {
	if name, ok := ntStatusStrings[s]; ok {
		return name
	}
	return fmt.Sprintf("NTSTATUS(0x%08x)", uint32(s))
}

const (
	STATUS_SUCCESS                      NtStatus = 0x00000000
	STATUS_PENDING                      NtStatus = 0x00000103
	STATUS_NOTIFY_CLEANUP               NtStatus = 0x0000010b
	STATUS_NOTIFY_ENUM_DIR              NtStatus = 0x0000010c
	STATUS_INVALID_SMB                  NtStatus = 0x00010002
	STATUS_SMB_BAD_TID                  NtStatus = 0x00050002
	STATUS_SMB_BAD_COMMAND              NtStatus = 0x00160002
	STATUS_SMB_BAD_UID                  NtStatus = 0x005b0002
	STATUS_SMB_USE_STANDARD             NtStatus = 0x00fb0002
	STATUS_BUFFER_OVERFLOW              NtStatus = 0x80000005
	STATUS_NO_MORE_FILES                NtStatus = 0x80000006
	STATUS_STOPPED_ON_SYMLINK           NtStatus = 0x8000002d
	STATUS_NOT_IMPLEMENTED              NtStatus = 0xc0000002
	STATUS_INVALID_INFO_CLASS           NtStatus = 0xc0000003
	STATUS_INFO_LENGTH_MISMATCH         NtStatus = 0xc0000004
	STATUS_INVALID_PARAMETER            NtStatus = 0xc000000d
	STATUS_NO_SUCH_DEVICE               NtStatus = 0xc000000e
	STATUS_INVALID_DEVICE_REQUEST       NtStatus = 0xc0000010
	STATUS_END_OF_FILE                  NtStatus = 0xc0000011
	STATUS_MORE_PROCESSING_REQUIRED     NtStatus = 0xc0000016
	STATUS_ACCESS_DENIED                NtStatus = 0xc0000022
	STATUS_BUFFER_TOO_SMALL             NtStatus = 0xc0000023
	STATUS_OBJECT_NAME_INVALID          NtStatus = 0xc0000033
	STATUS_OBJECT_NAME_NOT_FOUND        NtStatus = 0xc0000034
	STATUS_OBJECT_NAME_COLLISION        NtStatus = 0xc0000035
	STATUS_OBJECT_PATH_NOT_FOUND        NtStatus = 0xc000003a
	STATUS_SHARING_VIOLATION            NtStatus = 0xc0000043
	STATUS_NO_EAS_ON_FILE               NtStatus = 0xc0000044
	STATUS_LOGON_FAILURE                NtStatus = 0xc000006d
	STATUS_NONE_MAPPED                  NtStatus = 0xc0000073
	STATUS_BAD_IMPERSONATION_LEVEL      NtStatus = 0xc00000a5
	STATUS_IO_TIMEOUT                   NtStatus = 0xc00000b5
	STATUS_FILE_IS_A_DIRECTORY          NtStatus = 0xc00000ba
	STATUS_NOT_SUPPORTED                NtStatus = 0xc00000bb
	STATUS_NETWORK_NAME_DELETED         NtStatus = 0xc00000c9
	STATUS_BAD_NETWORK_NAME             NtStatus = 0xc00000cc
	STATUS_REQUEST_NOT_ACCEPTED         NtStatus = 0xc00000d0
	STATUS_DIRECTORY_NOT_EMPTY          NtStatus = 0xc0000101
	STATUS_CANCELLED                    NtStatus = 0xc0000120
	STATUS_USER_SESSION_DELETED         NtStatus = 0xc0000203
	STATUS_ACCOUNT_LOCKED_OUT           NtStatus = 0xc0000234
	STATUS_PATH_NOT_COVERED             NtStatus = 0xc0000257
	STATUS_NETWORK_SESSION_EXPIRED      NtStatus = 0xc000035c
	STATUS_SMB_TOO_MANY_UIDS            NtStatus = 0xc000205a
	STATUS_DEVICE_FEATURE_NOT_SUPPORTED NtStatus = 0xc0000463
)

var ntStatusStrings = map[NtStatus]string{
	STATUS_SUCCESS:                      "STATUS_SUCCESS",
	STATUS_PENDING:                      "STATUS_PENDING",
	STATUS_NOTIFY_CLEANUP:               "STATUS_NOTIFY_CLEANUP",
	STATUS_NOTIFY_ENUM_DIR:              "STATUS_NOTIFY_ENUM_DIR",
	STATUS_INVALID_SMB:                  "STATUS_INVALID_SMB",
	STATUS_SMB_BAD_TID:                  "STATUS_SMB_BAD_TID",
	STATUS_SMB_BAD_COMMAND:              "STATUS_SMB_BAD_COMMAND",
	STATUS_SMB_BAD_UID:                  "STATUS_SMB_BAD_UID",
	STATUS_SMB_USE_STANDARD:             "STATUS_SMB_USE_STANDARD",
	STATUS_BUFFER_OVERFLOW:              "STATUS_BUFFER_OVERFLOW",
	STATUS_NO_MORE_FILES:                "STATUS_NO_MORE_FILES",
	STATUS_STOPPED_ON_SYMLINK:           "STATUS_STOPPED_ON_SYMLINK",
	STATUS_NOT_IMPLEMENTED:              "STATUS_NOT_IMPLEMENTED",
	STATUS_INVALID_INFO_CLASS:           "STATUS_INVALID_INFO_CLASS",
	STATUS_INFO_LENGTH_MISMATCH:         "STATUS_INFO_LENGTH_MISMATCH",
	STATUS_INVALID_PARAMETER:            "STATUS_INVALID_PARAMETER",
	STATUS_NO_SUCH_DEVICE:               "STATUS_NO_SUCH_DEVICE",
	STATUS_INVALID_DEVICE_REQUEST:       "STATUS_INVALID_DEVICE_REQUEST",
	STATUS_END_OF_FILE:                  "STATUS_END_OF_FILE",
	STATUS_MORE_PROCESSING_REQUIRED:     "STATUS_MORE_PROCESSING_REQUIRED",
	STATUS_ACCESS_DENIED:                "STATUS_ACCESS_DENIED",
	STATUS_BUFFER_TOO_SMALL:             "STATUS_BUFFER_TOO_SMALL",
	STATUS_OBJECT_NAME_INVALID:          "STATUS_OBJECT_NAME_INVALID",
	STATUS_OBJECT_NAME_NOT_FOUND:        "STATUS_OBJECT_NAME_NOT_FOUND",
	STATUS_OBJECT_NAME_COLLISION:        "STATUS_OBJECT_NAME_COLLISION",
	STATUS_OBJECT_PATH_NOT_FOUND:        "STATUS_OBJECT_PATH_NOT_FOUND",
	STATUS_SHARING_VIOLATION:            "STATUS_SHARING_VIOLATION",
	STATUS_NO_EAS_ON_FILE:               "STATUS_NO_EAS_ON_FILE",
	STATUS_LOGON_FAILURE:                "STATUS_LOGON_FAILURE",
	STATUS_NONE_MAPPED:                  "STATUS_NONE_MAPPED",
	STATUS_BAD_IMPERSONATION_LEVEL:      "STATUS_BAD_IMPERSONATION_LEVEL",
	STATUS_IO_TIMEOUT:                   "STATUS_IO_TIMEOUT",
	STATUS_FILE_IS_A_DIRECTORY:          "STATUS_FILE_IS_A_DIRECTORY",
	STATUS_NOT_SUPPORTED:                "STATUS_NOT_SUPPORTED",
	STATUS_NETWORK_NAME_DELETED:         "STATUS_NETWORK_NAME_DELETED",
	STATUS_BAD_NETWORK_NAME:             "STATUS_BAD_NETWORK_NAME",
	STATUS_REQUEST_NOT_ACCEPTED:         "STATUS_REQUEST_NOT_ACCEPTED",
	STATUS_DIRECTORY_NOT_EMPTY:          "STATUS_DIRECTORY_NOT_EMPTY",
	STATUS_CANCELLED:                    "STATUS_CANCELLED",
	STATUS_USER_SESSION_DELETED:         "STATUS_USER_SESSION_DELETED",
	STATUS_ACCOUNT_LOCKED_OUT:           "STATUS_ACCOUNT_LOCKED_OUT",
	STATUS_PATH_NOT_COVERED:             "STATUS_PATH_NOT_COVERED",
	STATUS_NETWORK_SESSION_EXPIRED:      "STATUS_NETWORK_SESSION_EXPIRED",
	STATUS_SMB_TOO_MANY_UIDS:            "STATUS_SMB_TOO_MANY_UIDS",
	STATUS_DEVICE_FEATURE_NOT_SUPPORTED: "STATUS_DEVICE_FEATURE_NOT_SUPPORTED",
}
