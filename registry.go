package smbmsg

import (
	"errors"

	"github.com/omnifocal/smbmsg/encode"
)

// EncodeBody marshals a typed command body into its wire form, with
// buffer offsets computed against the standard 64-byte header.
func EncodeBody(body Body) ([]byte, error) {
	return encoder.Marshal(body, nil)
}

// DecodeBody decodes the body following hdr. The command set is closed:
// the nineteen commands plus the server notification, each in its valid
// direction. Responses whose status carries the error severity decode
// as *ErrorResponse, except SESSION_SETUP with
// STATUS_MORE_PROCESSING_REQUIRED, which carries a real body mid
// handshake.
func DecodeBody(hdr *Header, p []byte) (Body, error) {
	if hdr.IsResponse() {
		return decodeResponseBody(hdr, p)
	}
	return decodeRequestBody(hdr.Command, p)
}

func peekStructureSize(p []byte) uint16 {
	if len(p) < 2 {
		return 0
	}
	return le.Uint16(p[:2])
}

func decodeRequestBody(cmd Command, p []byte) (Body, error) {
	var body Body

	switch cmd {
	case SMB2_NEGOTIATE:
		body = new(NegotiateRequest)
	case SMB2_SESSION_SETUP:
		body = new(SessionSetupRequest)
	case SMB2_LOGOFF:
		body = new(LogoffRequest)
	case SMB2_TREE_CONNECT:
		body = new(TreeConnectRequest)
	case SMB2_TREE_DISCONNECT:
		body = new(TreeDisconnectRequest)
	case SMB2_CREATE:
		body = new(CreateRequest)
	case SMB2_CLOSE:
		body = new(CloseRequest)
	case SMB2_FLUSH:
		body = new(FlushRequest)
	case SMB2_READ:
		body = new(ReadRequest)
	case SMB2_WRITE:
		body = new(WriteRequest)
	case SMB2_LOCK:
		body = new(LockRequest)
	case SMB2_IOCTL:
		body = new(IoctlRequest)
	case SMB2_CANCEL:
		body = new(CancelRequest)
	case SMB2_ECHO:
		body = new(EchoRequest)
	case SMB2_QUERY_DIRECTORY:
		body = new(QueryDirectoryRequest)
	case SMB2_CHANGE_NOTIFY:
		body = new(ChangeNotifyRequest)
	case SMB2_QUERY_INFO:
		body = new(QueryInfoRequest)
	case SMB2_SET_INFO:
		body = new(SetInfoRequest)
	case SMB2_OPLOCK_BREAK:
		// Oplock and lease acknowledgments share the command; only the
		// declared structure size tells them apart.
		switch peekStructureSize(p) {
		case 24:
			body = new(OplockBreakAck)
		case 36:
			body = new(LeaseBreakAck)
		default:
			return nil, &encoder.StructureSizeMismatchError{
				Struct:   "OplockBreakAck",
				Expected: 24,
				Actual:   peekStructureSize(p),
			}
		}
	default:
		return nil, &UnsupportedCommandError{Command: cmd}
	}

	if err := encoder.Unmarshal(p, body, nil); err != nil {
		return nil, err
	}

	return body, nil
}

func decodeResponseBody(hdr *Header, p []byte) (Body, error) {
	if hdr.Status.IsError() &&
		!(hdr.Status == STATUS_MORE_PROCESSING_REQUIRED && hdr.Command == SMB2_SESSION_SETUP) {
		return decodeErrorResponse(p)
	}

	var body Body

	switch hdr.Command {
	case SMB2_NEGOTIATE:
		body = new(NegotiateResponse)
	case SMB2_SESSION_SETUP:
		body = new(SessionSetupResponse)
	case SMB2_LOGOFF:
		body = new(LogoffResponse)
	case SMB2_TREE_CONNECT:
		body = new(TreeConnectResponse)
	case SMB2_TREE_DISCONNECT:
		body = new(TreeDisconnectResponse)
	case SMB2_CREATE:
		body = new(CreateResponse)
	case SMB2_CLOSE:
		body = new(CloseResponse)
	case SMB2_FLUSH:
		body = new(FlushResponse)
	case SMB2_READ:
		body = new(ReadResponse)
	case SMB2_WRITE:
		body = new(WriteResponse)
	case SMB2_LOCK:
		body = new(LockResponse)
	case SMB2_IOCTL:
		body = new(IoctlResponse)
	case SMB2_ECHO:
		body = new(EchoResponse)
	case SMB2_QUERY_DIRECTORY:
		body = new(QueryDirectoryResponse)
	case SMB2_CHANGE_NOTIFY:
		body = new(ChangeNotifyResponse)
	case SMB2_QUERY_INFO:
		body = new(QueryInfoResponse)
	case SMB2_SET_INFO:
		body = new(SetInfoResponse)
	case SMB2_OPLOCK_BREAK:
		switch peekStructureSize(p) {
		case 24:
			body = new(OplockBreak)
		case 36:
			body = new(LeaseBreakResponse)
		case 44:
			body = new(LeaseBreakNotify)
		default:
			return nil, &encoder.StructureSizeMismatchError{
				Struct:   "OplockBreak",
				Expected: 24,
				Actual:   peekStructureSize(p),
			}
		}
	case SMB2_SERVER_TO_CLIENT_NOTIFICATION:
		body = new(ServerToClientNotification)
	default:
		return nil, &UnsupportedCommandError{Command: hdr.Command, Response: true}
	}

	err := encoder.Unmarshal(p, body, nil)
	if err == nil {
		return body, nil
	}

	// Interim and failure responses with non-error severities (pending
	// async replies, warnings) still carry the 9-byte error shape; fall
	// back to it before giving up.
	var mismatch *encoder.StructureSizeMismatchError
	if hdr.Status != STATUS_SUCCESS && errors.As(err, &mismatch) {
		if res, errErr := decodeErrorResponse(p); errErr == nil {
			return res, nil
		}
	}

	return nil, err
}

func decodeErrorResponse(p []byte) (*ErrorResponse, error) {
	res := new(ErrorResponse)
	if err := encoder.Unmarshal(p, res, nil); err != nil {
		return nil, err
	}
	return res, nil
}
