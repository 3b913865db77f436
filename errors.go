package smbmsg

import (
	"fmt"
)

// MalformedHeaderError represents a packet whose first 64 bytes do not
// form a valid SMB2 header.
type MalformedHeaderError struct {
	Message string
}

func (err *MalformedHeaderError) Error() string {
	return fmt.Sprintf("malformed header: %s", err.Message)
}

// UnsupportedCommandError represents a command code outside the closed
// SMB2 command set, in the given direction.
type UnsupportedCommandError struct {
	Command  Command
	Response bool
}

func (err *UnsupportedCommandError) Error() string {
	dir := "request"
	if err.Response {
		dir = "response"
	}
	return fmt.Sprintf("unsupported command: 0x%04x (%s)", uint16(err.Command), dir)
}

// ChainCycleError represents a chained message whose NextCommand field
// points backwards or into its own header, which would loop a naive
// reader forever.
type ChainCycleError struct {
	Offset uint32
}

func (err *ChainCycleError) Error() string {
	return fmt.Sprintf("chain cycle: next command offset %d is inside the current message", err.Offset)
}
