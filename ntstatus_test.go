package smbmsg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNtStatusSeverity(t *testing.T) {
	assert.Equal(t, uint32(STATUS_SEVERITY_SUCCESS), STATUS_SUCCESS.Severity())
	assert.Equal(t, uint32(STATUS_SEVERITY_SUCCESS), STATUS_PENDING.Severity())
	assert.Equal(t, uint32(STATUS_SEVERITY_WARNING), STATUS_BUFFER_OVERFLOW.Severity())
	assert.Equal(t, uint32(STATUS_SEVERITY_WARNING), STATUS_STOPPED_ON_SYMLINK.Severity())
	assert.Equal(t, uint32(STATUS_SEVERITY_ERROR), STATUS_ACCESS_DENIED.Severity())

	assert.False(t, STATUS_SUCCESS.IsError())
	assert.False(t, STATUS_PENDING.IsError())
	assert.False(t, STATUS_NOTIFY_ENUM_DIR.IsError())
	assert.False(t, STATUS_BUFFER_OVERFLOW.IsError())

	// An in-progress session setup reports an error severity even though
	// the exchange is proceeding normally.
	assert.True(t, STATUS_MORE_PROCESSING_REQUIRED.IsError())
	assert.True(t, STATUS_ACCESS_DENIED.IsError())
	assert.True(t, STATUS_OBJECT_NAME_NOT_FOUND.IsError())
}

func TestNtStatusString(t *testing.T) {
	assert.Equal(t, "STATUS_SUCCESS", STATUS_SUCCESS.String())
	assert.Equal(t, "STATUS_SHARING_VIOLATION", STATUS_SHARING_VIOLATION.String())
	assert.Equal(t, "NTSTATUS(0xc0ffee00)", NtStatus(0xc0ffee00).String())
}
