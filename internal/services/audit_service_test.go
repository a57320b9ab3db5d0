package services

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_LogLogin(t *testing.T) {
	logger, hook := test.NewNullLogger()
	audit := NewAuditService(logger, true)

	audit.LogLogin("alice", "user", "203.0.113.7", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0.0.0", false, "invalid credentials")

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "audit", entry.Data["component"])
	assert.Equal(t, "login", entry.Data["action"])
	assert.Equal(t, "alice", entry.Data["subject"])
	assert.Equal(t, "user", entry.Data["role"])
	assert.Equal(t, "invalid credentials", entry.Data["reason"])
	assert.Equal(t, "desktop", entry.Data["device_type"])
}

func TestAuditService_Disabled(t *testing.T) {
	logger, hook := test.NewNullLogger()
	audit := NewAuditService(logger, false)

	audit.LogOTPRequest("alice", "127.0.0.1", "", true, "")
	assert.Empty(t, hook.AllEntries())
}
