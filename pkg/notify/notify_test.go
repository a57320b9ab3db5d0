package notify

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogSender_SendOTP(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := NewLogSender(logger)

	err := sender.SendOTP(context.Background(), "alice@example.com", "123456", time.Now().Add(5*time.Minute))
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "alice@example.com", entry.Data["recipient"])
	assert.Equal(t, "****56", entry.Data["otp"])
	assert.Equal(t, "log", sender.GetName())
}

func TestLogSender_RequiresRecipient(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sender := NewLogSender(logger)

	err := sender.SendOTP(context.Background(), "", "123456", time.Now())
	assert.Error(t, err)
	assert.Empty(t, hook.AllEntries())
}
