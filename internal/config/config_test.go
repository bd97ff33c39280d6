package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("NOTIFY_QUEUE_BACKEND", "")
	t.Setenv("AUTH_ALLOWED_EMAIL_DOMAINS", "")
	t.Setenv("ATTACHMENT_MAX_BYTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, QueueBackendMemory, cfg.Notification.QueueBackend)
	assert.Equal(t, MaxAttachmentBytes, cfg.Attachment.MaxBytes)
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Nil(t, cfg.Auth.AllowedEmailDomains)
	assert.Equal(t, 3, cfg.Notification.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Notification.InitialBackoff())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("AUTH_ALLOWED_EMAIL_DOMAINS", " @SIES.edu.in , example.org,,")
	t.Setenv("ATTACHMENT_MAX_BYTES", "99999999")
	t.Setenv("NOTIFY_QUEUE_BACKEND", "Redis")
	t.Setenv("NOTIFY_MAX_ATTEMPTS", "0")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"sies.edu.in", "example.org"}, cfg.Auth.AllowedEmailDomains)
	assert.Equal(t, MaxAttachmentBytes, cfg.Attachment.MaxBytes, "limit is capped")
	assert.Equal(t, QueueBackendRedis, cfg.Notification.QueueBackend)
	assert.Equal(t, 1, cfg.Notification.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout())
}

func TestLoadRejectsUnknownQueueBackend(t *testing.T) {
	t.Setenv("NOTIFY_QUEUE_BACKEND", "kafka")
	_, err := Load()
	require.Error(t, err)
}
