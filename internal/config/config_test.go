package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, "memory", cfg.ResumeStoreBackend)
	assert.Equal(t, 72*time.Hour, cfg.ResumeSnapshotTTL)
	assert.Equal(t, "review_snapshots", cfg.ResumeTableName)

	assert.Equal(t, "mock", cfg.ReflectionProvider)
	assert.True(t, cfg.ReflectionEnabled)
	assert.Equal(t, "stub", cfg.EmailProvider)
	assert.Equal(t, "KYC Review", cfg.SendGridFromName)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RESUME_STORE_BACKEND", " Redis ")
	t.Setenv("RESUME_SNAPSHOT_TTL", "24h")
	t.Setenv("REFLECTION_PROVIDER", "BEDROCK")
	t.Setenv("REFLECTION_ENABLED", "false")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("APPROVAL_RECIPIENT_EMAIL", "ops@example.com")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "redis", cfg.ResumeStoreBackend)
	assert.Equal(t, 24*time.Hour, cfg.ResumeSnapshotTTL)
	assert.Equal(t, "bedrock", cfg.ReflectionProvider)
	assert.False(t, cfg.ReflectionEnabled)
	assert.True(t, cfg.RedisTLS)
	assert.Equal(t, "ops@example.com", cfg.ApprovalRecipient)
}

func TestLoadIgnoresBadValues(t *testing.T) {
	t.Setenv("RESUME_SNAPSHOT_TTL", "soon")
	t.Setenv("REFLECTION_ENABLED", "maybe")

	cfg := Load()

	assert.Equal(t, 72*time.Hour, cfg.ResumeSnapshotTTL)
	assert.True(t, cfg.ReflectionEnabled)
}
