package review

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumeTokenRoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	token, err := MintResumeToken("run-42", "gate-7", createdAt)
	require.NoError(t, err)

	parsed, err := ParseResumeToken(token)
	require.NoError(t, err)
	assert.Equal(t, "run-42", parsed.RunID)
	assert.Equal(t, "gate-7", parsed.GateID)
	assert.True(t, parsed.CreatedAt.Equal(createdAt))
}

func TestParseResumeTokenMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"not json", "{definitely not json"},
		{"empty string", ""},
		{"wrong shape", `["runId", "run-1"]`},
		{"missing run id", `{"gateId": "gate-7"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseResumeToken(tt.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
		})
	}
}
