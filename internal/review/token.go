package review

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformedToken indicates a resume token that could not be parsed.
var ErrMalformedToken = errors.New("review: malformed resume token")

// ResumeToken is the self-describing payload handed to the caller when a
// run parks at a human gate. Plain JSON on the wire, chosen for
// debuggability: whoever presents a valid token owns the snapshot.
type ResumeToken struct {
	RunID     string    `json:"runId"`
	GateID    string    `json:"gateId"`
	CreatedAt time.Time `json:"createdAt"`
}

// MintResumeToken encodes a token for the given run and gate.
func MintResumeToken(runID, gateID string, createdAt time.Time) (string, error) {
	raw, err := json.Marshal(ResumeToken{
		RunID:     runID,
		GateID:    gateID,
		CreatedAt: createdAt.UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("review: failed to encode resume token: %w", err)
	}
	return string(raw), nil
}

// ParseResumeToken decodes a token, failing fast on malformed input.
func ParseResumeToken(token string) (*ResumeToken, error) {
	var parsed ResumeToken
	if err := json.Unmarshal([]byte(token), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if parsed.RunID == "" {
		return nil, fmt.Errorf("%w: missing runId", ErrMalformedToken)
	}
	return &parsed, nil
}
