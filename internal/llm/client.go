package llm

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a model conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Usage reports token accounting for a completion.
type Usage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// Request describes a completion call.
type Request struct {
	Model       string
	System      []string
	Messages    []Message
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

// Response is the model's completion output.
type Response struct {
	Text       string
	Usage      Usage
	StopReason string
}

// Client abstracts a text-completion model so Bedrock, Gemini, and test
// fakes are interchangeable.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}
