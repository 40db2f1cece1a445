package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/complyward/kyc-review-platform/internal/llm"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

const chatSystemPrompt = `You are a KYC compliance assistant embedded in a document review tool.
Answer reviewer questions about the case concisely. Do not invent facts that are not in the provided context.`

const rewritePrompt = `Rewrite the following KYC dossier section. Keep every factual statement, improve clarity and structure, and follow the reviewer's instructions.

Instructions: %s

Section:
%s`

// Service exposes the free-text assistance features: chat and section
// rewriting. Both treat the model as a black box behind llm.Client.
type Service struct {
	client llm.Client
	model  string
	logger *logging.Logger
}

func NewService(client llm.Client, model string, logger *logging.Logger) *Service {
	if client == nil {
		panic("assist: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{client: client, model: model, logger: logger}
}

// ChatMessage is one turn of an assistant conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat answers a reviewer question given prior conversation turns.
func (s *Service) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("assist: at least one message is required")
	}

	req := llm.Request{
		Model:       s.model,
		System:      []string{chatSystemPrompt},
		MaxTokens:   1024,
		Temperature: 0.3,
	}
	for _, msg := range messages {
		role := llm.RoleUser
		if msg.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		req.Messages = append(req.Messages, llm.Message{Role: role, Content: msg.Content})
	}

	resp, err := s.client.Complete(ctx, req)
	if err != nil {
		s.logger.Error("assist chat completion failed", "error", err)
		return "", fmt.Errorf("assist: chat completion failed: %w", err)
	}
	return resp.Text, nil
}

// Rewrite reworks a dossier section according to reviewer instructions.
func (s *Service) Rewrite(ctx context.Context, section, instructions string) (string, error) {
	if strings.TrimSpace(section) == "" {
		return "", errors.New("assist: section content is required")
	}
	if strings.TrimSpace(instructions) == "" {
		instructions = "Improve clarity and keep all facts."
	}

	resp, err := s.client.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(rewritePrompt, instructions, section),
		}},
		MaxTokens:   2048,
		Temperature: 0.2,
	})
	if err != nil {
		s.logger.Error("assist rewrite completion failed", "error", err)
		return "", fmt.Errorf("assist: rewrite completion failed: %w", err)
	}
	return resp.Text, nil
}
