package review

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/complyward/kyc-review-platform/internal/llm"
	"github.com/complyward/kyc-review-platform/pkg/logging"
)

// Action tokens a reflection plan may emit.
const (
	ActionSkip             = "skip"
	ActionRerunBatchReview = "rerun_batch_review"
	ActionAskHumanForScope = "ask_human_for_scope"
	ActionSectionReview    = "section_review"
	ActionTightenPolicy    = "tighten_policy"
)

// RoutingDecision is where the pipeline goes after reflection.
type RoutingDecision string

const (
	RouteRerunChecks RoutingDecision = "rerun_checks"
	RouteGate        RoutingDecision = "human_gate"
	RouteContinue    RoutingDecision = "continue"
)

// ReflectionPayload is the run state handed to a reflection provider.
type ReflectionPayload struct {
	ReplanCount int       `json:"replanCount"`
	IssueCount  int       `json:"issueCount"`
	RiskScore   int       `json:"riskScore"`
	RoutePath   RoutePath `json:"routePath"`
}

// ReflectionOutcome is the structured record parsed from provider output.
type ReflectionOutcome struct {
	ShouldReplan bool     `json:"should_replan"`
	Reason       string   `json:"reason"`
	NewPlan      []string `json:"new_plan"`
	Confidence   float64  `json:"confidence"`
}

// ReflectionProvider produces a raw-text recommendation for the reflection
// node. Implementations may be deterministic mocks or LLM-backed.
type ReflectionProvider interface {
	Name() string
	Run(ctx context.Context, payload ReflectionPayload, prompt string) (string, error)
}

// MockReflectionProvider is the deterministic default. Its three
// short-circuit rules are the reference behavior real providers are
// expected to mirror.
type MockReflectionProvider struct{}

func (MockReflectionProvider) Name() string { return "mock" }

func (MockReflectionProvider) Run(_ context.Context, payload ReflectionPayload, _ string) (string, error) {
	var outcome ReflectionOutcome
	switch {
	case payload.ReplanCount >= 1:
		outcome = ReflectionOutcome{
			Reason:     "replan budget exhausted",
			NewPlan:    []string{ActionAskHumanForScope},
			Confidence: 0.8,
		}
	case payload.IssueCount > 0:
		outcome = ReflectionOutcome{
			Reason:     "issues detected",
			NewPlan:    []string{ActionSkip},
			Confidence: 0.7,
		}
	default:
		outcome = ReflectionOutcome{
			Reason:     "proceeding normally",
			NewPlan:    []string{ActionSkip},
			Confidence: 0.75,
		}
	}
	raw, err := json.Marshal(outcome)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

const reflectionPrompt = `You are reviewing the intermediate state of a KYC document review.
Given the run state JSON below, decide whether the rule checks should be re-run.
Respond with JSON only: {"should_replan": bool, "reason": string, "new_plan": [action], "confidence": 0-1}.
Allowed actions: skip, rerun_batch_review, ask_human_for_scope.

State: %s`

// LLMReflectionProvider asks a completion model for a recommendation.
type LLMReflectionProvider struct {
	client llm.Client
	model  string
}

func NewLLMReflectionProvider(client llm.Client, model string) *LLMReflectionProvider {
	if client == nil {
		panic("review: llm client cannot be nil")
	}
	return &LLMReflectionProvider{client: client, model: model}
}

func (p *LLMReflectionProvider) Name() string { return "llm" }

func (p *LLMReflectionProvider) Run(ctx context.Context, payload ReflectionPayload, prompt string) (string, error) {
	state, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("review: failed to encode reflection payload: %w", err)
	}
	if prompt == "" {
		prompt = reflectionPrompt
	}

	resp, err := p.client.Complete(ctx, llm.Request{
		Model:       p.model,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: fmt.Sprintf(prompt, state)}},
		MaxTokens:   256,
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("review: reflection completion failed: %w", err)
	}
	return resp.Text, nil
}

// reflectionNode runs the bounded self-correction step and maps its outcome
// to a next action. It enforces the one-replan cap regardless of what the
// provider returns.
type reflectionNode struct {
	provider ReflectionProvider
	logger   *logging.Logger
}

// reflect returns the chosen next action plus the trace events it emitted.
// Provider failures never abort the run: they collapse to the safe default
// outcome so the pipeline can always finalize.
func (n *reflectionNode) reflect(ctx context.Context, payload ReflectionPayload, enabled bool) (nextAction string, outcome ReflectionOutcome, events []TraceEvent) {
	if !enabled {
		events = append(events, TraceEvent{
			Node:   "reflection",
			Status: TraceSkipped,
			Reason: "reflection feature disabled",
		})
		return "", ReflectionOutcome{}, events
	}

	outcome = safeReflectionFallback()
	raw, err := n.provider.Run(ctx, payload, reflectionPrompt)
	if err != nil {
		n.logger.Error("reflection provider failed", "error", err, "provider", n.provider.Name())
		events = append(events, TraceEvent{
			Node:   "reflection",
			Status: TraceFailed,
			Reason: "provider error, falling back to skip",
		})
	} else if parseErr := parseReflectionOutcome(raw, &outcome); parseErr != nil {
		n.logger.Error("reflection output unparseable", "error", parseErr, "provider", n.provider.Name())
		outcome = safeReflectionFallback()
		events = append(events, TraceEvent{
			Node:   "reflection",
			Status: TraceFailed,
			Reason: "unparseable provider output, falling back to skip",
		})
	} else {
		events = append(events, TraceEvent{
			Node:     "reflection",
			Status:   TraceExecuted,
			Decision: firstAction(outcome),
			Reason:   outcome.Reason,
		})
	}

	nextAction = firstAction(outcome)

	// Hard cap: one replan per logical run, even with an adversarial
	// provider that keeps asking for reruns.
	if payload.ReplanCount >= 1 && nextAction == ActionRerunBatchReview {
		nextAction = ActionAskHumanForScope
		events = append(events, TraceEvent{
			Node:     "reflection",
			Status:   TraceExecuted,
			Decision: nextAction,
			Reason:   "replan budget exhausted, escalating to human",
		})
	}

	return nextAction, outcome, events
}

func safeReflectionFallback() ReflectionOutcome {
	return ReflectionOutcome{
		ShouldReplan: false,
		Reason:       "fallback",
		NewPlan:      []string{ActionSkip},
		Confidence:   0,
	}
}

func parseReflectionOutcome(raw string, out *ReflectionOutcome) error {
	raw = strings.TrimSpace(raw)
	// Tolerate models that wrap JSON in code fences.
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	return json.Unmarshal([]byte(strings.TrimSpace(raw)), out)
}

func firstAction(outcome ReflectionOutcome) string {
	if len(outcome.NewPlan) > 0 && outcome.NewPlan[0] != "" {
		return outcome.NewPlan[0]
	}
	return ActionSkip
}

// routeAfterReflection maps the chosen action to a routing decision. The
// replanCount > 1 override duplicates the node-level cap on purpose.
func routeAfterReflection(nextAction string, replanCount int) (RoutingDecision, []TraceEvent) {
	switch nextAction {
	case ActionRerunBatchReview:
		if replanCount > 1 {
			return RouteContinue, []TraceEvent{{
				Node:     "routing",
				Status:   TraceExecuted,
				Decision: string(RouteContinue),
				Reason:   "safety override: replan count exceeded, forcing continue",
			}}
		}
		return RouteRerunChecks, []TraceEvent{{
			Node:     "routing",
			Status:   TraceExecuted,
			Decision: string(RouteRerunChecks),
		}}
	case ActionAskHumanForScope:
		return RouteGate, []TraceEvent{{
			Node:     "routing",
			Status:   TraceExecuted,
			Decision: string(RouteGate),
		}}
	case ActionSectionReview:
		return RouteGate, []TraceEvent{{
			Node:     "routing",
			Status:   TraceExecuted,
			Decision: string(RouteGate),
			Reason:   "section_review not implemented, falling back to human gate",
		}}
	case ActionTightenPolicy:
		return RouteContinue, []TraceEvent{{
			Node:     "routing",
			Status:   TraceExecuted,
			Decision: string(RouteContinue),
			Reason:   "tighten_policy not implemented, continuing",
		}}
	default:
		return RouteContinue, []TraceEvent{{
			Node:     "routing",
			Status:   TraceExecuted,
			Decision: string(RouteContinue),
		}}
	}
}
