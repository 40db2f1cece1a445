package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complyward/kyc-review-platform/internal/observability/metrics"
	"github.com/complyward/kyc-review-platform/pkg/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Runs scoring above this are forced through the human gate.
const riskGateThreshold = 80

const gatePrompt = "This review requires a human decision before it can be finalized. " +
	"Approve enhanced due diligence, request additional documents, or reject the case."

var gateOptions = []string{DecisionApproveEDD, DecisionRequestDocs, DecisionReject}

// User-facing terminal errors, distinct per the error taxonomy.
const (
	msgMissingDecision = "A resume call must include a human decision."
	msgMalformedToken  = "The resume token is malformed. Please use the token exactly as issued."
	msgSnapshotGone    = "Resume state expired or not found. Please restart the review."
)

// Orchestrator sequences topic assembly, risk triage, the parallel rule
// checks, the bounded reflection step, and the human-approval gate. It is
// the single recovery point: callers always receive a response, never a
// propagated failure.
type Orchestrator struct {
	triage   TriageFunc
	store    ResumeStore
	executor *CheckExecutor
	node     *reflectionNode
	logger   *logging.Logger
	metrics  *metrics.ReviewMetrics
	tracer   trace.Tracer

	assemble        func([]Document) []TopicSection
	now             func() time.Time
	defaultFeatures Features
}

// Option configures the orchestrator.
type Option func(*Orchestrator)

// WithClock overrides the time source. Tests use this to make trace
// timestamps deterministic.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
			o.executor.now = now
		}
	}
}

// WithAssembler swaps the topic assembly function.
func WithAssembler(assemble func([]Document) []TopicSection) Option {
	return func(o *Orchestrator) {
		if assemble != nil {
			o.assemble = assemble
		}
	}
}

// WithReflectionEnabled sets the server-side default for the reflection
// feature, applied to requests that carry no explicit feature flags.
func WithReflectionEnabled(enabled bool) Option {
	return func(o *Orchestrator) { o.defaultFeatures.Reflection = enabled }
}

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.ReviewMetrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithTracer overrides the OpenTelemetry tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// NewOrchestrator wires the review pipeline around the injected
// collaborators: the triage contract, the resume store, and the
// reflection provider.
func NewOrchestrator(triage TriageFunc, store ResumeStore, provider ReflectionProvider, logger *logging.Logger, opts ...Option) *Orchestrator {
	if triage == nil {
		panic("review: triage func cannot be nil")
	}
	if store == nil {
		panic("review: resume store cannot be nil")
	}
	if provider == nil {
		provider = MockReflectionProvider{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.With("component", "review")

	o := &Orchestrator{
		triage:   triage,
		store:    store,
		executor: NewCheckExecutor(),
		node:     &reflectionNode{provider: provider, logger: logger},
		logger:   logger,
		tracer:          otel.Tracer("complyward.internal.review.orchestrator"),
		assemble:        Assemble,
		now:             time.Now,
		defaultFeatures: Features{Reflection: true},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes a review request through either the first-run or the resume
// path. Unexpected failures are converted into a degraded 200-shaped
// response; the caller never sees a bare error from this routine.
func (o *Orchestrator) Run(ctx context.Context, req ReviewRequest) (resp *GraphReviewResponse) {
	ctx, span := o.tracer.Start(ctx, "review.run")
	defer span.End()

	var collected []TraceEvent
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("review: pipeline panic: %v", r)
			span.RecordError(err)
			o.logger.Error("review pipeline panicked", "panic", r)
			resp = o.degraded(collected, err)
		}
	}()

	if req.ResumeToken != "" {
		return o.runResume(ctx, req, &collected)
	}
	return o.runFirst(ctx, req, &collected)
}

func (o *Orchestrator) runFirst(ctx context.Context, req ReviewRequest, collected *[]TraceEvent) *GraphReviewResponse {
	features := o.featuresOrDefault(req.Features)

	topics := runStage(o, "assemble_topics", collected, func() []TopicSection {
		return o.assemble(req.Documents)
	})

	triage := runStage(o, "risk_triage", collected, func() TriageResult {
		return o.triage(topics)
	})
	o.annotateLast(collected, string(triage.RoutePath), strings.Join(triage.TriageReasons, "; "))

	results, err := o.executor.Execute(ctx, topics, triage.RoutePath)
	if err != nil {
		o.logger.Error("check execution failed", "error", err)
		return o.degraded(*collected, err)
	}
	*collected = append(*collected, results.Events...)
	issues := BuildIssues(results)

	replanCount := 0
	nextAction, _, refEvents := o.node.reflect(ctx, ReflectionPayload{
		ReplanCount: replanCount,
		IssueCount:  len(issues),
		RiskScore:   triage.RiskScore,
		RoutePath:   triage.RoutePath,
	}, features.Reflection)
	*collected = append(*collected, refEvents...)

	decision := RouteContinue
	if features.Reflection {
		var routeEvents []TraceEvent
		decision, routeEvents = routeAfterReflection(nextAction, replanCount)
		*collected = append(*collected, routeEvents...)
	}

	if decision == RouteRerunChecks {
		replanCount++
		rerun, err := o.executor.Execute(ctx, topics, triage.RoutePath)
		if err != nil {
			o.logger.Error("check rerun failed", "error", err)
			return o.degraded(*collected, err)
		}
		*collected = append(*collected, rerun.Events...)
		results = rerun
		issues = BuildIssues(rerun)
	}

	needGate := decision == RouteGate ||
		triage.RoutePath == RouteHumanGate ||
		triage.RiskScore > riskGateThreshold

	if needGate && req.HumanDecision == nil {
		return o.parkAtGate(ctx, req, topics, triage, replanCount, collected)
	}

	if needGate {
		*collected = append(*collected, TraceEvent{
			Node:     "human_gate",
			Status:   TraceExecuted,
			Decision: req.HumanDecision.Decision,
			Reason:   signerReason(req.HumanDecision),
		})
	}

	o.metrics.ObserveRun(string(triage.RoutePath), "finalized")
	return o.finalize(topics, triage, results, issues, *collected, false)
}

// parkAtGate persists the run and hands the caller a resume token. No
// further processing happens until a resume call arrives.
func (o *Orchestrator) parkAtGate(ctx context.Context, req ReviewRequest, topics []TopicSection, triage TriageResult, replanCount int, collected *[]TraceEvent) *GraphReviewResponse {
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	gateID := uuid.NewString()
	now := o.now().UTC()

	*collected = append(*collected, TraceEvent{
		Node:      "human_gate",
		Status:    TraceWaiting,
		Reason:    "awaiting human decision",
		StartedAt: now.Format(time.RFC3339Nano),
	})

	snap := &Snapshot{
		RunID:          runID,
		GateID:         gateID,
		TopicSections:  topics,
		Triage:         triage,
		PreviousEvents: *collected,
		ReplanCount:    replanCount,
		CreatedAt:      now,
	}
	if err := o.store.Save(ctx, runID, snap); err != nil {
		o.logger.Error("failed to persist gate snapshot", "error", err, "run_id", runID)
		return o.degraded(*collected, err)
	}

	token, err := MintResumeToken(runID, gateID, now)
	if err != nil {
		return o.degraded(*collected, err)
	}

	o.metrics.ObserveRun(string(triage.RoutePath), "gated")
	o.metrics.ObserveGate("opened")
	o.logger.Info("review parked at human gate", "run_id", runID, "risk_score", triage.RiskScore)

	return &GraphReviewResponse{
		Issues:        []Issue{},
		TopicSections: topics,
		Conflicts:     []Conflict{},
		CoverageGaps:  []CoverageEntry{},
		GraphReviewTrace: GraphReviewTrace{
			Events: *collected,
			Summary: TraceSummary{
				Path:          RouteHumanGate,
				RiskScore:     triage.RiskScore,
				RiskBreakdown: &triage.RiskBreakdown,
			},
		},
		HumanGate: &HumanGate{
			Required: true,
			Prompt:   gatePrompt,
			Options:  gateOptions,
		},
		ResumeToken: token,
	}
}

// runResume re-enters a parked run. The snapshot is single-use: a second
// presentation of the same token observes "expired or not found".
func (o *Orchestrator) runResume(ctx context.Context, req ReviewRequest, collected *[]TraceEvent) *GraphReviewResponse {
	if req.HumanDecision == nil {
		return o.userError(msgMissingDecision)
	}

	token, err := ParseResumeToken(req.ResumeToken)
	if err != nil {
		o.logger.Warn("rejecting malformed resume token", "error", err)
		return o.userError(msgMalformedToken)
	}

	snap, err := o.store.Take(ctx, token.RunID)
	if err != nil {
		if errors.Is(err, ErrSnapshotNotFound) {
			o.metrics.ObserveGate("expired")
			return o.userError(msgSnapshotGone)
		}
		o.logger.Error("failed to load resume snapshot", "error", err, "run_id", token.RunID)
		return o.degraded(nil, err)
	}

	*collected = append(*collected, TraceEvent{
		Node:      "human_gate",
		Status:    TraceExecuted,
		Decision:  req.HumanDecision.Decision,
		Reason:    signerReason(req.HumanDecision),
		StartedAt: o.now().UTC().Format(time.RFC3339Nano),
	})

	results, err := o.executor.Execute(ctx, snap.TopicSections, snap.Triage.RoutePath)
	if err != nil {
		o.logger.Error("resume check execution failed", "error", err, "run_id", snap.RunID)
		return o.degraded(append(append([]TraceEvent{}, snap.PreviousEvents...), *collected...), err)
	}
	*collected = append(*collected, results.Events...)
	issues := BuildIssues(results)

	// Stored events come first, verbatim; resume events follow.
	events := append(append([]TraceEvent{}, snap.PreviousEvents...), *collected...)

	o.metrics.ObserveRun(string(snap.Triage.RoutePath), "resumed")
	o.metrics.ObserveGate("resumed")
	o.logger.Info("review resumed and finalized",
		"run_id", snap.RunID,
		"decision", req.HumanDecision.Decision,
	)

	return o.finalize(snap.TopicSections, snap.Triage, results, issues, events, true)
}

func (o *Orchestrator) finalize(topics []TopicSection, triage TriageResult, results *CheckResults, issues []Issue, events []TraceEvent, resumed bool) *GraphReviewResponse {
	missing := 0
	for _, gap := range results.CoverageGaps {
		if gap.Status == CoverageMissing {
			missing++
		}
	}

	return &GraphReviewResponse{
		Issues:        issues,
		TopicSections: topics,
		Conflicts:     results.Conflicts,
		CoverageGaps:  results.CoverageGaps,
		GraphReviewTrace: GraphReviewTrace{
			Events: events,
			Summary: TraceSummary{
				Path:                 triage.RoutePath,
				RiskScore:            triage.RiskScore,
				RiskBreakdown:        &triage.RiskBreakdown,
				CoverageMissingCount: missing,
				ConflictCount:        len(results.Conflicts),
			},
		},
	}
}

// degraded produces the uniform failure response: empty issues, a terminal
// error_handler event carrying the failure reason, default summary fields.
func (o *Orchestrator) degraded(events []TraceEvent, cause error) *GraphReviewResponse {
	reason := "unknown failure"
	if cause != nil {
		reason = cause.Error()
	}
	events = append(append([]TraceEvent{}, events...), TraceEvent{
		Node:   "error_handler",
		Status: TraceFailed,
		Reason: reason,
	})

	o.metrics.ObserveRun("unknown", "degraded")

	return &GraphReviewResponse{
		Issues: []Issue{},
		GraphReviewTrace: GraphReviewTrace{
			Events:   events,
			Summary:  TraceSummary{RiskScore: 0},
			Degraded: true,
		},
	}
}

// userError is a terminal user-facing failure that mutated no state.
func (o *Orchestrator) userError(msg string) *GraphReviewResponse {
	return &GraphReviewResponse{
		Issues: []Issue{},
		GraphReviewTrace: GraphReviewTrace{
			Events:  []TraceEvent{},
			Summary: TraceSummary{RiskScore: 0},
		},
		Error: msg,
	}
}

// runStage runs fn and appends an executed trace event with timing.
func runStage[T any](o *Orchestrator, node string, collected *[]TraceEvent, fn func() T) T {
	start := o.now().UTC()
	out := fn()
	end := o.now().UTC()
	*collected = append(*collected, TraceEvent{
		Node:       node,
		Status:     TraceExecuted,
		StartedAt:  start.Format(time.RFC3339Nano),
		EndedAt:    end.Format(time.RFC3339Nano),
		DurationMs: end.Sub(start).Milliseconds(),
	})
	o.metrics.ObserveStageDuration(node, end.Sub(start).Seconds())
	return out
}

// annotateLast attaches a decision/reason to the most recent event.
func (o *Orchestrator) annotateLast(collected *[]TraceEvent, decision, reason string) {
	if len(*collected) == 0 {
		return
	}
	last := &(*collected)[len(*collected)-1]
	last.Decision = decision
	last.Reason = reason
}

func (o *Orchestrator) featuresOrDefault(f *Features) Features {
	if f == nil {
		return o.defaultFeatures
	}
	return *f
}

func signerReason(d *HumanDecision) string {
	if d.Signer == "" {
		return "decision recorded"
	}
	return "signed by " + d.Signer
}
