package review

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// CheckResults carries everything the parallel check stage produced.
type CheckResults struct {
	Conflicts    []Conflict
	CoverageGaps []CoverageEntry
	PolicyFlags  []PolicyFlag
	Events       []TraceEvent
}

// checkNode names, in the fixed order their trace events are emitted.
const (
	nodeCoverageCheck = "coverage_check"
	nodeConflictCheck = "conflict_check"
	nodePolicyCheck   = "policy_check"
)

// policyKeywords are flagged wherever they appear in assembled content.
var policyKeywords = []string{
	"sanction",
	"politically exposed",
	"shell company",
	"offshore",
	"cash intensive",
	"bearer shares",
}

// CheckExecutor runs the fixed set of independent rule checks over an
// immutable topic set. Checks are scheduled concurrently; none observe each
// other's output, so the only ordering guarantee is that trace events appear
// in the declared check order regardless of completion order.
type CheckExecutor struct {
	now func() time.Time
}

// NewCheckExecutor builds an executor. The clock is injectable for tests.
func NewCheckExecutor() *CheckExecutor {
	return &CheckExecutor{now: time.Now}
}

type checkOutcome struct {
	conflicts []Conflict
	gaps      []CoverageEntry
	flags     []PolicyFlag
	event     TraceEvent
	err       error
}

// Execute runs all checks and returns their combined findings. An
// individual check failure aborts the stage and propagates; the
// orchestrator boundary is the single recovery point.
func (e *CheckExecutor) Execute(ctx context.Context, topics []TopicSection, route RoutePath) (*CheckResults, error) {
	checks := []struct {
		node string
		run  func([]TopicSection) checkOutcome
	}{
		{nodeCoverageCheck, e.runCoverageCheck},
		{nodeConflictCheck, e.runConflictCheck},
		{nodePolicyCheck, e.runPolicyCheck},
	}

	outcomes := make([]checkOutcome, len(checks))
	var wg sync.WaitGroup
	for i, c := range checks {
		wg.Add(1)
		go func(slot int, node string, run func([]TopicSection) checkOutcome) {
			defer wg.Done()
			out := runGuarded(run, topics)
			out.event.Node = node
			outcomes[slot] = out
		}(i, c.node, c.run)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := &CheckResults{
		Conflicts:    []Conflict{},
		CoverageGaps: []CoverageEntry{},
		PolicyFlags:  []PolicyFlag{},
	}
	for _, out := range outcomes {
		if out.err != nil {
			return nil, fmt.Errorf("review: check %s failed: %w", out.event.Node, out.err)
		}
		results.Conflicts = append(results.Conflicts, out.conflicts...)
		results.CoverageGaps = append(results.CoverageGaps, out.gaps...)
		results.PolicyFlags = append(results.PolicyFlags, out.flags...)
		results.Events = append(results.Events, out.event)
	}
	return results, nil
}

// runGuarded contains a panicking check inside its own goroutine. Without
// this, a child-goroutine panic would bypass the orchestrator's recover and
// kill the process.
func runGuarded(run func([]TopicSection) checkOutcome, topics []TopicSection) (out checkOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out.err = fmt.Errorf("panic: %v", r)
		}
	}()
	return run(topics)
}

func (e *CheckExecutor) startEvent() (TraceEvent, time.Time) {
	start := e.now().UTC()
	return TraceEvent{
		Status:    TraceExecuted,
		StartedAt: start.Format(time.RFC3339Nano),
	}, start
}

func (e *CheckExecutor) finishEvent(ev TraceEvent, start time.Time) TraceEvent {
	end := e.now().UTC()
	ev.EndedAt = end.Format(time.RFC3339Nano)
	ev.DurationMs = end.Sub(start).Milliseconds()
	return ev
}

// runCoverageCheck reports one entry per topic with the reason a gap exists.
func (e *CheckExecutor) runCoverageCheck(topics []TopicSection) checkOutcome {
	ev, start := e.startEvent()
	gaps := make([]CoverageEntry, 0, len(topics))
	missing := 0
	for _, t := range topics {
		entry := CoverageEntry{TopicID: t.TopicID, Status: t.Coverage}
		switch t.Coverage {
		case CoverageMissing:
			entry.Reason = "no supporting content found in the submitted documents"
			missing++
		case CoveragePartial:
			entry.Reason = "supporting content is too thin to assess"
		}
		gaps = append(gaps, entry)
	}
	ev.Decision = fmt.Sprintf("%d missing", missing)
	return checkOutcome{gaps: gaps, event: e.finishEvent(ev, start)}
}

// conflictRule describes one deterministic cross-topic contradiction.
type conflictRule struct {
	left        TopicID
	leftTerms   []string
	right       TopicID
	rightTerms  []string
	severity    ConflictSeverity
	description string
}

var conflictRules = []conflictRule{
	{
		left: TopicSourceOfWealth, leftTerms: []string{"salary", "employment"},
		right: TopicTransactionPatterns, rightTerms: []string{"cash deposit", "cash intensive"},
		severity:    ConflictMedium,
		description: "declared salaried income conflicts with cash-heavy transaction activity",
	},
	{
		left: TopicRiskProfile, leftTerms: []string{"low risk"},
		right: TopicSanctionsPEP, rightTerms: []string{"politically exposed", "pep", "sanction"},
		severity:    ConflictHigh,
		description: "low-risk classification conflicts with sanctions/PEP exposure",
	},
	{
		left: TopicSourceOfWealth, leftTerms: []string{"inheritance"},
		right: TopicBeneficialOwnership, rightTerms: []string{"holding company", "shell company"},
		severity:    ConflictLow,
		description: "inherited wealth claim sits oddly with a layered ownership structure",
	},
}

// runConflictCheck applies the fixed conflict rules in declared order.
func (e *CheckExecutor) runConflictCheck(topics []TopicSection) checkOutcome {
	ev, start := e.startEvent()
	byID := make(map[TopicID]*TopicSection, len(topics))
	for i := range topics {
		byID[topics[i].TopicID] = &topics[i]
	}

	var conflicts []Conflict
	for _, rule := range conflictRules {
		left, right := byID[rule.left], byID[rule.right]
		if left == nil || right == nil {
			continue
		}
		if !containsAny(left.Content, rule.leftTerms) || !containsAny(right.Content, rule.rightTerms) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			TopicIDs:     []TopicID{rule.left, rule.right},
			Description:  rule.description,
			Severity:     rule.severity,
			EvidenceRefs: append(firstEvidence(left), firstEvidence(right)...),
		})
	}
	ev.Decision = fmt.Sprintf("%d conflict(s)", len(conflicts))
	return checkOutcome{conflicts: conflicts, event: e.finishEvent(ev, start)}
}

// runPolicyCheck flags high-risk policy keywords per topic.
func (e *CheckExecutor) runPolicyCheck(topics []TopicSection) checkOutcome {
	ev, start := e.startEvent()
	var flags []PolicyFlag
	for _, t := range topics {
		lower := strings.ToLower(t.Content)
		for _, kw := range policyKeywords {
			idx := strings.Index(lower, kw)
			if idx < 0 {
				continue
			}
			flags = append(flags, PolicyFlag{
				TopicID: t.TopicID,
				Keyword: kw,
				Snippet: snippetAround(t.Content, idx),
			})
		}
	}
	ev.Decision = fmt.Sprintf("%d flag(s)", len(flags))
	return checkOutcome{flags: flags, event: e.finishEvent(ev, start)}
}

func containsAny(content string, terms []string) bool {
	lower := strings.ToLower(content)
	for _, term := range terms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

func firstEvidence(sec *TopicSection) []EvidenceRef {
	if len(sec.EvidenceRefs) == 0 {
		return nil
	}
	return sec.EvidenceRefs[:1]
}

func snippetAround(content string, idx int) string {
	start := idx - 40
	if start < 0 {
		start = 0
	}
	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	end := idx + 60
	if end > len(content) {
		end = len(content)
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}
	return truncateSnippet(strings.TrimSpace(content[start:end]))
}
