package review

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClockExecutor() *CheckExecutor {
	e := NewCheckExecutor()
	e.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestExecuteEventOrderIsStable(t *testing.T) {
	e := fixedClockExecutor()
	topics := topicsWithCoverage(2, 2, 3)

	// Checks run concurrently; the event order must not depend on which
	// goroutine finishes first.
	for i := 0; i < 25; i++ {
		results, err := e.Execute(context.Background(), topics, RouteCrosscheck)
		require.NoError(t, err)
		require.Len(t, results.Events, 3)
		assert.Equal(t, nodeCoverageCheck, results.Events[0].Node)
		assert.Equal(t, nodeConflictCheck, results.Events[1].Node)
		assert.Equal(t, nodePolicyCheck, results.Events[2].Node)
	}
}

func TestExecuteCoverageGaps(t *testing.T) {
	e := fixedClockExecutor()
	results, err := e.Execute(context.Background(), topicsWithCoverage(1, 1, 5), RouteFast)
	require.NoError(t, err)

	require.Len(t, results.CoverageGaps, 7)
	assert.Equal(t, CoverageMissing, results.CoverageGaps[0].Status)
	assert.Equal(t, "no supporting content found in the submitted documents", results.CoverageGaps[0].Reason)
	assert.Equal(t, CoveragePartial, results.CoverageGaps[1].Status)
	assert.Equal(t, "supporting content is too thin to assess", results.CoverageGaps[1].Reason)
	assert.Empty(t, results.CoverageGaps[2].Reason)
	assert.Equal(t, "1 missing", results.Events[0].Decision)
}

func TestExecuteConflictRules(t *testing.T) {
	e := fixedClockExecutor()

	tests := []struct {
		name         string
		left         TopicID
		leftContent  string
		right        TopicID
		rightContent string
		wantSeverity ConflictSeverity
	}{
		{
			name:         "salary against cash deposits",
			left:         TopicSourceOfWealth,
			leftContent:  "Wealth derives from a stable salary at a regional bank.",
			right:        TopicTransactionPatterns,
			rightContent: "Account shows repeated cash deposit activity every week.",
			wantSeverity: ConflictMedium,
		},
		{
			name:         "low risk against PEP exposure",
			left:         TopicRiskProfile,
			leftContent:  "The client is rated low risk by the onboarding desk.",
			right:        TopicSanctionsPEP,
			rightContent: "Screening surfaced a politically exposed person match.",
			wantSeverity: ConflictHigh,
		},
		{
			name:         "inheritance against holding company",
			left:         TopicSourceOfWealth,
			leftContent:  "All wealth traces back to a family inheritance in 2015.",
			right:        TopicBeneficialOwnership,
			rightContent: "Shares are held through a holding company in a second jurisdiction.",
			wantSeverity: ConflictLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			topics := []TopicSection{
				{TopicID: tt.left, Content: tt.leftContent, Coverage: CoveragePartial,
					EvidenceRefs: []EvidenceRef{{DocName: "left.txt", LocationHint: "paragraph 1"}}},
				{TopicID: tt.right, Content: tt.rightContent, Coverage: CoveragePartial,
					EvidenceRefs: []EvidenceRef{{DocName: "right.txt", LocationHint: "paragraph 1"}}},
			}
			results, err := e.Execute(context.Background(), topics, RouteCrosscheck)
			require.NoError(t, err)

			require.Len(t, results.Conflicts, 1)
			conflict := results.Conflicts[0]
			assert.Equal(t, tt.wantSeverity, conflict.Severity)
			assert.Equal(t, []TopicID{tt.left, tt.right}, conflict.TopicIDs)
			require.Len(t, conflict.EvidenceRefs, 2)
			assert.Equal(t, "left.txt", conflict.EvidenceRefs[0].DocName)
			assert.Equal(t, "right.txt", conflict.EvidenceRefs[1].DocName)
		})
	}
}

func TestExecuteNoConflictWithoutBothSides(t *testing.T) {
	e := fixedClockExecutor()
	topics := []TopicSection{
		{TopicID: TopicSourceOfWealth, Content: "Declared salary from employment.", Coverage: CoveragePartial},
		{TopicID: TopicTransactionPatterns, Content: "Routine incoming payments only.", Coverage: CoveragePartial},
	}
	results, err := e.Execute(context.Background(), topics, RouteFast)
	require.NoError(t, err)
	assert.Empty(t, results.Conflicts)
	assert.Equal(t, "0 conflict(s)", results.Events[1].Decision)
}

func TestExecutePolicyFlags(t *testing.T) {
	e := fixedClockExecutor()
	topics := []TopicSection{
		{
			TopicID:  TopicBeneficialOwnership,
			Content:  "The ownership structure runs through an offshore shell company vehicle.",
			Coverage: CoveragePartial,
		},
	}
	results, err := e.Execute(context.Background(), topics, RouteEscalate)
	require.NoError(t, err)

	require.Len(t, results.PolicyFlags, 2)
	assert.Equal(t, "shell company", results.PolicyFlags[0].Keyword)
	assert.Equal(t, "offshore", results.PolicyFlags[1].Keyword)
	for _, flag := range results.PolicyFlags {
		assert.Equal(t, TopicBeneficialOwnership, flag.TopicID)
		assert.NotEmpty(t, flag.Snippet)
	}
}

func TestExecuteEventTimestamps(t *testing.T) {
	e := fixedClockExecutor()
	results, err := e.Execute(context.Background(), topicsWithCoverage(0, 0, 7), RouteFast)
	require.NoError(t, err)

	for _, ev := range results.Events {
		assert.Equal(t, TraceExecuted, ev.Status)
		assert.Equal(t, "2025-03-10T09:00:00Z", ev.StartedAt)
		assert.Equal(t, "2025-03-10T09:00:00Z", ev.EndedAt)
		assert.Zero(t, ev.DurationMs)
	}
}

func TestRunGuardedContainsPanic(t *testing.T) {
	// A check that panics must surface as a stage error, not unwind its
	// goroutine past the orchestrator's recovery point.
	out := runGuarded(func([]TopicSection) checkOutcome {
		var topics []TopicSection
		_ = topics[3]
		return checkOutcome{}
	}, nil)

	require.Error(t, out.err)
	assert.Contains(t, out.err.Error(), "panic")
	assert.Empty(t, out.gaps)
	assert.Empty(t, out.conflicts)
}

func TestRunGuardedPassesThrough(t *testing.T) {
	want := checkOutcome{gaps: []CoverageEntry{{TopicID: TopicClientIdentity}}}
	out := runGuarded(func([]TopicSection) checkOutcome { return want }, nil)
	require.NoError(t, out.err)
	assert.Equal(t, want.gaps, out.gaps)
}

func TestExecuteCancelledContext(t *testing.T) {
	e := fixedClockExecutor()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Execute(ctx, topicsWithCoverage(0, 0, 7), RouteFast)
	assert.ErrorIs(t, err, context.Canceled)
}
