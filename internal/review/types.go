package review

// Document is a raw uploaded document. Immutable once received.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// TopicID identifies one of the fixed KYC topic buckets.
type TopicID string

const (
	TopicClientIdentity       TopicID = "client_identity"
	TopicSourceOfWealth       TopicID = "source_of_wealth"
	TopicBusinessRelationship TopicID = "business_relationship"
	TopicBeneficialOwnership  TopicID = "beneficial_ownership"
	TopicRiskProfile          TopicID = "risk_profile"
	TopicSanctionsPEP         TopicID = "sanctions_pep"
	TopicTransactionPatterns  TopicID = "transaction_patterns"
	TopicOther                TopicID = "other"
)

// CoverageStatus classifies how much content a topic accumulated.
type CoverageStatus string

const (
	CoverageComplete CoverageStatus = "complete"
	CoveragePartial  CoverageStatus = "partial"
	CoverageMissing  CoverageStatus = "missing"
)

// EvidenceRef points back at the paragraph a finding came from.
type EvidenceRef struct {
	DocName      string `json:"docName"`
	LocationHint string `json:"locationHint"`
	Snippet      string `json:"snippet"`
}

// TopicSection accumulates the document paragraphs assigned to one topic.
// Sections are created fresh on every run and never mutated after assembly.
type TopicSection struct {
	TopicID      TopicID        `json:"topicId"`
	Content      string         `json:"content"`
	EvidenceRefs []EvidenceRef  `json:"evidenceRefs"`
	Coverage     CoverageStatus `json:"coverage"`
}

// RoutePath is the execution strategy chosen by triage.
type RoutePath string

const (
	RouteFast       RoutePath = "fast"
	RouteCrosscheck RoutePath = "crosscheck"
	RouteEscalate   RoutePath = "escalate"
	RouteHumanGate  RoutePath = "human_gate"
)

// RiskBreakdown itemizes how the triage score was produced.
type RiskBreakdown struct {
	CoveragePoints int `json:"coveragePoints"`
	KeywordPoints  int `json:"keywordPoints"`
	TotalPoints    int `json:"totalPoints"`
}

// TriageResult is the risk-triage collaborator's output contract. The
// orchestrator branches on RoutePath and RiskScore; a resumed run
// reconstructs this from stored state rather than recomputing it.
type TriageResult struct {
	RiskScore     int           `json:"riskScore"`
	TriageReasons []string      `json:"triageReasons"`
	RoutePath     RoutePath     `json:"routePath"`
	RiskBreakdown RiskBreakdown `json:"riskBreakdown"`
}

// ConflictSeverity grades a cross-topic contradiction.
type ConflictSeverity string

const (
	ConflictHigh   ConflictSeverity = "high"
	ConflictMedium ConflictSeverity = "medium"
	ConflictLow    ConflictSeverity = "low"
)

// Conflict is a contradiction detected between topic sections.
type Conflict struct {
	TopicIDs     []TopicID        `json:"topicIds"`
	Description  string           `json:"description"`
	Severity     ConflictSeverity `json:"severity"`
	EvidenceRefs []EvidenceRef    `json:"evidenceRefs"`
}

// CoverageEntry reports one topic's coverage status for display.
type CoverageEntry struct {
	TopicID TopicID        `json:"topicId"`
	Status  CoverageStatus `json:"status"`
	Reason  string         `json:"reason,omitempty"`
}

// PolicyFlag marks a high-risk keyword hit inside a topic section.
type PolicyFlag struct {
	TopicID TopicID `json:"topicId"`
	Keyword string  `json:"keyword"`
	Snippet string  `json:"snippet"`
}

// TraceStatus is the lifecycle state a trace event records for its node.
type TraceStatus string

const (
	TraceExecuted TraceStatus = "executed"
	TraceSkipped  TraceStatus = "skipped"
	TraceWaiting  TraceStatus = "waiting"
	TraceFailed   TraceStatus = "failed"
)

// TraceEvent is one append-only entry in a run's execution log. On resume,
// prior events are prepended verbatim and never reordered or deduplicated.
type TraceEvent struct {
	Node       string      `json:"node"`
	Status     TraceStatus `json:"status"`
	Decision   string      `json:"decision,omitempty"`
	Reason     string      `json:"reason,omitempty"`
	StartedAt  string      `json:"startedAt,omitempty"`
	EndedAt    string      `json:"endedAt,omitempty"`
	DurationMs int64       `json:"durationMs,omitempty"`
}

// IssueSeverity is the display severity of a finalized issue.
type IssueSeverity string

const (
	IssueFail    IssueSeverity = "FAIL"
	IssueWarning IssueSeverity = "WARNING"
)

// IssueAgent names the check that produced an issue.
type IssueAgent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Issue is a normalized, display-ready finding derived from a conflict,
// coverage gap, or policy flag at finalize time.
type Issue struct {
	ID        string        `json:"id"`
	SectionID TopicID       `json:"sectionId"`
	Severity  IssueSeverity `json:"severity"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Evidence  []EvidenceRef `json:"evidence,omitempty"`
	Agent     IssueAgent    `json:"agent"`
}

// HumanDecision carries the reviewer's verdict on a gated run.
type HumanDecision struct {
	Gate     string `json:"gate,omitempty"`
	Decision string `json:"decision"`
	Signer   string `json:"signer,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Allowed human decision values.
const (
	DecisionApproveEDD  = "approve_edd"
	DecisionRequestDocs = "request_docs"
	DecisionReject      = "reject"
)

// Features toggles optional pipeline behavior per request.
type Features struct {
	Reflection   bool `json:"reflection"`
	Negotiation  bool `json:"negotiation"`
	Memory       bool `json:"memory"`
	RemoteSkills bool `json:"remote_skills"`
}

// ReviewRequest is the orchestrator's input.
type ReviewRequest struct {
	Documents     []Document     `json:"documents"`
	HumanDecision *HumanDecision `json:"humanDecision,omitempty"`
	DirtyTopics   []TopicID      `json:"dirtyTopics,omitempty"`
	RunID         string         `json:"runId,omitempty"`
	ResumeToken   string         `json:"resumeToken,omitempty"`
	Features      *Features      `json:"features,omitempty"`
}

// TraceSummary condenses a run for dashboards.
type TraceSummary struct {
	Path                 RoutePath      `json:"path"`
	RiskScore            int            `json:"riskScore"`
	RiskBreakdown        *RiskBreakdown `json:"riskBreakdown,omitempty"`
	CoverageMissingCount int            `json:"coverageMissingCount"`
	ConflictCount        int            `json:"conflictCount"`
}

// GraphReviewTrace is the run's full execution log plus summary.
type GraphReviewTrace struct {
	Events   []TraceEvent `json:"events"`
	Summary  TraceSummary `json:"summary"`
	Degraded bool         `json:"degraded,omitempty"`
}

// HumanGate describes a pending approval checkpoint.
type HumanGate struct {
	Required bool     `json:"required"`
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options"`
}

// GraphReviewResponse is the orchestrator's output for both entry paths.
// Terminal user-facing failures (bad token, expired snapshot) populate
// Error; the HTTP layer still returns them as 200-shaped JSON.
type GraphReviewResponse struct {
	Issues           []Issue          `json:"issues"`
	TopicSections    []TopicSection   `json:"topicSections,omitempty"`
	Conflicts        []Conflict       `json:"conflicts,omitempty"`
	CoverageGaps     []CoverageEntry  `json:"coverageGaps,omitempty"`
	GraphReviewTrace GraphReviewTrace `json:"graphReviewTrace"`
	HumanGate        *HumanGate       `json:"humanGate,omitempty"`
	ResumeToken      string           `json:"resumeToken,omitempty"`
	Error            string           `json:"error,omitempty"`
}
