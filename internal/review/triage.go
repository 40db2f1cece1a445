package review

import (
	"fmt"
	"strings"
)

// TriageFunc is the risk-triage collaborator contract. The orchestrator
// branches on the returned RoutePath and RiskScore but treats the scoring
// itself as a black box.
type TriageFunc func(topics []TopicSection) TriageResult

// Scoring weights for the built-in triage implementation.
const (
	pointsPerMissingTopic = 12
	pointsPerPartialTopic = 5
	pointsPerRiskKeyword  = 15
	maxKeywordPoints      = 60
	maxRiskScore          = 100
)

// Route thresholds on the final score.
const (
	routeFastMax       = 30
	routeCrosscheckMax = 60
	routeEscalateMax   = 80
)

// riskKeywords raise the score when found anywhere in assembled content.
var riskKeywords = []string{
	"sanction",
	"politically exposed",
	"shell company",
	"offshore",
	"cash intensive",
	"high risk jurisdiction",
	"cryptocurrency",
	"bearer shares",
}

// Triage derives a risk score, route path, and human-readable reasons from
// assembled topics. Deterministic over its input.
func Triage(topics []TopicSection) TriageResult {
	var breakdown RiskBreakdown
	var reasons []string

	missing, partial := 0, 0
	for _, t := range topics {
		switch t.Coverage {
		case CoverageMissing:
			missing++
		case CoveragePartial:
			partial++
		}
	}
	breakdown.CoveragePoints = missing*pointsPerMissingTopic + partial*pointsPerPartialTopic
	if missing > 0 {
		reasons = append(reasons, fmt.Sprintf("%d topic(s) have no supporting content", missing))
	}
	if partial > 0 {
		reasons = append(reasons, fmt.Sprintf("%d topic(s) are only partially covered", partial))
	}

	var combined strings.Builder
	for _, t := range topics {
		combined.WriteString(strings.ToLower(t.Content))
		combined.WriteString("\n")
	}
	text := combined.String()
	for _, kw := range riskKeywords {
		if strings.Contains(text, kw) {
			breakdown.KeywordPoints += pointsPerRiskKeyword
			reasons = append(reasons, fmt.Sprintf("high-risk indicator %q present", kw))
		}
	}
	if breakdown.KeywordPoints > maxKeywordPoints {
		breakdown.KeywordPoints = maxKeywordPoints
	}

	breakdown.TotalPoints = breakdown.CoveragePoints + breakdown.KeywordPoints
	score := breakdown.TotalPoints
	if score > maxRiskScore {
		score = maxRiskScore
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "no coverage gaps or risk indicators detected")
	}

	return TriageResult{
		RiskScore:     score,
		TriageReasons: reasons,
		RoutePath:     routeForScore(score),
		RiskBreakdown: breakdown,
	}
}

func routeForScore(score int) RoutePath {
	switch {
	case score <= routeFastMax:
		return RouteFast
	case score <= routeCrosscheckMax:
		return RouteCrosscheck
	case score <= routeEscalateMax:
		return RouteEscalate
	default:
		return RouteHumanGate
	}
}
