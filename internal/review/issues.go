package review

import "fmt"

var (
	coverageAgent = IssueAgent{ID: "coverage_agent", Name: "Coverage Check"}
	conflictAgent = IssueAgent{ID: "conflict_agent", Name: "Cross-Topic Conflict Check"}
	policyAgent   = IssueAgent{ID: "policy_agent", Name: "Policy Keyword Check"}
)

// BuildIssues converts raw check findings into the uniform display-ready
// issue list. Deterministic: identical findings always yield identical
// issues in identical order (gaps, then conflicts, then policy flags).
func BuildIssues(results *CheckResults) []Issue {
	issues := []Issue{}
	if results == nil {
		return issues
	}

	for _, gap := range results.CoverageGaps {
		switch gap.Status {
		case CoverageMissing:
			issues = append(issues, Issue{
				ID:        fmt.Sprintf("gap-%s", gap.TopicID),
				SectionID: gap.TopicID,
				Severity:  IssueFail,
				Title:     fmt.Sprintf("%s is missing", TopicName(gap.TopicID)),
				Message:   gap.Reason,
				Agent:     coverageAgent,
			})
		case CoveragePartial:
			issues = append(issues, Issue{
				ID:        fmt.Sprintf("gap-%s", gap.TopicID),
				SectionID: gap.TopicID,
				Severity:  IssueWarning,
				Title:     fmt.Sprintf("%s is only partially covered", TopicName(gap.TopicID)),
				Message:   gap.Reason,
				Agent:     coverageAgent,
			})
		}
	}

	for i, conflict := range results.Conflicts {
		severity := IssueWarning
		if conflict.Severity == ConflictHigh {
			severity = IssueFail
		}
		sectionID := TopicOther
		if len(conflict.TopicIDs) > 0 {
			sectionID = conflict.TopicIDs[0]
		}
		issues = append(issues, Issue{
			ID:        fmt.Sprintf("conflict-%d", i+1),
			SectionID: sectionID,
			Severity:  severity,
			Title:     "Cross-topic conflict detected",
			Message:   conflict.Description,
			Evidence:  conflict.EvidenceRefs,
			Agent:     conflictAgent,
		})
	}

	for _, flag := range results.PolicyFlags {
		issues = append(issues, Issue{
			ID:        fmt.Sprintf("policy-%s-%s", flag.TopicID, flag.Keyword),
			SectionID: flag.TopicID,
			Severity:  IssueWarning,
			Title:     fmt.Sprintf("Policy keyword %q flagged", flag.Keyword),
			Message:   fmt.Sprintf("High-risk keyword %q appears in %s.", flag.Keyword, TopicName(flag.TopicID)),
			Evidence:  []EvidenceRef{{Snippet: flag.Snippet}},
			Agent:     policyAgent,
		})
	}

	return issues
}
