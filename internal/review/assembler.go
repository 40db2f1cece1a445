package review

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minParagraphChars = 20
	snippetMaxChars   = 100

	// Coverage thresholds on accumulated content length.
	coveragePartialMin  = 1
	coverageCompleteMin = 200
)

// Assemble splits every document into paragraphs and buckets each paragraph
// into the best-matching KYC topic by keyword overlap. Pure and
// deterministic: same documents always produce the same sections.
//
// Paragraphs that match no topic keyword are dropped, not bucketed under
// "other". That mirrors the reference reviewer's behavior of treating
// unmatched content as noise; see DESIGN.md for the recorded decision.
func Assemble(documents []Document) []TopicSection {
	sections := make([]TopicSection, len(topicCatalog))
	for i, def := range topicCatalog {
		sections[i] = TopicSection{
			TopicID:      def.ID,
			EvidenceRefs: []EvidenceRef{},
		}
	}

	for _, doc := range documents {
		for pos, para := range splitParagraphs(doc.Content) {
			if len(para) < minParagraphChars {
				continue
			}

			idx, score := bestTopic(para)
			if score == 0 {
				continue
			}

			sec := &sections[idx]
			if sec.Content != "" {
				sec.Content += "\n\n"
			}
			sec.Content += para
			sec.EvidenceRefs = append(sec.EvidenceRefs, EvidenceRef{
				DocName:      doc.Name,
				LocationHint: fmt.Sprintf("paragraph %d", pos+1),
				Snippet:      truncateSnippet(para),
			})
		}
	}

	for i := range sections {
		sections[i].Coverage = classifyCoverage(len(sections[i].Content))
	}
	return sections
}

// splitParagraphs breaks content on blank-line boundaries and trims each
// paragraph. Empty paragraphs are removed; position hints stay 1-based over
// the retained list.
func splitParagraphs(content string) []string {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	raw := strings.Split(normalized, "\n\n")
	paragraphs := make([]string, 0, len(raw))
	for _, p := range raw {
		p = strings.TrimSpace(p)
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// bestTopic scores every topic by counting keyword hits (case-insensitive
// substring match) and returns the index of the winner. Ties resolve to the
// first topic in the catalog reaching the max score.
func bestTopic(paragraph string) (idx, score int) {
	lower := strings.ToLower(paragraph)
	bestIdx, bestScore := 0, 0
	for i, def := range topicCatalog {
		hits := 0
		for _, kw := range def.Keywords {
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestScore {
			bestIdx, bestScore = i, hits
		}
	}
	return bestIdx, bestScore
}

func truncateSnippet(paragraph string) string {
	if len(paragraph) <= snippetMaxChars {
		return paragraph
	}
	// Back the cut off to a rune boundary so a multi-byte character
	// straddling the limit is never split.
	cut := snippetMaxChars
	for cut > 0 && !utf8.RuneStart(paragraph[cut]) {
		cut--
	}
	return paragraph[:cut] + "..."
}

func classifyCoverage(contentLen int) CoverageStatus {
	switch {
	case contentLen >= coverageCompleteMin:
		return CoverageComplete
	case contentLen >= coveragePartialMin:
		return CoveragePartial
	default:
		return CoverageMissing
	}
}
