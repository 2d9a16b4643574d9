package analyze

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/planloom/planloom/internal/document"
)

// Severity grades a conflict or coverage gap.
type Severity string

// Severity levels.
const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Conflict kinds.
const (
	ConflictTechnology          = "technology_conflict"
	ConflictRequirementPriority = "requirement_priority_conflict"
)

// Conflict is one detected contradiction across the document set.
type Conflict struct {
	Type              string   `json:"type"`
	Severity          Severity `json:"severity"`
	Description       string   `json:"description"`
	AffectedDocuments []string `json:"affected_documents,omitempty"`
}

// ConflictAnalysis holds detected conflicts plus a severity tally.
// The counts always equal the partition of Conflicts and Inconsistencies
// by severity.
type ConflictAnalysis struct {
	Conflicts       []Conflict `json:"conflicts,omitempty"`
	Inconsistencies []Conflict `json:"inconsistencies,omitempty"`
	SeverityHigh    int        `json:"severity_high"`
	SeverityMedium  int        `json:"severity_medium"`
	SeverityLow     int        `json:"severity_low"`
}

// exclusivePairs lists technology choices that do not plausibly coexist in
// one stack. Both members appearing anywhere across the set is flagged.
var exclusivePairs = [][2]string{
	{"react", "angular"},
	{"react", "vue"},
	{"angular", "vue"},
	{"mysql", "postgresql"},
	{"mongodb", "mysql"},
	{"mongodb", "postgresql"},
	{"aws", "azure"},
}

func (a Analyzer) analyzeConflicts(extractions []document.ExtractedContent) ConflictAnalysis {
	var ca ConflictAnalysis
	ca.Conflicts = append(ca.Conflicts, technologyConflicts(extractions)...)
	ca.Inconsistencies = append(ca.Inconsistencies, a.priorityConflicts(extractions)...)
	tally(&ca)
	return ca
}

// technologyConflicts checks the fixed mutually-exclusive pair list against
// every document's technology list.
func technologyConflicts(extractions []document.ExtractedContent) []Conflict {
	// normalized technology -> source filenames
	sources := make(map[string][]string)
	for _, e := range extractions {
		seen := make(map[string]bool)
		for _, tech := range e.Technologies {
			key := normalizeWord(tech)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			sources[key] = append(sources[key], e.Filename)
		}
	}

	var out []Conflict
	for _, pair := range exclusivePairs {
		left, right := sources[pair[0]], sources[pair[1]]
		if len(left) == 0 || len(right) == 0 {
			continue
		}
		affected := uniqueSorted(append(append([]string{}, left...), right...))
		out = append(out, Conflict{
			Type:     ConflictTechnology,
			Severity: SeverityHigh,
			Description: fmt.Sprintf("Documents reference both %s and %s, which are mutually exclusive choices.",
				pair[0], pair[1]),
			AffectedDocuments: affected,
		})
	}
	return out
}

// priorityConflicts compares all requirements pairwise across different
// source documents. Two requirements whose description word-sets overlap
// above the threshold are treated as the same requirement; differing
// priorities produce a medium-severity inconsistency. O(n²) over all
// requirements.
func (a Analyzer) priorityConflicts(extractions []document.ExtractedContent) []Conflict {
	threshold := a.OverlapThreshold
	if threshold <= 0 {
		threshold = DefaultOverlapThreshold
	}

	type sourcedReq struct {
		req    document.Requirement
		source string
	}
	var reqs []sourcedReq
	for _, e := range extractions {
		for _, r := range e.Requirements {
			if strings.TrimSpace(r.Description) == "" {
				// Normalization upstream should prevent this; skip rather
				// than fail if it slips through.
				log.Warn().Str("file", e.Filename).Msg("skipping requirement with empty description")
				continue
			}
			reqs = append(reqs, sourcedReq{req: r, source: e.Filename})
		}
	}

	var out []Conflict
	for i := 0; i < len(reqs); i++ {
		for j := i + 1; j < len(reqs); j++ {
			left, right := reqs[i], reqs[j]
			if left.source == right.source {
				continue
			}
			if wordOverlap(left.req.Description, right.req.Description) <= threshold {
				continue
			}
			lp := normalizeWord(left.req.Priority)
			rp := normalizeWord(right.req.Priority)
			if lp == "" || rp == "" || lp == rp {
				continue
			}
			out = append(out, Conflict{
				Type:     ConflictRequirementPriority,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("Requirement %q has priority %s in %s but %s in %s.",
					truncate(left.req.Description, 80), lp, left.source, rp, right.source),
				AffectedDocuments: uniqueSorted([]string{left.source, right.source}),
			})
		}
	}
	return out
}

// tally counts conflicts and inconsistencies by severity. Items with an
// unrecognized severity are bucketed into low instead of failing.
func tally(ca *ConflictAnalysis) {
	count := func(items []Conflict) {
		for _, c := range items {
			switch c.Severity {
			case SeverityHigh:
				ca.SeverityHigh++
			case SeverityMedium:
				ca.SeverityMedium++
			case SeverityLow:
				ca.SeverityLow++
			default:
				log.Warn().Str("severity", string(c.Severity)).Str("type", c.Type).Msg("unrecognized conflict severity, counting as low")
				ca.SeverityLow++
			}
		}
	}
	count(ca.Conflicts)
	count(ca.Inconsistencies)
}

// wordOverlap returns |A∩B| / max(|A|, |B|, 1) over lowercase word sets.
func wordOverlap(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)
	shared := 0
	for w := range setA {
		if setB[w] {
			shared++
		}
	}
	denom := len(setA)
	if len(setB) > denom {
		denom = len(setB)
	}
	if denom < 1 {
		denom = 1
	}
	return float64(shared) / float64(denom)
}

func wordSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:!?\"'()[]")
		if w != "" {
			out[w] = true
		}
	}
	return out
}

func normalizeWord(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func uniqueSorted(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, it := range items {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
		}
	}
	sort.Strings(out)
	return out
}

// truncate caps s at n bytes, backing off to a rune boundary so the
// result is always valid UTF-8.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
