package status

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"tasksync/internal/core/ticketid"

	"github.com/rs/zerolog"
)

// pattern is one phrasing with its fixed confidence
type pattern struct {
	name       string
	re         *regexp.Regexp
	status     Status
	confidence float64
}

// idExpr is deliberately loose; captures are re-validated through the ticket scanner
const idExpr = `(?P<id>[a-z]{2,10}(?:[-_]|\s+)?\d{1,6})`

func compile(name string, st Status, conf float64, expr string) pattern {
	return pattern{
		name:       name,
		re:         regexp.MustCompile(`(?i)` + strings.ReplaceAll(expr, "ID", idExpr)),
		status:     st,
		confidence: conf,
	}
}

// Completion phrasings score 0.85 to 0.9 and in-progress ones 0.8 to 0.85, so a
// completion claim never loses to an in-progress claim on confidence alone
var patterns = []pattern{
	compile("self_completed", Completed, 0.90,
		`\bI(?:\s+have|['’]ve|\s+just)?\s+(?:completed|finished|closed|resolved|wrapped\s+up)\s+(?:(?:the\s+)?(?:work\s+on|ticket|task)\s+)?ID\b`),
	compile("id_is_done", Completed, 0.90,
		`\bID(?:\s+(?:is|was|has\s+been|got)|['’]s)\s+(?:now\s+|finally\s+|fully\s+)?(?:completed?|done|finished|closed|resolved|merged|shipped)\b`),
	compile("verb_id", Completed, 0.88,
		`\b(?:completed|finished|closed|resolved|wrapped\s+up|shipped|merged)\s+(?:(?:the\s+)?(?:work\s+on|ticket|task)\s+)?ID\b`),
	compile("done_with", Completed, 0.87,
		`\bdone\s+with\s+(?:(?:the\s+)?(?:ticket|task)\s+)?ID\b`),
	compile("id_dash_done", Completed, 0.85,
		`\bID\s*[-–:]\s*(?:completed?|done|finished|closed)\b`),

	compile("self_working", InProgress, 0.85,
		`\bI(?:['’]m|\s+am)\s+(?:currently\s+|still\s+|now\s+)?working\s+on\s+(?:(?:the\s+)?(?:ticket|task)\s+)?ID\b`),
	compile("id_in_progress", InProgress, 0.85,
		`\bID\s+(?:is|was)\s+(?:now\s+|currently\s+|still\s+)?in[\s-]progress\b`),
	compile("started_id", InProgress, 0.83,
		`\b(?:started|began|starting|picked\s+up|kicked\s+off)\s+(?:(?:work|working)\s+on\s+)?(?:(?:the\s+)?(?:ticket|task)\s+)?ID\b`),
	compile("working_on", InProgress, 0.82,
		`\b(?:working\s+on|continuing\s+(?:with|on))\s+(?:(?:the\s+)?(?:ticket|task)\s+)?ID\b`),
	compile("id_dash_progress", InProgress, 0.80,
		`\bID\s*[-–:]\s*in[\s-]progress\b`),
}

// Options tunes a Detector
type Options struct {
	// Scanner validates captured references; nil accepts any project key
	Scanner *ticketid.Scanner
	// Log receives recovered panics
	Log zerolog.Logger
}

// Detector runs the phrasing battery over utterances. Safe for concurrent use
type Detector struct {
	scan *ticketid.Scanner
	log  zerolog.Logger
}

// New returns a Detector
func New(opts Options) *Detector {
	sc := opts.Scanner
	if sc == nil {
		sc = ticketid.NewScanner()
	}
	return &Detector{scan: sc, log: opts.Log}
}

// Detect returns at most one Change per task for one utterance. Completion claims
// shadow in-progress claims for the same task; among the rest the highest confidence
// wins, first match on ties. Captures that are not valid ticket ids are dropped.
// A panic inside a pass is logged and yields no changes
func (d *Detector) Detect(text, speaker string) (out []Change) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn().Str("panic", fmt.Sprint(r)).Str("speaker", speaker).Msg("status detector recovered")
			out = nil
		}
	}()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	byID := map[string]int{}
	var pos []int
	for _, p := range patterns {
		idx := p.re.SubexpIndex("id")
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			if m[2*idx] < 0 {
				continue
			}
			id, ok := d.validate(text[m[2*idx]:m[2*idx+1]])
			if !ok {
				continue
			}
			c := Change{
				TaskID:     id,
				NewStatus:  p.status,
				Confidence: p.confidence,
				Evidence:   strings.TrimSpace(text[m[0]:m[1]]),
				Speaker:    speaker,
			}
			j, seen := byID[id]
			switch {
			case !seen:
				byID[id] = len(out)
				out = append(out, c)
				pos = append(pos, m[0])
			case out[j].NewStatus != Completed && c.NewStatus == Completed,
				out[j].NewStatus == c.NewStatus && c.Confidence > out[j].Confidence:
				out[j] = c
				pos[j] = min(pos[j], m[0])
			}
		}
	}
	// report in order of first mention
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int { return pos[a] - pos[b] })
	sorted := make([]Change, len(out))
	for i, k := range idx {
		sorted[i] = out[k]
	}
	return sorted
}

// validate accepts a capture only when the scanner reads the whole capture as one ticket
func (d *Detector) validate(capture string) (string, bool) {
	ref, ok := d.scan.First(capture)
	if !ok || ref.Start != 0 || ref.End != len(capture) {
		return "", false
	}
	return ref.ID, true
}
