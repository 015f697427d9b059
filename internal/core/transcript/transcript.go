// Package transcript holds meeting transcript entries and their text forms
package transcript

import (
	"regexp"
	"strings"
)

// Entry is one utterance. Speaker may be empty when the text carries a
// "<v Name>" tag or a "Name: " prefix
type Entry struct {
	Speaker   string `json:"speaker,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Text      string `json:"text" validate:"required"`
}

var (
	voiceTag  = regexp.MustCompile(`<v(?:\.[^\s>]+)*\s+([^>]+)>`)
	closeTag  = regexp.MustCompile(`</?[a-z](?:\.[^\s>]+)*[^>]*>`)
	namedLine = regexp.MustCompile(`^\s*([\p{Lu}][\p{L}'’.\- ]{0,40}?)\s*:\s+(.+)$`)
	stampLike = regexp.MustCompile(`^\d{1,2}(?::\d{2}){1,2}(?:[.,]\d+)?$`)
)

// Resolved returns the entry with the speaker lifted out of the text. A Speaker
// that is really a timestamp moves to Timestamp. A voice tag wins over an explicit
// Speaker; a "Name: " prefix only fills a missing Speaker
func (e Entry) Resolved() Entry {
	out := e
	if stampLike.MatchString(strings.TrimSpace(out.Speaker)) {
		if out.Timestamp == "" {
			out.Timestamp = strings.TrimSpace(out.Speaker)
		}
		out.Speaker = ""
	}
	text := e.Text
	if m := voiceTag.FindStringSubmatch(text); m != nil {
		out.Speaker = strings.TrimSpace(m[1])
	}
	text = closeTag.ReplaceAllString(text, "")
	text = strings.Join(strings.Fields(text), " ")
	if out.Speaker == "" {
		if m := namedLine.FindStringSubmatch(text); m != nil {
			out.Speaker = strings.TrimSpace(m[1])
			text = m[2]
		}
	} else if m := namedLine.FindStringSubmatch(text); m != nil && strings.EqualFold(strings.TrimSpace(m[1]), out.Speaker) {
		text = m[2]
	}
	out.Speaker = strings.TrimSpace(out.Speaker)
	out.Text = strings.TrimSpace(text)
	return out
}

// Resolve resolves every entry and drops the ones left without text
func Resolve(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		r := e.Resolved()
		if r.Text == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Speakers returns the distinct speakers in order of first appearance
func Speakers(entries []Entry) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range entries {
		sp := e.Resolved().Speaker
		k := strings.ToLower(sp)
		if sp == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, sp)
	}
	return out
}

// Attendees joins Speakers with ", "
func Attendees(entries []Entry) string { return strings.Join(Speakers(entries), ", ") }

// Render is the prompt form: one "Speaker: text" line per utterance
func Render(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		r := e.Resolved()
		if r.Text == "" {
			continue
		}
		if r.Speaker != "" {
			b.WriteString(r.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(r.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
