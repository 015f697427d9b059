// Package assignee decides who owns a task described in a meeting.
//
// Detection is a cascade of named strategies. Each strategy is a pure function of
// the Input; the first one whose match reaches its threshold wins:
//
//	self       "for me", "I will", "my task"          -> speaker, 0.9
//	explicit   "for Bob", "assigned to Bob Jones"     -> fuzzy participant match, 0.6..0.9
//	modal      "Bob will", "Bob should"               -> fuzzy participant match
//	canonical  a known spelling variant in the text   -> its canonical name, 0.75
//	fallback   speaker when known, else TBD
package assignee

import (
	"regexp"
	"strings"

	"tasksync/internal/core/normalize"
)

// TBD is the sentinel for tasks nobody owns yet
const TBD = "TBD"

// Method names the strategy that produced a match
type Method string

const (
	MethodSelf      Method = "self"
	MethodExplicit  Method = "explicit"
	MethodModal     Method = "modal"
	MethodCanonical Method = "canonical"
	MethodFallback  Method = "fallback"
)

// Input is what every strategy sees
type Input struct {
	Description  string
	Speaker      string
	Participants []string
	Canon        *Canonicalizer
}

// Match is a strategy result
type Match struct {
	Assignee   string  `json:"assignee"`
	Confidence float64 `json:"confidence"`
	Method     Method  `json:"method"`
}

// IsTBD reports whether the match is the sentinel
func (m Match) IsTBD() bool { return m.Assignee == TBD }

// Strategy is one named rule of the cascade
type Strategy struct {
	Name      Method
	Threshold float64
	Run       func(Input) *Match
}

// ConfUnknownFullName is the confidence of a full name not among the participants
const ConfUnknownFullName = 0.6

var (
	selfRe = regexp.MustCompile(`(?i)\b(?:for\s+me|I\s+will|I['’]ll|I\s+am\s+going\s+to|I['’]m\s+going\s+to|I\s+can\s+take|I['’]ll\s+take|my\s+task|assign(?:ed)?\s+(?:it\s+)?to\s+me|on\s+me|I\s+need\s+to|let\s+me)\b`)

	nameExpr   = `([A-Z][\p{L}'’-]+(?:\s+[A-Z][\p{L}'’-]+)?)`
	explicitRe = regexp.MustCompile(`(?:\b[Ff]or|\b[Aa]ssign(?:ed)?\s+to|\b[Hh]and(?:ed)?\s+(?:it\s+)?(?:off\s+|over\s+)?to|\b[Oo]wner(?::|\s+is)|\b[Aa]sk(?:ed)?|\b[Dd]elegate(?:d)?\s+to)\s+` + nameExpr)
	modalRe    = regexp.MustCompile(nameExpr + `\s+(?:will|should|can|could|must|needs\s+to|has\s+to|is\s+going\s+to|plans\s+to|['’]ll)\b`)

	// capitalized words that start a phrase but never name a person
	notNames = map[string]struct{}{
		"the": {}, "this": {}, "that": {}, "these": {}, "those": {}, "next": {}, "now": {},
		"we": {}, "they": {}, "you": {}, "he": {}, "she": {}, "it": {}, "everyone": {},
		"someone": {}, "somebody": {}, "team": {}, "monday": {}, "tuesday": {}, "wednesday": {},
		"thursday": {}, "friday": {}, "saturday": {}, "sunday": {}, "today": {}, "tomorrow": {},
		"q1": {}, "q2": {}, "q3": {}, "q4": {}, "then": {}, "also": {}, "maybe": {}, "and": {},
	}
)

// Self assigns the speaker when the description is phrased in the first person
func Self(in Input) *Match {
	if strings.TrimSpace(in.Speaker) == "" || !selfRe.MatchString(in.Description) {
		return nil
	}
	return &Match{Assignee: in.Canon.Canonical(in.Speaker), Confidence: 0.9, Method: MethodSelf}
}

// Explicit matches "for/assigned to <Name>" against the participants. A full
// two-word capitalized name that matches nobody is still taken at 0.6 so people
// absent from the meeting keep the task
func Explicit(in Input) *Match {
	var fallback *Match
	for _, m := range explicitRe.FindAllStringSubmatch(in.Description, -1) {
		name := trimName(m[1])
		if name == "" {
			continue
		}
		if who, conf, ok := Resolve(name, in.Participants, in.Canon); ok {
			return &Match{Assignee: who, Confidence: conf, Method: MethodExplicit}
		}
		if fallback == nil && len(strings.Fields(name)) == 2 {
			fallback = &Match{Assignee: in.Canon.Canonical(name), Confidence: ConfUnknownFullName, Method: MethodExplicit}
		}
	}
	return fallback
}

// Modal reads "<Name> will/should ..." and keeps only known participants
func Modal(in Input) *Match {
	var best *Match
	for _, m := range modalRe.FindAllStringSubmatch(in.Description, -1) {
		name := trimName(m[1])
		if name == "" {
			continue
		}
		who, conf, ok := Resolve(name, in.Participants, in.Canon)
		if !ok {
			continue
		}
		conf -= 0.1
		if best == nil || conf > best.Confidence {
			best = &Match{Assignee: who, Confidence: conf, Method: MethodModal}
		}
	}
	return best
}

// Canonical assigns the first directory name whose spelling variant appears in the text
func Canonical(in Input) *Match {
	names := in.Canon.Mentions(in.Description)
	if len(names) == 0 {
		return nil
	}
	return &Match{Assignee: names[0], Confidence: 0.75, Method: MethodCanonical}
}

// Fallback is the speaker when known, else TBD. It always matches
func Fallback(in Input) *Match {
	sp := strings.TrimSpace(in.Speaker)
	if sp != "" && sp != TBD {
		if len(in.Participants) == 0 {
			return &Match{Assignee: in.Canon.Canonical(sp), Confidence: 0.5, Method: MethodFallback}
		}
		if who, _, ok := Resolve(sp, in.Participants, in.Canon); ok {
			return &Match{Assignee: who, Confidence: 0.5, Method: MethodFallback}
		}
	}
	return &Match{Assignee: TBD, Confidence: 0, Method: MethodFallback}
}

// Addressed reports whether the text hands work to name by explicit or modal
// phrasing ("for Sarah", "Sarah will"), whether or not that person is present
func Addressed(text, name string, canon *Canonicalizer) bool {
	want := canon.Key(name)
	if want == "" {
		return false
	}
	for _, re := range []*regexp.Regexp{explicitRe, modalRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			got := canon.Key(trimName(m[1]))
			if got == want || normalize.FirstName(got) == want {
				return true
			}
		}
	}
	return false
}

// trimName drops leading non-name words ("The Bob") and returns "" if nothing is left
func trimName(s string) string {
	words := strings.Fields(s)
	for len(words) > 0 {
		if _, skip := notNames[normalize.Name(words[0])]; !skip {
			break
		}
		words = words[1:]
	}
	if len(words) == 2 {
		if _, skip := notNames[normalize.Name(words[1])]; skip {
			words = words[:1]
		}
	}
	return strings.Join(words, " ")
}
