package respparse

import (
	"regexp"
	"strings"

	"tasksync/internal/core/assignee"
)

var (
	futureRe = regexp.MustCompile(`(?i)\b(?:future\s+plans?|roadmap|q[1-4]|eventually|down\s+the\s+line|some\s*day|long[\s-]term|next\s+(?:quarter|year|sprint\s+planning)|in\s+the\s+future|later\s+this\s+year|at\s+some\s+point|nice\s+to\s+have|backlog\s+idea)\b`)

	codingRe = regexp.MustCompile(`(?i)\b(?:code|coding|implement\w*|refactor\w*|debug\w*|fix\w*|bug\w*|api|apis|endpoint\w*|deploy\w*|script\w*|database|schema\w*|migrat\w*|query|queries|function\w*|frontend|backend|unit\s+tests?|tests?|integrat\w*|build|pipeline|validation|login|auth\w*|feature|ui|css|sql|repo|pull\s+request|pr|merge|branch|optimi[sz]\w*|performance|server|service|app)\b`)

	bugRe = regexp.MustCompile(`(?i)\b(?:bug\w*|fix\w*|broken|crash\w*|error\w*|regression|hotfix|defect|issue\s+with|not\s+working|fails?|failing)\b`)

	// placeholderRe matches prompt template artifacts echoed back by the model
	placeholderRe = regexp.MustCompile(`(?i)(?:\[\s*(?:task\s+)?description\s*\]|<\s*(?:task\s+)?description\s*>|\{\s*(?:task\s+)?description\s*\}|\[\s*name\s*\]|<\s*name\s*>|\{\s*name\s*\}|\bcoding\s*\|\s*non-coding\b|\bto-do\s*\|\s*in-progress|\btrue\s*\|\s*false\b|\[\s*[a-z][a-z_ ]*:\s*\.\.\.\s*\]|\bkey-nnn\b|\[\.\.\.\]|^\s*\.\.\.\s*$)`)

	placeholderNames = map[string]bool{
		"name": true, "participant": true, "participant name": true, "person": true,
		"assignee": true, "<name>": true, "[name]": true, "{name}": true, "speaker": true,
	}
)

// IsFutureText reports future-oriented wording
func IsFutureText(s string) bool { return futureRe.MatchString(s) }

// InferType picks Coding when the description reads like engineering work
func InferType(desc string) Type {
	if codingRe.MatchString(desc) {
		return Coding
	}
	return NonCoding
}

// InferWorkType picks Bug for defect wording
func InferWorkType(desc string) WorkType {
	if bugRe.MatchString(desc) {
		return WorkBug
	}
	return WorkTask
}

// IsPlaceholder reports a line or value that is a template artifact
func IsPlaceholder(s string) bool { return placeholderRe.MatchString(s) }

func placeholderName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if placeholderNames[n] {
		return true
	}
	return strings.ContainsAny(n, "[]<>{}")
}

// inferFuture applies the fallback rules when IS_FUTURE_PLAN was not given
func inferFuture(t Task, typeNote, participant string) bool {
	switch {
	case strings.Contains(strings.ToUpper(typeNote), "FUTURE PLAN"):
		return true
	case strings.EqualFold(strings.TrimSpace(participant), assignee.TBD):
		return true
	case strings.EqualFold(strings.TrimSpace(t.Assignee), assignee.TBD):
		return true
	}
	return IsFutureText(t.Description)
}

// parseBool reads yes/no spellings; ok is false for anything else
func parseBool(s string) (v, ok bool) {
	switch strings.ToLower(strings.Trim(strings.TrimSpace(s), ".")) {
	case "true", "yes", "y", "1":
		return true, true
	case "false", "no", "n", "0":
		return false, true
	}
	return false, false
}

// parseType reads (Coding) / (Non-Coding) spellings
func parseType(s string) (Type, bool) {
	k := strings.ToLower(strings.NewReplacer("-", "", "_", "", " ", "").Replace(s))
	switch {
	case strings.Contains(k, "noncoding"):
		return NonCoding, true
	case strings.Contains(k, "coding"):
		return Coding, true
	}
	return "", false
}
