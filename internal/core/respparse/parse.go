package respparse

import (
	"regexp"
	"strconv"
	"strings"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/hours"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"

	"github.com/rs/zerolog"
)

var (
	headerRe = regexp.MustCompile(`(?i)^\s*(?:#{1,6}\s*)?[*_]*\s*(.{1,60}?)(?:['’]s)?\s+tasks\s*[*_]*\s*:\s*[*_]*\s*$`)
	itemRe   = regexp.MustCompile(`^\s*(?:\d{1,3}[.)]|[-*•])\s+(.+)$`)
	tagRe    = regexp.MustCompile(`\[\s*([A-Za-z][A-Za-z_ ]*?)\s*:\s*([^\]]*?)\s*\]`)
	typeRe   = regexp.MustCompile(`(?i)\(\s*((?:non[\s-]?)?coding)\b[^)]*\)`)
	numRe    = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Parser parses completions. The zero value works and logs nowhere
type Parser struct {
	Log zerolog.Logger
}

// Parse parses the tag grammar with a no-op logger
func Parse(raw string) Result { return Parser{Log: zerolog.Nop()}.Parse(raw) }

// Parse reads header and task lines. Lines outside the grammar, placeholder
// echoes and lines that fail to parse are skipped
func (p Parser) Parse(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.Log.Warn().Interface("panic", r).Msg("respparse: recovered, returning empty result")
			res = Result{}
		}
	}()

	b := newBuilder()
	current, hint := "", ""
	skipping := false

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := headerRe.FindStringSubmatch(line); m != nil && !itemRe.MatchString(line) {
			name := cleanName(m[1])
			if h, ok := sectionHint(name); ok {
				hint = h
				continue
			}
			skipping = name == "" || placeholderName(name)
			current, hint = name, ""
			continue
		}
		m := itemRe.FindStringSubmatch(line)
		if m == nil || skipping {
			continue
		}
		t, ok := p.line(m[1], current, hint)
		if !ok {
			continue
		}
		owner := current
		if owner == "" {
			owner = t.Assignee
		}
		if owner == "" {
			continue
		}
		b.add(owner, t)
	}
	return b.result()
}

// sectionHint reads "Coding Tasks:" style sub-headers that group a
// participant's lines instead of naming one
func sectionHint(name string) (string, bool) {
	k := strings.ToLower(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	switch strings.Join(strings.Fields(k), " ") {
	case "coding":
		return "Coding", true
	case "non coding", "noncoding":
		return "Non-Coding", true
	case "future plan", "future plans", "future":
		return "Future Plan", true
	}
	return "", false
}

// line parses one task body. participant is the enclosing header, possibly
// empty; hint is the type note of an enclosing sub-header
func (p Parser) line(body, participant, hint string) (t Task, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.Log.Warn().Interface("panic", r).Str("line", body).Msg("respparse: skipped line")
			ok = false
		}
	}()

	if IsPlaceholder(body) {
		p.Log.Debug().Str("line", body).Msg("respparse: placeholder dropped")
		return Task{}, false
	}

	tags := map[string]string{}
	desc := body
	if loc := tagRe.FindStringIndex(body); loc != nil {
		desc = body[:loc[0]]
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		k := strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(m[1], "_", " ")), "_"))
		tags[k] = strings.TrimSpace(m[2])
	}

	typeNote := tags["TYPE"]
	if m := typeRe.FindStringSubmatch(desc); m != nil {
		typeNote = strings.TrimSpace(m[0] + " " + typeNote)
		desc = typeRe.ReplaceAllString(desc, " ")
	}
	if _, ok := parseType(typeNote); !ok || !strings.Contains(hint, "Coding") {
		typeNote = strings.TrimSpace(typeNote + " " + hint)
	}
	desc = cleanDescription(desc)
	if desc == "" {
		return Task{}, false
	}

	t = Task{
		Description: desc,
		TicketID:    ticketid.None,
		Status:      status.ToDo,
		Assignee:    participant,
		Priority:    tags["PRIORITY"],
		ProjectCode: tags["PROJECT_CODE"],
		Evidence:    tags["EVIDENCE"],
		Context:     tags["CONTEXT"],
	}
	if v := tags["ASSIGNEE"]; v != "" && !placeholderName(v) {
		t.Assignee = cleanName(v)
	}
	if v := tags["TASK_ID"]; v != "" {
		t.TicketID = ticketid.MustNormalize(v)
	}
	if v := tags["STATUS"]; v != "" {
		if st, ok := status.Parse(v); ok {
			t.Status, t.StatusExplicit = st, true
		}
	}
	t.Estimated = hours.Parse(firstOf(tags, "ESTIMATED", "ESTIMATE", "ESTIMATED_TIME"))
	t.TimeSpent = hours.Parse(firstOf(tags, "TIME_SPENT", "SPENT"))
	if v := numRe.FindString(tags["STORY_POINTS"]); v != "" {
		t.StoryPoints, _ = strconv.ParseFloat(v, 64)
	}

	finish(&t, typeNote, tags["IS_FUTURE_PLAN"], tags["CATEGORY"], tags["WORK_TYPE"], participant)
	return t, true
}

// finish applies type, work type, category and future plan defaults shared by
// both input forms
func finish(t *Task, typeNote, future, category, workType, participant string) {
	if tp, ok := parseType(typeNote); ok {
		t.Type = tp
	} else {
		t.Type = InferType(t.Description)
	}

	switch strings.ToLower(strings.TrimSpace(workType)) {
	case "bug", "defect":
		t.WorkType = WorkBug
	case "task", "story":
		t.WorkType = WorkTask
	default:
		t.WorkType = InferWorkType(t.Description)
	}

	switch c := Category(strings.ToUpper(strings.TrimSpace(category))); c {
	case NewTask, UpdateTask:
		t.Category = c
	}

	if v, ok := parseBool(future); ok {
		t.IsFuturePlan, t.FutureExplicit = v, true
	} else {
		t.IsFuturePlan = inferFuture(*t, typeNote, participant)
	}
	if t.Assignee == "" && t.IsFuturePlan {
		t.Assignee = assignee.TBD
	}
}

func firstOf(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := tags[k]; v != "" {
			return v
		}
	}
	return ""
}

// cleanName strips markdown and list noise around a header or assignee name
func cleanName(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "*_#:` ")
	return strings.Join(strings.Fields(s), " ")
}

// cleanDescription strips markdown emphasis and trailing separators
func cleanDescription(s string) string {
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimRight(strings.TrimSpace(s), " -–:;,")
}
