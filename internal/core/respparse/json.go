package respparse

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"tasksync/internal/core/hours"
	"tasksync/internal/core/status"
	"tasksync/internal/core/ticketid"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Format selects the completion form
type Format string

const (
	FormatAuto Format = ""
	FormatTags Format = "tags"
	FormatJSON Format = "json"
)

// ParseFormat maps a config value to a Format
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatTags, FormatJSON:
		return f, nil
	case "auto":
		return FormatAuto, nil
	}
	return "", fmt.Errorf("respparse: unknown format %q", s)
}

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "tasks.schema.json"

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("respparse: schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("respparse: schema resource: %w", err)
	}
	return c.Compile(schemaURL)
})

// Schema returns the embedded JSON schema text, for prompts
func Schema() string { return string(schemaJSON) }

type jsonDoc struct {
	Participants []jsonParticipant `mapstructure:"participants"`
	Tasks        []jsonTask        `mapstructure:"tasks"`
}

type jsonParticipant struct {
	Name  string     `mapstructure:"name"`
	Tasks []jsonTask `mapstructure:"tasks"`
}

type jsonTask struct {
	Description  string `mapstructure:"description"`
	Type         string `mapstructure:"type"`
	WorkType     string `mapstructure:"work_type"`
	Category     string `mapstructure:"category"`
	TaskID       string `mapstructure:"task_id"`
	Status       string `mapstructure:"status"`
	Estimated    any    `mapstructure:"estimated"`
	TimeSpent    any    `mapstructure:"time_spent"`
	IsFuturePlan any    `mapstructure:"is_future_plan"`
	Assignee     string `mapstructure:"assignee"`
	Priority     string `mapstructure:"priority"`
	StoryPoints  any    `mapstructure:"story_points"`
	ProjectCode  string `mapstructure:"project_code"`
	Evidence     string `mapstructure:"evidence"`
	Context      string `mapstructure:"context"`
}

// ParseJSON parses a JSON completion with a no-op logger
func ParseJSON(raw string) Result { return Parser{Log: zerolog.Nop()}.ParseJSON(raw) }

// ParseJSON validates the completion against the embedded schema and decodes it.
// Anything that is not schema-valid JSON goes through the tag grammar instead
func (p Parser) ParseJSON(raw string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			p.Log.Warn().Interface("panic", r).Msg("respparse: json recovered, returning empty result")
			res = Result{}
		}
	}()

	doc, err := decodeJSON(raw)
	if err != nil {
		p.Log.Debug().Err(err).Msg("respparse: json rejected, using tag grammar")
		return p.Parse(raw)
	}

	b := newBuilder()
	for _, part := range doc.Participants {
		name := cleanName(part.Name)
		if name == "" || placeholderName(name) {
			continue
		}
		for _, jt := range part.Tasks {
			if t, ok := jt.task(name); ok {
				b.add(name, t)
			}
		}
	}
	for _, jt := range doc.Tasks {
		if t, ok := jt.task(""); ok && t.Assignee != "" {
			b.add(t.Assignee, t)
		}
	}
	return b.result()
}

// ParseFormat dispatches on f. FormatAuto picks JSON when the completion looks
// like a JSON object
func (p Parser) ParseFormat(raw string, f Format) Result {
	switch f {
	case FormatJSON:
		return p.ParseJSON(raw)
	case FormatTags:
		return p.Parse(raw)
	}
	if looksJSON(raw) {
		return p.ParseJSON(raw)
	}
	return p.Parse(raw)
}

var errNoObject = errors.New("respparse: no json object")

func decodeJSON(raw string) (jsonDoc, error) {
	body, ok := extractObject(raw)
	if !ok {
		return jsonDoc{}, errNoObject
	}
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(body))
	if err != nil {
		return jsonDoc{}, err
	}
	sch, err := compiledSchema()
	if err != nil {
		return jsonDoc{}, err
	}
	if err := sch.Validate(inst); err != nil {
		return jsonDoc{}, err
	}

	var doc jsonDoc
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return jsonDoc{}, err
	}
	if err := dec.Decode(inst); err != nil {
		return jsonDoc{}, err
	}
	return doc, nil
}

// extractObject strips code fences and returns the outermost {...} span
func extractObject(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimPrefix(s, "json")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	i, j := strings.IndexByte(s, '{'), strings.LastIndexByte(s, '}')
	if i < 0 || j <= i {
		return "", false
	}
	return s[i : j+1], true
}

func looksJSON(raw string) bool {
	s := strings.TrimSpace(raw)
	return strings.HasPrefix(s, "{") || strings.HasPrefix(s, "```json")
}

func (jt jsonTask) task(participant string) (Task, bool) {
	desc := cleanDescription(jt.Description)
	if desc == "" || IsPlaceholder(desc) {
		return Task{}, false
	}
	t := Task{
		Description: desc,
		TicketID:    ticketid.None,
		Status:      status.ToDo,
		Assignee:    participant,
		Priority:    strings.TrimSpace(jt.Priority),
		ProjectCode: strings.TrimSpace(jt.ProjectCode),
		Evidence:    strings.TrimSpace(jt.Evidence),
		Context:     strings.TrimSpace(jt.Context),
		Estimated:   toHours(jt.Estimated),
		TimeSpent:   toHours(jt.TimeSpent),
		StoryPoints: toHours(jt.StoryPoints),
	}
	if a := cleanName(jt.Assignee); a != "" && !placeholderName(a) {
		t.Assignee = a
	}
	if jt.TaskID != "" {
		t.TicketID = ticketid.MustNormalize(jt.TaskID)
	}
	if st, ok := status.Parse(jt.Status); ok {
		t.Status, t.StatusExplicit = st, true
	}
	finish(&t, jt.Type, futureString(jt.IsFuturePlan), jt.Category, jt.WorkType, participant)
	return t, true
}

// toHours reads numbers as hours and strings through the hours converter
func toHours(v any) float64 {
	switch x := v.(type) {
	case json.Number:
		f, err := x.Float64()
		if err == nil {
			return f
		}
		return hours.Parse(string(x))
	case float64:
		return x
	case int:
		return float64(x)
	case string:
		return hours.Parse(x)
	}
	return 0
}

func futureString(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	}
	return ""
}
