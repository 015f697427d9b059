package transcript

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

const maxLine = 1 << 20

// ErrEmpty is returned when a reader yields no utterances
var ErrEmpty = errors.New("transcript: no entries")

// ParseVTT reads WebVTT cues. NOTE, STYLE and REGION blocks are skipped, the cue
// start time becomes the Timestamp, multi-line payloads are joined with a space
func ParseVTT(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var (
		out     []Entry
		stamp   string
		payload []string
		inCue   bool
		skip    bool
	)
	flush := func() {
		if inCue && len(payload) > 0 {
			e := Entry{Timestamp: stamp, Text: strings.Join(payload, " ")}.Resolved()
			if e.Text != "" {
				out = append(out, e)
			}
		}
		stamp, payload, inCue, skip = "", nil, false, false
	}

	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if first {
			first = false
			line = strings.TrimPrefix(line, "\ufeff")
			if strings.HasPrefix(line, "WEBVTT") {
				skip = true
				continue
			}
		}
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			flush()
		case skip:
		case !inCue && (strings.HasPrefix(trimmed, "NOTE") || trimmed == "STYLE" || trimmed == "REGION"):
			skip = true
		case strings.Contains(trimmed, "-->"):
			start, _, _ := strings.Cut(trimmed, "-->")
			stamp = strings.TrimSpace(start)
			inCue = true
		case inCue:
			payload = append(payload, trimmed)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// ParseLines reads one utterance per non-blank line ("Name: text", "<v Name>text</v>"
// or bare text)
func ParseLines(r io.Reader) ([]Entry, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)
	var out []Entry
	for sc.Scan() {
		e := Entry{Text: sc.Text()}.Resolved()
		if e.Text != "" {
			out = append(out, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// Parse sniffs the format: WebVTT when the first non-blank line starts with
// WEBVTT, lines otherwise
func Parse(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(512)
	if strings.HasPrefix(strings.TrimLeft(strings.TrimPrefix(string(head), "\ufeff"), " \t\r\n"), "WEBVTT") {
		return ParseVTT(br)
	}
	return ParseLines(br)
}
