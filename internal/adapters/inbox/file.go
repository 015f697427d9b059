package inbox

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"tasksync/internal/core/transcript"
	perr "tasksync/internal/platform/errors"
	"tasksync/internal/platform/net/http/bind"
	exdom "tasksync/internal/services/extraction/domain"
)

// Extensions the inbox picks up
var Extensions = []string{".json", ".vtt", ".txt"}

// Accepts reports whether name looks like a transcript file
func Accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// LoadFile reads a transcript file. JSON files hold {id,title,entries}; other
// files are WebVTT or "Speaker: text" lines and take their id from the file name
func LoadFile(path string) (exdom.Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return exdom.Transcript{}, perr.Wrapf(err, perr.ErrorCodeNotFound, "inbox: read %s", path)
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var tr exdom.Transcript
		if err := json.Unmarshal(b, &tr); err != nil {
			return exdom.Transcript{}, perr.Wrapf(err, perr.ErrorCodeJSON, "inbox: decode %s", filepath.Base(path))
		}
		if tr.ID == "" {
			tr.ID = stem
		}
		if err := bind.Validate(tr); err != nil {
			return exdom.Transcript{}, err
		}
		return tr, nil
	}

	entries, err := transcript.Parse(bytes.NewReader(b))
	if err != nil {
		return exdom.Transcript{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "inbox: parse %s", filepath.Base(path))
	}
	return exdom.Transcript{ID: stem, Title: strings.ReplaceAll(stem, "_", " "), Entries: entries}, nil
}
