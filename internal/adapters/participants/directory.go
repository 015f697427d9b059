// Package participants loads the team directory: canonical names, spelling
// variants and tracker account ids
package participants

import (
	"bytes"
	"errors"
	"io"
	"os"
	"slices"
	"strings"

	"tasksync/internal/core/assignee"
	"tasksync/internal/core/normalize"
	perr "tasksync/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// Person is one directory entry
type Person struct {
	Name           string   `yaml:"name"`
	Aliases        []string `yaml:"aliases,omitempty"`
	Email          string   `yaml:"email,omitempty"`
	TrackerAccount string   `yaml:"tracker_account,omitempty"`
}

type file struct {
	Participants []Person `yaml:"participants"`
}

// Directory is an immutable participant directory. The zero value and a nil
// *Directory are empty
type Directory struct {
	people   []Person
	canon    *assignee.Canonicalizer
	accounts map[string]string
}

// Load reads a directory file. A missing path yields an empty directory
func Load(path string) (*Directory, error) {
	if strings.TrimSpace(path) == "" {
		return &Directory{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "participants: read %s", path)
	}
	return Parse(bytes.NewReader(b))
}

// Parse decodes a directory document. Unknown keys and duplicate names are errors
func Parse(r io.Reader) (*Directory, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f file
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "participants: decode")
	}

	d := &Directory{accounts: map[string]string{}}
	variants := make(map[string][]string, len(f.Participants))
	seen := map[string]bool{}
	for i, p := range f.Participants {
		p.Name = normalize.Collapse(p.Name)
		if p.Name == "" {
			return nil, perr.Newf(perr.ErrorCodeValidation, "participants[%d]: name is required", i)
		}
		k := normalize.Name(p.Name)
		if seen[k] {
			return nil, perr.Newf(perr.ErrorCodeValidation, "participants[%d]: duplicate name %q", i, p.Name)
		}
		seen[k] = true
		variants[p.Name] = append(slices.Clone(p.Aliases), emailLocal(p.Email))
		d.people = append(d.people, p)
	}
	d.canon = assignee.NewCanonicalizer(variants)
	for _, p := range d.people {
		if a := strings.TrimSpace(p.TrackerAccount); a != "" {
			d.accounts[d.canon.Key(p.Name)] = a
		}
	}
	return d, nil
}

// Names lists canonical names in file order
func (d *Directory) Names() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.people))
	for i, p := range d.people {
		out[i] = p.Name
	}
	return out
}

// Canonicalizer maps every known variant onto its canonical name
func (d *Directory) Canonicalizer() *assignee.Canonicalizer {
	if d == nil {
		return nil
	}
	return d.canon
}

// AccountID returns the tracker account for any spelling of a known name
func (d *Directory) AccountID(name string) (string, bool) {
	if d == nil || len(d.accounts) == 0 {
		return "", false
	}
	id, ok := d.accounts[d.canon.Key(name)]
	return id, ok
}

// Len is the number of people
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.people)
}

// emailLocal turns "doug.miller@x" into "doug miller"
func emailLocal(email string) string {
	local, _, ok := strings.Cut(strings.TrimSpace(email), "@")
	if !ok {
		return ""
	}
	return strings.NewReplacer(".", " ", "_", " ", "-", " ").Replace(local)
}
