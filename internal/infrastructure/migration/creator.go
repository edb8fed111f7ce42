package migration

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const upTemplate = `-- {{.Name}}
-- Created: {{.Created}}
{{if .Description}}-- {{.Description}}
{{end}}
`

const downTemplate = `-- Rollback {{.Name}}
-- Created: {{.Created}}

`

// versionWidth matches the zero padded prefix of the shipped files
const versionWidth = 6

// Entry is one up/down pair on disk
type Entry struct {
	Version     uint
	Name        string
	Description string
	Created     string
	HasDown     bool
	UpPath      string
	DownPath    string
}

// BaseName is the file prefix shared by both halves, e.g. 000007_add_notes
func (e Entry) BaseName() string {
	return fmt.Sprintf("%0*d_%s", versionWidth, e.Version, e.Name)
}

// Create writes an empty up/down pair numbered one past the highest existing version
func Create(dir, name, description string) (*Entry, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}
	existing, err := List(os.DirFS(dir))
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if n := len(existing); n > 0 {
		next = existing[n-1].Version + 1
	}

	e := &Entry{
		Version:     next,
		Name:        slug,
		Description: description,
		Created:     time.Now().UTC().Format(time.RFC3339),
		HasDown:     true,
	}
	e.UpPath = filepath.Join(dir, e.BaseName()+".up.sql")
	e.DownPath = filepath.Join(dir, e.BaseName()+".down.sql")

	if err := writeTemplate(e.UpPath, upTemplate, e); err != nil {
		return nil, err
	}
	if err := writeTemplate(e.DownPath, downTemplate, e); err != nil {
		_ = os.Remove(e.UpPath)
		return nil, err
	}
	return e, nil
}

func writeTemplate(path, text string, e *Entry) error {
	tmpl, err := template.New(filepath.Base(path)).Parse(text)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, e); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitizeName lowercases and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// List returns the migrations found in fsys ordered by version.
// Files that do not follow <version>_<name>.(up|down).sql are skipped.
func List(fsys fs.FS) ([]Entry, error) {
	files, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	byVersion := map[uint]*Entry{}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		base, up := strings.CutSuffix(f.Name(), ".up.sql")
		if !up {
			var down bool
			if base, down = strings.CutSuffix(f.Name(), ".down.sql"); !down {
				continue
			}
		}
		prefix, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		e, ok := byVersion[uint(version)]
		if !ok {
			e = &Entry{Version: uint(version), Name: name}
			byVersion[uint(version)] = e
		}
		if up {
			e.UpPath = f.Name()
		} else {
			e.HasDown = true
			e.DownPath = f.Name()
		}
	}

	out := make([]Entry, 0, len(byVersion))
	for _, e := range byVersion {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Embedded lists the migrations compiled into the binary
func Embedded() ([]Entry, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return List(sub)
}
