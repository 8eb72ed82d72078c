package sink

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	crerr "github.com/cockroachdb/errors"
)

// Sink stores a named rendered artifact and returns where it ended up.
type Sink interface {
	Write(ctx context.Context, name string, r io.Reader) (string, error)
}

// DirSink writes artifacts into a single directory. The directory is created
// on the first write so a run that renders nothing leaves no trace.
type DirSink struct {
	dir string

	once    sync.Once
	initErr error
}

func NewDirSink(dir string) *DirSink {
	if strings.TrimSpace(dir) == "" {
		dir = "results"
	}
	return &DirSink{dir: dir}
}

func (s *DirSink) Dir() string {
	return s.dir
}

// Write copies r into dir/name through a temporary file and renames it into
// place, so readers never observe a partially written chart.
func (s *DirSink) Write(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) {
		return "", crerr.Newf("invalid artifact name %q", name)
	}

	s.once.Do(func() {
		s.initErr = os.MkdirAll(s.dir, 0o755)
	})
	if s.initErr != nil {
		return "", crerr.Wrapf(s.initErr, "create output dir %s", s.dir)
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", crerr.Wrapf(err, "create temp file for %s", name)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", crerr.Wrapf(err, "write %s", name)
	}
	if err := tmp.Close(); err != nil {
		return "", crerr.Wrapf(err, "close %s", name)
	}

	target := filepath.Join(s.dir, name)
	if err := os.Rename(tmp.Name(), target); err != nil {
		return "", crerr.Wrapf(err, "rename into %s", target)
	}
	return target, nil
}

// FileName joins parts with underscores and replaces anything that is not a
// letter, digit, dot or dash so player names are safe on every filesystem.
func FileName(parts ...string) string {
	var b strings.Builder
	for i, part := range parts {
		if i > 0 {
			b.WriteByte('_')
		}
		for _, r := range strings.TrimSpace(part) {
			switch {
			case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-':
				b.WriteRune(r)
			default:
				b.WriteByte('_')
			}
		}
	}
	return b.String()
}

var _ Sink = (*DirSink)(nil)
