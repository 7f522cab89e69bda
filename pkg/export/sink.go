package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/voidshard/budget/pkg/domain"
)

// Sink is somewhere a ledger can be exported to.
type Sink interface {
	Write(ctx context.Context, l *domain.Ledger) error

	// where the export went, for telling the user
	String() string
}

// OpenSink returns the Sink described by uri:
//
//	file:/path/to/export.pdf      format taken from the extension
//	es8:http://localhost:9200     Elasticsearch, comma separate several nodes
//
// A uri without a scheme is taken as a file path.
func OpenSink(uri string, logger *slog.Logger, opts ...Option) (Sink, error) {
	scheme, rest := "file", uri
	if bits := strings.SplitN(uri, ":", 2); len(bits) == 2 && (bits[0] == "file" || bits[0] == "es8") {
		scheme, rest = bits[0], bits[1]
	}

	switch scheme {
	case "file":
		if rest == "" {
			return nil, fmt.Errorf("%w: file sink needs a path", ErrUnsupportedSink)
		}
		f, err := ParseFormat(filepath.Ext(rest))
		if err != nil {
			return nil, err
		}
		return NewFile(rest, f, opts...), nil
	case "es8":
		var urls []string
		for _, u := range strings.Split(rest, ",") {
			if u = strings.TrimSpace(u); u != "" {
				urls = append(urls, u)
			}
		}
		return NewElasticsearchV8(logger, urls...), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedSink, uri)
}

// File renders the ledger into a file, replacing it atomically.
type File struct {
	path   string
	format Format
	opts   []Option
}

func NewFile(path string, f Format, opts ...Option) *File {
	return &File{path: path, format: f, opts: opts}
}

func (f *File) Write(_ context.Context, l *domain.Ledger) error {
	data, err := Bytes(l, f.format, f.opts...)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return renameio.WriteFile(f.path, data, 0644)
}

func (f *File) String() string {
	return f.path
}
