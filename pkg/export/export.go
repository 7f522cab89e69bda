// Package export renders a Ledger for use outside the tracker: files in a few
// formats, charts, and an Elasticsearch index.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/voidshard/budget/pkg/domain"
)

// Format is an export file format.
type Format string

const (
	CSV  Format = "csv"
	PDF  Format = "pdf"
	JSON Format = "json"
	Text Format = "txt"
)

var (
	ErrUnknownFormat   = errors.New("unknown export format")
	ErrNothingToChart  = errors.New("nothing to chart")
	ErrUnsupportedSink = errors.New("unsupported export sink")
)

// Formats lists every supported format.
var Formats = []Format{CSV, PDF, JSON, Text}

// ParseFormat accepts a format name or a file extension, eg. "PDF" or ".csv".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if f == "text" {
		f = Text
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w %q, expected one of %v", ErrUnknownFormat, s, Formats)
}

type options struct {
	totals bool
	now    time.Time
}

type Option func(*options)

// WithTotals appends income, expense and per category totals after the
// transactions.
func WithTotals() Option {
	return func(o *options) {
		o.totals = true
	}
}

// WithTime sets the generation time shown in reports.
func WithTime(t time.Time) Option {
	return func(o *options) {
		o.now = t
	}
}

func newOptions(opts []Option) *options {
	o := &options{now: time.Now()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Render writes the ledger to w in the given format.
func Render(w io.Writer, l *domain.Ledger, f Format, opts ...Option) error {
	o := newOptions(opts)
	switch f {
	case CSV:
		return renderCSV(w, l, o)
	case PDF:
		return renderPDF(w, l, o)
	case JSON:
		return renderJSON(w, l, o)
	case Text:
		return renderText(w, l, o)
	}
	return fmt.Errorf("%w %q", ErrUnknownFormat, f)
}

// Bytes renders the ledger into memory.
func Bytes(l *domain.Ledger, f Format, opts ...Option) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := Render(buf, l, f, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DefaultFilename is budget_export_YYYYMMDD_HHMMSS.<ext>.
func DefaultFilename(f Format, now time.Time) string {
	return fmt.Sprintf("budget_export_%s.%s", now.Format("20060102_150405"), f)
}

func splits(tx domain.Transaction) string {
	return strings.Join(tx.SplitWith, ", ")
}
