package textprovider

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/docextract/constants"
	"github.com/joseph-ayodele/docextract/internal/common"
)

// TextProvider is everything the pipeline needs from a source document.
type TextProvider interface {
	// Extract returns the document text; it may be empty.
	Extract(ctx context.Context) (string, error)
	// Snapshot returns a prefix of the text, with "..." appended when clipped.
	Snapshot(maxLength int) string
	IsTextBased() bool
	PageCount() int
}

type Config struct {
	Pdftotext                string // binary name or absolute path; empty skips the strategy
	MinTextLength            int    // default 10
	TextBasedMinCharsPerPage int    // default 50
	DetectionPages           int    // default 3
}

// FromConfig maps the application config onto provider settings.
func FromConfig(text common.TextConfig, minTextLength int) Config {
	return Config{
		Pdftotext:                text.Pdftotext,
		MinTextLength:            minTextLength,
		TextBasedMinCharsPerPage: text.TextBasedMinCharsPerPage,
		DetectionPages:           text.DetectionPages,
	}
}

func (c Config) withDefaults() Config {
	if c.MinTextLength <= 0 {
		c.MinTextLength = 10
	}
	if c.TextBasedMinCharsPerPage <= 0 {
		c.TextBasedMinCharsPerPage = 50
	}
	if c.DetectionPages <= 0 {
		c.DetectionPages = 3
	}
	return c
}

// File is a TextProvider over a file on disk. Extraction runs once; later
// calls return the cached outcome.
type File struct {
	path       string
	cfg        Config
	strategies []Strategy
	logger     *slog.Logger

	once      sync.Once
	text      string
	pages     int
	textBased bool
	method    string
	err       error
}

// Option customizes a File provider.
type Option func(*File)

// WithRunner replaces the exec runner used by the pdftotext strategy.
func WithRunner(r Runner) Option {
	return func(f *File) {
		for i, s := range f.strategies {
			if p, ok := s.(pdftotext); ok {
				p.runner = r
				f.strategies[i] = p
			}
		}
	}
}

// WithStrategies replaces the extension-based strategy list.
func WithStrategies(s ...Strategy) Option {
	return func(f *File) { f.strategies = s }
}

// NewFile picks strategies by extension: text files are read as-is, PDFs go
// through pdftotext (when configured) and then pdfcpu.
func NewFile(path string, cfg Config, logger *slog.Logger, opts ...Option) *File {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	f := &File{path: path, cfg: cfg, logger: logger}

	switch constants.MapExtToFormat(filepath.Ext(path)) {
	case constants.TEXT:
		f.strategies = []Strategy{plainText{}}
	case constants.PDF:
		if cfg.Pdftotext != "" {
			f.strategies = append(f.strategies, pdftotext{bin: cfg.Pdftotext, runner: execRunner{logger: logger}})
		}
		f.strategies = append(f.strategies, pdfcpuText{})
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func (f *File) Extract(ctx context.Context) (string, error) {
	f.once.Do(func() { f.extract(ctx) })
	return f.text, f.err
}

func (f *File) extract(ctx context.Context) {
	start := time.Now()
	if len(f.strategies) == 0 {
		f.err = common.NewAppError(common.CodeTextExtraction, "no text strategy for "+filepath.Ext(f.path), common.ErrUnsupportedFormat)
		return
	}

	var errs []error
	var best Result
	found := false
	for _, s := range f.strategies {
		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		res, err := s.Extract(ctx, f.path)
		if err != nil {
			f.logger.Debug("text strategy failed", "path", f.path, "method", s.Name(), "error", err)
			errs = append(errs, err)
			continue
		}
		res.Method = s.Name()
		if !found || VisibleLen(res.Text) > VisibleLen(best.Text) {
			best, found = res, true
		}
		if VisibleLen(res.Text) >= f.cfg.MinTextLength {
			break
		}
		f.logger.Debug("text strategy yielded too little text", "path", f.path, "method", s.Name(), "chars", VisibleLen(res.Text))
	}

	if !found {
		f.err = common.NewAppError(common.CodeTextExtraction, "all text strategies failed", errors.Join(append([]error{common.ErrTextExtraction}, errs...)...))
		return
	}

	f.pages = best.Pages
	f.method = best.Method
	f.textBased = f.detectTextBased(best)
	f.text = Normalize(best.Text)
	f.logger.Debug("text extracted",
		"path", f.path,
		"method", f.method,
		"pages", f.pages,
		"chars", len(f.text),
		"text_based", f.textBased,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
}

// detectTextBased averages visible characters over the leading pages.
func (f *File) detectTextBased(res Result) bool {
	if res.Method == MethodPlainText {
		return true
	}
	pages := strings.Split(res.Text, "\f")
	if len(pages) > f.cfg.DetectionPages {
		pages = pages[:f.cfg.DetectionPages]
	}
	total := 0
	for _, p := range pages {
		total += VisibleLen(p)
	}
	return total/len(pages) >= f.cfg.TextBasedMinCharsPerPage
}

func (f *File) Snapshot(maxLength int) string { return Snapshot(f.text, maxLength) }
func (f *File) IsTextBased() bool             { return f.textBased }
func (f *File) PageCount() int                { return f.pages }

// Method names the strategy that produced the text, or "" before extraction.
func (f *File) Method() string { return f.method }
