package textprovider

import (
	"context"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Method names recorded on each document.
const (
	MethodPlainText = "plain-text"
	MethodPdftotext = "pdftotext"
	MethodPDFCPU    = "pdfcpu"
	MethodStatic    = "static"
)

// Result is the raw output of one strategy. Pages are separated by form feeds.
type Result struct {
	Text   string
	Pages  int
	Method string
}

// Strategy turns a file into text. Strategies are tried in order until one
// yields enough text.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, path string) (Result, error)
}

type plainText struct{}

func (plainText) Name() string { return MethodPlainText }

func (plainText) Extract(_ context.Context, path string) (Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Result{}, err
	}
	if !utf8.Valid(b) {
		b = []byte(strings.ToValidUTF8(string(b), ""))
	}
	text := string(b)
	return Result{Text: text, Pages: 1 + strings.Count(text, "\f"), Method: MethodPlainText}, nil
}

type pdftotext struct {
	bin    string
	runner Runner
}

func (p pdftotext) Name() string { return MethodPdftotext }

func (p pdftotext) Extract(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := p.runner.Run(ctx, p.bin, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w: %s", p.bin, err, clip(strings.TrimSpace(string(errb)), 512))
	}
	text := strings.TrimRight(string(out), "\f")
	// A form-feed \f is used as page separator by default
	return Result{Text: text, Pages: 1 + strings.Count(text, "\f"), Method: MethodPdftotext}, nil
}
