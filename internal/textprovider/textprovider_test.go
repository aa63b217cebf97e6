package textprovider

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docextract/internal/common"
)

type fakeRunner struct {
	out   string
	err   error
	calls int
}

func (f *fakeRunner) Run(_ context.Context, _ string, _ ...string) ([]byte, []byte, error) {
	f.calls++
	return []byte(f.out), nil, f.err
}

type fakeStrategy struct {
	name string
	text string
	err  error
}

func (f fakeStrategy) Name() string { return f.name }
func (f fakeStrategy) Extract(context.Context, string) (Result, error) {
	return Result{Text: f.text, Pages: 1}, f.err
}

func TestNormalize(t *testing.T) {
	in := "Invoice\t\tNumber:   INV-1  \r\n\r\n\r\n\r\nTotal: 10\fPage two"
	assert.Equal(t, "Invoice Number: INV-1\n\nTotal: 10\n\nPage two", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}

func TestSnapshot(t *testing.T) {
	assert.Equal(t, "short", Snapshot("short", 10))
	assert.Equal(t, "abc...", Snapshot("abcdef", 3))
	assert.Equal(t, "€€...", Snapshot("€€€€", 2))
	assert.Equal(t, "", Snapshot("abc", 0))
}

func TestTextFromContent(t *testing.T) {
	content := "BT\n/F1 12 Tf\n72 720 Td\n(Invoice Number: INV-2025-001) Tj\n0 -14 Td\n(Issue Date: 2025-01-15) Tj\nET\n" +
		"BT 72 600 Td [(TOT) 120 (AL:) -300 (\\$952.00)] TJ ET\n" +
		"BT <48656C6C6F> Tj ET"
	got := textFromContent([]byte(content))
	assert.Equal(t, "Invoice Number: INV-2025-001\nIssue Date: 2025-01-15\nTOTAL: $952.00\nHello", got)
}

func TestDecodePDFString(t *testing.T) {
	assert.Equal(t, "a(b)c\\", decodePDFString([]byte(`a\(b\)c\\`)))
	assert.Equal(t, "A B", decodePDFString([]byte(`A\040B`)))
}

func TestFilePlainText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.txt")
	require.NoError(t, os.WriteFile(path, []byte("Invoice Number: INV-42\r\nTotal: 10.00\r\n"), 0o644))

	p := NewFile(path, Config{}, nil)
	text, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Invoice Number: INV-42\nTotal: 10.00", text)
	assert.Equal(t, 1, p.PageCount())
	assert.True(t, p.IsTextBased())
	assert.Equal(t, MethodPlainText, p.Method())
	assert.Equal(t, "Invoice...", p.Snapshot(7))
}

func TestFilePdftotextPreferred(t *testing.T) {
	page := strings.Repeat("Invoice line with plenty of characters. ", 3)
	runner := &fakeRunner{out: page + "\f" + page + "\f"}

	p := NewFile("scan.pdf", Config{Pdftotext: "pdftotext"}, nil, WithRunner(runner))
	text, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, "Invoice line")
	assert.Equal(t, 2, p.PageCount())
	assert.True(t, p.IsTextBased())
	assert.Equal(t, MethodPdftotext, p.Method())

	// cached
	_, _ = p.Extract(context.Background())
	assert.Equal(t, 1, runner.calls)
}

func TestFileStrategyFallback(t *testing.T) {
	p := NewFile("doc.pdf", Config{}, nil, WithStrategies(
		fakeStrategy{name: "broken", err: errors.New("boom")},
		fakeStrategy{name: "short", text: "abc"},
		fakeStrategy{name: "good", text: "Invoice Number: INV-9 Total: 5"},
	))
	text, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Invoice Number: INV-9 Total: 5", text)
	assert.Equal(t, "good", p.Method())
	assert.False(t, p.IsTextBased(), "one short page is below the per-page threshold")
}

func TestFileShortTextIsReturned(t *testing.T) {
	p := NewFile("doc.pdf", Config{}, nil, WithStrategies(fakeStrategy{name: "short", text: "abc"}))
	text, err := p.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "abc", text)
}

func TestFileAllStrategiesFail(t *testing.T) {
	p := NewFile("doc.pdf", Config{}, nil, WithStrategies(fakeStrategy{name: "broken", err: errors.New("boom")}))
	_, err := p.Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTextExtraction)
	assert.Equal(t, common.CodeTextExtraction, common.CodeOf(err))
}

func TestFileUnsupportedExtension(t *testing.T) {
	p := NewFile("photo.jpg", Config{}, nil)
	_, err := p.Extract(context.Background())
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestStatic(t *testing.T) {
	s := NewStatic("Invoice\f\fTotal")
	text, err := s.Extract(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Invoice\n\nTotal", text)
	assert.Equal(t, 3, s.PageCount())
}
