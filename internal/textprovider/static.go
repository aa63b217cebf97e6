package textprovider

import (
	"context"
	"strings"
)

// Static serves text that is already in memory (pasted input, tests, re-runs).
type Static struct {
	text  string
	pages int
}

func NewStatic(text string) *Static {
	return &Static{text: Normalize(text), pages: 1 + strings.Count(text, "\f")}
}

func (s *Static) Extract(context.Context) (string, error) { return s.text, nil }
func (s *Static) Snapshot(maxLength int) string           { return Snapshot(s.text, maxLength) }
func (s *Static) IsTextBased() bool                       { return strings.TrimSpace(s.text) != "" }
func (s *Static) PageCount() int                          { return s.pages }
func (s *Static) Method() string                          { return MethodStatic }
