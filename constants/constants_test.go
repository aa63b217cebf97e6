package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in   string
		want ValidationStatus
		ok   bool
	}{
		{"PASSED", StatusPassed, true},
		{" partial ", StatusPartial, true},
		{"Failed", StatusFailed, true},
		{"maybe", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseStatus(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestDocumentTypes(t *testing.T) {
	assert.Equal(t, []string{"invoice", "purchase_order", "contract", "statement", "report", "unknown"}, DocumentTypes())
}
