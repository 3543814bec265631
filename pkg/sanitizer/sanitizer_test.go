package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Tennis Court", "Tennis Court"},
		{"leading and trailing", "  Tennis Court  ", "Tennis Court"},
		{"internal runs", "Tennis    Court\t A", "Tennis Court A"},
		{"newlines fold", "Tennis\nCourt", "Tennis Court"},
		{"only whitespace", " \t\n ", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CollapseWhitespace(tt.in))
		})
	}
}

func TestNormalizeFeatures(t *testing.T) {
	t.Run("dedupes case-insensitively keeping first form", func(t *testing.T) {
		got := NormalizeFeatures([]string{"Floodlights", " floodlights ", "Showers"})
		assert.Equal(t, []string{"Floodlights", "Showers"}, got)
	})

	t.Run("drops empty entries", func(t *testing.T) {
		got := NormalizeFeatures([]string{"", "  ", "Lockers"})
		assert.Equal(t, []string{"Lockers"}, got)
	})

	t.Run("all empty collapses to nil", func(t *testing.T) {
		assert.Nil(t, NormalizeFeatures([]string{"", "  "}))
		assert.Nil(t, NormalizeFeatures(nil))
	})
}
