package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{
			name:     "nil slice",
			input:    nil,
			expected: nil,
		},
		{
			name:     "only blanks",
			input:    []string{"", "  ", " , "},
			expected: nil,
		},
		{
			name:     "single element",
			input:    []string{"localhost:9092"},
			expected: []string{"localhost:9092"},
		},
		{
			name:     "splits on commas and trims",
			input:    []string{" a:9092 ,b:9092", "c:9092 "},
			expected: []string{"a:9092", "b:9092", "c:9092"},
		},
		{
			name:     "removes duplicates preserving order",
			input:    []string{"b,a", "b", "c,a"},
			expected: []string{"b", "a", "c"},
		},
		{
			name:     "preserves case",
			input:    []string{"Broker,broker"},
			expected: []string{"Broker", "broker"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
