package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupe(t *testing.T) {
	tests := []struct {
		name     string
		input    []int
		expected []int
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []int{}, expected: []int{}},
		{name: "no duplicates", input: []int{3, 1, 2}, expected: []int{3, 1, 2}},
		{name: "keeps first occurrence", input: []int{2, 1, 2, 3, 1}, expected: []int{2, 1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Dedupe(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: nil},
		{name: "only separators", input: " , ,", expected: nil},
		{name: "single", input: "localhost:9092", expected: []string{"localhost:9092"}},
		{name: "trims and dedupes", input: " a:9092, b:9092,,a:9092", expected: []string{"a:9092", "b:9092"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SplitList(tt.input))
		})
	}
}
