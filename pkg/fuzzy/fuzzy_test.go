package fuzzy

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFinder(input string, options ...Option) (*Finder, *bytes.Buffer) {
	out := &bytes.Buffer{}
	finder := NewWithIO("Pick one:", strings.NewReader(input), out)
	for _, option := range options {
		finder.AddOption(option.Value, option.Description)
	}
	return finder, out
}

func TestFinder_Select(t *testing.T) {
	finder, out := newTestFinder("2\n",
		Option{Value: "alpha", Description: "first"},
		Option{Value: "beta", Description: "second"},
	)

	value, err := finder.Select()

	require.NoError(t, err)
	assert.Equal(t, "beta", value)
	assert.Contains(t, out.String(), "1. alpha - first")
	assert.Contains(t, out.String(), "2. beta - second")
}

func TestFinder_SelectInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not a number", input: "abc\n"},
		{name: "zero", input: "0\n"},
		{name: "out of range", input: "3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, _ := newTestFinder(tt.input,
				Option{Value: "alpha"},
				Option{Value: "beta"},
			)

			_, err := finder.Select()
			require.Error(t, err)
		})
	}
}

func TestFinder_SelectNoOptions(t *testing.T) {
	finder, _ := newTestFinder("1\n")

	_, err := finder.Select()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no options available")
}

func TestFinder_MultiSelect(t *testing.T) {
	options := []Option{
		{Value: "alpha"},
		{Value: "beta"},
		{Value: "gamma"},
	}

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "comma separated", input: "1,3\n", expected: []string{"alpha", "gamma"}},
		{name: "space separated", input: "2 3\n", expected: []string{"beta", "gamma"}},
		{name: "mixed separators", input: "1, 2\n", expected: []string{"alpha", "beta"}},
		{name: "all shorthand", input: "a\n", expected: []string{"alpha", "beta", "gamma"}},
		{name: "all word", input: "ALL\n", expected: []string{"alpha", "beta", "gamma"}},
		{name: "empty selects none", input: "\n", expected: []string{}},
		{name: "duplicates collapse", input: "2,2,2\n", expected: []string{"beta"}},
		{name: "order follows option list", input: "3,1\n", expected: []string{"alpha", "gamma"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, _ := newTestFinder(tt.input, options...)

			values, err := finder.MultiSelect()

			require.NoError(t, err)
			assert.Equal(t, tt.expected, values)
		})
	}
}

func TestFinder_MultiSelectInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "not a number", input: "one,two\n"},
		{name: "out of range", input: "1,9\n"},
		{name: "zero", input: "0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finder, _ := newTestFinder(tt.input,
				Option{Value: "alpha"},
				Option{Value: "beta"},
			)

			_, err := finder.MultiSelect()
			require.Error(t, err)
		})
	}
}

func TestFinder_SetOptions(t *testing.T) {
	finder, _ := newTestFinder("")

	require.Error(t, finder.SetOptions(nil))

	options := []Option{{Value: "alpha"}, {Value: "beta"}}
	require.NoError(t, finder.SetOptions(options))
	assert.Equal(t, options, finder.GetOptions())

	// The finder holds a copy, not the caller's slice
	options[0].Value = "mutated"
	assert.Equal(t, "alpha", finder.GetOptions()[0].Value)
}
