package fuzzy

import (
	"errors"
	"os"
	"testing"

	fzf "github.com/junegunn/fzf/src"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingRunner simulates fzf being unavailable (no usable terminal)
type failingRunner struct{}

func (failingRunner) Run(_ *fzf.Options) (int, error) {
	return 0, errors.New("no usable terminal")
}

func TestFzfFinder_SetOptions(t *testing.T) {
	finder := NewFzf("Pick:")

	require.Error(t, finder.SetOptions(nil))

	options := []Option{{Value: "alpha", Description: "first"}}
	require.NoError(t, finder.SetOptions(options))

	options[0].Value = "mutated"
	assert.Equal(t, "alpha", finder.options[0].Value)
}

func TestFzfFinder_SelectNoOptions(t *testing.T) {
	finder := NewFzf("Pick:")

	_, err := finder.Select()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no options available")

	_, err = finder.MultiSelect()
	require.Error(t, err)
}

func TestFzfFinder_FallbackReadsUserInputNotOptions(t *testing.T) {
	// The user's answer arrives on the real stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, err = w.WriteString("2\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	originalStdin := os.Stdin
	os.Stdin = r
	defer func() {
		os.Stdin = originalStdin
		_ = r.Close()
	}()

	finder := NewFzfWithRunner("Pick:", failingRunner{})
	require.NoError(t, finder.SetOptions([]Option{
		{Value: "alpha"},
		{Value: "beta"},
	}))

	// fzf fails, the numbered fallback takes over and must see "2", not the
	// option lines fed to fzf
	values, err := finder.MultiSelect()

	require.NoError(t, err)
	assert.Equal(t, []string{"beta"}, values)
}

func TestFzfFinder_ParseOutput(t *testing.T) {
	finder := NewFzf("Pick:")
	require.NoError(t, finder.SetOptions([]Option{
		{Value: "alpha", Description: "first"},
		{Value: "beta"},
	}))

	tests := []struct {
		name     string
		output   string
		expected []string
	}{
		{
			name:     "value with description column",
			output:   "alpha  │  first\n",
			expected: []string{"alpha"},
		},
		{
			name:     "bare value",
			output:   "beta\n",
			expected: []string{"beta"},
		},
		{
			name:     "multiple lines",
			output:   "alpha  │  first\nbeta\n",
			expected: []string{"alpha", "beta"},
		},
		{
			name:     "blank lines skipped",
			output:   "\nalpha  │  first\n\n",
			expected: []string{"alpha"},
		},
		{
			name:     "empty output",
			output:   "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, finder.parseOutput(tt.output))
		})
	}
}
