package fuzzy

import (
	"fmt"
	"io"
	"os"
	"strings"

	fzf "github.com/junegunn/fzf/src"
)

// FzfRunner defines the interface for running fzf
type FzfRunner interface {
	Run(opts *fzf.Options) (int, error)
}

// DefaultFzfRunner implements the FzfRunner interface using the real fzf library
type DefaultFzfRunner struct{}

// Run executes fzf with the given options
func (r *DefaultFzfRunner) Run(opts *fzf.Options) (int, error) {
	return fzf.Run(opts)
}

// FzfFinder implements fuzzy finding using the fzf library
type FzfFinder struct {
	options []Option
	prompt  string
	runner  FzfRunner
}

// NewFzf creates a new fzf-style fuzzy finder
func NewFzf(prompt string) *FzfFinder {
	return &FzfFinder{
		prompt:  prompt,
		options: make([]Option, 0),
		runner:  &DefaultFzfRunner{},
	}
}

// NewFzfWithRunner creates a new fzf-style fuzzy finder with a custom runner (for testing)
func NewFzfWithRunner(prompt string, runner FzfRunner) *FzfFinder {
	return &FzfFinder{
		prompt:  prompt,
		options: make([]Option, 0),
		runner:  runner,
	}
}

// SetOptions sets the available options for selection
func (f *FzfFinder) SetOptions(options []Option) error {
	if options == nil {
		return fmt.Errorf("options cannot be nil")
	}

	f.options = make([]Option, len(options))
	copy(f.options, options)
	return nil
}

// SetPrompt sets the display prompt
func (f *FzfFinder) SetPrompt(prompt string) {
	f.prompt = prompt
}

// Select starts the fuzzy selection process using the fzf library
func (f *FzfFinder) Select() (string, error) {
	lines, err := f.run(false)
	if err != nil {
		return "", err
	}
	if len(lines) == 0 {
		return "", fmt.Errorf("no selection made")
	}
	return lines[0], nil
}

// MultiSelect runs fzf with multi-selection enabled (Tab toggles entries)
func (f *FzfFinder) MultiSelect() ([]string, error) {
	return f.run(true)
}

// run executes fzf over the option list and returns the chosen values
func (f *FzfFinder) run(multi bool) ([]string, error) {
	if len(f.options) == 0 {
		return nil, fmt.Errorf("no options available")
	}

	// Create a temporary file with the options
	tmpFile, err := os.CreateTemp("", "fzf-options-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmpFile.Name()) // Ignore cleanup errors
	}()
	defer func() {
		_ = tmpFile.Close() // Ignore close errors
	}()

	for _, option := range f.options {
		displayText := option.Value
		if option.Description != "" {
			displayText = fmt.Sprintf("%s  │  %s", option.Value, option.Description)
		}
		if _, err := fmt.Fprintln(tmpFile, displayText); err != nil {
			return nil, fmt.Errorf("failed to write option to file: %w", err)
		}
	}

	// Close the file so fzf can read it
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temporary file: %w", err)
	}

	args := []string{
		"--prompt=" + f.prompt + " ",
		"--height=10",
		"--layout=default",
		"--cycle",
		"--hscroll",
		"--hscroll-off=10",
		"--tabstop=8",
		"--clear",
		"--extended",
		"--algo=v2",
		"--tiebreak=length",
		"--sort=1000",
		"--no-mouse",
		"--no-reverse",
		"--border=none",
	}
	if multi {
		args = append(args, "--multi")
	} else {
		args = append(args, "--no-multi")
	}

	opts, err := fzf.ParseOptions(true, args)
	if err != nil {
		return nil, fmt.Errorf("failed to parse fzf options: %w", err)
	}

	// Redirect stdin to read from our temporary file
	originalStdin := os.Stdin
	defer func() { os.Stdin = originalStdin }()

	tmpFileForReading, err := os.Open(tmpFile.Name())
	if err != nil {
		return nil, fmt.Errorf("failed to open temporary file for reading: %w", err)
	}
	defer func() {
		_ = tmpFileForReading.Close() // Ignore close errors
	}()

	os.Stdin = tmpFileForReading

	// Capture stdout to get the selected result
	originalStdout := os.Stdout
	defer func() { os.Stdout = originalStdout }()

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create pipe: %w", err)
	}
	defer func() {
		_ = r.Close() // Ignore close errors
	}()
	defer func() {
		_ = w.Close() // Ignore close errors
	}()

	os.Stdout = w

	exitCode, err := f.runner.Run(opts)

	// Restore stdout before reading result
	_ = w.Close() // Ignore close errors
	os.Stdout = originalStdout

	if err != nil {
		// Put the real stdin back before falling back, otherwise the numbered
		// finder would read the options file instead of user input
		os.Stdin = originalStdin
		return f.fallback(multi)
	}

	if exitCode != fzf.ExitOk {
		return nil, fmt.Errorf("fzf selection cancelled or failed")
	}

	result, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read fzf result: %w", err)
	}

	return f.parseOutput(string(result)), nil
}

// parseOutput maps fzf's printed lines back to the original option values
func (f *FzfFinder) parseOutput(output string) []string {
	var values []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// The display format is "value  │  description"
		parts := strings.Split(line, "  │  ")
		value := strings.TrimSpace(parts[0])

		for _, option := range f.options {
			if option.Value == value {
				value = option.Value
				break
			}
		}
		values = append(values, value)
	}
	return values
}

// fallback provides a simple numbered selection for when fzf fails
func (f *FzfFinder) fallback(multi bool) ([]string, error) {
	finder := New(f.prompt)
	for _, option := range f.options {
		finder.AddOption(option.Value, option.Description)
	}

	if multi {
		return finder.MultiSelect()
	}

	value, err := finder.Select()
	if err != nil {
		return nil, err
	}
	return []string{value}, nil
}

// MultiSelector is the selection surface the commands depend on
type MultiSelector interface {
	SetOptions(options []Option) error
	SetPrompt(prompt string)
	MultiSelect() ([]string, error)
}

var _ MultiSelector = (*FzfFinder)(nil)
var _ MultiSelector = (*Finder)(nil)
