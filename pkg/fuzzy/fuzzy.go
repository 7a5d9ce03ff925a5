package fuzzy

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Option represents a selectable option in the fuzzy finder
type Option struct {
	Value       string
	Description string
}

// Finder represents a fuzzy finder instance
type Finder struct {
	prompt  string
	options []Option
	in      io.Reader
	out     io.Writer
}

// New creates a new fuzzy finder with the given prompt
func New(prompt string) *Finder {
	return NewWithIO(prompt, os.Stdin, os.Stdout)
}

// NewWithIO creates a fuzzy finder reading and writing on the given streams
func NewWithIO(prompt string, in io.Reader, out io.Writer) *Finder {
	return &Finder{
		prompt:  prompt,
		options: make([]Option, 0),
		in:      in,
		out:     out,
	}
}

// AddOption adds an option to the fuzzy finder
func (f *Finder) AddOption(value, description string) {
	f.options = append(f.options, Option{
		Value:       value,
		Description: description,
	})
}

// SetOptions replaces the option list
func (f *Finder) SetOptions(options []Option) error {
	if options == nil {
		return fmt.Errorf("options cannot be nil")
	}

	f.options = make([]Option, len(options))
	copy(f.options, options)
	return nil
}

// GetOptions returns all available options
func (f *Finder) GetOptions() []Option {
	return f.options
}

// SetPrompt updates the prompt message
func (f *Finder) SetPrompt(prompt string) {
	f.prompt = prompt
}

// display prints the prompt and the numbered option list
func (f *Finder) display() {
	fmt.Fprintln(f.out, f.prompt)
	fmt.Fprintln(f.out, strings.Repeat("-", len(f.prompt)))

	for i, option := range f.options {
		fmt.Fprintf(f.out, "%d. %s", i+1, option.Value)
		if option.Description != "" {
			fmt.Fprintf(f.out, " - %s", option.Description)
		}
		fmt.Fprintln(f.out)
	}
}

// Select displays options and allows user to select one by number
func (f *Finder) Select() (string, error) {
	if len(f.options) == 0 {
		return "", fmt.Errorf("no options available")
	}

	f.display()
	fmt.Fprint(f.out, "\nSelect option (1-"+strconv.Itoa(len(f.options))+"): ")

	reader := bufio.NewReader(f.in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	input = strings.TrimSpace(input)
	selection, err := strconv.Atoi(input)
	if err != nil {
		return "", fmt.Errorf("invalid selection: %s", input)
	}

	if selection < 1 || selection > len(f.options) {
		return "", fmt.Errorf("selection out of range: %d", selection)
	}

	return f.options[selection-1].Value, nil
}

// MultiSelect displays options and allows user to select several by number.
// Numbers are separated by commas or spaces; "a" selects everything and an
// empty line selects nothing. The result preserves the option order and
// never contains a value outside the option list.
func (f *Finder) MultiSelect() ([]string, error) {
	if len(f.options) == 0 {
		return nil, fmt.Errorf("no options available")
	}

	f.display()
	fmt.Fprint(f.out, "\nSelect options (e.g. 1,3,5), 'a' for all, Enter for none: ")

	reader := bufio.NewReader(f.in)
	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return f.parseMultiSelection(strings.TrimSpace(input))
}

// parseMultiSelection turns the typed numbers into option values
func (f *Finder) parseMultiSelection(input string) ([]string, error) {
	if input == "" {
		return []string{}, nil
	}

	if strings.EqualFold(input, "a") || strings.EqualFold(input, "all") {
		values := make([]string, len(f.options))
		for i, option := range f.options {
			values[i] = option.Value
		}
		return values, nil
	}

	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	chosen := make(map[int]bool)
	for _, field := range fields {
		selection, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid selection: %s", field)
		}
		if selection < 1 || selection > len(f.options) {
			return nil, fmt.Errorf("selection out of range: %d", selection)
		}
		chosen[selection-1] = true
	}

	var values []string
	for i, option := range f.options {
		if chosen[i] {
			values = append(values, option.Value)
		}
	}

	return values, nil
}
