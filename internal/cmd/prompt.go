package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"repoconform/pkg/github"
)

// PromptPreferences walks through every repository setting and asks whether
// it should be enforced on, enforced off, or left alone. Settings answered
// with skip stay undefined and are never touched by a later apply.
func PromptPreferences(in io.Reader, out io.Writer) (github.Preferences, error) {
	var prefs github.Preferences
	reader := bufio.NewReader(in)

	fmt.Fprintln(out, "Choose the desired value for each repository setting.")
	fmt.Fprintln(out, "Answer y to enforce enabled, n to enforce disabled, s to skip.")
	fmt.Fprintln(out)

	for _, setting := range github.Settings() {
		for {
			fmt.Fprintf(out, "%s (y/n/s): ", setting.Label())

			line, err := reader.ReadString('\n')
			if err != nil && line == "" {
				if err == io.EOF {
					// Treat end of input as skipping the remaining settings
					return prefs, nil
				}
				return prefs, fmt.Errorf("failed to read input: %w", err)
			}

			answer := strings.ToLower(strings.TrimSpace(line))
			if done := applyAnswer(&prefs, setting, answer); done {
				break
			}

			fmt.Fprintf(out, "Please answer y, n, or s.\n")
		}
	}

	return prefs, nil
}

// applyAnswer records one answer, reporting whether it was understood
func applyAnswer(prefs *github.Preferences, setting github.Setting, answer string) bool {
	switch answer {
	case "y", "yes":
		prefs.Set(setting, true)
	case "n", "no":
		prefs.Set(setting, false)
	case "s", "skip", "":
		// Leave undefined
	default:
		return false
	}
	return true
}
