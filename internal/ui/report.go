package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"

	"repoconform/pkg/github"
)

// Reporter renders scan and apply results. On a terminal it prints a colored
// human-readable report; when output is piped it emits JSON so the results
// can feed scripts.
type Reporter struct {
	writer io.Writer
	json   bool
	color  bool
}

// NewReporter creates a reporter that picks its format from the writer:
// colored human output on a TTY, JSON otherwise.
func NewReporter(writer io.Writer) *Reporter {
	r := &Reporter{writer: writer}
	if file, ok := writer.(*os.File); ok {
		if info, err := file.Stat(); err == nil && (info.Mode()&os.ModeCharDevice) != 0 {
			r.color = true
			return r
		}
		r.json = true
	}
	return r
}

// NewHumanReporter creates a plain human-format reporter.
func NewHumanReporter(writer io.Writer) *Reporter {
	return &Reporter{writer: writer}
}

// NewJSONReporter creates a JSON reporter.
func NewJSONReporter(writer io.Writer) *Reporter {
	return &Reporter{writer: writer, json: true}
}

// IsJSON reports whether the reporter emits JSON.
func (r *Reporter) IsJSON() bool {
	return r.json
}

// settingDeviation is one differing setting: the repository's current value
// against the enforced one.
type settingDeviation struct {
	Setting github.Setting `json:"setting"`
	Current bool           `json:"current"`
	Want    bool           `json:"want"`
}

type repoDeviations struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Settings []settingDeviation `json:"settings"`
}

type scanReport struct {
	TotalRepositories int              `json:"total_repositories"`
	EnforcedSettings  []github.Setting `json:"enforced_settings"`
	NonConforming     []repoDeviations `json:"non_conforming"`
}

// ScanReport renders the outcome of a scan: which repositories deviate from
// the preference set, and on which settings.
func (r *Reporter) ScanReport(prefs github.Preferences, total int, violations []github.Violation) {
	if r.json {
		report := scanReport{
			TotalRepositories: total,
			EnforcedSettings:  prefs.Defined(),
			NonConforming:     make([]repoDeviations, 0, len(violations)),
		}
		for _, violation := range violations {
			report.NonConforming = append(report.NonConforming, repoDeviations{
				ID:       violation.ID,
				Name:     violation.Name,
				Settings: deviations(prefs, violation),
			})
		}
		r.printJSON(report)
		return
	}

	fmt.Fprintf(r.writer, "Scanned %d repositories against %d enforced setting(s).\n",
		total, len(prefs.Defined()))

	if len(violations) == 0 {
		fmt.Fprintf(r.writer, "%s All repositories conform to your preferences.\n", r.green("✓"))
		return
	}

	fmt.Fprintf(r.writer, "\nNon-conforming repositories (%d):\n", len(violations))
	for _, violation := range violations {
		fmt.Fprintf(r.writer, "%s %s\n", r.yellow("⚠"), violation.Name)
		for _, d := range deviations(prefs, violation) {
			fmt.Fprintf(r.writer, "    %s: %t (want %t)\n", d.Setting.Label(), d.Current, d.Want)
		}
	}
	fmt.Fprintln(r.writer, "\nRun 'repoconform apply' to bring these repositories in line.")
}

// deviations lists a violation's differing settings in stable display order
func deviations(prefs github.Preferences, violation github.Violation) []settingDeviation {
	var out []settingDeviation
	for _, setting := range github.Settings() {
		current, ok := violation.Current[setting]
		if !ok {
			continue
		}
		want := prefs.Get(setting)
		if want == nil {
			continue
		}
		out = append(out, settingDeviation{Setting: setting, Current: current, Want: *want})
	}
	return out
}

type applyReport struct {
	Succeeded []string            `json:"succeeded"`
	Failed    map[string]string   `json:"failed"`
	Summary   github.BatchSummary `json:"summary"`
}

// ApplyReport renders the per-repository outcome of a batch update, with a
// ready-made retry command for the failed subset.
func (r *Reporter) ApplyReport(result *github.BatchResult) {
	if result == nil {
		return
	}

	if r.json {
		report := applyReport{
			Succeeded: result.Succeeded,
			Failed:    make(map[string]string, len(result.Failed)),
			Summary:   result.Summary,
		}
		for name, err := range result.Failed {
			report.Failed[name] = err.Error()
		}
		r.printJSON(report)
		return
	}

	if len(result.Succeeded) > 0 {
		fmt.Fprintln(r.writer, "\nUpdated repositories:")
		for _, name := range result.Succeeded {
			fmt.Fprintf(r.writer, "%s %s\n", r.green("✓"), name)
		}
	}

	if len(result.Failed) > 0 {
		fmt.Fprintln(r.writer, "\nFailed repositories:")

		failed := make([]string, 0, len(result.Failed))
		for name := range result.Failed {
			failed = append(failed, name)
		}
		sort.Strings(failed)

		for _, name := range failed {
			fmt.Fprintf(r.writer, "%s %s: %v\n", r.red("✗"), name, result.Failed[name])
		}
		fmt.Fprintf(r.writer, "\nRetry the failed subset with: repoconform apply --repos %s\n",
			strings.Join(failed, ","))
	}

	fmt.Fprintf(r.writer, "\n📊 Summary: %d total, %d updated, %d failed\n",
		result.Summary.Total, result.Summary.SuccessCount, result.Summary.FailureCount)
}

func (r *Reporter) printJSON(data interface{}) {
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(data)
}

func (r *Reporter) green(s string) string {
	if r.color {
		return color.GreenString(s)
	}
	return s
}

func (r *Reporter) red(s string) string {
	if r.color {
		return color.RedString(s)
	}
	return s
}

func (r *Reporter) yellow(s string) string {
	if r.color {
		return color.YellowString(s)
	}
	return s
}
