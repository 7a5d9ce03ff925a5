package github

// Setting identifies one of the nine boolean repository settings managed by
// repoconform. The set of settings is fixed and closed; there are no dynamic
// keys.
type Setting string

const (
	SettingAutoMerge    Setting = "auto_merge"
	SettingDeleteBranch Setting = "delete_branch_on_merge"
	SettingForking      Setting = "forking"
	SettingIssues       Setting = "issues"
	SettingProjects     Setting = "projects"
	SettingWiki         Setting = "wiki"
	SettingMergeCommit  Setting = "merge_commit"
	SettingRebaseMerge  Setting = "rebase_merge"
	SettingSquashMerge  Setting = "squash_merge"
)

// Settings returns every managed setting in a stable display order.
func Settings() []Setting {
	return []Setting{
		SettingAutoMerge,
		SettingDeleteBranch,
		SettingForking,
		SettingIssues,
		SettingProjects,
		SettingWiki,
		SettingMergeCommit,
		SettingRebaseMerge,
		SettingSquashMerge,
	}
}

// Label returns a human-readable name for the setting, used in reports and
// interactive prompts.
func (s Setting) Label() string {
	switch s {
	case SettingAutoMerge:
		return "allow auto-merge"
	case SettingDeleteBranch:
		return "delete branch on merge"
	case SettingForking:
		return "allow forking"
	case SettingIssues:
		return "issues enabled"
	case SettingProjects:
		return "projects enabled"
	case SettingWiki:
		return "wiki enabled"
	case SettingMergeCommit:
		return "allow merge commits"
	case SettingRebaseMerge:
		return "allow rebase merging"
	case SettingSquashMerge:
		return "allow squash merging"
	default:
		return string(s)
	}
}

// RepoSettings holds the actual value of every managed setting for one
// repository. A snapshot always carries all nine values; it is never partial.
type RepoSettings struct {
	AutoMerge    bool `json:"auto_merge" yaml:"auto_merge"`
	DeleteBranch bool `json:"delete_branch_on_merge" yaml:"delete_branch_on_merge"`
	Forking      bool `json:"forking" yaml:"forking"`
	Issues       bool `json:"issues" yaml:"issues"`
	Projects     bool `json:"projects" yaml:"projects"`
	Wiki         bool `json:"wiki" yaml:"wiki"`
	MergeCommit  bool `json:"merge_commit" yaml:"merge_commit"`
	RebaseMerge  bool `json:"rebase_merge" yaml:"rebase_merge"`
	SquashMerge  bool `json:"squash_merge" yaml:"squash_merge"`
}

// Get returns the current value of the given setting.
func (s RepoSettings) Get(setting Setting) bool {
	switch setting {
	case SettingAutoMerge:
		return s.AutoMerge
	case SettingDeleteBranch:
		return s.DeleteBranch
	case SettingForking:
		return s.Forking
	case SettingIssues:
		return s.Issues
	case SettingProjects:
		return s.Projects
	case SettingWiki:
		return s.Wiki
	case SettingMergeCommit:
		return s.MergeCommit
	case SettingRebaseMerge:
		return s.RebaseMerge
	case SettingSquashMerge:
		return s.SquashMerge
	default:
		return false
	}
}

// Repository is a point-in-time snapshot of one owned repository: its opaque
// node ID, its name (unique within the owner's namespace, used to address
// writes), and the current value of all nine settings.
type Repository struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Settings RepoSettings `json:"settings" yaml:"settings"`
}

// Preferences is the user's declared preference set. A nil field means the
// setting is never inspected or modified; nil is distinct from false.
type Preferences struct {
	AutoMerge    *bool `yaml:"auto_merge,omitempty"`
	DeleteBranch *bool `yaml:"delete_branch_on_merge,omitempty"`
	Forking      *bool `yaml:"forking,omitempty"`
	Issues       *bool `yaml:"issues,omitempty"`
	Projects     *bool `yaml:"projects,omitempty"`
	Wiki         *bool `yaml:"wiki,omitempty"`
	MergeCommit  *bool `yaml:"merge_commit,omitempty"`
	RebaseMerge  *bool `yaml:"rebase_merge,omitempty"`
	SquashMerge  *bool `yaml:"squash_merge,omitempty"`
}

// Get returns the enforced value for the given setting, or nil when the
// setting is not enforced.
func (p Preferences) Get(setting Setting) *bool {
	switch setting {
	case SettingAutoMerge:
		return p.AutoMerge
	case SettingDeleteBranch:
		return p.DeleteBranch
	case SettingForking:
		return p.Forking
	case SettingIssues:
		return p.Issues
	case SettingProjects:
		return p.Projects
	case SettingWiki:
		return p.Wiki
	case SettingMergeCommit:
		return p.MergeCommit
	case SettingRebaseMerge:
		return p.RebaseMerge
	case SettingSquashMerge:
		return p.SquashMerge
	default:
		return nil
	}
}

// Set assigns the enforced value for the given setting.
func (p *Preferences) Set(setting Setting, value bool) {
	v := value
	switch setting {
	case SettingAutoMerge:
		p.AutoMerge = &v
	case SettingDeleteBranch:
		p.DeleteBranch = &v
	case SettingForking:
		p.Forking = &v
	case SettingIssues:
		p.Issues = &v
	case SettingProjects:
		p.Projects = &v
	case SettingWiki:
		p.Wiki = &v
	case SettingMergeCommit:
		p.MergeCommit = &v
	case SettingRebaseMerge:
		p.RebaseMerge = &v
	case SettingSquashMerge:
		p.SquashMerge = &v
	}
}

// Defined returns the settings with an enforced value, in stable order.
func (p Preferences) Defined() []Setting {
	var defined []Setting
	for _, setting := range Settings() {
		if p.Get(setting) != nil {
			defined = append(defined, setting)
		}
	}
	return defined
}

// IsEmpty reports whether no setting is enforced.
func (p Preferences) IsEmpty() bool {
	return len(p.Defined()) == 0
}

// Violation describes one non-conforming repository. Current holds only the
// settings whose actual value differs from an enforced preference, mapped to
// the repository's current (non-conforming) value. A Violation is never
// constructed with an empty Current map.
type Violation struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Current map[Setting]bool `json:"current"`
}
