package flags

import "github.com/spf13/cobra"

const (
	// RootFlagName overrides the configured workspace root for a single invocation.
	RootFlagName = "root"
	// RootFlagUsage describes the root override flag.
	RootFlagUsage = "Workspace root directory (defaults to the configured root)"
	// DryRunFlagName exposes the shared dry-run flag name.
	DryRunFlagName = "dry-run"
	// DryRunFlagUsage describes the shared dry-run flag purpose.
	DryRunFlagUsage = "Print the commands instead of running them"
	// VersionControlFlagName selects the version control system for new repositories.
	VersionControlFlagName = "vcs"
	// VersionControlFlagUsage describes the version control selection flag.
	VersionControlFlagUsage = "Version control system to use"
	// SecureShellFlagName requests SSH remote URLs.
	SecureShellFlagName = "ssh"
	// SecureShellFlagUsage describes the SSH selection flag.
	SecureShellFlagUsage = "Use an SSH remote URL (git@host:path) instead of HTTPS"
)

// WorkspaceFlagValues stores the values of the flags shared by repository creation commands.
type WorkspaceFlagValues struct {
	Root           string
	VersionControl string
	SecureShell    bool
}

// BindWorkspaceFlags attaches the root, vcs and ssh flags to the command.
func BindWorkspaceFlags(command *cobra.Command, versionControlChoices []string, defaultVersionControl string) *WorkspaceFlagValues {
	values := &WorkspaceFlagValues{}
	if command == nil {
		return values
	}

	flagSet := command.Flags()
	flagSet.StringVar(&values.Root, RootFlagName, "", RootFlagUsage)
	AddChoiceFlag(flagSet, &values.VersionControl, VersionControlFlagName, "", defaultVersionControl, versionControlChoices, VersionControlFlagUsage)
	flagSet.BoolVar(&values.SecureShell, SecureShellFlagName, false, SecureShellFlagUsage)
	return values
}
