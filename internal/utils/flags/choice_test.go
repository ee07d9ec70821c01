package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestFormatChoiceUsage(t *testing.T) {
	listFormats := []string{"name", "fullpath", "json", "yaml"}
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultInTheMiddle",
			defaultChoice:  "fullpath",
			choices:        listFormats,
			description:    "Output format.",
			expectedOutput: "`<name|FULLPATH|json|yaml>` Output format.",
		},
		{
			name:           "NoDescription",
			defaultChoice:  "json",
			choices:        listFormats,
			expectedOutput: "`<name|fullpath|JSON|yaml>`",
		},
		{
			name:           "RepeatedAndPaddedChoices",
			defaultChoice:  "darcs",
			choices:        []string{" git", "darcs ", "git", "pijul"},
			description:    "Backend for new repositories.",
			expectedOutput: "`<git|DARCS|pijul>` Backend for new repositories.",
		},
		{
			name:           "DefaultOutsideChoices",
			defaultChoice:  "svn",
			choices:        []string{"git", "hg"},
			description:    "Backend.",
			expectedOutput: "`<git|hg>` Backend.",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expectedOutput, FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestAddChoiceFlagValidatesValues(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedValue string
		expectError   bool
	}{
		{name: "DefaultWhenUnset", arguments: nil, expectedValue: "git"},
		{name: "NormalizesCase", arguments: []string{"--vcs", "HG"}, expectedValue: "hg"},
		{name: "RejectsUnknown", arguments: []string{"--vcs", "svn"}, expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			flagSet := pflag.NewFlagSet(testCase.name, pflag.ContinueOnError)
			var selected string
			AddChoiceFlag(flagSet, &selected, "vcs", "", "git", []string{"git", "hg", "darcs", "pijul"}, "Version control system.")

			parseError := flagSet.Parse(testCase.arguments)
			if testCase.expectError {
				require.Error(t, parseError)
				require.Contains(t, parseError.Error(), "svn")
				return
			}
			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedValue, selected)
			require.Equal(t, "`<GIT|hg|darcs|pijul>` Version control system.", flagSet.Lookup("vcs").Usage)
		})
	}
}
