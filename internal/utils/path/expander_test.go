package pathutils_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	pathutils "github.com/temirov/repohq/internal/utils/path"
)

const (
	testHomeDirectoryConstant     = "/home/tester"
	testWorkspaceVariableConstant = "REPOHQ_TEST_WORKSPACE"
	testWorkspaceValueConstant    = "/srv/workspace"
)

func TestPathExpanderExpand(testInstance *testing.T) {
	expander := pathutils.NewPathExpanderWithProviders(
		func() (string, error) { return testHomeDirectoryConstant, nil },
		func(name string) (string, bool) {
			if name == testWorkspaceVariableConstant {
				return testWorkspaceValueConstant, true
			}
			return "", false
		},
	)

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "bare_tilde", input: "~", expected: testHomeDirectoryConstant},
		{name: "tilde_prefix", input: "~/repohq", expected: filepath.Join(testHomeDirectoryConstant, "repohq")},
		{name: "tilde_inside_is_kept", input: "/tmp/~/x", expected: "/tmp/~/x"},
		{name: "defined_variable", input: "$" + testWorkspaceVariableConstant + "/repos", expected: testWorkspaceValueConstant + "/repos"},
		{name: "braced_variable", input: "${" + testWorkspaceVariableConstant + "}/repos", expected: testWorkspaceValueConstant + "/repos"},
		{name: "undefined_variable_kept", input: "$REPOHQ_UNDEFINED/repos", expected: "$REPOHQ_UNDEFINED/repos"},
		{name: "absolute_untouched", input: "/opt/code", expected: "/opt/code"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, expander.Expand(testCase.input))
		})
	}
}

func TestPathExpanderKeepsTildeWhenHomeUnknown(testInstance *testing.T) {
	expander := pathutils.NewPathExpanderWithProviders(
		func() (string, error) { return "", errors.New("no home") },
		nil,
	)
	require.Equal(testInstance, "~/repohq", expander.Expand("~/repohq"))
	require.Equal(testInstance, []string{"~", "/a"}, expander.ExpandAll([]string{"~", "/a"}))
}
