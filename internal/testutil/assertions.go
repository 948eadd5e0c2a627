package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func executedLine(name string) string {
	return fmt.Sprintf(`msg="Computation executed." computation=%s `, name)
}

// AssertComputationRan checks the log output within a HarnessResult to
// confirm that the named computation executed at least once.
func AssertComputationRan(t *testing.T, result *HarnessResult, name string) {
	t.Helper()
	require.True(t,
		strings.Contains(result.LogOutput, executedLine(name)),
		"expected computation '%s' to have executed", name,
	)
}

// AssertComputationSkipped checks that the named computation never executed.
func AssertComputationSkipped(t *testing.T, result *HarnessResult, name string) {
	t.Helper()
	require.False(t,
		strings.Contains(result.LogOutput, executedLine(name)),
		"expected computation '%s' not to have executed", name,
	)
}

// AssertRanBefore checks that the first execution of first is logged before
// the first execution of second.
func AssertRanBefore(t *testing.T, result *HarnessResult, first, second string) {
	t.Helper()
	i := strings.Index(result.LogOutput, executedLine(first))
	j := strings.Index(result.LogOutput, executedLine(second))
	require.GreaterOrEqual(t, i, 0, "computation '%s' did not execute", first)
	require.GreaterOrEqual(t, j, 0, "computation '%s' did not execute", second)
	require.Less(t, i, j, "expected '%s' to execute before '%s'", first, second)
}
