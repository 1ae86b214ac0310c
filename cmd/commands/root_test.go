package commands

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommandTree(t *testing.T) {
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"recurring", "process"},
	} {
		cmd, _, err := rootCmd.Find(path)
		require.NoError(t, err, path)
		require.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestRecurringProcessInvalidDate(t *testing.T) {
	rootCmd.SetArgs([]string{"recurring", "process", "--date", "01.03.2024"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		processDate = ""
	})

	err := rootCmd.Execute()
	require.ErrorContains(t, err, "invalid --date")
}
