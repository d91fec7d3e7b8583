package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"

	"github.com/tbckr/domainintel/internal/config"
)

func TestCompleteOutputFormat(t *testing.T) {
	vals, directive := config.CompleteOutputFormat(nil, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"table", "json", "plain"}, vals)
}

func TestCompleteOutputFormat_Prefix(t *testing.T) {
	// prefix is unused by the function; return set must be identical regardless
	vals, directive := config.CompleteOutputFormat(nil, nil, "j")
	assert.Equal(t, cobra.ShellCompDirectiveNoFileComp, directive)
	assert.ElementsMatch(t, []string{"table", "json", "plain"}, vals)
}

func TestCompleteFileExtensions(t *testing.T) {
	vals, directive := config.CompleteDatabaseFile(nil, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
	assert.Equal(t, []string{"mmdb"}, vals)

	vals, directive = config.CompleteSpreadsheetFile(nil, nil, "")
	assert.Equal(t, cobra.ShellCompDirectiveFilterFileExt, directive)
	assert.Equal(t, []string{"xlsx"}, vals)

	vals, _ = config.CompletePatternsFile(nil, nil, "")
	assert.Equal(t, []string{"yaml", "yml"}, vals)
}

func TestRegisterFlagCompletions(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	config.RegisterFlags(cmd.PersistentFlags())
	assert.NotPanics(t, func() { config.RegisterFlagCompletions(cmd) })
}
