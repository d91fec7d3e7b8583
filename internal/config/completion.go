package config

import (
	"github.com/spf13/cobra"

	"github.com/tbckr/domainintel/internal/output"
)

// OutputFormats lists the values accepted by --output.
func OutputFormats() []string {
	formats := output.Formats()
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}

// CompleteOutputFormat provides shell completion candidates for the --output flag.
func CompleteOutputFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return OutputFormats(), cobra.ShellCompDirectiveNoFileComp
}

// CompleteDatabaseFile restricts completion to MaxMind database files.
func CompleteDatabaseFile(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"mmdb"}, cobra.ShellCompDirectiveFilterFileExt
}

// CompleteSpreadsheetFile restricts completion to .xlsx files.
func CompleteSpreadsheetFile(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"xlsx"}, cobra.ShellCompDirectiveFilterFileExt
}

// CompletePatternsFile restricts completion to YAML files.
func CompletePatternsFile(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// RegisterFlagCompletions attaches completion functions to the persistent
// flags registered by RegisterFlags.
func RegisterFlagCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("output", CompleteOutputFormat)
	_ = cmd.RegisterFlagCompletionFunc("geoip-city-db", CompleteDatabaseFile)
	_ = cmd.RegisterFlagCompletionFunc("geoip-asn-db", CompleteDatabaseFile)
	_ = cmd.RegisterFlagCompletionFunc("domains-file", CompleteSpreadsheetFile)
	_ = cmd.RegisterFlagCompletionFunc("records-file", CompleteSpreadsheetFile)
	_ = cmd.RegisterFlagCompletionFunc("detect-patterns", CompletePatternsFile)
}
