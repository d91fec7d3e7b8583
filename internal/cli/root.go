// Package cli provides the Cobra command tree and output wiring for domainintel.
package cli

import (
	"context"
	"fmt"
	"io"
	"net/netip"

	"github.com/spf13/cobra"

	"github.com/tbckr/domainintel/internal/config"
	"github.com/tbckr/domainintel/internal/domain"
	"github.com/tbckr/domainintel/internal/version"
)

// newRootCmd builds the top-level Cobra command for domainintel.
// Callers must set stdin/stdout/stderr via cmd.SetIn / SetOut / SetErr before Execute.
func newRootCmd() *cobra.Command {
	// d is populated by PersistentPreRunE before any RunE runs.
	// Cobra only executes the innermost PersistentPreRunE in the command
	// chain; subcommands that define their own must call buildDeps themselves.
	var d deps
	var knownIP string

	cmd := &cobra.Command{
		Use:   "domainintel [domain]",
		Short: "Enrich a domain with WHOIS, DNS and network intelligence",
		Long: `domainintel resolves a domain's server address, ASN and location, its
registry record and its NS, A, AAAA, MX and TXT records, prints the result
and records it in two spreadsheets: one row per tracked domain, and an
append-only history of every DNS record observed.

When no domain is given it is read from stdin.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			resolved, err := buildDeps(cmd, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			d = *resolved
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := resolveInput(cmd, args)
			if err != nil {
				return err
			}
			known, err := parseKnownAddress(knownIP)
			if err != nil {
				return err
			}
			return runLookup(cmd.Context(), cmd.OutOrStdout(), &d, raw, known)
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())
	config.RegisterFlagCompletions(cmd)
	cmd.Flags().StringVar(&knownIP, "ip", "", "use this server address instead of resolving the domain")

	cmd.Version = version.Version
	cmd.SetVersionTemplate(version.String() + "\n")

	cmd.AddGroup(&cobra.Group{ID: "utility", Title: "Utility Commands:"})
	cmd.AddCommand(
		newConfigCmd(&d),
		newCompletionCmd(),
		newVersionCmd(&d),
	)

	return cmd
}

// Execute builds the root command and runs it with os.Args.
func Execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := newRootCmd()
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd.ExecuteContext(ctx)
}

func parseKnownAddress(s string) (*domain.NetworkAddress, error) {
	if s == "" {
		return nil, nil
	}
	ip, err := netip.ParseAddr(s)
	if err != nil {
		return nil, fmt.Errorf("invalid --ip %q: %w", s, err)
	}
	return &domain.NetworkAddress{IP: ip}, nil
}
