package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tbckr/domainintel/internal/config"
	"github.com/tbckr/domainintel/internal/output"
)

func newConfigCmd(d *deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Read and write domainintel config file values",
		GroupID: "utility",
	}
	cmd.AddCommand(
		newConfigPathCmd(d),
		newConfigShowCmd(d),
		newConfigGetCmd(d),
		newConfigSetCmd(d),
		newConfigEditCmd(d),
	)
	return cmd
}

func newConfigPathCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), d.cfg.ConfigFile)
			return err
		},
	}
}

// effectiveSettings is the resolved configuration, flags and environment
// included, keyed by config key in sorted order.
type effectiveSettings struct {
	keys   []string
	values map[string]string
}

func newEffectiveSettings(cfg *config.Config, reveal bool) effectiveSettings {
	keys := config.ValidKeys()
	values := make(map[string]string, len(keys))
	for _, k := range keys {
		values[k] = cfg.Value(k, reveal)
	}
	return effectiveSettings{keys: keys, values: values}
}

func (s effectiveSettings) WriteTable(w io.Writer) error {
	rows := make([][]string, len(s.keys))
	for i, k := range s.keys {
		rows[i] = []string{k, s.values[k]}
	}
	return output.RenderTable(output.NewWrappingTable(w, 20, 6), []string{"KEY", "VALUE"}, rows)
}

func (s effectiveSettings) WritePlain(w io.Writer) error {
	for _, k := range s.keys {
		if _, err := fmt.Fprintf(w, "%s=%s\n", k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

func newConfigShowCmd(d *deps) *cobra.Command {
	var reveal bool
	var asYAML bool
	cmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"cat"},
		Short:   "Display all effective config settings",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings := newEffectiveSettings(d.cfg, reveal)
			if asYAML {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(settings.values); err != nil {
					return err
				}
				return enc.Close()
			}
			if d.format == output.FormatJSON {
				return writeResult(cmd.OutOrStdout(), d, settings.values)
			}
			return writeResult(cmd.OutOrStdout(), d, settings)
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "show secrets such as the ipinfo token")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print in config file syntax")
	return cmd
}

func newConfigGetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a config key",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			if len(args) == 0 {
				return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := normalizeConfigKey(args[0])
			if err := config.ValidateKey(key); err != nil {
				return err
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), d.cfg.Value(key, true))
			return err
		},
	}
}

func newConfigSetCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value and persist it to the config file",
		Args:  cobra.ExactArgs(2),
		ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
			switch len(args) {
			case 0:
				return config.ValidKeys(), cobra.ShellCompDirectiveNoFileComp
			case 1:
				return config.KeyCompletions(normalizeConfigKey(args[0])), cobra.ShellCompDirectiveNoFileComp
			}
			return nil, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(_ *cobra.Command, args []string) error {
			key := normalizeConfigKey(args[0])
			typed, err := config.ParseValue(key, args[1])
			if err != nil {
				return err
			}
			return setFileValue(d.cfg.ConfigFile, key, typed)
		},
	}
}

// setFileValue rewrites path with key set to value. Only keys already in
// the file are kept; effective values from flags or env are never written.
func setFileValue(path, key string, value any) error {
	raw := map[string]any{}
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("parsing config file: %w", err)
		}
	}
	raw[key] = value

	out, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func newConfigEditCmd(d *deps) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the config file in $EDITOR",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = os.Getenv("VISUAL")
			}
			if editor == "" {
				editor = "vi"
			}
			c := exec.CommandContext(cmd.Context(), editor, d.cfg.ConfigFile) //nolint:gosec // editor comes from the user's own environment
			c.Stdin = cmd.InOrStdin()
			c.Stdout = cmd.OutOrStdout()
			c.Stderr = cmd.ErrOrStderr()
			return c.Run()
		},
	}
}

// normalizeConfigKey maps flag spelling to config keys ("ipinfo-token" to "ipinfo_token").
func normalizeConfigKey(key string) string {
	return strings.ReplaceAll(key, "-", "_")
}
