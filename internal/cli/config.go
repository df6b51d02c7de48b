package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ethpkg/donate/internal/config"
	donateerr "github.com/ethpkg/donate/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify the ethpkg-donate configuration file.`,
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Create a default configuration file at ~/.ethpkg/config.yaml.

An existing file is only replaced with --force.`,
		Args: cobra.NoArgs,
		RunE: runConfigInit,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long:  `Show the configuration after environment variables and flags are applied.`,
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}

	configGetCmd = &cobra.Command{
		Use:     "get <key>",
		Short:   "Print one configuration value",
		Example: "  ethpkg-donate config get provider.url\n  ethpkg-donate config get donation.amounts",
		Args:    cobra.ExactArgs(1),
		RunE:    runConfigGet,
	}

	configSetCmd = &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one value in the configuration file",
		Example: `  ethpkg-donate config set network main
  ethpkg-donate config set provider.url http://127.0.0.1:8545
  ethpkg-donate config set donation.amounts "[1, 2, 3, 5]"`,
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	}

	configForce bool
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd, configShowCmd, configGetCmd, configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing configuration file")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := config.Path(cfg.Home)
	if _, err := os.Stat(path); err == nil && !configForce {
		return donateerr.WithSuggestion(
			donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"path": path}),
			"a configuration file already exists; use --force to overwrite it",
		)
	}

	defaults := config.Defaults()
	defaults.Home = cfg.Home
	if err := config.Save(defaults, path); err != nil {
		return donateerr.Wrap(err, "writing %s", path)
	}

	w := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(w, "Configuration written to %s\n\n", path)
	_, _ = fmt.Fprintln(w, "Settings you will most likely want to change:")
	_, _ = fmt.Fprintln(w, "  provider.url   wallet endpoint, e.g. http://127.0.0.1:8545")
	_, _ = fmt.Fprintln(w, "  network        network donations are sent on")
	_, _ = fmt.Fprintln(w, "  logging.level  off, error or debug")
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if formatter.IsJSON() {
		tree, err := configTree(cfg)
		if err != nil {
			return err
		}
		return formatter.Print(tree)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	tree, err := configTree(cfg)
	if err != nil {
		return err
	}
	value, err := lookupKey(tree, args[0])
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return formatter.Print(map[string]any{args[0]: value})
	}
	switch v := value.(type) {
	case map[string]any, []any:
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	default:
		_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
		return err
	}
}

// runConfigSet edits the file on disk, not the effective configuration, so
// environment overrides are never persisted.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	path := config.Path(cfg.Home)

	current, err := config.LoadOrDefaults(path)
	if err != nil {
		return err
	}
	tree, err := configTree(current)
	if err != nil {
		return err
	}

	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"value": raw})
	}
	if err := setKey(tree, key, value); err != nil {
		return err
	}

	updated, err := configFromTree(tree)
	if err != nil {
		return err
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := config.Save(updated, path); err != nil {
		return donateerr.Wrap(err, "writing %s", path)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, raw)
	return err
}

// configTree converts c into nested maps keyed by the YAML field names.
func configTree(c *config.Config) (map[string]any, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

func configFromTree(tree map[string]any) (*config.Config, error) {
	data, err := yaml.Marshal(tree)
	if err != nil {
		return nil, err
	}
	c := config.Defaults()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, donateerr.WithCause(donateerr.ErrConfigInvalid, err)
	}
	return c, nil
}

func unknownKey(key string) error {
	return donateerr.WithSuggestion(
		donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"key": key}),
		"run 'ethpkg-donate config show' to list the available keys",
	)
}

func lookupKey(tree map[string]any, key string) (any, error) {
	var cur any = tree
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, unknownKey(key)
		}
		if cur, ok = m[part]; !ok {
			return nil, unknownKey(key)
		}
	}
	return cur, nil
}

// setKey replaces an existing leaf value. Sections cannot be replaced wholesale.
func setKey(tree map[string]any, key string, value any) error {
	parts := strings.Split(key, ".")
	m := tree
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]any)
		if !ok {
			return unknownKey(key)
		}
		m = next
	}

	leaf := parts[len(parts)-1]
	existing, ok := m[leaf]
	if !ok {
		return unknownKey(key)
	}
	if _, isSection := existing.(map[string]any); isSection {
		return unknownKey(key)
	}
	m[leaf] = value
	return nil
}
