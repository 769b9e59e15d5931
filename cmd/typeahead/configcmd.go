package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/robottwo/typeahead/internal/config"
	"github.com/robottwo/typeahead/internal/core"
	"github.com/robottwo/typeahead/internal/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change settings",
}

var configSetCmd = &cobra.Command{
	Use:     "set KEY VALUE",
	Short:   "Write one setting to the config file",
	Example: "  typeahead config set keyboard.endpoint http://192.168.1.20:5000/output",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFilePath()
		if err := config.SetInFile(path, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), styles.SUCCESS(fmt.Sprintf("%s = %s", args[0], args[1]))+" "+styles.HINT("("+path+")"))
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List settable keys and their environment variables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tENVIRONMENT")
		for _, key := range config.Keys() {
			fmt.Fprintf(w, "%s\t%s\n", key, config.EnvName(key))
		}
		return w.Flush()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configFilePath())
	},
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configPathCmd)
}

func configFilePath() string {
	if configPath != "" {
		return configPath
	}
	return core.ConfigFile()
}
