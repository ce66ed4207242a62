package cmd

import (
	"fmt"

	"github.com/primerdw/bartender-api/internal/config"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Inspect the API key registry",
}

var keysCheckCmd = &cobra.Command{
	Use:   "check <api-key>",
	Short: "Check whether an API key is active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		a, err := openKeys(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("startup: %w", err)
		}
		defer func() { _ = a.Close() }()

		ok, err := a.keys.IsValid(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "invalid")
		return fmt.Errorf("api key is not active")
	},
}

func init() {
	keysCmd.AddCommand(keysCheckCmd)
}
