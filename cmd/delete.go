package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mspro-labs/cafe-critic/internal/config"
)

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Permanently delete a café",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid id %q", args[0])
		}
		appCfg, err := config.GetAppConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(appCfg)
		if err != nil {
			return err
		}
		defer closeStore()

		if err := store.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete cafe %d: %w", id, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted café %d.\n", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
