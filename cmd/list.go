package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mspro-labs/cafe-critic/internal/config"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all cafés, lowest overall rating first",
	RunE: func(cmd *cobra.Command, args []string) error {
		appCfg, err := config.GetAppConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(appCfg)
		if err != nil {
			return err
		}
		defer closeStore()

		cafes, err := store.ListByRatingAscending(cmd.Context())
		if err != nil {
			return err
		}
		if len(cafes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No cafés found.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCITY\tRATING\tCOFFEE\tTEA\tWIFI\tCAKE\tWORK\tBREAKFAST")
		for _, c := range cafes {
			rating := "-"
			if c.OverallRating != nil {
				rating = strconv.FormatFloat(*c.OverallRating, 'f', 1, 64)
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s", c.ID, c.Name, c.City, rating)
			for _, f := range c.Facets() {
				v := "-"
				if f.Rating != nil {
					v = strconv.Itoa(*f.Rating)
				}
				fmt.Fprintf(tw, "\t%s", v)
			}
			fmt.Fprintln(tw)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
