package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dapdevsoftware/phantomfill/internal/strategy"
)

var strategiesCmd = &cobra.Command{
	Use:   "strategies",
	Short: "List the built-in strategies available to run",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, d := range strategy.List() {
			fmt.Printf("%-12s %s\n", d.Name, d.Description)
		}
		fmt.Printf("%-12s %s\n", "fade", "Fade momentum: bet against streaks of consecutive same-direction candles (needs --min-streak/--max-streak)")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
