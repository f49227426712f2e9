package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/itiky/edit-session/dataset"
)

// GetInspectCmd returns print dataset command.
func GetInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print dataset items and account balances",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			filePath, err := cmd.Flags().GetString(FlagFilePath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagFilePath, err)
			}

			// Work
			fixture, err := dataset.LoadFixture(filePath)
			if err != nil {
				log.Fatalf("dataset load: %v", err)
			}
			control, err := dataset.NewControlFromFixture(fixture)
			if err != nil {
				log.Fatalf("dataset init: %v", err)
			}

			fmt.Print(control.String())
			for _, line := range control.SortedBalances() {
				fmt.Println(line)
			}
		},
	}
	cmd.Flags().String(FlagFilePath, "./dataset.yaml", "(optional) dataset file path")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetInspectCmd())
}
