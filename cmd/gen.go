package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/itiky/edit-session/dataset"
)

const (
	FlagFilePath     = "file-path"
	FlagAccounts     = "accounts"
	FlagPayees       = "payees"
	FlagTransactions = "transactions"
)

// GetGenerateCmd returns generate mock dataset command.
func GetGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate mock dataset",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			filePath, err := cmd.Flags().GetString(FlagFilePath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagFilePath, err)
			}
			accounts, err := cmd.Flags().GetInt(FlagAccounts)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagAccounts, err)
			}
			payees, err := cmd.Flags().GetInt(FlagPayees)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagPayees, err)
			}
			transactions, err := cmd.Flags().GetInt(FlagTransactions)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagTransactions, err)
			}

			// Work
			if err := dataset.GenAndSaveFixture(filePath, accounts, payees, transactions); err != nil {
				log.Fatalf("gen failed: %v", err)
			}
		},
	}
	cmd.Flags().String(FlagFilePath, "./dataset.yaml", "(optional) output file path")
	cmd.Flags().Int(FlagAccounts, 5, "(optional) number of accounts")
	cmd.Flags().Int(FlagPayees, 10, "(optional) number of payees")
	cmd.Flags().Int(FlagTransactions, 100, "(optional) number of transactions")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetGenerateCmd())
}
