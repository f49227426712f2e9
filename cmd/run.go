package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/itiky/edit-session/dataset"
	"github.com/itiky/edit-session/session"
)

const (
	FlagScriptPath    = "script-path"
	FlagOutputPath    = "output-path"
	FlagMonitorPeriod = "monitor-period"
)

// GetRunCmd returns replay edit script command.
func GetRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Replay an edit script against a dataset",
		Run: func(cmd *cobra.Command, args []string) {
			// Parse inputs
			filePath, err := cmd.Flags().GetString(FlagFilePath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagFilePath, err)
			}
			scriptPath, err := cmd.Flags().GetString(FlagScriptPath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagScriptPath, err)
			}
			outputPath, err := cmd.Flags().GetString(FlagOutputPath)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagOutputPath, err)
			}
			monitorDur, err := cmd.Flags().GetDuration(FlagMonitorPeriod)
			if err != nil {
				log.Fatalf("%s flag: %v", FlagMonitorPeriod, err)
			}

			// Init
			fixture, err := dataset.LoadFixture(filePath)
			if err != nil {
				log.Fatalf("dataset load: %v", err)
			}
			control, err := dataset.NewControlFromFixture(fixture)
			if err != nil {
				log.Fatalf("dataset init: %v", err)
			}
			script, err := dataset.LoadScript(scriptPath)
			if err != nil {
				log.Fatalf("script load: %v", err)
			}

			errCollector := &dataset.ErrorCollector{}
			editSession, err := control.OpenSession(errCollector)
			if err != nil {
				log.Fatalf("session init: %v", err)
			}

			monitor := session.DefaultMonitor()
			monitor.Start(monitorDur)
			defer monitor.Stop()

			// Work
			res, err := editSession.RunScript(script)
			if err != nil {
				log.Fatalf("script failed: %v", err)
			}
			log.Printf("Script: %d steps, %d committed, %d failed", res.Steps, res.Committed, res.Failed)
			if res.LastErrors.HasErrors() {
				log.Printf("Last errors:\n%s", res.LastErrors)
			}
			monitor.Report()

			fmt.Print(control.String())
			for _, line := range control.SortedBalances() {
				fmt.Println(line)
			}

			if outputPath != "" {
				if err := dataset.SaveFixture(outputPath, control.Export()); err != nil {
					log.Fatalf("dataset save: %v", err)
				}
			}
		},
	}
	cmd.Flags().String(FlagFilePath, "./dataset.yaml", "(optional) dataset file path")
	cmd.Flags().String(FlagScriptPath, "./script.yaml", "(optional) edit script file path")
	cmd.Flags().String(FlagOutputPath, "", "(optional) path to save the committed dataset")
	cmd.Flags().Duration(FlagMonitorPeriod, 5*time.Second, "(optional) monitor report period (0 disables)")

	return cmd
}

func init() {
	rootCmd.AddCommand(GetRunCmd())
}
