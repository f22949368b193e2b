/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/ragforge/pdfrag/service"
	"github.com/ragforge/pdfrag/types"
	"github.com/spf13/cobra"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a PDF without ingesting it",
	Long:  `Runs the validation gate against a PDF and prints the full report as JSON. Exits non-zero when the document would be rejected by the pipeline.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		validator := service.NewValidatorService()
		report, err := validator.Validate(args[0])
		if err != nil {
			log.Fatalf("Validation error: %v", err)
		}

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
		fmt.Println(string(data))

		if report.Status == types.ValidationFail {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
