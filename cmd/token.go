/*
Copyright © 2025 ragforge
*/
package cmd

import (
	"fmt"
	"log"

	"github.com/ragforge/pdfrag/utils"
	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate an admin token for the upload and registry endpoints",
	Run: func(cmd *cobra.Command, args []string) {
		id, _ := cmd.Flags().GetString("id")
		username, _ := cmd.Flags().GetString("username")

		token, err := utils.GenerateAdminToken(id, username)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().String("id", "admin", "admin id")
	tokenCmd.Flags().String("username", "admin", "admin username")
}
