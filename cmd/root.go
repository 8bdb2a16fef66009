package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "clinic-payments",
	Short: "Clinic payments microservice",
	Long:  "A payments microservice for clinic appointments: split-payment reconciliation, payment recording, settlement transitions, and lifecycle jobs.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
