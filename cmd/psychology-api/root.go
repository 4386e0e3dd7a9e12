package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "psychology-api",
	Short: "Clinical records and document assembly api for psychology practices",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(seedNormativeCmd)
}
