package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/ranis-junior/psychology-reports/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workbookFile string

var seedNormativeCmd = &cobra.Command{
	Use:   "seed-normative",
	Short: "Import the IDADI normative tables from an xlsx workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, done := setupLogger()
		defer done()

		content, err := os.ReadFile(workbookFile)
		if err != nil {
			return fmt.Errorf("reading workbook: %w", err)
		}

		s := openStore(cfg)
		defer s.Close()

		imported, err := service.NewNormativeService(s).Import(context.Background(), content)
		if err != nil {
			return err
		}

		domains := make([]string, 0, len(imported))
		for domain := range imported {
			domains = append(domains, domain)
		}
		sort.Strings(domains)
		for _, domain := range domains {
			zap.S().Infow("normative table imported", "domain", domain, "rows", imported[domain])
		}
		return nil
	},
}

func init() {
	seedNormativeCmd.Flags().StringVarP(&workbookFile, "file", "f", "", "Path to the normative xlsx workbook")
	_ = seedNormativeCmd.MarkFlagRequired("file")
}
