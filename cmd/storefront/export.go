package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/export"
)

var exportOutput string

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved products and their latest enrichment to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE:  runExport,
	}

	cmd.Flags().StringVarP(&exportOutput, "output", "o", "products.xlsx", "workbook path")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()
	if st.catalog == nil {
		return errNoStorage
	}

	products, err := st.catalog.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create workbook: %w", err)
	}
	defer f.Close()

	if err := export.WriteProducts(f, products); err != nil {
		return err
	}

	logger.Info("export completed", "products", len(products), "output", exportOutput)
	return nil
}
