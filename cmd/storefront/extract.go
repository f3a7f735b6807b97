package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/parser"
	"github.com/maltedev/storefront-scraper/internal/structured"
)

var (
	extractURL     string
	extractPersist bool
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <html-file>",
		Short: "Extract a product from a saved product page without a browser",
		Long: `Re-run field extraction against an HTML snapshot, such as the
product_page.html written by scrape --save-debug. --url supplies the page URL
used for the product link and the SKU fallback.`,
		Args: cobra.ExactArgs(1),
		RunE: runExtract,
	}

	cmd.Flags().StringVar(&extractURL, "url", "", "URL the snapshot was taken from")
	cmd.Flags().BoolVar(&extractPersist, "persist", false, "save the extracted product to the configured storage")

	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	doc, err := parser.NewHTMLDocument(f)
	if err != nil {
		return err
	}

	data := structured.FromDocument(doc.Document())
	if data == nil {
		logger.Warn("no product JSON-LD in snapshot, falling back to DOM fields", "file", args[0])
	}
	product := parser.NewResolver(logger).Resolve(data, doc, extractURL)

	if extractPersist {
		ctx := cmd.Context()
		st, err := openStores(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer st.close()
		if st.products == nil {
			return errNoStorage
		}

		saved, err := st.products.Save(ctx, product)
		if err != nil {
			return fmt.Errorf("failed to save product: %w", err)
		}
		product = saved
		logger.Info("product saved", "id", product.ID, "sku", product.SKU)
	}

	return printJSON(cmd.OutOrStdout(), product)
}
