package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/maltedev/storefront-scraper/internal/pipeline"
)

var (
	enrichSKU       string
	enrichFile      string
	enrichProductID int64
)

func enrichCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Run the AI enrichment stages for one product",
		Long: `Enrich a product with attributes, categorization and marketing content.

Either load a saved product by --sku (the enrichment is stored against it) or
pass a JSON object of product fields with --file. A --product-id given with
--file stores the result against that product.`,
		Args: cobra.NoArgs,
		RunE: runEnrich,
	}

	cmd.Flags().StringVar(&enrichSKU, "sku", "", "SKU of a saved product")
	cmd.Flags().StringVarP(&enrichFile, "file", "f", "", "JSON file with product fields (- for stdin)")
	cmd.Flags().Int64Var(&enrichProductID, "product-id", 0, "product id to store the enrichment against")
	cmd.MarkFlagsMutuallyExclusive("sku", "file")
	cmd.MarkFlagsOneRequired("sku", "file")

	return cmd
}

func runEnrich(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	in := pipeline.EnrichInput{}
	switch {
	case enrichSKU != "":
		if st.products == nil {
			return errNoStorage
		}
		product, err := st.products.FindBySKU(ctx, enrichSKU)
		if err != nil {
			return fmt.Errorf("failed to load product %s: %w", enrichSKU, err)
		}
		in.Fields = product.Fields()
		id := product.ID
		in.ProductID = &id

	default:
		fields, err := readFields(enrichFile)
		if err != nil {
			return err
		}
		in.Fields = fields
		if enrichProductID > 0 {
			id := enrichProductID
			in.ProductID = &id
		}
	}

	enricher, release, err := newEnrichPipeline(ctx, cfg, st.enrichments, logger)
	if err != nil {
		return err
	}
	defer release()

	out := cmd.OutOrStdout()
	switch r := enricher.Enrich(ctx, in).(type) {
	case *pipeline.EnrichSuccess:
		return printJSON(out, r.Enrichment)
	case *pipeline.Failure:
		if err := printJSON(out, r); err != nil {
			return err
		}
		return errFailed
	}
	return nil
}

func readFields(path string) (map[string]any, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read product fields: %w", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to parse product fields: %w", err)
	}
	if len(fields) == 0 {
		return nil, errors.New("product fields must be a non-empty JSON object")
	}
	return fields, nil
}
