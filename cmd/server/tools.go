package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fekuna/omnipos-catalog-service/internal/attribute"
	"github.com/fekuna/omnipos-catalog-service/internal/model"
	"github.com/fekuna/omnipos-catalog-service/internal/stock"
	"github.com/fekuna/omnipos-catalog-service/internal/variantview"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSuggestCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "suggest <attribute> [value]",
		Short:   "Print value suggestions for a variant attribute",
		Example: "  catalog suggest ram 8\n  catalog suggest \"Screen Size\"",
		Args:    cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value := ""
			if len(args) > 1 {
				value = args[1]
			}
			for _, s := range attribute.Suggest(args[0], value) {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newAnalyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <variants.json>",
		Short: "Print stock and profitability figures for a JSON array of variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return analyze(f, cmd.OutOrStdout())
		},
	}
}

type analysis struct {
	Analytics     stock.Analytics          `json:"analytics"`
	Primary       string                   `json:"primary_variant,omitempty"`
	Profitability []stock.ProfitabilityRow `json:"profitability"`
}

func analyze(in io.Reader, out io.Writer) error {
	var variants []model.Variant
	if err := json.NewDecoder(in).Decode(&variants); err != nil {
		return errors.Wrap(err, "decode variants")
	}
	variants = variantview.ParentsOnly(variants)

	res := analysis{
		Analytics:     stock.Summarize(stock.LinesFrom(variants)),
		Profitability: stock.Profitability(variants, variantview.IndexedName),
	}
	if p := stock.PrimaryVariant(variants); p != nil {
		res.Primary = variantview.DisplayName(*p, p.SKU)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
