// nfecli operates the ingestion-and-pricing pipeline on local XML files,
// without the server: parse a document, price its items, trace the size
// heuristics or export a review workbook.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/precifica/backend/internal/domain"
	"github.com/precifica/backend/internal/export"
	"github.com/precifica/backend/internal/infrastructure/nfe"
	"github.com/precifica/backend/internal/usecase"
)

var (
	entryTax     float64
	markupXapuri float64
	markupEpita  float64
	rounding     string
	freightShare float64
	outputPath   string
)

var rootCmd = &cobra.Command{
	Use:   "nfecli",
	Short: "Parse, price and inspect NFE invoice XML files",
}

var parseCmd = &cobra.Command{
	Use:   "parse <file.xml>",
	Short: "Parse an NFE XML file and print the normalized invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := parseFile(args[0])
		if err != nil {
			return err
		}
		return printJSON(invoice)
	},
}

var priceCmd = &cobra.Command{
	Use:   "price <file.xml>",
	Short: "Parse an NFE XML file and price every line item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := parseFile(args[0])
		if err != nil {
			return err
		}

		params, err := flagParams()
		if err != nil {
			return err
		}

		priced := usecase.NewPricingService().PriceAll(invoice.Products, params)
		return printJSON(map[string]interface{}{
			"invoice":  invoice,
			"products": priced,
		})
	},
}

var traceSizeCmd = &cobra.Command{
	Use:   "trace-size <description>",
	Short: "Show which size rules matched a product description, in order",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description := strings.Join(args, " ")

		size, trace := usecase.ExtractSizeFromDescriptionTrace(description)
		fmt.Printf("description: %s\n", description)
		fmt.Printf("size:        %q\n", size)
		fmt.Printf("color:       %q\n\n", usecase.ExtractColor(description))
		for _, t := range trace {
			status := "no match"
			if t.Matched && t.Accepted {
				status = fmt.Sprintf("accepted %q", t.Normalized)
			} else if t.Matched {
				status = fmt.Sprintf("rejected %q (%s)", t.Candidate, t.Reason)
			}
			fmt.Printf("  %-24s %s\n", t.Rule, status)
		}
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <file.xml>",
	Short: "Price an NFE XML file and write the review table as XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := parseFile(args[0])
		if err != nil {
			return err
		}

		params, err := flagParams()
		if err != nil {
			return err
		}

		pricing := usecase.NewPricingService()
		priced := pricing.PriceAll(invoice.Products, params)
		columns := usecase.NewProfitService(pricing).ColumnsAll(priced, params)

		out, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer out.Close()

		if err := export.WriteReviewTable(out, invoice, priced, columns); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d rows)\n", outputPath, len(priced))
		return nil
	},
}

func parseFile(path string) (*domain.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return nfe.Parse(data)
}

func flagParams() (domain.PricingParameters, error) {
	policy, err := domain.ParseRoundingPolicy(rounding)
	if err != nil {
		return domain.PricingParameters{}, err
	}

	params := domain.PricingParameters{
		EntryTaxPercent: decimal.NewFromFloat(entryTax),
		MarkupXapuri:    decimal.NewFromFloat(markupXapuri),
		MarkupEpita:     decimal.NewFromFloat(markupEpita),
		Rounding:        policy,
		FreightShare:    decimal.NewFromFloat(freightShare),
	}
	return params, params.Validate()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	for _, cmd := range []*cobra.Command{priceCmd, exportCmd} {
		cmd.Flags().Float64Var(&entryTax, "entry-tax", 12.0, "entry tax percentage added to unit price")
		cmd.Flags().Float64Var(&markupXapuri, "markup-xapuri", 160.0, "xapuri channel markup (% of net cost)")
		cmd.Flags().Float64Var(&markupEpita, "markup-epita", 130.0, "epita channel markup (% of net cost)")
		cmd.Flags().StringVar(&rounding, "rounding", "90", "rounding policy: none, 90 or 50")
		cmd.Flags().Float64Var(&freightShare, "freight-share", 0, "per-item freight share in currency units")
	}
	exportCmd.Flags().StringVarP(&outputPath, "output", "o", "revisao.xlsx", "output XLSX path")

	rootCmd.AddCommand(parseCmd, priceCmd, traceSizeCmd, exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
