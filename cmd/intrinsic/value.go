package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/intrinsic/internal/report"
	"github.com/seenimoa/intrinsic/pkg/models"
	"github.com/seenimoa/intrinsic/pkg/utils"
)

// --- Value Command ---

var valueCmd = &cobra.Command{
	Use:   "value TICKER [TICKER...]",
	Short: "Value one or more companies",
	Long: `Value companies from their latest SEC filings and market price.

Examples:
  intrinsic value AAPL
  intrinsic value MSFT GOOGL BRK.B --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		parallel, _ := cmd.Flags().GetInt("parallel")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		type outcome struct {
			v   *models.Valuation
			err error
		}
		results := make([]outcome, len(args))

		var g errgroup.Group
		g.SetLimit(max(parallel, 1))
		for i, ticker := range args {
			g.Go(func() error {
				v, err := a.pipeline.Value(cmd.Context(), ticker)
				results[i] = outcome{v, err}
				return nil
			})
		}
		_ = g.Wait()

		out := cmd.OutOrStdout()
		failed := 0
		for i, r := range results {
			if r.err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", utils.NormalizeTicker(args[i]), r.err)
				continue
			}
			if asJSON {
				if err := writeJSON(out, r.v); err != nil {
					return err
				}
				continue
			}
			printSummary(out, r.v)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d valuations failed", failed, len(args))
		}
		return nil
	},
}

func init() {
	valueCmd.Flags().Bool("json", false, "print the full valuation as JSON")
	valueCmd.Flags().Int("parallel", 4, "tickers valued concurrently")
}

func printSummary(w io.Writer, v *models.Valuation) {
	cur := v.Market.PriceCurrency
	fmt.Fprintf(w, "\n%s (%s)  %s, %s\n", v.Company.Name, v.Company.Ticker, v.Company.Industry, v.Company.Country)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  Price\t%s\n", utils.FormatMoney(v.Market.Price, cur))
	if v.Market.Rating != "" {
		fmt.Fprintf(tw, "  Synthetic rating\t%s\n", v.Market.Rating)
	}
	fmt.Fprintf(tw, "  FCFF value\t%s\t%s\n", utils.FormatMoney(v.FCFFValue, cur), utils.FormatDelta(v.FCFFDelta))
	fmt.Fprintf(tw, "  Dividend value\t%s\t%s\n", utils.FormatMoney(v.DividendValue, cur), utils.FormatDelta(v.DividendDelta))
	fmt.Fprintf(tw, "  Liquidation value\t%s\t%s\n", utils.FormatMoney(v.LiquidationValue, cur), utils.FormatDelta(v.LiquidationDelta))
	fmt.Fprintf(tw, "  Threshold\t%s\t%s cap\n", utils.Percent(v.Threshold), v.Size)
	_ = tw.Flush()

	fmt.Fprintf(w, "  Verdict: %s (%s)\n", v.Status, v.Status.Label())
	for _, warning := range v.Warnings {
		fmt.Fprintf(w, "  ! %s\n", warning)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// --- Facts Command ---

var factsCmd = &cobra.Command{
	Use:   "facts TICKER",
	Short: "Show the line items extracted from a company's filings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		f, err := a.pipeline.Facts(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), f)
		}
		md, err := report.FactsMarkdown(f)
		if err != nil {
			return err
		}
		_, err = io.WriteString(cmd.OutOrStdout(), md)
		return err
	},
}

func init() {
	factsCmd.Flags().Bool("json", false, "print the line items as JSON")
}

// --- Report Command ---

var reportCmd = &cobra.Command{
	Use:   "report TICKER",
	Short: "Value a company and render a Markdown or HTML report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatFlag, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")

		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		v, err := a.pipeline.Value(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		doc, err := report.Render(v, format, report.DefaultConfig())
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			_, err = io.WriteString(cmd.OutOrStdout(), doc)
			return err
		}
		if err := os.WriteFile(output, []byte(doc), 0o644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "report written to %s\n", output)
		return nil
	},
}

func init() {
	reportCmd.Flags().String("format", "md", "report format: md or html")
	reportCmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
}

// --- History Command ---

var historyCmd = &cobra.Command{
	Use:   "history TICKER",
	Short: "List stored valuations of a company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()
		if a.results == nil {
			return fmt.Errorf("no result store: set store.database_url")
		}

		runs, err := a.results.History(cmd.Context(), utils.NormalizeTicker(args[0]), limit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "VALUED AT\tPRICE\tFCFF\tDIVIDENDS\tSTATUS\tRUN")
		for _, v := range runs {
			cur := v.Market.PriceCurrency
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				v.ValuedAt.Format("2006-01-02 15:04"),
				utils.FormatMoney(v.Market.Price, cur),
				utils.FormatMoney(v.FCFFValue, cur),
				utils.FormatMoney(v.DividendValue, cur),
				v.Status, v.RunID)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().Int("limit", 10, "number of runs to list")
}
