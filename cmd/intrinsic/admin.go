package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/seenimoa/intrinsic/internal/config"
	"github.com/seenimoa/intrinsic/internal/reference"
	"github.com/seenimoa/intrinsic/internal/store"
)

// --- Tables Command ---

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Manage the reference tables",
}

var tablesSeedCmd = &cobra.Command{
	Use:   "seed [FILE]",
	Short: "Write reference tables into the database",
	Long: `Create the reference and result schemas and load the tables from FILE,
or from the embedded defaults when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if cfg.Store.DatabaseURL == "" {
			return fmt.Errorf("no database: set store.database_url or DATABASE_URL")
		}

		var path string
		if len(args) == 1 {
			path = args[0]
		}
		tables, err := reference.YAMLSource{Path: path}.Load(ctx)
		if err != nil {
			return err
		}

		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		if err := (reference.PostgresSource{DB: pool}).Seed(ctx, tables); err != nil {
			return err
		}
		if err := store.NewResults(pool).Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d spread bins, %d industries, %d countries\n",
			len(tables.Spreads), len(tables.Industries), len(tables.Countries))
		return nil
	},
}

var tablesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the active reference tables as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(a.tables); err != nil {
			return err
		}
		return enc.Close()
	},
}

// --- Cache Command ---

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the archived SEC documents",
}

var cacheListCmd = &cobra.Command{
	Use:   "list [PREFIX]",
	Short: "List archived documents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := store.OpenDocuments(cfg.Store.DataDir, cfg.Store.DocumentTTL)
		if err != nil {
			return err
		}
		defer docs.Close()

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		keys, err := docs.Keys(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tSIZE\tARCHIVED")
		for _, k := range keys {
			data, at, err := docs.Load(cmd.Context(), k)
			if err != nil {
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\n", k, len(data), at.Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [PREFIX]",
	Short: "Delete archived documents",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docs, err := store.OpenDocuments(cfg.Store.DataDir, cfg.Store.DocumentTTL)
		if err != nil {
			return err
		}
		defer docs.Close()

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		keys, err := docs.Keys(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := docs.Delete(cmd.Context(), k); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d documents\n", len(keys))
		return nil
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, credentials and upstream health",
	RunE: func(cmd *cobra.Command, args []string) error {
		ping, _ := cmd.Flags().GetBool("ping")
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "intrinsic %s\n\n", version)
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(tw, "  Data dir\t%s\n", cfg.Store.DataDir)
		fmt.Fprintf(tw, "  Tables\t%s\n", tablesOrigin(cfg))
		fmt.Fprintf(tw, "  Equity risk premium\t%.2f%%\n", cfg.Valuation.EquityRiskPremium*100)
		fmt.Fprintf(tw, "  Recession probability\t%.0f%%\n", cfg.Valuation.RecessionProbability*100)
		fmt.Fprintf(tw, "  History years\t%d\n", cfg.Valuation.HistoryYears)
		_ = tw.Flush()

		fmt.Fprintln(out, "\nCredentials:")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, k := range config.CheckKeys(cfg) {
			state := "✗ not set"
			if k.IsSet {
				state = fmt.Sprintf("✓ %s (%s)", k.Masked, k.Source)
			}
			fmt.Fprintf(tw, "  %s\t%s\n", k.Name, state)
		}
		_ = tw.Flush()

		if !ping {
			return nil
		}
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		var results map[string]error
		if only, _ := cmd.Flags().GetString("provider"); only != "" {
			p, err := a.registry.Get(only)
			if err != nil {
				return err
			}
			results = map[string]error{only: p.Ping(cmd.Context())}
		} else {
			results = a.registry.PingAll(cmd.Context())
		}

		fmt.Fprintln(out, "\nProviders:")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		failed := 0
		for _, info := range a.registry.List() {
			err, pinged := results[info.Name]
			if !pinged {
				continue
			}
			kinds := make([]string, len(info.Kinds))
			for i, k := range info.Kinds {
				kinds[i] = string(k)
			}
			state := "✓ ok"
			if err != nil {
				failed++
				state = "✗ " + strings.TrimSpace(err.Error())
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\n", info.Name, strings.Join(kinds, ","), state)
		}
		_ = tw.Flush()
		if failed > 0 {
			return fmt.Errorf("%d providers unreachable", failed)
		}
		return nil
	},
}

func init() {
	tablesCmd.AddCommand(tablesSeedCmd, tablesDumpCmd)
	cacheCmd.AddCommand(cacheListCmd, cacheClearCmd)
	statusCmd.Flags().Bool("ping", false, "ping every upstream provider")
	statusCmd.Flags().String("provider", "", "with --ping, check only this provider")
}

func tablesOrigin(c *config.Config) string {
	switch {
	case c.Valuation.TablesPath != "":
		return c.Valuation.TablesPath
	case c.Store.DatabaseURL != "":
		return "database"
	default:
		return "embedded"
	}
}
