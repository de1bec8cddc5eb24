// cmd/tools/market-query/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"market-intel/internal/common/bootstrap"
	"market-intel/internal/common/config"
	"market-intel/internal/common/database"
	"market-intel/internal/common/logger"
	"market-intel/internal/market"
)

// querier is the part of the resolver the commands call.
type querier interface {
	Resolve(ctx context.Context, market string) market.MatrixResult
	Detail(ctx context.Context, market, competitor string) market.DetailResult
	Ask(ctx context.Context, question string, history ...market.ChatTurn) market.ConverseResult
}

type app struct {
	configPath string
	logLevel   string

	loadConfig func(path string) (*config.Config, error)
	newEngine  func(ctx context.Context, cfg *config.Config, log logger.Logger) (querier, func() error, error)
	loadStore  func(ctx context.Context, cfg *config.Config) (*market.TrustedStore, error)
}

func newApp() *app {
	return &app{
		loadConfig: loadConfig,
		newEngine: func(ctx context.Context, cfg *config.Config, log logger.Logger) (querier, func() error, error) {
			engine, err := bootstrap.NewEngine(ctx, cfg, log)
			if err != nil {
				return nil, nil, err
			}
			return engine.Resolver, engine.Close, nil
		},
		loadStore: loadStore,
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

func loadStore(ctx context.Context, cfg *config.Config) (*market.TrustedStore, error) {
	if !cfg.Market.TrustedPostgres {
		return bootstrap.LoadTrustedStore(ctx, cfg.Market, nil)
	}
	pg, err := database.NewPostgres(ctx, cfg.Database.Postgres, 5*time.Second)
	if err != nil {
		return nil, err
	}
	defer pg.Close()
	return bootstrap.LoadTrustedStore(ctx, cfg.Market, pg.DB)
}

func rootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Query the market resolution engine",
		Long: `market-query resolves dental competitor matrices, competitor staff
details and free-form research questions using the same configuration
as the worker manager. Results are printed to stdout as JSON; logs go
to stderr.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		a.matrixCmd(),
		a.detailCmd(),
		a.askCmd(),
		a.marketsCmd(),
		a.activitiesCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
			},
		},
	)

	return cmd
}

func (a *app) matrixCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "matrix <market>",
		Short:   "Resolve the competitor matrix for a market",
		Example: `  market-query matrix "Austin, TX"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(q querier) error {
				res := q.Resolve(cmd.Context(), strings.Join(args, " "))
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				return failureErr("matrix", res.Failure)
			})
		},
	}
}

func (a *app) detailCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "detail <market> <competitor>",
		Short:   "Look up dentists and surgeons for one competitor",
		Example: `  market-query detail "Dallas, TX" "Aspen Dental"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(cmd, func(q querier) error {
				res := q.Detail(cmd.Context(), args[0], args[1])
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				return failureErr("detail", res.Failure)
			})
		},
	}
}

func (a *app) askCmd() *cobra.Command {
	var historyPath string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a grounded research question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, err := readHistory(historyPath)
			if err != nil {
				return err
			}
			return a.withEngine(cmd, func(q querier) error {
				res := q.Ask(cmd.Context(), strings.Join(args, " "), history...)
				if err := writeJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				return failureErr("ask", res.Failure)
			})
		},
	}

	cmd.Flags().StringVar(&historyPath, "history", "", "JSON file with prior turns ([{\"role\":\"user\",\"text\":\"...\"}])")
	return cmd
}

// marketsCmd lists the locked markets. It needs no provider credentials.
func (a *app) marketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markets",
		Short: "List trusted markets and their aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(a.configPath)
			if err != nil {
				return err
			}
			store, err := a.loadStore(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			type entry struct {
				Key         string   `json:"key"`
				DisplayName string   `json:"displayName"`
				Aliases     []string `json:"aliases"`
				Competitors int      `json:"competitors"`
			}
			var out []entry
			for _, t := range store.Tables() {
				aliases := append([]string(nil), t.Aliases...)
				sort.Strings(aliases)
				out = append(out, entry{
					Key:         t.Key,
					DisplayName: t.DisplayName,
					Aliases:     aliases,
					Competitors: len(t.Records),
				})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (a *app) withEngine(cmd *cobra.Command, fn func(querier) error) error {
	cfg, err := a.loadConfig(a.configPath)
	if err != nil {
		return err
	}

	log := logger.NewZapAdapter(logger.NewWithOutput(a.logLevel, "console", "stderr"))

	q, closeFn, err := a.newEngine(cmd.Context(), cfg, log)
	if err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	if closeFn != nil {
		defer closeFn()
	}

	return fn(q)
}

func readHistory(path string) ([]market.ChatTurn, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	var turns []market.ChatTurn
	if err := json.Unmarshal(data, &turns); err != nil {
		return nil, fmt.Errorf("parse history %s: %w", path, err)
	}
	return turns, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func failureErr(op string, kind market.FailureKind) error {
	if kind == market.FailureNone {
		return nil
	}
	return fmt.Errorf("%s failed: %s", op, kind)
}
