package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/pfrederiksen/cfp-search/internal/config"
	"github.com/pfrederiksen/cfp-search/internal/event"
	"github.com/pfrederiksen/cfp-search/internal/fetch"
	"github.com/pfrederiksen/cfp-search/internal/filter"
	"github.com/pfrederiksen/cfp-search/internal/logger"
	"github.com/pfrederiksen/cfp-search/internal/metrics"
	"github.com/pfrederiksen/cfp-search/internal/reference"
	"github.com/pfrederiksen/cfp-search/internal/scraper"
	"github.com/pfrederiksen/cfp-search/internal/search"
	"github.com/pfrederiksen/cfp-search/internal/web"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagVerbose bool
	flagYear    string
	flagTypes   []string
	flagRegions []string
	flagFormat  string
	flagSort    string
	flagListen  string
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cfp-search",
		Short: "Search WikiCFP for calls for papers",
		Long: `A tool to search WikiCFP for conferences, workshops and journals.
Results are enriched with the country, world region and external CFP link of each event,
and can be filtered by event type and region.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")

	cmd.AddCommand(newSearchCmd(), newServeCmd())

	return cmd
}

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search KEYWORD...",
		Short: "Run one search and print the results",
		Long: `Run one search and print the results.
Several keywords can be given separated by commas, e.g. "machine learning, databases".`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().StringVar(&flagYear, "year", "", "Year filter: this year, next year, this year onwards (e.g. 2026+) or all")
	cmd.Flags().StringSliceVar(&flagTypes, "type", nil, "Event types: Conference, Workshop, Journal (default from config)")
	cmd.Flags().StringSliceVar(&flagRegions, "region", nil, "Regions: Asia, Europe, Africa, Oceania, Americas, Undefined (default from config)")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text, json, csv, html or ics")
	cmd.Flags().StringVar(&flagSort, "sort", "none", "Sort order: none, deadline, start or name")

	return cmd
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser search UI",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().StringVar(&flagListen, "listen", "", "Listen address (default from config)")

	return cmd
}

// loadConfig reads the config file and configures the default logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if flagVerbose {
		level = logger.LevelDebug
	}
	logger.SetDefault(logger.New(level, os.Stderr))

	return cfg, nil
}

// newService wires the fetch client, reference loader and scraper from cfg
func newService(cfg *config.Config, m *metrics.Metrics, cache *scraper.LinkCache) *search.Service {
	client := fetch.New(fetch.Options{
		Timeout:   cfg.Timeout,
		UserAgent: cfg.UserAgent,
		Retries:   cfg.Retries,
		Metrics:   m,
	})

	sc := scraper.New(client, scraper.Options{
		SearchURL: cfg.SearchURL,
		SiteURL:   cfg.SiteURL,
		Workers:   cfg.Workers,
		LinkCache: cache,
	})

	return search.NewService(reference.NewLoader(client, cfg.ReferenceURL), sc, m)
}

// buildFilter starts from the configured defaults and replaces whatever the flags set
func buildFilter(cfg *config.Config, cmd *cobra.Command) (*filter.Filter, error) {
	f, err := cfg.Filter()
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("type") {
		f.Types = []event.Type{}
		for _, s := range flagTypes {
			t, err := event.ParseType(s)
			if err != nil {
				return nil, err
			}
			f.Types = append(f.Types, t)
		}
	}

	if cmd.Flags().Changed("region") {
		f.Regions = []string{}
		for _, s := range flagRegions {
			r, err := filter.ParseRegion(s)
			if err != nil {
				return nil, err
			}
			f.Regions = append(f.Regions, r)
		}
	}

	return f, nil
}

// runSearch is the search command logic
func runSearch(cmd *cobra.Command, args []string) error {
	format, err := ParseOutputFormat(strings.ToLower(flagFormat))
	if err != nil {
		return err
	}
	order, err := ParseSortOrder(flagSort)
	if err != nil {
		return err
	}
	year, err := scraper.ParseYearFilter(flagYear, time.Now())
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	f, err := buildFilter(cfg, cmd)
	if err != nil {
		return err
	}

	q := scraper.Query{
		Keyword: strings.Join(args, " "),
		Year:    year,
	}

	if flagVerbose {
		fmt.Fprintf(os.Stderr, "Searching %s\n", q.URL(cfg.SearchURL))
		fmt.Fprintf(os.Stderr, "Filter: %s\n", f)
	}

	result, err := newService(cfg, nil, nil).Search(cmd.Context(), q, f)
	if err != nil {
		var upstream *search.UpstreamError
		if errors.As(err, &upstream) {
			return fmt.Errorf("%w (the search can be retried)", err)
		}
		return fmt.Errorf("searching: %w", err)
	}

	sortEvents(result.Events, order)

	if err := WriteOutput(cmd.OutOrStdout(), result, format, flagVerbose); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// runServe is the serve command logic
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	defaults, err := cfg.Filter()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var cache *scraper.LinkCache
	if cfg.LinkCacheTTL > 0 {
		cache = scraper.NewLinkCache(cfg.LinkCacheTTL)
	}

	srv := web.New(newService(cfg, m, cache), web.Options{
		Defaults: defaults,
		Gatherer: reg,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx, cfg.Listen)
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
