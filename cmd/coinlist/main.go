// coinlist prints the top coins by market cap, or one coin's detail view.
// Usage:
//
//	go run ./cmd/coinlist -n 20 -search eth
//	go run ./cmd/coinlist -coin bitcoin -timeframe 7d
//	go run ./cmd/coinlist -watch
//
// COINGECKO_API_KEY is read from the environment or a .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"github.com/rickgao/coin-tracker/internal/api"
	"github.com/rickgao/coin-tracker/internal/config"
	"github.com/rickgao/coin-tracker/internal/detail"
	"github.com/rickgao/coin-tracker/internal/format"
	"github.com/rickgao/coin-tracker/internal/model"
	"github.com/rickgao/coin-tracker/internal/poller"
	"github.com/rickgao/coin-tracker/internal/store"
)

func main() {
	godotenv.Load()

	limit := flag.Int("n", 20, "number of coins to print")
	search := flag.String("search", "", "filter by name or symbol")
	sortKey := flag.String("sort", "", "sort by rank, name, price, change_24h, volume or market_cap")
	desc := flag.Bool("desc", false, "sort descending")
	coin := flag.String("coin", "", "print the detail view of one coin id")
	timeframe := flag.String("timeframe", model.DefaultTimeframe, "history timeframe for -coin")
	watch := flag.Bool("watch", false, "refresh every poll interval until interrupted")
	interval := flag.Duration("interval", config.DefaultPollInterval, "poll interval for -watch")
	baseURL := flag.String("base-url", config.DefaultBaseURL, "market data API base URL")
	apiKey := flag.String("api-key", os.Getenv("COINGECKO_API_KEY"), "optional demo API key")
	verbose := flag.Bool("verbose", false, "log requests")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	key, err := model.ParseSortKey(*sortKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := api.NewClient(*baseURL, *apiKey, api.WithLogger(logger))

	if *coin != "" {
		views := detail.NewService(client, detail.Config{}, logger)
		view, err := views.Load(ctx, *coin, *timeframe)
		if err != nil {
			fmt.Fprintln(os.Stderr, "error:", api.UserMessage(err))
			os.Exit(1)
		}
		printView(os.Stdout, view)
		return
	}

	cfg := store.DefaultConfig()
	cfg.Markets.Sparkline = false
	cfg.DisplayLimit = *limit
	st := store.New(client, cfg, logger)
	st.SetSearchTerm(*search)

	show := func() {
		snap := st.Snapshot()
		if snap.Err != "" {
			fmt.Fprintln(os.Stderr, "error:", snap.Err)
		}
		list := st.Filtered()
		if key != "" {
			list = model.SortInstruments(list, key, *desc)
		}
		printTable(os.Stdout, list, snap.UpdatedAt)
	}

	if !*watch {
		st.Fetch(ctx)
		show()
		if st.Snapshot().Err != "" {
			os.Exit(1)
		}
		return
	}

	unsubscribe := st.Subscribe(func(model.Batch) { show() })
	defer unsubscribe()

	p := poller.New(poller.Config{Interval: *interval, Timeout: config.DefaultPollTimeout}, st, logger)
	if err := p.Start(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	<-ctx.Done()
	p.Stop(context.Background())
}

func printTable(w io.Writer, list []model.Instrument, updated time.Time) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tCOIN\tPRICE\t24H\tMARKET CAP\tVOLUME\t")
	for _, inst := range list {
		rank := "-"
		if inst.MarketCapRank > 0 {
			rank = fmt.Sprint(inst.MarketCapRank)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\t\n",
			rank,
			inst.Name+" ("+inst.Symbol+")",
			format.USD(inst.CurrentPrice),
			format.Arrow(inst.Change24h),
			format.Percent(inst.Change24h),
			format.CompactUSD(inst.MarketCap),
			format.CompactUSD(inst.TotalVolume),
		)
	}
	tw.Flush()

	if !updated.IsZero() {
		fmt.Fprintf(w, "%d coins, updated %s\n", len(list), updated.Local().Format(time.TimeOnly))
	}
}

func printView(w io.Writer, v *detail.View) {
	c, md := v.Coin, v.Coin.MarketData

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s (%s)\t#%d\n", c.Name, c.Symbol, c.MarketCapRank)
	fmt.Fprintf(tw, "Price\t%s\n", format.USD(md.CurrentPrice))
	fmt.Fprintf(tw, "Change (%s)\t%s %s\n", v.Timeframe.Name, format.Arrow(v.Change), format.Percent(v.Change))
	fmt.Fprintf(tw, "24h range\t%s - %s\n", format.USD(md.Low24h), format.USD(md.High24h))
	fmt.Fprintf(tw, "Market cap\t%s\n", format.CompactUSD(md.MarketCap))
	fmt.Fprintf(tw, "Volume\t%s\n", format.CompactUSD(md.TotalVolume))
	fmt.Fprintf(tw, "Circulating\t%s\n", format.Supply(md.CirculatingSupply))
	fmt.Fprintf(tw, "Max supply\t%s\n", format.Supply(md.MaxSupply))
	if len(c.Links.Homepage) > 0 {
		fmt.Fprintf(tw, "Homepage\t%s\n", c.Links.Homepage[0])
	}
	tw.Flush()

	if n := len(v.Chart.Prices); n > 0 {
		first, last := v.Chart.Prices[0], v.Chart.Prices[n-1]
		fmt.Fprintf(w, "%d samples from %s (%s) to %s (%s)\n",
			n,
			first.Time.Local().Format(time.DateTime), format.USD(first.Value),
			last.Time.Local().Format(time.DateTime), format.USD(last.Value),
		)
	}
}
