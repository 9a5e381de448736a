package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"

	"MarketForecast/internal/calculator"
	"MarketForecast/internal/dataset"
	"MarketForecast/internal/model"
	"MarketForecast/internal/series"
)

type inspectCmd struct {
	common
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "summarize each symbol's series without fitting" }
func (*inspectCmd) Usage() string {
	return `forecast inspect [-config <path>] [-symbols AAPL,MSFT]

  Prints row counts, date span and indicators per configured symbol.
`
}

func (c *inspectCmd) SetFlags(f *flag.FlagSet) { c.common.setFlags(f) }

func (c *inspectCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := c.load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	table, err := dataset.Load(cfg.Dataset.Path, cfg.Dataset.Format, cfg.Dataset.Sheet)
	if err != nil {
		return exitStatus(err)
	}
	inspect(os.Stdout, table, cfg.Forecast.Symbols, cfg.Forecast.MinPoints)
	return subcommands.ExitSuccess
}

// inspect writes one row per symbol. Status mirrors what a run would do.
func inspect(w io.Writer, table *model.PriceTable, symbols []string, minPoints int) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SYMBOL\tROWS\tPOINTS\tFIRST\tLAST\tCLOSE\tSMA200\t52W LOW\t52W HIGH\tRSI14\tSTATUS")
	for _, sym := range symbols {
		selected := series.Select(table, sym)
		if selected.Empty() {
			fmt.Fprintf(tw, "%s\t0\t-\t-\t-\t-\t-\t-\t-\t-\t%s\n", sym, model.StatusSkippedEmpty)
			continue
		}
		rows := humanize.Comma(int64(len(selected.Records)))
		ns, err := series.Normalize(selected)
		if err != nil {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t-\t-\t-\t-\t%s: %v\n", sym, rows, model.StatusFailed, err)
			continue
		}
		status := "ok"
		if ns.Len() < minPoints {
			status = string(model.StatusSkippedShort)
		}
		st := calculator.Summarize(ns)
		first, last := "-", "-"
		if ns.Dated {
			first, last = st.First.Format("2006-01-02"), st.Last.Format("2006-01-02")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.1f\t%s\n",
			sym, rows, humanize.Comma(int64(ns.Len())), first, last,
			st.LastClose, st.SMA200, st.Low52w, st.High52w, st.RSI14, status)
	}
	tw.Flush()
}
