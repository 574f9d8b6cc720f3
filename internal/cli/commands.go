package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"strings"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/render"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

// addCmd records a purchase lot.
type addCmd struct {
	app *App
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a purchase lot after checking the symbol has a quote" }
func (*addCmd) Usage() string {
	return `add <symbol> <amount> <unit-cost>

  Records <amount> units of <symbol> bought at <unit-cost> USD each.
  The symbol is looked up on the quote API first; unknown symbols are rejected.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 3 {
		c.app.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}

	input := dashboard.AddAssetInput{Symbol: f.Arg(0), Amount: f.Arg(1), Cost: f.Arg(2)}
	lot, err := c.app.Service.AddAsset(ctx, input)
	if err != nil {
		c.app.Logger.Debug("add asset failed", zap.Error(err))
		c.app.errorf("Error: %s\n", dashboard.AddErrorMessage(err))
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			c.app.errorf("  %s\n", validationErr.Error())
			return subcommands.ExitUsageError
		}
		return subcommands.ExitFailure
	}

	c.app.printf("%s (lot %s)\n", dashboard.AddedMessage(lot.Symbol), lot.ID)
	return subcommands.ExitSuccess
}

// removeCmd removes a whole position or a single lot.
type removeCmd struct {
	app *App
	id  string
}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove every lot of a symbol, or one lot by id" }
func (*removeCmd) Usage() string {
	return `remove <symbol> | remove -id <lot-id>

  Removes all lots held for <symbol>, or only the lot with the given id (see 'lots').
`
}

func (c *removeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.id, "id", "", "remove only the lot with this id")
}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.id != "" {
		if err := c.app.Service.RemoveLot(ctx, c.id); err != nil {
			c.app.errorf("Error: no lot with id %s\n", c.id)
			return subcommands.ExitFailure
		}
		c.app.printf("Lot %s removed.\n", c.id)
		return subcommands.ExitSuccess
	}

	if f.NArg() != 1 {
		c.app.errorf("%s", c.Usage())
		return subcommands.ExitUsageError
	}

	symbol := domain.NormalizeSymbol(f.Arg(0))
	removed, err := c.app.Service.RemovePosition(ctx, symbol)
	if err != nil {
		c.app.errorf("Error: %s is not in your portfolio\n", symbol)
		return subcommands.ExitFailure
	}
	c.app.printf("%s removed from your portfolio (%d lots).\n", symbol, removed)
	return subcommands.ExitSuccess
}

// clearCmd empties the ledger.
type clearCmd struct {
	app *App
}

func (*clearCmd) Name() string             { return "clear" }
func (*clearCmd) Synopsis() string         { return "remove every lot" }
func (*clearCmd) Usage() string            { return "clear\n\n  Removes every lot from the portfolio.\n" }
func (c *clearCmd) SetFlags(*flag.FlagSet) {}

func (c *clearCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.app.Service.Clear(ctx) == 0 {
		c.app.printf("%s\n", render.EmptyPositionsMessage)
		return subcommands.ExitSuccess
	}
	c.app.printf("%s\n", dashboard.ClearedMessage)
	return subcommands.ExitSuccess
}

// lotsCmd lists the raw ledger.
type lotsCmd struct {
	app *App
}

func (*lotsCmd) Name() string             { return "lots" }
func (*lotsCmd) Synopsis() string         { return "list purchase lots with their ids" }
func (*lotsCmd) Usage() string            { return "lots\n\n  Lists every lot in insertion order.\n" }
func (c *lotsCmd) SetFlags(*flag.FlagSet) {}

func (c *lotsCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	lots := c.app.Service.Lots()
	if len(lots) == 0 {
		c.app.printf("%s\n", render.EmptyPositionsMessage)
		return subcommands.ExitSuccess
	}
	for _, lot := range lots {
		c.app.printf("%s  %-6s %s @ %s\n", lot.ID, lot.Symbol, lot.Amount.String(), render.Price(lot.Cost))
	}
	return subcommands.ExitSuccess
}

// showCmd prints the dashboard.
type showCmd struct {
	app       *App
	timeframe string
	insight   string
	format    string
	offline   bool
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "display positions, totals, timeline, allocation and trending" }
func (*showCmd) Usage() string {
	return `show [-t 1h|24h|7d] [-v markets|timeline|allocation] [-format markdown|text|json] [-offline]

  Fetches fresh quotes and prints the portfolio dashboard.
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.timeframe, "t", string(domain.Timeframe24h), "timeline window")
	f.StringVar(&c.insight, "v", string(domain.InsightMarkets), "insight panel for text output")
	f.StringVar(&c.format, "format", "markdown", "output format: markdown, text or json")
	f.BoolVar(&c.offline, "offline", false, "skip the quote refresh")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	tf, err := domain.ParseTimeframe(c.timeframe)
	if err != nil {
		c.app.errorf("Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	insight, err := domain.ParseInsightView(c.insight)
	if err != nil {
		c.app.errorf("Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	if !c.offline {
		// The dashboard still renders from whatever is cached
		if err := c.app.Service.Refresh(ctx); err != nil {
			c.app.errorf("Warning: %s\n", dashboard.RefreshErrorMessage(err))
		}
	}

	view := c.app.Service.View(tf, insight)

	switch strings.ToLower(c.format) {
	case "json":
		enc := json.NewEncoder(c.app.Out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(view); err != nil {
			c.app.errorf("Error encoding dashboard: %v\n", err)
			return subcommands.ExitFailure
		}
	case "text":
		c.app.printf("%s\n", textReport(view, c.app.Width))
	case "markdown", "md":
		out, err := render.RenderMarkdown(render.Markdown(view), "", c.app.Width)
		if err != nil {
			c.app.errorf("Error rendering report: %v\n", err)
			return subcommands.ExitFailure
		}
		c.app.printf("%s", out)
	default:
		c.app.errorf("Error: unknown format %q\n", c.format)
		return subcommands.ExitUsageError
	}

	return subcommands.ExitSuccess
}

func textReport(view dashboard.View, width int) string {
	sections := []string{
		render.LastUpdated(view.LastUpdated),
		render.Metrics(view.Totals),
		render.PositionsTable(view.Positions),
		render.PnLBars(view.Positions, width/2),
	}
	switch view.Insight {
	case domain.InsightTimeline:
		sections = append(sections, render.Timeline(view.Timeline))
	case domain.InsightAllocation:
		sections = append(sections, render.Allocation(view.Allocation, view.AllocationPlaceholder, width/2))
	default:
		sections = append(sections, render.TrendingTable(view.Trending, view.TrendingPlaceholder))
	}
	return strings.Join(sections, "\n\n")
}

// symbolsCmd searches the built-in symbol library.
type symbolsCmd struct {
	app *App
}

func (*symbolsCmd) Name() string             { return "symbols" }
func (*symbolsCmd) Synopsis() string         { return "suggest symbols from the built-in library" }
func (*symbolsCmd) Usage() string            { return "symbols [query]\n\n  Lists up to 8 symbols matching the query.\n" }
func (c *symbolsCmd) SetFlags(*flag.FlagSet) {}

func (c *symbolsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	matches := domain.MatchSymbols(strings.Join(f.Args(), " "))
	if len(matches) == 0 {
		c.app.printf("No matching symbols.\n")
		return subcommands.ExitSuccess
	}
	for _, match := range matches {
		c.app.printf("%-6s %s\n", match.Symbol, match.Name)
	}
	return subcommands.ExitSuccess
}
