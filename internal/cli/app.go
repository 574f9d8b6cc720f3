package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"github.com/kaanzapkinus/assetstracker/internal/domain"
	"github.com/kaanzapkinus/assetstracker/internal/usecase/dashboard"
)

// Service is the dashboard behaviour the commands drive
type Service interface {
	AddAsset(ctx context.Context, input dashboard.AddAssetInput) (*domain.Lot, error)
	RemoveLot(ctx context.Context, id string) error
	RemovePosition(ctx context.Context, symbol string) (int, error)
	Clear(ctx context.Context) int
	Refresh(ctx context.Context) error
	Lots() []domain.Lot
	View(tf domain.Timeframe, insight domain.InsightView) dashboard.View
}

// App carries what every subcommand needs
type App struct {
	Service Service
	Out     io.Writer
	Err     io.Writer
	Logger  *zap.Logger
	Width   int // Word wrap for rendered markdown
}

// NewApp creates an App writing to stdout and stderr
func NewApp(svc Service, logger *zap.Logger) *App {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		Service: svc,
		Out:     os.Stdout,
		Err:     os.Stderr,
		Logger:  logger,
		Width:   100,
	}
}

// Register the subcommands.
func Register(c *subcommands.Commander, app *App) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&addCmd{app: app}, "portfolio")
	c.Register(&removeCmd{app: app}, "portfolio")
	c.Register(&clearCmd{app: app}, "portfolio")
	c.Register(&lotsCmd{app: app}, "portfolio")

	c.Register(&showCmd{app: app}, "reports")
	c.Register(&symbolsCmd{app: app}, "reports")
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.Out, format, args...)
}

func (a *App) errorf(format string, args ...interface{}) {
	fmt.Fprintf(a.Err, format, args...)
}
