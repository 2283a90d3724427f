package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/comalice/vendingx/internal/config"
	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/extensibility"
	"github.com/comalice/vendingx/internal/primitives"
	"github.com/comalice/vendingx/internal/production"
)

type scenario struct {
	title         string
	events        []primitives.Event
	showInventory bool
}

// scenarios replays the classic vending walkthrough.
var scenarios = []scenario{
	{title: "Successful Purchase", events: []primitives.Event{
		primitives.InsertMoney(30),
		primitives.SelectProduct("A1"),
	}},
	{title: "Insufficient Funds", events: []primitives.Event{
		primitives.InsertMoney(20),
		primitives.SelectProduct("B2"),
		primitives.InsertMoney(15),
		primitives.SelectProduct("B2"),
	}},
	{title: "Cancel Transaction", events: []primitives.Event{
		primitives.InsertMoney(50),
		primitives.CancelTransaction(),
	}},
	{title: "Invalid Product Code", events: []primitives.Event{
		primitives.InsertMoney(30),
		primitives.SelectProduct("Z9"),
		primitives.CancelTransaction(),
	}},
	{title: "Depleting Stock", showInventory: true, events: []primitives.Event{
		primitives.InsertMoney(25), primitives.SelectProduct("A2"),
		primitives.InsertMoney(25), primitives.SelectProduct("A2"),
		primitives.InsertMoney(25), primitives.SelectProduct("A2"),
		primitives.InsertMoney(25), primitives.SelectProduct("A2"),
	}},
	{title: "Out of Stock", events: []primitives.Event{
		primitives.InsertMoney(25),
	}},
	{title: "Refill Products", showInventory: true, events: []primitives.Event{
		primitives.RefillProducts(),
	}},
	{title: "Purchase After Refill", events: []primitives.Event{
		primitives.InsertMoney(20),
		primitives.SelectProduct("B1"),
	}},
	{title: "Invalid Operations", events: []primitives.Event{
		primitives.SelectProduct("A1"),
		primitives.DispenseProduct(),
		primitives.CancelTransaction(),
	}},
}

// demoCodes lists the products the built-in scenarios buy. Z9 is left out on
// purpose since that scenario expects an unknown code.
var demoCodes = []string{"A1", "A2", "B1", "B2"}

// checkScenarioCatalog ensures a custom catalog can run the built-in scenarios.
func checkScenarioCatalog(catalog primitives.CatalogConfig) error {
	for _, code := range demoCodes {
		if _, err := catalog.FindProduct(code); err != nil {
			return fmt.Errorf("built-in scenarios need %s, set VENDING_SCRIPT_FILE for this catalog: %w", code, err)
		}
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vending demo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var cfg config.Config
	if err := config.Load(&cfg); err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	opts := []core.Option{
		core.WithLogger(logger),
		core.WithPublisher(production.NewLoggingPublisher(logger)),
		core.WithVisualizer(&production.DefaultVisualizer{}),
	}
	if cfg.DeferredDispense {
		opts = append(opts, core.WithDeferredDispense())
	}
	if cfg.SnapshotDir != "" {
		persister, err := newPersister(cfg)
		if err != nil {
			return err
		}
		opts = append(opts, core.WithPersister(persister))
	}

	m, err := core.NewMachine(catalog, opts...)
	if err != nil {
		return err
	}
	defer m.Close()

	if _, err := m.Resume(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	fmt.Println("=== VENDING MACHINE DEMO ===")
	fmt.Println()
	printInventory(m)

	applier := extensibility.NewLoggingApplier(m, logger.Named("pump"))
	if cfg.ScriptFile != "" {
		src, err := extensibility.LoadScriptFile(cfg.ScriptFile)
		if err != nil {
			return err
		}
		if err := pump(ctx, src, applier, cfg.DeferredDispense); err != nil {
			return err
		}
	} else {
		if err := checkScenarioCatalog(catalog); err != nil {
			return err
		}
		for i, sc := range scenarios {
			fmt.Printf("--- Scenario %d: %s ---\n", i+1, sc.title)
			if err := pump(ctx, extensibility.NewScriptEventSource(sc.events), applier, cfg.DeferredDispense); err != nil {
				return err
			}
			if sc.showInventory {
				printInventory(m)
			}
			fmt.Println()
		}
	}

	printInventory(m)
	fmt.Println("DOT:\n" + m.Visualize())
	logger.Info("demo completed",
		zap.String("mode", string(m.Mode())),
		zap.Int("balance", m.Balance()),
	)
	return nil
}

// pump replays src and prints every result. In deferred mode a successful
// selection is followed by the matching dispense.
func pump(ctx context.Context, src extensibility.EventSource, applier extensibility.Applier, deferred bool) error {
	return extensibility.Pump(ctx, src, applier, func(evt primitives.Event, out core.Outcome, err error) {
		if err != nil {
			fmt.Printf("  %s: %v\n", evt.Op, err)
			return
		}
		fmt.Printf("  %s\n", out.Message)
		if deferred && out.To == primitives.Dispensing {
			done, err := applier.Apply(ctx, primitives.DispenseProduct())
			if err != nil {
				fmt.Printf("  %s: %v\n", primitives.OpDispenseProduct, err)
				return
			}
			fmt.Printf("  %s\n", done.Message)
		}
	})
}

func newPersister(cfg config.Config) (core.Persister, error) {
	if cfg.SnapshotFormat == "json" {
		return production.NewJSONPersister(cfg.SnapshotDir)
	}
	return production.NewYAMLPersister(cfg.SnapshotDir)
}

func printInventory(m *core.Machine) {
	fmt.Print(production.FormatInventory(m.Products(), m.Inventory()))
	fmt.Println()
}
