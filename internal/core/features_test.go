package core_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/cucumber/godog"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

var errorsByName = map[string]error{
	"invalid amount":        core.ErrInvalidAmount,
	"machine unavailable":   core.ErrMachineUnavailable,
	"operation in progress": core.ErrOperationInProgress,
	"no funds inserted":     core.ErrNoFundsInserted,
	"unknown product":       core.ErrUnknownProduct,
	"out of stock":          core.ErrOutOfStock,
	"insufficient funds":    core.ErrInsufficientFunds,
	"nothing to dispense":   core.ErrNothingToDispense,
	"no active transaction": core.ErrNoActiveTransaction,
	"cannot cancel now":     core.ErrCannotCancelNow,
	"cannot refill now":     core.ErrCannotRefillNow,
}

type vendingTestContext struct {
	machine *core.Machine
	outcome core.Outcome
	err     error
}

func (v *vendingTestContext) reset() {
	v.machine = nil
	v.outcome = core.Outcome{}
	v.err = nil
}

func (v *vendingTestContext) record(out core.Outcome, err error) {
	v.outcome, v.err = out, err
}

func (v *vendingTestContext) aMachineWithProducts(table *godog.Table) error {
	if len(table.Rows) < 2 {
		return errors.New("product table needs a header and at least one row")
	}
	b := primitives.NewCatalogBuilder("feature-vm")
	for _, row := range table.Rows[1:] {
		if len(row.Cells) != 4 {
			return fmt.Errorf("expected 4 cells, got %d", len(row.Cells))
		}
		price, err := strconv.Atoi(row.Cells[2].Value)
		if err != nil {
			return err
		}
		qty, err := strconv.Atoi(row.Cells[3].Value)
		if err != nil {
			return err
		}
		b.Product(row.Cells[0].Value, row.Cells[1].Value, price, qty)
	}
	catalog, err := b.Build()
	if err != nil {
		return err
	}
	v.machine, err = core.NewMachine(catalog)
	return err
}

func (v *vendingTestContext) iInsert(amount int) error {
	v.record(v.machine.InsertMoney(context.Background(), amount))
	return nil
}

func (v *vendingTestContext) iSelect(code string) error {
	v.record(v.machine.SelectProduct(context.Background(), code))
	return nil
}

func (v *vendingTestContext) iDispense() error {
	v.record(v.machine.DispenseProduct(context.Background()))
	return nil
}

func (v *vendingTestContext) iCancelTheTransaction() error {
	v.record(v.machine.CancelTransaction(context.Background()))
	return nil
}

func (v *vendingTestContext) iRefillTheMachine() error {
	v.record(v.machine.RefillProducts(context.Background()))
	return v.err
}

func (v *vendingTestContext) iBuyTimesPaying(code string, times, amount int) error {
	ctx := context.Background()
	for i := 0; i < times; i++ {
		if _, err := v.machine.InsertMoney(ctx, amount); err != nil {
			return fmt.Errorf("purchase %d of %s: %w", i+1, code, err)
		}
		if _, err := v.machine.SelectProduct(ctx, code); err != nil {
			return fmt.Errorf("purchase %d of %s: %w", i+1, code, err)
		}
	}
	return nil
}

func (v *vendingTestContext) theModeIs(mode string) error {
	if got := v.machine.Mode(); string(got) != mode {
		return fmt.Errorf("expected mode %s, got %s", mode, got)
	}
	return nil
}

func (v *vendingTestContext) theBalanceIs(balance int) error {
	if got := v.machine.Balance(); got != balance {
		return fmt.Errorf("expected balance %d, got %d", balance, got)
	}
	return nil
}

func (v *vendingTestContext) theChangeIs(change int) error {
	if v.err != nil {
		return fmt.Errorf("expected a sale, got error: %w", v.err)
	}
	if !v.outcome.Dispensed() {
		return errors.New("expected a product to be dispensed")
	}
	if v.outcome.Change != change {
		return fmt.Errorf("expected change %d, got %d", change, v.outcome.Change)
	}
	return nil
}

func (v *vendingTestContext) isReturned(amount int) error {
	if v.err != nil {
		return fmt.Errorf("expected a refund, got error: %w", v.err)
	}
	if v.outcome.Returned != amount {
		return fmt.Errorf("expected %d returned, got %d", amount, v.outcome.Returned)
	}
	return nil
}

func (v *vendingTestContext) theStockOfIs(code string, qty int) error {
	got, ok := v.machine.Stock(code)
	if !ok {
		return fmt.Errorf("unknown product %s", code)
	}
	if got != qty {
		return fmt.Errorf("expected stock %d for %s, got %d", qty, code, got)
	}
	return nil
}

func (v *vendingTestContext) everyProductHasInStock(qty int) error {
	for code, got := range v.machine.Inventory() {
		if got != qty {
			return fmt.Errorf("expected stock %d for %s, got %d", qty, code, got)
		}
	}
	return nil
}

func (v *vendingTestContext) theErrorIs(name string) error {
	target, ok := errorsByName[name]
	if !ok {
		return fmt.Errorf("unknown error name %q", name)
	}
	if !errors.Is(v.err, target) {
		return fmt.Errorf("expected error %q, got %v", name, v.err)
	}
	return nil
}

func (v *vendingTestContext) theErrorIsInsufficientFundsShortBy(shortfall int) error {
	var funds *core.InsufficientFundsError
	if !errors.As(v.err, &funds) {
		return fmt.Errorf("expected insufficient funds, got %v", v.err)
	}
	if funds.Shortfall != shortfall {
		return fmt.Errorf("expected shortfall %d, got %d", shortfall, funds.Shortfall)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &vendingTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a machine with products:$`, tc.aMachineWithProducts)

	// When steps
	ctx.Step(`^I insert (-?\d+)$`, tc.iInsert)
	ctx.Step(`^I select "([^"]*)"$`, tc.iSelect)
	ctx.Step(`^I dispense$`, tc.iDispense)
	ctx.Step(`^I cancel the transaction$`, tc.iCancelTheTransaction)
	ctx.Step(`^I refill the machine$`, tc.iRefillTheMachine)
	ctx.Step(`^I buy "([^"]*)" (\d+) times paying (\d+)$`, tc.iBuyTimesPaying)

	// Then steps
	ctx.Step(`^the mode is "([^"]*)"$`, tc.theModeIs)
	ctx.Step(`^the balance is (\d+)$`, tc.theBalanceIs)
	ctx.Step(`^the change is (\d+)$`, tc.theChangeIs)
	ctx.Step(`^(\d+) is returned$`, tc.isReturned)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^every product has (\d+) in stock$`, tc.everyProductHasInStock)
	ctx.Step(`^the error is "([^"]*)"$`, tc.theErrorIs)
	ctx.Step(`^the error is insufficient funds short by (\d+)$`, tc.theErrorIsInsufficientFundsShortBy)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features/vending.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
