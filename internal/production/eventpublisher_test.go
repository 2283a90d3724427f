// Tests for ChannelPublisher and LoggingPublisher delivery and Machine integration.
package production

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan PublishedEvent, 10)
	p := NewChannelPublisher(ch)

	event := primitives.InsertMoney(30)
	meta := core.TransitionMetadata{
		MachineID:  "test-machine",
		Transition: "idle -> has_money",
		Timestamp:  time.Now(),
	}

	if err := p.Publish(context.Background(), event, meta); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got.Event != event {
			t.Errorf("Event mismatch: got %+v, want %+v", got.Event, event)
		}
		if got.Metadata.MachineID != meta.MachineID {
			t.Errorf("Metadata MachineID mismatch: got %q, want %q", got.Metadata.MachineID, meta.MachineID)
		}
		if got.Metadata.Transition != meta.Transition {
			t.Errorf("Metadata Transition mismatch: got %q, want %q", got.Metadata.Transition, meta.Transition)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan PublishedEvent, 1)
	p := NewChannelPublisher(ch)
	ch <- PublishedEvent{} // Fill buffer

	err := p.Publish(context.Background(), primitives.RefillProducts(), core.TransitionMetadata{MachineID: "test"})
	if err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if len(ch) != 1 {
		t.Errorf("expected the extra event to be dropped, channel has %d", len(ch))
	}
}

func TestChannelPublisher_CloseIsIdempotent(t *testing.T) {
	ch := make(chan PublishedEvent, 1)
	p := NewChannelPublisher(ch)

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if err := p.Publish(context.Background(), primitives.RefillProducts(), core.TransitionMetadata{}); err != nil {
		t.Errorf("Publish after Close failed: %v", err)
	}
	if _, open := <-ch; open {
		t.Error("expected channel to be closed")
	}
}

func TestChannelPublisher_MachineIntegration(t *testing.T) {
	ch := make(chan PublishedEvent, 10)
	m, err := core.NewMachine(primitives.DefaultCatalog("vm-pub"), core.WithPublisher(NewChannelPublisher(ch)))
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if _, err := m.InsertMoney(ctx, 30); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SelectProduct(ctx, "A1"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.SelectProduct(ctx, "A1"); err == nil {
		t.Fatal("expected rejection in idle")
	}
	if err := m.Close(); err != nil {
		t.Fatal(err)
	}

	var got []PublishedEvent
	for pe := range ch {
		got = append(got, pe)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 published events (rejections are not published), got %d", len(got))
	}
	if got[0].Metadata.Transition != "idle -> has_money" {
		t.Errorf("first transition: got %q", got[0].Metadata.Transition)
	}
	sale := got[1].Metadata
	if sale.Transition != "has_money -> idle" {
		t.Errorf("sale transition: got %q", sale.Transition)
	}
	if sale.Outcome.Change != 5 || !sale.Outcome.Dispensed() {
		t.Errorf("sale outcome: %+v", sale.Outcome)
	}
	if sale.TransactionID == "" || sale.TransactionID != got[0].Metadata.TransactionID {
		t.Errorf("transaction IDs should match: %q vs %q", got[0].Metadata.TransactionID, sale.TransactionID)
	}
}

func TestLoggingPublisher_Fields(t *testing.T) {
	obsCore, logs := observer.New(zapcore.InfoLevel)
	p := NewLoggingPublisher(zap.New(obsCore))

	coke := primitives.NewProduct("A1", "Coke", 25)
	meta := core.TransitionMetadata{
		MachineID:     "vm-log",
		Transition:    "has_money -> idle",
		TransactionID: "tx-1",
		Outcome: core.Outcome{
			Operation: primitives.OpSelectProduct,
			Product:   &coke,
			Change:    5,
			Message:   "Dispensing Coke",
		},
		Timestamp: time.Now(),
	}
	if err := p.Publish(context.Background(), primitives.SelectProduct("A1"), meta); err != nil {
		t.Fatal(err)
	}

	entries := logs.FilterLoggerName("transitions").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Message != "Dispensing Coke" {
		t.Errorf("message: got %q", entries[0].Message)
	}
	if fields["product"] != "A1" || fields["tx_id"] != "tx-1" || fields["change"] != int64(5) {
		t.Errorf("unexpected fields: %v", fields)
	}
	if _, ok := fields["returned"]; ok {
		t.Error("returned should be omitted when zero")
	}
}

func TestLoggingPublisher_NilLogger(t *testing.T) {
	p := NewLoggingPublisher(nil)
	if err := p.Publish(context.Background(), primitives.RefillProducts(), core.TransitionMetadata{}); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
}
