package extensibility

import (
	"testing"
	"time"

	"github.com/comalice/vendingx/internal/primitives"
)

func TestChannelEventSource(t *testing.T) {
	ch := make(chan primitives.Event, 2)
	s := NewChannelEventSource(ch)

	s.Send(primitives.InsertMoney(10))
	s.Close()

	ev, ok := <-s.Events()
	if !ok || ev != primitives.InsertMoney(10) {
		t.Errorf("wrong event: %+v", ev)
	}
	if _, ok := <-s.Events(); ok {
		t.Error("expected closed channel")
	}
}

func TestTimerEventSource(t *testing.T) {
	s := NewTimerEventSource(primitives.RefillProducts(), 50*time.Millisecond)
	defer s.Stop()

	for i := 0; i < 2; i++ {
		select {
		case ev := <-s.Events():
			if ev.Op != primitives.OpRefillProducts {
				t.Errorf("event %d: wrong op %q", i, ev.Op)
			}
		case <-time.After(200 * time.Millisecond):
			t.Fatalf("event %d not received", i)
		}
	}
}

func TestTimerEventSource_Stop(t *testing.T) {
	s := NewTimerEventSource(primitives.RefillProducts(), 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond) // let some events
	s.Stop()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-s.Events():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after Stop")
		}
	}
}
