// Package extensibility feeds external events into a Machine: channel-backed,
// scheduled, and scripted event sources, plus the Pump that drains them.
package extensibility

import (
	"time"

	"github.com/comalice/vendingx/internal/primitives"
)

// EventSource delivers events until its channel is closed.
type EventSource interface {
	Events() <-chan primitives.Event
}

// ChannelEventSource is an EventSource implementation backed by a Go channel.
// Provides a simple way to feed external events into the Machine via Send().
type ChannelEventSource struct {
	ch chan primitives.Event
}

// NewChannelEventSource creates a new ChannelEventSource with the given channel.
// The channel should be buffered if backpressure handling is needed.
func NewChannelEventSource(ch chan primitives.Event) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// Events returns the receive-only channel for events.
func (s *ChannelEventSource) Events() <-chan primitives.Event {
	return s.ch
}

// Send queues an event. It blocks while the channel is full.
func (s *ChannelEventSource) Send(evt primitives.Event) {
	s.ch <- evt
}

// Close ends the stream.
func (s *ChannelEventSource) Close() {
	close(s.ch)
}

// TimerEventSource emits the same event every period, e.g. a scheduled restock.
type TimerEventSource struct {
	ch     chan primitives.Event
	evt    primitives.Event
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTimerEventSource creates a TimerEventSource that emits evt every d.
func NewTimerEventSource(evt primitives.Event, d time.Duration) *TimerEventSource {
	t := &TimerEventSource{
		ch:     make(chan primitives.Event, 10),
		evt:    evt,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerEventSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- t.evt:
			default:
				// drop if full
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel.
func (t *TimerEventSource) Events() <-chan primitives.Event {
	return t.ch
}

// Stop stops the ticker and closes the channel.
func (t *TimerEventSource) Stop() {
	close(t.stop)
}
