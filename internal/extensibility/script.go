package extensibility

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/comalice/vendingx/internal/primitives"
)

// ScriptStep is one line of a replay script:
//
//	- op: insert_money
//	  amount: 30
//	- op: select_product
//	  code: A1
type ScriptStep struct {
	Op     primitives.Operation `yaml:"op"`
	Amount int                  `yaml:"amount,omitempty"`
	Code   string               `yaml:"code,omitempty"`
}

// Event converts the step into a machine event.
func (s ScriptStep) Event() primitives.Event {
	return primitives.NewEvent(s.Op, s.Amount, s.Code)
}

// ParseScript decodes a YAML list of steps. Unknown operations are rejected.
func ParseScript(data []byte) ([]primitives.Event, error) {
	var steps []ScriptStep
	if err := yaml.Unmarshal(data, &steps); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	events := make([]primitives.Event, 0, len(steps))
	for i, s := range steps {
		if !s.Op.Valid() {
			return nil, fmt.Errorf("step %d: unknown operation %q", i+1, s.Op)
		}
		events = append(events, s.Event())
	}
	return events, nil
}

// ScriptEventSource replays a fixed list of events and then closes.
type ScriptEventSource struct {
	ch chan primitives.Event
}

// NewScriptEventSource creates a source that yields events in order.
func NewScriptEventSource(events []primitives.Event) *ScriptEventSource {
	ch := make(chan primitives.Event, len(events))
	for _, evt := range events {
		ch <- evt
	}
	close(ch)
	return &ScriptEventSource{ch: ch}
}

// LoadScriptFile reads a YAML script from path.
func LoadScriptFile(path string) (*ScriptEventSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	events, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewScriptEventSource(events), nil
}

// Events returns the event channel.
func (s *ScriptEventSource) Events() <-chan primitives.Event {
	return s.ch
}
