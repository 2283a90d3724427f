// Package production provides production integrations: snapshot persistence,
// transition publishing, and visualization of the vending machine.
package production

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/comalice/vendingx/internal/core"
	"github.com/comalice/vendingx/internal/primitives"
)

// JSONPersister is a file-based persister writing one <machineID>.json per machine.
type JSONPersister struct {
	dir string
}

// NewJSONPersister creates a JSONPersister, ensuring the directory exists.
func NewJSONPersister(dir string) (*JSONPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &JSONPersister{dir: dir}, nil
}

func (p *JSONPersister) Save(ctx context.Context, snapshot core.MachineSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	return writeSnapshot(p.dir, snapshot.MachineID, ".json", data)
}

func (p *JSONPersister) Load(ctx context.Context, machineID string) (core.MachineSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.MachineSnapshot{}, err
	}
	data, err := readSnapshot(p.dir, machineID, ".json")
	if err != nil {
		return core.MachineSnapshot{}, err
	}

	var snapshot core.MachineSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return core.MachineSnapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	snapshot.MachineID = machineID
	return snapshot, nil
}

// YAMLPersister is a file-based persister writing one <machineID>.yaml per machine.
type YAMLPersister struct {
	dir string
}

// NewYAMLPersister creates a YAMLPersister, ensuring the directory exists.
func NewYAMLPersister(dir string) (*YAMLPersister, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &YAMLPersister{dir: dir}, nil
}

func (p *YAMLPersister) Save(ctx context.Context, snapshot core.MachineSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}
	return writeSnapshot(p.dir, snapshot.MachineID, ".yaml", data)
}

func (p *YAMLPersister) Load(ctx context.Context, machineID string) (core.MachineSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return core.MachineSnapshot{}, err
	}
	data, err := readSnapshot(p.dir, machineID, ".yaml")
	if err != nil {
		return core.MachineSnapshot{}, err
	}

	var snapshot core.MachineSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return core.MachineSnapshot{}, fmt.Errorf("yaml unmarshal: %w", err)
	}
	snapshot.MachineID = machineID
	if err := snapshot.Catalog.Validate(); err != nil {
		return core.MachineSnapshot{}, fmt.Errorf("catalog validation after load: %w", err)
	}
	return snapshot, nil
}

// snapshotPath returns dir/<machineID><ext>, refusing IDs that would leave dir.
func snapshotPath(dir, machineID, ext string) (string, error) {
	if err := primitives.ValidateMachineID(machineID); err != nil {
		return "", fmt.Errorf("snapshot path: %w", err)
	}
	return filepath.Join(dir, machineID+ext), nil
}

// writeSnapshot replaces the machine's file atomically via a temp file in the
// same directory.
func writeSnapshot(dir, machineID, ext string, data []byte) error {
	fn, err := snapshotPath(dir, machineID, ext)
	if err != nil {
		return err
	}
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, fn); err != nil {
		return fmt.Errorf("rename %s: %w", fn, err)
	}
	return nil
}

func readSnapshot(dir, machineID, ext string) ([]byte, error) {
	fn, err := snapshotPath(dir, machineID, ext)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("machine %q: %w", machineID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", fn, err)
	}
	return data, nil
}
