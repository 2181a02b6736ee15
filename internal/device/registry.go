package device

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
	"github.com/nerrad567/gray-bridge/internal/variable"
)

// Registry synthesizes the logical device view by joining persisted
// entries against the live object store.
//
// Thread Safety:
//   - Safe for concurrent use; the registry itself holds no mutable
//     state, the repository and store carry their own guarantees.
type Registry struct {
	repo  Repository
	store objectstore.Store
}

// NewRegistry creates a Registry over the given repository and store.
func NewRegistry(repo Repository, store objectstore.Store) *Registry {
	return &Registry{repo: repo, store: store}
}

// Devices materializes the device list. Disabled entries are skipped,
// as are entries whose variable no longer exists on the host; a
// registry can outlive the tree it was curated against.
func (r *Registry) Devices(ctx context.Context) ([]Device, error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing registry entries: %w", err)
	}

	devices := []Device{}
	for _, entry := range entries {
		if !entry.Enabled {
			continue
		}

		dev, err := r.materialize(ctx, entry)
		if err != nil {
			if errors.Is(err, objectstore.ErrNotFound) {
				continue
			}
			return nil, err
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// materialize joins one entry against the live variable.
func (r *Registry) materialize(ctx context.Context, entry Entry) (Device, error) {
	info, err := r.store.GetVariable(ctx, entry.VarID)
	if err != nil {
		return Device{}, err
	}
	value, err := r.store.GetValue(ctx, entry.VarID)
	if err != nil {
		return Device{}, err
	}

	name := entry.Name
	if name == "" {
		obj, err := r.store.GetObject(ctx, entry.VarID)
		if err != nil {
			return Device{}, err
		}
		name = obj.Name
	}

	t := variable.Type(info.Type)
	capability := InferCapability(t, info.Profile)

	return Device{
		ID:           DeviceID(entry.VarID),
		Name:         name,
		Kind:         entry.Kind,
		Location:     Location{Floor: entry.Floor, Room: entry.Room},
		Capabilities: []Capability{capability},
		State:        InferState(capability, value),
		VarID:        entry.VarID,
		Type:         t,
		Profile:      info.Profile,
	}, nil
}

// RoomOptions returns the distinct non-empty room tags across all
// entries, sorted ascending. Used by UI surfaces to offer room
// pickers.
func (r *Registry) RoomOptions(ctx context.Context) ([]string, error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing registry entries: %w", err)
	}

	seen := make(map[string]bool)
	rooms := []string{}
	for _, entry := range entries {
		if entry.Room == "" || seen[entry.Room] {
			continue
		}
		seen[entry.Room] = true
		rooms = append(rooms, entry.Room)
	}
	sort.Strings(rooms)
	return rooms, nil
}
