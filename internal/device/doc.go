// Package device provides the device registry for Gray Bridge.
//
// The registry is a persisted, user-curated mapping from raw host
// variables onto logical devices: each entry tags one variable with a
// kind, a floor/room location, an optional display name, and an
// enabled flag. The registry never stores values; the Device view is
// synthesized on demand by joining entries against the live object
// store.
//
// # Key Types
//
//   - Entry: the persisted mapping row, keyed by variable ID
//   - Device: the synthesized logical view, never persisted
//   - Capability: what the device can do, inferred from the
//     variable's type and profile (on_off, level, value)
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo, store)
//
//	if err := repo.Upsert(ctx, &device.Entry{
//	    VarID:   12345,
//	    Kind:    "light",
//	    Floor:   "Ground Floor",
//	    Room:    "Living Room",
//	    Enabled: true,
//	}); err != nil {
//	    return err
//	}
//
//	devices, _ := registry.Devices(ctx)
//
// # Thread Safety
//
// The SQLite repository and the registry are safe for concurrent use;
// each mutation is a single-row statement, so concurrent edits to
// different entries cannot clobber each other.
package device
