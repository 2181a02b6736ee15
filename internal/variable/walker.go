package variable

import (
	"context"
	"strings"

	"github.com/nerrad567/gray-bridge/internal/objectstore"
)

// maxAncestorDepth bounds parent-chain walks so a corrupted tree with
// a parent cycle cannot loop forever.
const maxAncestorDepth = 128

// Walker flattens a subtree of the host's object tree into Records.
type Walker struct {
	store objectstore.Store
}

// NewWalker creates a Walker over the given store.
func NewWalker(store objectstore.Store) *Walker {
	return &Walker{store: store}
}

// Walk returns every variable under rootID, at any depth, in the
// order the store yields children.
//
// Root handling:
//   - rootID 0 is the tree root and is always accepted without an
//     existence check
//   - a negative rootID yields an empty result
//   - a rootID that does not resolve yields an empty result
//
// A descendant that vanishes mid-walk is skipped silently; the host
// tree can change underneath us at any time.
func (w *Walker) Walk(ctx context.Context, rootID int) ([]Record, error) {
	records := []Record{}

	if rootID < 0 {
		return records, nil
	}
	if rootID != objectstore.RootID {
		if _, err := w.store.GetObject(ctx, rootID); err != nil {
			return records, nil
		}
	}

	if err := w.collect(ctx, rootID, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// collect recurses into every child regardless of its kind, because
// containers may hold variables arbitrarily deep.
func (w *Walker) collect(ctx context.Context, id int, records *[]Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	children, err := w.store.ChildrenOf(ctx, id)
	if err != nil {
		// The object vanished between visits; skip its subtree.
		return nil
	}

	for _, childID := range children {
		obj, err := w.store.GetObject(ctx, childID)
		if err != nil {
			continue
		}

		if obj.Kind == objectstore.KindVariable {
			if rec, err := w.Record(ctx, obj); err == nil {
				*records = append(*records, rec)
			}
		}

		if err := w.collect(ctx, childID, records); err != nil {
			return err
		}
	}
	return nil
}

// Record builds the full flattened record for a variable object.
func (w *Walker) Record(ctx context.Context, obj objectstore.Object) (Record, error) {
	info, err := w.store.GetVariable(ctx, obj.ID)
	if err != nil {
		return Record{}, err
	}
	value, err := w.store.GetValue(ctx, obj.ID)
	if err != nil {
		return Record{}, err
	}

	t := Type(info.Type)
	return Record{
		VarID:      obj.ID,
		Name:       obj.Name,
		Path:       w.path(ctx, obj),
		Type:       t,
		TypeText:   t.Text(),
		Value:      value,
		ValueText:  renderValueText(value),
		Profile:    info.Profile,
		Ident:      obj.Ident,
		ParentID:   obj.ParentID,
		InstanceID: instanceFor(ctx, w.store, obj.ParentID),
	}, nil
}

// path walks the parent chain from the object to the root, collecting
// names top-down joined by " / ". The root object itself is excluded.
// The result is independent of how the walk reached the object.
func (w *Walker) path(ctx context.Context, obj objectstore.Object) string {
	parts := []string{obj.Name}

	id := obj.ParentID
	for depth := 0; id > 0 && depth < maxAncestorDepth; depth++ {
		ancestor, err := w.store.GetObject(ctx, id)
		if err != nil {
			break
		}
		parts = append([]string{ancestor.Name}, parts...)
		id = ancestor.ParentID
	}
	return strings.Join(parts, " / ")
}

// instanceFor walks ancestors starting at startID and returns the ID
// of the nearest enclosing instance, or 0 when there is none. Used to
// address actuation calls.
func instanceFor(ctx context.Context, store objectstore.Store, startID int) int {
	id := startID
	for depth := 0; id > 0 && depth < maxAncestorDepth; depth++ {
		obj, err := store.GetObject(ctx, id)
		if err != nil {
			return 0
		}
		if obj.Kind == objectstore.KindInstance {
			return obj.ID
		}
		id = obj.ParentID
	}
	return 0
}
