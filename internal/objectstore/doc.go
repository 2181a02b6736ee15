// Package objectstore abstracts the automation host's object tree.
//
// The host organises everything it knows about into a single tree of
// objects: categories, instances, variables, scripts, events, media
// and links, each with a numeric ID and a parent. Gray Bridge only
// needs a narrow window onto that tree: resolving objects, listing
// children, reading and writing variables, and dispatching actions to
// the instance that owns a variable.
//
// Two implementations exist:
//   - symcon.Client talks JSON-RPC to a live IP-Symcon host
//   - Mem holds a tree in memory, used by tests and dev mode
//
// All methods take a context and return ErrNotFound for unknown IDs,
// so callers can distinguish "missing" from transport failures.
package objectstore
