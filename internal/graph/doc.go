// Package graph is the runtime of the application graph engine.
//
// A Graph is a live instance of a draw.Draw blueprint. It owns one slot per
// node, holding the node's lifecycle state and its published value.
//
// # Lifecycle
//
//  1. **New**: every slot is NEW.
//  2. **Init** walks the live nodes in topological order. Each node's factory
//     receives its resolved dependencies, then the node's interceptors wrap
//     the result in declaration order. Any failure releases everything that
//     was already initialized, in reverse order, and returns an
//     *InitializationError naming the failing node.
//  3. **Refresh** re-instantiates a node and every node that transitively
//     depends on it through Direct edges. Nodes outside that subset keep
//     their values.
//  4. **Release** walks the nodes in reverse topological order, unwinding
//     interceptors and calling release functions. It is best-effort: every
//     node gets an attempt and the failures are reported together.
//
// # Concurrency
//
// Init, Refresh and Release are serialized by a single writer lock. Get and
// the handles built on it are lock-free: each slot publishes its value
// through an atomic pointer, so readers observe either the old or the new
// fully-wrapped value, never an intermediate.
//
// # Refresh strategy
//
// Refresh builds the new values of the whole subset first, while the old
// values stay published. Only when every factory and interceptor succeeded
// are the new values swapped in and the old ones released, in reverse order.
// If a step fails, the new values built so far are released and the old
// ones remain. If that rollback fails too, the graph is marked FAILED: it
// still serves reads and can be released, but rejects further Init and
// Refresh calls.
package graph
