// Package draw builds the static blueprint of an application graph.
//
// A Builder collects node declarations, each with its factory, ordered
// dependencies, interceptors and root flag. Build validates the declarations
// and freezes them into a Draw:
//
//   - every dependency must point at a declared node (UnknownDependencyError);
//   - the dependency relation must be acyclic (CycleError, reporting the full
//     cycle, deterministic for the same declaration order);
//   - a fixed topological order is computed, ties broken by declaration order;
//   - the live set (roots plus everything they transitively need) is marked.
//
// A Draw is immutable and may be shared by any number of graph instances.
package draw
