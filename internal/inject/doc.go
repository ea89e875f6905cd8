// Package inject holds the typed helpers factories use to consume their
// dependencies: Dep for Direct edges, ValueOf for handles that follow a node
// across refreshes, and All for immutable collections of every value
// satisfying a contract.
package inject
