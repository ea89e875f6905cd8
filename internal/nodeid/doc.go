/*
Package nodeid provides the identifiers used to address nodes in an
application graph.

An ID is an opaque, stable handle assigned by the graph builder in
declaration order. It is the only way nodes refer to each other.

Every node also carries a human-readable name used in logs and errors. A name
is a dot-separated sequence of segments with an optional index,
e.g., `config`, `db.pool`, `probe[1]`.
*/
package nodeid
