// Package registry provides the glue between modules and the graph builder.
//
// A Module declares its nodes on a draw.Builder. Modules are applied in
// order, so a module may look up the nodes of the modules registered before
// it by name, with Require. Compose turns an ordered module list into the
// Supplier the application bootstrap builds its graph from.
package registry
