// Package app contains the application bootstrap. It turns a Config into a
// graph blueprint, initializes the graph, and installs the shutdown hook
// that releases it, decoupled from any specific entrypoint like a CLI.
package app
