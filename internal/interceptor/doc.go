// Package interceptor implements the per-node wrapper chain of the graph
// engine.
//
// An interceptor wraps the value produced by a node's factory on init and is
// unwound on release. A chain applies its interceptors in registration order
// and unwinds them in exact reverse order, so the last wrapper applied is the
// first one released.
//
// Interceptors are plain decorators: there are no dynamic proxies. A node's
// published value is the result of folding its chain over the factory's raw
// output.
package interceptor
