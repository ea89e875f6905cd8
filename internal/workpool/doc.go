// Package workpool provides the process-wide executor that node factories may
// use to run background work, such as a server's accept loop.
//
// The executor is an explicitly initialized singleton. It is created once,
// on the first call to Init or Default, and is never torn down: tasks it
// runs are expected to stop when their context is cancelled. Whether it is
// enabled is decided once, from the APPGRAPH_VIRTUAL_EXECUTION setting
// ("on", "off" or "auto"), and cached. Tests substitute a deterministic
// executor with SetDefault.
package workpool
