package graph

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/appgraph/internal/nodeid"
)

// InitializationError reports a factory or interceptor failure during Init
// or Refresh. Rollback holds the failures of the teardown that followed, if
// any.
type InitializationError struct {
	Node     nodeid.ID
	Name     string
	Cause    error
	Rollback error
}

func (e *InitializationError) Error() string {
	msg := fmt.Sprintf("failed to initialize node %q (%s): %v", e.Name, e.Node, e.Cause)
	if e.Rollback != nil {
		msg += fmt.Sprintf("; rollback: %v", e.Rollback)
	}
	return msg
}

func (e *InitializationError) Unwrap() []error {
	if e.Rollback == nil {
		return []error{e.Cause}
	}
	return []error{e.Cause, e.Rollback}
}

// NodeError attributes an error to a node.
type NodeError struct {
	Node nodeid.ID
	Name string
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q (%s): %v", e.Name, e.Node, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// ReleaseError aggregates every failure of a release walk.
type ReleaseError struct {
	Errors []*NodeError
}

func (e *ReleaseError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		parts[i] = err.Error()
	}
	return fmt.Sprintf("release failed for %d node(s): %s", len(e.Errors), strings.Join(parts, "; "))
}

func (e *ReleaseError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errs[i] = err
	}
	return errs
}

// releaseErrorOrNil avoids returning a typed nil through the error interface.
func releaseErrorOrNil(errs []*NodeError) error {
	if len(errs) == 0 {
		return nil
	}
	return &ReleaseError{Errors: errs}
}

// InvalidStateError reports an operation requested in the wrong state. Node
// is nodeid.None when the graph itself is in the wrong state.
type InvalidStateError struct {
	Op    string
	Node  nodeid.ID
	Name  string
	State string
}

func (e *InvalidStateError) Error() string {
	if !e.Node.Valid() {
		return fmt.Sprintf("cannot %s: graph is %s", e.Op, e.State)
	}
	return fmt.Sprintf("cannot %s node %q (%s): node is %s", e.Op, e.Name, e.Node, e.State)
}
