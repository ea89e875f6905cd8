package nodeid

import "strconv"

// ID is the opaque identifier of a node. It is assigned by the builder and is
// stable for the lifetime of the blueprint that produced it.
type ID int

// None is the zero-value sentinel for "no node".
const None ID = -1

// Valid reports whether the ID could have been produced by a builder.
func (id ID) Valid() bool {
	return id >= 0
}

// Index returns the position of the node in declaration order.
func (id ID) Index() int {
	return int(id)
}

// String renders the ID as `#n`.
func (id ID) String() string {
	if !id.Valid() {
		return "#none"
	}
	return "#" + strconv.Itoa(int(id))
}
