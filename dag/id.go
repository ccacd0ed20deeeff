package dag

import (
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// graphKeys issues a process-unique key per Graph so IDs from one graph are
// rejected by another.
var graphKeys atomic.Uint32

// NodeID identifies a node within the Graph that issued it. The zero value
// is never issued.
type NodeID struct {
	graph uint32
	index uint32
}

// IsZero reports whether id is the zero NodeID.
func (id NodeID) IsZero() bool { return id.index == 0 }

// String renders the id as "n<index>", the form used in graph descriptions.
func (id NodeID) String() string {
	return "n" + strconv.FormatUint(uint64(id.index), 10)
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// newRunID tags the log lines and spans of one Run.
func newRunID() string { return uuid.NewString() }
