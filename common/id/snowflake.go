package id

import (
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
// Only the first call has any effect.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a process-unique int64 ID. The millisecond timestamp orders
// IDs; the per-millisecond sequence keeps IDs generated in the same
// millisecond distinct.
func New() int64 {
	return node.Generate().Int64()
}

// NewString is New rendered in base 10, safe to hand to JSON clients that
// cannot hold 64-bit integers.
func NewString() string {
	return node.Generate().String()
}
