// Package id hands out time-ordered int64 ids for requests and background tasks.
package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

const DefaultNode int64 = 1

var (
	mu   sync.Mutex
	node *snowflake.Node
)

// Init selects the snowflake node. Replicas sharing a node id can mint duplicate ids.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// New returns the next id. Without Init it uses DefaultNode, which is fine for tests and tools.
func New() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(DefaultNode)
	}
	n := node
	mu.Unlock()

	return n.Generate().Int64()
}
