package id

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	mu   sync.RWMutex
	node *snowflake.Node
)

// Init binds the generator to a node ID. Each running process must use a
// distinct node ID so sequence keys stay unique across replicas.
// Calling Init again with the same node ID is a no-op.
func Init(nodeID int64) error {
	mu.Lock()
	defer mu.Unlock()

	if node != nil {
		if current := node.Generate().Node(); current != nodeID {
			return fmt.Errorf("id generator already bound to node %d", current)
		}
		return nil
	}

	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("creating snowflake node %d: %w", nodeID, err)
	}
	node = n
	return nil
}

// New returns a time-ordered int64 unique to this node.
// Panics if Init has not been called.
func New() int64 {
	mu.RLock()
	n := node
	mu.RUnlock()

	if n == nil {
		panic("id: New called before Init")
	}
	return n.Generate().Int64()
}
