package utilities

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/segmentio/ksuid"
)

var (
	nodeOnce sync.Once
	node     *snowflake.Node
)

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// NewRequestID generates a request correlation id. It prefers snowflake IDs
// (node number from SNOWFLAKE_NODE, default 1) and falls back to a KSUID when
// the node cannot be initialized.
func NewRequestID() string {
	nodeOnce.Do(func() {
		nodeID := int64(1)
		if env := os.Getenv("SNOWFLAKE_NODE"); env != "" {
			if parsed, err := strconv.ParseInt(env, 10, 64); err == nil {
				nodeID = parsed
			}
		}
		n, err := snowflake.NewNode(nodeID)
		if err != nil {
			return
		}
		node = n
	})
	if node == nil {
		return NewKSUID()
	}
	return node.Generate().String()
}
