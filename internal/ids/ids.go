// Package ids issues task ids derived from the wall clock.
package ids

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique, time-ordered int64 ids
type Generator interface {
	Next() int64
}

// Snowflake generates ids from a millisecond timestamp, node and sequence,
// so two tasks created in the same millisecond still get distinct ids.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake returns a generator for the given node (0-1023)
func NewSnowflake(nodeID int64) (*Snowflake, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node %d: %w", nodeID, err)
	}
	return &Snowflake{node: node}, nil
}

// Next returns the next id
func (s *Snowflake) Next() int64 {
	return s.node.Generate().Int64()
}
