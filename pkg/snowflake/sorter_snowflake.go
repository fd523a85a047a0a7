// Package snowflake generates time-ordered 64-bit message IDs.
//
// Layout: 41 bits of milliseconds since 2025-01-01 UTC, 10 bits node ID,
// 12 bits per-millisecond sequence.
package snowflake

import (
	"errors"
	"strconv"
	"sync"
	"time"
)

const (
	epoch int64 = 1735689600000 // 2025-01-01T00:00:00Z

	nodeBits     = 10
	sequenceBits = 12

	maxNode     = (1 << nodeBits) - 1
	maxSequence = (1 << sequenceBits) - 1

	timeShift = nodeBits + sequenceBits
	nodeShift = sequenceBits

	// maxBackwardDrift is how far the clock may step back before Generate fails.
	maxBackwardDrift = 5 * time.Millisecond
)

var (
	ErrInvalidNode    = errors.New("snowflake: node ID must be between 0 and 1023")
	ErrClockMovedBack = errors.New("snowflake: clock moved backwards")
)

// ID is a snowflake message ID.
type ID int64

// String renders the ID in base 36.
func (id ID) String() string {
	return strconv.FormatInt(int64(id), 36)
}

// Time returns the creation time encoded in the ID.
func (id ID) Time() time.Time {
	return time.UnixMilli((int64(id) >> timeShift) + epoch).UTC()
}

// Node returns the node ID encoded in the ID.
func (id ID) Node() int64 {
	return (int64(id) >> nodeShift) & maxNode
}

// Sequence returns the per-millisecond sequence.
func (id ID) Sequence() int64 {
	return int64(id) & maxSequence
}

// ParseID parses a base-36 ID string.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseInt(s, 36, 64)
	if err != nil {
		return 0, err
	}
	return ID(v), nil
}

// Generator issues unique IDs for one node.
type Generator struct {
	mu       sync.Mutex
	node     int64
	sequence int64
	last     int64
	now      func() int64
}

// NewGenerator creates a generator for node (0..1023).
func NewGenerator(node int64) (*Generator, error) {
	if node < 0 || node > maxNode {
		return nil, ErrInvalidNode
	}
	return &Generator{
		node: node,
		now:  func() int64 { return time.Now().UnixMilli() },
	}, nil
}

// Next returns a new ID. A clock step back within maxBackwardDrift is waited out.
func (g *Generator) Next() (ID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if now < g.last {
		if time.Duration(g.last-now)*time.Millisecond > maxBackwardDrift {
			return 0, ErrClockMovedBack
		}
		now = g.waitUntil(g.last)
	}

	if now == g.last {
		g.sequence = (g.sequence + 1) & maxSequence
		if g.sequence == 0 {
			now = g.waitUntil(g.last + 1)
		}
	} else {
		g.sequence = 0
	}
	g.last = now

	return ID(((now - epoch) << timeShift) | (g.node << nodeShift) | g.sequence), nil
}

func (g *Generator) waitUntil(ms int64) int64 {
	now := g.now()
	for now < ms {
		time.Sleep(100 * time.Microsecond)
		now = g.now()
	}
	return now
}
