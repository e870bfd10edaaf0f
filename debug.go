package sprig

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
)

// debugStats is collected by DrawTo while the scene is in debug mode.
type debugStats struct {
	traverseTime time.Duration
	drawCalls    int
	quads        int
	batches      int
	slotsUsed    int
	slots        int
	atlasBytes   uint64
}

func (s *Scene) debugLog(stats debugStats) {
	if !s.debug {
		return
	}
	_, _ = fmt.Fprintf(os.Stderr,
		"[sprig] traverse+submit: %v | draw calls: %d | quads: %d\n",
		stats.traverseTime, stats.drawCalls, stats.quads)
	_, _ = fmt.Fprintf(os.Stderr,
		"[sprig] batches: %d | slots: %d/%d | atlas memory: %s\n",
		stats.batches, stats.slotsUsed, stats.slots, humanize.Bytes(stats.atlasBytes))
}

// debugCheckDisposed panics when a disposed node takes part in a tree
// operation. Callers only invoke it in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("sprig debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckAttach warns on stderr when attaching child makes the tree deeper
// than debugMaxTreeDepth or gives parent more than debugMaxChildCount
// children. Batches may hold any number of children.
func debugCheckAttach(parent, child *Node) {
	depth := 0
	for p := child; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		_, _ = fmt.Fprintf(os.Stderr, "[sprig] warning: tree depth %d exceeds %d (node %q)\n",
			depth, debugMaxTreeDepth, child.Name)
	}
	if parent.Type != NodeTypeBatch && len(parent.children) > debugMaxChildCount {
		_, _ = fmt.Fprintf(os.Stderr, "[sprig] warning: node %q has %d children (threshold %d)\n",
			parent.Name, len(parent.children), debugMaxChildCount)
	}
}
