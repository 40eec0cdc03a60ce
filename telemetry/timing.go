package telemetry

import (
	"io"
	"sync"
	"time"

	"github.com/robinvdvleuten/billtext/output"
)

// TimingCollector builds a tree of timed operations. The first timer
// started becomes the root; later top-level timers nest under whichever
// timer is still running.
type TimingCollector struct {
	mu      sync.Mutex
	root    *timerNode
	current *timerNode
}

type timerNode struct {
	name     string
	start    time.Time
	end      time.Time
	children []*timerNode
	parent   *timerNode
}

func (n *timerNode) duration() time.Duration {
	if n.end.IsZero() {
		return 0
	}
	return n.end.Sub(n.start)
}

// Span is a flattened, finished timer.
type Span struct {
	Name     string        `json:"name"`
	Depth    int           `json:"depth"`
	Duration time.Duration `json:"duration_ns"`
}

// NewTimingCollector creates a new timing collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins timing an operation.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	node := &timerNode{name: name, start: time.Now()}
	if c.root == nil {
		c.root = node
	} else {
		node.parent = c.current
		c.current.children = append(c.current.children, node)
	}
	c.current = node

	return &timingTimer{collector: c, node: node}
}

// Report writes the timing tree.
func (c *TimingCollector) Report(w io.Writer, styles *output.Styles) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.root == nil {
		return
	}
	formatTimingTree(w, c.root, styles)
}

// Spans returns the timing tree in depth-first order.
func (c *TimingCollector) Spans() []Span {
	c.mu.Lock()
	defer c.mu.Unlock()

	var spans []Span
	var walk func(n *timerNode, depth int)
	walk = func(n *timerNode, depth int) {
		spans = append(spans, Span{Name: n.name, Depth: depth, Duration: n.duration()})
		for _, child := range n.children {
			walk(child, depth+1)
		}
	}
	if c.root != nil {
		walk(c.root, 0)
	}
	return spans
}

type timingTimer struct {
	collector *TimingCollector
	node      *timerNode
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	t.node.end = time.Now()
	if t.collector.current == t.node && t.node.parent != nil {
		t.collector.current = t.node.parent
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	node := &timerNode{name: name, start: time.Now(), parent: t.node}
	t.node.children = append(t.node.children, node)

	return &timingTimer{collector: t.collector, node: node}
}
