package beepaudio

import (
	"sync"

	"github.com/gopxl/beep"

	"github.com/tejashwikalptaru/tunescope/internal/analysis"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// node is a graph node owned by a Context.
type node interface {
	ports.AudioNode

	owner() *Context
	// output is the streamer a downstream node pulls from.
	output() beep.Streamer
	// accept adds upstream as an input. The caller holds the context lock.
	accept(upstream node)
}

// outlet tracks the single downstream connection of a node.
type outlet struct {
	mu         sync.Mutex
	downstream node
}

// connect wires self into dst once. Fan-out is rejected because a streamer
// must not be pulled twice per period.
func (o *outlet) connect(self node, dst ports.AudioNode) error {
	target, ok := dst.(node)
	if !ok || target.owner() != self.owner() || target == self {
		return domain.ErrNotConnectable
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.downstream {
	case target:
		return nil
	case nil:
	default:
		return domain.NewMediaError("connect", "", "node already has an output", domain.ErrNotConnectable)
	}

	c := self.owner()
	c.lock.Lock()
	target.accept(self)
	c.lock.Unlock()

	o.downstream = target
	return nil
}

// sourceNode feeds a media element into the graph.
type sourceNode struct {
	outlet
	ctx     *Context
	element *Element
}

func (n *sourceNode) owner() *Context       { return n.ctx }
func (n *sourceNode) output() beep.Streamer { return n.element }
func (n *sourceNode) accept(node)           {}

func (n *sourceNode) Connect(dst ports.AudioNode) error {
	return n.connect(n, dst)
}

// destinationNode mixes its inputs into the speaker.
type destinationNode struct {
	ctx    *Context
	inputs map[node]bool
}

func (n *destinationNode) owner() *Context       { return n.ctx }
func (n *destinationNode) output() beep.Streamer { return n.ctx.mixer }
func (n *destinationNode) accept(upstream node) {
	if n.inputs[upstream] {
		return
	}
	n.inputs[upstream] = true
	n.ctx.mixer.Add(upstream.output())
}

// Connect always fails; the destination has no outputs.
func (n *destinationNode) Connect(ports.AudioNode) error {
	return domain.ErrNotConnectable
}

// analyserNode passes its inputs through a tap and analyses what the tap saw.
type analyserNode struct {
	outlet
	ctx *Context

	input *beep.Mixer
	tap   *tap

	mu       sync.Mutex
	inputs   []node
	analyser *analysis.Analyser
	scratch  []float64
}

func (n *analyserNode) owner() *Context       { return n.ctx }
func (n *analyserNode) output() beep.Streamer { return n.tap }
func (n *analyserNode) accept(upstream node) {
	for _, in := range n.inputs {
		if in == upstream {
			return
		}
	}
	n.inputs = append(n.inputs, upstream)
	n.input.Add(upstream.output())
}

func (n *analyserNode) Connect(dst ports.AudioNode) error {
	return n.connect(n, dst)
}

func (n *analyserNode) SetFFTSize(size int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.analyser.SetFFTSize(size); err != nil {
		return err
	}
	n.tap.resize(size)
	n.scratch = make([]float64, size)
	return nil
}

func (n *analyserNode) FFTSize() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.analyser.FFTSize()
}

func (n *analyserNode) FrequencyBinCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.analyser.FrequencyBinCount()
}

func (n *analyserNode) SetSmoothing(tau float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.analyser.SetSmoothing(tau)
}

func (n *analyserNode) SetDecibelRange(minDB, maxDB float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.analyser.SetDecibelRange(minDB, maxDB)
}

func (n *analyserNode) GetByteFrequencyData(dst []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.tap.samples(n.scratch)
	n.analyser.ByteFrequencyData(n.scratch, dst)
}

var _ ports.AnalyserNode = (*analyserNode)(nil)
