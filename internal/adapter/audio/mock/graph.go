package mock

import (
	"sync"

	"github.com/tejashwikalptaru/tunescope/internal/analysis"
	"github.com/tejashwikalptaru/tunescope/internal/domain"
	"github.com/tejashwikalptaru/tunescope/internal/ports"
)

// Node is a mock graph node that records its outgoing connections.
type Node struct {
	mu    sync.Mutex
	name  string
	edges []ports.AudioNode
}

// Name returns the node's label ("source", "analyser", "destination").
func (n *Node) Name() string {
	return n.name
}

// Connect records dst as a downstream node. Repeated pairs are stored once.
func (n *Node) Connect(dst ports.AudioNode) error {
	if dst == nil {
		return domain.ErrNotConnectable
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.edges {
		if e == dst {
			return nil
		}
	}
	n.edges = append(n.edges, dst)
	return nil
}

// Outputs returns the downstream nodes in connection order.
func (n *Node) Outputs() []ports.AudioNode {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]ports.AudioNode(nil), n.edges...)
}

// Analyser is a mock analyser whose frequency data is set by tests.
type Analyser struct {
	Node

	fftSize     int
	smoothing   float64
	minDecibels float64
	maxDecibels float64
	data        []byte
	reads       int
}

// SetFFTSize validates and applies size.
func (a *Analyser) SetFFTSize(size int) error {
	if !analysis.ValidFFTSize(size) {
		return domain.ErrInvalidFFTSize
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.fftSize = size
	return nil
}

// FFTSize returns the analysis window.
func (a *Analyser) FFTSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.fftSize
}

// FrequencyBinCount returns FFTSize()/2.
func (a *Analyser) FrequencyBinCount() int {
	return a.FFTSize() / 2
}

// SetSmoothing validates and records tau.
func (a *Analyser) SetSmoothing(tau float64) error {
	if !analysis.ValidSmoothing(tau) {
		return domain.NewValidationError("smoothing", tau, "must be in [0, 1)")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.smoothing = tau
	return nil
}

// SetDecibelRange validates and records the range.
func (a *Analyser) SetDecibelRange(minDB, maxDB float64) error {
	if !analysis.ValidDecibelRange(minDB, maxDB) {
		return domain.NewValidationError("decibel_range", [2]float64{minDB, maxDB}, "min must be below max")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.minDecibels, a.maxDecibels = minDB, maxDB
	return nil
}

// Smoothing returns the recorded time constant.
func (a *Analyser) Smoothing() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.smoothing
}

// DecibelRange returns the recorded range.
func (a *Analyser) DecibelRange() (minDB, maxDB float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.minDecibels, a.maxDecibels
}

// SetFrequencyData sets the magnitudes returned by the next reads.
func (a *Analyser) SetFrequencyData(data []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.data = append([]byte(nil), data...)
}

// GetByteFrequencyData copies the configured data into dst and zeroes the rest
// of the bin range.
func (a *Analyser) GetByteFrequencyData(dst []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.reads++
	n := min(len(dst), a.fftSize/2)
	copied := copy(dst[:n], a.data)
	clear(dst[copied:n])
}

// Reads returns how many times frequency data was read.
func (a *Analyser) Reads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reads
}

// Context is a mock audio context. It creates mock nodes and records
// which elements were wrapped.
type Context struct {
	mu sync.Mutex

	destination *Node
	sources     map[ports.MediaElement]*Node
	analysers   []*Analyser
	closed      bool

	failSource   bool
	failAnalyser bool
}

// NewContext creates an open mock context.
func NewContext() *Context {
	return &Context{
		destination: &Node{name: "destination"},
		sources:     make(map[ports.MediaElement]*Node),
	}
}

// SetFailSource configures the mock to fail CreateMediaElementSource.
func (c *Context) SetFailSource(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failSource = fail
}

// SetFailAnalyser configures the mock to fail CreateAnalyser.
func (c *Context) SetFailAnalyser(fail bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failAnalyser = fail
}

// CreateMediaElementSource wraps element. An element can be wrapped only once.
func (c *Context) CreateMediaElementSource(element ports.MediaElement) (ports.AudioNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.failSource {
		return nil, domain.ErrAudioUnavailable
	}
	if _, ok := c.sources[element]; ok {
		return nil, domain.NewMediaError("create_source", "", "element already wrapped", domain.ErrNotConnectable)
	}

	n := &Node{name: "source"}
	c.sources[element] = n
	return n, nil
}

// CreateAnalyser creates an analyser with the default FFT size.
func (c *Context) CreateAnalyser() (ports.AnalyserNode, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.failAnalyser {
		return nil, domain.ErrAudioUnavailable
	}

	a := &Analyser{
		Node:        Node{name: "analyser"},
		fftSize:     domain.DefaultFFTSize,
		smoothing:   analysis.DefaultSmoothing,
		minDecibels: analysis.DefaultMinDecibels,
		maxDecibels: analysis.DefaultMaxDecibels,
	}
	c.analysers = append(c.analysers, a)
	return a, nil
}

// Destination returns the output node.
func (c *Context) Destination() ports.AudioNode {
	return c.destination
}

// Close marks the context closed.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// Closed reports whether Close was called.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// SourceCount returns how many elements were wrapped.
func (c *Context) SourceCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sources)
}

// Analysers returns the analysers created so far.
func (c *Context) Analysers() []*Analyser {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Analyser(nil), c.analysers...)
}

// Verify interface implementation at compile time.
var (
	_ ports.AudioContext = (*Context)(nil)
	_ ports.AnalyserNode = (*Analyser)(nil)
	_ ports.AudioNode    = (*Node)(nil)
)
