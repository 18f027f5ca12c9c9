// Package kernel holds the compute rules that advance the automaton and the
// draw shader that renders it.
//
// Every rule is a WGSL compute program with the same interface:
//
//	@group(0) @binding(0) var<uniform> params: SimParams;
//	@group(0) @binding(1) var<storage, read> cells_src: array<u32>;
//	@group(0) @binding(2) var<storage, read_write> cells_dst: array<u32>;
//	@compute @workgroup_size(CELLS_PER_GROUP) fn main(...)
//
// Invocation i reads any cell of cells_src and writes only cells_dst[i], so
// rules can be swapped without touching the host pipeline. [Verify] checks
// the interface by reflecting the program with naga before any GPU object is
// created.
package kernel

import (
	"embed"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/gpucontext"
)

//go:embed shaders/*.wgsl
var shaderFS embed.FS

// EntryPoint is the compute entry point every rule must define.
const EntryPoint = "main"

// groupSizePlaceholder is replaced by the work-group size when a rule is
// instantiated.
const groupSizePlaceholder = "$CELLS_PER_GROUP"

// ErrUnknownRule is returned by Lookup for unregistered rule names.
var ErrUnknownRule = errors.New("kernel: unknown rule")

// Rule is a named compute program.
type Rule struct {
	Name    string
	Summary string

	template string
	host     HostStepFunc
}

// NewRule creates a rule from WGSL source. The source may contain the
// placeholder $CELLS_PER_GROUP in its @workgroup_size attribute.
func NewRule(name, summary, wgsl string) Rule {
	return Rule{Name: name, Summary: summary, template: wgsl}
}

// Source returns the WGSL program with the work-group size filled in.
func (r Rule) Source(cellsPerGroup uint32) string {
	return strings.ReplaceAll(r.template, groupSizePlaceholder, strconv.FormatUint(uint64(cellsPerGroup), 10))
}

// IsZero reports whether r is the zero Rule.
func (r Rule) IsZero() bool { return r.template == "" }

var rules = gpucontext.NewRegistry[Rule](gpucontext.WithPriority("cyclic", "life"))

func init() {
	Register(NewRule("cyclic", "advance to the next color when a neighbour holds it", mustShader("cyclic.wgsl")).WithHost(cyclicHost))
	Register(NewRule("life", "Conway's life; live cells age through the palette", mustShader("life.wgsl")).WithHost(lifeHost))
}

// Register adds or replaces a rule.
func Register(r Rule) {
	rules.Register(r.Name, func() Rule { return r })
}

// Lookup returns the named rule.
func Lookup(name string) (Rule, error) {
	if !rules.Has(name) {
		return Rule{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownRule, name, strings.Join(Names(), ", "))
	}
	return rules.Get(name), nil
}

// Default returns the preferred registered rule.
func Default() Rule {
	return rules.Best()
}

// Names returns the registered rule names in sorted order.
func Names() []string {
	names := rules.Available()
	slices.Sort(names)
	return names
}

// DrawSource returns the WGSL source of the cell draw shader.
func DrawSource() string {
	return mustShader("draw.wgsl")
}

func mustShader(name string) string {
	b, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		panic(fmt.Sprintf("kernel: embedded shader %s: %v", name, err))
	}
	return string(b)
}
