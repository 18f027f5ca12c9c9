package kernel

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// ErrContract is returned when a program does not match the binding layout
// or entry points the host pipeline expects.
var ErrContract = errors.New("kernel: interface contract violated")

// BindingKind classifies a buffer binding.
type BindingKind uint8

// Binding kinds.
const (
	BindingOther BindingKind = iota
	BindingUniform
	BindingStorageRead
	BindingStorageReadWrite
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingStorageRead:
		return "storage, read"
	case BindingStorageReadWrite:
		return "storage, read_write"
	default:
		return "other"
	}
}

// Binding is one reflected resource binding.
type Binding struct {
	Group   uint32
	Binding uint32
	Name    string
	Kind    BindingKind
}

// Entry is one reflected entry point.
type Entry struct {
	Name      string
	Stage     ir.ShaderStage
	Workgroup [3]uint32
}

// Interface is the reflected resource interface of a WGSL program.
type Interface struct {
	Bindings []Binding
	Entries  []Entry
}

// Reflect parses, lowers and validates WGSL source and returns its
// bindings and entry points.
func Reflect(src string) (*Interface, error) {
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, fmt.Errorf("kernel: lower: %w", err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("kernel: validate: %w", err)
	}
	if len(verrs) > 0 {
		msgs := make([]string, len(verrs))
		for i, v := range verrs {
			msgs[i] = v.Message
		}
		return nil, fmt.Errorf("kernel: validate: %s", strings.Join(msgs, "; "))
	}

	iface := &Interface{}
	for _, gv := range module.GlobalVariables {
		if gv.Binding == nil {
			continue
		}
		iface.Bindings = append(iface.Bindings, Binding{
			Group:   gv.Binding.Group,
			Binding: gv.Binding.Binding,
			Name:    gv.Name,
			Kind:    kindOf(gv),
		})
	}
	for _, ep := range module.EntryPoints {
		iface.Entries = append(iface.Entries, Entry{Name: ep.Name, Stage: ep.Stage, Workgroup: ep.Workgroup})
	}
	return iface, nil
}

func kindOf(gv ir.GlobalVariable) BindingKind {
	switch gv.Space {
	case ir.SpaceUniform:
		return BindingUniform
	case ir.SpaceStorage:
		if gv.Access == ir.StorageRead {
			return BindingStorageRead
		}
		return BindingStorageReadWrite
	default:
		return BindingOther
	}
}

// Lookup returns the binding at group, binding.
func (i *Interface) Lookup(group, binding uint32) (Binding, bool) {
	for _, b := range i.Bindings {
		if b.Group == group && b.Binding == binding {
			return b, true
		}
	}
	return Binding{}, false
}

// Entry returns the entry point called name.
func (i *Interface) Entry(name string) (Entry, bool) {
	for _, e := range i.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func (i *Interface) expect(group, binding uint32, kind BindingKind) error {
	b, ok := i.Lookup(group, binding)
	if !ok {
		return fmt.Errorf("%w: missing @group(%d) @binding(%d)", ErrContract, group, binding)
	}
	if b.Kind != kind {
		return fmt.Errorf("%w: @group(%d) @binding(%d) %s is %s, want %s",
			ErrContract, group, binding, b.Name, b.Kind, kind)
	}
	return nil
}

// Verify checks that a compute program implements the rule interface:
// a uniform at binding 0, a read-only source at binding 1, a read-write
// destination at binding 2, and a compute entry point "main" whose
// work-group size is cellsPerGroup x 1 x 1.
func Verify(src string, cellsPerGroup uint32) error {
	iface, err := Reflect(src)
	if err != nil {
		return err
	}
	for _, want := range []struct {
		binding uint32
		kind    BindingKind
	}{
		{0, BindingUniform},
		{1, BindingStorageRead},
		{2, BindingStorageReadWrite},
	} {
		if err := iface.expect(0, want.binding, want.kind); err != nil {
			return err
		}
	}
	ep, ok := iface.Entry(EntryPoint)
	if !ok || ep.Stage != ir.StageCompute {
		return fmt.Errorf("%w: no compute entry point %q", ErrContract, EntryPoint)
	}
	if ep.Workgroup != [3]uint32{cellsPerGroup, 1, 1} {
		return fmt.Errorf("%w: work-group size %v, want [%d 1 1]", ErrContract, ep.Workgroup, cellsPerGroup)
	}
	return nil
}

// Draw shader entry points.
const (
	VertexEntryPoint   = "main_vs"
	FragmentEntryPoint = "main_fs"
)

// VerifyDraw checks that a draw program binds the uniform block at
// binding 0 and the palette as read-only storage at binding 1, and defines
// main_vs and main_fs.
func VerifyDraw(src string) error {
	iface, err := Reflect(src)
	if err != nil {
		return err
	}
	if err := iface.expect(0, 0, BindingUniform); err != nil {
		return err
	}
	if err := iface.expect(0, 1, BindingStorageRead); err != nil {
		return err
	}
	if ep, ok := iface.Entry(VertexEntryPoint); !ok || ep.Stage != ir.StageVertex {
		return fmt.Errorf("%w: no vertex entry point %q", ErrContract, VertexEntryPoint)
	}
	if ep, ok := iface.Entry(FragmentEntryPoint); !ok || ep.Stage != ir.StageFragment {
		return fmt.Errorf("%w: no fragment entry point %q", ErrContract, FragmentEntryPoint)
	}
	return nil
}
