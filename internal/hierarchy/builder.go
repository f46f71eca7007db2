package hierarchy

import (
	"errors"
	"fmt"

	"github.com/obowen/fpga-wavetrace/internal/index"
	"github.com/obowen/fpga-wavetrace/internal/netpath"
	"github.com/obowen/fpga-wavetrace/internal/scanner"
)

var (
	// ErrUnknownNet means a requested net is not declared in the file
	// owning it.
	ErrUnknownNet = errors.New("unknown net")
	// ErrAmbiguousWidth means a vector net was requested without an
	// explicit bit range, so the bits to capture cannot be inferred.
	ErrAmbiguousWidth = errors.New("ambiguous net width")
)

// Builder turns hierarchical net paths into a tree of debug instances. It
// resolves each hierarchy segment to a concrete sub-instance by scanning
// the parent's source file, and assigns dedup ids from a per-file counter
// shared across the whole tree.
type Builder struct {
	idx    *index.Index
	files  map[string]*scanner.File
	counts map[string]int
}

// NewBuilder returns a Builder resolving module types through idx.
func NewBuilder(idx *index.Index) *Builder {
	return &Builder{
		idx:    idx,
		files:  make(map[string]*scanner.File),
		counts: make(map[string]int),
	}
}

// NewTop creates the root debug instance for the given top-level module
// type, which must resolve to exactly one source file.
func (b *Builder) NewTop(moduleType string) (*Instance, error) {
	file, err := b.idx.Resolve(moduleType)
	if err != nil {
		return nil, err
	}
	return &Instance{
		Name:       "Top",
		ModuleType: moduleType,
		File:       file,
		IsTop:      true,
	}, nil
}

// AddNet resolves one parsed net path against the tree rooted at root,
// creating intermediate debug instances as needed, and appends the leaf
// net to its owning instance. Paths must be added in caller order; the
// append order fixes the debug-vector layout.
func (b *Builder) AddNet(root *Instance, spec netpath.Spec) error {
	cur := root
	for _, seg := range spec.Segments {
		sub := cur.Sub(seg)
		if sub == nil {
			var err error
			sub, err = b.newSub(cur, seg, spec.Path)
			if err != nil {
				return err
			}
			cur.SubInstances = append(cur.SubInstances, sub)
		}
		cur = sub
	}

	file, err := b.load(cur.File)
	if err != nil {
		return err
	}
	switch file.ClassifyNet(spec.Base) {
	case scanner.NetNotFound:
		return fmt.Errorf("%w: unable to locate net '%s' in file '%s'",
			ErrUnknownNet, spec.Base, cur.File)
	case scanner.NetVector:
		if !spec.HasRange {
			return fmt.Errorf("%w: unable to extract bit range from net '%s', "+
				"please append '[x:y]' or '[x]' to all multi-bit nets",
				ErrAmbiguousWidth, spec.Path)
		}
	case scanner.NetScalar:
		if spec.HasRange {
			return fmt.Errorf("%w: net '%s' is declared as a single bit but "+
				"was requested with a bit range", ErrAmbiguousWidth, spec.Path)
		}
	}

	cur.LocalNets = append(cur.LocalNets, &Net{
		Path:      spec.Path,
		Name:      spec.Leaf,
		Base:      spec.Base,
		Width:     spec.Width(),
		HasRange:  spec.HasRange,
		VectorPos: -1,
	})
	return nil
}

// newSub discovers the module type of the named instance inside parent's
// source, resolves its defining file and assigns the next dedup id for
// that file.
func (b *Builder) newSub(parent *Instance, name, path string) (*Instance, error) {
	file, err := b.load(parent.File)
	if err != nil {
		return nil, err
	}
	loc, err := file.Instance(parent.ModuleType, name)
	if err != nil {
		return nil, fmt.Errorf("resolving net '%s': %w", path, err)
	}
	defFile, err := b.idx.Resolve(loc.Type)
	if err != nil {
		return nil, fmt.Errorf("cannot find module '%s' for instance '%s' needed for net '%s' "+
			"(check that the source code has been added): %w", loc.Type, name, path, err)
	}
	id := b.counts[defFile]
	b.counts[defFile]++
	return &Instance{
		Name:       name,
		ModuleType: loc.Type,
		File:       defFile,
		ID:         id,
	}, nil
}

// load returns a tokenized view of the given source file, caching it so
// repeated anchor queries do not re-lex the file.
func (b *Builder) load(path string) (*scanner.File, error) {
	if f, ok := b.files[path]; ok {
		return f, nil
	}
	f, err := scanner.Load(path)
	if err != nil {
		return nil, err
	}
	b.files[path] = f
	return f, nil
}

// Locator exposes the builder's file cache to later pipeline stages, so
// the patcher reuses the same tokenized sources.
func (b *Builder) Locator(path string) (*scanner.File, error) {
	return b.load(path)
}
