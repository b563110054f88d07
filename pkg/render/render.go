// Package render turns an analysis result of unknown shape into a tree of
// display blocks: nested Property/Value tables, lists for arrays, and
// highlighted scalars. The output depends only on the input value, so the
// same result always renders the same way.
package render

import (
	"strconv"

	"github.com/helmcode/text-analyzer/pkg/model"
)

// DefaultMaxDepth bounds table nesting.
const DefaultMaxDepth = 32

// Placeholders emitted by the recursion guards.
const (
	TextMaxDepth = "[max depth exceeded]"
	TextCircular = "[circular]"
)

// Column headers of every table.
const (
	HeaderProperty = "Property"
	HeaderValue    = "Value"
)

// BlockKind identifies the shape of a Block.
type BlockKind int

const (
	BlockScalar BlockKind = iota
	BlockTable
	BlockList
)

// Block is one displayable node.
type Block struct {
	Kind  BlockKind
	Depth int
	// Indent is the left padding applied to nested tables, proportional to Depth.
	Indent int

	// Scalar
	Text string
	// Highlight marks a scalar rendered on its own rather than inside a cell.
	Highlight bool

	// Table
	Rows []Row

	// List
	Items []*Block
}

// Row is one Property/Value pair of a table.
type Row struct {
	Index   int
	Key     string
	Striped bool
	Value   *Block
}

// Options tunes rendering.
type Options struct {
	MaxDepth    int
	IndentWidth int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth, IndentWidth: 2}
}

type renderer struct {
	opts Options
	// path holds composite nodes on the current branch only, so shared
	// subtrees still render while true cycles are cut.
	path map[*model.Value]bool
}

// Render builds the block tree for v.
func Render(v *model.Value, opts Options) *Block {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.IndentWidth < 0 {
		opts.IndentWidth = 0
	}
	r := &renderer{opts: opts, path: make(map[*model.Value]bool)}
	return r.block(v, 0)
}

// block renders v as a stand-alone block at depth.
func (r *renderer) block(v *model.Value, depth int) *Block {
	if !v.IsComposite() {
		return &Block{Kind: BlockScalar, Depth: depth, Text: v.String(), Highlight: true}
	}
	return r.table(v, depth)
}

func (r *renderer) table(v *model.Value, depth int) *Block {
	if depth >= r.opts.MaxDepth {
		return &Block{Kind: BlockScalar, Depth: depth, Text: TextMaxDepth, Highlight: true}
	}
	if r.path[v] {
		return &Block{Kind: BlockScalar, Depth: depth, Text: TextCircular, Highlight: true}
	}
	r.path[v] = true
	defer delete(r.path, v)

	t := &Block{Kind: BlockTable, Depth: depth, Indent: depth * r.opts.IndentWidth}
	for i, e := range entries(v) {
		t.Rows = append(t.Rows, Row{
			Index:   i,
			Key:     e.Key,
			Striped: i%2 == 1,
			Value:   r.cell(e.Value, depth),
		})
	}
	return t
}

// cell renders the Value column of a row in a table at depth.
func (r *renderer) cell(v *model.Value, depth int) *Block {
	switch {
	case v == nil || !v.IsComposite():
		return &Block{Kind: BlockScalar, Depth: depth, Text: v.String()}
	case v.Kind == model.KindObject:
		return r.table(v, depth+1)
	default:
		return r.list(v, depth)
	}
}

// list renders an array value one item per line. Composite items nest as tables.
func (r *renderer) list(v *model.Value, depth int) *Block {
	if r.path[v] {
		return &Block{Kind: BlockScalar, Depth: depth, Text: TextCircular}
	}
	r.path[v] = true
	defer delete(r.path, v)

	l := &Block{Kind: BlockList, Depth: depth}
	for _, item := range v.Items {
		if item.IsComposite() {
			l.Items = append(l.Items, r.table(item, depth+1))
			continue
		}
		l.Items = append(l.Items, &Block{Kind: BlockScalar, Depth: depth, Text: item.String()})
	}
	return l
}

// entries lists an object's members in payload order. Arrays are keyed by index.
func entries(v *model.Value) []model.Member {
	if v.Kind == model.KindObject {
		return v.Members
	}
	out := make([]model.Member, len(v.Items))
	for i, item := range v.Items {
		out[i] = model.Member{Key: strconv.Itoa(i), Value: item}
	}
	return out
}

// Keys returns a table's row keys in order, or nil for other blocks.
func (b *Block) Keys() []string {
	if b == nil || b.Kind != BlockTable {
		return nil
	}
	keys := make([]string, len(b.Rows))
	for i, row := range b.Rows {
		keys[i] = row.Key
	}
	return keys
}

// Lookup returns the Value block of the row with key, or nil.
func (b *Block) Lookup(key string) *Block {
	if b == nil || b.Kind != BlockTable {
		return nil
	}
	for _, row := range b.Rows {
		if row.Key == key {
			return row.Value
		}
	}
	return nil
}
