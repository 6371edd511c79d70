// Package search finds nodes by name and keeps a cyclic cursor over the
// results.
package search

import (
	"errors"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"
	"golang.org/x/text/cases"

	"github.com/brettbedarf/vtree/filesystem"
	"github.com/brettbedarf/vtree/internal/util"
)

// ErrEmptyKeyword is returned for a keyword that is blank after trimming
var ErrEmptyKeyword = errors.New("search keyword is empty")

// Tree is the part of [filesystem.FileSystem] the engine reads
type Tree interface {
	Walk(fn func(n *filesystem.Node, depth int) bool)
	Lookup(id uint64) (*filesystem.Node, bool)
}

// Options tune matching
type Options struct {
	// Fuzzy matches the keyword as a subsequence of the name instead of a
	// contiguous substring.
	Fuzzy bool
}

// Engine holds the last result set as node IDs plus a cursor into it.
// The cursor is -1 when no search has run or nothing matched.
type Engine struct {
	opts    Options
	tree    Tree
	results []uint64
	cursor  int
}

// NewEngine creates an engine with no results
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts, cursor: -1}
}

// Search matches keyword against node names, case-insensitively, in
// pre-order. A blank keyword returns [ErrEmptyKeyword] and leaves the
// previous results in place. No match is not an error.
func (e *Engine) Search(tree Tree, keyword string) ([]*filesystem.Node, error) {
	logger := util.GetLogger("Search.Search")

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrEmptyKeyword
	}

	fold := cases.Fold()
	needle := fold.String(keyword)

	var nodes []*filesystem.Node
	var names []string
	tree.Walk(func(n *filesystem.Node, _ int) bool {
		nodes = append(nodes, n)
		names = append(names, fold.String(n.Name()))
		return true
	})

	var matched []*filesystem.Node
	if e.opts.Fuzzy {
		idx := make([]int, 0)
		for _, m := range fuzzy.Find(needle, names) {
			idx = append(idx, m.Index)
		}
		// fuzzy orders by score; results follow the tree
		slices.Sort(idx)
		for _, i := range idx {
			matched = append(matched, nodes[i])
		}
	} else {
		for i, name := range names {
			if strings.Contains(name, needle) {
				matched = append(matched, nodes[i])
			}
		}
	}

	e.tree = tree
	e.results = e.results[:0]
	for _, n := range matched {
		e.results = append(e.results, n.NodeID())
	}
	e.cursor = -1
	if len(e.results) > 0 {
		e.cursor = 0
	}

	logger.Debug().Str("keyword", keyword).Bool("fuzzy", e.opts.Fuzzy).Int("matches", len(matched)).Msg("Search complete")
	return matched, nil
}

// Next advances the cursor cyclically and returns the node under it.
// It is a no-op returning false when there are no results.
func (e *Engine) Next() (*filesystem.Node, bool) {
	n := len(e.results)
	if n == 0 {
		return nil, false
	}
	e.cursor = (e.cursor + 1) % n
	return e.Current()
}

// Prev retreats the cursor cyclically and returns the node under it
func (e *Engine) Prev() (*filesystem.Node, bool) {
	n := len(e.results)
	if n == 0 {
		return nil, false
	}
	e.cursor = (e.cursor - 1 + n) % n
	return e.Current()
}

// Current returns the node under the cursor. It reports false when there is
// no cursor or the node has been deleted since the search.
func (e *Engine) Current() (*filesystem.Node, bool) {
	if e.cursor < 0 || e.cursor >= len(e.results) {
		return nil, false
	}
	return e.tree.Lookup(e.results[e.cursor])
}

// Index returns the cursor position; -1 if there is none
func (e *Engine) Index() int {
	return e.cursor
}

// Len returns the size of the current result set
func (e *Engine) Len() int {
	return len(e.results)
}

// Results resolves the current result set. Nodes deleted since the search
// are skipped.
func (e *Engine) Results() []*filesystem.Node {
	out := make([]*filesystem.Node, 0, len(e.results))
	for _, id := range e.results {
		if n, ok := e.tree.Lookup(id); ok {
			out = append(out, n)
		}
	}
	return out
}

// Reset clears the results and the cursor
func (e *Engine) Reset() {
	e.tree = nil
	e.results = nil
	e.cursor = -1
}
