package config

import (
	"fmt"
	"sort"

	"github.com/bianoble/macrame/internal/entry"
)

// Resolved is the merged configuration: at most one entry per
// (category, label), in the order each label was first declared.
type Resolved struct {
	order   map[entry.Category][]string
	entries map[entry.Category]map[string]entry.Entry

	// Skipped lists category names found in documents that no handler
	// knows about, sorted and deduplicated.
	Skipped []string
}

func newResolved() *Resolved {
	r := &Resolved{
		order:   make(map[entry.Category][]string),
		entries: make(map[entry.Category]map[string]entry.Entry),
	}
	for _, c := range entry.Categories {
		r.entries[c] = make(map[string]entry.Entry)
	}
	return r
}

// put inserts e, or combines it into the entry already holding its label.
// Replacement keeps the original position.
func (r *Resolved) put(e entry.Entry) error {
	c, label := e.Category(), e.Label()
	existing, ok := r.entries[c][label]
	if !ok {
		r.entries[c][label] = e
		r.order[c] = append(r.order[c], label)
		return nil
	}
	merged, err := entry.Combine(existing, e)
	if err != nil {
		return err
	}
	r.entries[c][label] = merged
	return nil
}

// Entries returns the entries of one category in first-declaration order.
func (r *Resolved) Entries(c entry.Category) []entry.Entry {
	out := make([]entry.Entry, 0, len(r.order[c]))
	for _, label := range r.order[c] {
		out = append(out, r.entries[c][label])
	}
	return out
}

// All returns every entry in application order: categories in the order of
// entry.Categories, entries within a category in first-declaration order.
func (r *Resolved) All() []entry.Entry {
	var out []entry.Entry
	for _, c := range entry.Categories {
		out = append(out, r.Entries(c)...)
	}
	return out
}

// Get returns the entry for (c, label).
func (r *Resolved) Get(c entry.Category, label string) (entry.Entry, bool) {
	e, ok := r.entries[c][label]
	return e, ok
}

// Len returns the number of entries across all categories.
func (r *Resolved) Len() int {
	n := 0
	for _, labels := range r.order {
		n += len(labels)
	}
	return n
}

// Aggregate merges documents in order, lowest precedence first. A later
// declaration of an existing (category, label) is combined into it with
// entry.Combine. Unknown categories are skipped and reported in Skipped.
func Aggregate(docs []*Document) (*Resolved, error) {
	r := newResolved()
	skipped := make(map[string]bool)

	for _, doc := range docs {
		for name := range doc.Categories {
			if _, ok := entry.LookupCategory(name); !ok {
				skipped[name] = true
			}
		}

		for _, c := range entry.Categories {
			for i, raw := range doc.Categories[string(c)] {
				e, err := entry.Decode(c, raw)
				if err != nil {
					return nil, fmt.Errorf("%s layer %s: %s[%d]: %w", doc.Level, doc.Path, c, i, err)
				}
				if err := r.put(e); err != nil {
					return nil, fmt.Errorf("%s layer %s: %w", doc.Level, doc.Path, err)
				}
			}
		}
	}

	for name := range skipped {
		r.Skipped = append(r.Skipped, name)
	}
	sort.Strings(r.Skipped)
	return r, nil
}

// Resolve loads every layer described by opts and aggregates them.
func Resolve(opts HierarchicalOptions) (*Resolved, *HierarchicalResult, error) {
	loaded, err := LoadHierarchical(opts)
	if err != nil {
		return nil, loaded, err
	}
	r, err := Aggregate(loaded.Documents)
	if err != nil {
		return nil, loaded, err
	}
	return r, loaded, nil
}
