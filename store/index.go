package store

import (
	"github.com/Jairik/Parallel-Query-Processing-System/bptree"
	"github.com/Jairik/Parallel-Query-Processing-System/key"
	"github.com/Jairik/Parallel-Query-Processing-System/schema"
)

// Index is one bound attribute's secondary index: a B+-tree multimap
// from the attribute's extracted key to the row that produced it. Row
// references are non-owning — the store's rows slice is the only owner
// (spec.md §3's lifetime rule), so the index stores *schema.Row
// pointers and never copies rows.
type Index struct {
	Attribute string
	FieldType schema.FieldType
	tree      *bptree.Tree[*schema.Row]
}

func newIndex(attribute string, fieldType schema.FieldType, order int) *Index {
	return &Index{Attribute: attribute, FieldType: fieldType, tree: bptree.New[*schema.Row](order)}
}

// Find returns every row currently indexed under exactly k.
func (ix *Index) Find(k key.Key) []*schema.Row { return ix.tree.Find(k) }

// Range returns every row indexed with a key in the closed interval
// [lo, hi].
func (ix *Index) Range(lo, hi key.Key) []*schema.Row { return ix.tree.Range(lo, hi) }

// Len reports the number of (key, row) entries currently indexed.
func (ix *Index) Len() int { return ix.tree.Len() }

func (ix *Index) insert(row *schema.Row) {
	ix.tree.Insert(schema.ExtractKey(row, ix.Attribute), row)
}

func (ix *Index) remove(row *schema.Row) bool {
	return ix.tree.Delete(schema.ExtractKey(row, ix.Attribute), row)
}

func (ix *Index) rebuild(rows []*schema.Row, order int) {
	ix.tree = bptree.New[*schema.Row](order)
	for _, r := range rows {
		ix.insert(r)
	}
}
