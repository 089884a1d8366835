package contentlake

import (
	"context"

	"github.com/contentlake/contentlake/contentlake/document"
)

type BatchOpKind int

const (
	batchPut BatchOpKind = iota
	batchDelete
)

type BatchOp struct {
	Kind BatchOpKind
	Doc  map[string]any // for put
	Opts PutOptions     // for put
	ID   string         // for delete
}

// Batch collects puts and deletes applied in one transaction.
type Batch struct {
	ops []BatchOp
}

func NewBatch() Batch {
	return Batch{ops: make([]BatchOp, 0)}
}

// PutJSON queues a put of a JSON document.
func (b *Batch) PutJSON(doc []byte, opts PutOptions) error {
	m, err := document.Decode(doc)
	if err != nil {
		return Wrap(ErrValidation, "document json", err)
	}
	return b.Put(m, opts)
}

// Put queues a put. The document is validated when the batch runs.
func (b *Batch) Put(doc map[string]any, opts PutOptions) error {
	if doc == nil {
		return New(ErrValidation, "document cannot be nil")
	}
	b.ops = append(b.ops, BatchOp{Kind: batchPut, Doc: doc, Opts: opts})
	return nil
}

func (b *Batch) Delete(id string) error {
	if id == "" {
		return ValidationError(document.FieldID, "id cannot be empty", nil)
	}
	b.ops = append(b.ops, BatchOp{Kind: batchDelete, ID: id})
	return nil
}

func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Empty() bool {
	return len(b.ops) == 0
}

// Execute is implemented on Dataset to keep storage access internal
func (b *Batch) Execute(ctx context.Context, d *Dataset) (int, error) {
	return d.Batch(ctx, *b)
}
