package catalog

import (
	"context"
	"time"
)

// MutationOp names a mutation applied through the catalog.
type MutationOp string

const (
	OpDelete MutationOp = "delete"
	OpCopy   MutationOp = "copy"
	OpMove   MutationOp = "move"
)

// EntryKind distinguishes file mutations from folder mutations.
type EntryKind string

const (
	KindFile   EntryKind = "file"
	KindFolder EntryKind = "folder"
)

// Mutation describes one completed filesystem change and its record update.
// Destination is empty for deletions.
type Mutation struct {
	Op          MutationOp `json:"op"`
	Kind        EntryKind  `json:"kind"`
	Source      string     `json:"source"`
	Destination string     `json:"destination,omitempty"`
	Category    Category   `json:"category"`
	At          time.Time  `json:"at"`
}

// MutationTarget consumes notifications of completed mutations.
type MutationTarget interface {
	ApplyMutation(ctx context.Context, m Mutation) error
}

// RegisterTarget adds a target notified after every completed mutation.
func (c *Catalog) RegisterTarget(target MutationTarget) {
	if target == nil {
		return
	}
	c.targets = append(c.targets, target)
}

// dispatch notifies the registered targets. The mutation has already been
// applied to disk and to the records, so target failures are only logged.
func (c *Catalog) dispatch(ctx context.Context, m Mutation) {
	if len(c.targets) == 0 {
		return
	}
	if m.At.IsZero() {
		m.At = time.Now().UTC()
	}
	for _, target := range c.targets {
		if err := target.ApplyMutation(ctx, m); err != nil {
			c.loggerOrDefault().Warn("Mutation target failed", "op", m.Op, "kind", m.Kind, "source", m.Source, "destination", m.Destination, "error", err)
		}
	}
}
