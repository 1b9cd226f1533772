package catalog

import (
	"context"
	"fmt"
)

// StoredMutation is a journal row.
type StoredMutation struct {
	ID          int64
	Op          MutationOp
	Kind        EntryKind
	Source      string
	Destination string
	Category    Category
	AppliedAt   string
}

// StoredOpSummary counts journal rows per operation and entry kind.
type StoredOpSummary struct {
	Op    MutationOp
	Kind  EntryKind
	Count int
}

// StoredMutations returns every journaled mutation in the order applied.
func (j *Journal) StoredMutations(ctx context.Context) ([]StoredMutation, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, op, kind, source, destination, category, applied_at
FROM mutations
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query stored mutations: %w", err)
	}
	defer rows.Close()

	var mutations []StoredMutation
	for rows.Next() {
		var m StoredMutation
		var op, kind, category string
		if err := rows.Scan(&m.ID, &op, &kind, &m.Source, &m.Destination, &category, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("scan stored mutation: %w", err)
		}
		m.Op = MutationOp(op)
		m.Kind = EntryKind(kind)
		if m.Category, err = ParseCategory(category); err != nil {
			return nil, fmt.Errorf("scan stored mutation %d: %w", m.ID, err)
		}
		mutations = append(mutations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stored mutations: %w", err)
	}

	return mutations, nil
}

// StoredSummary returns the number of journaled mutations per operation and kind.
func (j *Journal) StoredSummary(ctx context.Context) ([]StoredOpSummary, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT op, kind, COUNT(*) as mutation_count
FROM mutations
GROUP BY op, kind
ORDER BY op, kind
`)
	if err != nil {
		return nil, fmt.Errorf("query stored summary: %w", err)
	}
	defer rows.Close()

	var summaries []StoredOpSummary
	for rows.Next() {
		var summary StoredOpSummary
		var op, kind string
		if err := rows.Scan(&op, &kind, &summary.Count); err != nil {
			return nil, fmt.Errorf("scan stored summary: %w", err)
		}
		summary.Op = MutationOp(op)
		summary.Kind = EntryKind(kind)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stored summary: %w", err)
	}

	return summaries, nil
}
