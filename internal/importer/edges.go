package importer

import (
	"context"
	"errors"
	"fmt"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/logger"
)

var (
	// ErrNoLinkedNode means the owning item has no graph node, so there
	// is nothing to hang a real edge off.
	ErrNoLinkedNode = errors.New("imported item has no linked node")

	// ErrNoTargetNode means the suggestion lost its target node.
	ErrNoTargetNode = errors.New("suggested edge has no target node")

	// ErrNotPending guards updates that only make sense before review.
	ErrNotPending = errors.New("suggested edge is not pending")

	// ErrCannotReopen guards Reopen against non-terminal items.
	ErrCannotReopen = errors.New("item cannot be reopened from its current status")
)

// EdgeReviewer implements the human review transitions on suggested
// edges. All transitions either fully apply or leave no trace.
type EdgeReviewer struct {
	store Store
}

func NewEdgeReviewer(store Store) *EdgeReviewer {
	return &EdgeReviewer{store: store}
}

// Approve turns a pending suggestion into a real corpus edge from the
// item's node to the suggested target.
func (r *EdgeReviewer) Approve(ctx context.Context, suggestedEdgeID int64) (db.SuggestedEdge, error) {
	var approved db.SuggestedEdge
	err := r.store.InTx(ctx, func(s Store) error {
		se, err := s.GetSuggestedEdge(ctx, suggestedEdgeID)
		if err != nil {
			return err
		}
		if se.Status != db.EdgeStatusPending {
			return fmt.Errorf("approve: %w", ErrNotPending)
		}
		if se.CorpusNodeID == nil {
			return fmt.Errorf("approve: %w", ErrNoTargetNode)
		}
		item, err := s.GetItem(ctx, se.ItemID)
		if err != nil {
			return err
		}
		if item.CorpusNodeID == nil {
			return fmt.Errorf("approve: %w", ErrNoLinkedNode)
		}
		edge, err := s.CreateEdge(ctx, db.CreateCorpusEdgeParams{
			FromNodeID: *item.CorpusNodeID,
			ToNodeID:   *se.CorpusNodeID,
			EdgeType:   se.EdgeType,
		})
		if err != nil {
			return err
		}
		if err := s.ApproveSuggestedEdge(ctx, se.ID, edge.ID); err != nil {
			return err
		}
		approved, err = s.GetSuggestedEdge(ctx, se.ID)
		return err
	})
	return approved, err
}

// Reject marks a pending suggestion as rejected. No graph side effect.
func (r *EdgeReviewer) Reject(ctx context.Context, suggestedEdgeID int64) (db.SuggestedEdge, error) {
	var rejected db.SuggestedEdge
	err := r.store.InTx(ctx, func(s Store) error {
		se, err := s.GetSuggestedEdge(ctx, suggestedEdgeID)
		if err != nil {
			return err
		}
		if se.Status != db.EdgeStatusPending {
			return fmt.Errorf("reject: %w", ErrNotPending)
		}
		if err := s.RejectSuggestedEdge(ctx, se.ID); err != nil {
			return err
		}
		rejected, err = s.GetSuggestedEdge(ctx, se.ID)
		return err
	})
	return rejected, err
}

// UpdateEdgeType changes the proposed edge type. Only pending
// suggestions may change.
func (r *EdgeReviewer) UpdateEdgeType(ctx context.Context, suggestedEdgeID int64, edgeType string) (db.SuggestedEdge, error) {
	var updated db.SuggestedEdge
	err := r.store.InTx(ctx, func(s Store) error {
		se, err := s.GetSuggestedEdge(ctx, suggestedEdgeID)
		if err != nil {
			return err
		}
		if se.Status != db.EdgeStatusPending {
			return fmt.Errorf("update: %w", ErrNotPending)
		}
		if err := s.SetSuggestedEdgeType(ctx, se.ID, edgeType); err != nil {
			return err
		}
		updated, err = s.GetSuggestedEdge(ctx, se.ID)
		return err
	})
	return updated, err
}

// Reset reverts an approved or rejected suggestion to pending. For an
// approved one the real edge is deleted best-effort: a vanished edge is
// fine, we only care that it is gone.
func (r *EdgeReviewer) Reset(ctx context.Context, suggestedEdgeID int64) (db.SuggestedEdge, error) {
	var reset db.SuggestedEdge
	err := r.store.InTx(ctx, func(s Store) error {
		se, err := s.GetSuggestedEdge(ctx, suggestedEdgeID)
		if err != nil {
			return err
		}
		if se.Status == db.EdgeStatusPending {
			reset = se
			return nil
		}
		if se.EdgeID != nil {
			if err := s.DeleteEdge(ctx, *se.EdgeID); err != nil {
				logger.Warn("Deleting corpus edge on reset failed",
					"edge_id", *se.EdgeID, "err", err)
			}
		}
		if err := s.ResetSuggestedEdge(ctx, se.ID); err != nil {
			return err
		}
		reset, err = s.GetSuggestedEdge(ctx, se.ID)
		return err
	})
	return reset, err
}

// Reopen puts a rejected or out-of-scope item back in the review queue.
// The status goes to imported, not pending, so the reprocessor does not
// redo the matching and existing suggested edges stay meaningful.
func (r *EdgeReviewer) Reopen(ctx context.Context, itemID int64) (db.ImportedItem, error) {
	var reopened db.ImportedItem
	err := r.store.InTx(ctx, func(s Store) error {
		item, err := s.GetItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item.Status != db.ItemStatusRejected && item.Status != db.ItemStatusOutOfScope {
			return fmt.Errorf("reopen from %q: %w", item.Status, ErrCannotReopen)
		}
		if err := s.ReopenItem(ctx, item.ID); err != nil {
			return err
		}
		reopened, err = s.GetItem(ctx, item.ID)
		return err
	})
	return reopened, err
}
