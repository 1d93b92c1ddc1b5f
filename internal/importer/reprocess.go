package importer

import (
	"context"
	"errors"
	"fmt"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/ai"
	"beleidsgraaf/pkg/logger"
	"beleidsgraaf/pkg/tkapi"
)

// Reprocess retries matching for items a previous cycle left behind:
// pending items whose extraction failed, and imported items that never
// got any suggested edges. Nothing is fetched from the source, the
// stored item row is the input.
//
// An unavailable extraction capability aborts the whole batch with
// NoLLM set, so a half-done batch is never reported as success. Other
// per-item extraction errors only skip that item.
func (o *Orchestrator) Reprocess(ctx context.Context, strat Strategy) (ReprocessSummary, error) {
	summary := ReprocessSummary{ItemType: strat.ItemType()}

	snap, err := o.store.LoadSnapshot(ctx)
	if err != nil {
		return summary, fmt.Errorf("load match snapshot: %w", err)
	}

	items, err := o.store.ListReprocessCandidates(ctx, strat.ItemType())
	if err != nil {
		return summary, fmt.Errorf("list reprocess candidates: %w", err)
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fetched := fetchedFromItem(item)

		res, err := o.extract(ctx, strat, snap, fetched)
		if err != nil {
			if errors.Is(err, ai.ErrUnavailable) {
				summary.NoLLM = true
				return summary, nil
			}
			logger.Warn("Extraction failed during reprocessing, skipping item",
				"zaak_id", item.ZaakID, "err", err)
			summary.Total++
			summary.Skipped++
			continue
		}

		candidates := ScoreNodes(res.MatchedTags, snap)
		if len(candidates) == 0 && !strat.ForceImport() {
			if err := o.markOutOfScope(ctx, item, res); err != nil {
				logger.Error("Marking item out of scope failed",
					"zaak_id", item.ZaakID, "err", err)
				summary.Total++
				summary.Skipped++
				continue
			}
			summary.Total++
			summary.OutOfScope++
			continue
		}

		var nodeID int64
		err = o.store.InTx(ctx, func(s Store) error {
			if err := teardownNode(ctx, s, item); err != nil {
				return err
			}
			var err error
			nodeID, err = o.matchBranch(ctx, s, strat, snap, item, fetched, res, candidates)
			return err
		})
		if err != nil {
			logger.Error("Rematching item failed", "zaak_id", item.ZaakID, "err", err)
			summary.Total++
			summary.Skipped++
			continue
		}
		o.afterImport(ctx, strat, fetched, nodeID, candidates)
		summary.Total++
		summary.Matched++
	}
	return summary, nil
}

// markOutOfScope parks an item that no longer matches anything,
// deleting any graph node a previous pass created. Detail rows and
// review tasks go with the node.
func (o *Orchestrator) markOutOfScope(ctx context.Context, item db.ImportedItem, res ai.ExtractResult) error {
	summary := res.Summary
	if summary == "" {
		summary = item.LlmSummary
	}
	return o.store.InTx(ctx, func(s Store) error {
		if err := teardownNode(ctx, s, item); err != nil {
			return err
		}
		if err := s.DeleteSuggestedEdgesByItem(ctx, item.ID); err != nil {
			return err
		}
		return s.UpdateItemMatch(ctx, db.UpdateImportedItemMatchParams{
			ID:          item.ID,
			Status:      db.ItemStatusOutOfScope,
			MatchedTags: res.MatchedTags,
			LlmSummary:  summary,
		})
	})
}

// teardownNode removes the graph node a previous pass created for the
// item, plus its suggested edges, so the next pass starts clean.
func teardownNode(ctx context.Context, s Store, item db.ImportedItem) error {
	if item.CorpusNodeID == nil {
		return nil
	}
	if err := s.DeleteSuggestedEdgesByItem(ctx, item.ID); err != nil {
		return err
	}
	if err := s.DetachItemNode(ctx, item.ID, item.Status); err != nil {
		return err
	}
	return s.DeleteNode(ctx, *item.CorpusNodeID)
}

func fetchedFromItem(item db.ImportedItem) tkapi.FetchedItem {
	return tkapi.FetchedItem{
		ZaakID:       item.ZaakID,
		ZaakNummer:   item.ZaakNummer,
		Title:        item.Title,
		Subject:      item.Subject,
		Date:         item.SourceDate,
		Deadline:     item.Deadline,
		Ministry:     item.Ministry,
		Submitters:   item.Submitters,
		DocumentText: item.DocumentText,
		DocumentURL:  item.DocumentURL,
		ExtraData:    item.ExtraData,
	}
}
