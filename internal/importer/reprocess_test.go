package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/ai"
	"beleidsgraaf/pkg/tkapi"
)

func seedPendingItem(t *testing.T, store *memStore, zaakID string) db.ImportedItem {
	t.Helper()
	item, err := store.CreateItem(context.Background(), db.CreateImportedItemParams{
		ZaakID:       zaakID,
		ItemType:     ItemTypeMotion,
		Title:        "Motie " + zaakID,
		Subject:      "Onderwerp " + zaakID,
		DocumentText: "Documenttekst " + zaakID,
		Status:       db.ItemStatusPending,
	})
	if err != nil {
		t.Fatalf("seed pending item: %v", err)
	}
	return item
}

func TestReprocessMatchesPendingItem(t *testing.T) {
	store := climateStore()
	seedPendingItem(t, store, "z1")
	var gotDocumentText string
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
			gotDocumentText = req.DocumentText
			return ai.ExtractResult{MatchedTags: []string{"climate"}, Summary: "Nieuwe samenvatting."}, nil
		}},
	})

	summary, err := o.Reprocess(context.Background(), NewMotionStrategy())
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if summary.Total != 1 || summary.Matched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	if gotDocumentText != "Documenttekst z1" {
		t.Fatalf("extraction should see the stored document text, got %q", gotDocumentText)
	}

	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	if item.Status != db.ItemStatusImported || item.CorpusNodeID == nil {
		t.Fatalf("item not matched: %+v", item)
	}
	if edges, _ := store.ListSuggestedEdgesByItem(context.Background(), item.ID); len(edges) != 2 {
		t.Fatalf("expected suggested edges after reprocess, got %d", len(edges))
	}
}

func TestReprocessNoLLMAbortsBatch(t *testing.T) {
	store := climateStore()
	seedPendingItem(t, store, "z1")
	seedPendingItem(t, store, "z2")
	seedPendingItem(t, store, "z3")

	calls := 0
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
			calls++
			if calls > 1 {
				return ai.ExtractResult{}, fmt.Errorf("%w: connection refused", ai.ErrUnavailable)
			}
			return ai.ExtractResult{MatchedTags: []string{"climate"}}, nil
		}},
	})

	summary, err := o.Reprocess(context.Background(), NewMotionStrategy())
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if !summary.NoLLM {
		t.Fatalf("expected NoLLM, got %+v", summary)
	}
	if summary.Matched != 1 || summary.Total != 1 {
		t.Fatalf("counters should reflect work done before the abort: %+v", summary)
	}

	// The untouched items stay pending for the next run.
	for _, zaak := range []string{"z2", "z3"} {
		item, _ := store.GetItemByZaakID(context.Background(), zaak)
		if item.Status != db.ItemStatusPending {
			t.Fatalf("item %s should stay pending, got %q", zaak, item.Status)
		}
	}
}

func TestReprocessPerItemErrorSkips(t *testing.T) {
	store := climateStore()
	seedPendingItem(t, store, "z1")
	seedPendingItem(t, store, "z2")

	calls := 0
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
			calls++
			if calls == 1 {
				return ai.ExtractResult{}, errors.New("malformed response")
			}
			return ai.ExtractResult{MatchedTags: []string{"climate"}}, nil
		}},
	})

	summary, err := o.Reprocess(context.Background(), NewMotionStrategy())
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if summary.Skipped != 1 || summary.Matched != 1 || summary.Total != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	if item.Status != db.ItemStatusPending {
		t.Fatalf("skipped item must keep its status, got %q", item.Status)
	}
}

func TestReprocessNoMatchDetachesNode(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	if _, err := o.RunCycle(context.Background(), strat, nil, 50); err != nil {
		t.Fatalf("seed cycle: %v", err)
	}
	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	nodeID := *item.CorpusNodeID
	// Wipe the suggested edges so the item becomes a candidate again.
	if err := store.DeleteSuggestedEdgesByItem(context.Background(), item.ID); err != nil {
		t.Fatal(err)
	}

	o2 := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"completely unrelated"}, ""),
	})
	summary, err := o2.Reprocess(context.Background(), NewMotionStrategy())
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if summary.OutOfScope != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	item, _ = store.GetItemByZaakID(context.Background(), "z1")
	if item.Status != db.ItemStatusOutOfScope || item.CorpusNodeID != nil {
		t.Fatalf("item should be detached and out of scope: %+v", item)
	}
	if store.nodes[nodeID] != nil {
		t.Fatal("stale node should be deleted")
	}
	if len(store.tasks) != 0 {
		t.Fatalf("review tasks should cascade with the node, got %+v", store.tasks)
	}
}

func TestReprocessSkipsResolvedItems(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})
	if _, err := o.RunCycle(context.Background(), strat, nil, 50); err != nil {
		t.Fatalf("seed cycle: %v", err)
	}

	// The item is imported with suggested edges, so nothing qualifies.
	summary, err := o.Reprocess(context.Background(), NewMotionStrategy())
	if err != nil {
		t.Fatalf("Reprocess: %v", err)
	}
	if summary.Total != 0 {
		t.Fatalf("resolved items must not be reprocessed: %+v", summary)
	}
}
