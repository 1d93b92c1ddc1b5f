package importer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/ai"
	"beleidsgraaf/pkg/tkapi"
)

type fakeSource struct {
	items []tkapi.FetchedItem
	err   error
}

func (f *fakeSource) FetchItems(ctx context.Context, since *time.Time, limit int) ([]tkapi.FetchedItem, error) {
	return f.items, f.err
}

type fakeExtractor struct {
	fn    func(req ai.ExtractRequest) (ai.ExtractResult, error)
	calls int
}

func (f *fakeExtractor) ExtractTags(ctx context.Context, req ai.ExtractRequest) (ai.ExtractResult, error) {
	f.calls++
	return f.fn(req)
}

func extractorReturning(tags []string, summary string) *fakeExtractor {
	return &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
		return ai.ExtractResult{MatchedTags: tags, Summary: summary}, nil
	}}
}

// climateStore seeds a store with a "climate" tag under "environment",
// node 100 tagged climate and node 200 tagged environment.
func climateStore() *memStore {
	m := newMemStore()
	m.tags = []db.Tag{
		{ID: 1, Name: "environment"},
		{ID: 2, Name: "climate", ParentID: ptr(int64(1))},
	}
	m.nodeTags = []db.NodeTag{
		{NodeID: 100, NodeType: "policy", TagID: 2},
		{NodeID: 200, NodeType: "policy", TagID: 1},
	}
	return m
}

func motionItem(zaakID string) tkapi.FetchedItem {
	return tkapi.FetchedItem{
		ZaakID:       zaakID,
		ZaakNummer:   "2026Z" + zaakID,
		Title:        "Motie van het lid Jansen",
		Subject:      "Motie over klimaatadaptatie",
		Submitters:   []string{"Jansen"},
		DocumentText: "De Kamer verzoekt de regering de klimaatadaptatie te versnellen.",
		DocumentURL:  "https://example.org/document/" + zaakID,
	}
}

type fakeArchiver struct {
	zaakIDs []string
}

func (f *fakeArchiver) PutRawItem(ctx context.Context, itemType, zaakID string, payload any) error {
	f.zaakIDs = append(f.zaakIDs, zaakID)
	return nil
}

func TestRunCycleImportsItem(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, "Samenvatting."),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Imported != 1 || summary.Fetched != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	item, err := store.GetItemByZaakID(context.Background(), "z1")
	if err != nil {
		t.Fatalf("item not persisted: %v", err)
	}
	if item.Status != db.ItemStatusImported {
		t.Fatalf("status = %q, want imported", item.Status)
	}
	if item.CorpusNodeID == nil {
		t.Fatal("imported item should have a node")
	}
	if item.LlmSummary != "Samenvatting." {
		t.Fatalf("summary not stored: %q", item.LlmSummary)
	}
	if item.DocumentText == "" || item.DocumentURL == "" {
		t.Fatalf("document fields not stored: %+v", item)
	}

	node := store.nodes[*item.CorpusNodeID]
	if node == nil || node.NodeType != db.NodeTypeImportedItem {
		t.Fatalf("node missing or wrong type: %+v", node)
	}
	if node.Title != "Motie over klimaatadaptatie" {
		t.Fatalf("node title should come from the subject, got %q", node.Title)
	}

	edges, _ := store.ListSuggestedEdgesByItem(context.Background(), item.ID)
	if len(edges) != 2 {
		t.Fatalf("expected suggested edges for both candidates, got %+v", edges)
	}
	if edges[0].Status != db.EdgeStatusPending || edges[0].EdgeType != "addresses" {
		t.Fatalf("unexpected suggested edge: %+v", edges[0])
	}

	if len(store.tasks) != 1 {
		t.Fatalf("expected one review task, got %d", len(store.tasks))
	}
	if store.tasks[0].Deadline == nil {
		t.Fatal("review task should have a fallback deadline")
	}
	if store.tasks[0].Description != "Samenvatting." {
		t.Fatalf("review task should carry the summary, got %q", store.tasks[0].Description)
	}
}

func TestRunCycleIsIdempotent(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	if _, err := o.RunCycle(context.Background(), strat, nil, 50); err != nil {
		t.Fatalf("first cycle: %v", err)
	}
	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("second cycle: %v", err)
	}
	if summary.Skipped != 1 || summary.Imported != 0 {
		t.Fatalf("second cycle should skip, got %+v", summary)
	}
	if len(store.items) != 1 {
		t.Fatalf("expected a single item row, got %d", len(store.items))
	}
}

func TestRunCycleRaceLostMapsToSkip(t *testing.T) {
	store := climateStore()
	store.raceZaaks["z1"] = true
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Skipped != 1 || summary.Failed != 0 {
		t.Fatalf("a lost insert race is a skip, not a failure: %+v", summary)
	}
}

func TestRunCycleExtractionFailureLeavesPending(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
			return ai.ExtractResult{}, errors.New("model timeout")
		}},
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Pending != 1 {
		t.Fatalf("expected pending outcome, got %+v", summary)
	}

	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	if item.Status != db.ItemStatusPending {
		t.Fatalf("status = %q, want pending", item.Status)
	}
	if item.CorpusNodeID != nil {
		t.Fatal("deferred item must not get a node")
	}
	if edges, _ := store.ListSuggestedEdgesByItem(context.Background(), item.ID); len(edges) != 0 {
		t.Fatalf("deferred item must have zero suggested edges, got %d", len(edges))
	}
}

func TestRunCycleNoMatchIsOutOfScope(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"completely unrelated"}, "Valt buiten het beleid."),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.OutOfScope != 1 {
		t.Fatalf("expected out_of_scope, got %+v", summary)
	}
	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	if item.Status != db.ItemStatusOutOfScope || item.CorpusNodeID != nil {
		t.Fatalf("unexpected item state: %+v", item)
	}
	if item.LlmSummary != "Valt buiten het beleid." {
		t.Fatalf("out of scope item should keep the summary, got %q", item.LlmSummary)
	}
}

func TestRunCycleArchivesEveryFetchedItem(t *testing.T) {
	store := climateStore()
	archiver := &fakeArchiver{}
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: &fakeExtractor{fn: func(req ai.ExtractRequest) (ai.ExtractResult, error) {
			switch {
			case strings.Contains(req.DocumentText, "z1"):
				return ai.ExtractResult{MatchedTags: []string{"climate"}}, nil
			case strings.Contains(req.DocumentText, "z2"):
				return ai.ExtractResult{}, errors.New("model down")
			default:
				return ai.ExtractResult{MatchedTags: []string{"unrelated"}}, nil
			}
		}},
		Archiver: archiver,
	})
	items := []tkapi.FetchedItem{motionItem("z1"), motionItem("z2"), motionItem("z3")}
	for i := range items {
		items[i].DocumentText = "Verzoek " + items[i].ZaakID
	}
	strat := NewMotionStrategy(&fakeSource{items: items})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Imported != 1 || summary.Pending != 1 || summary.OutOfScope != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	want := []string{"z1", "z2", "z3"}
	if len(archiver.zaakIDs) != len(want) {
		t.Fatalf("archived %v, want every fetched item %v", archiver.zaakIDs, want)
	}
	for i := range want {
		if archiver.zaakIDs[i] != want[i] {
			t.Fatalf("archived %v, want %v", archiver.zaakIDs, want)
		}
	}
}

func TestRunCycleForceImportWithoutMatch(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning(nil, "Toezegging over iets nieuws."),
	})
	strat := NewCommitmentStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("commitments import regardless of match, got %+v", summary)
	}
	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	if item.CorpusNodeID == nil {
		t.Fatal("force-imported item should still get a node")
	}
	if edges, _ := store.ListSuggestedEdgesByItem(context.Background(), item.ID); len(edges) != 0 {
		t.Fatalf("no candidates means no suggested edges, got %d", len(edges))
	}
}

func TestRunCyclePartialEdgeFailure(t *testing.T) {
	store := climateStore()
	store.failEdgeForNode[200] = true
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("one bad edge must not fail the item, got %+v", summary)
	}
	item, _ := store.GetItemByZaakID(context.Background(), "z1")
	edges, _ := store.ListSuggestedEdgesByItem(context.Background(), item.ID)
	if len(edges) != 1 || *edges[0].CorpusNodeID != 100 {
		t.Fatalf("sibling edge should survive, got %+v", edges)
	}
}

func TestRunCycleSkipsChamberPseudoNames(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	item := motionItem("z1")
	item.Submitters = []string{"Tweede Kamer", "Jansen", "De Kamer"}
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{item}})

	if _, err := o.RunCycle(context.Background(), strat, nil, 50); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(store.stakeholders) != 1 {
		t.Fatalf("expected one stakeholder link, got %+v", store.stakeholders)
	}
	if store.persons["Jansen"] == nil {
		t.Fatal("person record for Jansen missing")
	}
	if store.persons["Tweede Kamer"] != nil {
		t.Fatal("chamber pseudo-name must not become a person")
	}
}

func TestRunCycleFetchErrorSkipsSourceOnly(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(
		&fakeSource{err: errors.New("upstream 503")},
		&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}},
	)

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Fetched != 1 || summary.Imported != 1 {
		t.Fatalf("healthy source should still be processed: %+v", summary)
	}
}

func TestReviewTaskOrgUnitVote(t *testing.T) {
	tests := []struct {
		name     string
		units    map[int64][]int64
		tieBreak TieBreakMode
		want     int64
	}{
		{
			name:  "majority wins",
			units: map[int64][]int64{100: {7}, 200: {3, 3}},
			want:  3,
		},
		{
			name:  "tie goes to first encountered",
			units: map[int64][]int64{100: {7}, 200: {3}},
			want:  7,
		},
		{
			name:     "tie goes to lowest id when configured",
			units:    map[int64][]int64{100: {7}, 200: {3}},
			tieBreak: TieBreakLowestID,
			want:     3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := climateStore()
			store.ownerUnits = tt.units
			o := NewOrchestrator(store, OrchestratorParams{
				Extractor: extractorReturning([]string{"climate"}, ""),
				TieBreak:  tt.tieBreak,
			})
			strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

			if _, err := o.RunCycle(context.Background(), strat, nil, 50); err != nil {
				t.Fatalf("RunCycle: %v", err)
			}
			if len(store.tasks) != 1 || store.tasks[0].OrgUnitID == nil {
				t.Fatalf("expected routed task, got %+v", store.tasks)
			}
			if *store.tasks[0].OrgUnitID != tt.want {
				t.Fatalf("org unit = %d, want %d", *store.tasks[0].OrgUnitID, tt.want)
			}
		})
	}
}

func TestRunCycleTaskFailureDoesNotFailImport(t *testing.T) {
	store := climateStore()
	store.failCreateTask = true
	o := NewOrchestrator(store, OrchestratorParams{
		Extractor: extractorReturning([]string{"climate"}, ""),
	})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("task failure must not fail the import: %+v", summary)
	}
}

func TestRunCycleNilExtractorDefersItems(t *testing.T) {
	store := climateStore()
	o := NewOrchestrator(store, OrchestratorParams{})
	strat := NewMotionStrategy(&fakeSource{items: []tkapi.FetchedItem{motionItem("z1")}})

	summary, err := o.RunCycle(context.Background(), strat, nil, 50)
	if err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if summary.Pending != 1 {
		t.Fatalf("missing extractor should defer items, got %+v", summary)
	}
}
