package importer

import (
	"context"
	"fmt"
	"time"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/ai"
	"beleidsgraaf/pkg/logger"
	"beleidsgraaf/pkg/tkapi"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// TieBreakMode decides the review task's org unit when the owner vote
// among matched nodes is tied.
type TieBreakMode int

const (
	// TieBreakFirstEncountered picks the unit that appeared first in
	// stakeholder order.
	TieBreakFirstEncountered TieBreakMode = iota
	// TieBreakLowestID picks the unit with the lowest id.
	TieBreakLowestID
)

// Orchestrator runs import cycles. One orchestrator serves all item
// types, the per-type behavior comes from the Strategy passed to
// RunCycle.
type Orchestrator struct {
	store     Store
	extractor Extractor
	notifier  Notifier
	archiver  Archiver

	taskDeadlineDays int
	tieBreak         TieBreakMode
	now              func() time.Time
}

type OrchestratorParams struct {
	Extractor Extractor
	Notifier  Notifier
	Archiver  Archiver

	// TaskDeadlineDays is the business-day fallback when a strategy
	// yields no deadline. Zero means DefaultTaskDeadlineDays.
	TaskDeadlineDays int
	TieBreak         TieBreakMode

	// Now overrides the clock in tests.
	Now func() time.Time
}

func NewOrchestrator(store Store, params OrchestratorParams) *Orchestrator {
	days := params.TaskDeadlineDays
	if days <= 0 {
		days = DefaultTaskDeadlineDays
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		store:            store,
		extractor:        params.Extractor,
		notifier:         params.Notifier,
		archiver:         params.Archiver,
		taskDeadlineDays: days,
		tieBreak:         params.TieBreak,
		now:              now,
	}
}

// RunCycle fetches items of one type from every configured source and
// processes each independently. A fetch failure skips that source only,
// a processing failure skips that item only. The context is checked
// between items, not inside one.
func (o *Orchestrator) RunCycle(ctx context.Context, strat Strategy, since *time.Time, limit int) (CycleSummary, error) {
	summary := CycleSummary{ItemType: strat.ItemType()}

	snap, err := o.store.LoadSnapshot(ctx)
	if err != nil {
		return summary, fmt.Errorf("load match snapshot: %w", err)
	}

	var fetched []tkapi.FetchedItem
	for _, source := range strat.Sources() {
		items, err := source.FetchItems(ctx, since, limit)
		if err != nil {
			logger.Error("Fetching from source failed", "type", strat.ItemType(), "err", err)
			continue
		}
		fetched = append(fetched, items...)
	}
	summary.Fetched = len(fetched)

	for _, item := range fetched {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		o.archiveRaw(ctx, strat, item)
		outcome := o.processItem(ctx, strat, snap, item)
		summary.count(outcome)
	}
	return summary, nil
}

// archiveRaw stores the fetched payload best-effort, whatever the item's
// eventual outcome.
func (o *Orchestrator) archiveRaw(ctx context.Context, strat Strategy, item tkapi.FetchedItem) {
	if o.archiver == nil {
		return
	}
	if err := o.archiver.PutRawItem(ctx, strat.ItemType(), item.ZaakID, item); err != nil {
		logger.Warn("Archiving raw item failed", "zaak_id", item.ZaakID, "err", err)
	}
}

func (o *Orchestrator) processItem(ctx context.Context, strat Strategy, snap *Snapshot, item tkapi.FetchedItem) ItemOutcome {
	if _, err := o.store.GetItemByZaakID(ctx, item.ZaakID); err == nil {
		return OutcomeSkipped
	} else if !db.IsNoRows(err) {
		logger.Error("Idempotency lookup failed", "zaak_id", item.ZaakID, "err", err)
		return OutcomeFailed
	}

	var res ai.ExtractResult
	if strat.RequiresExtraction() {
		var err error
		res, err = o.extract(ctx, strat, snap, item)
		if err != nil {
			// Leave the item behind as pending so the reprocessor can
			// pick it up once extraction works again.
			logger.Warn("Tag extraction failed, deferring item",
				"zaak_id", item.ZaakID, "err", err)
			return o.persistUnmatched(ctx, strat, item, db.ItemStatusPending, ai.ExtractResult{})
		}
	}

	candidates := ScoreNodes(res.MatchedTags, snap)
	if len(candidates) == 0 && !strat.ForceImport() {
		return o.persistUnmatched(ctx, strat, item, db.ItemStatusOutOfScope, res)
	}

	var created db.ImportedItem
	var nodeID int64
	err := o.store.InTx(ctx, func(s Store) error {
		var err error
		created, err = s.CreateItem(ctx, newItemParams(strat, item, db.ItemStatusImported))
		if err != nil {
			return err
		}
		nodeID, err = o.matchBranch(ctx, s, strat, snap, created, item, res, candidates)
		return err
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			// Lost the race against a concurrent cycle.
			return OutcomeSkipped
		}
		logger.Error("Importing item failed", "zaak_id", item.ZaakID, "err", err)
		return OutcomeFailed
	}

	o.afterImport(ctx, strat, item, nodeID, candidates)
	return OutcomeImported
}

// extract calls the extraction capability with the current vocabulary.
func (o *Orchestrator) extract(ctx context.Context, strat Strategy, snap *Snapshot, item tkapi.FetchedItem) (ai.ExtractResult, error) {
	if o.extractor == nil {
		return ai.ExtractResult{}, ai.ErrUnavailable
	}
	return o.extractor.ExtractTags(ctx, ai.ExtractRequest{
		Title:        item.Title,
		Subject:      item.Subject,
		DocumentText: item.DocumentText,
		ExistingTags: snap.TagNames(),
		ContextHint:  strat.ContextHint(),
	})
}

// persistUnmatched records an item that did not make it into the graph,
// either deferred (pending) or parked (out_of_scope).
func (o *Orchestrator) persistUnmatched(ctx context.Context, strat Strategy, item tkapi.FetchedItem, status string, res ai.ExtractResult) ItemOutcome {
	params := newItemParams(strat, item, status)
	params.MatchedTags = res.MatchedTags
	params.LlmSummary = res.Summary
	if _, err := o.store.CreateItem(ctx, params); err != nil {
		if db.IsUniqueViolation(err) {
			return OutcomeSkipped
		}
		logger.Error("Persisting item failed", "zaak_id", item.ZaakID, "err", err)
		return OutcomeFailed
	}
	if status == db.ItemStatusPending {
		return OutcomePending
	}
	return OutcomeOutOfScope
}

// matchBranch creates the graph node and everything hanging off it.
// Runs inside the per-item transaction; individual suggested edges,
// stakeholder links and the review task are written under savepoints so
// one bad row does not take down its siblings.
func (o *Orchestrator) matchBranch(
	ctx context.Context,
	s Store,
	strat Strategy,
	snap *Snapshot,
	item db.ImportedItem,
	fetched tkapi.FetchedItem,
	res ai.ExtractResult,
	candidates []Candidate,
) (int64, error) {
	publicID, err := gonanoid.New()
	if err != nil {
		return 0, err
	}
	title := fetched.Subject
	if title == "" {
		title = fetched.Title
	}
	description := res.Summary
	if description == "" {
		description = fmt.Sprintf("Geïmporteerd item: %s", fetched.Title)
	}
	node, err := s.CreateNode(ctx, db.CreateCorpusNodeParams{
		PublicID:    publicID,
		NodeType:    db.NodeTypeImportedItem,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return 0, err
	}

	if err := s.CreateItemDetail(ctx, db.CreateItemDetailParams{
		NodeID:   node.ID,
		ItemType: strat.ItemType(),
		Data:     detailData(fetched),
	}); err != nil {
		return 0, err
	}

	for _, submitter := range fetched.Submitters {
		if isChamberPseudoName(submitter) {
			continue
		}
		err := s.InTx(ctx, func(s Store) error {
			person, err := s.GetOrCreatePerson(ctx, submitter)
			if err != nil {
				return err
			}
			return s.LinkStakeholder(ctx, db.LinkNodeStakeholderParams{
				NodeID:   node.ID,
				PersonID: person.ID,
				Role:     "submitter",
			})
		})
		if err != nil {
			logger.Warn("Linking submitter failed", "zaak_id", item.ZaakID,
				"submitter", submitter, "err", err)
		}
	}

	for _, name := range res.MatchedTags {
		tagID, ok := snap.TagID(name)
		if !ok {
			continue
		}
		err := s.InTx(ctx, func(s Store) error {
			return s.AttachNodeTag(ctx, node.ID, tagID)
		})
		if err != nil {
			logger.Warn("Attaching tag failed", "zaak_id", item.ZaakID,
				"tag", name, "err", err)
		}
	}

	for _, cand := range candidates {
		err := s.InTx(ctx, func(s Store) error {
			_, err := s.CreateSuggestedEdge(ctx, db.CreateSuggestedEdgeParams{
				ItemID:       item.ID,
				CorpusNodeID: &cand.NodeID,
				EdgeType:     strat.EdgeType(),
				Confidence:   cand.Confidence,
				Reason:       cand.Reason,
			})
			return err
		})
		if err != nil {
			logger.Warn("Creating suggested edge failed", "zaak_id", item.ZaakID,
				"node_id", cand.NodeID, "err", err)
		}
	}

	if err := s.UpdateItemMatch(ctx, db.UpdateImportedItemMatchParams{
		ID:           item.ID,
		Status:       db.ItemStatusImported,
		CorpusNodeID: &node.ID,
		MatchedTags:  res.MatchedTags,
		LlmSummary:   res.Summary,
	}); err != nil {
		return 0, err
	}

	o.createReviewTask(ctx, s, strat, item, fetched, res.Summary, node.ID, candidates)
	return node.ID, nil
}

// createReviewTask routes the item to the org unit most of the matched
// nodes' owners belong to. Failure is logged, the import stands.
func (o *Orchestrator) createReviewTask(
	ctx context.Context,
	s Store,
	strat Strategy,
	item db.ImportedItem,
	fetched tkapi.FetchedItem,
	summary string,
	nodeID int64,
	candidates []Candidate,
) {
	deadline := strat.Deadline(fetched)
	if deadline == nil {
		d := DeadlineInBusinessDays(o.now(), o.taskDeadlineDays)
		deadline = &d
	}

	var orgUnitID *int64
	if len(candidates) > 0 {
		nodeIDs := make([]int64, len(candidates))
		for i, c := range candidates {
			nodeIDs[i] = c.NodeID
		}
		units, err := s.OwnerOrgUnits(ctx, nodeIDs)
		if err != nil {
			logger.Warn("Resolving owner org units failed", "zaak_id", item.ZaakID, "err", err)
		} else if winner, ok := voteOrgUnit(units, o.tieBreak); ok {
			orgUnitID = &winner
		}
	}

	err := s.InTx(ctx, func(s Store) error {
		_, err := s.CreateReviewTask(ctx, db.CreateReviewTaskParams{
			NodeID:      nodeID,
			ItemID:      item.ID,
			Title:       strat.TaskTitle(fetched),
			Description: summary,
			Priority:    strat.TaskPriority(),
			Deadline:    deadline,
			OrgUnitID:   orgUnitID,
		})
		return err
	})
	if err != nil {
		logger.Warn("Creating review task failed", "zaak_id", item.ZaakID, "err", err)
	}
}

// afterImport runs the fire-and-forget side effects outside the
// transaction.
func (o *Orchestrator) afterImport(ctx context.Context, strat Strategy, item tkapi.FetchedItem, nodeID int64, candidates []Candidate) {
	if o.notifier != nil {
		affected := make([]int64, len(candidates))
		for i, c := range candidates {
			affected[i] = c.NodeID
		}
		o.notifier.NotifyItemsImported(ctx, nodeID, affected, strat.ItemType())
	}
}

// voteOrgUnit picks the unit with the most owner votes. units is in
// stakeholder encounter order, which the first-encountered tie-break
// relies on.
func voteOrgUnit(units []int64, mode TieBreakMode) (int64, bool) {
	if len(units) == 0 {
		return 0, false
	}
	counts := make(map[int64]int)
	order := make([]int64, 0, len(units))
	for _, u := range units {
		if counts[u] == 0 {
			order = append(order, u)
		}
		counts[u]++
	}
	best := order[0]
	for _, u := range order[1:] {
		switch {
		case counts[u] > counts[best]:
			best = u
		case counts[u] == counts[best] && mode == TieBreakLowestID && u < best:
			best = u
		}
	}
	return best, true
}

func newItemParams(strat Strategy, item tkapi.FetchedItem, status string) db.CreateImportedItemParams {
	return db.CreateImportedItemParams{
		ZaakID:       item.ZaakID,
		ZaakNummer:   item.ZaakNummer,
		ItemType:     strat.ItemType(),
		Title:        item.Title,
		Subject:      item.Subject,
		DocumentText: item.DocumentText,
		DocumentURL:  item.DocumentURL,
		Status:       status,
		SourceDate:   item.Date,
		Deadline:     item.Deadline,
		Ministry:     item.Ministry,
		Submitters:   item.Submitters,
		ExtraData:    item.ExtraData,
	}
}

func detailData(item tkapi.FetchedItem) map[string]string {
	data := make(map[string]string, len(item.ExtraData)+3)
	for k, v := range item.ExtraData {
		data[k] = v
	}
	data["zaak_id"] = item.ZaakID
	data["zaak_nummer"] = item.ZaakNummer
	if item.DocumentURL != "" {
		data["document_url"] = item.DocumentURL
	}
	return data
}
