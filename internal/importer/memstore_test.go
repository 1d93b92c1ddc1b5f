package importer

import (
	"context"
	"time"

	"beleidsgraaf/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is the in-memory Store used by the pipeline tests. It keeps
// the same visible semantics as the Postgres implementation: unique
// zaak_id, cascading node deletes, pgx-style not-found errors. InTx
// does not roll back, tests that need failure injection use the fail*
// hooks instead.
type memStore struct {
	nextID int64

	items        map[int64]*db.ImportedItem
	itemsByZaak  map[string]int64
	nodes        map[int64]*db.CorpusNode
	edges        map[int64]*db.CorpusEdge
	details      []db.ItemDetail
	persons      map[string]*db.Person
	stakeholders []db.LinkNodeStakeholderParams
	nodeTagLinks map[int64][]int64
	suggested    map[int64]*db.SuggestedEdge
	tasks        []db.ReviewTask

	tags     []db.Tag
	nodeTags []db.NodeTag

	// ownerUnits maps a corpus node to the org units of its owner-role
	// stakeholders, in stakeholder order.
	ownerUnits map[int64][]int64

	// raceZaaks simulates a concurrent insert: CreateItem fails with a
	// unique violation even though the lookup saw nothing.
	raceZaaks map[string]bool

	// failEdgeForNode makes CreateSuggestedEdge fail for suggestions
	// targeting the given node.
	failEdgeForNode map[int64]bool

	failCreateTask bool
}

func newMemStore() *memStore {
	return &memStore{
		items:           make(map[int64]*db.ImportedItem),
		itemsByZaak:     make(map[string]int64),
		nodes:           make(map[int64]*db.CorpusNode),
		edges:           make(map[int64]*db.CorpusEdge),
		persons:         make(map[string]*db.Person),
		nodeTagLinks:    make(map[int64][]int64),
		suggested:       make(map[int64]*db.SuggestedEdge),
		ownerUnits:      make(map[int64][]int64),
		raceZaaks:       make(map[string]bool),
		failEdgeForNode: make(map[int64]bool),
	}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "imported_items_zaak_id_key"}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) InTx(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

func (m *memStore) GetItem(ctx context.Context, id int64) (db.ImportedItem, error) {
	item, ok := m.items[id]
	if !ok {
		return db.ImportedItem{}, pgx.ErrNoRows
	}
	return *item, nil
}

func (m *memStore) GetItemByZaakID(ctx context.Context, zaakID string) (db.ImportedItem, error) {
	id, ok := m.itemsByZaak[zaakID]
	if !ok {
		return db.ImportedItem{}, pgx.ErrNoRows
	}
	return *m.items[id], nil
}

func (m *memStore) CreateItem(ctx context.Context, arg db.CreateImportedItemParams) (db.ImportedItem, error) {
	if m.raceZaaks[arg.ZaakID] {
		return db.ImportedItem{}, uniqueViolation()
	}
	if _, exists := m.itemsByZaak[arg.ZaakID]; exists {
		return db.ImportedItem{}, uniqueViolation()
	}
	now := time.Now()
	item := &db.ImportedItem{
		ID:           m.id(),
		ZaakID:       arg.ZaakID,
		ZaakNummer:   arg.ZaakNummer,
		ItemType:     arg.ItemType,
		Title:        arg.Title,
		Subject:      arg.Subject,
		DocumentText: arg.DocumentText,
		DocumentURL:  arg.DocumentURL,
		Status:       arg.Status,
		MatchedTags:  arg.MatchedTags,
		LlmSummary:   arg.LlmSummary,
		SourceDate:   arg.SourceDate,
		Deadline:     arg.Deadline,
		Ministry:     arg.Ministry,
		Submitters:   arg.Submitters,
		ExtraData:    arg.ExtraData,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.items[item.ID] = item
	m.itemsByZaak[item.ZaakID] = item.ID
	return *item, nil
}

func (m *memStore) ListItems(ctx context.Context, arg db.ListImportedItemsParams) ([]db.ImportedItem, error) {
	var out []db.ImportedItem
	for _, item := range m.items {
		if arg.Status != "" && item.Status != arg.Status {
			continue
		}
		if arg.ItemType != "" && item.ItemType != arg.ItemType {
			continue
		}
		out = append(out, *item)
	}
	return out, nil
}

func (m *memStore) ListReprocessCandidates(ctx context.Context, itemType string) ([]db.ImportedItem, error) {
	var out []db.ImportedItem
	for id := int64(1); id <= m.nextID; id++ {
		item, ok := m.items[id]
		if !ok || item.ItemType != itemType {
			continue
		}
		switch item.Status {
		case db.ItemStatusPending:
			out = append(out, *item)
		case db.ItemStatusImported:
			if m.countSuggested(item.ID) == 0 {
				out = append(out, *item)
			}
		}
	}
	return out, nil
}

func (m *memStore) countSuggested(itemID int64) int {
	n := 0
	for _, se := range m.suggested {
		if se.ItemID == itemID {
			n++
		}
	}
	return n
}

func (m *memStore) UpdateItemMatch(ctx context.Context, arg db.UpdateImportedItemMatchParams) error {
	item, ok := m.items[arg.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Status = arg.Status
	item.CorpusNodeID = arg.CorpusNodeID
	item.MatchedTags = arg.MatchedTags
	item.LlmSummary = arg.LlmSummary
	item.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) SetItemStatus(ctx context.Context, id int64, status string) error {
	item, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Status = status
	return nil
}

func (m *memStore) ReopenItem(ctx context.Context, id int64) error {
	item, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	item.Status = db.ItemStatusImported
	item.ReviewedAt = nil
	return nil
}

func (m *memStore) DetachItemNode(ctx context.Context, id int64, status string) error {
	item, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	item.CorpusNodeID = nil
	item.Status = status
	return nil
}

func (m *memStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	return NewSnapshot(m.tags, m.nodeTags), nil
}

func (m *memStore) CreateNode(ctx context.Context, arg db.CreateCorpusNodeParams) (db.CorpusNode, error) {
	node := &db.CorpusNode{
		ID:          m.id(),
		PublicID:    arg.PublicID,
		NodeType:    arg.NodeType,
		Title:       arg.Title,
		Description: arg.Description,
		CreatedAt:   time.Now(),
	}
	m.nodes[node.ID] = node
	return *node, nil
}

func (m *memStore) DeleteNode(ctx context.Context, id int64) error {
	delete(m.nodes, id)
	var details []db.ItemDetail
	for _, d := range m.details {
		if d.NodeID != id {
			details = append(details, d)
		}
	}
	m.details = details
	var tasks []db.ReviewTask
	for _, t := range m.tasks {
		if t.NodeID != id {
			tasks = append(tasks, t)
		}
	}
	m.tasks = tasks
	return nil
}

func (m *memStore) CreateEdge(ctx context.Context, arg db.CreateCorpusEdgeParams) (db.CorpusEdge, error) {
	edge := &db.CorpusEdge{
		ID:         m.id(),
		FromNodeID: arg.FromNodeID,
		ToNodeID:   arg.ToNodeID,
		EdgeType:   arg.EdgeType,
		CreatedAt:  time.Now(),
	}
	m.edges[edge.ID] = edge
	return *edge, nil
}

func (m *memStore) DeleteEdge(ctx context.Context, id int64) error {
	delete(m.edges, id)
	return nil
}

func (m *memStore) CreateItemDetail(ctx context.Context, arg db.CreateItemDetailParams) error {
	m.details = append(m.details, db.ItemDetail{
		ID:       m.id(),
		NodeID:   arg.NodeID,
		ItemType: arg.ItemType,
		Data:     arg.Data,
	})
	return nil
}

func (m *memStore) GetOrCreatePerson(ctx context.Context, name string) (db.Person, error) {
	if p, ok := m.persons[name]; ok {
		return *p, nil
	}
	p := &db.Person{ID: m.id(), Name: name}
	m.persons[name] = p
	return *p, nil
}

func (m *memStore) LinkStakeholder(ctx context.Context, arg db.LinkNodeStakeholderParams) error {
	m.stakeholders = append(m.stakeholders, arg)
	return nil
}

func (m *memStore) AttachNodeTag(ctx context.Context, nodeID, tagID int64) error {
	m.nodeTagLinks[nodeID] = append(m.nodeTagLinks[nodeID], tagID)
	return nil
}

func (m *memStore) OwnerOrgUnits(ctx context.Context, nodeIDs []int64) ([]int64, error) {
	var units []int64
	for _, nodeID := range nodeIDs {
		units = append(units, m.ownerUnits[nodeID]...)
	}
	return units, nil
}

func (m *memStore) CreateSuggestedEdge(ctx context.Context, arg db.CreateSuggestedEdgeParams) (db.SuggestedEdge, error) {
	if arg.CorpusNodeID != nil && m.failEdgeForNode[*arg.CorpusNodeID] {
		return db.SuggestedEdge{}, &pgconn.PgError{Code: "23503"}
	}
	se := &db.SuggestedEdge{
		ID:           m.id(),
		ItemID:       arg.ItemID,
		CorpusNodeID: arg.CorpusNodeID,
		EdgeType:     arg.EdgeType,
		Confidence:   arg.Confidence,
		Reason:       arg.Reason,
		Status:       db.EdgeStatusPending,
		CreatedAt:    time.Now(),
	}
	m.suggested[se.ID] = se
	return *se, nil
}

func (m *memStore) GetSuggestedEdge(ctx context.Context, id int64) (db.SuggestedEdge, error) {
	se, ok := m.suggested[id]
	if !ok {
		return db.SuggestedEdge{}, pgx.ErrNoRows
	}
	return *se, nil
}

func (m *memStore) ListSuggestedEdgesByItem(ctx context.Context, itemID int64) ([]db.SuggestedEdge, error) {
	var out []db.SuggestedEdge
	for id := int64(1); id <= m.nextID; id++ {
		if se, ok := m.suggested[id]; ok && se.ItemID == itemID {
			out = append(out, *se)
		}
	}
	return out, nil
}

func (m *memStore) ApproveSuggestedEdge(ctx context.Context, id, edgeID int64) error {
	se, ok := m.suggested[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	se.Status = db.EdgeStatusApproved
	se.EdgeID = &edgeID
	se.ReviewedAt = &now
	return nil
}

func (m *memStore) RejectSuggestedEdge(ctx context.Context, id int64) error {
	se, ok := m.suggested[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := time.Now()
	se.Status = db.EdgeStatusRejected
	se.ReviewedAt = &now
	return nil
}

func (m *memStore) SetSuggestedEdgeType(ctx context.Context, id int64, edgeType string) error {
	se, ok := m.suggested[id]
	if !ok {
		return pgx.ErrNoRows
	}
	se.EdgeType = edgeType
	return nil
}

func (m *memStore) ResetSuggestedEdge(ctx context.Context, id int64) error {
	se, ok := m.suggested[id]
	if !ok {
		return pgx.ErrNoRows
	}
	se.Status = db.EdgeStatusPending
	se.EdgeID = nil
	se.ReviewedAt = nil
	return nil
}

func (m *memStore) DeleteSuggestedEdgesByItem(ctx context.Context, itemID int64) error {
	for id, se := range m.suggested {
		if se.ItemID == itemID {
			delete(m.suggested, id)
		}
	}
	return nil
}

func (m *memStore) CreateReviewTask(ctx context.Context, arg db.CreateReviewTaskParams) (db.ReviewTask, error) {
	if m.failCreateTask {
		return db.ReviewTask{}, &pgconn.PgError{Code: "23503"}
	}
	task := db.ReviewTask{
		ID:          m.id(),
		NodeID:      arg.NodeID,
		ItemID:      arg.ItemID,
		Title:       arg.Title,
		Description: arg.Description,
		Priority:    arg.Priority,
		Deadline:    arg.Deadline,
		OrgUnitID:   arg.OrgUnitID,
		CreatedAt:   time.Now(),
	}
	m.tasks = append(m.tasks, task)
	return task, nil
}
