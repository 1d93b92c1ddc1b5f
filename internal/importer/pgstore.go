package importer

import (
	"context"

	"beleidsgraaf/internal/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type txBeginner interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore is the production Store over Postgres. Nested InTx calls map
// to savepoints, which is what gives the match branch its
// partial-success behavior.
type PgStore struct {
	conn txBeginner
	q    *db.Queries
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{conn: pool, q: db.New(pool)}
}

func (ps *PgStore) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := ps.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(&PgStore{conn: tx, q: ps.q.WithTx(tx)}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (ps *PgStore) GetItem(ctx context.Context, id int64) (db.ImportedItem, error) {
	return ps.q.GetImportedItem(ctx, id)
}

func (ps *PgStore) GetItemByZaakID(ctx context.Context, zaakID string) (db.ImportedItem, error) {
	return ps.q.GetImportedItemByZaakID(ctx, zaakID)
}

func (ps *PgStore) CreateItem(ctx context.Context, arg db.CreateImportedItemParams) (db.ImportedItem, error) {
	return ps.q.CreateImportedItem(ctx, arg)
}

func (ps *PgStore) ListItems(ctx context.Context, arg db.ListImportedItemsParams) ([]db.ImportedItem, error) {
	return ps.q.ListImportedItems(ctx, arg)
}

func (ps *PgStore) ListReprocessCandidates(ctx context.Context, itemType string) ([]db.ImportedItem, error) {
	return ps.q.ListReprocessCandidates(ctx, itemType)
}

func (ps *PgStore) UpdateItemMatch(ctx context.Context, arg db.UpdateImportedItemMatchParams) error {
	return ps.q.UpdateImportedItemMatch(ctx, arg)
}

func (ps *PgStore) SetItemStatus(ctx context.Context, id int64, status string) error {
	return ps.q.SetImportedItemStatus(ctx, id, status)
}

func (ps *PgStore) ReopenItem(ctx context.Context, id int64) error {
	return ps.q.ReopenImportedItem(ctx, id)
}

func (ps *PgStore) DetachItemNode(ctx context.Context, id int64, status string) error {
	return ps.q.DetachImportedItemNode(ctx, id, status)
}

func (ps *PgStore) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	tags, err := ps.q.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	nodeTags, err := ps.q.ListNodeTags(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(tags, nodeTags), nil
}

func (ps *PgStore) CreateNode(ctx context.Context, arg db.CreateCorpusNodeParams) (db.CorpusNode, error) {
	return ps.q.CreateCorpusNode(ctx, arg)
}

func (ps *PgStore) DeleteNode(ctx context.Context, id int64) error {
	return ps.q.DeleteCorpusNode(ctx, id)
}

func (ps *PgStore) CreateEdge(ctx context.Context, arg db.CreateCorpusEdgeParams) (db.CorpusEdge, error) {
	return ps.q.CreateCorpusEdge(ctx, arg)
}

func (ps *PgStore) DeleteEdge(ctx context.Context, id int64) error {
	return ps.q.DeleteCorpusEdge(ctx, id)
}

func (ps *PgStore) CreateItemDetail(ctx context.Context, arg db.CreateItemDetailParams) error {
	_, err := ps.q.CreateItemDetail(ctx, arg)
	return err
}

func (ps *PgStore) GetOrCreatePerson(ctx context.Context, name string) (db.Person, error) {
	return ps.q.GetOrCreatePerson(ctx, name)
}

func (ps *PgStore) LinkStakeholder(ctx context.Context, arg db.LinkNodeStakeholderParams) error {
	return ps.q.LinkNodeStakeholder(ctx, arg)
}

func (ps *PgStore) AttachNodeTag(ctx context.Context, nodeID, tagID int64) error {
	return ps.q.AttachNodeTag(ctx, nodeID, tagID)
}

func (ps *PgStore) OwnerOrgUnits(ctx context.Context, nodeIDs []int64) ([]int64, error) {
	return ps.q.ListOwnerOrgUnits(ctx, nodeIDs, db.StakeholderRoleOwner)
}

func (ps *PgStore) CreateSuggestedEdge(ctx context.Context, arg db.CreateSuggestedEdgeParams) (db.SuggestedEdge, error) {
	return ps.q.CreateSuggestedEdge(ctx, arg)
}

func (ps *PgStore) GetSuggestedEdge(ctx context.Context, id int64) (db.SuggestedEdge, error) {
	return ps.q.GetSuggestedEdge(ctx, id)
}

func (ps *PgStore) ListSuggestedEdgesByItem(ctx context.Context, itemID int64) ([]db.SuggestedEdge, error) {
	return ps.q.ListSuggestedEdgesByItem(ctx, itemID)
}

func (ps *PgStore) ApproveSuggestedEdge(ctx context.Context, id, edgeID int64) error {
	return ps.q.ApproveSuggestedEdge(ctx, id, edgeID)
}

func (ps *PgStore) RejectSuggestedEdge(ctx context.Context, id int64) error {
	return ps.q.RejectSuggestedEdge(ctx, id)
}

func (ps *PgStore) SetSuggestedEdgeType(ctx context.Context, id int64, edgeType string) error {
	return ps.q.SetSuggestedEdgeType(ctx, id, edgeType)
}

func (ps *PgStore) ResetSuggestedEdge(ctx context.Context, id int64) error {
	return ps.q.ResetSuggestedEdge(ctx, id)
}

func (ps *PgStore) DeleteSuggestedEdgesByItem(ctx context.Context, itemID int64) error {
	return ps.q.DeleteSuggestedEdgesByItem(ctx, itemID)
}

func (ps *PgStore) CreateReviewTask(ctx context.Context, arg db.CreateReviewTaskParams) (db.ReviewTask, error) {
	return ps.q.CreateReviewTask(ctx, arg)
}
