package db

import "context"

const suggestedEdgeColumns = `id, item_id, corpus_node_id, edge_type,
    confidence, reason, status, edge_id, created_at, reviewed_at`

const createSuggestedEdge = `
INSERT INTO suggested_edges (item_id, corpus_node_id, edge_type, confidence, reason, status)
VALUES ($1, $2, $3, $4, $5, 'pending')
RETURNING ` + suggestedEdgeColumns

type CreateSuggestedEdgeParams struct {
	ItemID       int64
	CorpusNodeID *int64
	EdgeType     string
	Confidence   float64
	Reason       string
}

func (q *Queries) CreateSuggestedEdge(ctx context.Context, arg CreateSuggestedEdgeParams) (SuggestedEdge, error) {
	row := q.db.QueryRow(ctx, createSuggestedEdge,
		arg.ItemID, arg.CorpusNodeID, arg.EdgeType, arg.Confidence, arg.Reason)
	return scanSuggestedEdge(row)
}

const getSuggestedEdge = `
SELECT ` + suggestedEdgeColumns + ` FROM suggested_edges WHERE id = $1`

func (q *Queries) GetSuggestedEdge(ctx context.Context, id int64) (SuggestedEdge, error) {
	return scanSuggestedEdge(q.db.QueryRow(ctx, getSuggestedEdge, id))
}

const listSuggestedEdgesByItem = `
SELECT ` + suggestedEdgeColumns + `
FROM suggested_edges WHERE item_id = $1
ORDER BY confidence DESC, id`

func (q *Queries) ListSuggestedEdgesByItem(ctx context.Context, itemID int64) ([]SuggestedEdge, error) {
	rows, err := q.db.Query(ctx, listSuggestedEdgesByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var edges []SuggestedEdge
	for rows.Next() {
		edge, err := scanSuggestedEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}
	return edges, rows.Err()
}

const countSuggestedEdgesByItem = `
SELECT count(*) FROM suggested_edges WHERE item_id = $1`

func (q *Queries) CountSuggestedEdgesByItem(ctx context.Context, itemID int64) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countSuggestedEdgesByItem, itemID).Scan(&n)
	return n, err
}

const approveSuggestedEdge = `
UPDATE suggested_edges
SET status = 'approved', edge_id = $2, reviewed_at = now()
WHERE id = $1`

func (q *Queries) ApproveSuggestedEdge(ctx context.Context, id, edgeID int64) error {
	_, err := q.db.Exec(ctx, approveSuggestedEdge, id, edgeID)
	return err
}

const rejectSuggestedEdge = `
UPDATE suggested_edges
SET status = 'rejected', reviewed_at = now()
WHERE id = $1`

func (q *Queries) RejectSuggestedEdge(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, rejectSuggestedEdge, id)
	return err
}

const setSuggestedEdgeType = `
UPDATE suggested_edges SET edge_type = $2 WHERE id = $1`

func (q *Queries) SetSuggestedEdgeType(ctx context.Context, id int64, edgeType string) error {
	_, err := q.db.Exec(ctx, setSuggestedEdgeType, id, edgeType)
	return err
}

const resetSuggestedEdge = `
UPDATE suggested_edges
SET status = 'pending', edge_id = NULL, reviewed_at = NULL
WHERE id = $1`

func (q *Queries) ResetSuggestedEdge(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, resetSuggestedEdge, id)
	return err
}

const deleteSuggestedEdgesByItem = `
DELETE FROM suggested_edges WHERE item_id = $1`

func (q *Queries) DeleteSuggestedEdgesByItem(ctx context.Context, itemID int64) error {
	_, err := q.db.Exec(ctx, deleteSuggestedEdgesByItem, itemID)
	return err
}

func scanSuggestedEdge(row interface{ Scan(dest ...any) error }) (SuggestedEdge, error) {
	var e SuggestedEdge
	err := row.Scan(
		&e.ID, &e.ItemID, &e.CorpusNodeID, &e.EdgeType, &e.Confidence,
		&e.Reason, &e.Status, &e.EdgeID, &e.CreatedAt, &e.ReviewedAt,
	)
	return e, err
}
