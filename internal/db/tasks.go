package db

import (
	"context"
	"time"
)

const createReviewTask = `
INSERT INTO review_tasks (node_id, item_id, title, description, priority, deadline, org_unit_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, node_id, item_id, title, description, priority, deadline, org_unit_id, created_at
`

type CreateReviewTaskParams struct {
	NodeID      int64
	ItemID      int64
	Title       string
	Description string
	Priority    string
	Deadline    *time.Time
	OrgUnitID   *int64
}

func (q *Queries) CreateReviewTask(ctx context.Context, arg CreateReviewTaskParams) (ReviewTask, error) {
	var t ReviewTask
	err := q.db.QueryRow(ctx, createReviewTask,
		arg.NodeID, arg.ItemID, arg.Title, arg.Description,
		arg.Priority, arg.Deadline, arg.OrgUnitID,
	).Scan(&t.ID, &t.NodeID, &t.ItemID, &t.Title, &t.Description,
		&t.Priority, &t.Deadline, &t.OrgUnitID, &t.CreatedAt)
	return t, err
}

const listReviewTasksByItem = `
SELECT id, node_id, item_id, title, description, priority, deadline, org_unit_id, created_at
FROM review_tasks WHERE item_id = $1 ORDER BY id
`

func (q *Queries) ListReviewTasksByItem(ctx context.Context, itemID int64) ([]ReviewTask, error) {
	rows, err := q.db.Query(ctx, listReviewTasksByItem, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tasks []ReviewTask
	for rows.Next() {
		var t ReviewTask
		if err := rows.Scan(&t.ID, &t.NodeID, &t.ItemID, &t.Title, &t.Description,
			&t.Priority, &t.Deadline, &t.OrgUnitID, &t.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
