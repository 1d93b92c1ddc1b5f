package db

import (
	"context"
	"time"
)

const createImportedItem = `
INSERT INTO imported_items (
    zaak_id, zaak_nummer, item_type, title, subject, document_text,
    document_url, status, matched_tags, llm_summary, source_date,
    deadline, ministry, submitters, extra_data
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
RETURNING id, zaak_id, zaak_nummer, item_type, title, subject, document_text,
    document_url, status, corpus_node_id, matched_tags, llm_summary,
    source_date, deadline, ministry, submitters, extra_data, reviewed_at,
    created_at, updated_at
`

type CreateImportedItemParams struct {
	ZaakID       string
	ZaakNummer   string
	ItemType     string
	Title        string
	Subject      string
	DocumentText string
	DocumentURL  string
	Status       string
	MatchedTags  []string
	LlmSummary   string
	SourceDate   *time.Time
	Deadline     *time.Time
	Ministry     string
	Submitters   []string
	ExtraData    map[string]string
}

func (q *Queries) CreateImportedItem(ctx context.Context, arg CreateImportedItemParams) (ImportedItem, error) {
	row := q.db.QueryRow(ctx, createImportedItem,
		arg.ZaakID, arg.ZaakNummer, arg.ItemType, arg.Title, arg.Subject,
		arg.DocumentText, arg.DocumentURL, arg.Status, arg.MatchedTags,
		arg.LlmSummary, arg.SourceDate, arg.Deadline, arg.Ministry,
		arg.Submitters, arg.ExtraData,
	)
	return scanImportedItem(row)
}

const getImportedItem = `
SELECT id, zaak_id, zaak_nummer, item_type, title, subject, document_text,
    document_url, status, corpus_node_id, matched_tags, llm_summary,
    source_date, deadline, ministry, submitters, extra_data, reviewed_at,
    created_at, updated_at
FROM imported_items WHERE id = $1
`

func (q *Queries) GetImportedItem(ctx context.Context, id int64) (ImportedItem, error) {
	return scanImportedItem(q.db.QueryRow(ctx, getImportedItem, id))
}

const getImportedItemByZaakID = `
SELECT id, zaak_id, zaak_nummer, item_type, title, subject, document_text,
    document_url, status, corpus_node_id, matched_tags, llm_summary,
    source_date, deadline, ministry, submitters, extra_data, reviewed_at,
    created_at, updated_at
FROM imported_items WHERE zaak_id = $1
`

func (q *Queries) GetImportedItemByZaakID(ctx context.Context, zaakID string) (ImportedItem, error) {
	return scanImportedItem(q.db.QueryRow(ctx, getImportedItemByZaakID, zaakID))
}

const listImportedItems = `
SELECT id, zaak_id, zaak_nummer, item_type, title, subject, document_text,
    document_url, status, corpus_node_id, matched_tags, llm_summary,
    source_date, deadline, ministry, submitters, extra_data, reviewed_at,
    created_at, updated_at
FROM imported_items
WHERE ($1::text = '' OR status = $1)
  AND ($2::text = '' OR item_type = $2)
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4
`

type ListImportedItemsParams struct {
	Status   string
	ItemType string
	Limit    int32
	Offset   int32
}

func (q *Queries) ListImportedItems(ctx context.Context, arg ListImportedItemsParams) ([]ImportedItem, error) {
	rows, err := q.db.Query(ctx, listImportedItems, arg.Status, arg.ItemType, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportedItem
	for rows.Next() {
		item, err := scanImportedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const listReprocessCandidates = `
SELECT i.id, i.zaak_id, i.zaak_nummer, i.item_type, i.title, i.subject,
    i.document_text, i.document_url, i.status, i.corpus_node_id,
    i.matched_tags, i.llm_summary, i.source_date, i.deadline, i.ministry,
    i.submitters, i.extra_data, i.reviewed_at, i.created_at, i.updated_at
FROM imported_items i
WHERE i.item_type = $1
  AND (i.status = 'pending'
       OR (i.status = 'imported' AND NOT EXISTS (
            SELECT 1 FROM suggested_edges se WHERE se.item_id = i.id)))
ORDER BY i.id
`

// ListReprocessCandidates returns items eligible for another matching
// pass: never matched, or matched without producing any suggested edge.
func (q *Queries) ListReprocessCandidates(ctx context.Context, itemType string) ([]ImportedItem, error) {
	rows, err := q.db.Query(ctx, listReprocessCandidates, itemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ImportedItem
	for rows.Next() {
		item, err := scanImportedItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

const updateImportedItemMatch = `
UPDATE imported_items
SET status = $2, corpus_node_id = $3, matched_tags = $4, llm_summary = $5,
    updated_at = now()
WHERE id = $1
`

type UpdateImportedItemMatchParams struct {
	ID           int64
	Status       string
	CorpusNodeID *int64
	MatchedTags  []string
	LlmSummary   string
}

func (q *Queries) UpdateImportedItemMatch(ctx context.Context, arg UpdateImportedItemMatchParams) error {
	_, err := q.db.Exec(ctx, updateImportedItemMatch,
		arg.ID, arg.Status, arg.CorpusNodeID, arg.MatchedTags, arg.LlmSummary)
	return err
}

const setImportedItemStatus = `
UPDATE imported_items SET status = $2, updated_at = now() WHERE id = $1
`

func (q *Queries) SetImportedItemStatus(ctx context.Context, id int64, status string) error {
	_, err := q.db.Exec(ctx, setImportedItemStatus, id, status)
	return err
}

const reopenImportedItem = `
UPDATE imported_items
SET status = 'imported', reviewed_at = NULL, updated_at = now()
WHERE id = $1
`

// ReopenImportedItem puts an item back in the review queue.
func (q *Queries) ReopenImportedItem(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, reopenImportedItem, id)
	return err
}

const detachImportedItemNode = `
UPDATE imported_items
SET status = $2, corpus_node_id = NULL, updated_at = now()
WHERE id = $1
`

// DetachImportedItemNode clears the node link, used when reprocessing
// decides an item no longer belongs in the corpus.
func (q *Queries) DetachImportedItemNode(ctx context.Context, id int64, status string) error {
	_, err := q.db.Exec(ctx, detachImportedItemNode, id, status)
	return err
}

func scanImportedItem(row interface{ Scan(dest ...any) error }) (ImportedItem, error) {
	var i ImportedItem
	err := row.Scan(
		&i.ID, &i.ZaakID, &i.ZaakNummer, &i.ItemType, &i.Title, &i.Subject,
		&i.DocumentText, &i.DocumentURL, &i.Status, &i.CorpusNodeID,
		&i.MatchedTags, &i.LlmSummary, &i.SourceDate, &i.Deadline,
		&i.Ministry, &i.Submitters, &i.ExtraData, &i.ReviewedAt,
		&i.CreatedAt, &i.UpdatedAt,
	)
	return i, err
}
