package db

import "context"

const listTags = `SELECT id, name, parent_id FROM tags ORDER BY id`

func (q *Queries) ListTags(ctx context.Context) ([]Tag, error) {
	rows, err := q.db.Query(ctx, listTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.ParentID); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

const listNodeTags = `
SELECT nt.node_id, n.node_type, nt.tag_id
FROM node_tags nt
JOIN corpus_nodes n ON n.id = nt.node_id
ORDER BY nt.node_id, nt.tag_id
`

// ListNodeTags returns the full node/tag index the match scorer works
// from. The tag vocabulary is small enough to load whole.
func (q *Queries) ListNodeTags(ctx context.Context) ([]NodeTag, error) {
	rows, err := q.db.Query(ctx, listNodeTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pairs []NodeTag
	for rows.Next() {
		var nt NodeTag
		if err := rows.Scan(&nt.NodeID, &nt.NodeType, &nt.TagID); err != nil {
			return nil, err
		}
		pairs = append(pairs, nt)
	}
	return pairs, rows.Err()
}
