package db

import "context"

const createCorpusNode = `
INSERT INTO corpus_nodes (public_id, node_type, title, description)
VALUES ($1, $2, $3, $4)
RETURNING id, public_id, node_type, title, description, created_at
`

type CreateCorpusNodeParams struct {
	PublicID    string
	NodeType    string
	Title       string
	Description string
}

func (q *Queries) CreateCorpusNode(ctx context.Context, arg CreateCorpusNodeParams) (CorpusNode, error) {
	var n CorpusNode
	err := q.db.QueryRow(ctx, createCorpusNode,
		arg.PublicID, arg.NodeType, arg.Title, arg.Description,
	).Scan(&n.ID, &n.PublicID, &n.NodeType, &n.Title, &n.Description, &n.CreatedAt)
	return n, err
}

const getCorpusNode = `
SELECT id, public_id, node_type, title, description, created_at
FROM corpus_nodes WHERE id = $1
`

func (q *Queries) GetCorpusNode(ctx context.Context, id int64) (CorpusNode, error) {
	var n CorpusNode
	err := q.db.QueryRow(ctx, getCorpusNode, id).
		Scan(&n.ID, &n.PublicID, &n.NodeType, &n.Title, &n.Description, &n.CreatedAt)
	return n, err
}

// DeleteCorpusNode removes a node. Edges, tag links, stakeholder links,
// item details and review tasks go with it via ON DELETE CASCADE.
const deleteCorpusNode = `DELETE FROM corpus_nodes WHERE id = $1`

func (q *Queries) DeleteCorpusNode(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteCorpusNode, id)
	return err
}

const createCorpusEdge = `
INSERT INTO corpus_edges (from_node_id, to_node_id, edge_type)
VALUES ($1, $2, $3)
RETURNING id, from_node_id, to_node_id, edge_type, created_at
`

type CreateCorpusEdgeParams struct {
	FromNodeID int64
	ToNodeID   int64
	EdgeType   string
}

func (q *Queries) CreateCorpusEdge(ctx context.Context, arg CreateCorpusEdgeParams) (CorpusEdge, error) {
	var e CorpusEdge
	err := q.db.QueryRow(ctx, createCorpusEdge,
		arg.FromNodeID, arg.ToNodeID, arg.EdgeType,
	).Scan(&e.ID, &e.FromNodeID, &e.ToNodeID, &e.EdgeType, &e.CreatedAt)
	return e, err
}

const deleteCorpusEdge = `DELETE FROM corpus_edges WHERE id = $1`

func (q *Queries) DeleteCorpusEdge(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, deleteCorpusEdge, id)
	return err
}

const createItemDetail = `
INSERT INTO item_details (node_id, item_type, data)
VALUES ($1, $2, $3)
RETURNING id
`

type CreateItemDetailParams struct {
	NodeID   int64
	ItemType string
	Data     map[string]string
}

func (q *Queries) CreateItemDetail(ctx context.Context, arg CreateItemDetailParams) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, createItemDetail, arg.NodeID, arg.ItemType, arg.Data).Scan(&id)
	return id, err
}

const getOrCreatePerson = `
INSERT INTO persons (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name, org_unit_id
`

func (q *Queries) GetOrCreatePerson(ctx context.Context, name string) (Person, error) {
	var p Person
	err := q.db.QueryRow(ctx, getOrCreatePerson, name).Scan(&p.ID, &p.Name, &p.OrgUnitID)
	return p, err
}

const linkNodeStakeholder = `
INSERT INTO node_stakeholders (node_id, person_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (node_id, person_id, role) DO NOTHING
`

type LinkNodeStakeholderParams struct {
	NodeID   int64
	PersonID int64
	Role     string
}

func (q *Queries) LinkNodeStakeholder(ctx context.Context, arg LinkNodeStakeholderParams) error {
	_, err := q.db.Exec(ctx, linkNodeStakeholder, arg.NodeID, arg.PersonID, arg.Role)
	return err
}

const attachNodeTag = `
INSERT INTO node_tags (node_id, tag_id)
VALUES ($1, $2)
ON CONFLICT (node_id, tag_id) DO NOTHING
`

func (q *Queries) AttachNodeTag(ctx context.Context, nodeID, tagID int64) error {
	_, err := q.db.Exec(ctx, attachNodeTag, nodeID, tagID)
	return err
}

const listOwnerOrgUnits = `
SELECT p.org_unit_id
FROM node_stakeholders ns
JOIN persons p ON p.id = ns.person_id
WHERE ns.node_id = ANY($1::bigint[])
  AND ns.role = $2
  AND p.org_unit_id IS NOT NULL
ORDER BY array_position($1::bigint[], ns.node_id), ns.id
`

// ListOwnerOrgUnits returns the org units of role-matching stakeholders
// across the given nodes, in node order. Duplicates are kept so callers
// can vote on them.
func (q *Queries) ListOwnerOrgUnits(ctx context.Context, nodeIDs []int64, role string) ([]int64, error) {
	rows, err := q.db.Query(ctx, listOwnerOrgUnits, nodeIDs, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var units []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		units = append(units, id)
	}
	return units, rows.Err()
}
