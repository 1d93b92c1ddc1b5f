package db

import "time"

// Imported item statuses. Transitions are enforced by the importer, not
// by the database.
const (
	ItemStatusPending    = "pending"
	ItemStatusImported   = "imported"
	ItemStatusOutOfScope = "out_of_scope"
	ItemStatusReviewed   = "reviewed"
	ItemStatusRejected   = "rejected"
)

// Suggested edge statuses.
const (
	EdgeStatusPending  = "pending"
	EdgeStatusApproved = "approved"
	EdgeStatusRejected = "rejected"
)

// NodeTypeImportedItem marks corpus nodes created by the importer. These
// never count as match candidates.
const NodeTypeImportedItem = "imported_item"

// StakeholderRoleOwner marks the stakeholder link used for review task
// routing.
const StakeholderRoleOwner = "owner"

type Tag struct {
	ID       int64
	Name     string
	ParentID *int64
}

type CorpusNode struct {
	ID          int64
	PublicID    string
	NodeType    string
	Title       string
	Description string
	CreatedAt   time.Time
}

type CorpusEdge struct {
	ID         int64
	FromNodeID int64
	ToNodeID   int64
	EdgeType   string
	CreatedAt  time.Time
}

type OrgUnit struct {
	ID   int64
	Name string
}

type Person struct {
	ID        int64
	Name      string
	OrgUnitID *int64
}

type ImportedItem struct {
	ID           int64
	ZaakID       string
	ZaakNummer   string
	ItemType     string
	Title        string
	Subject      string
	DocumentText string
	DocumentURL  string
	Status       string
	CorpusNodeID *int64
	MatchedTags  []string
	LlmSummary   string
	SourceDate   *time.Time
	Deadline     *time.Time
	Ministry     string
	Submitters   []string
	ExtraData    map[string]string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ItemDetail struct {
	ID       int64
	NodeID   int64
	ItemType string
	Data     map[string]string
}

type SuggestedEdge struct {
	ID           int64
	ItemID       int64
	CorpusNodeID *int64
	EdgeType     string
	Confidence   float64
	Reason       string
	Status       string
	EdgeID       *int64
	CreatedAt    time.Time
	ReviewedAt   *time.Time
}

type ReviewTask struct {
	ID          int64
	NodeID      int64
	ItemID      int64
	Title       string
	Description string
	Priority    string
	Deadline    *time.Time
	OrgUnitID   *int64
	CreatedAt   time.Time
}

// NodeTag is one row of the node/tag index used by the match scorer.
type NodeTag struct {
	NodeID   int64
	NodeType string
	TagID    int64
}
