// Package importer contains the import pipeline: fetching parliamentary
// items, matching them against the policy graph by tag overlap, and the
// review workflow around the resulting suggested edges.
package importer

import (
	"context"
	"time"

	"beleidsgraaf/internal/db"
	"beleidsgraaf/pkg/ai"
	"beleidsgraaf/pkg/tkapi"
)

// Store is the persistence surface the pipeline runs against. The
// production implementation wraps internal/db over pgx, tests use an
// in-memory fake.
type Store interface {
	// InTx runs fn against a transactional view of the store. An error
	// from fn rolls back everything fn wrote.
	InTx(ctx context.Context, fn func(Store) error) error

	GetItem(ctx context.Context, id int64) (db.ImportedItem, error)
	GetItemByZaakID(ctx context.Context, zaakID string) (db.ImportedItem, error)
	CreateItem(ctx context.Context, arg db.CreateImportedItemParams) (db.ImportedItem, error)
	ListItems(ctx context.Context, arg db.ListImportedItemsParams) ([]db.ImportedItem, error)
	ListReprocessCandidates(ctx context.Context, itemType string) ([]db.ImportedItem, error)
	UpdateItemMatch(ctx context.Context, arg db.UpdateImportedItemMatchParams) error
	SetItemStatus(ctx context.Context, id int64, status string) error
	ReopenItem(ctx context.Context, id int64) error
	DetachItemNode(ctx context.Context, id int64, status string) error

	LoadSnapshot(ctx context.Context) (*Snapshot, error)
	CreateNode(ctx context.Context, arg db.CreateCorpusNodeParams) (db.CorpusNode, error)
	DeleteNode(ctx context.Context, id int64) error
	CreateEdge(ctx context.Context, arg db.CreateCorpusEdgeParams) (db.CorpusEdge, error)
	DeleteEdge(ctx context.Context, id int64) error
	CreateItemDetail(ctx context.Context, arg db.CreateItemDetailParams) error
	GetOrCreatePerson(ctx context.Context, name string) (db.Person, error)
	LinkStakeholder(ctx context.Context, arg db.LinkNodeStakeholderParams) error
	AttachNodeTag(ctx context.Context, nodeID, tagID int64) error
	OwnerOrgUnits(ctx context.Context, nodeIDs []int64) ([]int64, error)

	CreateSuggestedEdge(ctx context.Context, arg db.CreateSuggestedEdgeParams) (db.SuggestedEdge, error)
	GetSuggestedEdge(ctx context.Context, id int64) (db.SuggestedEdge, error)
	ListSuggestedEdgesByItem(ctx context.Context, itemID int64) ([]db.SuggestedEdge, error)
	ApproveSuggestedEdge(ctx context.Context, id, edgeID int64) error
	RejectSuggestedEdge(ctx context.Context, id int64) error
	SetSuggestedEdgeType(ctx context.Context, id int64, edgeType string) error
	ResetSuggestedEdge(ctx context.Context, id int64) error
	DeleteSuggestedEdgesByItem(ctx context.Context, itemID int64) error

	CreateReviewTask(ctx context.Context, arg db.CreateReviewTaskParams) (db.ReviewTask, error)
}

// SourceClient fetches items from an external parliamentary data
// source. Implemented by pkg/tkapi.
type SourceClient interface {
	FetchItems(ctx context.Context, since *time.Time, limit int) ([]tkapi.FetchedItem, error)
}

// Extractor is the tag-extraction capability. Implementations return
// ai.ErrUnavailable (wrapped) when the capability itself is down, which
// the pipeline treats as "defer the item", not as a crash.
type Extractor interface {
	ExtractTags(ctx context.Context, req ai.ExtractRequest) (ai.ExtractResult, error)
}

// Notifier announces imported items to interested parties. Calls are
// fire-and-forget, implementations log their own failures.
type Notifier interface {
	NotifyItemsImported(ctx context.Context, nodeID int64, affectedNodeIDs []int64, itemType string)
}

// Archiver stores the raw upstream payload of an imported item.
// Failures are logged and ignored.
type Archiver interface {
	PutRawItem(ctx context.Context, itemType, zaakID string, payload any) error
}
