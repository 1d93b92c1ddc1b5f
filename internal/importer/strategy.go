package importer

import (
	"fmt"
	"time"

	"beleidsgraaf/pkg/tkapi"
)

// Item types handled by the pipeline.
const (
	ItemTypeMotion          = "motion"
	ItemTypeWrittenQuestion = "written_question"
	ItemTypeCommitment      = "commitment"
)

// DefaultTaskDeadlineDays is used when a strategy cannot derive a
// deadline from the item itself.
const DefaultTaskDeadlineDays = 10

// chamberPseudoNames are submitter names that refer to a chamber as a
// whole rather than a person. They never become stakeholder persons.
var chamberPseudoNames = map[string]bool{
	"Tweede Kamer":                     true,
	"Eerste Kamer":                     true,
	"De Kamer":                         true,
	"Tweede Kamer der Staten-Generaal": true,
	"Eerste Kamer der Staten-Generaal": true,
}

func isChamberPseudoName(name string) bool {
	return chamberPseudoNames[name]
}

// Strategy is the per-item-type policy: where items of the type come
// from, whether they need tag extraction, and which defaults apply to
// the suggested edges and review tasks the pipeline creates for them.
type Strategy interface {
	ItemType() string
	Sources() []SourceClient
	RequiresExtraction() bool
	// ForceImport makes the match branch run even when scoring finds no
	// candidates, instead of parking the item as out of scope.
	ForceImport() bool
	EdgeType() string
	// Deadline derives a review deadline from the fetched item, or nil
	// when the item carries none.
	Deadline(item tkapi.FetchedItem) *time.Time
	TaskTitle(item tkapi.FetchedItem) string
	TaskPriority() string
	// ContextHint steers the extraction capability toward the item
	// type's phrasing.
	ContextHint() string
}

// StrategyFor builds the strategy for an item type name.
func StrategyFor(itemType string, sources ...SourceClient) (Strategy, error) {
	switch itemType {
	case ItemTypeMotion:
		return NewMotionStrategy(sources...), nil
	case ItemTypeWrittenQuestion:
		return NewWrittenQuestionStrategy(sources...), nil
	case ItemTypeCommitment:
		return NewCommitmentStrategy(sources...), nil
	default:
		return nil, fmt.Errorf("unknown item type %q", itemType)
	}
}

// MotionStrategy imports chamber motions.
type MotionStrategy struct {
	sources []SourceClient
}

func NewMotionStrategy(sources ...SourceClient) *MotionStrategy {
	return &MotionStrategy{sources: sources}
}

func (s *MotionStrategy) ItemType() string { return ItemTypeMotion }
func (s *MotionStrategy) Sources() []SourceClient { return s.sources }
func (s *MotionStrategy) RequiresExtraction() bool { return true }
func (s *MotionStrategy) ForceImport() bool { return false }
func (s *MotionStrategy) EdgeType() string { return "addresses" }
func (s *MotionStrategy) TaskPriority() string { return "medium" }

func (s *MotionStrategy) Deadline(item tkapi.FetchedItem) *time.Time {
	return item.Deadline
}

func (s *MotionStrategy) TaskTitle(item tkapi.FetchedItem) string {
	return fmt.Sprintf("Beoordeel motie %s", item.ZaakNummer)
}

func (s *MotionStrategy) ContextHint() string {
	return "Het document is een motie van de Tweede Kamer."
}

// WrittenQuestionStrategy imports written parliamentary questions.
// Questions have a statutory answer term, so their review tasks are
// high priority.
type WrittenQuestionStrategy struct {
	sources []SourceClient
}

func NewWrittenQuestionStrategy(sources ...SourceClient) *WrittenQuestionStrategy {
	return &WrittenQuestionStrategy{sources: sources}
}

func (s *WrittenQuestionStrategy) ItemType() string { return ItemTypeWrittenQuestion }
func (s *WrittenQuestionStrategy) Sources() []SourceClient { return s.sources }
func (s *WrittenQuestionStrategy) RequiresExtraction() bool { return true }
func (s *WrittenQuestionStrategy) ForceImport() bool { return false }
func (s *WrittenQuestionStrategy) EdgeType() string { return "questions" }
func (s *WrittenQuestionStrategy) TaskPriority() string { return "high" }

func (s *WrittenQuestionStrategy) Deadline(item tkapi.FetchedItem) *time.Time {
	if item.Deadline != nil {
		return item.Deadline
	}
	if item.Date != nil {
		// Statutory three week answer term when the source does not
		// carry an explicit one.
		d := DeadlineInBusinessDays(*item.Date, 15)
		return &d
	}
	return nil
}

func (s *WrittenQuestionStrategy) TaskTitle(item tkapi.FetchedItem) string {
	return fmt.Sprintf("Beantwoord schriftelijke vragen %s", item.ZaakNummer)
}

func (s *WrittenQuestionStrategy) ContextHint() string {
	return "Het document bevat schriftelijke Kamervragen aan een bewindspersoon."
}

// CommitmentStrategy imports commitments made by ministers during
// debates. Commitments always represent work the department owns, so
// they are imported even without a tag match.
type CommitmentStrategy struct {
	sources []SourceClient
}

func NewCommitmentStrategy(sources ...SourceClient) *CommitmentStrategy {
	return &CommitmentStrategy{sources: sources}
}

func (s *CommitmentStrategy) ItemType() string { return ItemTypeCommitment }
func (s *CommitmentStrategy) Sources() []SourceClient { return s.sources }
func (s *CommitmentStrategy) RequiresExtraction() bool { return true }
func (s *CommitmentStrategy) ForceImport() bool { return true }
func (s *CommitmentStrategy) EdgeType() string { return "fulfills" }
func (s *CommitmentStrategy) TaskPriority() string { return "medium" }

func (s *CommitmentStrategy) Deadline(item tkapi.FetchedItem) *time.Time {
	return item.Deadline
}

func (s *CommitmentStrategy) TaskTitle(item tkapi.FetchedItem) string {
	return fmt.Sprintf("Plan toezegging %s", item.ZaakNummer)
}

func (s *CommitmentStrategy) ContextHint() string {
	return "Het document beschrijft een toezegging van een bewindspersoon."
}
