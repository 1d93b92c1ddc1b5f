package importer

// ItemOutcome says what a single process_item run did.
type ItemOutcome string

const (
	OutcomeImported   ItemOutcome = "imported"
	OutcomeSkipped    ItemOutcome = "skipped"
	OutcomePending    ItemOutcome = "pending"
	OutcomeOutOfScope ItemOutcome = "out_of_scope"
	OutcomeFailed     ItemOutcome = "failed"
)

// CycleSummary aggregates one import cycle for one item type.
type CycleSummary struct {
	ItemType   string `json:"item_type"`
	Fetched    int    `json:"fetched"`
	Imported   int    `json:"imported"`
	Skipped    int    `json:"skipped"`
	Pending    int    `json:"pending"`
	OutOfScope int    `json:"out_of_scope"`
	Failed     int    `json:"failed"`
}

func (s *CycleSummary) count(outcome ItemOutcome) {
	switch outcome {
	case OutcomeImported:
		s.Imported++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomePending:
		s.Pending++
	case OutcomeOutOfScope:
		s.OutOfScope++
	case OutcomeFailed:
		s.Failed++
	}
}

// ReprocessSummary aggregates one reprocessing batch.
type ReprocessSummary struct {
	ItemType   string `json:"item_type"`
	Total      int    `json:"total"`
	Matched    int    `json:"matched"`
	OutOfScope int    `json:"out_of_scope"`
	Skipped    int    `json:"skipped"`
	NoLLM      bool   `json:"no_llm,omitempty"`
}
