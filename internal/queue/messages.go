package queue

import "time"

// QueueImportMsg triggers one import cycle per listed item type.
type QueueImportMsg struct {
	Message   string     `json:"message"`
	ItemTypes []string   `json:"item_types"`
	Since     *time.Time `json:"since,omitempty"`
	Limit     int        `json:"limit,omitempty"`
}

// QueueReprocessMsg triggers a reprocessing batch for one item type.
type QueueReprocessMsg struct {
	Message  string `json:"message"`
	ItemType string `json:"item_type"`
}

// ItemsImportedMsg is published on the pubsub exchange after an item
// lands in the graph.
type ItemsImportedMsg struct {
	NodeID          int64   `json:"node_id"`
	AffectedNodeIDs []int64 `json:"affected_node_ids"`
	ItemType        string  `json:"item_type"`
}
