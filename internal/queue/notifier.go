package queue

import (
	"context"
	"encoding/json"

	"beleidsgraaf/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

// TopicItemsImported is the routing key for import notifications.
const TopicItemsImported = "items.imported"

// AmqpNotifier announces imported items on the pubsub exchange.
// Publishing is fire-and-forget, a failure only logs.
type AmqpNotifier struct {
	ch *amqp091.Channel
}

func NewAmqpNotifier(ch *amqp091.Channel) *AmqpNotifier {
	return &AmqpNotifier{ch: ch}
}

func (n *AmqpNotifier) NotifyItemsImported(ctx context.Context, nodeID int64, affectedNodeIDs []int64, itemType string) {
	if n.ch == nil {
		return
	}
	msg := ItemsImportedMsg{
		NodeID:          nodeID,
		AffectedNodeIDs: affectedNodeIDs,
		ItemType:        itemType,
	}
	body, err := json.Marshal(msg)
	if err != nil {
		logger.Error("[Queue] Failed to marshal import notification", "node_id", nodeID, "err", err)
		return
	}
	if err := PublishTopic(n.ch, TopicItemsImported, body); err != nil {
		logger.Error("[Queue] Failed to publish import notification", "node_id", nodeID, "err", err)
	}
}
