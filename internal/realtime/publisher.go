package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"agromarket/internal/dbmysql"
)

const publishTimeout = 5 * time.Second

// Publisher fans events out over the broker to every member's personal
// channel. Subscribing API instances forward them to connected sockets.
// Delivery is best effort; the durable record always lives in MySQL first.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

type event struct {
	Type           string      `json:"type"`
	ConversationID string      `json:"conversation_id,omitempty"`
	Payload        interface{} `json:"payload,omitempty"`
}

func (p *Publisher) MessageSent(memberIDs []string, msg *dbmysql.Message) {
	p.publish(memberIDs, event{
		Type:           "message.new",
		ConversationID: msg.ConversationID,
		Payload:        msg,
	})
}

func (p *Publisher) ConversationUpdated(memberIDs []string, conversationID string) {
	p.publish(memberIDs, event{
		Type:           "conversation.updated",
		ConversationID: conversationID,
	})
}

func (p *Publisher) NotificationCreated(notification *dbmysql.Notification) {
	p.publish([]string{notification.UserID}, event{
		Type:    "notification.new",
		Payload: notification,
	})
}

func (p *Publisher) publish(userIDs []string, e event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("realtime: event marshal failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	for _, userID := range userIDs {
		if err := p.rdb.Publish(ctx, userChannelPrefix+userID, payload).Err(); err != nil {
			log.Printf("realtime: publish to %s failed: %v", userID, err)
		}
	}
}
