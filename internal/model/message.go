package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	MessageSentId    = 1
	MessageSeenId    = 2
	MessageDeletedId = 3
)

// Message represents a chat message in MongoDB. Exactly one of ReceiverID or
// GroupID is set: ReceiverID for direct messages, GroupID for group messages.
type Message struct {
	ID         primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MessageId  string             `json:"messageId" bson:"message_id"`
	SenderID   string             `json:"senderId" bson:"sender_id"`
	ReceiverID *string            `json:"receiverId,omitempty" bson:"receiver_id,omitempty"`
	GroupID    *string            `json:"groupId,omitempty" bson:"group_id,omitempty"`
	Body       string             `json:"body" bson:"body"`
	ReadBy     []string           `json:"readBy" bson:"read_by"`
	CreatedAt  time.Time          `json:"createdAt" bson:"created_at"`
	Status     int                `json:"status" bson:"status"`
}
