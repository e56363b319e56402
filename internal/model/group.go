package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group represents a chat group in MongoDB. Group membership is persistent
// and is distinct from room membership, which only exists for live
// connections that joined the group's broadcast room.
type Group struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GroupID   string             `json:"groupId" bson:"group_id"`
	Name      string             `json:"name" bson:"name"`
	Avatar    string             `json:"avatar" bson:"avatar"`
	MemberIDs []string           `json:"memberIds" bson:"member_ids"`
	Members   []GroupMember      `json:"members" bson:"members"`
	CreatedBy string             `json:"createdBy" bson:"created_by"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
	IsActive  bool               `json:"isActive" bson:"is_active"`
}

// GroupMember represents a user's membership record inside a group document
type GroupMember struct {
	UserID   string    `json:"userId" bson:"user_id"`
	Username string    `json:"username" bson:"username"`
	Role     string    `json:"role" bson:"role"`
	JoinedAt time.Time `json:"joinedAt" bson:"joined_at"`
}
