package event

import "encoding/json"

// Commands accepted from clients once the handshake has completed.
const (
	CmdJoinRoom      = "join-room"
	CmdLeaveRoom     = "leave-room"
	CmdSendMessage   = "send-message"
	CmdTypingStart   = "typing-start"
	CmdTypingStop    = "typing-stop"
	CmdMarkRead      = "mark-messages-read"
	CmdDeleteMessage = "delete-message"
)

// Events emitted to clients.
const (
	EventDirectMessage = "direct-message"
	EventGroupMessage  = "group-message"
	EventMessageSent   = "message-sent"
	EventUserTyping    = "user-typing"
	EventUserStopped   = "user-stopped-typing"
	EventUserStatus    = "user-status"
	EventUserJoined    = "user-joined-group"
	EventUserLeft      = "user-left-group"
	EventDeleted       = "message-deleted"
	EventMarkedRead    = "messages-marked-read"
	EventError         = "error"
)

// Error codes carried by the error event.
const (
	CodeAuthMissing        = "AUTH_MISSING"
	CodeAuthInvalid        = "AUTH_INVALID"
	CodeAuthUnknown        = "AUTH_UNKNOWN_IDENTITY"
	CodeAccessDenied       = "ACCESS_DENIED"
	CodeNotAMember         = "NOT_A_MEMBER"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeNotFound           = "NOT_FOUND"
	CodeNotOwner           = "NOT_OWNER"
	CodeBadRequest         = "BAD_REQUEST"
)

// WsEvent is the frame exchanged in both directions over a connection.
type WsEvent struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// NewEvent wraps a payload struct into a WsEvent. Marshal failures cannot
// happen for the payload types in this package, so they are swallowed.
func NewEvent(name string, payload any) WsEvent {
	raw, _ := json.Marshal(payload)
	return WsEvent{Event: name, Payload: raw}
}

// JoinRoom / LeaveRoom command payload
type RoomCommand struct {
	GroupID string `json:"groupId"`
}

// SendMessage command payload. Exactly one of ReceiverID or GroupID is set.
type SendMessage struct {
	Content    string  `json:"content"`
	ReceiverID *string `json:"receiverId,omitempty"`
	GroupID    *string `json:"groupId,omitempty"`
}

// Typing command payload for typing-start / typing-stop.
type Typing struct {
	ReceiverID *string `json:"receiverId,omitempty"`
	GroupID    *string `json:"groupId,omitempty"`
}

// MarkRead command payload
type MarkRead struct {
	MessageIDs []string `json:"messageIds"`
}

// DeleteMessage command payload
type DeleteMessage struct {
	MessageID string `json:"messageId"`
}

// Envelope is the delivery-ready representation of a persisted message.
// It is built once per send and only the IsOwn flag differs per recipient.
type Envelope struct {
	MessageID    string  `json:"messageId"`
	Body         string  `json:"body"`
	SenderID     string  `json:"senderId"`
	SenderName   string  `json:"senderName"`
	SenderAvatar string  `json:"senderAvatar"`
	ReceiverID   *string `json:"receiverId,omitempty"`
	GroupID      *string `json:"groupId,omitempty"`
	SentAt       string  `json:"sentAt"`
	IsOwn        bool    `json:"isOwn"`
}

// UserStatus announces an online/offline transition.
type UserStatus struct {
	UserID string `json:"userId"`
	Status string `json:"status"`
}

// RoomSignal announces a user joining or leaving a room.
type RoomSignal struct {
	GroupID string `json:"groupId"`
	UserID  string `json:"userId"`
}

// TypingSignal is relayed for user-typing / user-stopped-typing.
type TypingSignal struct {
	UserID  string  `json:"userId"`
	GroupID *string `json:"groupId,omitempty"`
}

// Deleted announces that a message was removed.
type Deleted struct {
	MessageID string  `json:"messageId"`
	GroupID   *string `json:"groupId,omitempty"`
}

// MarkedRead confirms which messages were marked read and by whom.
type MarkedRead struct {
	UserID     string   `json:"userId"`
	MessageIDs []string `json:"messageIds"`
}

// ErrorPayload is sent on the error event
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
