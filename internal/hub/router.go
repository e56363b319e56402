package hub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/event"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"go.uber.org/zap"
)

// handleCommand dispatches one inbound frame. Every failure is converted to
// an error event on the originating connection; nothing here is fatal to the
// process or to other connections.
func (h *Hub) handleCommand(c *Client, ev event.WsEvent) {
	switch ev.Event {
	case event.CmdJoinRoom:
		var cmd event.RoomCommand
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil || cmd.GroupID == "" {
			c.sendError(event.CodeBadRequest, "join-room needs a groupId")
			return
		}
		h.joinRoom(c, cmd.GroupID)

	case event.CmdLeaveRoom:
		var cmd event.RoomCommand
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil || cmd.GroupID == "" {
			c.sendError(event.CodeBadRequest, "leave-room needs a groupId")
			return
		}
		h.leaveRoom(c, cmd.GroupID)

	case event.CmdSendMessage:
		var cmd event.SendMessage
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil {
			c.sendError(event.CodeBadRequest, "malformed send-message payload")
			return
		}
		h.sendMessage(c, cmd)

	case event.CmdTypingStart, event.CmdTypingStop:
		var cmd event.Typing
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil {
			c.sendError(event.CodeBadRequest, "malformed typing payload")
			return
		}
		h.relayTyping(c, cmd, ev.Event == event.CmdTypingStart)

	case event.CmdMarkRead:
		var cmd event.MarkRead
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil || len(cmd.MessageIDs) == 0 {
			c.sendError(event.CodeBadRequest, "mark-messages-read needs messageIds")
			return
		}
		h.markRead(c, cmd.MessageIDs)

	case event.CmdDeleteMessage:
		var cmd event.DeleteMessage
		if err := json.Unmarshal(ev.Payload, &cmd); err != nil || cmd.MessageID == "" {
			c.sendError(event.CodeBadRequest, "delete-message needs a messageId")
			return
		}
		h.deleteMessage(c, cmd.MessageID)

	default:
		c.sendError(event.CodeBadRequest, "unknown command: "+ev.Event)
	}
}

// joinRoom admits the connection to a group's broadcast room after the
// persistent-membership check. On denial the room state is left unchanged.
func (h *Hub) joinRoom(c *Client, groupID string) {
	ok, err := h.groups.IsMember(h.ctx, c.userID, groupID)
	if err != nil {
		h.logger.Error("membership check failed", zap.Error(err), zap.String("group_id", groupID))
		c.sendError(event.CodePersistenceFailure, "could not verify group membership")
		return
	}
	if !ok {
		c.sendError(event.CodeAccessDenied, "not a member of group "+groupID)
		return
	}

	others, already := h.rooms.Join(groupID, c)
	if already {
		return
	}

	signal := event.NewEvent(event.EventUserJoined, event.RoomSignal{
		GroupID: groupID,
		UserID:  c.userID,
	})
	for _, member := range others {
		member.SafeSend(signal)
	}

	h.logger.Debug("client joined room",
		zap.String("client_id", c.ID),
		zap.String("group_id", groupID),
	)
}

func (h *Hub) leaveRoom(c *Client, groupID string) {
	remaining, wasMember := h.rooms.Leave(groupID, c)
	if !wasMember {
		return
	}

	signal := event.NewEvent(event.EventUserLeft, event.RoomSignal{
		GroupID: groupID,
		UserID:  c.userID,
	})
	for _, member := range remaining {
		member.SafeSend(signal)
	}
}

func (h *Hub) sendMessage(c *Client, cmd event.SendMessage) {
	switch {
	case cmd.ReceiverID != nil && cmd.GroupID != nil:
		c.sendError(event.CodeBadRequest, "send-message cannot target both a receiver and a group")
	case cmd.ReceiverID != nil:
		h.sendDirect(c, *cmd.ReceiverID, cmd.Content)
	case cmd.GroupID != nil:
		h.sendGroup(c, *cmd.GroupID, cmd.Content)
	default:
		c.sendError(event.CodeBadRequest, "send-message needs a receiverId or a groupId")
	}
}

// sendDirect persists the message, then delivers the envelope to every live
// connection of both sender and receiver. Persistence failure means zero
// deliveries. An offline receiver is not an error: the message is stored and
// simply not delivered in real time.
func (h *Hub) sendDirect(c *Client, receiverID, content string) {
	if content == "" {
		c.sendError(event.CodeBadRequest, "message body cannot be empty")
		return
	}

	msg, err := h.messages.CreateMessage(h.ctx, c.userID, content, &receiverID, nil)
	if err != nil {
		h.logger.Error("direct message persistence failed", zap.Error(err))
		c.sendError(event.CodePersistenceFailure, "message could not be stored")
		return
	}

	env := h.buildEnvelope(msg, c.user)

	targets := h.registry.ClientsFor(c.userID)
	if receiverID != c.userID {
		targets = append(targets, h.registry.ClientsFor(receiverID)...)
	}
	for _, target := range targets {
		target.SafeSend(event.NewEvent(event.EventDirectMessage, stamped(env, target.userID == c.userID)))
	}

	// Send-acknowledgement back to the originating connection.
	c.SafeSend(event.NewEvent(event.EventMessageSent, stamped(env, true)))
}

// sendGroup persists the message after the persistent-membership check, then
// broadcasts to the connections currently joined to the room. A group member
// who has not joined the room receives nothing in real time.
func (h *Hub) sendGroup(c *Client, groupID, content string) {
	if content == "" {
		c.sendError(event.CodeBadRequest, "message body cannot be empty")
		return
	}

	ok, err := h.groups.IsMember(h.ctx, c.userID, groupID)
	if err != nil {
		h.logger.Error("membership check failed", zap.Error(err), zap.String("group_id", groupID))
		c.sendError(event.CodePersistenceFailure, "could not verify group membership")
		return
	}
	if !ok {
		c.sendError(event.CodeNotAMember, "not a member of group "+groupID)
		return
	}

	msg, err := h.messages.CreateMessage(h.ctx, c.userID, content, nil, &groupID)
	if err != nil {
		h.logger.Error("group message persistence failed", zap.Error(err))
		c.sendError(event.CodePersistenceFailure, "message could not be stored")
		return
	}

	env := h.buildEnvelope(msg, c.user)

	for _, member := range h.rooms.Members(groupID) {
		member.SafeSend(event.NewEvent(event.EventGroupMessage, stamped(env, member.userID == c.userID)))
	}

	c.SafeSend(event.NewEvent(event.EventMessageSent, stamped(env, true)))
}

// relayTyping broadcasts a transient typing signal; nothing is persisted.
// The sender's own connections never receive it.
func (h *Hub) relayTyping(c *Client, cmd event.Typing, started bool) {
	name := event.EventUserStopped
	if started {
		name = event.EventUserTyping
	}

	signal := event.NewEvent(name, event.TypingSignal{
		UserID:  c.userID,
		GroupID: cmd.GroupID,
	})

	switch {
	case cmd.ReceiverID != nil:
		for _, target := range h.registry.ClientsFor(*cmd.ReceiverID) {
			target.SafeSend(signal)
		}
	case cmd.GroupID != nil:
		for _, member := range h.rooms.Members(*cmd.GroupID) {
			if member.userID == c.userID {
				continue
			}
			member.SafeSend(signal)
		}
	default:
		c.sendError(event.CodeBadRequest, "typing needs a receiverId or a groupId")
	}
}

// markRead records the read receipts, then confirms to every connection of
// the reader so all their devices stay in sync.
func (h *Hub) markRead(c *Client, messageIDs []string) {
	if err := h.messages.MarkRead(h.ctx, c.userID, messageIDs); err != nil {
		h.logger.Error("mark read failed", zap.Error(err))
		c.sendError(event.CodePersistenceFailure, "messages could not be marked read")
		return
	}

	confirmation := event.NewEvent(event.EventMarkedRead, event.MarkedRead{
		UserID:     c.userID,
		MessageIDs: messageIDs,
	})
	for _, target := range h.registry.ClientsFor(c.userID) {
		target.SafeSend(confirmation)
	}
}

// deleteMessage authorizes and executes the deletion via the store, then
// notifies the message's audience. No broadcast happens on failure.
func (h *Hub) deleteMessage(c *Client, messageID string) {
	msg, err := h.messages.DeleteMessage(h.ctx, messageID, c.userID)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrMessageNotFound):
			c.sendError(event.CodeNotFound, "message not found")
		case errors.Is(err, repo.ErrNotOwner):
			c.sendError(event.CodeNotOwner, "only the sender can delete a message")
		default:
			h.logger.Error("delete message failed", zap.Error(err))
			c.sendError(event.CodePersistenceFailure, "message could not be deleted")
		}
		return
	}

	signal := event.NewEvent(event.EventDeleted, event.Deleted{
		MessageID: msg.MessageId,
		GroupID:   msg.GroupID,
	})

	if msg.GroupID != nil {
		for _, member := range h.rooms.Members(*msg.GroupID) {
			member.SafeSend(signal)
		}
		return
	}

	targets := h.registry.ClientsFor(c.userID)
	if msg.ReceiverID != nil {
		targets = append(targets, h.registry.ClientsFor(*msg.ReceiverID)...)
	}
	for _, target := range targets {
		target.SafeSend(signal)
	}
}

// buildEnvelope constructs the immutable delivery representation of a
// persisted message; only the IsOwn flag is adjusted per recipient.
func (h *Hub) buildEnvelope(msg *model.Message, sender *model.User) event.Envelope {
	return event.Envelope{
		MessageID:    msg.MessageId,
		Body:         msg.Body,
		SenderID:     sender.UserID,
		SenderName:   sender.DisplayName(),
		SenderAvatar: sender.Avatar,
		ReceiverID:   msg.ReceiverID,
		GroupID:      msg.GroupID,
		SentAt:       msg.CreatedAt.Format(time.RFC3339),
	}
}

func stamped(env event.Envelope, isOwn bool) event.Envelope {
	env.IsOwn = isOwn
	return env
}
