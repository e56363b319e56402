package hub

import (
	"sync"
)

// RoomSet tracks which live connections have joined which group's broadcast
// room. Room membership is ephemeral: it exists only for the lifetime of a
// connection and must be re-established after a reconnect. It is distinct
// from persistent group membership, which the GroupRepository answers.
type RoomSet struct {
	mu    sync.RWMutex
	rooms map[string]map[string]*Client // groupID -> clientID -> client
}

func NewRoomSet() *RoomSet {
	return &RoomSet{
		rooms: make(map[string]map[string]*Client),
	}
}

// Join adds the connection to the room. Returns the other current members
// (for the user-joined signal) and whether the connection was already joined.
func (rs *RoomSet) Join(groupID string, c *Client) (others []*Client, already bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	room, ok := rs.rooms[groupID]
	if !ok {
		room = make(map[string]*Client)
		rs.rooms[groupID] = room
	}

	if _, already = room[c.ID]; already {
		return nil, true
	}

	others = make([]*Client, 0, len(room))
	for _, member := range room {
		others = append(others, member)
	}
	room[c.ID] = c
	return others, false
}

// Leave removes the connection from the room. A no-op if the connection was
// not joined. Returns the remaining members for the user-left signal.
func (rs *RoomSet) Leave(groupID string, c *Client) (remaining []*Client, wasMember bool) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.leaveLocked(groupID, c)
}

// LeaveAll removes the connection from every room it joined, as a single
// cleanup pass on disconnect. Returns the remaining members per room.
func (rs *RoomSet) LeaveAll(c *Client) map[string][]*Client {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	left := make(map[string][]*Client)
	for groupID, room := range rs.rooms {
		if _, ok := room[c.ID]; !ok {
			continue
		}
		remaining, _ := rs.leaveLocked(groupID, c)
		left[groupID] = remaining
	}
	return left
}

// Members returns a snapshot of the room's current connections.
func (rs *RoomSet) Members(groupID string) []*Client {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	room := rs.rooms[groupID]
	if len(room) == 0 {
		return nil
	}
	members := make([]*Client, 0, len(room))
	for _, c := range room {
		members = append(members, c)
	}
	return members
}

// RoomsOf returns the ids of the rooms this connection has joined.
func (rs *RoomSet) RoomsOf(c *Client) []string {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	var ids []string
	for groupID, room := range rs.rooms {
		if _, ok := room[c.ID]; ok {
			ids = append(ids, groupID)
		}
	}
	return ids
}

// Stats returns room count, total membership count and the largest room size.
func (rs *RoomSet) Stats() (rooms, members, largest int) {
	rs.mu.RLock()
	defer rs.mu.RUnlock()

	for _, room := range rs.rooms {
		rooms++
		members += len(room)
		if len(room) > largest {
			largest = len(room)
		}
	}
	return rooms, members, largest
}

func (rs *RoomSet) leaveLocked(groupID string, c *Client) (remaining []*Client, wasMember bool) {
	room, ok := rs.rooms[groupID]
	if !ok {
		return nil, false
	}
	if _, wasMember = room[c.ID]; !wasMember {
		return nil, false
	}

	delete(room, c.ID)
	if len(room) == 0 {
		delete(rs.rooms, groupID)
		return nil, true
	}

	remaining = make([]*Client, 0, len(room))
	for _, member := range room {
		remaining = append(remaining, member)
	}
	return remaining, true
}
