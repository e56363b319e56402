package model

// MonitorResponse is the full statistics payload returned by the monitor API
type MonitorResponse struct {
	Status      string          `json:"status"`
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats summarizes the connection registry
type ConnectionStats struct {
	TotalConnections int `json:"totalConnections"`
	OnlineUsers      int `json:"onlineUsers"`
}

// RoomStats summarizes live room membership
type RoomStats struct {
	TotalRooms       int `json:"totalRooms"`
	TotalRoomMembers int `json:"totalRoomMembers"`
	LargestRoomSize  int `json:"largestRoomSize"`
}

// ClientInfo describes one live connection
type ClientInfo struct {
	ClientID    string   `json:"clientId"`
	UserID      string   `json:"userId"`
	JoinedRooms []string `json:"joinedRooms"`
}
