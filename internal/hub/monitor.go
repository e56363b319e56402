package hub

import (
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
)

// MonitorService provides methods to gather hub statistics
type MonitorService struct {
	hub *Hub
}

// NewMonitorService creates a new monitor service
func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats gathers and returns all hub statistics
func (ms *MonitorService) GetStats() model.MonitorResponse {
	clients := ms.hub.registry.AllClients()
	rooms, members, largest := ms.hub.rooms.Stats()

	status := "healthy"
	if len(clients) == 0 {
		status = "idle"
	}

	infos := make([]model.ClientInfo, 0, len(clients))
	for _, c := range clients {
		infos = append(infos, model.ClientInfo{
			ClientID:    c.ID,
			UserID:      c.userID,
			JoinedRooms: ms.hub.rooms.RoomsOf(c),
		})
	}

	return model.MonitorResponse{
		Status: status,
		Connections: model.ConnectionStats{
			TotalConnections: len(clients),
			OnlineUsers:      len(ms.hub.registry.OnlineUsers()),
		},
		Rooms: model.RoomStats{
			TotalRooms:       rooms,
			TotalRoomMembers: members,
			LargestRoomSize:  largest,
		},
		Clients: infos,
	}
}
