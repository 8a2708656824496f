package hub

import (
	"github.com/berlincodez/Campus-Skill-link/internal/model"
)

// MonitorService reads a snapshot of the hub's rooms for the monitor API.
type MonitorService struct {
	hub *Hub
}

func NewMonitorService(hub *Hub) *MonitorService {
	return &MonitorService{hub: hub}
}

// GetStats walks every shard and reports all rooms.
func (ms *MonitorService) GetStats() model.MonitorResponse {
	acc := newStatsAccumulator()
	for _, bucket := range ms.hub.shards {
		bucket.RLock()
		for connectionID, room := range bucket.rooms {
			acc.addRoom(connectionID, room)
		}
		bucket.RUnlock()
	}
	return acc.result()
}

// GetRoomStats reports the subscribers of a single thread; only its shard is locked.
func (ms *MonitorService) GetRoomStats(connectionID string) model.MonitorResponse {
	acc := newStatsAccumulator()
	bucket := ms.hub.shards[getShard(connectionID)]
	bucket.RLock()
	if room, ok := bucket.rooms[connectionID]; ok {
		acc.addRoom(connectionID, room)
	}
	bucket.RUnlock()
	return acc.result()
}

type statsAccumulator struct {
	stats model.MonitorResponse
	users map[string]struct{}
}

func newStatsAccumulator() *statsAccumulator {
	return &statsAccumulator{
		stats: model.MonitorResponse{
			Rooms:   model.RoomStats{RoomDetails: make([]model.RoomInfo, 0)},
			Clients: make([]model.ClientInfo, 0),
		},
		users: make(map[string]struct{}),
	}
}

// addRoom copies one room. Callers hold the shard's read lock.
func (a *statsAccumulator) addRoom(connectionID string, room map[string]*Client) {
	info := model.RoomInfo{
		ConnectionID: connectionID,
		Subscribers:  len(room),
		UserIDs:      make([]string, 0, len(room)),
	}
	for _, c := range room {
		info.UserIDs = append(info.UserIDs, c.userID)
		a.users[c.userID] = struct{}{}
		a.stats.Clients = append(a.stats.Clients, model.ClientInfo{
			ClientID:     c.ID,
			UserID:       c.userID,
			ConnectionID: connectionID,
		})
	}
	a.stats.Rooms.RoomDetails = append(a.stats.Rooms.RoomDetails, info)
	a.stats.Rooms.TotalRooms++
}

func (a *statsAccumulator) result() model.MonitorResponse {
	a.stats.Connections = model.ConnectionStats{
		TotalConnected: len(a.stats.Clients),
		DistinctUsers:  len(a.users),
	}
	a.stats.Status = "healthy"
	if a.stats.Connections.TotalConnected == 0 {
		a.stats.Status = "idle"
	}
	return a.stats
}
