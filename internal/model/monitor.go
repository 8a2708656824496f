package model

// MonitorResponse is a snapshot of websocket subscribers grouped by thread room.
type MonitorResponse struct {
	Status      string          `json:"status"` // "healthy" or "idle"
	Connections ConnectionStats `json:"connections"`
	Rooms       RoomStats       `json:"rooms"`
	Clients     []ClientInfo    `json:"clients"`
}

// ConnectionStats holds websocket connection statistics
type ConnectionStats struct {
	TotalConnected int `json:"totalConnected"` // Sockets currently registered
	DistinctUsers  int `json:"distinctUsers"`  // Users with at least one socket
}

// RoomStats holds room statistics
type RoomStats struct {
	TotalRooms  int        `json:"totalRooms"`
	RoomDetails []RoomInfo `json:"roomDetails"`
}

// RoomInfo describes subscribers of a single thread
type RoomInfo struct {
	ConnectionID string   `json:"connectionId"`
	Subscribers  int      `json:"subscribers"`
	UserIDs      []string `json:"userIds"`
}

// ClientInfo is one registered socket.
type ClientInfo struct {
	ClientID     string `json:"clientId"`
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}
