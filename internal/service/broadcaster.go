package service

import "time"

// Broadcaster interface for WebSocket broadcasting (avoids import cycle)
type Broadcaster interface {
	BroadcastToHost(sessionID string, msgType string, payload interface{})
	BroadcastToPlayers(sessionID string, msgType string, payload interface{})
	DisconnectSession(sessionID string)
}

// Message types pushed over session sockets.
const (
	MsgPlayerJoined      = "player_joined"
	MsgPlayerCompleted   = "player_completed"
	MsgLeaderboardUpdate = "leaderboard_update"
	MsgSessionEnded      = "session_ended"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastToHost(string, string, interface{})    {}
func (noopBroadcaster) BroadcastToPlayers(string, string, interface{}) {}
func (noopBroadcaster) DisconnectSession(string)                       {}

func orNoop(b Broadcaster) Broadcaster {
	if b == nil {
		return noopBroadcaster{}
	}
	return b
}

// clock is embedded by services that stamp times so tests can pin "now".
type clock struct {
	now func() time.Time
}

// SetClock replaces the time source.
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

func (c *clock) current() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now().UTC()
}
