package model

import (
	"fmt"
	"time"
)

// QueueKey scopes one FIFO waiting list to a (game type, mode) pair
type QueueKey struct {
	GameType GameType
	Mode     GameMode
}

// String renders the key in the form used for storage keys and logs
func (k QueueKey) String() string {
	return fmt.Sprintf("%s:%s", k.GameType, k.Mode)
}

// ConnectionID identifies the transport connection a queue entry belongs to
type ConnectionID string

// QueueEntry is one player waiting to be paired. It is owned by the match
// queue while unmatched and removed exactly once, by pairing or by leave.
type QueueEntry struct {
	PlayerID     PlayerID
	ConnectionID ConnectionID
	GameType     GameType
	Mode         GameMode
	JoinedAt     time.Time
}

// Key returns the queue key this entry belongs to
func (e QueueEntry) Key() QueueKey {
	return QueueKey{GameType: e.GameType, Mode: e.Mode}
}
