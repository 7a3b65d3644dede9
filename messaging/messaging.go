// Package messaging implements the Messaging & Presence Core (spec §4.9):
// a per-room append-only message log with at-rest encryption, unread
// tracking, and presence heartbeats. It is an independent subsystem that
// reuses memory's per-resource locking and principal's access-control
// pattern (A and B's patterns, per spec.md), grounded on
// original_source/backend/services/messaging/messaging_service.py's
// create_room/send_message/add_reaction/presence surface.
package messaging

import (
	"sync"
	"time"

	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/principal"
)

// Room is a chat room: a fixed set of participants sharing one message log.
type Room struct {
	RoomID         string
	ParticipantIDs []string
	CreatedAt      time.Time
}

// RoomMessage is one encrypted, persisted message.
type RoomMessage struct {
	MessageID string
	RoomID    string
	SenderID  string
	Ciphertext []byte
	Nonce     [24]byte
	CreatedAt time.Time
	Reactions map[string][]string // emoji -> user_id list
}

// ReadMarker is one user's read cursor within a room.
type ReadMarker struct {
	RoomID          string
	UserID          string
	LastReadMessage string
}

// PresenceStatus is one of Presence.Status's closed set.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
	StatusAway    PresenceStatus = "away"
)

// Presence is one user's last-known online status.
type Presence struct {
	UserID        string
	LastSeenAt    time.Time
	Status        PresenceStatus
	StatusMessage string
}

type roomState struct {
	mu        sync.Mutex
	room      Room
	messages  []*RoomMessage
	markers   map[string]*ReadMarker
}

func (r *roomState) isParticipant(userID string) bool {
	for _, id := range r.room.ParticipantIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Store is the in-process Messaging & Presence Core: one roomState per
// room.room_id, guarded independently, plus a single presence map guarded
// by its own mutex (per spec §5's "one logical lock per resource"
// discipline).
type Store struct {
	sealer KeyDeriver

	roomsMu sync.RWMutex
	rooms   map[string]*roomState

	presenceMu sync.RWMutex
	presence   map[string]*Presence
}

// New creates a Store that seals message plaintext with sealer.
func New(sealer KeyDeriver) *Store {
	return &Store{
		sealer:   sealer,
		rooms:    make(map[string]*roomState),
		presence: make(map[string]*Presence),
	}
}

// CreateRoom registers a new room with the given participants.
func (s *Store) CreateRoom(roomID string, participantIDs []string, now time.Time) *Room {
	s.roomsMu.Lock()
	defer s.roomsMu.Unlock()

	room := Room{RoomID: roomID, ParticipantIDs: append([]string{}, participantIDs...), CreatedAt: now}
	s.rooms[roomID] = &roomState{room: room, markers: make(map[string]*ReadMarker)}
	return &room
}

func (s *Store) lookupRoom(roomID string, p principal.Principal) (*roomState, error) {
	s.roomsMu.RLock()
	rs, ok := s.rooms[roomID]
	s.roomsMu.RUnlock()

	if !ok {
		return nil, corerr.New(corerr.NotFound, "room "+roomID, nil)
	}
	rs.mu.Lock()
	member := rs.isParticipant(p.UserID)
	rs.mu.Unlock()
	if !p.IsAdmin() && !member {
		return nil, corerr.New(corerr.AccessDenied, "room "+roomID, nil)
	}
	return rs, nil
}
