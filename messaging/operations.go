package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quillforge/core/corerr"
	"github.com/quillforge/core/principal"
)

// Send encrypts plaintext and appends it to roomID's log, per spec §4.9's
// send(principal, room_id, plaintext) → RoomMessage.
func (s *Store) Send(ctx context.Context, p principal.Principal, roomID, plaintext string) (*RoomMessage, error) {
	rs, err := s.lookupRoom(roomID, p)
	if err != nil {
		return nil, err
	}

	key, err := s.sealer.KeyForRoom(roomID)
	if err != nil {
		return nil, corerr.Wrap(corerr.Transient, err, "derive key for room %s", roomID)
	}
	ciphertext, nonce, err := seal(key, plaintext)
	if err != nil {
		return nil, err
	}

	msg := &RoomMessage{
		MessageID:  uuid.NewString(),
		RoomID:     roomID,
		SenderID:   p.UserID,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		CreatedAt:  time.Now(),
		Reactions:  make(map[string][]string),
	}

	rs.mu.Lock()
	rs.messages = append(rs.messages, msg)
	rs.mu.Unlock()

	return msg, nil
}

// DecryptedMessage is a RoomMessage with its plaintext recovered, returned
// only from read paths — never persisted.
type DecryptedMessage struct {
	MessageID string
	RoomID    string
	SenderID  string
	Content   string
	CreatedAt time.Time
	Reactions map[string][]string
}

// History returns up to limit messages in roomID older than before (or the
// most recent limit if before is nil), newest first, decrypted on read per
// spec §4.9.
func (s *Store) History(ctx context.Context, p principal.Principal, roomID string, before *time.Time, limit int) ([]DecryptedMessage, error) {
	rs, err := s.lookupRoom(roomID, p)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	key, err := s.sealer.KeyForRoom(roomID)
	if err != nil {
		return nil, corerr.Wrap(corerr.Transient, err, "derive key for room %s", roomID)
	}

	rs.mu.Lock()
	all := append([]*RoomMessage{}, rs.messages...)
	rs.mu.Unlock()

	out := make([]DecryptedMessage, 0, limit)
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		m := all[i]
		if before != nil && !m.CreatedAt.Before(*before) {
			continue
		}
		plaintext, err := unseal(key, m.Ciphertext, m.Nonce)
		if err != nil {
			return nil, err
		}
		out = append(out, DecryptedMessage{
			MessageID: m.MessageID,
			RoomID:    m.RoomID,
			SenderID:  m.SenderID,
			Content:   plaintext,
			CreatedAt: m.CreatedAt,
			Reactions: m.Reactions,
		})
	}
	return out, nil
}

// MarkRead advances p's read cursor in roomID to messageID, per spec
// §4.9's mark_read(principal, room_id, message_id).
func (s *Store) MarkRead(ctx context.Context, p principal.Principal, roomID, messageID string) error {
	rs, err := s.lookupRoom(roomID, p)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.markers[p.UserID] = &ReadMarker{RoomID: roomID, UserID: p.UserID, LastReadMessage: messageID}
	return nil
}

// UnreadCount reports how many messages in roomID follow p's last read
// cursor, comparing against the room's latest message at read time — the
// same cursor approach as the original's get_unread_counts, with no
// separate counter table.
func (s *Store) UnreadCount(ctx context.Context, p principal.Principal, roomID string) (int, error) {
	rs, err := s.lookupRoom(roomID, p)
	if err != nil {
		return 0, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	marker, hasMarker := rs.markers[p.UserID]
	if !hasMarker {
		return len(rs.messages), nil
	}
	count := 0
	seenCursor := false
	for _, m := range rs.messages {
		if seenCursor {
			count++
			continue
		}
		if m.MessageID == marker.LastReadMessage {
			seenCursor = true
		}
	}
	if !seenCursor {
		return len(rs.messages), nil
	}
	return count, nil
}

// React adds emoji as p's reaction to messageID, per spec §4.9's
// react(principal, room_id, message_id, emoji).
func (s *Store) React(ctx context.Context, p principal.Principal, roomID, messageID, emoji string) error {
	rs, err := s.lookupRoom(roomID, p)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, m := range rs.messages {
		if m.MessageID != messageID {
			continue
		}
		for _, uid := range m.Reactions[emoji] {
			if uid == p.UserID {
				return nil // idempotent: already reacted with this emoji
			}
		}
		m.Reactions[emoji] = append(m.Reactions[emoji], p.UserID)
		return nil
	}
	return corerr.New(corerr.NotFound, "message "+messageID, nil)
}

// Heartbeat refreshes p's presence to online, per spec §4.9's
// heartbeat(principal).
func (s *Store) Heartbeat(ctx context.Context, p principal.Principal) {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	s.presence[p.UserID] = &Presence{UserID: p.UserID, LastSeenAt: time.Now(), Status: StatusOnline}
}

// GetPresence returns userID's last-known presence, per spec §4.9's
// presence(user_id) → Presence.
func (s *Store) GetPresence(userID string) (Presence, bool) {
	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()
	p, ok := s.presence[userID]
	if !ok {
		return Presence{}, false
	}
	return *p, true
}

// StaleOnlineUsers implements pipeline.PresenceRepository: it reports every
// user whose last heartbeat is older than offlineThreshold and who is not
// already marked offline.
func (s *Store) StaleOnlineUsers(ctx context.Context, offlineThreshold time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-offlineThreshold)

	s.presenceMu.RLock()
	defer s.presenceMu.RUnlock()

	var stale []string
	for userID, p := range s.presence {
		if p.Status != StatusOffline && p.LastSeenAt.Before(cutoff) {
			stale = append(stale, userID)
		}
	}
	return stale, nil
}

// MarkOffline implements pipeline.PresenceRepository: it flips userID's
// presence status to offline.
func (s *Store) MarkOffline(ctx context.Context, userID string) error {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	p, ok := s.presence[userID]
	if !ok {
		return nil
	}
	p.Status = StatusOffline
	return nil
}
