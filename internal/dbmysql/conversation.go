package dbmysql

import (
	"sort"
	"strings"
	"time"
)

// Conversation groups 2+ participants exchanging messages. MemberKey is the
// canonical identity of the participant set: member ids deduplicated, sorted
// lexicographically and joined with ",". The unique index on it guarantees at
// most one conversation per participant set even under concurrent creates.
type Conversation struct {
	ID        string `gorm:"primaryKey;size:36"`
	MemberKey string `gorm:"uniqueIndex;size:512;not null"`
	CreatedAt time.Time

	// Denormalized preview of the most recent message, patched in the same
	// transaction as each send.
	LastMessageAt       *time.Time `gorm:"index"`
	LastMessageText     *string    `gorm:"type:text"`
	LastMessageSenderID *string    `gorm:"size:36"`
}

// MemberIDs splits the canonical key back into participant ids.
func (c *Conversation) MemberIDs() []string {
	if c.MemberKey == "" {
		return nil
	}
	return strings.Split(c.MemberKey, ",")
}

// HasMember reports whether userID is a current participant.
func (c *Conversation) HasMember(userID string) bool {
	for _, id := range c.MemberIDs() {
		if id == userID {
			return true
		}
	}
	return false
}

// CanonicalMembers reduces a participant list to its canonical form: blanks
// dropped, duplicates collapsed, ids sorted lexicographically. Any permutation
// of the same set canonicalizes to the same sequence.
func CanonicalMembers(memberIDs []string) []string {
	seen := make(map[string]bool, len(memberIDs))
	canonical := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		canonical = append(canonical, id)
	}
	sort.Strings(canonical)
	return canonical
}

// MemberKey is the stored lookup key for a canonical member sequence.
func MemberKey(memberIDs []string) string {
	return strings.Join(memberIDs, ",")
}

// ConversationMember is the reverse index from user to conversation, so that
// listing a user's conversations never scans the whole conversations table.
type ConversationMember struct {
	ConversationID string `gorm:"primaryKey;size:36"`
	UserID         string `gorm:"primaryKey;index;size:36"`
	JoinedAt       time.Time
}
