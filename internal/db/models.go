package db

import (
	"time"
)

// Request statuses. "interested" is a pending expression of interest,
// "ignore" permanently suppresses the target from the sender's feed.
const (
	StatusInterested = "interested"
	StatusIgnore     = "ignore"
)

// Recognized gender values (stored lowercase).
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// Default profile photos, keyed by gender, applied when a user signs up
// without one.
const (
	defaultPhotoMale   = "https://www.strasys.uk/wp-content/uploads/2022/02/Depositphotos_484354208_S.jpg"
	defaultPhotoFemale = "https://t4.ftcdn.net/jpg/02/70/22/85/360_F_270228529_iDayZ2Dl4ZeDClKl7ZnLgzN5HRIvlGlK.jpg"
	defaultPhotoOther  = "https://img.freepik.com/free-vector/user-blue-gradient_78370-4692.jpg"
)

// DefaultPhotoURL returns the fallback photo for a gender.
func DefaultPhotoURL(gender string) string {
	switch gender {
	case GenderMale:
		return defaultPhotoMale
	case GenderFemale:
		return defaultPhotoFemale
	default:
		return defaultPhotoOther
	}
}

// User table
type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	FirstName    string    `gorm:"size:64;not null;index:idx_first_last,priority:1" json:"firstName"`
	LastName     string    `gorm:"size:64;not null;index:idx_first_last,priority:2" json:"lastName"`
	Email        string    `gorm:"uniqueIndex;size:128;not null" json:"emailId"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Age          *int      `json:"age,omitempty"`
	Gender       string    `gorm:"size:16;not null" json:"gender"`
	About        string    `gorm:"type:text" json:"about"`
	PhotoURL     string    `gorm:"size:512" json:"photoURL"`
	Skills       []string  `gorm:"serializer:json;type:text" json:"skills"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ConnectionRequest represents a directional request from one user to another.
//
// Composite PK: (FromUserID, ToUserID)
//   - At most one active row per ordered pair; re-submissions overwrite
//     instead of accumulating.
//
// Indexes:
//   - idx_to_status(to_user_id, status)
//     Optimizes the "requests received" listing (status = interested).
//
// A row with status "interested" is consumed (deleted) when the pair resolves
// into a Connection. A row with status "ignore" stays forever and keeps the
// pair out of each other's feeds.
type ConnectionRequest struct {
	FromUserID uint64    `gorm:"primaryKey" json:"fromUserId"`
	ToUserID   uint64    `gorm:"primaryKey;index:idx_to_status,priority:1" json:"toUserId"`
	Status     string    `gorm:"size:16;not null;index:idx_to_status,priority:2" json:"status"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Connection is a confirmed, undirected match between two users.
//
// The pair is stored sorted (UserLoID < UserHiID) under a composite PK, so
// "no duplicate Connection for an unordered pair" is enforced by the schema:
// a racing second insert fails with a duplicate-key error instead of
// silently creating a twin row.
type Connection struct {
	UserLoID  uint64    `gorm:"primaryKey" json:"user1Id"`
	UserHiID  uint64    `gorm:"primaryKey" json:"user2Id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// NormalizePair orders two user ids for Connection storage.
func NormalizePair(a, b uint64) (lo, hi uint64) {
	if a < b {
		return a, b
	}
	return b, a
}

// Other returns the member of the pair that is not userID.
func (c Connection) Other(userID uint64) uint64 {
	if c.UserLoID == userID {
		return c.UserHiID
	}
	return c.UserLoID
}

// Message is an immutable chat message between two users.
type Message struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID   uint64    `gorm:"not null;index:idx_sender_receiver,priority:1" json:"senderId"`
	ReceiverID uint64    `gorm:"not null;index:idx_sender_receiver,priority:2" json:"receiverId"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
