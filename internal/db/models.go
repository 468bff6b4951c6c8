package db

import (
	"time"
)

// User table. Latitude/Longitude/Distance are nullable: a user without a
// location can still be listed, but cannot be ranked by proximity.
// Invariant: IsOnline=true implies LastActivity was within the offline
// cutoff when it was last set.
type User struct {
	ID           uint64  `gorm:"primaryKey;autoIncrement"`
	Username     string  `gorm:"index;size:64"`
	FullName     string  `gorm:"size:128"`
	Email        string  `gorm:"uniqueIndex;size:128;not null"`
	PasswordHash string  `gorm:"size:255;not null"`
	Gender       string  `gorm:"size:16"`
	DOB          *time.Time
	Latitude     *float64
	Longitude    *float64
	Distance     *float64 // preferred search radius in km
	Active       bool     `gorm:"default:true;index"`
	Staff        bool     `gorm:"default:false"`
	IsOnline     bool     `gorm:"default:false;index:idx_users_online_activity,priority:1"`
	LastActivity *time.Time `gorm:"index:idx_users_online_activity,priority:2"`
	CreatedAt    time.Time  `gorm:"autoCreateTime;index"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime"`
}

// Like is a directed edge from one user to another.
//
// Composite PK (FromUserID, ToUserID) allows at most one like per ordered
// pair, so "who liked me" deduplication is structural. Self-loops are
// rejected in the service layer. Rows are only ever created or deleted.
//
// idx_likes_to_created(to_user_id, created_at DESC) serves the
// who-liked-me retrieval.
type Like struct {
	FromUserID uint64    `gorm:"primaryKey"`
	ToUserID   uint64    `gorm:"primaryKey;index:idx_likes_to_created,priority:1"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_likes_to_created,priority:2,sort:desc"`
}

// UserBlock hides two users from each other's feeds.
type UserBlock struct {
	BlockerID uint64    `gorm:"primaryKey"`
	BlockedID uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ProfileShare records one user sharing another's profile. At most one row
// per ordered pair; sharing again is a no-op.
type ProfileShare struct {
	SharerID  uint64    `gorm:"primaryKey"`
	SharedID  uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// Report is a user-submitted complaint about another profile.
type Report struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	ReporterID uint64 `gorm:"index:idx_reports_pair,priority:1"`
	ReportedID uint64 `gorm:"index:idx_reports_pair,priority:2;index:idx_reports_reported_created,priority:1"`
	Reason     string `gorm:"size:50;not null"`
	Comment    string `gorm:"type:text"`
	Resolved   bool   `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index:idx_reports_reported_created,priority:2"`
}

// Story is an ephemeral post that expires 24h after creation.
// View counts live in Redis while the story is active; ViewCount is the
// denormalized snapshot.
type Story struct {
	ID         string `gorm:"type:char(36);primaryKey"`
	UserID     uint64 `gorm:"index:idx_stories_user_expires,priority:1;not null"`
	Text       string `gorm:"type:text"`
	MediaURL   string `gorm:"size:255"`
	ViewCount  uint64 `gorm:"default:0"`
	LikesCount uint64 `gorm:"default:0"`
	IsDeleted  bool   `gorm:"default:false"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index"`
	ExpiresAt  time.Time `gorm:"index:idx_stories_user_expires,priority:2;not null"`
}

// StoryLike is unique per (story, user); duplicates surface as conflicts.
type StoryLike struct {
	StoryID   string    `gorm:"type:char(36);primaryKey"`
	UserID    uint64    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// ProfilePopImage is an auxiliary profile image (max 7 per user). The feed
// shows each user's most recently updated one.
type ProfilePopImage struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"index:idx_pop_user_updated,priority:1;not null"`
	URL       string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index:idx_pop_user_updated,priority:2,sort:desc"`
}

// ChatThread is a direct conversation between two users.
type ChatThread struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserAID   uint64    `gorm:"index:idx_threads_pair,priority:1;not null"`
	UserBID   uint64    `gorm:"index:idx_threads_pair,priority:2;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;index"`
}

// Message belongs to a thread. Ordering is timestamp sort only.
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	ThreadID  uint64    `gorm:"index:idx_messages_thread_created,priority:1;not null"`
	SenderID  uint64    `gorm:"not null"`
	Content   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_messages_thread_created,priority:2"`
}

// Notification is written by the outbox dispatch after a like/block/report
// commits.
type Notification struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	RecipientID uint64  `gorm:"index:idx_notifications_recipient_created,priority:1;not null"`
	SenderID    *uint64
	Type        string `gorm:"size:32;not null"`
	Message     string `gorm:"size:255"`
	IsRead      bool   `gorm:"default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime;index:idx_notifications_recipient_created,priority:2,sort:desc"`
}
