package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/TechbyAbrar/match-making-app/internal/db"
)

// ChatRepository provides data access for direct-message threads.
type ChatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new repository bound to the given DB connection.
func NewChatRepository(database *gorm.DB) *ChatRepository {
	return &ChatRepository{db: database}
}

// GetOrCreateThread finds the thread between two users regardless of
// direction, creating it when absent.
func (r *ChatRepository) GetOrCreateThread(ctx context.Context, userA, userB uint64) (*db.ChatThread, error) {
	var thread db.ChatThread
	err := r.db.WithContext(ctx).
		Where("(user_a_id = ? AND user_b_id = ?) OR (user_a_id = ? AND user_b_id = ?)",
			userA, userB, userB, userA).
		First(&thread).Error
	if err == nil {
		return &thread, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	thread = db.ChatThread{UserAID: userA, UserBID: userB}
	if err := r.db.WithContext(ctx).Create(&thread).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *ChatRepository) GetThread(ctx context.Context, threadID uint64) (*db.ChatThread, error) {
	var thread db.ChatThread
	if err := r.db.WithContext(ctx).First(&thread, threadID).Error; err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *ChatRepository) CreateMessage(ctx context.Context, msg *db.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&db.ChatThread{}).
			Where("id = ?", msg.ThreadID).
			Update("updated_at", msg.CreatedAt).Error
	})
}

// ListMessages returns a thread's messages in timestamp order.
func (r *ChatRepository) ListMessages(ctx context.Context, threadID uint64) ([]db.Message, error) {
	var messages []db.Message
	err := r.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}
