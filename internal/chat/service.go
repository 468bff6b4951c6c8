package chat

import (
	"context"
	"strings"

	"github.com/TechbyAbrar/match-making-app/internal/app"
	"github.com/TechbyAbrar/match-making-app/internal/cache"
	"github.com/TechbyAbrar/match-making-app/internal/db"
	errs "github.com/TechbyAbrar/match-making-app/internal/errors"
	"github.com/TechbyAbrar/match-making-app/internal/repository"
)

// Service implements direct messaging between users. Messages live in the
// DB. Per-recipient unread counters live in Redis with a 7-day TTL, and an
// absent counter reads as zero, so losing Redis loses unread badges but
// never messages.
type Service struct {
	appCtx  *app.AppContext
	threads *repository.ChatRepository
	users   *repository.UserRepository
	blocks  *repository.BlockRepository
}

// NewService creates the chat service on top of the shared AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:  appCtx,
		threads: repository.NewChatRepository(appCtx.DB),
		users:   repository.NewUserRepository(appCtx.DB),
		blocks:  repository.NewBlockRepository(appCtx.DB),
	}
}

// SendMessage delivers content from sender to recipient, creating the thread
// on first contact. Messaging yourself or someone in a block relationship
// (either direction) is rejected. The recipient's unread counter for the
// thread is bumped after the message commits.
func (s *Service) SendMessage(ctx context.Context, senderID, recipientID uint64, content string) (*db.Message, error) {
	s.appCtx.Logger.Debug("send message", "sender", senderID, "recipient", recipientID)

	if senderID == recipientID {
		return nil, errs.Conflict("you cannot message yourself")
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errs.Validation("message must not be empty")
	}
	if _, err := s.users.GetByID(ctx, recipientID); err != nil {
		return nil, errs.Map(err)
	}

	hidden, err := s.blocks.HiddenIDs(ctx, senderID)
	if err != nil {
		return nil, errs.Map(err)
	}
	for _, id := range hidden {
		if id == recipientID {
			return nil, errs.Permission("you cannot message this user")
		}
	}

	thread, err := s.threads.GetOrCreateThread(ctx, senderID, recipientID)
	if err != nil {
		return nil, errs.Map(err)
	}

	msg := &db.Message{ThreadID: thread.ID, SenderID: senderID, Content: content}
	if err := s.threads.CreateMessage(ctx, msg); err != nil {
		return nil, errs.Map(err)
	}

	s.bumpUnread(ctx, recipientID, thread.ID)
	return msg, nil
}

// bumpUnread increments the recipient's unread counter for the thread,
// seeding it at 1 with the configured TTL when absent. Counter failures are
// logged and swallowed; the message is already committed.
func (s *Service) bumpUnread(ctx context.Context, recipientID, threadID uint64) {
	key := cache.KeyForUnread(recipientID, threadID)
	_, err := s.appCtx.RedisCache.Increment(ctx, key, 1)
	if err == cache.ErrMiss {
		err = s.appCtx.RedisCache.Set(ctx, key, 1, s.appCtx.Cfg.CacheTTL.Unread)
	}
	if err != nil {
		s.appCtx.Logger.Warn("unread counter bump failed", "key", key, "err", err)
	}
}

// ListMessages returns a thread's messages in timestamp order and resets the
// caller's unread counter for it. Only participants may read.
func (s *Service) ListMessages(ctx context.Context, threadID, userID uint64) ([]db.Message, error) {
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		return nil, errs.Map(err)
	}
	if thread.UserAID != userID && thread.UserBID != userID {
		return nil, errs.Permission("you are not part of this conversation")
	}

	messages, err := s.threads.ListMessages(ctx, threadID)
	if err != nil {
		return nil, errs.Map(err)
	}

	key := cache.KeyForUnread(userID, threadID)
	if err := s.appCtx.RedisCache.Del(ctx, key); err != nil {
		s.appCtx.Logger.Warn("unread counter reset failed", "key", key, "err", err)
	}
	return messages, nil
}

// UnreadCount returns the user's unread counter for a thread. An absent
// counter, or any Redis failure, reads as zero.
func (s *Service) UnreadCount(ctx context.Context, userID, threadID uint64) int64 {
	n, err := s.appCtx.RedisCache.GetInt(ctx, cache.KeyForUnread(userID, threadID))
	if err != nil {
		if err != cache.ErrMiss {
			s.appCtx.Logger.Warn("unread counter read failed", "user", userID, "thread", threadID, "err", err)
		}
		return 0
	}
	return n
}
