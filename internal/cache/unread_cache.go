package cache

import (
	"fmt"
	"time"

	"github.com/greenkeep/greenkeep-backend/internal/models"
	"github.com/vmihailenco/msgpack/v5"
)

// UnreadCountTTL keeps unread counts fresh enough for badge display while
// absorbing bursts of polling. Writes invalidate the key anyway.
const UnreadCountTTL = 1 * time.Minute

// UnreadCache caches the per-conversation unread rows for a user. Nil-safe
// like the other caches.
type UnreadCache struct {
	redis *RedisCache
}

func NewUnreadCache(redis *RedisCache) *UnreadCache {
	return &UnreadCache{redis: redis}
}

func unreadKey(userID uint) string {
	return fmt.Sprintf("unread:%d", userID)
}

func (uc *UnreadCache) Get(userID uint) ([]models.UnreadCount, bool) {
	if uc == nil || uc.redis == nil {
		return nil, false
	}
	data, err := uc.redis.Get(unreadKey(userID))
	if err != nil || data == nil {
		return nil, false
	}
	var counts []models.UnreadCount
	if err := msgpack.Unmarshal(data, &counts); err != nil {
		return nil, false
	}
	return counts, true
}

func (uc *UnreadCache) Set(userID uint, counts []models.UnreadCount) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(counts)
	if err != nil {
		return err
	}
	return uc.redis.Set(unreadKey(userID), data, UnreadCountTTL)
}

// Invalidate drops the cached counts; called after any message or read-cursor
// mutation touching the user.
func (uc *UnreadCache) Invalidate(userID uint) error {
	if uc == nil || uc.redis == nil {
		return nil
	}
	return uc.redis.Delete(unreadKey(userID))
}
