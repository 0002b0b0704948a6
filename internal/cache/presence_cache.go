package cache

import (
	"fmt"
	"strconv"
	"time"
)

// OnlineTTL bounds how long a user stays "online" in the cache without the
// connection refreshing it. Matches the websocket ping cadence with slack.
const OnlineTTL = 90 * time.Second

// PresenceCache mirrors the hub's online set into Redis so other processes
// can answer "is this user online" cheaply. Every method is a no-op on a nil
// receiver; the app runs fine without Redis.
type PresenceCache struct {
	redis *RedisCache
}

func NewPresenceCache(redis *RedisCache) *PresenceCache {
	return &PresenceCache{redis: redis}
}

func (pc *PresenceCache) SetUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetAdd("presence:online", userID); err != nil {
		return err
	}
	return pc.redis.Set(fmt.Sprintf("presence:%d", userID), []byte("1"), OnlineTTL)
}

func (pc *PresenceCache) SetUserOffline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	if err := pc.redis.SetRemove("presence:online", userID); err != nil {
		return err
	}
	return pc.redis.Delete(fmt.Sprintf("presence:%d", userID))
}

func (pc *PresenceCache) IsUserOnline(userID uint) bool {
	if pc == nil || pc.redis == nil {
		return false
	}
	return pc.redis.Exists(fmt.Sprintf("presence:%d", userID))
}

// RefreshUserOnline extends the TTL; called from the connection's ping loop.
func (pc *PresenceCache) RefreshUserOnline(userID uint) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	return pc.redis.Set(fmt.Sprintf("presence:%d", userID), []byte("1"), OnlineTTL)
}

// OnlineUsers returns every user id in the online set.
func (pc *PresenceCache) OnlineUsers() ([]uint, error) {
	if pc == nil || pc.redis == nil {
		return nil, nil
	}
	members, err := pc.redis.SetMembers("presence:online")
	if err != nil {
		return nil, err
	}
	userIDs := make([]uint, 0, len(members))
	for _, member := range members {
		if id, err := strconv.ParseUint(member, 10, 32); err == nil {
			userIDs = append(userIDs, uint(id))
		}
	}
	return userIDs, nil
}
