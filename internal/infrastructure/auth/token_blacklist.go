package auth

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist revokes tokens before they expire, on logout or when a
// user's rights change.
type TokenBlacklist interface {
	// AddToBlacklist revokes one token by JTI; ttl is its remaining lifetime
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error

	// IsBlacklisted checks if a token's JTI is revoked
	IsBlacklisted(ctx context.Context, jti string) (bool, error)

	// AddUserTokensToBlacklist revokes every token issued to the user up to now
	AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error

	// IsUserTokenInvalidated reports whether a token issued at tokenIssuedAt
	// predates the user's revocation
	IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error)

	Close() error
}

const blacklistPrefix = "storefront:blacklist:"

// RedisTokenBlacklist implements TokenBlacklist on a shared Redis client
type RedisTokenBlacklist struct {
	client redis.UniversalClient
}

// NewRedisTokenBlacklist creates a blacklist on an existing client
func NewRedisTokenBlacklist(client redis.UniversalClient) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{client: client}
}

func jtiKey(jti string) string     { return blacklistPrefix + "jti:" + jti }
func userKey(userID string) string { return blacklistPrefix + "user:" + userID }

// AddToBlacklist stores the JTI with a TTL
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks for the JTI key
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return n > 0, nil
}

// AddUserTokensToBlacklist stores the revocation time for the user
func (b *RedisTokenBlacklist) AddUserTokensToBlacklist(ctx context.Context, userID string, ttl time.Duration) error {
	if err := b.client.Set(ctx, userKey(userID), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserTokenInvalidated compares the token's issue time to the stored revocation time
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	raw, err := b.client.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}

	revokedAt, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false, fmt.Errorf("failed to parse invalidation timestamp: %w", err)
	}
	return tokenIssuedAt.Unix() <= revokedAt, nil
}

// Close is a no-op; the shared client is closed by its owner
func (b *RedisTokenBlacklist) Close() error {
	return nil
}

// Ensure RedisTokenBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps revocations in process memory. It is used when
// Redis is disabled and in tests; revocations are not shared between instances.
type InMemoryTokenBlacklist struct {
	mu        sync.RWMutex
	jtis      map[string]time.Time // JTI -> expiry
	users     map[string]time.Time // userID -> revocation time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTokenBlacklist creates the blacklist and starts a sweeper for expired JTIs
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	b := &InMemoryTokenBlacklist{
		jtis:  make(map[string]time.Time),
		users: make(map[string]time.Time),
		stop:  make(chan struct{}),
	}
	b.wg.Add(1)
	go b.sweep(time.Minute)
	return b
}

// AddToBlacklist records the JTI until ttl elapses
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

// IsBlacklisted checks the JTI against unexpired entries
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	exp, ok := b.jtis[jti]
	return ok && time.Now().Before(exp), nil
}

// AddUserTokensToBlacklist records now as the user's revocation time
func (b *InMemoryTokenBlacklist) AddUserTokensToBlacklist(_ context.Context, userID string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[userID] = time.Now()
	return nil
}

// IsUserTokenInvalidated compares at nanosecond precision
func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID string, tokenIssuedAt time.Time) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	revokedAt, ok := b.users[userID]
	if !ok {
		return false, nil
	}
	return !tokenIssuedAt.After(revokedAt), nil
}

// Close stops the sweeper
func (b *InMemoryTokenBlacklist) Close() error {
	b.closeOnce.Do(func() {
		close(b.stop)
		b.wg.Wait()
	})
	return nil
}

func (b *InMemoryTokenBlacklist) sweep(interval time.Duration) {
	defer b.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-b.stop:
			return
		case now := <-ticker.C:
			b.mu.Lock()
			for jti, exp := range b.jtis {
				if !now.Before(exp) {
					delete(b.jtis, jti)
				}
			}
			b.mu.Unlock()
		}
	}
}

// Ensure InMemoryTokenBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
