package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"taskdeck-api/domain"
)

// boardGenKey holds a generation counter bumped on every write. Cached board
// keys embed the generation, so one INCR invalidates every project's board at
// once without key scans; superseded entries age out via TTL.
const boardGenKey = "board:gen"

// Cache wraps a Store with Redis-backed caching for board reads. Cache
// failures degrade to the underlying store; staleness after a missed
// invalidation is bounded by the TTL.
type Cache struct {
	domain.Store
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a caching wrapper using the provided Redis client and TTL.
func NewCache(base domain.Store, client *redis.Client, ttl time.Duration) *Cache {
	if base == nil {
		panic("storage.NewCache: base store is nil")
	}
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Cache{Store: base, redis: client, ttl: ttl}
}

func (c *Cache) Board(ctx context.Context, projectID string) ([]domain.BoardSection, error) {
	key, keyed := c.boardKey(ctx, projectID)
	if keyed {
		if board, ok := c.loadBoard(ctx, key); ok {
			return board, nil
		}
	}

	board, err := c.Store.Board(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if keyed {
		c.storeBoard(ctx, key, board)
	}
	return board, nil
}

func (c *Cache) InsertProject(ctx context.Context, p domain.Project) error {
	if err := c.Store.InsertProject(ctx, p); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *Cache) InsertSection(ctx context.Context, s domain.Section) error {
	if err := c.Store.InsertSection(ctx, s); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *Cache) InsertTask(ctx context.Context, t domain.Task) error {
	if err := c.Store.InsertTask(ctx, t); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *Cache) UpdateTask(ctx context.Context, t domain.Task) error {
	if err := c.Store.UpdateTask(ctx, t); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *Cache) DeleteTask(ctx context.Context, id string) error {
	if err := c.Store.DeleteTask(ctx, id); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

// Transact hands fn the raw transactional store; the generation bump happens
// once after a successful commit.
func (c *Cache) Transact(ctx context.Context, fn func(tx domain.Store) error) error {
	if err := c.Store.Transact(ctx, fn); err != nil {
		return err
	}
	c.bump(ctx)
	return nil
}

func (c *Cache) boardKey(ctx context.Context, projectID string) (string, bool) {
	gen, err := c.redis.Get(ctx, boardGenKey).Int64()
	if err != nil && err != redis.Nil {
		return "", false
	}
	return fmt.Sprintf("board:%d:%s", gen, projectID), true
}

func (c *Cache) loadBoard(ctx context.Context, key string) ([]domain.BoardSection, bool) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var board []domain.BoardSection
	if err := json.Unmarshal(data, &board); err != nil {
		return nil, false
	}
	return board, true
}

func (c *Cache) storeBoard(ctx context.Context, key string, board []domain.BoardSection) {
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	c.redis.Set(ctx, key, data, c.ttl)
}

func (c *Cache) bump(ctx context.Context) {
	c.redis.Incr(ctx, boardGenKey)
}
