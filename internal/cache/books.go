package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/mkowalczyk/libreserve/internal/domain/book"
	"github.com/redis/go-redis/v9"
)

const (
	bookItemKeyPrefix = "books:item:v1:"
	bookListKey       = "books:list:v1"
)

// Books is a best-effort read-through cache for the catalog. The
// catalog is read-mostly and only admins write it, so a short TTL plus
// invalidation on write is enough. Every miss or redis error falls
// back to the store; nothing here is load-bearing.
type Books struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewBooks(rdb *redis.Client, ttl time.Duration, log *slog.Logger) *Books {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Books{rdb: rdb, ttl: ttl, log: log}
}

func (c *Books) GetBook(ctx context.Context, id string) (book.Book, bool) {
	if c == nil || c.rdb == nil {
		return book.Book{}, false
	}

	raw, err := c.rdb.Get(ctx, bookItemKeyPrefix+id).Bytes()

	if err != nil {
		if err != redis.Nil {
			c.log.DebugContext(ctx, "book cache get failed", "id", id, "err", err)
		}
		return book.Book{}, false
	}

	var b book.Book
	if err := json.Unmarshal(raw, &b); err != nil {
		return book.Book{}, false
	}

	return b, true
}

func (c *Books) SetBook(ctx context.Context, b book.Book) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(b)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, bookItemKeyPrefix+b.ID, raw, c.ttl).Err(); err != nil {
		c.log.DebugContext(ctx, "book cache set failed", "id", b.ID, "err", err)
	}
}

func (c *Books) GetList(ctx context.Context) ([]book.Book, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}

	raw, err := c.rdb.Get(ctx, bookListKey).Bytes()

	if err != nil {
		if err != redis.Nil {
			c.log.DebugContext(ctx, "book list cache get failed", "err", err)
		}
		return nil, false
	}

	var books []book.Book
	if err := json.Unmarshal(raw, &books); err != nil {
		return nil, false
	}

	return books, true
}

func (c *Books) SetList(ctx context.Context, books []book.Book) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(books)
	if err != nil {
		return
	}

	if err := c.rdb.Set(ctx, bookListKey, raw, c.ttl).Err(); err != nil {
		c.log.DebugContext(ctx, "book list cache set failed", "err", err)
	}
}

// Invalidate drops the list and, when id is non-empty, the single
// item. Called after every admin write to the catalog.
func (c *Books) Invalidate(ctx context.Context, id string) {
	if c == nil || c.rdb == nil {
		return
	}

	keys := []string{bookListKey}
	if id != "" {
		keys = append(keys, bookItemKeyPrefix+id)
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.DebugContext(ctx, "book cache invalidate failed", "err", err)
	}
}
