// Package cache is a Redis-backed response cache for public read endpoints.
// Entries are keyed by group generation, path and canonical query string.
// Invalidating a group bumps its generation, so entries written by requests
// that started before the bump are never served again.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	GroupTutors = "tutors"
	GroupJobs   = "jobs"
)

const keyPrefix = "teacheron:cache:"

type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// New returns a cache; a nil client yields a cache that never hits.
func New(client *redis.Client, ttl time.Duration, logger *slog.Logger) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl, logger: logger}
}

func (rc *ResponseCache) enabled() bool {
	return rc != nil && rc.client != nil
}

func (rc *ResponseCache) Key(group string, generation int64, path, rawQuery string) string {
	prefix := keyPrefix + group + ":" + strconv.FormatInt(generation, 10) + ":" + path + "?"
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return prefix + rawQuery
	}
	return prefix + values.Encode()
}

func generationKey(group string) string {
	return keyPrefix + group + ":generation"
}

// generation returns the current generation of group; zero until the first
// invalidation.
func (rc *ResponseCache) generation(ctx context.Context, group string) (int64, error) {
	n, err := rc.client.Get(ctx, generationKey(group)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Middleware serves cached 200 responses for GET requests in group.
func (rc *ResponseCache) Middleware(group string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !rc.enabled() || c.Method() != fiber.MethodGet {
			return c.Next()
		}

		ctx := c.UserContext()
		gen, err := rc.generation(ctx, group)
		if err != nil {
			rc.logger.Warn("cache generation read failed", "group", group, "error", err)
			return c.Next()
		}
		key := rc.Key(group, gen, c.Path(), string(c.Request().URI().QueryString()))

		data, err := rc.client.Get(ctx, key).Bytes()
		if err == nil {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.Send(data)
		}
		if !errors.Is(err, redis.Nil) {
			rc.logger.Warn("cache read failed", "group", group, "error", err)
		}

		if err := c.Next(); err != nil {
			return err
		}

		c.Set("X-Cache", "MISS")
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		if err := rc.client.Set(ctx, key, body, rc.ttl).Err(); err != nil {
			rc.logger.Warn("cache write failed", "group", group, "error", err)
		}
		return nil
	}
}

// Invalidate moves each group to a new generation. Older entries are left to
// expire with their TTL.
func (rc *ResponseCache) Invalidate(ctx context.Context, groups ...string) error {
	if !rc.enabled() {
		return nil
	}
	for _, group := range groups {
		if err := rc.client.Incr(ctx, generationKey(group)).Err(); err != nil {
			return fmt.Errorf("invalidate %s: %w", group, err)
		}
	}
	return nil
}
