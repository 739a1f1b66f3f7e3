package server

import (
	"context"
	"time"

	"asset-inventory-backend/internal/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const IdempotencyHeader = "Idempotency-Key"

// Claimer reserves idempotency keys.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type RedisClaimer struct {
	rdb *redis.Client
}

func NewRedisClaimer(rdb *redis.Client) *RedisClaimer {
	return &RedisClaimer{rdb: rdb}
}

func (r *RedisClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return r.rdb.SetNX(ctx, key, uuid.NewString(), ttl).Result()
}

func (r *RedisClaimer) Release(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, key).Err()
}

// Idempotency rejects a POST whose Idempotency-Key was already used. A key is
// released again when its request fails so the client can retry it.
func Idempotency(claimer Claimer, ttl time.Duration, log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(IdempotencyHeader)
		if claimer == nil || key == "" || c.Method() != fiber.MethodPost {
			return c.Next()
		}

		redisKey := "idem:" + c.Path() + ":" + key
		ok, err := claimer.Claim(c.UserContext(), redisKey, ttl)
		if err != nil {
			// Redis trouble must not block writes.
			log.WithError(err).WithField("path", c.Path()).Warn("idempotency claim failed, continuing without it")
			return c.Next()
		}
		if !ok {
			return apperr.Conflict("request with Idempotency-Key %q was already submitted", key)
		}

		err = c.Next()
		if err != nil || c.Response().StatusCode() >= fiber.StatusBadRequest {
			if rerr := claimer.Release(context.Background(), redisKey); rerr != nil {
				log.WithError(rerr).Warn("idempotency key could not be released")
			}
		}
		return err
	}
}
