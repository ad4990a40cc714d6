package cache

import (
	"context"
	"fmt"
	"time"
)

// CallbackSeen reports whether a callback delivery fingerprint was already
// settled. With redis disabled every delivery reports unseen and the database
// state machine alone absorbs repeats.
func CallbackSeen(ctx context.Context, method, fingerprint string) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	n, err := redisClient.Exists(ctx, callbackKey(method, fingerprint)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkCallbackProcessed records a settled callback delivery keyed by the
// gateway's delivery fingerprint. Must be called only after the state
// transition commits; marking earlier would let a failed apply swallow the
// gateway's redelivery.
func MarkCallbackProcessed(ctx context.Context, method, fingerprint string, ttl time.Duration) error {
	if !Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return redisClient.Set(ctx, callbackKey(method, fingerprint), 1, ttl).Err()
}

func callbackKey(method, fingerprint string) string {
	return buildKey(fmt.Sprintf("callback:%s:%s", method, fingerprint))
}
