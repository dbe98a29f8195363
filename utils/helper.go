package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avsecdata/acreditaciones_backend/config"
	"github.com/bsm/redislock"
)

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// remove duplicates, keeping first-seen order
func UniqueSlice[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}
	return result
}

func DereferencePtr[T any](ptr *T, defaults ...T) T {
	if ptr != nil {
		return *ptr
	}
	if len(defaults) > 0 {
		return defaults[0]
	}
	var zero T
	return zero
}

func NilIfEmpty[T comparable](v T) *T {
	var zero T
	if v == zero {
		return nil
	}
	return &v
}

func AreIntSlicesEqual(slice1, slice2 []int) bool {
	if len(slice1) != len(slice2) {
		return false
	}
	counts := make(map[int]int, len(slice1))
	for _, v := range slice1 {
		counts[v]++
	}
	for _, v := range slice2 {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}

// ResourceLock obtains a redis lock for a shared resource and returns the
// release func. When the lock client is not initialized (no redis), a no-op
// release is returned and callers fall back to database-level atomicity.
func ResourceLock(ctx context.Context, lockType string, key string, moduleName string, functionName string) (func(), error) {
	locker := config.GetRedisLock()
	if locker == nil {
		return func() {}, nil
	}
	logger := config.GetLogger()

	lockKey := fmt.Sprintf("%s:%s", lockType, key)
	lock, err := locker.Obtain(ctx, lockKey, 30*time.Second, nil)
	if err == redislock.ErrNotObtained {
		config.LogError(logger, moduleName, functionName, "Could not obtain lock", lockKey, err)
		return nil, errors.New("could not obtain lock for " + lockKey)
	} else if err != nil {
		config.LogError(logger, moduleName, functionName, "Error obtaining lock", lockKey, err)
		return nil, err
	}

	return func() { _ = lock.Release(ctx) }, nil
}
