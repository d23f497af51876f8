package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/nittany-hub/course-planner/internal/application/query"
	"github.com/nittany-hub/course-planner/internal/domain/shared"
	"github.com/nittany-hub/course-planner/pkg/circuitbreaker"
	"github.com/nittany-hub/course-planner/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATION CACHE
// ══════════════════════════════════════════════════════════════════════════════

// RecommendationCache implements query.RecommendationCache over Redis.
// Results are keyed per (student, plan) so invalidating a student drops
// every plan's cached list with one pattern delete.
//
// All traffic runs through a circuit breaker: the cache is an optimization,
// and an unreachable Redis must not add its timeout to every recommendation
// request. An open circuit reads as a miss.
type RecommendationCache struct {
	cache   *Cache
	breaker *circuitbreaker.CircuitBreaker
}

// NewRecommendationCache creates a new RecommendationCache.
func NewRecommendationCache(cache *Cache) *RecommendationCache {
	log := logger.Default()
	breaker := circuitbreaker.CacheBreaker(
		func(name string, from, to circuitbreaker.State) {
			log.Warn("cache circuit state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
		// A miss is a normal outcome, not a Redis failure.
		circuitbreaker.WithIsFailure(func(err error) bool {
			return !errors.Is(err, ErrCacheMiss)
		}),
	)
	return &RecommendationCache{cache: cache, breaker: breaker}
}

func recommendationKey(studentID shared.StudentID, planID shared.PlanID) string {
	return fmt.Sprintf("%s%d:%d", PrefixRecommendation, studentID.Int64(), planID.Int64())
}

// Get returns a cached result, or a not-found error on a miss. An open
// circuit is reported as a miss so callers recompute from the store.
func (r *RecommendationCache) Get(ctx context.Context, studentID shared.StudentID, planID shared.PlanID) (*query.RecommendResult, error) {
	var result query.RecommendResult
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.cache.Get(ctx, recommendationKey(studentID, planID), &result)
	})
	if err != nil {
		if errors.Is(err, ErrCacheMiss) ||
			errors.Is(err, circuitbreaker.ErrCircuitOpen) ||
			errors.Is(err, circuitbreaker.ErrTooManyRequests) {
			return nil, shared.WrapError("redis", "GetRecommendations", shared.ErrNotFound,
				"no cached result", err)
		}
		return nil, err
	}
	return &result, nil
}

// Set stores a result with the recommendation TTL. With the circuit open
// the write is skipped; the entry simply stays cold.
func (r *RecommendationCache) Set(ctx context.Context, studentID shared.StudentID, planID shared.PlanID, result *query.RecommendResult) error {
	err := r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.cache.Set(ctx, recommendationKey(studentID, planID), result, TTLRecommendation)
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return nil
	}
	return err
}

// InvalidateStudent drops every cached result for a student. Unlike Get and
// Set this surfaces an open circuit: a skipped invalidation means stale
// results could be served once Redis returns, and the caller must know.
func (r *RecommendationCache) InvalidateStudent(ctx context.Context, studentID shared.StudentID) error {
	pattern := fmt.Sprintf("%s%d:*", PrefixRecommendation, studentID.Int64())
	return r.breaker.Execute(ctx, func(ctx context.Context) error {
		return r.cache.DeleteByPattern(ctx, pattern)
	})
}
