// Package observability holds Prometheus collectors and OpenTelemetry
// tracing setup shared by the HTTP layer and the storage packages.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PostsCreated counts successfully created posts.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_posts_created_total",
		Help: "Total number of posts created",
	})

	// CommentsCreated counts successfully added comments.
	CommentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "yatube_comments_created_total",
		Help: "Total number of comments created",
	})

	// FollowMutations counts follow edge changes by action ("follow", "unfollow").
	FollowMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_follow_mutations_total",
		Help: "Total number of follow and unfollow operations that changed state",
	}, []string{"action"})

	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yatube_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"op"})
)

// RecordFollow increments the follow mutation counter for action.
func RecordFollow(action string) {
	FollowMutations.WithLabelValues(action).Inc()
}

// RecordRedisError increments the Redis error counter for op.
func RecordRedisError(op string) {
	RedisErrors.WithLabelValues(op).Inc()
}
