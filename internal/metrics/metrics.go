package metrics

import "github.com/prometheus/client_golang/prometheus"

// NewRateLimitExceededTotal returns a Prometheus counter for the number of rejected HTTP requests due to rate limiting
func NewRateLimitExceededTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rate_limit_exceeded_total",
		Help: "Total number of rejected HTTP requests due to rate limiting",
	})
}

// NewStoreRetriesTotal returns a Prometheus counter for retried store reads
func NewStoreRetriesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_retries_total",
		Help: "Total number of retry attempts performed against the order store",
	})
}

// NewClaimsTotal returns a counter of claim attempts partitioned by outcome
func NewClaimsTotal() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_claims_total",
		Help: "Total number of resolved claim attempts by outcome",
	}, []string{"outcome"})
}

// NewStaleLocationUpdatesTotal returns a counter of dropped out-of-order location updates
func NewStaleLocationUpdatesTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_stale_location_updates_total",
		Help: "Total number of location updates dropped as older than the recorded one",
	})
}

// NewNotificationsPublishedTotal returns a counter of persisted notification events
func NewNotificationsPublishedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_notifications_published_total",
		Help: "Total number of notification events persisted",
	})
}

// NewNotificationsPushDroppedTotal returns a counter of live pushes skipped because a subscriber lagged
func NewNotificationsPushDroppedTotal() prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_notifications_push_dropped_total",
		Help: "Total number of live pushes dropped for slow subscribers; events stay available for polling",
	})
}
