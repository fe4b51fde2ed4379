package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"

	"courier-dispatch/internal/metrics"
)

type metricsOut struct {
	dig.Out

	RateLimitExceededTotal        prometheus.Counter     `name:"rate_limit_exceeded_total"`
	StoreRetriesTotal             prometheus.Counter     `name:"store_retries_total"`
	StaleLocationUpdatesTotal     prometheus.Counter     `name:"stale_location_updates_total"`
	NotificationsPublishedTotal   prometheus.Counter     `name:"notifications_published_total"`
	NotificationsPushDroppedTotal prometheus.Counter     `name:"notifications_push_dropped_total"`
	ClaimsTotal                   *prometheus.CounterVec `name:"claims_total"`
}

func provideMetrics() (metricsOut, error) {
	var (
		out metricsOut
		err error
	)
	counters := []struct {
		name string
		dst  *prometheus.Counter
		new  func() prometheus.Counter
	}{
		{"rate_limit_exceeded_total", &out.RateLimitExceededTotal, metrics.NewRateLimitExceededTotal},
		{"store_retries_total", &out.StoreRetriesTotal, metrics.NewStoreRetriesTotal},
		{"dispatch_stale_location_updates_total", &out.StaleLocationUpdatesTotal, metrics.NewStaleLocationUpdatesTotal},
		{"dispatch_notifications_published_total", &out.NotificationsPublishedTotal, metrics.NewNotificationsPublishedTotal},
		{"dispatch_notifications_push_dropped_total", &out.NotificationsPushDroppedTotal, metrics.NewNotificationsPushDroppedTotal},
	}
	for _, c := range counters {
		if *c.dst, err = register(c.name, c.new()); err != nil {
			return metricsOut{}, err
		}
	}
	if out.ClaimsTotal, err = register("dispatch_claims_total", metrics.NewClaimsTotal()); err != nil {
		return metricsOut{}, err
	}
	return out, nil
}

// register adds c to the default registerer, reusing a collector that is
// already registered under the same descriptor.
func register[T prometheus.Collector](name string, c T) (T, error) {
	if err := prometheus.DefaultRegisterer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("register %s: %w", name, err)
	}
	return c, nil
}
