package config

import "time"

const (
	defaultPort     = 8080
	defaultLogLevel = "info"
)

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultKafka = Kafka{
	Group:       "service-dispatch",
	OrdersTopic: "orders",
	EventsTopic: "dispatch-events",
}

var defaultDispatch = Dispatch{
	RadiusMeters:     5000,
	LocationTTL:      2 * time.Minute,
	RecheckInterval:  5 * time.Second,
	NotifyBuffer:     64,
	OperationTimeout: 3 * time.Second,
}

var defaultStoreRetry = StoreRetry{
	MaxAttempts: 4,
	BaseDelay:   150 * time.Millisecond,
	MaxDelay:    time.Second,
}

var defaultRateLimit = RateLimit{
	Limit:        20,
	ServiceLimit: 200,
	Window:       time.Second,
	TTL:          10 * time.Minute,
	MaxBuckets:   100_000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultDispatch returns the default matching settings.
func DefaultDispatch() Dispatch {
	return defaultDispatch
}

// DefaultStoreRetry returns the default store retry settings.
func DefaultStoreRetry() StoreRetry {
	return defaultStoreRetry
}

// DefaultRateLimit returns the default rate limit.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
