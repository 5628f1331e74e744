package config

import "time"

const defaultPort = 8080

var defaultBackend = Backend{
	BaseURL: "http://localhost:5055/api",
	Timeout: 30 * time.Second,
	Retry: Retry{
		MaxAttempts: 3,
		BaseDelay:   200 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	},
}

var defaultSession = Session{
	Store:     SessionStoreSQLite,
	DBPath:    "driver-session.db",
	RedisAddr: "127.0.0.1:6379",
	RedisKey:  "driver:session",
}

var defaultKafka = Kafka{
	Topic:   "driver.workflow.events",
	GroupID: "driver-workflow-journal",
}

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultLocation = Location{
	Enabled:         true,
	Interval:        5 * time.Minute,
	MinSendInterval: 5 * time.Minute,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       2,
	Burst:      1,
	TTL:        10 * time.Minute,
	MaxBuckets: 10000,
}

var defaultJournal = Journal{
	Retention:        30 * 24 * time.Hour,
	PurgeInterval:    time.Hour,
	OperationTimeout: 3 * time.Second,
	MetricsAddr:      ":9102",
}

var defaultLog = Log{Level: "info", Format: "json"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:      defaultPort,
		Backend:   defaultBackend,
		Session:   defaultSession,
		Kafka:     defaultKafka,
		DB:        defaultDB,
		Location:  defaultLocation,
		RateLimit: defaultRateLimit,
		Journal:   defaultJournal,
		Log:       defaultLog,
	}
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultBackend returns the default backend client settings.
func DefaultBackend() Backend {
	return defaultBackend
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}
