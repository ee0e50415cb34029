package config

import "time"

// HTTP captures HTTP server level configuration.
type HTTP struct {
	Addr              string        `koanf:"addr" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	ReadTimeout       time.Duration `koanf:"read_timeout"`
	WriteTimeout      time.Duration `koanf:"write_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
}

// Log selects the log level and output. File enables a rotating log file next
// to stdout.
type Log struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	Format     string `koanf:"format" validate:"oneof=json text"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `koanf:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"gte=0"`
}

// Auth controls how the acting user is resolved for each request.
//
//   - header: the user name is read from Header (default "user-name")
//   - jwt: a bearer token signed with JWTSigningKey carries the user name
type Auth struct {
	Mode          string `koanf:"mode" validate:"oneof=header jwt"`
	Header        string `koanf:"header" validate:"required"`
	JWTSigningKey string `koanf:"jwt_signing_key" validate:"required_if=Mode jwt"`
	JWTClaim      string `koanf:"jwt_claim"`
}

// Store selects the record store backend.
type Store struct {
	Driver          string        `koanf:"driver" validate:"oneof=memory postgres sqlite"`
	DSN             string        `koanf:"dsn" validate:"required_unless=Driver memory"`
	Migrate         bool          `koanf:"migrate"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Redis configures the optional read-through cache. An empty URL disables it.
type Redis struct {
	URL          string        `koanf:"url"`
	TTL          time.Duration `koanf:"ttl"`
	PoolSize     int           `koanf:"pool_size" validate:"gte=0"`
	MinIdleConns int           `koanf:"min_idle_conns" validate:"gte=0"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// Kafka configures the audit sink. With no brokers audit events are only logged.
type Kafka struct {
	Brokers     []string `koanf:"brokers"`
	Topic       string   `koanf:"topic" validate:"required_with=Brokers"`
	ClientID    string   `koanf:"client_id"`
	Partitions  int32    `koanf:"partitions" validate:"gte=0"`
	Replication int16    `koanf:"replication" validate:"gte=0"`
	AsyncBuffer int      `koanf:"async_buffer" validate:"gte=0"`
}

// Enabled reports whether a Kafka audit sink should be built.
func (k Kafka) Enabled() bool {
	return len(k.Brokers) > 0
}

// Metrics toggles the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// Config is the full process configuration.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	Log     Log     `koanf:"log"`
	Auth    Auth    `koanf:"auth"`
	Store   Store   `koanf:"store"`
	Redis   Redis   `koanf:"redis"`
	Kafka   Kafka   `koanf:"kafka"`
	Metrics Metrics `koanf:"metrics"`
}

// Default returns the configuration used when nothing overrides it: an
// in-memory store, header actors and no cache or Kafka.
func Default() Config {
	return Config{
		HTTP: HTTP{
			Addr:              ":8080",
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			RequestTimeout:    30 * time.Second,
		},
		Log: Log{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 7,
			MaxAgeDays: 14,
		},
		Auth: Auth{
			Mode:     "header",
			Header:   "user-name",
			JWTClaim: "user_name",
		},
		Store: Store{
			Driver:          "memory",
			Migrate:         true,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: Redis{
			TTL:          5 * time.Minute,
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: Kafka{
			Topic:       "channelling.audit",
			ClientID:    "channelling",
			Partitions:  1,
			Replication: 1,
			AsyncBuffer: 1024,
		},
		Metrics: Metrics{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
