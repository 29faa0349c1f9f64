package config

import (
	"time"
)

type DB struct {
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"false"`
}

// Jwt verifies bearer tokens. Tokens are issued by the identity provider.
type Jwt struct {
	Secret string `envconfig:"SECRET" required:"true"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

// Redis backs the shared rate-limit counters. An empty URL keeps them in
// process memory.
type Redis struct {
	URL          string        `envconfig:"URL" default:""`
	KeyPrefix    string        `envconfig:"KEY_PREFIX" default:"mobank:limiter:"`
	PoolSize     int           `envconfig:"POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"WRITE_TIMEOUT" default:"3s"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[mobank]"`
}

// Server configures the HTTP listener. ProxyHeader names the header that
// carries the client address; it is honoured only for requests arriving from
// one of TrustedProxies (IPs or CIDRs). An empty ProxyHeader ignores it.
type Server struct {
	Scheme          string        `envconfig:"SCHEME" default:"http"`
	Host            string        `envconfig:"HOST" default:"localhost"`
	Port            int           `envconfig:"PORT" default:"3000"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ProxyHeader     string        `envconfig:"PROXY_HEADER" default:""`
	TrustedProxies  []string      `envconfig:"TRUSTED_PROXIES"`
}

// Ledger tunes the transaction engine and the query service.
type Ledger struct {
	MaxRetries         int           `envconfig:"MAX_RETRIES" default:"3"`
	RetryInterval      time.Duration `envconfig:"RETRY_INTERVAL" default:"25ms"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s"`
	DefaultPageSize    int           `envconfig:"DEFAULT_PAGE_SIZE" default:"20"`
	MaxPageSize        int           `envconfig:"MAX_PAGE_SIZE" default:"100"`
	DefaultStatsWindow int           `envconfig:"DEFAULT_STATS_WINDOW_DAYS" default:"30"`
	MaxStatsWindow     int           `envconfig:"MAX_STATS_WINDOW_DAYS" default:"366"`
	RecentCount        int           `envconfig:"RECENT_COUNT" default:"5"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
	Ledger    *Ledger    `envconfig:"LEDGER"`
}
