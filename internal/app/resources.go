package app

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/nsqio/go-nsq"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"github.com/shandysiswandi/gotwofa/internal/pkg/messaging"
	"github.com/shandysiswandi/gotwofa/internal/twofa"
)

const (
	defaultRetryBase = 200 * time.Millisecond
	startupPingLimit = 5 * time.Second
)

// storeDrivers returns the drivers selected for users/secrets and sessions.
// An empty session driver follows store.driver.
func (a *App) storeDrivers() (string, string) {
	driver := strings.ToLower(strings.TrimSpace(a.config.GetString("store.driver")))
	session := strings.ToLower(strings.TrimSpace(a.config.GetString("store.session_driver")))
	if session == "" {
		session = driver
	}
	return driver, session
}

// startupRetry pings a dependency with exponential backoff. Only boot uses
// it; request paths never retry.
func (a *App) startupRetry(name string, ping func(ctx context.Context) error) error {
	attempts := max(a.config.GetUint64("startup.retry.max_attempts"), 1)
	base := a.config.GetMillisecond("startup.retry.base_delay_millis")
	if base <= 0 {
		base = defaultRetryBase
	}

	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(base))
	return retry.Do(a.ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, startupPingLimit)
		defer cancel()

		if err := ping(pingCtx); err != nil {
			slog.WarnContext(ctx, "dependency not reachable yet", "name", name, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (a *App) initDatabase() {
	driver, session := a.storeDrivers()
	if driver != twofa.DriverPostgres && session != twofa.DriverPostgres {
		return
	}

	poolCfg, err := a.poolConfig()
	if err != nil {
		slog.Error("failed to parse database url", "error", err)
		os.Exit(1)
	}

	pool, err := pgxpool.NewWithConfig(a.ctx, poolCfg)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}

	if err := a.startupRetry("database", pool.Ping); err != nil {
		pool.Close()
		slog.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	a.dbConn = pool
}

// poolConfig overrides pgx defaults only for keys that are set.
func (a *App) poolConfig() (*pgxpool.Config, error) {
	cfg, err := pgxpool.ParseConfig(a.config.GetString("database.url"))
	if err != nil {
		return nil, err
	}

	if v := a.config.GetInt32("database.pool.max_conns"); v > 0 {
		cfg.MaxConns = v
	}
	if v := a.config.GetInt32("database.pool.min_conns"); v > 0 {
		cfg.MinConns = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_lifetime_seconds"); v > 0 {
		cfg.MaxConnLifetime = v
	}
	if v := a.config.GetSecond("database.pool.max_conn_idle_seconds"); v > 0 {
		cfg.MaxConnIdleTime = v
	}
	if v := a.config.GetSecond("database.pool.health_check_period_seconds"); v > 0 {
		cfg.HealthCheckPeriod = v
	}
	return cfg, nil
}

func (a *App) initCache() {
	if _, session := a.storeDrivers(); session != twofa.DriverRedis {
		return
	}

	opt, err := redis.ParseURL(a.config.GetString("redis.url"))
	if err != nil {
		slog.Error("failed to parse redis url", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(opt)
	if err := a.startupRetry("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		_ = rdb.Close()
		slog.Error("redis unreachable", "error", err)
		os.Exit(1)
	}

	a.cacheConn = rdb
}

func (a *App) initMessaging() {
	driver := a.config.GetString("messaging.driver")
	client, err := messaging.NewFromDriver(driver, messaging.FactoryOptions{
		NSQ: messaging.NSQConfig{
			ProducerAddr:   a.config.GetString("messaging.nsq.producer_addr"),
			ProducerConfig: a.nsqConfig(),
		},
		NATS: messaging.NATSConfig{
			URL:     a.config.GetString("messaging.nats.url"),
			Options: a.natsOptions(),
		},
		Kafka: messaging.KafkaConfig{
			Brokers:                a.config.GetArray("messaging.kafka.brokers"),
			WriteTimeout:           a.config.GetSecond("messaging.kafka.write_timeout_seconds"),
			RequiredAcks:           a.config.GetInt("messaging.kafka.required_acks"),
			AllowAutoTopicCreation: a.config.GetBool("messaging.kafka.allow_auto_topic_creation"),
		},
		MemoryCapacity: a.config.GetInt("messaging.memory.capacity"),
	})
	if err != nil {
		slog.Error("failed to init messaging", "driver", driver, "error", err)
		os.Exit(1)
	}

	a.messaging = client
}

func (a *App) nsqConfig() *nsq.Config {
	cfg := nsq.NewConfig()
	if v := a.config.GetSecond("messaging.nsq.dial_timeout_seconds"); v > 0 {
		cfg.DialTimeout = v
	}
	if v := a.config.GetSecond("messaging.nsq.write_timeout_seconds"); v > 0 {
		cfg.WriteTimeout = v
	}
	return cfg
}

func (a *App) natsOptions() []nats.Option {
	opts := []nats.Option{
		nats.Name(a.config.GetString("messaging.nats.name")),
		nats.RetryOnFailedConnect(a.config.GetBool("messaging.nats.retry_on_failed_connect")),
	}
	if v := a.config.GetInt("messaging.nats.max_reconnects"); v != 0 {
		opts = append(opts, nats.MaxReconnects(v))
	}
	if v := a.config.GetSecond("messaging.nats.timeout_seconds"); v > 0 {
		opts = append(opts, nats.Timeout(v))
	}
	if v := a.config.GetSecond("messaging.nats.reconnect_wait_seconds"); v > 0 {
		opts = append(opts, nats.ReconnectWait(v))
	}
	return opts
}
