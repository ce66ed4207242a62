package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/primerdw/bartender-api/internal/audit"
	"github.com/primerdw/bartender-api/internal/config"
	"github.com/primerdw/bartender-api/internal/credentials"
	"github.com/primerdw/bartender-api/internal/db"
	httpSrv "github.com/primerdw/bartender-api/internal/http"
	"github.com/primerdw/bartender-api/internal/kafka"
	"github.com/primerdw/bartender-api/internal/lookup"
	"github.com/primerdw/bartender-api/internal/query"
	"github.com/primerdw/bartender-api/internal/repository"
	"go.uber.org/zap"
)

// app holds the process-lifetime collaborators. Everything is built once
// at startup and shared read-only by all requests.
type app struct {
	keys      *repository.APIKeysRepositoryImpl
	lookups   repository.LookupRepository
	resources []lookup.Resource
	audit     *audit.Dispatcher
	ready     []httpSrv.ReadyCheck

	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newProvider picks the credentials provider named in config. The returned
// close func is never nil.
func newProvider(ctx context.Context, cfg config.Config) (credentials.Provider, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Credentials.Provider {
	case "secretmanager":
		sm, err := credentials.NewSecretManager(ctx, cfg.Credentials.GoogleCredentialsFile, cfg.Credentials.Version)
		if err != nil {
			return nil, noop, err
		}
		return sm, sm.Close, nil
	case "file":
		return credentials.File{Dir: cfg.Credentials.Dir}, noop, nil
	case "static":
		return nil, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown credentials provider %q", cfg.Credentials.Provider)
	}
}

// resolve turns a connection config into credentials. A nil provider means
// static mode: the DSN in config is used as is.
func resolve(ctx context.Context, p credentials.Provider, dc config.DatabaseConfig) (credentials.Credentials, string, error) {
	if p == nil {
		c, err := credentials.Static{Credentials: credentials.FromDSN(dc.DSN)}.Resolve(ctx, "", "")
		return c, "dsn:" + dc.DSN, err
	}
	c, err := p.Resolve(ctx, dc.Project, dc.Secret)
	return c, "secret:" + dc.Project + "/" + dc.Secret, err
}

func poolOpts(dc config.DatabaseConfig) db.PoolOpts {
	return db.PoolOpts{
		MaxOpenConns:    dc.MaxOpenConns,
		MaxIdleConns:    dc.MaxIdleConns,
		ConnMaxLifetime: dc.ConnMaxLifetime,
		ConnMaxIdleTime: dc.ConnMaxIdleTime,
		PingTimeout:     dc.PingTimeout,
	}
}

type connector struct {
	provider credentials.Provider
	dial     func(credentials.Credentials, db.PoolOpts) (*sqlx.DB, error)
	open     map[string]*sqlx.DB
	a        *app
}

func newConnector(p credentials.Provider, a *app) *connector {
	return &connector{provider: p, dial: db.Connect, open: map[string]*sqlx.DB{}, a: a}
}

// connect opens (or reuses) the database behind dc and wraps it in a
// query client labelled target.
func (cn *connector) connect(ctx context.Context, target string, dc config.DatabaseConfig, cfg config.Config) (query.Client, error) {
	creds, ref, err := resolve(ctx, cn.provider, dc)
	if err != nil {
		return nil, fmt.Errorf("%s credentials: %w", target, err)
	}

	dbx, ok := cn.open[ref]
	if !ok {
		dbx, err = cn.dial(creds, poolOpts(dc))
		if err != nil {
			return nil, fmt.Errorf("%s connect: %w", target, err)
		}
		cn.open[ref] = dbx
		cn.a.closers = append(cn.a.closers, dbx.Close)
	}

	client := query.NewSQLClient(dbx, target, cfg.Query.Timeout)
	cn.a.ready = append(cn.a.ready, httpSrv.ReadyCheck{Name: target, Check: client.Ping})
	return client, nil
}

// openKeys wires only the key registry; used by the keys command.
func openKeys(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeProvider)

	cn := newConnector(provider, a)
	keysClient, err := cn.connect(ctx, "keys", cfg.Keys.DatabaseConfig, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.keys, err = repository.NewAPIKeysRepository(keysClient, cfg.Keys.Table)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// openApp wires everything the HTTP server needs.
func openApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	resources, err := lookup.Catalog(lookup.Tables{Items: cfg.Tables.Items, Products: cfg.Tables.Products})
	if err != nil {
		return nil, err
	}

	a := &app{resources: resources}
	provider, closeProvider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, closeProvider)

	cn := newConnector(provider, a)

	dataClient, err := cn.connect(ctx, "data", cfg.Data, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.lookups = repository.NewLookupRepository(dataClient, cfg.Query.MaxRows)

	keysClient, err := cn.connect(ctx, "keys", cfg.Keys.DatabaseConfig, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	if a.keys, err = repository.NewAPIKeysRepository(keysClient, cfg.Keys.Table); err != nil {
		_ = a.Close()
		return nil, err
	}

	pub, err := newAuditPublisher(cfg.Audit, log, a)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.audit = audit.NewDispatcher(pub, log, cfg.Audit.Buffer, cfg.Audit.PublishTimeout)
	a.closers = append(a.closers, a.audit.Close)

	return a, nil
}

func newAuditPublisher(ac config.AuditConfig, log *zap.Logger, a *app) (audit.Publisher, error) {
	switch ac.Sink {
	case "kafka":
		p := kafka.NewProducerFromConfig(kafka.Config{
			Brokers: ac.Kafka.Brokers,
			Topic:   ac.Kafka.Topic,
			Async:   true,
			OnError: func(msgs []kafka.Message, err error) {
				log.Error("audit kafka delivery failed", zap.Int("messages", len(msgs)), zap.Error(err))
			},
		})
		return audit.NewKafkaPublisher(p), nil
	case "redis":
		rdb, err := db.ConnectRedis(db.RedisOpts{
			Addr:        ac.Redis.Addr,
			Password:    ac.Redis.Password,
			DB:          ac.Redis.DB,
			DialTimeout: ac.Redis.DialTimeout,
			Stream:      ac.Redis.Stream,
		})
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		a.ready = append(a.ready, httpSrv.ReadyCheck{
			Name:  "audit-redis",
			Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		return audit.NewRedisPublisher(rdb, ac.Redis.Stream, ac.Redis.MaxLen), nil
	default:
		return audit.Nop{}, nil
	}
}
