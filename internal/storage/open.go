package storage

import (
	"context"
	"fmt"

	"github.com/marinamsm/GoMarketplace/internal/config"
	"go.opentelemetry.io/otel"
)

const tracerName = "github.com/marinamsm/GoMarketplace/internal/storage"

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
)

// Open builds the backend named by cfg.Driver and wraps it with tracing.
func Open(ctx context.Context, cfg config.Storage) (Storage, error) {
	var (
		backend Storage
		err     error
	)

	switch cfg.Driver {
	case DriverMemory:
		backend = NewMemoryStorage()
	case DriverSQLite:
		backend, err = NewSQLiteStorage(cfg.SQLitePath)
	case DriverRedis:
		client, errConnect := ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if errConnect != nil {
			return nil, errConnect
		}
		backend = NewRedisStorage(client)
	case DriverMongo:
		db, errConnect := ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if errConnect != nil {
			return nil, errConnect
		}
		backend = NewMongoStorage(db)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	return WithTracing(backend, otel.Tracer(tracerName), cfg.Driver), nil
}
