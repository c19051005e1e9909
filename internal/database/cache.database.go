package database

import (
	"context"
	"fmt"
	"time"

	"resorthub/config"
	"resorthub/internal/logger"

	"github.com/valkey-io/valkey-go"
)

// Valkey database indices. Each concern gets its own logical database so a
// single category can be flushed without touching the others.
const (
	// GENERAL_CACHE_INDEX (DB 0) - miscellaneous cache entries
	GENERAL_CACHE_INDEX = iota

	// SESSION_CACHE_INDEX (DB 1) - login sessions keyed by session id
	SESSION_CACHE_INDEX

	// CATALOG_CACHE_INDEX (DB 2) - approved listings per resort and kind
	CATALOG_CACHE_INDEX

	// EVENTS_CACHE_INDEX (DB 3) - pub/sub for notifications and messages
	EVENTS_CACHE_INDEX
)

func (s *DB) initializeCacheDB(config config.Config) error {
	log := s.log.Function("initializeCacheDB")
	log.Info("initializing cache database")

	address := config.DatabaseCacheAddress
	port := config.DatabaseCachePort
	if address == "" || port == 0 {
		return log.Error("failed to initialize cache database", "reason", "address or port is empty")
	}

	initAddress := []string{fmt.Sprintf("%s:%d", address, port)}
	newClient := func(index int, name string) (CacheClient, error) {
		client, err := valkey.NewClient(valkey.ClientOption{
			InitAddress: initAddress,
			SelectDB:    index,
		})
		if err != nil {
			return nil, log.Err("failed to create valkey client", err, "cache", name)
		}
		return client, nil
	}

	var cacheDB Cache
	var err error
	if cacheDB.General, err = newClient(GENERAL_CACHE_INDEX, "General"); err != nil {
		return err
	}
	if cacheDB.Session, err = newClient(SESSION_CACHE_INDEX, "Session"); err != nil {
		return err
	}
	if cacheDB.Catalog, err = newClient(CATALOG_CACHE_INDEX, "Catalog"); err != nil {
		return err
	}
	if cacheDB.Events, err = newClient(EVENTS_CACHE_INDEX, "Events"); err != nil {
		return err
	}

	s.Cache = cacheDB

	if config.DatabaseCacheReset != -1 {
		go clearCacheDB(config.DatabaseCacheReset, cacheDB)
	}

	return nil
}

func clearCacheDB(index int, cacheDB Cache) {
	log := logger.New("database").File("cache.database").Function("clearCacheDB")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clients := cacheDB.clients()
	if index < 0 || index >= len(clients) {
		log.Warn("Invalid cache database index", "index", index)
		return
	}

	target := clients[index]
	if err := target.client.Do(ctx, target.client.B().Flushdb().Build()).Error(); err != nil {
		log.Er("Failed to clear cache database", err, "index", index, "dbName", target.name)
		return
	}

	log.Info("Successfully cleared cache database", "index", index, "dbName", target.name)
}
