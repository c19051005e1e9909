package database

import (
	"testing"

	"resorthub/config"
	"resorthub/internal/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestCacheConstants(t *testing.T) {
	assert.Equal(t, 0, GENERAL_CACHE_INDEX)
	assert.Equal(t, 1, SESSION_CACHE_INDEX)
	assert.Equal(t, 2, CATALOG_CACHE_INDEX)
	assert.Equal(t, 3, EVENTS_CACHE_INDEX)
	assert.Len(t, Cache{}.clients(), 4)
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.Config{
		DatabaseHost:     "db",
		DatabasePort:     5432,
		DatabaseUser:     "resort",
		DatabasePassword: "pw",
		DatabaseName:     "resorthub",
	})

	assert.Equal(t, "host=db port=5432 user=resort password=pw dbname=resorthub sslmode=disable TimeZone=UTC", dsn)
}

func TestInitializePostgresDB_RequiresSettings(t *testing.T) {
	tests := []struct {
		name   string
		config config.Config
	}{
		{name: "missing host", config: config.Config{DatabaseName: "x", DatabaseUser: "u"}},
		{name: "missing name", config: config.Config{DatabaseHost: "h", DatabaseUser: "u"}},
		{name: "missing user", config: config.Config{DatabaseHost: "h", DatabaseName: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{log: logger.New("test")}
			err := db.initializePostgresDB(&gorm.Config{}, tt.config)
			assert.Error(t, err)
			assert.Nil(t, db.SQL)
		})
	}
}

func TestInitializeCacheDB_RequiresAddress(t *testing.T) {
	db := &DB{log: logger.New("test")}
	assert.Error(t, db.initializeCacheDB(config.Config{}))
}

func TestCreateIndexes_ContinuesOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_reservations_resource_confirmed").
		WillReturnError(assert.AnError)
	for range indexes[1:] {
		mock.ExpectExec("CREATE INDEX IF NOT EXISTS").WillReturnResult(sqlmock.NewResult(0, 0))
	}

	db := NewWithSQL(gormDB)
	assert.NoError(t, db.CreateIndexes())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheBuilder_KeyComposition(t *testing.T) {
	id := uuid.MustParse("0190a3c4-1111-7000-8000-000000000001")

	assert.Equal(t, "listings:"+id.String(), NewCacheBuilder(nil, id).WithHash("listings").Key())
	assert.Equal(t, "plain", NewCacheBuilder(nil, "plain").WithHash("").Key())

	multi := NewCacheBuilder(nil, []string{"a", "b"}).WithHash("h")
	assert.Equal(t, []string{"h:a", "h:b"}, multi.keys)
}

func TestCacheBuilder_ValidatesBeforeCalling(t *testing.T) {
	assert.ErrorIs(t, NewCacheBuilder(nil, "").Set(), ErrCacheKeyRequired)
	assert.ErrorIs(t, NewCacheBuilder(nil, "k").Set(), ErrCacheValueRequired)

	_, err := NewCacheBuilder(nil, "").Get(&struct{}{})
	assert.ErrorIs(t, err, ErrCacheKeyRequired)

	assert.ErrorIs(t, NewCacheBuilder(nil, []string{}).Delete(), ErrCacheKeyRequired)

	bad := NewCacheBuilder(nil, "k").WithStruct(make(chan int))
	assert.Error(t, bad.Set())
}
