package db

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ark-network/raffle/internal/core/domain"
	"github.com/ark-network/raffle/internal/core/ports"
	badgerdb "github.com/ark-network/raffle/internal/infrastructure/db/badger"
	sqlitedb "github.com/ark-network/raffle/internal/infrastructure/db/sqlite"
	watermilldb "github.com/ark-network/raffle/internal/infrastructure/db/watermill"
)

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.EventRepository, error){
		"watermill": newWatermillEventRepository,
	}
	raffleStoreTypes = map[string]func(...interface{}) (domain.RaffleRepository, error){
		"badger": badgerdb.NewRaffleRepository,
		"sqlite": sqlitedb.NewRaffleRepository,
	}
	drawStoreTypes = map[string]func(...interface{}) (domain.DrawRepository, error){
		"badger": badgerdb.NewDrawRepository,
		"sqlite": sqlitedb.NewDrawRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore  domain.EventRepository
	raffleStore domain.RaffleRepository
	drawStore   domain.DrawRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid event store type: %s", config.EventStoreType)
	}

	raffleStoreFactory, ok := raffleStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	drawStoreFactory, ok := drawStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	dataStoreConfig := config.DataStoreConfig
	if config.DataStoreType == "sqlite" {
		db, err := openSqlite(dataStoreConfig)
		if err != nil {
			return nil, err
		}
		dataStoreConfig = []interface{}{db}
	}

	eventStore, err := eventStoreFactory(config.EventStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create event store: %w", err)
	}

	raffleStore, err := raffleStoreFactory(dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create raffle store: %w", err)
	}

	drawStore, err := drawStoreFactory(dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to create draw store: %w", err)
	}

	return &service{
		eventStore:  eventStore,
		raffleStore: raffleStore,
		drawStore:   drawStore,
	}, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Raffles() domain.RaffleRepository {
	return s.raffleStore
}

func (s *service) Draws() domain.DrawRepository {
	return s.drawStore
}

func (s *service) Close() {
	s.eventStore.Close()
	s.raffleStore.Close()
	s.drawStore.Close()
}

func newWatermillEventRepository(config ...interface{}) (domain.EventRepository, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	publisher, ok := config[0].(message.Publisher)
	if !ok {
		return nil, fmt.Errorf("invalid config, expected publisher at 0")
	}
	return watermilldb.NewWatermillEventRepository(publisher), nil
}

// openSqlite expects the data directory as only config argument and returns
// the migrated db.
func openSqlite(config []interface{}) (*sql.DB, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid config, expected data directory at 0")
	}

	db, err := sqlitedb.OpenDb(filepath.Join(baseDir, sqliteDbFile))
	if err != nil {
		return nil, err
	}

	if err := sqlitedb.MigrateDb(db); err != nil {
		return nil, fmt.Errorf("failed to migrate sqlite: %w", err)
	}
	return db, nil
}
