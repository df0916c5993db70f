package core

import (
	"fmt"
	"os"

	"orthoinfer/internal/infra/persistence/memory"
	"orthoinfer/internal/infra/persistence/postgres"
	"orthoinfer/internal/infra/persistence/sqlite"
	"orthoinfer/pkg/domain"
)

// StorageDriver identifies a concrete instance-store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// PersistentStore is a domain.Store with a durable mirror and snapshot
// loading.
type PersistentStore interface {
	domain.Store
	Restore(buckets map[string][]memory.Record) error
	Flush() error
	Close() error
}

// memoryPersistent adapts the plain memory store to the persistent surface.
type memoryPersistent struct{ mem *memory.Store }

func (m memoryPersistent) Fetch(id int64) (*domain.Instance, bool) { return m.mem.Fetch(id) }

func (m memoryPersistent) ListByClass(class domain.Class) []*domain.Instance {
	return m.mem.ListByClass(class)
}

func (m memoryPersistent) FetchByAttribute(class domain.Class, attr, value string) []*domain.Instance {
	return m.mem.FetchByAttribute(class, attr, value)
}

func (m memoryPersistent) StructurallyIdentical(in *domain.Instance) []*domain.Instance {
	return m.mem.StructurallyIdentical(in)
}

func (m memoryPersistent) Store(in *domain.Instance) *domain.Instance { return m.mem.Store(in) }

func (m memoryPersistent) Update(in *domain.Instance) { m.mem.Update(in) }

func (m memoryPersistent) Referrers(id int64, attr string) []*domain.Instance {
	return m.mem.Referrers(id, attr)
}

func (m memoryPersistent) Restore(buckets map[string][]memory.Record) error {
	return m.mem.Restore(buckets)
}

func (memoryPersistent) Flush() error { return nil }
func (memoryPersistent) Close() error { return nil }

var _ PersistentStore = memoryPersistent{}

// OpenPersistentStore selects a backend using environment variables.
// Defaults to sqlite when unset.
//
//	ORTHOINFER_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	ORTHOINFER_SQLITE_PATH: path to sqlite file (default ./orthoinfer.db)
//	ORTHOINFER_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore() (PersistentStore, error) {
	driver := os.Getenv("ORTHOINFER_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memoryPersistent{mem: memory.NewStore()}, nil
	case StorageSQLite:
		return sqlite.Open(os.Getenv("ORTHOINFER_SQLITE_PATH"))
	case StoragePostgres:
		return postgres.Open(os.Getenv("ORTHOINFER_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
