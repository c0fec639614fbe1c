package services

import (
	"context"
	"fmt"
	"log"
	"sync"

	"coffeestock/internal/repositories"

	"gorm.io/gorm"
)

// SchemaStatus is the lifecycle state of the catalog database.
type SchemaStatus string

const (
	SchemaUninitialized SchemaStatus = "uninitialized"
	SchemaInitializing  SchemaStatus = "initializing"
	SchemaReady         SchemaStatus = "ready"
	SchemaDegraded      SchemaStatus = "degraded"
	SchemaFailed        SchemaStatus = "failed"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
  username TEXT PRIMARY KEY,
  password_hash TEXT NOT NULL,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
  barcode TEXT PRIMARY KEY,
  flavor_name TEXT NOT NULL,
  price_per_box REAL NOT NULL,
  price_per_pod REAL NOT NULL,
  pods_per_box INTEGER NOT NULL,
  image_path TEXT,
  created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
  updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);`

// CatalogSchemaManager opens the catalog database and creates its tables once per process.
type CatalogSchemaManager struct {
	path   string
	native bool

	mu     sync.Mutex
	status SchemaStatus
	db     *gorm.DB
}

// NewCatalogSchemaManager creates a manager for the sqlite file at path.
// native is the platform capability flag; without it the manager stays degraded.
func NewCatalogSchemaManager(path string, native bool) *CatalogSchemaManager {
	return &CatalogSchemaManager{
		path:   path,
		native: native,
		status: SchemaUninitialized,
	}
}

// InitializeDatabase opens the connection and creates the catalog tables.
// It never returns an error: failures are logged and leave the manager not ready.
// Calls made while initializing, ready or degraded return the current status
// without doing anything; a failed attempt may be retried.
func (m *CatalogSchemaManager) InitializeDatabase(ctx context.Context) SchemaStatus {
	m.mu.Lock()
	switch m.status {
	case SchemaInitializing, SchemaReady, SchemaDegraded:
		status := m.status
		m.mu.Unlock()
		return status
	}
	if !m.native {
		m.status = SchemaDegraded
		m.mu.Unlock()
		log.Printf("Running without native platform - database features limited: %v", ErrDegradedEnvironment)
		return SchemaDegraded
	}
	m.status = SchemaInitializing
	m.mu.Unlock()

	db, err := m.open(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		log.Printf("Error initializing database: %v", err)
		m.status = SchemaFailed
		return m.status
	}
	m.db = db
	m.status = SchemaReady
	log.Println("Database initialized successfully")
	return m.status
}

func (m *CatalogSchemaManager) open(ctx context.Context) (*gorm.DB, error) {
	db, err := repositories.OpenSQLite(m.path)
	if err != nil {
		return nil, err
	}
	if err := CreateCatalogTables(ctx, db); err != nil {
		if closeErr := repositories.CloseDB(db); closeErr != nil {
			log.Printf("Error closing catalog database: %v", closeErr)
		}
		return nil, err
	}
	return db, nil
}

// CreateCatalogTables runs the idempotent table definitions against db.
func CreateCatalogTables(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range []string{createUsersTable, createProductsTable} {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create catalog tables: %w", err)
		}
	}
	log.Println("Tables created successfully")
	return nil
}

// IsReady reports the readiness flag.
func (m *CatalogSchemaManager) IsReady() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status == SchemaReady
}

// Status returns the current lifecycle state.
func (m *CatalogSchemaManager) Status() SchemaStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// DB returns the open connection, or nil when the manager is not ready or has been closed.
func (m *CatalogSchemaManager) DB() *gorm.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != SchemaReady || m.db == nil {
		return nil
	}
	return m.db
}

// Close releases the connection. Readiness is not reset.
func (m *CatalogSchemaManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	db := m.db
	m.db = nil
	return repositories.CloseDB(db)
}
