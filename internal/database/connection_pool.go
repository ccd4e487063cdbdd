package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"catalog-gateway/internal/model"
)

// ConnectionPool manages live connections to registered data sources
type ConnectionPool struct {
	pools    map[string]*sql.DB
	mutex    sync.RWMutex
	health   map[string]bool
	healthMu sync.RWMutex
	registry *DriverRegistry
}

// NewConnectionPool creates a new ConnectionPool instance
func NewConnectionPool() *ConnectionPool {
	return &ConnectionPool{
		pools:    make(map[string]*sql.DB),
		health:   make(map[string]bool),
		registry: GetDriverRegistry(),
	}
}

// GetConnection gets or creates a database connection for the specified data source
func (cp *ConnectionPool) GetConnection(ctx context.Context, dataSource *model.DataSource) (*sql.DB, error) {
	cp.mutex.RLock()
	db, exists := cp.pools[dataSource.ID]
	cp.mutex.RUnlock()

	if exists {
		if err := db.PingContext(ctx); err == nil {
			return db, nil
		}
		// Connection is dead, remove and recreate
		cp.removeConnection(dataSource.ID)
	}

	return cp.createConnection(ctx, dataSource)
}

// createConnection creates a new database connection pool
func (cp *ConnectionPool) createConnection(ctx context.Context, dataSource *model.DataSource) (*sql.DB, error) {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()

	// Double-check after acquiring write lock
	if db, exists := cp.pools[dataSource.ID]; exists {
		if err := db.PingContext(ctx); err == nil {
			return db, nil
		}
	}

	driver, err := cp.registry.GetDriver(dataSource.Type)
	if err != nil {
		return nil, err
	}

	config := dataSource.Config
	if config.Port == 0 {
		config.Port = driver.GetDefaultPort()
	}

	db, err := driver.Open(driver.BuildDSN(&config))
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	cp.configureConnectionPool(db, &config)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	cp.pools[dataSource.ID] = db
	cp.setHealth(dataSource.ID, true)

	return db, nil
}

// configureConnectionPool configures the connection pool settings
func (cp *ConnectionPool) configureConnectionPool(db *sql.DB, config *model.DataSourceConfig) {
	maxOpenConns := config.MaxPoolSize
	if maxOpenConns <= 0 {
		maxOpenConns = 10
	}
	db.SetMaxOpenConns(maxOpenConns)

	maxIdleConns := maxOpenConns / 2
	if maxIdleConns < 2 {
		maxIdleConns = 2
	}
	db.SetMaxIdleConns(maxIdleConns)

	maxLifetime := time.Duration(config.MaxLifetime) * time.Second
	if maxLifetime <= 0 {
		maxLifetime = 30 * time.Minute
	}
	db.SetConnMaxLifetime(maxLifetime)

	idleTimeout := time.Duration(config.IdleTimeout) * time.Second
	if idleTimeout <= 0 {
		idleTimeout = 10 * time.Minute
	}
	db.SetConnMaxIdleTime(idleTimeout)
}

// removeConnection removes a connection from the pool
func (cp *ConnectionPool) removeConnection(dataSourceID string) {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()

	if db, exists := cp.pools[dataSourceID]; exists {
		db.Close()
		delete(cp.pools, dataSourceID)
		cp.setHealth(dataSourceID, false)
	}
}

// CloseConnection closes a specific connection and removes it from the pool
func (cp *ConnectionPool) CloseConnection(dataSourceID string) error {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()

	if db, exists := cp.pools[dataSourceID]; exists {
		err := db.Close()
		delete(cp.pools, dataSourceID)
		cp.setHealth(dataSourceID, false)
		return err
	}

	return fmt.Errorf("connection not found for data source: %s", dataSourceID)
}

// CloseAll closes all connections in the pool
func (cp *ConnectionPool) CloseAll() error {
	cp.mutex.Lock()
	defer cp.mutex.Unlock()

	var lastErr error
	for id, db := range cp.pools {
		if err := db.Close(); err != nil {
			lastErr = err
		}
		delete(cp.pools, id)
		cp.setHealth(id, false)
	}

	return lastErr
}

// GetStats returns statistics for all connections in the pool
func (cp *ConnectionPool) GetStats() map[string]ConnectionStats {
	cp.mutex.RLock()
	defer cp.mutex.RUnlock()

	stats := make(map[string]ConnectionStats)
	for id, db := range cp.pools {
		dbStats := db.Stats()
		stats[id] = ConnectionStats{
			OpenConnections: dbStats.OpenConnections,
			InUse:           dbStats.InUse,
			Idle:            dbStats.Idle,
			WaitCount:       dbStats.WaitCount,
			WaitDuration:    dbStats.WaitDuration,
			Healthy:         cp.getHealth(id),
		}
	}

	return stats
}

// ConnectionStats contains connection pool statistics
type ConnectionStats struct {
	OpenConnections int           `json:"openConnections"`
	InUse           int           `json:"inUse"`
	Idle            int           `json:"idle"`
	WaitCount       int64         `json:"waitCount"`
	WaitDuration    time.Duration `json:"waitDuration"`
	Healthy         bool          `json:"healthy"`
}

// HealthCheck performs health checks on all pooled connections
func (cp *ConnectionPool) HealthCheck(ctx context.Context) map[string]bool {
	cp.mutex.RLock()
	defer cp.mutex.RUnlock()

	results := make(map[string]bool)
	for id, db := range cp.pools {
		healthy := db.PingContext(ctx) == nil
		cp.setHealth(id, healthy)
		results[id] = healthy
	}

	return results
}

// IsHealthy checks if a specific data source connection is healthy
func (cp *ConnectionPool) IsHealthy(dataSourceID string) bool {
	cp.healthMu.RLock()
	defer cp.healthMu.RUnlock()
	return cp.health[dataSourceID]
}

func (cp *ConnectionPool) setHealth(dataSourceID string, healthy bool) {
	cp.healthMu.Lock()
	defer cp.healthMu.Unlock()
	cp.health[dataSourceID] = healthy
}

func (cp *ConnectionPool) getHealth(dataSourceID string) bool {
	cp.healthMu.RLock()
	defer cp.healthMu.RUnlock()
	return cp.health[dataSourceID]
}
