package database

import (
	"fmt"
	"sync"

	"catalog-gateway/internal/model"
)

// DriverRegistry manages driver instances and creation
type DriverRegistry struct {
	drivers map[model.DatabaseType]func() Driver
	mutex   sync.RWMutex
}

var (
	registry     *DriverRegistry
	registryOnce sync.Once
)

// GetDriverRegistry returns the shared driver registry
func GetDriverRegistry() *DriverRegistry {
	registryOnce.Do(func() {
		registry = NewDriverRegistry()
	})
	return registry
}

// NewDriverRegistry creates a new driver registry with all drivers registered
func NewDriverRegistry() *DriverRegistry {
	dr := &DriverRegistry{
		drivers: make(map[model.DatabaseType]func() Driver),
	}
	dr.registerDrivers()
	return dr
}

// registerDrivers registers all available drivers by protocol family
func (dr *DriverRegistry) registerDrivers() {
	dr.mutex.Lock()
	defer dr.mutex.Unlock()

	mysqlFamily := []model.DatabaseType{
		model.DatabaseTypeMySQL,
		model.DatabaseTypeMariaDB,
		model.DatabaseTypeTiDB,
		model.DatabaseTypeOceanBaseMySQL,
		model.DatabaseTypeDoris,
		model.DatabaseTypeStarRocks,
	}
	for _, dbType := range mysqlFamily {
		dr.register(dbType, func() Driver { return &MySQLDriver{} })
	}

	postgresFamily := []model.DatabaseType{
		model.DatabaseTypePostgreSQL,
		model.DatabaseTypeOpenGauss,
		model.DatabaseTypeKingbaseES,
	}
	for _, dbType := range postgresFamily {
		dr.register(dbType, func() Driver { return &PostgreSQLDriver{} })
	}

	dr.register(model.DatabaseTypeOracle, func() Driver { return &OracleDriver{} })
	dr.register(model.DatabaseTypeClickHouse, func() Driver { return &ClickHouseDriver{} })
}

func (dr *DriverRegistry) register(dbType model.DatabaseType, factory func() Driver) {
	dr.drivers[dbType] = factory
}

// GetDriver returns a driver for the specified database type
func (dr *DriverRegistry) GetDriver(dbType model.DatabaseType) (Driver, error) {
	dr.mutex.RLock()
	defer dr.mutex.RUnlock()

	factory, exists := dr.drivers[dbType]
	if !exists {
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}
	return factory(), nil
}

// IsSupported checks if a database type has a registered driver
func (dr *DriverRegistry) IsSupported(dbType model.DatabaseType) bool {
	dr.mutex.RLock()
	defer dr.mutex.RUnlock()

	_, exists := dr.drivers[dbType]
	return exists
}

// SupportedTypes returns all registered database types
func (dr *DriverRegistry) SupportedTypes() []model.DatabaseType {
	dr.mutex.RLock()
	defer dr.mutex.RUnlock()

	types := make([]model.DatabaseType, 0, len(dr.drivers))
	for dbType := range dr.drivers {
		types = append(types, dbType)
	}
	return types
}
