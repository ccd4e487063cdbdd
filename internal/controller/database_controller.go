package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"catalog-gateway/internal/database"
	"catalog-gateway/internal/model"
	"catalog-gateway/pkg/response"
)

type DatabaseController struct {
	registry *database.DriverRegistry
	pool     *database.ConnectionPool
}

func NewDatabaseController(registry *database.DriverRegistry, pool *database.ConnectionPool) *DatabaseController {
	return &DatabaseController{
		registry: registry,
		pool:     pool,
	}
}

// GetDatabaseTypes godoc
// @Summary Get supported database types
// @Description Returns the registered database types grouped by protocol family
// @Tags database
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/database/types [get]
func (dc *DatabaseController) GetDatabaseTypes(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	types := dc.registry.SupportedTypes()
	info := make([]DatabaseTypeInfo, 0, len(types))
	for _, dbType := range types {
		driver, err := dc.registry.GetDriver(dbType)
		if err != nil {
			continue
		}
		info = append(info, DatabaseTypeInfo{
			Type:        dbType,
			Protocol:    driver.GetProtocol(),
			DefaultPort: driver.GetDefaultPort(),
		})
	}

	c.JSON(http.StatusOK, response.SuccessResponse(info, correlationID))
}

// TestDataSourceConnection godoc
// @Summary Test data source connection
// @Description Tests connectivity to a data source without adding it to the pool
// @Tags database
// @Accept json
// @Produce json
// @Param request body model.DataSourceConfig true "Data source configuration"
// @Param type query string true "Database type (mysql, postgresql, oracle, clickhouse, ...)"
// @Success 200 {object} response.StandardResponse{data=ConnectionTestResult}
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/database/test-connection [post]
func (dc *DatabaseController) TestDataSourceConnection(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	dbTypeStr := c.Query("type")
	if dbTypeStr == "" {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"MISSING_TYPE",
			"Database type is required",
			"",
			correlationID,
		))
		return
	}

	dbType := model.DatabaseType(dbTypeStr)
	if !dc.registry.IsSupported(dbType) {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"INVALID_TYPE",
			"Unsupported database type: "+dbTypeStr,
			"",
			correlationID,
		))
		return
	}

	var config model.DataSourceConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"INVALID_REQUEST",
			"Invalid request body: "+err.Error(),
			"",
			correlationID,
		))
		return
	}

	driver, err := dc.registry.GetDriver(dbType)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(
			"INVALID_TYPE",
			err.Error(),
			"",
			correlationID,
		))
		return
	}

	if config.Port == 0 {
		config.Port = driver.GetDefaultPort()
	}

	result := ConnectionTestResult{Type: dbType, CheckedAt: time.Now()}
	start := time.Now()

	db, err := driver.Open(driver.BuildDSN(&config))
	if err == nil {
		err = db.PingContext(c.Request.Context())
		db.Close()
	}
	result.LatencyMs = time.Since(start).Milliseconds()

	if err != nil {
		result.Reachable = false
		result.Error = err.Error()
	} else {
		result.Reachable = true
	}

	c.JSON(http.StatusOK, response.SuccessResponse(result, correlationID))
}

// GetConnectionStats godoc
// @Summary Get connection pool statistics
// @Description Returns statistics for all pooled data source connections
// @Tags database
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/database/connections/stats [get]
func (dc *DatabaseController) GetConnectionStats(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)
	c.JSON(http.StatusOK, response.SuccessResponse(dc.pool.GetStats(), correlationID))
}

// GetDatabaseHealth godoc
// @Summary Get database health status
// @Description Pings every pooled connection and reports per data source health
// @Tags database
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/database/health [get]
func (dc *DatabaseController) GetDatabaseHealth(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	results := dc.pool.HealthCheck(c.Request.Context())
	healthy := 0
	for _, ok := range results {
		if ok {
			healthy++
		}
	}

	c.JSON(http.StatusOK, response.SuccessResponse(map[string]interface{}{
		"dataSources": results,
		"healthy":     healthy,
		"unhealthy":   len(results) - healthy,
		"total":       len(results),
		"checkedAt":   time.Now(),
	}, correlationID))
}

// Request/Response types

type DatabaseTypeInfo struct {
	Type        model.DatabaseType `json:"type"`
	Protocol    model.Protocol     `json:"protocol"`
	DefaultPort int                `json:"defaultPort"`
}

type ConnectionTestResult struct {
	Type      model.DatabaseType `json:"type"`
	Reachable bool               `json:"reachable"`
	LatencyMs int64              `json:"latencyMs"`
	Error     string             `json:"error,omitempty"`
	CheckedAt time.Time          `json:"checkedAt"`
}

// Helper methods

func (dc *DatabaseController) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
