package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"catalog-gateway/internal/service"
	"catalog-gateway/pkg/response"
)

type CatalogStatsController struct {
	stats *service.SyncStatsCollector
}

func NewCatalogStatsController(stats *service.SyncStatsCollector) *CatalogStatsController {
	return &CatalogStatsController{stats: stats}
}

// GetSummary godoc
// @Summary Get catalog sync summary
// @Description Returns service-wide catalog synchronization statistics
// @Tags catalog
// @Produce json
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/catalog/stats [get]
func (cc *CatalogStatsController) GetSummary(c *gin.Context) {
	correlationID := cc.getCorrelationID(c)
	c.JSON(http.StatusOK, response.SuccessResponse(cc.stats.GetSummary(), correlationID))
}

// GetScopeStats godoc
// @Summary Get sync statistics for one scope
// @Tags catalog
// @Produce json
// @Param scopeKey path string true "Catalog scope key"
// @Success 200 {object} response.StandardResponse{data=service.ScopeSyncStats}
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/catalog/stats/{scopeKey} [get]
func (cc *CatalogStatsController) GetScopeStats(c *gin.Context) {
	correlationID := cc.getCorrelationID(c)

	scopeKey := c.Param("scopeKey")
	stats, err := cc.stats.GetScopeStats(scopeKey)
	if err != nil {
		if errors.Is(err, service.ErrScopeStatsNotFound) {
			c.JSON(http.StatusNotFound, response.NotFoundResponse("No sync statistics for scope: "+scopeKey, correlationID))
			return
		}
		c.JSON(http.StatusInternalServerError, response.InternalServerErrorResponse(correlationID))
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(stats, correlationID))
}

func (cc *CatalogStatsController) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
