package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
	"catalog-gateway/internal/service"
	"catalog-gateway/internal/utils"
	"catalog-gateway/pkg/response"
)

// DataSourceController manages the registered connections whose table
// catalogs this service caches and diffs.
type DataSourceController struct {
	service   service.DataSourceService
	validator *validator.Validate
}

func NewDataSourceController(service service.DataSourceService) *DataSourceController {
	return &DataSourceController{
		service:   service,
		validator: validator.New(),
	}
}

// CreateDataSource godoc
// @Summary Register a new data source
// @Description Registers a connection whose catalog can then be synced and paged
// @Tags datasources
// @Accept json
// @Produce json
// @Param request body service.CreateDataSourceRequest true "Create data source request"
// @Success 201 {object} response.StandardResponse{data=model.DataSource}
// @Failure 400 {object} response.StandardResponse
// @Failure 409 {object} response.StandardResponse
// @Router /api/v1/datasources [post]
func (dc *DataSourceController) CreateDataSource(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	var req service.CreateDataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid request body: "+err.Error(), correlationID))
		return
	}
	if err := dc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	dataSource, err := dc.service.CreateDataSource(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrDataSourceExists) {
			c.JSON(http.StatusConflict, response.ErrorResponse(utils.ErrCodeDataSourceExists, "Data source with this name already exists", "", correlationID))
			return
		}
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(utils.ErrCodeDatabaseError, "Failed to create data source", "", correlationID))
		return
	}

	c.JSON(http.StatusCreated, response.SuccessResponse(dataSource, correlationID))
}

// GetDataSource godoc
// @Summary Get a data source by ID
// @Description Retrieves a data source by its UUID
// @Tags datasources
// @Produce json
// @Param id path string true "Data source UUID"
// @Success 200 {object} response.StandardResponse{data=model.DataSource}
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasources/{id} [get]
func (dc *DataSourceController) GetDataSource(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Data source ID is required", correlationID))
		return
	}

	dataSource, err := dc.service.GetDataSource(c.Request.Context(), id)
	if err != nil {
		dc.sendRepositoryError(c, err, "Failed to get data source")
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(dataSource, correlationID))
}

// ListDataSources godoc
// @Summary List data sources
// @Description Retrieves a paginated list of data sources with optional status filtering
// @Tags datasources
// @Produce json
// @Param status query string false "Filter by status (active, inactive, error)"
// @Param limit query int false "Maximum number of items to return (default: 20, max: 100)"
// @Param offset query int false "Number of items to skip (default: 0)"
// @Success 200 {object} response.StandardResponse{data=service.ListDataSourcesResponse}
// @Router /api/v1/datasources [get]
func (dc *DataSourceController) ListDataSources(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	req := &service.ListDataSourcesRequest{}
	if statusStr := c.Query("status"); statusStr != "" {
		req.Status = model.DataSourceStatus(statusStr)
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			req.Offset = offset
		}
	}

	if err := dc.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	result, err := dc.service.ListDataSources(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(utils.ErrCodeDatabaseError, "Failed to list data sources", "", correlationID))
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(result, correlationID))
}

// UpdateDataSource godoc
// @Summary Update a data source
// @Description Updates an existing data source
// @Tags datasources
// @Accept json
// @Produce json
// @Param id path string true "Data source UUID"
// @Param request body service.UpdateDataSourceRequest true "Update data source request"
// @Success 200 {object} response.StandardResponse{data=model.DataSource}
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasources/{id} [put]
func (dc *DataSourceController) UpdateDataSource(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Data source ID is required", correlationID))
		return
	}

	var req service.UpdateDataSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid request body: "+err.Error(), correlationID))
		return
	}
	if err := dc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	dataSource, err := dc.service.UpdateDataSource(c.Request.Context(), id, &req)
	if err != nil {
		dc.sendRepositoryError(c, err, "Failed to update data source")
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(dataSource, correlationID))
}

// DeleteDataSource godoc
// @Summary Delete a data source
// @Description Deletes a data source by its UUID
// @Tags datasources
// @Produce json
// @Param id path string true "Data source UUID"
// @Success 200 {object} response.StandardResponse
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasources/{id} [delete]
func (dc *DataSourceController) DeleteDataSource(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Data source ID is required", correlationID))
		return
	}

	if err := dc.service.DeleteDataSource(c.Request.Context(), id); err != nil {
		dc.sendRepositoryError(c, err, "Failed to delete data source")
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse("Data source deleted successfully", correlationID))
}

// ActivateDataSource godoc
// @Summary Activate a data source
// @Description Sets a data source status to active
// @Tags datasources
// @Produce json
// @Param id path string true "Data source UUID"
// @Success 200 {object} response.StandardResponse
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasources/{id}/activate [post]
func (dc *DataSourceController) ActivateDataSource(c *gin.Context) {
	dc.changeDataSourceStatus(c, "activate", dc.service.ActivateDataSource)
}

// DeactivateDataSource godoc
// @Summary Deactivate a data source
// @Description Sets a data source status to inactive
// @Tags datasources
// @Produce json
// @Param id path string true "Data source UUID"
// @Success 200 {object} response.StandardResponse
// @Failure 400 {object} response.StandardResponse
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/datasources/{id}/deactivate [post]
func (dc *DataSourceController) DeactivateDataSource(c *gin.Context) {
	dc.changeDataSourceStatus(c, "deactivate", dc.service.DeactivateDataSource)
}

// GetDataSourceStats godoc
// @Summary Get data source statistics
// @Description Retrieves statistics about data sources
// @Tags datasources
// @Produce json
// @Success 200 {object} response.StandardResponse{data=service.DataSourceStatsResponse}
// @Router /api/v1/datasources/stats [get]
func (dc *DataSourceController) GetDataSourceStats(c *gin.Context) {
	correlationID := dc.getCorrelationID(c)

	stats, err := dc.service.GetDataSourceStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(utils.ErrCodeDatabaseError, "Failed to get data source statistics", "", correlationID))
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(stats, correlationID))
}

func (dc *DataSourceController) changeDataSourceStatus(c *gin.Context, action string, statusFunc func(ctx context.Context, id string) error) {
	correlationID := dc.getCorrelationID(c)

	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Data source ID is required", correlationID))
		return
	}

	if err := statusFunc(c.Request.Context(), id); err != nil {
		dc.sendRepositoryError(c, err, "Failed to "+action+" data source")
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse("Data source "+action+"d successfully", correlationID))
}

// sendRepositoryError maps the repository sentinels shared with the catalog
// lookups; anything else is reported as a database failure.
func (dc *DataSourceController) sendRepositoryError(c *gin.Context, err error, fallbackMessage string) {
	correlationID := dc.getCorrelationID(c)

	switch {
	case errors.Is(err, repository.ErrDataSourceNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse(utils.ErrCodeDataSourceNotFound, "Data source not found", "", correlationID))
	case errors.Is(err, repository.ErrInvalidUUID):
		c.JSON(http.StatusBadRequest, response.ErrorResponse(utils.ErrCodeInvalidUUID, "Invalid data source ID format", "", correlationID))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorResponse(utils.ErrCodeDatabaseError, fallbackMessage, "", correlationID))
	}
}

func (dc *DataSourceController) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
