package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"catalog-gateway/internal/model"
	"catalog-gateway/internal/repository"
	"catalog-gateway/internal/service"
	"catalog-gateway/internal/utils"
	"catalog-gateway/pkg/response"
)

type TableController struct {
	service   service.TableService
	validator *validator.Validate
}

func NewTableController(service service.TableService) *TableController {
	return &TableController{
		service:   service,
		validator: validator.New(),
	}
}

// Request types

type TablePageRequest struct {
	DataSourceID string `form:"dataSourceId" validate:"required"`
	DatabaseName string `form:"databaseName"`
	SchemaName   string `form:"schemaName"`
	SearchKey    string `form:"searchKey"`
	PageNo       int    `form:"pageNo" validate:"omitempty,min=1"`
	PageSize     int    `form:"pageSize" validate:"omitempty,min=1,max=1000"`
	Refresh      bool   `form:"refresh"`
}

type TableRequest struct {
	DataSourceID string `form:"dataSourceId" json:"dataSourceId" validate:"required"`
	DatabaseName string `form:"databaseName" json:"databaseName"`
	SchemaName   string `form:"schemaName" json:"schemaName"`
	TableName    string `form:"tableName" json:"tableName" validate:"required"`
	Refresh      bool   `form:"refresh" json:"refresh"`
}

type DialectScopedRequest struct {
	DataSourceID string `form:"dataSourceId" validate:"required"`
}

type BuildSqlRequest struct {
	DataSourceID string       `json:"dataSourceId" validate:"required"`
	OldTable     *model.Table `json:"oldTable"`
	NewTable     *model.Table `json:"newTable" validate:"required"`
}

type ExampleRequest struct {
	Type string `form:"type" validate:"required"`
}

// PageQueryTables godoc
// @Summary List tables in a scope
// @Description Returns one page of the scope's cached table catalog, synchronizing
// @Description the cache first when the scope is cold or refresh is set
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param databaseName query string false "Database name"
// @Param schemaName query string false "Schema name"
// @Param searchKey query string false "Substring filter on table name"
// @Param pageNo query int false "1-based page number (default 1)"
// @Param pageSize query int false "Page size (default 20, max 1000)"
// @Param refresh query bool false "Force a catalog refresh"
// @Success 200 {object} response.StandardResponse{data=model.TablePageResult}
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/tables [get]
func (tc *TableController) PageQueryTables(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	var req TablePageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid query parameters: "+err.Error(), correlationID))
		return
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	result, err := tc.service.PageQuery(c.Request.Context(), &model.TablePageQueryParam{
		DataSourceID: req.DataSourceID,
		DatabaseName: req.DatabaseName,
		SchemaName:   req.SchemaName,
		SearchKey:    req.SearchKey,
		PageNo:       req.PageNo,
		PageSize:     req.PageSize,
		Refresh:      req.Refresh,
	})
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeSyncFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(result, correlationID))
}

// QueryTable godoc
// @Summary Get full table detail
// @Description Fetches live base info, columns, and indexes for one table
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param databaseName query string false "Database name"
// @Param schemaName query string false "Schema name"
// @Param tableName query string true "Table name"
// @Success 200 {object} response.StandardResponse{data=model.Table}
// @Failure 404 {object} response.StandardResponse
// @Router /api/v1/tables/detail [get]
func (tc *TableController) QueryTable(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	req, ok := tc.bindTableRequest(c)
	if !ok {
		return
	}

	table, err := tc.service.Query(c.Request.Context(), req)
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}
	if table == nil {
		c.JSON(http.StatusNotFound, response.NotFoundResponse("Table not found: "+req.TableName, correlationID))
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(table, correlationID))
}

// ShowCreateTable godoc
// @Summary Get a table's CREATE statement
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param tableName query string true "Table name"
// @Success 200 {object} response.StandardResponse{data=model.Sql}
// @Router /api/v1/tables/ddl [get]
func (tc *TableController) ShowCreateTable(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	req, ok := tc.bindTableRequest(c)
	if !ok {
		return
	}

	ddl, err := tc.service.ShowCreateTable(c.Request.Context(), req)
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(model.Sql{Sql: ddl}, correlationID))
}

// DropTable godoc
// @Summary Drop a table
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param tableName query string true "Table name"
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/tables [delete]
func (tc *TableController) DropTable(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	req, ok := tc.bindTableRequest(c)
	if !ok {
		return
	}

	if err := tc.service.Drop(c.Request.Context(), req); err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse("Table dropped successfully", correlationID))
}

// QueryColumns godoc
// @Summary Get a table's columns
// @Description Returns the table's column list, memoized per table with TTL;
// @Description refresh bypasses the memo
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param tableName query string true "Table name"
// @Param refresh query bool false "Bypass the memoized entry"
// @Success 200 {object} response.StandardResponse{data=[]model.TableColumn}
// @Router /api/v1/tables/columns [get]
func (tc *TableController) QueryColumns(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	req, ok := tc.bindTableRequest(c)
	if !ok {
		return
	}

	columns, err := tc.service.QueryColumns(c.Request.Context(), req)
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(columns, correlationID))
}

// QueryIndexes godoc
// @Summary Get a table's indexes
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Param tableName query string true "Table name"
// @Success 200 {object} response.StandardResponse{data=[]model.TableIndex}
// @Router /api/v1/tables/indexes [get]
func (tc *TableController) QueryIndexes(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	req, ok := tc.bindTableRequest(c)
	if !ok {
		return
	}

	indexes, err := tc.service.QueryIndexes(c.Request.Context(), req)
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(indexes, correlationID))
}

// QueryTypes godoc
// @Summary Get the column types a data source's dialect supports
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Success 200 {object} response.StandardResponse{data=[]model.Type}
// @Router /api/v1/tables/types [get]
func (tc *TableController) QueryTypes(c *gin.Context) {
	tc.dialectScoped(c, func(param *model.TypeQueryParam) (interface{}, error) {
		return tc.service.QueryTypes(c.Request.Context(), param)
	})
}

// QueryTableMeta godoc
// @Summary Get dialect table capabilities
// @Tags tables
// @Produce json
// @Param dataSourceId query string true "Data source UUID"
// @Success 200 {object} response.StandardResponse{data=model.TableMeta}
// @Router /api/v1/tables/meta [get]
func (tc *TableController) QueryTableMeta(c *gin.Context) {
	tc.dialectScoped(c, func(param *model.TypeQueryParam) (interface{}, error) {
		return tc.service.QueryTableMeta(c.Request.Context(), param)
	})
}

// BuildSql godoc
// @Summary Generate DDL from a table definition pair
// @Description Emits one CREATE statement when oldTable is absent, otherwise one
// @Description ALTER statement covering the differences
// @Tags tables
// @Accept json
// @Produce json
// @Param request body BuildSqlRequest true "Old and new table definitions"
// @Success 200 {object} response.StandardResponse{data=[]model.Sql}
// @Failure 400 {object} response.StandardResponse
// @Router /api/v1/tables/build-sql [post]
func (tc *TableController) BuildSql(c *gin.Context) {
	correlationID := tc.getCorrelationID(c)

	var req BuildSqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid request body: "+err.Error(), correlationID))
		return
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	sqls, err := tc.service.BuildSql(c.Request.Context(), req.DataSourceID, req.OldTable, req.NewTable)
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeUnsupportedDialect)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(sqls, correlationID))
}

// CreateTableExample godoc
// @Summary Get a CREATE TABLE sample for a dialect
// @Tags tables
// @Produce json
// @Param type query string true "Database type"
// @Success 200 {object} response.StandardResponse{data=model.Sql}
// @Router /api/v1/tables/create-example [get]
func (tc *TableController) CreateTableExample(c *gin.Context) {
	tc.example(c, tc.service.CreateTableExample)
}

// AlterTableExample godoc
// @Summary Get an ALTER TABLE sample for a dialect
// @Tags tables
// @Produce json
// @Param type query string true "Database type"
// @Success 200 {object} response.StandardResponse{data=model.Sql}
// @Router /api/v1/tables/alter-example [get]
func (tc *TableController) AlterTableExample(c *gin.Context) {
	tc.example(c, tc.service.AlterTableExample)
}

// PinTable godoc
// @Summary Pin a table
// @Description Pinned tables float to the top of paginated listings
// @Tags tables
// @Accept json
// @Produce json
// @Param request body TableRequest true "Table to pin"
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/tables/pin [post]
func (tc *TableController) PinTable(c *gin.Context) {
	tc.pinAction(c, tc.service.PinTable, "Table pinned successfully")
}

// UnpinTable godoc
// @Summary Unpin a table
// @Tags tables
// @Accept json
// @Produce json
// @Param request body TableRequest true "Table to unpin"
// @Success 200 {object} response.StandardResponse
// @Router /api/v1/tables/pin [delete]
func (tc *TableController) UnpinTable(c *gin.Context) {
	tc.pinAction(c, tc.service.UnpinTable, "Table unpinned successfully")
}

// Helper methods

func (tc *TableController) bindTableRequest(c *gin.Context) (*model.TableQueryParam, bool) {
	correlationID := tc.getCorrelationID(c)

	var req TableRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid query parameters: "+err.Error(), correlationID))
		return nil, false
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return nil, false
	}

	return &model.TableQueryParam{
		DataSourceID: req.DataSourceID,
		DatabaseName: req.DatabaseName,
		SchemaName:   req.SchemaName,
		TableName:    req.TableName,
		Refresh:      req.Refresh,
	}, true
}

func (tc *TableController) dialectScoped(c *gin.Context, fn func(*model.TypeQueryParam) (interface{}, error)) {
	correlationID := tc.getCorrelationID(c)

	var req DialectScopedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid query parameters: "+err.Error(), correlationID))
		return
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	data, err := fn(&model.TypeQueryParam{DataSourceID: req.DataSourceID})
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeQueryFailed)
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(data, correlationID))
}

func (tc *TableController) example(c *gin.Context, fn func(model.DatabaseType) (string, error)) {
	correlationID := tc.getCorrelationID(c)

	var req ExampleRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid query parameters: "+err.Error(), correlationID))
		return
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	example, err := fn(model.DatabaseType(req.Type))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorResponse(utils.ErrCodeUnsupportedDialect, err.Error(), "", correlationID))
		return
	}

	c.JSON(http.StatusOK, response.SuccessResponse(model.Sql{Sql: example}, correlationID))
}

func (tc *TableController) pinAction(c *gin.Context, fn func(ctx context.Context, param *model.TableQueryParam) error, message string) {
	correlationID := tc.getCorrelationID(c)

	var req TableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse("Invalid request body: "+err.Error(), correlationID))
		return
	}
	if err := tc.validator.Struct(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.ValidationErrorResponse(err.Error(), correlationID))
		return
	}

	err := fn(c.Request.Context(), &model.TableQueryParam{
		DataSourceID: req.DataSourceID,
		DatabaseName: req.DatabaseName,
		SchemaName:   req.SchemaName,
		TableName:    req.TableName,
	})
	if err != nil {
		tc.sendServiceError(c, err, utils.ErrCodeDatabaseError)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessageResponse(message, correlationID))
}

func (tc *TableController) sendServiceError(c *gin.Context, err error, fallbackCode string) {
	correlationID := tc.getCorrelationID(c)

	switch {
	case errors.Is(err, repository.ErrInvalidUUID):
		c.JSON(http.StatusBadRequest, response.ErrorResponse(utils.ErrCodeInvalidUUID, "Invalid data source ID format", "", correlationID))
	case errors.Is(err, repository.ErrDataSourceNotFound):
		c.JSON(http.StatusNotFound, response.ErrorResponse(utils.ErrCodeDataSourceNotFound, "Data source not found", "", correlationID))
	default:
		status := utils.HTTPStatus[fallbackCode]
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, response.ErrorResponse(fallbackCode, err.Error(), "", correlationID))
	}
}

func (tc *TableController) getCorrelationID(c *gin.Context) string {
	if correlationID, exists := c.Get("correlation_id"); exists {
		if id, ok := correlationID.(string); ok {
			return id
		}
	}
	return ""
}
