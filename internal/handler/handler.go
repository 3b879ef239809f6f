package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/insight-query-service/docs"
	"github.com/BarkinBalci/insight-query-service/internal/dto"
	"github.com/BarkinBalci/insight-query-service/internal/entity"
	"github.com/BarkinBalci/insight-query-service/internal/properties"
	"github.com/BarkinBalci/insight-query-service/internal/repository"
	"github.com/BarkinBalci/insight-query-service/internal/service"
)

type Handler struct {
	queryService service.QueryServicer
	router       *gin.Engine
	log          *zap.Logger
}

func NewHandler(queryService service.QueryServicer, log *zap.Logger) *Handler {
	h := &Handler{
		queryService: queryService,
		router:       gin.Default(),
		log:          log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/health", h.healthCheck)
	h.router.POST("/filters/normalize", h.normalizeFilters)
	h.router.POST("/filters/entity", h.normalizeEntityFilters)
	h.router.POST("/entities/compare", h.compareEntities)
	h.router.POST("/entities/dedupe", h.dedupeEntities)
	h.router.POST("/queries", h.publishQuery)
	h.router.GET("/queries/:id", h.getQuery)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// writeError maps domain errors onto HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, service.ErrInvalidQuery):
		status, code = http.StatusBadRequest, "validation_error"
	case errors.Is(err, properties.ErrInvalidFormat):
		status, code = http.StatusUnprocessableEntity, "invalid_format"
	case errors.Is(err, entity.ErrUnsupportedComparison):
		status, code = http.StatusUnprocessableEntity, "unsupported_comparison"
	case errors.Is(err, repository.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

// bindError reports a request body that could not be decoded.
// Filter payloads that decode but have an unreadable shape are 422, not 400.
func (h *Handler) bindError(c *gin.Context, err error) {
	if errors.Is(err, properties.ErrInvalidFormat) {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "validation_error",
		Message: err.Error(),
	})
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Check if the service is running
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// normalizeFilters handles POST /filters/normalize
// @Summary Normalize global filters
// @Description Convert filters in any supported shape into the canonical AND-of-groups tree
// @Tags filters
// @Accept json
// @Produce json
// @Param filters body dto.NormalizeFiltersRequest true "Filter payload"
// @Success 200 {object} dto.NormalizeFiltersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /filters/normalize [post]
func (h *Handler) normalizeFilters(c *gin.Context) {
	var req dto.NormalizeFiltersRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid normalize request", zap.Error(err))
		h.bindError(c, err)
		return
	}

	response, err := h.queryService.NormalizeFilters(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// normalizeEntityFilters handles POST /filters/entity
// @Summary Normalize entity filters
// @Description Convert entity filters into a flat list of cleaned leaves
// @Tags filters
// @Accept json
// @Produce json
// @Param filters body dto.NormalizeFiltersRequest true "Filter payload"
// @Success 200 {object} dto.NormalizeEntityFiltersResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /filters/entity [post]
func (h *Handler) normalizeEntityFilters(c *gin.Context) {
	var req dto.NormalizeFiltersRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid entity filter request", zap.Error(err))
		h.bindError(c, err)
		return
	}

	response, err := h.queryService.NormalizeEntityFilters(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// compareEntities handles POST /entities/compare
// @Summary Compare two entities
// @Description Report whether two entities are equal and whether either one's filters contain the other's
// @Tags entities
// @Accept json
// @Produce json
// @Param entities body dto.CompareEntitiesRequest true "Entities to compare"
// @Success 200 {object} dto.CompareEntitiesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /entities/compare [post]
func (h *Handler) compareEntities(c *gin.Context) {
	var req dto.CompareEntitiesRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid compare request", zap.Error(err))
		h.bindError(c, err)
		return
	}

	response, err := h.queryService.CompareEntities(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// dedupeEntities handles POST /entities/dedupe
// @Summary Dedupe series and exclusions
// @Description Drop repeated series and funnel exclusions made redundant by a broader one
// @Tags entities
// @Accept json
// @Produce json
// @Param entities body dto.DedupeEntitiesRequest true "Series and exclusions"
// @Success 200 {object} dto.DedupeEntitiesResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /entities/dedupe [post]
func (h *Handler) dedupeEntities(c *gin.Context) {
	var req dto.DedupeEntitiesRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid dedupe request", zap.Error(err))
		h.bindError(c, err)
		return
	}

	response, err := h.queryService.DedupeEntities(&req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.log.Info("Entities deduped",
		zap.Int("removed_series", response.RemovedSeries),
		zap.Int("removed_exclusions", response.RemovedExclusions))

	c.JSON(http.StatusOK, response)
}

// publishQuery handles POST /queries
// @Summary Publish a query definition
// @Description Normalize a query definition and publish it to the queue for storage
// @Tags queries
// @Accept json
// @Produce json
// @Param query body dto.PublishQueryRequest true "Query definition"
// @Success 202 {object} dto.PublishQueryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /queries [post]
func (h *Handler) publishQuery(c *gin.Context) {
	var req dto.PublishQueryRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid query request",
			zap.Error(err),
			zap.Int64("team_id", req.TeamID))
		h.bindError(c, err)
		return
	}

	queryID, err := h.queryService.PublishQuery(c.Request.Context(), &req)
	if err != nil {
		h.log.Error("Failed to publish query",
			zap.Error(err),
			zap.Int64("team_id", req.TeamID),
			zap.String("kind", req.Kind))
		h.writeError(c, err)
		return
	}

	h.log.Info("Query accepted",
		zap.String("query_id", queryID),
		zap.String("kind", req.Kind))

	c.JSON(http.StatusAccepted, dto.PublishQueryResponse{
		QueryID: queryID,
		Status:  "accepted",
	})
}

// getQuery handles GET /queries/:id
// @Summary Get a stored query definition
// @Description Retrieve the latest stored version of a query definition
// @Tags queries
// @Produce json
// @Param id path string true "Query ID" format(uuid)
// @Success 200 {object} dto.GetQueryResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /queries/{id} [get]
func (h *Handler) getQuery(c *gin.Context) {
	var req dto.GetQueryRequest

	if err := c.ShouldBindUri(&req); err != nil {
		h.log.Warn("Invalid query lookup", zap.Error(err))
		h.bindError(c, err)
		return
	}

	response, err := h.queryService.GetQuery(c.Request.Context(), req.QueryID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.log.Error("Failed to get query",
				zap.Error(err),
				zap.String("query_id", req.QueryID))
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
