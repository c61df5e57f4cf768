package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/middleware"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
)

type LocationHandler struct {
	*BaseHandler
	locationService services.LocationService
}

func NewLocationHandler(base *BaseHandler, locationService services.LocationService) *LocationHandler {
	return &LocationHandler{
		BaseHandler:     base,
		locationService: locationService,
	}
}

func (h *LocationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	location := rg.Group("/location")
	location.Use(middleware.AuthMiddleware())
	{
		location.PUT("", h.Report)
		location.GET("/me", h.LastKnown)
	}

	providers := rg.Group("/providers")
	providers.Use(middleware.AuthMiddleware())
	{
		providers.GET("/nearby", h.NearbyProviders)
	}
}

// Report ingests a position fix. Missing or invalid coordinates fall
// back to the São Paulo city center so the map never renders empty.
func (h *LocationHandler) Report(c *gin.Context) {
	var req dto.ReportLocationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	location, err := h.locationService.Report(c.Request.Context(), middleware.UserID(c), middleware.Role(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}

func (h *LocationHandler) NearbyProviders(c *gin.Context) {
	var req dto.NearbyProvidersRequest
	if !h.BindAndValidate_Query(c, &req) {
		return
	}

	providers, err := h.locationService.NearbyProviders(c.Request.Context(), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"providers": providers, "total": len(providers)})
}

func (h *LocationHandler) LastKnown(c *gin.Context) {
	location, err := h.locationService.LastKnown(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, location)
}
