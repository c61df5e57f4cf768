package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/middleware"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
)

type VehicleHandler struct {
	*BaseHandler
	vehicleService services.VehicleService
}

func NewVehicleHandler(base *BaseHandler, vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{
		BaseHandler:    base,
		vehicleService: vehicleService,
	}
}

func (h *VehicleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vehicles := rg.Group("/vehicles")
	vehicles.Use(middleware.AuthMiddleware())
	{
		vehicles.POST("", h.Create)
		vehicles.GET("", h.List)
		vehicles.GET("/:id", h.Get)
		vehicles.PUT("/:id", h.Update)
		vehicles.DELETE("/:id", h.Delete)
	}
}

func (h *VehicleHandler) Create(c *gin.Context) {
	var req dto.CreateVehicleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	vehicle, err := h.vehicleService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) List(c *gin.Context) {
	vehicles, err := h.vehicleService.ListByOwner(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "total": len(vehicles)})
}

func (h *VehicleHandler) Get(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.vehicleService.GetByID(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Update(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateVehicleRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	vehicle, err := h.vehicleService.Update(c.Request.Context(), id, middleware.UserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), id, middleware.UserID(c)); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "veículo removido"})
}
