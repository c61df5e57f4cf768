package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/middleware"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
)

type RequestHandler struct {
	*BaseHandler
	requestService services.RequestService
}

func NewRequestHandler(base *BaseHandler, requestService services.RequestService) *RequestHandler {
	return &RequestHandler{
		BaseHandler:    base,
		requestService: requestService,
	}
}

func (h *RequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.POST("", middleware.RequireRoles(models.UserRoleClient), h.Create)
		requests.GET("/mine", h.ListMine)
		requests.GET("/open", middleware.RequireProvider(), h.ListOpen)
		requests.GET("/assigned", middleware.RequireProvider(), h.ListAssigned)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/start", middleware.RequireProvider(), h.Start)
		requests.POST("/:id/complete", middleware.RequireProvider(), h.Complete)
		requests.POST("/:id/cancel", h.Cancel)
	}
}

func (h *RequestHandler) Create(c *gin.Context) {
	var req dto.CreateRequestRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	request, err := h.requestService.Create(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (h *RequestHandler) Get(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.GetByID(c.Request.Context(), id, middleware.UserID(c), middleware.Role(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) ListMine(c *gin.Context) {
	var criteria repositories.RequestCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	list, err := h.requestService.ListMine(c.Request.Context(), middleware.UserID(c), criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// ListOpen shows providers the pending and quoted requests in their
// own category.
func (h *RequestHandler) ListOpen(c *gin.Context) {
	var criteria repositories.RequestCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	list, err := h.requestService.ListOpen(c.Request.Context(), middleware.Role(c), criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) ListAssigned(c *gin.Context) {
	var criteria repositories.RequestCriteria
	if !h.BindAndValidate_Query(c, &criteria) {
		return
	}

	list, err := h.requestService.ListAssigned(c.Request.Context(), middleware.UserID(c), criteria)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

func (h *RequestHandler) Start(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Start(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Complete(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Complete(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (h *RequestHandler) Cancel(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	request, err := h.requestService.Cancel(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}
