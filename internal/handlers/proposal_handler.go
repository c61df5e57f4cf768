package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/middleware"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
)

type ProposalHandler struct {
	*BaseHandler
	proposalService services.ProposalService
}

func NewProposalHandler(base *BaseHandler, proposalService services.ProposalService) *ProposalHandler {
	return &ProposalHandler{
		BaseHandler:     base,
		proposalService: proposalService,
	}
}

func (h *ProposalHandler) RegisterRoutes(rg *gin.RouterGroup) {
	proposals := rg.Group("/proposals")
	proposals.Use(middleware.AuthMiddleware())
	{
		proposals.POST("", middleware.RequireProvider(), h.Create)
		proposals.GET("/mine", middleware.RequireProvider(), h.ListMine)
		proposals.GET("/received", middleware.RequireRoles(models.UserRoleClient), h.ListReceived)
		proposals.POST("/:id/accept", middleware.RequireRoles(models.UserRoleClient), h.Accept)
		proposals.POST("/:id/reject", middleware.RequireRoles(models.UserRoleClient), h.Reject)
		proposals.POST("/:id/withdraw", middleware.RequireProvider(), h.Withdraw)
	}

	requests := rg.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("/:id/proposals", h.ListByRequest)
	}
}

func (h *ProposalHandler) Create(c *gin.Context) {
	var req dto.CreateProposalRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	proposal, err := h.proposalService.Create(c.Request.Context(), middleware.UserID(c), middleware.Role(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// Accept closes the deal: the winning proposal is accepted, siblings
// rejected, the request assigned and the charge created — atomically.
func (h *ProposalHandler) Accept(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	result, err := h.proposalService.Accept(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *ProposalHandler) Reject(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.Reject(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) Withdraw(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	proposal, err := h.proposalService.Withdraw(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

func (h *ProposalHandler) ListByRequest(c *gin.Context) {
	id, ok := h.RequireParam(c, "id")
	if !ok {
		return
	}

	proposals, err := h.proposalService.ListByRequest(c.Request.Context(), id, middleware.UserID(c), middleware.Role(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": len(proposals)})
}

func (h *ProposalHandler) ListMine(c *gin.Context) {
	proposals, err := h.proposalService.ListByProvider(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": len(proposals)})
}

func (h *ProposalHandler) ListReceived(c *gin.Context) {
	proposals, err := h.proposalService.ListByClient(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"proposals": proposals, "total": len(proposals)})
}
