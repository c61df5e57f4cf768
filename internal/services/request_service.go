package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

// Pusher delivers a stored notification to the user's open websocket
// connections. A nil Pusher disables real-time delivery.
type Pusher interface {
	Push(userID string, notification *models.Notification)
}

type RequestService interface {
	Create(ctx context.Context, requesterID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error)
	GetByID(ctx context.Context, id, userID string, role models.UserRole) (*dto.RequestResponse, error)
	ListMine(ctx context.Context, requesterID string, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error)
	ListAssigned(ctx context.Context, providerID string, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error)
	ListOpen(ctx context.Context, role models.UserRole, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error)
	Start(ctx context.Context, id, providerID string) (*dto.RequestResponse, error)
	Complete(ctx context.Context, id, providerID string) (*dto.RequestResponse, error)
	Cancel(ctx context.Context, id, requesterID string) (*dto.RequestResponse, error)
}

type RequestServiceImpl struct {
	requestRepo      repositories.RequestRepository
	vehicleRepo      repositories.VehicleRepository
	proposalRepo     repositories.ProposalRepository
	notificationRepo repositories.NotificationRepository
	statsRepo        repositories.StatsRepository
	pusher           Pusher
}

func NewRequestService(
	requestRepo repositories.RequestRepository,
	vehicleRepo repositories.VehicleRepository,
	proposalRepo repositories.ProposalRepository,
	notificationRepo repositories.NotificationRepository,
	statsRepo repositories.StatsRepository,
	pusher Pusher,
) RequestService {
	return &RequestServiceImpl{
		requestRepo:      requestRepo,
		vehicleRepo:      vehicleRepo,
		proposalRepo:     proposalRepo,
		notificationRepo: notificationRepo,
		statsRepo:        statsRepo,
		pusher:           pusher,
	}
}

// categoryForRole maps a provider role to the request category it serves.
func categoryForRole(role models.UserRole) string {
	switch role {
	case models.UserRoleMechanic:
		return "mechanic"
	case models.UserRoleTow:
		return "tow"
	default:
		return ""
	}
}

func (s *RequestServiceImpl) Create(ctx context.Context, requesterID string, req *dto.CreateRequestRequest) (*dto.RequestResponse, error) {
	vehicle, err := s.vehicleRepo.FindByID(req.VehicleID)
	if err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if vehicle.OwnerID != requesterID {
		return nil, apperrors.NewForbiddenError("vehicle belongs to another user")
	}

	request := &models.ServiceRequest{
		RequesterID: requesterID,
		VehicleID:   req.VehicleID,
		Category:    req.Category,
		Description: req.Description,
		Status:      models.RequestStatusPending,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, apperrors.InternalError(err)
	}
	request.Vehicle = vehicle

	logger.CtxInfo(ctx, "service request opened",
		"request_id", request.ID, "category", request.Category)
	return dto.NewRequestResponse(request), nil
}

func (s *RequestServiceImpl) GetByID(ctx context.Context, id, userID string, role models.UserRole) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if !s.canView(request, userID, role) {
		return nil, apperrors.ErrNotFound(repositories.ErrRequestNotFound)
	}

	proposals, err := s.proposalRepo.FindByRequest(id)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	request.Proposals = proposals

	return dto.NewRequestResponse(request), nil
}

func (s *RequestServiceImpl) canView(req *models.ServiceRequest, userID string, role models.UserRole) bool {
	if role == models.UserRoleAdmin || req.RequesterID == userID {
		return true
	}
	if req.ProviderID != nil && *req.ProviderID == userID {
		return true
	}
	// Providers may inspect open requests in their category before quoting.
	if role.IsProvider() && categoryForRole(role) == req.Category &&
		(req.Status == models.RequestStatusPending || req.Status == models.RequestStatusQuoted) {
		return true
	}
	return false
}

func (s *RequestServiceImpl) ListMine(ctx context.Context, requesterID string, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error) {
	requests, total, err := s.requestRepo.FindByRequester(requesterID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildRequestList(requests, total, criteria), nil
}

func (s *RequestServiceImpl) ListAssigned(ctx context.Context, providerID string, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error) {
	requests, total, err := s.requestRepo.FindByProvider(providerID, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildRequestList(requests, total, criteria), nil
}

func (s *RequestServiceImpl) ListOpen(ctx context.Context, role models.UserRole, criteria repositories.RequestCriteria) (*dto.RequestListResponse, error) {
	category := categoryForRole(role)
	if category == "" {
		return nil, apperrors.ErrInvalidUserRole
	}
	requests, total, err := s.requestRepo.FindOpenByCategory(category, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return buildRequestList(requests, total, criteria), nil
}

// Start moves an accepted request into in_progress when the assigned
// provider begins the job.
func (s *RequestServiceImpl) Start(ctx context.Context, id, providerID string) (*dto.RequestResponse, error) {
	return s.providerTransition(ctx, id, providerID, models.RequestStatusAccepted, models.RequestStatusInProgress, nil)
}

// Complete closes the job: request completed, accepted proposal
// completed, provider stats bumped, client notified.
func (s *RequestServiceImpl) Complete(ctx context.Context, id, providerID string) (*dto.RequestResponse, error) {
	now := time.Now()
	resp, err := s.providerTransition(ctx, id, providerID,
		models.RequestStatusInProgress, models.RequestStatusCompleted,
		map[string]interface{}{"completed_at": now})
	if err != nil {
		return nil, err
	}

	// Close out the winning proposal as well.
	proposals, perr := s.proposalRepo.FindByRequest(id)
	if perr == nil {
		for i := range proposals {
			p := &proposals[i]
			if p.ProviderID != providerID {
				continue
			}
			if p.Status == models.ProposalStatusAccepted || p.Status == models.ProposalStatusPaid {
				if err := s.proposalRepo.Transaction(func(tx *gorm.DB) error {
					return s.proposalRepo.UpdateStatus(tx, p.ID, p.Status, models.ProposalStatusCompleted, nil)
				}); err != nil {
					logger.CtxWithError(ctx, "proposal close-out failed", err, "proposal_id", p.ID)
				}
			}
		}
	}

	if err := s.statsRepo.IncrementCompletedJobs(providerID); err != nil {
		logger.CtxWithError(ctx, "stats update failed", err, "provider_id", providerID)
	}
	return resp, nil
}

func (s *RequestServiceImpl) providerTransition(ctx context.Context, id, providerID string, from, to models.RequestStatus, extra map[string]interface{}) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if request.ProviderID == nil || *request.ProviderID != providerID {
		return nil, apperrors.NewForbiddenError("request is assigned to another provider")
	}
	if err := request.Status.GuardTransition(to); err != nil {
		return nil, apperrors.ErrInvalidStatus("service_request", err.Error()).WithError(err)
	}

	err = s.requestRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.UpdateStatus(tx, id, from, to, extra); err != nil {
			return err
		}
		n, err := s.notificationRepo.CreateRequestStatusNotification(tx, request.RequesterID, id, to)
		if err != nil {
			return err
		}
		s.push(request.RequesterID, n)
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			// compare-and-set lost the race
			return nil, apperrors.ErrInvalidStatus("service_request", "request status changed concurrently")
		}
		return nil, apperrors.InternalError(err)
	}

	request.Status = to
	if to == models.RequestStatusCompleted {
		now := time.Now()
		request.CompletedAt = &now
	}
	logger.CtxInfo(ctx, "request status changed", "request_id", id, "from", from, "to", to)
	return dto.NewRequestResponse(request), nil
}

// Cancel is available to the requester before an agreement is reached
// (pending or quoted). Providers with pending proposals are notified.
func (s *RequestServiceImpl) Cancel(ctx context.Context, id, requesterID string) (*dto.RequestResponse, error) {
	request, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if request.RequesterID != requesterID {
		return nil, apperrors.NewForbiddenError("request belongs to another user")
	}
	if err := request.Status.GuardTransition(models.RequestStatusCancelled); err != nil {
		return nil, apperrors.ErrInvalidStatus("service_request", err.Error()).WithError(err)
	}

	from := request.Status
	now := time.Now()
	err = s.requestRepo.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.UpdateStatus(tx, id, from, models.RequestStatusCancelled,
			map[string]interface{}{"cancelled_at": now}); err != nil {
			return err
		}

		proposals, err := s.proposalRepo.FindByRequest(id)
		if err != nil {
			return err
		}
		for i := range proposals {
			p := &proposals[i]
			if p.Status != models.ProposalStatusPending {
				continue
			}
			if err := s.proposalRepo.UpdateStatus(tx, p.ID, models.ProposalStatusPending, models.ProposalStatusRejected, nil); err != nil {
				return err
			}
			n, err := s.notificationRepo.CreateRequestStatusNotification(tx, p.ProviderID, id, models.RequestStatusCancelled)
			if err != nil {
				return err
			}
			s.push(p.ProviderID, n)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrInvalidStatus("service_request", "request status changed concurrently")
		}
		return nil, apperrors.InternalError(err)
	}

	request.Status = models.RequestStatusCancelled
	request.CancelledAt = &now
	logger.CtxInfo(ctx, "request cancelled", "request_id", id)
	return dto.NewRequestResponse(request), nil
}

func (s *RequestServiceImpl) push(userID string, n *models.Notification) {
	if s.pusher != nil && n != nil {
		s.pusher.Push(userID, n)
	}
}

func buildRequestList(requests []models.ServiceRequest, total int64, criteria repositories.RequestCriteria) *dto.RequestListResponse {
	out := make([]*dto.RequestResponse, 0, len(requests))
	for i := range requests {
		out = append(out, dto.NewRequestResponse(&requests[i]))
	}
	page := criteria.Page
	if page == 0 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	return &dto.RequestListResponse{
		Requests: out,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
