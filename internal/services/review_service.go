package services

import (
	"context"
	"errors"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type ReviewService interface {
	Create(ctx context.Context, authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error)
	ProviderStats(ctx context.Context, providerID string) (*dto.ProviderStatsResponse, error)
}

type ReviewServiceImpl struct {
	statsRepo   repositories.StatsRepository
	requestRepo repositories.RequestRepository
}

func NewReviewService(statsRepo repositories.StatsRepository, requestRepo repositories.RequestRepository) ReviewService {
	return &ReviewServiceImpl{statsRepo: statsRepo, requestRepo: requestRepo}
}

// Create records the client's rating for a completed request. One
// review per request; only the requester of a completed job may review.
func (s *ReviewServiceImpl) Create(ctx context.Context, authorID string, req *dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	request, err := s.requestRepo.FindByID(req.ServiceRequestID)
	if err != nil {
		if errors.Is(err, repositories.ErrRequestNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if request.RequesterID != authorID {
		return nil, apperrors.NewForbiddenError("request belongs to another user")
	}
	if request.Status != models.RequestStatusCompleted {
		return nil, apperrors.ErrInvalidStatus("review", "only completed requests can be reviewed")
	}
	if request.ProviderID == nil {
		return nil, apperrors.ErrInvalidOperation("review", "request has no assigned provider")
	}
	if _, err := s.statsRepo.FindReviewByRequest(req.ServiceRequestID); err == nil {
		return nil, apperrors.ErrConflict(repositories.ErrDuplicateReview, "review", "esta solicitação já foi avaliada")
	} else if !errors.Is(err, repositories.ErrReviewNotFound) {
		return nil, apperrors.InternalError(err)
	}

	review := &models.Review{
		ServiceRequestID: req.ServiceRequestID,
		AuthorID:         authorID,
		ProviderID:       *request.ProviderID,
		Rating:           req.Rating,
		Comment:          req.Comment,
	}
	if err := s.statsRepo.CreateReview(review); err != nil {
		if errors.Is(err, repositories.ErrDuplicateReview) {
			return nil, apperrors.ErrConflict(err, "review", "esta solicitação já foi avaliada")
		}
		if errors.Is(err, repositories.ErrInvalidRatingSpan) {
			return nil, apperrors.NewBadRequestError("rating must be between 1 and 5")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "review created",
		"request_id", req.ServiceRequestID, "provider_id", *request.ProviderID, "rating", req.Rating)
	return dto.NewReviewResponse(review), nil
}

func (s *ReviewServiceImpl) ProviderStats(ctx context.Context, providerID string) (*dto.ProviderStatsResponse, error) {
	stats, err := s.statsRepo.FindByUser(providerID)
	if err != nil {
		if errors.Is(err, repositories.ErrStatsNotFound) {
			// A provider without stats simply has no activity yet.
			return &dto.ProviderStatsResponse{UserID: providerID}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	reviews, err := s.statsRepo.FindReviewsByProvider(providerID, 20)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := &dto.ProviderStatsResponse{
		UserID:        stats.UserID,
		CompletedJobs: stats.CompletedJobs,
		Rating:        stats.Rating,
		RatingCount:   stats.RatingCount,
		IsOnline:      stats.IsOnline,
		LastSeenAt:    stats.LastSeenAt,
	}
	for i := range reviews {
		resp.Reviews = append(resp.Reviews, dto.NewReviewResponse(&reviews[i]))
	}
	return resp, nil
}
