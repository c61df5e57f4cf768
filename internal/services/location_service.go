package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type LocationService interface {
	Report(ctx context.Context, userID string, role models.UserRole, req *dto.ReportLocationRequest) (*dto.LocationResponse, error)
	LastKnown(ctx context.Context, userID string) (*dto.LocationResponse, error)
	NearbyProviders(ctx context.Context, req *dto.NearbyProvidersRequest) ([]*dto.NearbyProviderResponse, error)
}

type LocationServiceImpl struct {
	userRepo  repositories.UserRepository
	statsRepo repositories.StatsRepository
	now       func() time.Time
}

func NewLocationService(userRepo repositories.UserRepository, statsRepo repositories.StatsRepository) LocationService {
	return &LocationServiceImpl{
		userRepo:  userRepo,
		statsRepo: statsRepo,
		now:       time.Now,
	}
}

func validCoordinates(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// Report ingests a position report. When the client sends a geolocation
// failure code, or the coordinates are unusable, the configured fallback
// coordinate is stored instead, always with a fresh timestamp so the
// feed never shows a null position for an active user.
func (s *LocationServiceImpl) Report(ctx context.Context, userID string, role models.UserRole, req *dto.ReportLocationRequest) (*dto.LocationResponse, error) {
	cfg := config.GetConfig()

	lat, lng := cfg.Location.FallbackLat, cfg.Location.FallbackLng
	fallback := true

	if req.FailureCode == "" && req.Latitude != nil && req.Longitude != nil &&
		validCoordinates(*req.Latitude, *req.Longitude) {
		lat, lng = *req.Latitude, *req.Longitude
		fallback = false
	}

	if fallback {
		logger.CtxInfo(ctx, "location fallback applied",
			"user_id", userID, "failure_code", req.FailureCode)
	}

	if err := s.userRepo.UpdateLastPosition(userID, lat, lng); err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if role.IsProvider() {
		if err := s.statsRepo.RecordLocationReport(userID); err != nil {
			logger.CtxWithError(ctx, "location heartbeat failed", err, "user_id", userID)
		}
	}

	return &dto.LocationResponse{
		Latitude:  lat,
		Longitude: lng,
		Fallback:  fallback,
		LocatedAt: s.now(),
	}, nil
}

func (s *LocationServiceImpl) LastKnown(ctx context.Context, userID string) (*dto.LocationResponse, error) {
	profile, err := s.userRepo.FindProfileByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrProfileNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if profile.Latitude == nil || profile.Longitude == nil || profile.LocatedAt == nil {
		return nil, apperrors.ErrNotFound(errors.New("no position reported yet"))
	}
	return &dto.LocationResponse{
		Latitude:  *profile.Latitude,
		Longitude: *profile.Longitude,
		LocatedAt: *profile.LocatedAt,
	}, nil
}

const earthRadiusKm = 6371.0

func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// NearbyProviders lists online providers of the given category, best
// rated first. When the caller sends their own position each listing
// carries the great-circle distance to it.
func (s *LocationServiceImpl) NearbyProviders(ctx context.Context, req *dto.NearbyProvidersRequest) ([]*dto.NearbyProviderResponse, error) {
	role := models.UserRole(req.Role)
	if !role.IsProvider() {
		return nil, apperrors.ValidationError(map[string]string{
			"role": "categoria deve ser mechanic ou tow",
		})
	}

	listings, err := s.statsRepo.FindOnlineProviders(role, req.Limit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	hasOrigin := req.Latitude != nil && req.Longitude != nil &&
		validCoordinates(*req.Latitude, *req.Longitude)

	out := make([]*dto.NearbyProviderResponse, 0, len(listings))
	for _, l := range listings {
		item := &dto.NearbyProviderResponse{
			UserID:    l.UserID,
			Name:      l.Name,
			Role:      string(l.Role),
			City:      l.City,
			Latitude:  l.Latitude,
			Longitude: l.Longitude,
			IsOnline:  l.IsOnline,
			Rating:    l.Rating,
		}
		if hasOrigin && l.Latitude != nil && l.Longitude != nil {
			item.DistanceKm = math.Round(haversineKm(
				*req.Latitude, *req.Longitude, *l.Latitude, *l.Longitude)*10) / 10
		}
		out = append(out, item)
	}
	return out, nil
}
