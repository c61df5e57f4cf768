package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var (
	ErrStatsNotFound     = errors.New("provider stats not found")
	ErrReviewNotFound    = errors.New("review not found")
	ErrDuplicateReview   = errors.New("service request already reviewed")
	ErrInvalidRatingSpan = errors.New("rating must be between 1 and 5")
)

// ProviderListing is the joined row backing the online-provider list.
type ProviderListing struct {
	UserID    string          `json:"user_id"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	City      string          `json:"city"`
	Latitude  *float64        `json:"latitude"`
	Longitude *float64        `json:"longitude"`
	IsOnline  bool            `json:"is_online"`
	Rating    float64         `json:"rating"`
}

type StatsRepository interface {
	FindByUser(userID string) (*models.ProviderStats, error)
	IncrementCompletedJobs(userID string) error
	RecordLocationReport(userID string) error
	MarkOnline(userID string, online bool) error
	MarkStaleOffline(threshold time.Duration) (int64, error)
	FindOnlineProviders(role models.UserRole, limit int) ([]ProviderListing, error)

	CreateReview(review *models.Review) error
	FindReviewByRequest(requestID string) (*models.Review, error)
	FindReviewsByProvider(providerID string, limit int) ([]models.Review, error)
}

type StatsRepositoryImpl struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) StatsRepository {
	return &StatsRepositoryImpl{db: db}
}

func (r *StatsRepositoryImpl) FindByUser(userID string) (*models.ProviderStats, error) {
	var stats models.ProviderStats
	err := r.db.First(&stats, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStatsNotFound
		}
		return nil, err
	}
	return &stats, nil
}

// ensureRow upserts the stats row so counters never race on first write.
func (r *StatsRepositoryImpl) ensureRow(tx *gorm.DB, userID string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoNothing: true,
	}).Create(&models.ProviderStats{UserID: userID}).Error
}

func (r *StatsRepositoryImpl) IncrementCompletedJobs(userID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.ensureRow(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.ProviderStats{}).
			Where("user_id = ?", userID).
			UpdateColumn("completed_jobs", gorm.Expr("completed_jobs + 1")).Error
	})
}

func (r *StatsRepositoryImpl) RecordLocationReport(userID string) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.ensureRow(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.ProviderStats{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"location_reports": gorm.Expr("location_reports + 1"),
				"is_online":        true,
				"last_seen_at":     now,
			}).Error
	})
}

func (r *StatsRepositoryImpl) MarkOnline(userID string, online bool) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.ensureRow(tx, userID); err != nil {
			return err
		}
		return tx.Model(&models.ProviderStats{}).
			Where("user_id = ?", userID).
			Updates(map[string]interface{}{
				"is_online":    online,
				"last_seen_at": now,
			}).Error
	})
}

// MarkStaleOffline flips providers whose last report is older than the
// threshold. Used by the location worker.
func (r *StatsRepositoryImpl) MarkStaleOffline(threshold time.Duration) (int64, error) {
	cutoff := time.Now().Add(-threshold)
	result := r.db.Model(&models.ProviderStats{}).
		Where("is_online = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", true, cutoff).
		UpdateColumn("is_online", false)
	return result.RowsAffected, result.Error
}

// FindOnlineProviders lists providers currently online, best rated
// first. Position comes from the profile's last report.
func (r *StatsRepositoryImpl) FindOnlineProviders(role models.UserRole, limit int) ([]ProviderListing, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var listings []ProviderListing
	err := r.db.Model(&models.ProviderStats{}).
		Select(`provider_stats.user_id, profiles.name, users.role, profiles.city,
			profiles.latitude, profiles.longitude, provider_stats.is_online, provider_stats.rating`).
		Joins("JOIN users ON users.id = provider_stats.user_id").
		Joins("JOIN profiles ON profiles.user_id = provider_stats.user_id").
		Where("provider_stats.is_online = ? AND users.role = ? AND users.status = ?",
			true, role, models.UserStatusActive).
		Order("provider_stats.rating DESC, provider_stats.completed_jobs DESC").
		Limit(limit).
		Scan(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// CreateReview inserts the review and recomputes the provider's running
// average inside one transaction.
func (r *StatsRepositoryImpl) CreateReview(review *models.Review) error {
	if review.Rating < 1 || review.Rating > 5 {
		return ErrInvalidRatingSpan
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Review{}).
			Where("service_request_id = ?", review.ServiceRequestID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReview
		}

		if err := tx.Create(review).Error; err != nil {
			return err
		}

		if err := r.ensureRow(tx, review.ProviderID); err != nil {
			return err
		}
		return tx.Model(&models.ProviderStats{}).
			Where("user_id = ?", review.ProviderID).
			Updates(map[string]interface{}{
				"rating":       gorm.Expr("(rating * rating_count + ?) / (rating_count + 1)", review.Rating),
				"rating_count": gorm.Expr("rating_count + 1"),
			}).Error
	})
}

func (r *StatsRepositoryImpl) FindReviewByRequest(requestID string) (*models.Review, error) {
	var review models.Review
	err := r.db.First(&review, "service_request_id = ?", requestID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &review, nil
}

func (r *StatsRepositoryImpl) FindReviewsByProvider(providerID string, limit int) ([]models.Review, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var reviews []models.Review
	err := r.db.Where("provider_id = ?", providerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}
