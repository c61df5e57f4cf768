package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var (
	ErrPlanNotFound         = errors.New("subscription plan not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrActiveSubscription   = errors.New("user already has an active subscription")
)

type SubscriptionRepository interface {
	// Plan operations
	CreatePlan(plan *models.SubscriptionPlan) error
	FindPlanByID(id string) (*models.SubscriptionPlan, error)
	FindActivePlans(role models.UserRole) ([]models.SubscriptionPlan, error)
	UpdatePlan(plan *models.SubscriptionPlan) error
	DeletePlan(id string) error

	// User subscription operations
	CreateSubscription(sub *models.UserSubscription) error
	FindActiveByUser(userID string) (*models.UserSubscription, error)
	FindByUser(userID string) ([]models.UserSubscription, error)
	Update(sub *models.UserSubscription) error
	ExpireLapsed() (int64, error)
}

type SubscriptionRepositoryImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &SubscriptionRepositoryImpl{db: db}
}

// Plan operations

func (r *SubscriptionRepositoryImpl) CreatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) FindPlanByID(id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := r.db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) FindActivePlans(role models.UserRole) ([]models.SubscriptionPlan, error) {
	query := r.db.Where("is_active = ?", true)
	if role != "" {
		query = query.Where("role = ? OR role = ''", role)
	}

	var plans []models.SubscriptionPlan
	err := query.Order("price ASC").Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(plan *models.SubscriptionPlan) error {
	return r.db.Save(plan).Error
}

func (r *SubscriptionRepositoryImpl) DeletePlan(id string) error {
	result := r.db.Where("id = ?", id).Delete(&models.SubscriptionPlan{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// User subscription operations

// CreateSubscription enforces one active subscription per user inside
// a transaction; the original left this to the UI.
func (r *SubscriptionRepositoryImpl) CreateSubscription(sub *models.UserSubscription) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.UserSubscription{}).
			Where("user_id = ? AND status = ?", sub.UserID, models.SubscriptionStatusActive).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrActiveSubscription
		}
		return tx.Create(sub).Error
	})
}

func (r *SubscriptionRepositoryImpl) FindActiveByUser(userID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ? AND status = ?", userID, models.SubscriptionStatusActive).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByUser(userID string) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := r.db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) Update(sub *models.UserSubscription) error {
	return r.db.Save(sub).Error
}

// ExpireLapsed marks active subscriptions whose period ended.
func (r *SubscriptionRepositoryImpl) ExpireLapsed() (int64, error) {
	result := r.db.Model(&models.UserSubscription{}).
		Where("status = ? AND period_end < ?", models.SubscriptionStatusActive, time.Now()).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusExpired,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
