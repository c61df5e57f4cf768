package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var ErrRequestNotFound = errors.New("service request not found")

// RequestCriteria filters request listings.
type RequestCriteria struct {
	Status   string `form:"status" binding:"omitempty"`
	Category string `form:"category" binding:"omitempty,oneof=mechanic tow"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type RequestRepository interface {
	Create(req *models.ServiceRequest) error
	FindByID(id string) (*models.ServiceRequest, error)
	FindByRequester(requesterID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	FindByProvider(providerID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	FindOpenByCategory(category string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error)
	UpdateStatus(tx *gorm.DB, id string, from, to models.RequestStatus, updates map[string]interface{}) error
	Update(req *models.ServiceRequest) error

	// Transaction runs fn inside one DB transaction so status writes and
	// their side-effect rows commit or roll back together.
	Transaction(fn func(tx *gorm.DB) error) error
}

type RequestRepositoryImpl struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &RequestRepositoryImpl{db: db}
}

func (r *RequestRepositoryImpl) Create(req *models.ServiceRequest) error {
	return r.db.Create(req).Error
}

func (r *RequestRepositoryImpl) FindByID(id string) (*models.ServiceRequest, error) {
	var req models.ServiceRequest
	err := r.db.Preload("Vehicle").First(&req, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepositoryImpl) FindByRequester(requesterID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	query := r.db.Where("requester_id = ?", requesterID)
	return r.list(query, criteria)
}

func (r *RequestRepositoryImpl) FindByProvider(providerID string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	query := r.db.Where("provider_id = ?", providerID)
	return r.list(query, criteria)
}

// FindOpenByCategory lists requests a provider can still quote on.
func (r *RequestRepositoryImpl) FindOpenByCategory(category string, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	query := r.db.Where("category = ? AND status IN ?", category,
		[]models.RequestStatus{models.RequestStatusPending, models.RequestStatusQuoted})
	return r.list(query, criteria)
}

func (r *RequestRepositoryImpl) list(query *gorm.DB, criteria RequestCriteria) ([]models.ServiceRequest, int64, error) {
	// Apply filters
	if criteria.Status != "" {
		query = query.Where("status = ?", criteria.Status)
	}
	if criteria.Category != "" {
		query = query.Where("category = ?", criteria.Category)
	}

	var total int64
	if err := query.Model(&models.ServiceRequest{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := criteria.Page
	if page < 1 {
		page = 1
	}
	pageSize := criteria.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	var requests []models.ServiceRequest
	err := query.Preload("Vehicle").
		Order("created_at DESC").
		Limit(pageSize).Offset((page - 1) * pageSize).
		Find(&requests).Error

	return requests, total, err
}

// UpdateStatus performs a guarded compare-and-set: the row moves from
// `from` to `to` only if it is still in `from`, so concurrent writers
// cannot race past the lifecycle table.
func (r *RequestRepositoryImpl) UpdateStatus(tx *gorm.DB, id string, from, to models.RequestStatus, updates map[string]interface{}) error {
	db := tx
	if db == nil {
		db = r.db
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now()

	result := db.Model(&models.ServiceRequest{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepositoryImpl) Update(req *models.ServiceRequest) error {
	return r.db.Save(req).Error
}

func (r *RequestRepositoryImpl) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
