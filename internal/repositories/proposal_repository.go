package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrPaymentNotFound  = errors.New("payment transaction not found")
)

type ProposalRepository interface {
	Create(tx *gorm.DB, proposal *models.Proposal) error
	FindByID(id string) (*models.Proposal, error)
	FindByRequest(requestID string) ([]models.Proposal, error)
	FindByProvider(providerID string) ([]models.Proposal, error)
	FindByClient(clientID string) ([]models.Proposal, error)
	UpdateStatus(tx *gorm.DB, id string, from, to models.ProposalStatus, updates map[string]interface{}) error
	RejectSiblings(tx *gorm.DB, requestID, acceptedID string) error
	SetExternalPayment(tx *gorm.DB, id, chargeID string) error

	// Payment transactions
	CreatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error
	FindPaymentByChargeID(chargeID string) (*models.PaymentTransaction, error)
	FindPaymentByProposal(proposalID string) (*models.PaymentTransaction, error)
	FindPendingPayments(limit int) ([]models.PaymentTransaction, error)
	UpdatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error

	Transaction(fn func(tx *gorm.DB) error) error
}

type ProposalRepositoryImpl struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) ProposalRepository {
	return &ProposalRepositoryImpl{db: db}
}

func (r *ProposalRepositoryImpl) Create(tx *gorm.DB, proposal *models.Proposal) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(proposal).Error
}

func (r *ProposalRepositoryImpl) FindByID(id string) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.First(&proposal, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

func (r *ProposalRepositoryImpl) FindByRequest(requestID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Where("service_request_id = ?", requestID).Order("created_at ASC").Find(&proposals).Error
	return proposals, err
}

func (r *ProposalRepositoryImpl) FindByProvider(providerID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Where("provider_id = ?", providerID).Order("created_at DESC").Find(&proposals).Error
	return proposals, err
}

func (r *ProposalRepositoryImpl) FindByClient(clientID string) ([]models.Proposal, error) {
	var proposals []models.Proposal
	err := r.db.Where("client_id = ?", clientID).Order("created_at DESC").Find(&proposals).Error
	return proposals, err
}

// UpdateStatus is the same compare-and-set used for requests: the row
// must still be in `from`. A double accept therefore affects zero rows
// and surfaces as ErrProposalNotFound to the second caller.
func (r *ProposalRepositoryImpl) UpdateStatus(tx *gorm.DB, id string, from, to models.ProposalStatus, updates map[string]interface{}) error {
	db := tx
	if db == nil {
		db = r.db
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to
	updates["updated_at"] = time.Now()

	result := db.Model(&models.Proposal{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProposalNotFound
	}
	return nil
}

// SetExternalPayment records the gateway charge id on the proposal.
func (r *ProposalRepositoryImpl) SetExternalPayment(tx *gorm.DB, id, chargeID string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Proposal{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"external_payment_id": chargeID,
			"updated_at":          time.Now(),
		}).Error
}

// RejectSiblings marks all other pending proposals of the request rejected.
func (r *ProposalRepositoryImpl) RejectSiblings(tx *gorm.DB, requestID, acceptedID string) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Model(&models.Proposal{}).
		Where("service_request_id = ? AND id <> ? AND status = ?", requestID, acceptedID, models.ProposalStatusPending).
		Updates(map[string]interface{}{
			"status":     models.ProposalStatusRejected,
			"updated_at": time.Now(),
		}).Error
}

// Payment transactions

func (r *ProposalRepositoryImpl) CreatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(payment).Error
}

func (r *ProposalRepositoryImpl) FindPaymentByChargeID(chargeID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.First(&payment, "charge_id = ?", chargeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *ProposalRepositoryImpl) FindPaymentByProposal(proposalID string) (*models.PaymentTransaction, error) {
	var payment models.PaymentTransaction
	err := r.db.First(&payment, "proposal_id = ?", proposalID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *ProposalRepositoryImpl) FindPendingPayments(limit int) ([]models.PaymentTransaction, error) {
	var payments []models.PaymentTransaction
	err := r.db.Where("status = ?", models.PaymentStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&payments).Error
	return payments, err
}

func (r *ProposalRepositoryImpl) UpdatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Save(payment).Error
}

func (r *ProposalRepositoryImpl) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
