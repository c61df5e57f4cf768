package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

var (
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrPlateAlreadyUsed = errors.New("plate already registered")
)

type VehicleRepository interface {
	Create(vehicle *models.Vehicle) error
	FindByID(id string) (*models.Vehicle, error)
	FindByOwner(ownerID string) ([]models.Vehicle, error)
	Update(vehicle *models.Vehicle) error
	Delete(id, ownerID string) error
	PlateExists(plate string) (bool, error)
}

type VehicleRepositoryImpl struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &VehicleRepositoryImpl{db: db}
}

func (r *VehicleRepositoryImpl) Create(vehicle *models.Vehicle) error {
	vehicle.Plate = normalizePlate(vehicle.Plate)
	return r.db.Create(vehicle).Error
}

func (r *VehicleRepositoryImpl) FindByID(id string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.First(&vehicle, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return &vehicle, nil
}

func (r *VehicleRepositoryImpl) FindByOwner(ownerID string) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&vehicles).Error
	return vehicles, err
}

func (r *VehicleRepositoryImpl) Update(vehicle *models.Vehicle) error {
	vehicle.Plate = normalizePlate(vehicle.Plate)
	return r.db.Save(vehicle).Error
}

// Delete removes the vehicle only when it belongs to ownerID; ownership
// is part of the query, not a separate check.
func (r *VehicleRepositoryImpl) Delete(id, ownerID string) error {
	result := r.db.Where("id = ? AND owner_id = ?", id, ownerID).Delete(&models.Vehicle{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVehicleNotFound
	}
	return nil
}

func (r *VehicleRepositoryImpl) PlateExists(plate string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Vehicle{}).Where("plate = ?", normalizePlate(plate)).Count(&count).Error
	return count > 0, err
}

// Plates are stored uppercase without the optional hyphen so ABC-1234
// and ABC1234 collide on the unique index.
func normalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(plate), "-", ""))
}
