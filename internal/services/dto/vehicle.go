package dto

import (
	"time"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

type CreateVehicleRequest struct {
	Plate    string          `json:"plate" binding:"required" validate:"is-plate"`
	Brand    string          `json:"brand" binding:"required"`
	Model    string          `json:"model" binding:"required"`
	Year     int             `json:"year" binding:"required" validate:"is-vehicle-year"`
	Mileage  int             `json:"mileage" binding:"omitempty,min=0"`
	FuelType models.FuelType `json:"fuel_type" binding:"required" validate:"is-fuel-type"`
}

type UpdateVehicleRequest struct {
	Brand    *string          `json:"brand,omitempty"`
	Model    *string          `json:"model,omitempty"`
	Year     *int             `json:"year,omitempty" validate:"omitempty,is-vehicle-year"`
	Mileage  *int             `json:"mileage,omitempty" binding:"omitempty,min=0"`
	FuelType *models.FuelType `json:"fuel_type,omitempty" validate:"omitempty,is-fuel-type"`
}

type VehicleResponse struct {
	ID        string          `json:"id"`
	OwnerID   string          `json:"owner_id"`
	Plate     string          `json:"plate"`
	Brand     string          `json:"brand"`
	Model     string          `json:"model"`
	Year      int             `json:"year"`
	Mileage   int             `json:"mileage"`
	FuelType  models.FuelType `json:"fuel_type"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewVehicleResponse(v *models.Vehicle) *VehicleResponse {
	return &VehicleResponse{
		ID:        v.ID,
		OwnerID:   v.OwnerID,
		Plate:     v.Plate,
		Brand:     v.Brand,
		Model:     v.Model,
		Year:      v.Year,
		Mileage:   v.Mileage,
		FuelType:  v.FuelType,
		CreatedAt: v.CreatedAt,
	}
}

func NewVehicleListResponse(vehicles []models.Vehicle) []*VehicleResponse {
	out := make([]*VehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, NewVehicleResponse(&vehicles[i]))
	}
	return out
}
