package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/dto"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/validator"
	"github.com/Zoemateus324/sosmecanicos-sub000/pkg/apperrors"
)

type VehicleService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreateVehicleRequest) (*dto.VehicleResponse, error)
	GetByID(ctx context.Context, id, ownerID string) (*dto.VehicleResponse, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*dto.VehicleResponse, error)
	Update(ctx context.Context, id, ownerID string, req *dto.UpdateVehicleRequest) (*dto.VehicleResponse, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type VehicleServiceImpl struct {
	vehicleRepo repositories.VehicleRepository
}

func NewVehicleService(vehicleRepo repositories.VehicleRepository) VehicleService {
	return &VehicleServiceImpl{vehicleRepo: vehicleRepo}
}

func (s *VehicleServiceImpl) Create(ctx context.Context, ownerID string, req *dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	if !validator.IsValidPlate(req.Plate) {
		return nil, apperrors.ValidationError(map[string]string{
			"plate": "placa inválida, use o formato ABC1234 ou ABC1D23",
		})
	}
	if !validator.IsValidVehicleYear(req.Year) {
		return nil, apperrors.ValidationError(map[string]string{
			"year": "ano do veículo fora do intervalo permitido",
		})
	}

	plate := strings.ToUpper(strings.TrimSpace(req.Plate))
	exists, err := s.vehicleRepo.PlateExists(plate)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if exists {
		return nil, apperrors.ErrConflict(repositories.ErrPlateAlreadyUsed, "vehicle", "placa já cadastrada")
	}

	vehicle := &models.Vehicle{
		OwnerID:  ownerID,
		Plate:    plate,
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     req.Year,
		Mileage:  req.Mileage,
		FuelType: req.FuelType,
	}
	if err := s.vehicleRepo.Create(vehicle); err != nil {
		if errors.Is(err, repositories.ErrPlateAlreadyUsed) {
			return nil, apperrors.ErrConflict(err, "vehicle", "placa já cadastrada")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "vehicle registered", "vehicle_id", vehicle.ID, "owner_id", ownerID)
	return dto.NewVehicleResponse(vehicle), nil
}

func (s *VehicleServiceImpl) GetByID(ctx context.Context, id, ownerID string) (*dto.VehicleResponse, error) {
	vehicle, err := s.findOwned(id, ownerID)
	if err != nil {
		return nil, err
	}
	return dto.NewVehicleResponse(vehicle), nil
}

func (s *VehicleServiceImpl) ListByOwner(ctx context.Context, ownerID string) ([]*dto.VehicleResponse, error) {
	vehicles, err := s.vehicleRepo.FindByOwner(ownerID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewVehicleListResponse(vehicles), nil
}

func (s *VehicleServiceImpl) Update(ctx context.Context, id, ownerID string, req *dto.UpdateVehicleRequest) (*dto.VehicleResponse, error) {
	vehicle, err := s.findOwned(id, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Year != nil {
		if !validator.IsValidVehicleYear(*req.Year) {
			return nil, apperrors.ValidationError(map[string]string{
				"year": "ano do veículo fora do intervalo permitido",
			})
		}
		vehicle.Year = *req.Year
	}
	if req.Brand != nil {
		vehicle.Brand = *req.Brand
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}
	if req.FuelType != nil {
		vehicle.FuelType = *req.FuelType
	}

	if err := s.vehicleRepo.Update(vehicle); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewVehicleResponse(vehicle), nil
}

func (s *VehicleServiceImpl) Delete(ctx context.Context, id, ownerID string) error {
	if err := s.vehicleRepo.Delete(id, ownerID); err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "vehicle removed", "vehicle_id", id, "owner_id", ownerID)
	return nil
}

func (s *VehicleServiceImpl) findOwned(id, ownerID string) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrVehicleNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if vehicle.OwnerID != ownerID {
		// Do not reveal other users' vehicles.
		return nil, apperrors.ErrNotFound(repositories.ErrVehicleNotFound)
	}
	return vehicle, nil
}
