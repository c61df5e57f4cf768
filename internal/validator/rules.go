package validator

import (
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
)

// Plate formats accepted by the registry: the legacy Brazilian format
// (ABC1234, with or without hyphen) and the Mercosul format (ABC1D23).
var (
	legacyPlateRe   = regexp.MustCompile(`^[A-Z]{3}-?[0-9]{4}$`)
	mercosulPlateRe = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z][0-9]{2}$`)
)

// registerCustomRules installs the domain validation tags on the
// validator instance.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// A rule that fails to register is a startup error.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-plate", validatePlate)
	mustRegister("is-vehicle-year", validateVehicleYear)
	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-request-status", validateRequestStatus)
	mustRegister("is-proposal-status", validateProposalStatus)
	mustRegister("is-fuel-type", validateFuelType)
	mustRegister("is-geo-failure", validateGeoFailure)
}

// IsValidPlate reports whether the plate is in an accepted format.
// Exported because the vehicle service also checks it outside binding.
func IsValidPlate(plate string) bool {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return legacyPlateRe.MatchString(plate) || mercosulPlateRe.MatchString(plate)
}

// IsValidVehicleYear accepts 1900 up to next year's models.
func IsValidVehicleYear(year int) bool {
	return year >= 1900 && year <= time.Now().Year()+1
}

// --- validator.Func wrappers ---

func validatePlate(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // empty is handled by 'required'
	}
	return IsValidPlate(value)
}

func validateVehicleYear(fl validator.FieldLevel) bool {
	year := int(fl.Field().Int())
	if year == 0 {
		return true
	}
	return IsValidVehicleYear(year)
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.UserRole(value) {
	case models.UserRoleClient, models.UserRoleMechanic, models.UserRoleTow, models.UserRoleInsurer, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateRequestStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.RequestStatus(value) {
	case models.RequestStatusPending, models.RequestStatusQuoted, models.RequestStatusAccepted,
		models.RequestStatusInProgress, models.RequestStatusCompleted, models.RequestStatusCancelled:
		return true
	default:
		return false
	}
}

func validateProposalStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.ProposalStatus(value) {
	case models.ProposalStatusPending, models.ProposalStatusAccepted, models.ProposalStatusRejected,
		models.ProposalStatusWithdrawn, models.ProposalStatusCompleted, models.ProposalStatusPaid:
		return true
	default:
		return false
	}
}

func validateFuelType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.FuelType(value) {
	case models.FuelGasoline, models.FuelEthanol, models.FuelFlex, models.FuelDiesel, models.FuelElectric, models.FuelHybrid:
		return true
	default:
		return false
	}
}

func validateGeoFailure(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.GeoFailure(value) {
	case models.GeoPermissionDenied, models.GeoPositionUnavailable, models.GeoTimeout:
		return true
	default:
		return false
	}
}
