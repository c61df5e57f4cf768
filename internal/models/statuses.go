package models

type UserStatus string
type UserRole string
type RequestStatus string
type ProposalStatus string
type SubscriptionStatus string
type PaymentStatus string
type FuelType string
type GeoFailure string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleClient   UserRole = "client"
	UserRoleMechanic UserRole = "mechanic"
	UserRoleTow      UserRole = "tow"
	UserRoleInsurer  UserRole = "insurer"
	UserRoleAdmin    UserRole = "admin"

	RequestStatusPending    RequestStatus = "pending"
	RequestStatusQuoted     RequestStatus = "quoted"
	RequestStatusAccepted   RequestStatus = "accepted"
	RequestStatusInProgress RequestStatus = "in_progress"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusCancelled  RequestStatus = "cancelled"

	ProposalStatusPending   ProposalStatus = "pending"
	ProposalStatusAccepted  ProposalStatus = "accepted"
	ProposalStatusRejected  ProposalStatus = "rejected"
	ProposalStatusWithdrawn ProposalStatus = "withdrawn"
	ProposalStatusCompleted ProposalStatus = "completed"
	ProposalStatusPaid      ProposalStatus = "paid"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"

	FuelGasoline FuelType = "gasoline"
	FuelEthanol  FuelType = "ethanol"
	FuelFlex     FuelType = "flex"
	FuelDiesel   FuelType = "diesel"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"

	// Failure codes a client may attach to a location report.
	GeoPermissionDenied    GeoFailure = "permission_denied"
	GeoPositionUnavailable GeoFailure = "position_unavailable"
	GeoTimeout             GeoFailure = "timeout"
)

// ProviderRoles are the roles that fulfil service requests.
var ProviderRoles = map[UserRole]bool{
	UserRoleMechanic: true,
	UserRoleTow:      true,
}

func (r UserRole) IsProvider() bool {
	return ProviderRoles[r]
}

// DashboardPath is the canonical dashboard route for a role; handlers
// return it in 403 details so the client can redirect.
func (r UserRole) DashboardPath() string {
	switch r {
	case UserRoleClient:
		return "/dashboard/cliente"
	case UserRoleMechanic:
		return "/dashboard/mecanico"
	case UserRoleTow:
		return "/dashboard/guincho"
	case UserRoleInsurer:
		return "/dashboard/seguradora"
	case UserRoleAdmin:
		return "/dashboard/admin"
	default:
		return "/login"
	}
}
