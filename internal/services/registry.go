package services

import (
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/cache"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/email"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/payment"
)

// ServiceContainer aggregates all services for wiring into handlers.
type ServiceContainer struct {
	Auth         AuthService
	Vehicle      VehicleService
	Request      RequestService
	Proposal     ProposalService
	Notification NotificationService
	Location     LocationService
	Subscription SubscriptionService
	Review       ReviewService
}

type Dependencies struct {
	UserRepo         repositories.UserRepository
	TokenRepo        repositories.RefreshTokenRepository
	VehicleRepo      repositories.VehicleRepository
	RequestRepo      repositories.RequestRepository
	ProposalRepo     repositories.ProposalRepository
	NotificationRepo repositories.NotificationRepository
	SubscriptionRepo repositories.SubscriptionRepository
	StatsRepo        repositories.StatsRepository

	Sessions *cache.Cache
	Mailer   email.Provider
	Gateway  payment.Gateway
	Pusher   Pusher
}

func NewServiceContainer(deps Dependencies) *ServiceContainer {
	return &ServiceContainer{
		Auth:         NewAuthService(deps.UserRepo, deps.TokenRepo, deps.SubscriptionRepo, deps.Sessions, deps.Mailer),
		Vehicle:      NewVehicleService(deps.VehicleRepo),
		Request:      NewRequestService(deps.RequestRepo, deps.VehicleRepo, deps.ProposalRepo, deps.NotificationRepo, deps.StatsRepo, deps.Pusher),
		Proposal:     NewProposalService(deps.ProposalRepo, deps.RequestRepo, deps.NotificationRepo, deps.UserRepo, deps.Gateway, deps.Mailer, deps.Pusher),
		Notification: NewNotificationService(deps.NotificationRepo),
		Location:     NewLocationService(deps.UserRepo, deps.StatsRepo),
		Subscription: NewSubscriptionService(deps.SubscriptionRepo),
		Review:       NewReviewService(deps.StatsRepo, deps.RequestRepo),
	}
}
