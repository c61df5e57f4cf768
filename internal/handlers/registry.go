package handlers

import (
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/validator"
)

// AppHandlers aggregates every HTTP handler of the application.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	VehicleHandler      *VehicleHandler
	RequestHandler      *RequestHandler
	ProposalHandler     *ProposalHandler
	NotificationHandler *NotificationHandler
	SubscriptionHandler *SubscriptionHandler
	LocationHandler     *LocationHandler
	ReviewHandler       *ReviewHandler
	HealthHandler       *HealthHandler
}

func NewAppHandlers(v *validator.Validator, svc *services.ServiceContainer) *AppHandlers {
	base := NewBaseHandler(v)

	return &AppHandlers{
		AuthHandler:         NewAuthHandler(base, svc.Auth),
		VehicleHandler:      NewVehicleHandler(base, svc.Vehicle),
		RequestHandler:      NewRequestHandler(base, svc.Request),
		ProposalHandler:     NewProposalHandler(base, svc.Proposal),
		NotificationHandler: NewNotificationHandler(base, svc.Notification),
		SubscriptionHandler: NewSubscriptionHandler(base, svc.Subscription),
		LocationHandler:     NewLocationHandler(base, svc.Location),
		ReviewHandler:       NewReviewHandler(base, svc.Review),
		HealthHandler:       NewHealthHandler(base),
	}
}
