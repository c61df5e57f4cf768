package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/payment"
)

// In-memory fakes for service tests. Transaction snapshots the store and
// restores it when fn fails, mirroring a DB rollback.

type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*models.User
	profiles  map[string]*models.Profile
	requests  map[string]*models.ServiceRequest
	vehicles  map[string]*models.Vehicle
	proposals map[string]*models.Proposal
	payments  map[string]*models.PaymentTransaction
	notices   []*models.Notification
	stats     map[string]*models.ProviderStats
	reviews   map[string]*models.Review
	subs      map[string]*models.UserSubscription
	plans     map[string]*models.SubscriptionPlan
	tokens    map[string]*models.RefreshToken
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*models.User{},
		profiles:  map[string]*models.Profile{},
		requests:  map[string]*models.ServiceRequest{},
		vehicles:  map[string]*models.Vehicle{},
		proposals: map[string]*models.Proposal{},
		payments:  map[string]*models.PaymentTransaction{},
		stats:     map[string]*models.ProviderStats{},
		reviews:   map[string]*models.Review{},
		subs:      map[string]*models.UserSubscription{},
		plans:     map[string]*models.SubscriptionPlan{},
		tokens:    map[string]*models.RefreshToken{},
	}
}

func (s *fakeStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%d", prefix, s.seq)
}

func (s *fakeStore) snapshot() *fakeStore {
	clone := newFakeStore()
	clone.seq = s.seq
	for k, v := range s.users {
		u := *v
		clone.users[k] = &u
	}
	for k, v := range s.profiles {
		p := *v
		clone.profiles[k] = &p
	}
	for k, v := range s.requests {
		r := *v
		clone.requests[k] = &r
	}
	for k, v := range s.vehicles {
		vc := *v
		clone.vehicles[k] = &vc
	}
	for k, v := range s.proposals {
		p := *v
		clone.proposals[k] = &p
	}
	for k, v := range s.payments {
		p := *v
		clone.payments[k] = &p
	}
	for _, n := range s.notices {
		c := *n
		clone.notices = append(clone.notices, &c)
	}
	for k, v := range s.stats {
		st := *v
		clone.stats[k] = &st
	}
	for k, v := range s.reviews {
		r := *v
		clone.reviews[k] = &r
	}
	for k, v := range s.subs {
		sub := *v
		clone.subs[k] = &sub
	}
	for k, v := range s.plans {
		p := *v
		clone.plans[k] = &p
	}
	for k, v := range s.tokens {
		t := *v
		clone.tokens[k] = &t
	}
	return clone
}

func (s *fakeStore) restore(from *fakeStore) {
	s.seq = from.seq
	s.users = from.users
	s.profiles = from.profiles
	s.requests = from.requests
	s.vehicles = from.vehicles
	s.proposals = from.proposals
	s.payments = from.payments
	s.notices = from.notices
	s.stats = from.stats
	s.reviews = from.reviews
	s.subs = from.subs
	s.plans = from.plans
	s.tokens = from.tokens
}

func (s *fakeStore) transaction(fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	snap := s.snapshot()
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.restore(snap)
		s.mu.Unlock()
		return err
	}
	return nil
}

// ---- RequestRepository ----

type fakeRequestRepo struct{ store *fakeStore }

func (r *fakeRequestRepo) Create(req *models.ServiceRequest) error {
	if req.ID == "" {
		req.ID = r.store.nextID("req")
	}
	req.CreatedAt = time.Now()
	r.store.requests[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) FindByID(id string) (*models.ServiceRequest, error) {
	req, ok := r.store.requests[id]
	if !ok {
		return nil, repositories.ErrRequestNotFound
	}
	c := *req
	return &c, nil
}

func (r *fakeRequestRepo) FindByRequester(requesterID string, criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.store.requests {
		if req.RequesterID == requesterID {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindByProvider(providerID string, criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.store.requests {
		if req.ProviderID != nil && *req.ProviderID == providerID {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) FindOpenByCategory(category string, criteria repositories.RequestCriteria) ([]models.ServiceRequest, int64, error) {
	var out []models.ServiceRequest
	for _, req := range r.store.requests {
		if req.Category == category &&
			(req.Status == models.RequestStatusPending || req.Status == models.RequestStatusQuoted) {
			out = append(out, *req)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeRequestRepo) UpdateStatus(tx *gorm.DB, id string, from, to models.RequestStatus, updates map[string]interface{}) error {
	req, ok := r.store.requests[id]
	if !ok || req.Status != from {
		return repositories.ErrRequestNotFound
	}
	req.Status = to
	if v, ok := updates["provider_id"]; ok {
		pid := v.(string)
		req.ProviderID = &pid
	}
	if v, ok := updates["price"]; ok {
		price := v.(float64)
		req.Price = &price
	}
	if v, ok := updates["completed_at"]; ok {
		t := v.(time.Time)
		req.CompletedAt = &t
	}
	if v, ok := updates["cancelled_at"]; ok {
		t := v.(time.Time)
		req.CancelledAt = &t
	}
	return nil
}

func (r *fakeRequestRepo) Update(req *models.ServiceRequest) error {
	r.store.requests[req.ID] = req
	return nil
}

func (r *fakeRequestRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.store.transaction(fn)
}

// ---- ProposalRepository ----

type fakeProposalRepo struct{ store *fakeStore }

func (r *fakeProposalRepo) Create(tx *gorm.DB, proposal *models.Proposal) error {
	if proposal.ID == "" {
		proposal.ID = r.store.nextID("prop")
	}
	proposal.CreatedAt = time.Now()
	r.store.proposals[proposal.ID] = proposal
	return nil
}

func (r *fakeProposalRepo) FindByID(id string) (*models.Proposal, error) {
	p, ok := r.store.proposals[id]
	if !ok {
		return nil, repositories.ErrProposalNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeProposalRepo) FindByRequest(requestID string) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range r.store.proposals {
		if p.ServiceRequestID == requestID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) FindByProvider(providerID string) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range r.store.proposals {
		if p.ProviderID == providerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) FindByClient(clientID string) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range r.store.proposals {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) UpdateStatus(tx *gorm.DB, id string, from, to models.ProposalStatus, updates map[string]interface{}) error {
	p, ok := r.store.proposals[id]
	if !ok || p.Status != from {
		return repositories.ErrProposalNotFound
	}
	p.Status = to
	if v, ok := updates["paid_at"]; ok {
		t := v.(time.Time)
		p.PaidAt = &t
	}
	return nil
}

func (r *fakeProposalRepo) RejectSiblings(tx *gorm.DB, requestID, acceptedID string) error {
	for _, p := range r.store.proposals {
		if p.ServiceRequestID == requestID && p.ID != acceptedID && p.Status == models.ProposalStatusPending {
			p.Status = models.ProposalStatusRejected
		}
	}
	return nil
}

func (r *fakeProposalRepo) SetExternalPayment(tx *gorm.DB, id, chargeID string) error {
	p, ok := r.store.proposals[id]
	if !ok {
		return repositories.ErrProposalNotFound
	}
	p.ExternalPaymentID = &chargeID
	return nil
}

func (r *fakeProposalRepo) CreatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error {
	if payment.ID == "" {
		payment.ID = r.store.nextID("pay")
	}
	r.store.payments[payment.ID] = payment
	return nil
}

func (r *fakeProposalRepo) FindPaymentByChargeID(chargeID string) (*models.PaymentTransaction, error) {
	for _, p := range r.store.payments {
		if p.ChargeID == chargeID {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

func (r *fakeProposalRepo) FindPaymentByProposal(proposalID string) (*models.PaymentTransaction, error) {
	for _, p := range r.store.payments {
		if p.ProposalID == proposalID {
			c := *p
			return &c, nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

func (r *fakeProposalRepo) FindPendingPayments(limit int) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, p := range r.store.payments {
		if p.Status == models.PaymentStatusPending {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProposalRepo) UpdatePayment(tx *gorm.DB, payment *models.PaymentTransaction) error {
	r.store.payments[payment.ID] = payment
	return nil
}

func (r *fakeProposalRepo) Transaction(fn func(tx *gorm.DB) error) error {
	return r.store.transaction(fn)
}

// ---- NotificationRepository ----

type fakeNotificationRepo struct{ store *fakeStore }

func (r *fakeNotificationRepo) add(userID, typ, title, refID string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		ReferenceID: refID,
	}
	n.ID = r.store.nextID("ntf")
	n.CreatedAt = time.Now()
	r.store.notices = append(r.store.notices, n)
	return n, nil
}

func (r *fakeNotificationRepo) CreateNotification(tx *gorm.DB, n *models.Notification) error {
	n.ID = r.store.nextID("ntf")
	r.store.notices = append(r.store.notices, n)
	return nil
}

func (r *fakeNotificationRepo) FindNotificationByID(id string) (*models.Notification, error) {
	for _, n := range r.store.notices {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) FindUserNotifications(userID string, criteria repositories.NotificationCriteria) ([]models.Notification, int64, error) {
	var out []models.Notification
	for _, n := range r.store.notices {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(notificationID, userID string) error {
	for _, n := range r.store.notices {
		if n.ID == notificationID && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return repositories.ErrNotificationNotFound
}

func (r *fakeNotificationRepo) MarkAllAsRead(userID string) error {
	for _, n := range r.store.notices {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (r *fakeNotificationRepo) GetUnreadCount(userID string) (int64, error) {
	var count int64
	for _, n := range r.store.notices {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) DeleteNotification(id, userID string) error { return nil }
func (r *fakeNotificationRepo) CleanOldNotifications(days int) error       { return nil }

func (r *fakeNotificationRepo) CreateNewProposalNotification(tx *gorm.DB, clientID, requestID, proposalID string, total float64) (*models.Notification, error) {
	return r.add(clientID, repositories.NotificationTypeNewProposal, "Nova proposta recebida", proposalID)
}

func (r *fakeNotificationRepo) CreateProposalStatusNotification(tx *gorm.DB, providerID, proposalID string, status models.ProposalStatus) (*models.Notification, error) {
	return r.add(providerID, repositories.NotificationTypeProposalStatus, string(status), proposalID)
}

func (r *fakeNotificationRepo) CreateRequestStatusNotification(tx *gorm.DB, userID, requestID string, status models.RequestStatus) (*models.Notification, error) {
	return r.add(userID, repositories.NotificationTypeRequestStatus, string(status), requestID)
}

func (r *fakeNotificationRepo) CreatePaymentNotification(tx *gorm.DB, userID, proposalID string, amount float64) (*models.Notification, error) {
	return r.add(userID, repositories.NotificationTypePayment, "Pagamento confirmado", proposalID)
}

// ---- StatsRepository ----

type fakeStatsRepo struct{ store *fakeStore }

func (r *fakeStatsRepo) row(userID string) *models.ProviderStats {
	st, ok := r.store.stats[userID]
	if !ok {
		st = &models.ProviderStats{UserID: userID}
		r.store.stats[userID] = st
	}
	return st
}

func (r *fakeStatsRepo) FindByUser(userID string) (*models.ProviderStats, error) {
	st, ok := r.store.stats[userID]
	if !ok {
		return nil, repositories.ErrStatsNotFound
	}
	c := *st
	return &c, nil
}

func (r *fakeStatsRepo) IncrementCompletedJobs(userID string) error {
	r.row(userID).CompletedJobs++
	return nil
}

func (r *fakeStatsRepo) RecordLocationReport(userID string) error {
	st := r.row(userID)
	st.LocationReports++
	st.IsOnline = true
	now := time.Now()
	st.LastSeenAt = &now
	return nil
}

func (r *fakeStatsRepo) MarkOnline(userID string, online bool) error {
	r.row(userID).IsOnline = online
	return nil
}

func (r *fakeStatsRepo) MarkStaleOffline(threshold time.Duration) (int64, error) { return 0, nil }

func (r *fakeStatsRepo) FindOnlineProviders(role models.UserRole, limit int) ([]repositories.ProviderListing, error) {
	var listings []repositories.ProviderListing
	for userID, st := range r.store.stats {
		if !st.IsOnline {
			continue
		}
		user, ok := r.store.users[userID]
		if !ok || user.Role != role {
			continue
		}
		listing := repositories.ProviderListing{
			UserID:   userID,
			Role:     user.Role,
			IsOnline: true,
			Rating:   st.Rating,
		}
		if profile, ok := r.store.profiles[userID]; ok {
			listing.Name = profile.Name
			listing.City = profile.City
			listing.Latitude = profile.Latitude
			listing.Longitude = profile.Longitude
		}
		listings = append(listings, listing)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Rating > listings[j].Rating })
	if limit > 0 && len(listings) > limit {
		listings = listings[:limit]
	}
	return listings, nil
}

func (r *fakeStatsRepo) CreateReview(review *models.Review) error {
	for _, existing := range r.store.reviews {
		if existing.ServiceRequestID == review.ServiceRequestID {
			return repositories.ErrDuplicateReview
		}
	}
	if review.Rating < 1 || review.Rating > 5 {
		return repositories.ErrInvalidRatingSpan
	}
	review.ID = r.store.nextID("rev")
	r.store.reviews[review.ID] = review

	st := r.row(review.ProviderID)
	st.Rating = (st.Rating*float64(st.RatingCount) + float64(review.Rating)) / float64(st.RatingCount+1)
	st.RatingCount++
	return nil
}

func (r *fakeStatsRepo) FindReviewByRequest(requestID string) (*models.Review, error) {
	for _, rev := range r.store.reviews {
		if rev.ServiceRequestID == requestID {
			return rev, nil
		}
	}
	return nil, repositories.ErrReviewNotFound
}

func (r *fakeStatsRepo) FindReviewsByProvider(providerID string, limit int) ([]models.Review, error) {
	var out []models.Review
	for _, rev := range r.store.reviews {
		if rev.ProviderID == providerID {
			out = append(out, *rev)
		}
	}
	return out, nil
}

// ---- UserRepository ----

type fakeUserRepo struct{ store *fakeStore }

func (r *fakeUserRepo) Create(user *models.User) error {
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return repositories.ErrUserAlreadyExists
		}
	}
	if user.ID == "" {
		user.ID = r.store.nextID("user")
	}
	user.CreatedAt = time.Now()
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(id string) (*models.User, error) {
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	c := *u
	if p, ok := r.store.profiles[id]; ok {
		pc := *p
		c.Profile = &pc
	}
	return &c, nil
}

func (r *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	for _, u := range r.store.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Update(user *models.User) error {
	r.store.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Delete(id string) error {
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) CreateProfile(profile *models.Profile) error {
	if profile.ID == "" {
		profile.ID = r.store.nextID("prof")
	}
	r.store.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeUserRepo) FindProfileByUserID(userID string) (*models.Profile, error) {
	p, ok := r.store.profiles[userID]
	if !ok {
		return nil, repositories.ErrProfileNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeUserRepo) UpdateProfile(profile *models.Profile) error {
	r.store.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeUserRepo) UpdateLastPosition(userID string, lat, lng float64) error {
	p, ok := r.store.profiles[userID]
	if !ok {
		return repositories.ErrProfileNotFound
	}
	now := time.Now()
	p.Latitude = &lat
	p.Longitude = &lng
	p.LocatedAt = &now
	return nil
}

// ---- RefreshTokenRepository ----

type fakeTokenRepo struct{ store *fakeStore }

func (r *fakeTokenRepo) Create(token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = r.store.nextID("tok")
	}
	r.store.tokens[token.Token] = token
	return nil
}

func (r *fakeTokenRepo) FindByToken(token string) (*models.RefreshToken, error) {
	t, ok := r.store.tokens[token]
	if !ok {
		return nil, repositories.ErrTokenNotFound
	}
	return t, nil
}

func (r *fakeTokenRepo) Delete(token string) error {
	if _, ok := r.store.tokens[token]; !ok {
		return repositories.ErrTokenNotFound
	}
	delete(r.store.tokens, token)
	return nil
}

func (r *fakeTokenRepo) DeleteByUser(userID string) error { return nil }
func (r *fakeTokenRepo) DeleteExpired() (int64, error)    { return 0, nil }

// ---- SubscriptionRepository ----

type fakeSubscriptionRepo struct{ store *fakeStore }

func (r *fakeSubscriptionRepo) CreatePlan(plan *models.SubscriptionPlan) error {
	if plan.ID == "" {
		plan.ID = r.store.nextID("plan")
	}
	r.store.plans[plan.ID] = plan
	return nil
}

func (r *fakeSubscriptionRepo) FindPlanByID(id string) (*models.SubscriptionPlan, error) {
	p, ok := r.store.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	c := *p
	return &c, nil
}

func (r *fakeSubscriptionRepo) FindActivePlans(role models.UserRole) ([]models.SubscriptionPlan, error) {
	var out []models.SubscriptionPlan
	for _, p := range r.store.plans {
		if !p.IsActive {
			continue
		}
		if role != "" && p.Role != role && p.Role != "" {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) UpdatePlan(plan *models.SubscriptionPlan) error {
	r.store.plans[plan.ID] = plan
	return nil
}

func (r *fakeSubscriptionRepo) DeletePlan(id string) error {
	delete(r.store.plans, id)
	return nil
}

func (r *fakeSubscriptionRepo) CreateSubscription(sub *models.UserSubscription) error {
	for _, s := range r.store.subs {
		if s.UserID == sub.UserID && s.Status == models.SubscriptionStatusActive {
			return repositories.ErrActiveSubscription
		}
	}
	if sub.ID == "" {
		sub.ID = r.store.nextID("sub")
	}
	r.store.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubscriptionRepo) FindActiveByUser(userID string) (*models.UserSubscription, error) {
	for _, s := range r.store.subs {
		if s.UserID == userID && s.Status == models.SubscriptionStatusActive {
			c := *s
			if p, ok := r.store.plans[s.PlanID]; ok {
				c.Plan = *p
			}
			return &c, nil
		}
	}
	return nil, repositories.ErrSubscriptionNotFound
}

func (r *fakeSubscriptionRepo) FindByUser(userID string) ([]models.UserSubscription, error) {
	var out []models.UserSubscription
	for _, s := range r.store.subs {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeSubscriptionRepo) Update(sub *models.UserSubscription) error {
	r.store.subs[sub.ID] = sub
	return nil
}

func (r *fakeSubscriptionRepo) ExpireLapsed() (int64, error) { return 0, nil }

// ---- Gateway & Pusher ----

type fakeGateway struct {
	mu       sync.Mutex
	charges  map[string]*payment.Charge
	requests []payment.ChargeRequest
	failNext bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{charges: map[string]*payment.Charge{}}
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req payment.ChargeRequest) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failNext {
		g.failNext = false
		return nil, fmt.Errorf("gateway unavailable")
	}
	g.requests = append(g.requests, req)
	charge := &payment.Charge{
		ID:          "chg_" + req.IdempotencyKey,
		Status:      "PENDING",
		Amount:      req.Amount,
		InvoiceURL:  "https://pay.example/" + req.IdempotencyKey,
		ExternalRef: req.ExternalRef,
	}
	g.charges[charge.ID] = charge
	return charge, nil
}

func (g *fakeGateway) GetCharge(ctx context.Context, chargeID string) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("charge not found")
	}
	return c, nil
}

func (g *fakeGateway) RefundCharge(ctx context.Context, chargeID string) (*payment.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("charge not found")
	}
	c.Status = "REFUNDED"
	return c, nil
}

type fakePusher struct {
	mu     sync.Mutex
	pushed map[string][]*models.Notification
}

func newFakePusher() *fakePusher {
	return &fakePusher{pushed: map[string][]*models.Notification{}}
}

func (p *fakePusher) Push(userID string, n *models.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed[userID] = append(p.pushed[userID], n)
}

// ---- Mailer ----

type sentAcceptedMail struct {
	To         string
	Provider   string
	Total      float64
	InvoiceURL string
}

type sentReceiptMail struct {
	To       string
	Amount   float64
	ChargeID string
}

type fakeMailer struct {
	mu       sync.Mutex
	welcomes []string
	accepted []sentAcceptedMail
	receipts []sentReceiptMail
}

func (m *fakeMailer) SendWelcome(to, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.welcomes = append(m.welcomes, to)
	return nil
}

func (m *fakeMailer) SendProposalAccepted(to, providerName string, totalValue float64, invoiceURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accepted = append(m.accepted, sentAcceptedMail{To: to, Provider: providerName, Total: totalValue, InvoiceURL: invoiceURL})
	return nil
}

func (m *fakeMailer) SendPaymentReceipt(to string, amount float64, chargeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.receipts = append(m.receipts, sentReceiptMail{To: to, Amount: amount, ChargeID: chargeID})
	return nil
}

// ---- VehicleRepository ----

type fakeVehicleRepo struct{ store *fakeStore }

func (r *fakeVehicleRepo) Create(vehicle *models.Vehicle) error {
	if vehicle.ID == "" {
		vehicle.ID = r.store.nextID("veh")
	}
	r.store.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) FindByID(id string) (*models.Vehicle, error) {
	v, ok := r.store.vehicles[id]
	if !ok {
		return nil, repositories.ErrVehicleNotFound
	}
	c := *v
	return &c, nil
}

func (r *fakeVehicleRepo) FindByOwner(ownerID string) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range r.store.vehicles {
		if v.OwnerID == ownerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *fakeVehicleRepo) Update(vehicle *models.Vehicle) error {
	r.store.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *fakeVehicleRepo) Delete(id, ownerID string) error {
	v, ok := r.store.vehicles[id]
	if !ok || v.OwnerID != ownerID {
		return repositories.ErrVehicleNotFound
	}
	delete(r.store.vehicles, id)
	return nil
}

func (r *fakeVehicleRepo) PlateExists(plate string) (bool, error) {
	for _, v := range r.store.vehicles {
		if v.Plate == plate {
			return true, nil
		}
	}
	return false, nil
}
