// internal/service/activation_service.go
package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/unclebandit/smsleopard-activation/internal/engine"
	appErrors "github.com/unclebandit/smsleopard-activation/internal/errors"
	"github.com/unclebandit/smsleopard-activation/internal/logger"
	"github.com/unclebandit/smsleopard-activation/internal/model"
	"github.com/unclebandit/smsleopard-activation/internal/pending"
	"github.com/unclebandit/smsleopard-activation/internal/queue"
	"github.com/unclebandit/smsleopard-activation/internal/repository"
)

// StatsCache is satisfied by cache.StatsCache.
type StatsCache interface {
	Get(ctx context.Context, tenantID int) (*model.ClientPopulationStats, error)
	Set(ctx context.Context, tenantID int, stats *model.ClientPopulationStats) error
	Invalidate(ctx context.Context, tenantID int) error
}

type ActivationService struct {
	EventRepo        repository.EventRepositoryInterface
	ClientRepo       repository.ClientRepositoryInterface
	SubscriptionRepo repository.SubscriptionRepositoryInterface
	Pending          pending.Store
	Queue            queue.Queue
	Cache            StatsCache // optional
	PendingTTL       time.Duration
	Now              func() time.Time
	NewID            func() string
}

// DefaultPendingTTL applies when PendingTTL is not set.
const DefaultPendingTTL = 15 * time.Minute

// Decision values returned to clients. The first two mirror engine outcomes.
const (
	DecisionProceed           = string(engine.OutcomeProceed)
	DecisionNeedsConfirmation = string(engine.OutcomeNeedsConfirmation)
	DecisionConfirmed         = "confirmed"
	DecisionCancelled         = "cancelled"
)

type ActivationResult struct {
	Decision    string `json:"decision"`
	RequestID   string `json:"request_id,omitempty"`
	EventIDs    []int  `json:"event_ids"`
	SMSRequired int    `json:"sms_required"`
	Available   int    `json:"available"`
	PeriodLabel string `json:"period_label,omitempty"`
	Activated   int    `json:"activated"`
}

type QuotaView struct {
	model.QuotaState
	Plan        string `json:"plan"`
	PeriodLabel string `json:"period_label"`
}

type EstimateResult struct {
	Audience    model.AudienceRule `json:"audience_override"`
	SMSRequired int                `json:"sms_required"`
	Quota       model.QuotaState   `json:"quota"`
	CanActivate bool               `json:"can_activate"`
}

type EventEstimate struct {
	model.Event
	SMSRequired int `json:"sms_required"`
}

func (s *ActivationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *ActivationService) pendingTTL() time.Duration {
	if s.PendingTTL > 0 {
		return s.PendingTTL
	}
	return DefaultPendingTTL
}

func (s *ActivationService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

// PopulationStats reads through the cache when one is configured. Cache
// failures are logged and never fail the request.
func (s *ActivationService) PopulationStats(ctx context.Context, tenantID int) (*model.ClientPopulationStats, error) {
	log := logger.WithTenant(tenantID)

	if s.Cache != nil {
		stats, err := s.Cache.Get(ctx, tenantID)
		if err != nil {
			log.WithError(err).Warn("⚠️ Stats cache read failed")
		} else if stats != nil {
			return stats, nil
		}
	}

	stats, err := s.ClientRepo.PopulationStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, tenantID, stats); err != nil {
			log.WithError(err).Warn("⚠️ Stats cache write failed")
		}
	}
	return stats, nil
}

func (s *ActivationService) Quota(ctx context.Context, tenantID int) (*QuotaView, error) {
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &QuotaView{
		QuotaState:  sub.Quota(),
		Plan:        sub.Plan,
		PeriodLabel: sub.PeriodLabel(),
	}, nil
}

// Estimate prices a single audience rule against the tenant's quota.
func (s *ActivationService) Estimate(ctx context.Context, tenantID int, rule model.AudienceRule) (*EstimateResult, error) {
	stats, err := s.PopulationStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	quota, err := s.Quota(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	required := engine.EstimateRequiredRecipients(rule, *stats)
	return &EstimateResult{
		Audience:    rule,
		SMSRequired: required,
		Quota:       quota.QuotaState,
		CanActivate: engine.CanActivate(required, quota.QuotaState),
	}, nil
}

func (s *ActivationService) GetEvent(ctx context.Context, tenantID, eventID int) (*EventEstimate, error) {
	ev, err := s.EventRepo.GetByID(ctx, tenantID, eventID)
	if err != nil {
		return nil, err
	}
	stats, err := s.PopulationStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &EventEstimate{
		Event:       *ev,
		SMSRequired: engine.EstimateRequiredRecipients(ev.Audience, *stats),
	}, nil
}

// ListEvents fetches events with pagination
func (s *ActivationService) ListEvents(ctx context.Context, tenantID int, kind string, page, pageSize int) ([]model.Event, map[string]int, error) {
	page, pageSize, offset := pageBounds(page, pageSize)

	events, total, err := s.EventRepo.ListByTenant(ctx, tenantID, kind, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return events, paginationInfo(page, pageSize, total), nil
}

// ListClients fetches a tenant's clients with pagination
func (s *ActivationService) ListClients(ctx context.Context, tenantID int, page, pageSize int) ([]model.Client, map[string]int, error) {
	page, pageSize, offset := pageBounds(page, pageSize)

	clients, total, err := s.ClientRepo.ListByTenant(ctx, tenantID, offset, pageSize)
	if err != nil {
		return nil, nil, err
	}
	return clients, paginationInfo(page, pageSize, total), nil
}

func (s *ActivationService) GetClient(ctx context.Context, tenantID, clientID int) (*model.Client, error) {
	return s.ClientRepo.GetByID(ctx, tenantID, clientID)
}

// pageBounds clamps page and pageSize and derives the row offset. page is
// capped so the offset cannot overflow.
func pageBounds(page, pageSize int) (int, int, int) {
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize, (page - 1) * pageSize
}

func paginationInfo(page, pageSize, total int) map[string]int {
	return map[string]int{
		"page":        page,
		"page_size":   pageSize,
		"total_count": total,
		"total_pages": (total + pageSize - 1) / pageSize,
	}
}

// RequestActivation plans a batch activation. Batches that fit the quota are
// activated immediately; others are parked until Confirm or Cancel.
func (s *ActivationService) RequestActivation(ctx context.Context, tenantID int, eventIDs []int, periodLabel string) (*ActivationResult, error) {
	ids := uniqueIDs(eventIDs)
	if len(ids) == 0 {
		return nil, appErrors.ErrEmptySelection
	}
	log := logger.WithTenant(tenantID)

	targets, err := s.EventRepo.ListByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	stats, err := s.PopulationStats(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sub, err := s.SubscriptionRepo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if periodLabel == "" {
		periodLabel = sub.PeriodLabel()
	}
	quota := sub.Quota()

	flow := engine.NewFlow()
	decision, err := flow.Plan(targets, *stats, quota, periodLabel)
	if err != nil {
		return nil, err
	}

	result := &ActivationResult{
		Decision:    string(decision.Outcome),
		RequestID:   s.newID(),
		EventIDs:    decision.TargetIDs,
		SMSRequired: decision.SMSRequired,
		Available:   quota.Available,
		PeriodLabel: decision.PeriodLabel,
	}

	if flow.Commits() {
		n, err := s.commit(ctx, tenantID, result.RequestID, decision, false)
		if err != nil {
			return nil, err
		}
		result.Activated = n
		return result, nil
	}

	now := s.now()
	req := &model.ActivationRequest{
		ID:          result.RequestID,
		TenantID:    tenantID,
		EventIDs:    decision.TargetIDs,
		PeriodLabel: decision.PeriodLabel,
		SMSRequired: decision.SMSRequired,
		Available:   quota.Available,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.pendingTTL()),
	}
	if err := s.Pending.Save(ctx, req); err != nil {
		return nil, err
	}

	log.WithField("request_id", req.ID).Infof("⏸️ Activation needs confirmation: %d SMS required, %d available", req.SMSRequired, req.Available)
	return result, nil
}

// Confirm activates a parked batch despite the quota overrun. The request is
// claimed before anything is activated, so only one confirmation commits.
func (s *ActivationService) Confirm(ctx context.Context, tenantID int, requestID string) (*ActivationResult, error) {
	req, err := s.claimPending(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}

	flow := engine.ResumeFlow(requestDecision(req))
	if err := flow.Confirm(); err != nil {
		return nil, err
	}

	n, err := s.commit(ctx, tenantID, req.ID, flow.Decision(), true)
	if err != nil {
		// put it back so the user can retry before it expires
		if restoreErr := s.Pending.Save(ctx, req); restoreErr != nil {
			logger.WithTenant(tenantID).WithError(restoreErr).Warn("⚠️ Failed to restore pending request")
		}
		return nil, err
	}

	return &ActivationResult{
		Decision:    DecisionConfirmed,
		RequestID:   req.ID,
		EventIDs:    req.EventIDs,
		SMSRequired: req.SMSRequired,
		Available:   req.Available,
		PeriodLabel: req.PeriodLabel,
		Activated:   n,
	}, nil
}

// Cancel discards a parked batch. Nothing is activated.
func (s *ActivationService) Cancel(ctx context.Context, tenantID int, requestID string) (*ActivationResult, error) {
	req, err := s.claimPending(ctx, tenantID, requestID)
	if err != nil {
		return nil, err
	}

	flow := engine.ResumeFlow(requestDecision(req))
	if err := flow.Cancel(); err != nil {
		return nil, err
	}

	logger.WithTenant(tenantID).WithField("request_id", req.ID).Info("Activation cancelled")
	return &ActivationResult{
		Decision:    DecisionCancelled,
		RequestID:   req.ID,
		EventIDs:    req.EventIDs,
		SMSRequired: req.SMSRequired,
		Available:   req.Available,
		PeriodLabel: req.PeriodLabel,
	}, nil
}

// Deactivate switches events off. It never consults the quota.
func (s *ActivationService) Deactivate(ctx context.Context, tenantID int, eventIDs []int) (int, error) {
	ids := uniqueIDs(eventIDs)
	if len(ids) == 0 {
		return 0, appErrors.ErrEmptySelection
	}
	n, err := s.EventRepo.SetActive(ctx, tenantID, ids, false)
	if err != nil {
		return 0, err
	}
	logger.WithTenant(tenantID).Infof("Deactivated %d events", n)
	return n, nil
}

// RefreshStats drops every tenant's cached population snapshot.
func (s *ActivationService) RefreshStats(ctx context.Context) error {
	if s.Cache == nil {
		return nil
	}
	tenants, err := s.SubscriptionRepo.ListTenantIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range tenants {
		if err := s.Cache.Invalidate(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *ActivationService) loadPending(ctx context.Context, tenantID int, requestID string) (*model.ActivationRequest, error) {
	req, err := s.Pending.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TenantID != tenantID || req.Expired(s.now()) {
		return nil, appErrors.NewActivationNotFound(requestID)
	}
	return req, nil
}

// claimPending checks ownership and expiry, then removes the request from the
// store. A request already claimed by a concurrent call is reported as not found.
func (s *ActivationService) claimPending(ctx context.Context, tenantID int, requestID string) (*model.ActivationRequest, error) {
	if _, err := s.loadPending(ctx, tenantID, requestID); err != nil {
		return nil, err
	}
	req, err := s.Pending.Take(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TenantID != tenantID || req.Expired(s.now()) {
		return nil, appErrors.NewActivationNotFound(requestID)
	}
	return req, nil
}

func (s *ActivationService) commit(ctx context.Context, tenantID int, requestID string, decision engine.ActivationDecision, confirmed bool) (int, error) {
	log := logger.WithTenant(tenantID).WithField("request_id", requestID)

	n, err := s.EventRepo.SetActive(ctx, tenantID, decision.TargetIDs, true)
	if err != nil {
		return 0, err
	}

	msg := model.ActivationCommitted{
		RequestID:   requestID,
		TenantID:    tenantID,
		EventIDs:    decision.TargetIDs,
		SMSRequired: decision.SMSRequired,
		Confirmed:   confirmed,
	}
	if s.Queue != nil {
		if err := s.Queue.Publish(queue.TopicEventActivations, msg); err != nil {
			log.WithError(err).Warn("⚠️ Failed to publish activation")
		}
	}

	log.Infof("✅ Activated %d of %d events (%d SMS)", n, len(decision.TargetIDs), decision.SMSRequired)
	return n, nil
}

func requestDecision(req *model.ActivationRequest) engine.ActivationDecision {
	return engine.ActivationDecision{
		Outcome:     engine.OutcomeNeedsConfirmation,
		TargetIDs:   req.EventIDs,
		SMSRequired: req.SMSRequired,
		PeriodLabel: req.PeriodLabel,
	}
}

func uniqueIDs(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
