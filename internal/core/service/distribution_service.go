package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/aid-distribution/internal/core/domain"
	"github.com/rl1809/aid-distribution/internal/core/eligibility"
	"github.com/rl1809/aid-distribution/internal/keylock"
	"github.com/rl1809/aid-distribution/internal/port"
)

var (
	ErrDuplicateRequest = errors.New("duplicate request")
	ErrUnknownReference = errors.New("unknown center, package, or household")
)

type OutcomeKind string

const (
	OutcomeSuccess            OutcomeKind = "success"
	OutcomeIneligible         OutcomeKind = "ineligible"
	OutcomeInsufficientStock  OutcomeKind = "insufficient_stock"
	OutcomeNotFound           OutcomeKind = "not_found"
	OutcomeConcurrencyTimeout OutcomeKind = "concurrency_timeout"
)

// CooldownScope selects whether the cooldown window applies to the
// requested package only (the default) or to any package the
// household received.
type CooldownScope string

const (
	ScopePerPackage CooldownScope = "per_package"
	ScopeAnyPackage CooldownScope = "any_package"
)

type Config struct {
	DefaultCooldownDays int
	CooldownScope       CooldownScope
	LockTimeout         time.Duration
}

func DefaultConfig() Config {
	return Config{
		DefaultCooldownDays: 30,
		CooldownScope:       ScopePerPackage,
		LockTimeout:         3 * time.Second,
	}
}

type DistributeRequest struct {
	// RequestID is an optional idempotency key; a duplicate is
	// rejected before any side effect.
	RequestID   string
	CenterID    int64
	PackageID   int64
	HouseholdID int64
	Quantity    int
}

// DistributeResult is the terminal outcome of one request. Business
// outcomes (ineligible, sold out, unknown ids, lock timeout) are
// values, not errors; only infrastructure failures surface as errors.
type DistributeResult struct {
	Kind          OutcomeKind
	Message       string
	LogID         string
	DaysSinceLast *int
}

type EligibilityResult struct {
	Eligible      bool
	Message       string
	DaysSinceLast *int
}

// DistributionService composes the eligibility evaluator, the
// inventory ledger, and the distribution log into one all-or-nothing
// operation per request.
type DistributionService struct {
	directory port.DirectoryRepository
	store     port.InventoryStore
	logs      port.DistributionLogRepository
	ledger    *Ledger

	// householdLocks serializes the eligibility-check-then-append
	// sequence per (household, package), independent of the
	// inventory key locks. Without it two concurrent requests for
	// one household could both pass eligibility and both commit
	// inside the cooldown window.
	householdLocks *keylock.Registry

	cfg Config
	now func() time.Time
}

func NewDistributionService(
	directory port.DirectoryRepository,
	store port.InventoryStore,
	logs port.DistributionLogRepository,
	cfg Config,
) *DistributionService {
	if cfg.DefaultCooldownDays <= 0 {
		cfg.DefaultCooldownDays = 30
	}
	if cfg.CooldownScope == "" {
		cfg.CooldownScope = ScopePerPackage
	}
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 3 * time.Second
	}

	return &DistributionService{
		directory:      directory,
		store:          store,
		logs:           logs,
		ledger:         NewLedger(store, cfg.LockTimeout),
		householdLocks: keylock.NewRegistry(),
		cfg:            cfg,
		now:            time.Now,
	}
}

// WithClock replaces the time source; tests inject a fixed clock so
// eligibility stays deterministic.
func (s *DistributionService) WithClock(now func() time.Time) *DistributionService {
	s.now = now
	return s
}

// Ledger exposes the inventory ledger for callers that only restock
// or read quantities.
func (s *DistributionService) Ledger() *Ledger {
	return s.ledger
}

// Distribute runs the full transaction: validate references, check
// eligibility, reserve stock, append the log entry. Exactly one
// terminal outcome is returned per request; a reservation whose log
// append fails is rolled back so that successful reservations and log
// entries always pair one-to-one.
func (s *DistributionService) Distribute(ctx context.Context, req DistributeRequest) (DistributeResult, error) {
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	if req.RequestID != "" {
		ok, err := s.store.SetIdempotency(ctx, "distribution:"+req.RequestID)
		if err != nil {
			return DistributeResult{}, fmt.Errorf("idempotency check failed: %w", err)
		}
		if !ok {
			return DistributeResult{}, ErrDuplicateRequest
		}
	}

	pkg, res, ok, err := s.validateReferences(ctx, req.CenterID, req.PackageID, req.HouseholdID)
	if err != nil {
		return DistributeResult{}, err
	}
	if !ok {
		return s.finish(res), nil
	}

	hhKey := fmt.Sprintf("household:%d:%d", req.HouseholdID, req.PackageID)
	release, err := s.householdLocks.Acquire(ctx, hhKey, s.cfg.LockTimeout)
	if errors.Is(err, keylock.ErrTimeout) {
		return s.finish(DistributeResult{
			Kind:    OutcomeConcurrencyTimeout,
			Message: "could not serialize request for this household in time, please retry",
		}), nil
	}
	if err != nil {
		return DistributeResult{}, err
	}
	defer release()

	elig, err := s.evaluate(ctx, pkg, req.HouseholdID)
	if err != nil {
		return DistributeResult{}, err
	}
	if !elig.Eligible {
		return s.finish(DistributeResult{
			Kind:          OutcomeIneligible,
			Message:       "household not eligible: " + elig.Reason,
			DaysSinceLast: elig.DaysSinceLast,
		}), nil
	}

	key := domain.InventoryKey{CenterID: req.CenterID, PackageID: req.PackageID}
	if err := s.ledger.Reserve(ctx, key, req.Quantity); err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return s.finish(DistributeResult{
				Kind:    OutcomeNotFound,
				Message: "no inventory record for this package at this center",
			}), nil
		case errors.Is(err, ErrInsufficientStock):
			return s.finish(DistributeResult{
				Kind:    OutcomeInsufficientStock,
				Message: "insufficient stock at this center",
			}), nil
		case errors.Is(err, ErrLockTimeout):
			return s.finish(DistributeResult{
				Kind:    OutcomeConcurrencyTimeout,
				Message: "inventory is busy, please retry",
			}), nil
		default:
			return DistributeResult{}, err
		}
	}

	entry := domain.LogEntry{
		LogID:            uuid.New().String(),
		HouseholdID:      req.HouseholdID,
		PackageID:        req.PackageID,
		CenterID:         req.CenterID,
		Quantity:         req.Quantity,
		DistributionDate: s.now(),
		Status:           domain.LogStatusSuccess,
		Notes:            "distributed via api",
	}

	logID, err := s.logs.Append(ctx, entry)
	if err != nil {
		// Compensating action: the reservation must not outlive a
		// failed append, otherwise stock is lost without a record.
		rollbacksTotal.Inc()
		if rbErr := s.ledger.Release(ctx, key, req.Quantity); rbErr != nil {
			logrus.WithFields(logrus.Fields{
				"center_id":    req.CenterID,
				"package_id":   req.PackageID,
				"household_id": req.HouseholdID,
				"quantity":     req.Quantity,
				"append_err":   err.Error(),
				"rollback_err": rbErr.Error(),
			}).Error("CRITICAL: log append and rollback both failed, inventory inconsistent")
			return DistributeResult{}, fmt.Errorf("append failed and rollback failed (%v): %w", rbErr, err)
		}

		logrus.WithFields(logrus.Fields{
			"center_id":  req.CenterID,
			"package_id": req.PackageID,
		}).Warn("rolled back reservation after failed log append")
		return DistributeResult{}, fmt.Errorf("append distribution log: %w", err)
	}

	return s.finish(DistributeResult{
		Kind:          OutcomeSuccess,
		Message:       fmt.Sprintf("successfully distributed %d package(s)", req.Quantity),
		LogID:         logID,
		DaysSinceLast: elig.DaysSinceLast,
	}), nil
}

// CheckEligibility is the read-only preflight for step one of
// Distribute. No locks, no side effects; calling it twice with no
// intervening distribution returns identical results.
func (s *DistributionService) CheckEligibility(ctx context.Context, centerID, packageID, householdID int64) (EligibilityResult, error) {
	pkg, res, ok, err := s.validateReferences(ctx, centerID, packageID, householdID)
	if err != nil {
		return EligibilityResult{}, err
	}
	if !ok {
		return EligibilityResult{Eligible: false, Message: res.Message}, nil
	}

	elig, err := s.evaluate(ctx, pkg, householdID)
	if err != nil {
		return EligibilityResult{}, err
	}

	return EligibilityResult{
		Eligible:      elig.Eligible,
		Message:       elig.Reason,
		DaysSinceLast: elig.DaysSinceLast,
	}, nil
}

// Restock adds stock for a (center, package) pair, creating the
// inventory record when it does not exist yet.
func (s *DistributionService) Restock(ctx context.Context, centerID, packageID int64, quantity int) (int, error) {
	center, err := s.directory.GetCenter(ctx, centerID)
	if err != nil {
		return 0, fmt.Errorf("lookup center %d: %w", centerID, err)
	}
	if center == nil {
		return 0, fmt.Errorf("center %d: %w", centerID, ErrUnknownReference)
	}

	pkg, err := s.directory.GetPackage(ctx, packageID)
	if err != nil {
		return 0, fmt.Errorf("lookup package %d: %w", packageID, err)
	}
	if pkg == nil {
		return 0, fmt.Errorf("package %d: %w", packageID, ErrUnknownReference)
	}

	key := domain.InventoryKey{CenterID: centerID, PackageID: packageID}
	updated, err := s.ledger.Restock(ctx, key, quantity)
	if err != nil {
		return 0, err
	}

	restocksTotal.Inc()
	logrus.WithFields(logrus.Fields{
		"center_id":  centerID,
		"package_id": packageID,
		"quantity":   quantity,
		"new_total":  updated,
	}).Info("restocked inventory")

	return updated, nil
}

// GetLogs returns distribution log entries, newest first.
func (s *DistributionService) GetLogs(ctx context.Context, filter port.LogFilter, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.logs.Query(ctx, filter, limit)
}

// validateReferences resolves the three directory lookups. ok is
// false when any reference is unknown or inactive; the result then
// carries the NotFound outcome.
func (s *DistributionService) validateReferences(ctx context.Context, centerID, packageID, householdID int64) (*domain.AidPackage, DistributeResult, bool, error) {
	notFound := func(msg string) (*domain.AidPackage, DistributeResult, bool, error) {
		return nil, DistributeResult{Kind: OutcomeNotFound, Message: msg}, false, nil
	}

	household, err := s.directory.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, DistributeResult{}, false, fmt.Errorf("lookup household %d: %w", householdID, err)
	}
	if household == nil {
		return notFound("household not found")
	}
	if household.Status != domain.HouseholdStatusActive {
		return notFound(fmt.Sprintf("household status is %s", household.Status))
	}

	pkg, err := s.directory.GetPackage(ctx, packageID)
	if err != nil {
		return nil, DistributeResult{}, false, fmt.Errorf("lookup package %d: %w", packageID, err)
	}
	if pkg == nil {
		return notFound("package not found")
	}
	if !pkg.IsActive {
		return notFound("package is not active")
	}

	center, err := s.directory.GetCenter(ctx, centerID)
	if err != nil {
		return nil, DistributeResult{}, false, fmt.Errorf("lookup center %d: %w", centerID, err)
	}
	if center == nil {
		return notFound("distribution center not found")
	}
	if center.Status != domain.CenterStatusActive {
		return notFound(fmt.Sprintf("center status is %s", center.Status))
	}

	return pkg, DistributeResult{}, true, nil
}

func (s *DistributionService) evaluate(ctx context.Context, pkg *domain.AidPackage, householdID int64) (eligibility.Result, error) {
	lookupPackageID := pkg.ID
	if s.cfg.CooldownScope == ScopeAnyPackage {
		lookupPackageID = 0
	}

	last, err := s.logs.LastFor(ctx, householdID, lookupPackageID)
	if err != nil {
		return eligibility.Result{}, fmt.Errorf("lookup last distribution for household %d: %w", householdID, err)
	}

	var lastAt *time.Time
	if last != nil {
		lastAt = &last.DistributionDate
	}

	cooldown := pkg.ValidityPeriodDays
	if cooldown <= 0 {
		cooldown = s.cfg.DefaultCooldownDays
	}

	return eligibility.Evaluate(lastAt, cooldown, s.now()), nil
}

func (s *DistributionService) finish(res DistributeResult) DistributeResult {
	distributionsTotal.WithLabelValues(string(res.Kind)).Inc()
	return res
}
