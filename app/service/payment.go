package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/reconcile"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/repository"
	"github.com/vetlink-solutions/ms-go-clinic-payments/config"
)

const (
	defaultListLimit = int32(100)
	defaultBatchSize = int32(100)
)

type paymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	UpdateStatus(ctx context.Context, id uint64, status entity.PaymentStatus, updatedAt time.Time) error
	FindByID(ctx context.Context, id uint64) (*entity.Payment, error)
	ListByAppointment(ctx context.Context, appointmentID string) ([]*entity.Payment, error)
	List(ctx context.Context, filter repository.PaymentFilter) ([]*entity.Payment, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error)
}

type paymentEventRepository interface {
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

// RecordPaymentInput is a payment submission from the service edge. The
// appointment total comes from the booking subsystem; this service never
// stores or mutates it.
type RecordPaymentInput struct {
	AppointmentID       string
	AppointmentTotal    float64
	Amount              float64
	Method              entity.PaymentMethod
	IsPartial           bool
	SplitPaymentGroupID string
	Notes               string
}

type ListPaymentsInput struct {
	AppointmentID string
	HasStatus     bool
	Status        entity.PaymentStatus
	Method        entity.PaymentMethod
	Limit         int32
	Offset        int32
}

type PaymentService struct {
	paymentRepo paymentRepository
	eventRepo   paymentEventRepository
	paymentsCfg config.PaymentsConfig
	locks       *appointmentLocks
}

func NewPaymentService(
	paymentRepo paymentRepository,
	eventRepo paymentEventRepository,
	paymentsCfg config.PaymentsConfig,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		eventRepo:   eventRepo,
		paymentsCfg: paymentsCfg,
		locks:       newAppointmentLocks(),
	}
}

// RecordPayment is the only admit path for new payments. The whole
// read-validate-sequence-write cycle runs under the appointment's lock so two
// concurrent submissions cannot both be admitted against the same snapshot.
func (s *PaymentService) RecordPayment(ctx context.Context, input RecordPaymentInput) (*entity.Payment, error) {
	appointmentID := strings.TrimSpace(input.AppointmentID)
	if appointmentID == "" {
		return nil, ErrInvalidRequest
	}

	unlock := s.locks.Lock(appointmentID)
	defer unlock()

	existing, err := s.paymentRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	groupID := strings.TrimSpace(input.SplitPaymentGroupID)
	if err := reconcile.Validate(reconcile.Proposed{
		Amount:              input.Amount,
		Method:              input.Method,
		SplitPaymentGroupID: groupID,
	}, input.AppointmentTotal, existing); err != nil {
		return nil, err
	}

	isPartial := input.IsPartial
	if groupID != "" {
		// Joining a plan makes the payment an instalment regardless of the flag.
		isPartial = true
	}
	if isPartial && groupID == "" {
		// First instalment of a new plan: mint the group id later instalments
		// must join.
		groupID = uuid.NewString()
	}

	status := entity.PaymentStatusPartiallyPaid
	if reconcile.TotalPaid(existing)+input.Amount >= input.AppointmentTotal-reconcile.Epsilon {
		status = entity.PaymentStatusPaid
	}

	now := time.Now().UTC()
	payment := &entity.Payment{
		AppointmentID:       appointmentID,
		Method:              input.Method,
		PaidAmount:          input.Amount,
		Status:              status,
		IsPartial:           isPartial,
		SplitPaymentGroupID: normalizeOptionalString(groupID),
		PaymentSequence:     reconcile.NextSequence(existing, groupID),
		PaymentDate:         now,
		Notes:               normalizeOptionalString(input.Notes),
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "payment_recorded",
		NewStatus: payment.Status,
		CreatedAt: now,
	})

	return payment, nil
}

// ValidatePayment runs the admission guards against the current history
// without committing anything. Intended for UI pre-validation; the admit path
// re-validates under the appointment lock.
func (s *PaymentService) ValidatePayment(ctx context.Context, input RecordPaymentInput) error {
	appointmentID := strings.TrimSpace(input.AppointmentID)
	if appointmentID == "" {
		return ErrInvalidRequest
	}

	existing, err := s.paymentRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	return reconcile.Validate(reconcile.Proposed{
		Amount:              input.Amount,
		Method:              input.Method,
		SplitPaymentGroupID: strings.TrimSpace(input.SplitPaymentGroupID),
	}, input.AppointmentTotal, existing)
}

func (s *PaymentService) GetPayment(ctx context.Context, id uint64) (*entity.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

func (s *PaymentService) ListPayments(ctx context.Context, input ListPaymentsInput) ([]*entity.Payment, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	return s.paymentRepo.List(ctx, repository.PaymentFilter{
		AppointmentID: strings.TrimSpace(input.AppointmentID),
		HasStatus:     input.HasStatus,
		Status:        input.Status,
		Method:        input.Method,
		Limit:         limit,
		Offset:        input.Offset,
	})
}

// GetPaymentSummary builds the read model for one appointment from its full
// history in arrival order.
func (s *PaymentService) GetPaymentSummary(ctx context.Context, appointmentID string, appointmentTotal float64) (reconcile.PaymentSummary, error) {
	appointmentID = strings.TrimSpace(appointmentID)
	if appointmentID == "" {
		return reconcile.PaymentSummary{}, ErrInvalidRequest
	}

	payments, err := s.paymentRepo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return reconcile.PaymentSummary{}, err
	}

	return reconcile.Summarize(appointmentTotal, payments), nil
}

// allowedTransitions are the settlement-process status moves this service
// accepts. Payments are never deleted; refunds and failures are modeled as
// transitions.
var allowedTransitions = map[entity.PaymentStatus][]entity.PaymentStatus{
	entity.PaymentStatusPending:       {entity.PaymentStatusPaid, entity.PaymentStatusFailed},
	entity.PaymentStatusPaid:          {entity.PaymentStatusRefunded},
	entity.PaymentStatusPartiallyPaid: {entity.PaymentStatusRefunded},
}

func transitionAllowed(from, to entity.PaymentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SettlePaymentStatus applies an external settlement transition to a payment.
func (s *PaymentService) SettlePaymentStatus(ctx context.Context, id uint64, newStatus entity.PaymentStatus) (*entity.Payment, error) {
	if !entity.IsValidPaymentStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, ErrPaymentNotFound
	}

	if !transitionAllowed(payment.Status, newStatus) {
		return nil, ErrInvalidStatus
	}

	now := time.Now().UTC()
	oldStatus := payment.Status
	if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, newStatus, now); err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	payment.Status = newStatus
	payment.UpdatedAt = now

	_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
		PaymentID: payment.ID,
		EventType: "payment_status_changed",
		OldStatus: &oldStatus,
		NewStatus: newStatus,
		CreatedAt: now,
	})

	return payment, nil
}

func (s *PaymentService) batchSize() int32 {
	if s.paymentsCfg.JobBatchSize > 0 {
		return s.paymentsCfg.JobBatchSize
	}
	return defaultBatchSize
}

func normalizeOptionalString(v string) *string {
	trimmed := strings.TrimSpace(v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
