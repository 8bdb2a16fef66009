package reconcile

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

var (
	ErrInvalidAmount        = errors.New("payment amount must be greater than zero")
	ErrAlreadyFullyPaid     = errors.New("appointment is already fully paid")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrMissingSplitGroup    = errors.New("split payment group id is required when an instalment plan exists")
	ErrSplitGroupMismatch   = errors.New("split payment group id does not match the appointment's active instalment plan")
)

// BalanceExceededError rejects a payment larger than the remaining balance.
// It carries the exact balance so the caller can offer a corrected amount.
type BalanceExceededError struct {
	Remaining float64
}

func (e *BalanceExceededError) Error() string {
	return fmt.Sprintf("payment amount cannot exceed remaining balance of %s", FormatAmount(e.Remaining))
}

// FormatAmount renders a monetary amount with two decimal places for
// user-facing messages.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Proposed is a payment submission under validation. It has not been admitted
// and carries no id, status, or sequence yet.
type Proposed struct {
	Amount              float64
	Method              entity.PaymentMethod
	SplitPaymentGroupID string
}

// Validate decides whether a proposed payment against an appointment is
// admissible given the appointment total and its full payment history.
//
// Guards run in order and the first failure wins; a nil return admits the
// payment. Validate performs no I/O and is safe to call speculatively.
func Validate(proposed Proposed, appointmentTotal float64, existing []*entity.Payment) error {
	if proposed.Amount <= 0 {
		return ErrInvalidAmount
	}

	if IsFullyPaid(appointmentTotal, existing) {
		return ErrAlreadyFullyPaid
	}

	remaining := RemainingBalance(appointmentTotal, existing)
	if proposed.Amount > remaining+Epsilon {
		return &BalanceExceededError{Remaining: remaining}
	}

	if !entity.IsValidPaymentMethod(proposed.Method) {
		return ErrUnknownPaymentMethod
	}

	// Every instalment after the first must explicitly join the existing plan
	// rather than silently becoming an ambiguous second payment.
	activeGroup := activeSplitGroup(existing)
	if hasPartial(existing) && proposed.SplitPaymentGroupID == "" {
		return ErrMissingSplitGroup
	}
	if proposed.SplitPaymentGroupID != "" && activeGroup != "" && proposed.SplitPaymentGroupID != activeGroup {
		return ErrSplitGroupMismatch
	}

	return nil
}

func hasPartial(payments []*entity.Payment) bool {
	for _, p := range payments {
		if p != nil && p.IsPartial {
			return true
		}
	}
	return false
}

// activeSplitGroup returns the group id of the appointment's instalment plan,
// or empty when no partial payment carries one. One active plan per
// appointment is enforced, so the first grouped partial wins.
func activeSplitGroup(payments []*entity.Payment) string {
	for _, p := range payments {
		if p == nil || !p.IsPartial {
			continue
		}
		if p.SplitPaymentGroupID != nil && *p.SplitPaymentGroupID != "" {
			return *p.SplitPaymentGroupID
		}
	}
	return ""
}
