// Package reconcile implements the split-payment reconciliation engine for
// appointment payments: ledger totals, split-group bookkeeping, instalment
// sequencing, admission validation, and the payment summary read model.
//
// Every function is pure and operates on the snapshot of payment records it
// is handed. Serialization of the read-validate-write cycle is the caller's
// responsibility (see service.RecordPayment).
package reconcile

import (
	"strconv"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

// Epsilon absorbs floating-point rounding noise when comparing paid totals
// against an appointment total.
const Epsilon = 1e-6

// TotalPaid sums the paid amounts of every payment whose status counts toward
// settlement (paid or partially_paid). Other statuses contribute zero.
func TotalPaid(payments []*entity.Payment) float64 {
	var total float64
	for _, p := range payments {
		if p == nil || !p.Status.CountsTowardPaid() {
			continue
		}
		total += p.PaidAmount
	}
	return total
}

// RemainingBalance is the appointment total minus the counted paid amounts,
// floored at zero so inconsistent historical data never yields a negative
// balance.
func RemainingBalance(appointmentTotal float64, payments []*entity.Payment) float64 {
	remaining := appointmentTotal - TotalPaid(payments)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsFullyPaid reports whether the counted payments settle the appointment
// total within Epsilon.
func IsFullyPaid(appointmentTotal float64, payments []*entity.Payment) bool {
	return TotalPaid(payments) >= appointmentTotal-Epsilon
}

// HasSplitPayments reports whether the appointment is settled in more than one
// part: either multiple payment records exist or any record is flagged as an
// instalment.
func HasSplitPayments(payments []*entity.Payment) bool {
	if len(payments) > 1 {
		return true
	}
	for _, p := range payments {
		if p != nil && p.IsPartial {
			return true
		}
	}
	return false
}

// GroupKey resolves the split-group key for a payment: its split payment group
// id when present, else its own id, so an ungrouped payment forms a singleton
// group keyed by itself.
func GroupKey(p *entity.Payment) string {
	if p.SplitPaymentGroupID != nil && *p.SplitPaymentGroupID != "" {
		return *p.SplitPaymentGroupID
	}
	return strconv.FormatUint(p.ID, 10)
}

// GroupBySplit partitions payments into split groups, preserving each
// payment's arrival order inside its group. Callers that need sequence order
// sort explicitly.
func GroupBySplit(payments []*entity.Payment) map[string][]*entity.Payment {
	groups := make(map[string][]*entity.Payment)
	for _, p := range payments {
		if p == nil {
			continue
		}
		key := GroupKey(p)
		groups[key] = append(groups[key], p)
	}
	return groups
}

// NextSequence returns the 1-based ordinal for a new payment within its split
// group. Empty or unseen group ids start at 1. A historical record with an
// unset sequence ranks as 0 and is outranked by any sequenced sibling.
func NextSequence(payments []*entity.Payment, groupID string) int32 {
	if groupID == "" {
		return 1
	}

	var maxSeq int32 = -1
	for _, p := range payments {
		if p == nil || p.SplitPaymentGroupID == nil || *p.SplitPaymentGroupID != groupID {
			continue
		}
		seq := p.PaymentSequence
		if seq < 0 {
			seq = 0
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	if maxSeq < 0 {
		return 1
	}
	return maxSeq + 1
}
