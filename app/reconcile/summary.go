package reconcile

import (
	"time"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

// PaymentSummary is the canonical read model for an appointment's payment
// state, composed from the ledger figures and the split bookkeeping.
type PaymentSummary struct {
	AppointmentTotal float64
	TotalPaid        float64
	RemainingBalance float64
	IsFullyPaid      bool
	IsSplitPayment   bool
	PaymentCount     int
	Breakdown        []BreakdownEntry
}

// BreakdownEntry projects one payment record for display and reporting.
type BreakdownEntry struct {
	Method   entity.PaymentMethod
	Amount   float64
	Status   entity.PaymentStatus
	Sequence int32
	Date     time.Time
}

// Summarize builds the payment summary for one appointment. The breakdown
// preserves the input order of the payment records; it is not grouped.
func Summarize(appointmentTotal float64, payments []*entity.Payment) PaymentSummary {
	breakdown := make([]BreakdownEntry, 0, len(payments))
	for _, p := range payments {
		if p == nil {
			continue
		}
		breakdown = append(breakdown, BreakdownEntry{
			Method:   p.Method,
			Amount:   p.PaidAmount,
			Status:   p.Status,
			Sequence: p.PaymentSequence,
			Date:     p.PaymentDate,
		})
	}

	return PaymentSummary{
		AppointmentTotal: appointmentTotal,
		TotalPaid:        TotalPaid(payments),
		RemainingBalance: RemainingBalance(appointmentTotal, payments),
		IsFullyPaid:      IsFullyPaid(appointmentTotal, payments),
		IsSplitPayment:   HasSplitPayments(payments),
		PaymentCount:     len(breakdown),
		Breakdown:        breakdown,
	}
}
