package entity

import "time"

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// CountsTowardPaid reports whether a payment in this status contributes to the
// appointment's paid total. Pending, failed, and refunded payments do not.
func (s PaymentStatus) CountsTowardPaid() bool {
	return s == PaymentStatusPaid || s == PaymentStatusPartiallyPaid
}

func IsValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentStatusPending,
		PaymentStatusPaid,
		PaymentStatusPartiallyPaid,
		PaymentStatusFailed,
		PaymentStatusRefunded:
		return true
	default:
		return false
	}
}

type PaymentMethod string

const (
	PaymentMethodCashAtCounter PaymentMethod = "cash_at_counter"
	PaymentMethodCreditCard    PaymentMethod = "credit_card"
	PaymentMethodDebitCard     PaymentMethod = "debit_card"
	PaymentMethodUPI           PaymentMethod = "upi"
	PaymentMethodBankTransfer  PaymentMethod = "bank_transfer"
	PaymentMethodCheque        PaymentMethod = "cheque"
	PaymentMethodInsurance     PaymentMethod = "insurance"
	PaymentMethodWallet        PaymentMethod = "wallet"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCashAtCounter,
		PaymentMethodCreditCard,
		PaymentMethodDebitCard,
		PaymentMethodUPI,
		PaymentMethodBankTransfer,
		PaymentMethodCheque,
		PaymentMethodInsurance,
		PaymentMethodWallet:
		return true
	default:
		return false
	}
}

// Payment is one payment record against an appointment. A payment is either a
// standalone settlement or one instalment of a split-payment plan, in which
// case IsPartial is true and SplitPaymentGroupID links the plan's instalments.
type Payment struct {
	ID uint64

	AppointmentID string

	Method     PaymentMethod
	PaidAmount float64
	Status     PaymentStatus

	IsPartial           bool
	SplitPaymentGroupID *string
	PaymentSequence     int32

	PaymentDate time.Time
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
