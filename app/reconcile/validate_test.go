package reconcile

import (
	"errors"
	"strings"
	"testing"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

func TestValidateAdmitsFullSinglePayment(t *testing.T) {
	err := Validate(Proposed{Amount: 100, Method: entity.PaymentMethodCashAtCounter}, 100, nil)
	if err != nil {
		t.Fatalf("expected admit, got %v", err)
	}
}

func TestValidateRejectsNonPositiveAmount(t *testing.T) {
	for _, amount := range []float64{0, -1, -0.01} {
		err := Validate(Proposed{Amount: amount, Method: entity.PaymentMethodUPI}, 100, nil)
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestValidateRejectsAlreadyFullyPaid(t *testing.T) {
	existing := []*entity.Payment{paymentWith(1, 100, entity.PaymentStatusPaid)}
	err := Validate(Proposed{Amount: 10, Method: entity.PaymentMethodCashAtCounter}, 100, existing)
	if !errors.Is(err, ErrAlreadyFullyPaid) {
		t.Fatalf("expected ErrAlreadyFullyPaid, got %v", err)
	}
}

func TestValidateRejectsAmountExceedingRemainingBalance(t *testing.T) {
	existing := []*entity.Payment{groupedPayment(1, 50, "G1", 1)}
	err := Validate(Proposed{Amount: 200, Method: entity.PaymentMethodCreditCard, SplitPaymentGroupID: "G1"}, 200, existing)

	var balanceErr *BalanceExceededError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("expected BalanceExceededError, got %v", err)
	}
	if balanceErr.Remaining != 150 {
		t.Fatalf("expected remaining 150, got %v", balanceErr.Remaining)
	}
	if !strings.Contains(err.Error(), "150") {
		t.Fatalf("expected message to embed remaining balance, got %q", err.Error())
	}
}

func TestValidateAdmitsExactRemainingBalance(t *testing.T) {
	existing := []*entity.Payment{groupedPayment(1, 50, "G1", 1)}
	err := Validate(Proposed{Amount: 150, Method: entity.PaymentMethodUPI, SplitPaymentGroupID: "G1"}, 200, existing)
	if err != nil {
		t.Fatalf("expected exact-balance payment to be admitted, got %v", err)
	}
}

func TestValidateRejectsUnknownMethod(t *testing.T) {
	err := Validate(Proposed{Amount: 10, Method: entity.PaymentMethod("paypal")}, 100, nil)
	if !errors.Is(err, ErrUnknownPaymentMethod) {
		t.Fatalf("expected ErrUnknownPaymentMethod, got %v", err)
	}
}

func TestValidateRequiresGroupIDWhenPlanUnderway(t *testing.T) {
	existing := []*entity.Payment{groupedPayment(1, 50, "G1", 1)}
	err := Validate(Proposed{Amount: 50, Method: entity.PaymentMethodCashAtCounter}, 200, existing)
	if !errors.Is(err, ErrMissingSplitGroup) {
		t.Fatalf("expected ErrMissingSplitGroup, got %v", err)
	}
}

func TestValidateAdmitsInstalmentJoiningPlan(t *testing.T) {
	existing := []*entity.Payment{groupedPayment(1, 50, "G1", 1)}
	err := Validate(Proposed{Amount: 50, Method: entity.PaymentMethodCashAtCounter, SplitPaymentGroupID: "G1"}, 200, existing)
	if err != nil {
		t.Fatalf("expected admit, got %v", err)
	}
	if got := NextSequence(existing, "G1"); got != 2 {
		t.Fatalf("expected next sequence 2, got %d", got)
	}
}

func TestValidateRejectsSecondSplitGroup(t *testing.T) {
	existing := []*entity.Payment{groupedPayment(1, 50, "G1", 1)}
	err := Validate(Proposed{Amount: 50, Method: entity.PaymentMethodWallet, SplitPaymentGroupID: "G2"}, 200, existing)
	if !errors.Is(err, ErrSplitGroupMismatch) {
		t.Fatalf("expected ErrSplitGroupMismatch, got %v", err)
	}
}

func TestValidateFirstInstalmentNeedsNoGroup(t *testing.T) {
	err := Validate(Proposed{Amount: 50, Method: entity.PaymentMethodCheque}, 200, nil)
	if err != nil {
		t.Fatalf("expected first instalment without group to be admitted, got %v", err)
	}
}

func TestValidateGuardOrderFirstFailureWins(t *testing.T) {
	// A non-positive amount against a settled appointment must report the
	// amount guard, not the settled guard.
	existing := []*entity.Payment{paymentWith(1, 100, entity.PaymentStatusPaid)}
	err := Validate(Proposed{Amount: -5, Method: entity.PaymentMethod("paypal")}, 100, existing)
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount first, got %v", err)
	}

	// An oversized amount with an unknown method must report the balance guard.
	err = Validate(Proposed{Amount: 500, Method: entity.PaymentMethod("paypal")}, 100, nil)
	var balanceErr *BalanceExceededError
	if !errors.As(err, &balanceErr) {
		t.Fatalf("expected BalanceExceededError before method guard, got %v", err)
	}
}

func TestValidateIgnoresNonCountedHistory(t *testing.T) {
	existing := []*entity.Payment{
		paymentWith(1, 100, entity.PaymentStatusFailed),
		paymentWith(2, 100, entity.PaymentStatusRefunded),
	}
	err := Validate(Proposed{Amount: 100, Method: entity.PaymentMethodBankTransfer}, 100, existing)
	if err != nil {
		t.Fatalf("failed and refunded history must not block resubmission, got %v", err)
	}
}
