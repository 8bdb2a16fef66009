package types

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func jsonContext(t *testing.T, method, target, body string) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec)
}

func TestNewRecordPaymentRequestNormalizes(t *testing.T) {
	ctx := jsonContext(t, "POST", "/payments", `{
		"appointment_id": "  appt-1  ",
		"appointment_total": 100,
		"payment_amount": 40,
		"payment_method": " CASH_AT_COUNTER ",
		"split_payment_group_id": " G1 ",
		"notes": "  first instalment "
	}`)

	req, err := NewRecordPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.AppointmentID != "appt-1" {
		t.Fatalf("expected trimmed appointment id, got %q", req.AppointmentID)
	}
	if req.PaymentMethod != "cash_at_counter" {
		t.Fatalf("expected lowered method, got %q", req.PaymentMethod)
	}
	if req.SplitPaymentGroupID != "G1" || req.Notes != "first instalment" {
		t.Fatalf("expected trimmed optional fields, got %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
}

func TestRecordPaymentRequestValidateRequiresFields(t *testing.T) {
	req := &RecordPaymentRequest{AppointmentTotal: 100, PaymentAmount: 40}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing appointment_id")
	}

	req = &RecordPaymentRequest{AppointmentID: "appt-1", AppointmentTotal: 100, PaymentAmount: 40}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for missing payment_method")
	}

	req = &RecordPaymentRequest{AppointmentID: "appt-1", AppointmentTotal: -1, PaymentAmount: 40, PaymentMethod: "upi"}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for negative appointment_total")
	}
}

func TestRecordPaymentRequestValidateLeavesAmountToGuards(t *testing.T) {
	// A zero amount must reach the admission guards so the caller gets the
	// specific invalid-amount reason, not a generic binding error.
	req := &RecordPaymentRequest{AppointmentID: "appt-1", AppointmentTotal: 100, PaymentAmount: 0, PaymentMethod: "upi"}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected shape validation to pass, got %v", err)
	}
}

func TestNewGetPaymentRequestFromContext(t *testing.T) {
	ctx := jsonContext(t, "GET", "/payments/42", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("42")

	req, err := NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID != 42 {
		t.Fatalf("expected id 42, got %d", req.ID)
	}

	ctx.SetParamValues("abc")
	if _, err := NewGetPaymentRequestFromContext(ctx); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestNewListPaymentsRequestDefaultsAndBounds(t *testing.T) {
	ctx := jsonContext(t, "GET", "/payments?appointment_id=appt-1&status=PAID", "")
	req, err := NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Limit != 100 || req.Offset != 0 {
		t.Fatalf("expected defaults, got limit=%d offset=%d", req.Limit, req.Offset)
	}
	if !req.HasStatus || req.Status != "paid" {
		t.Fatalf("expected lowered status filter, got %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	ctx = jsonContext(t, "GET", "/payments?limit=501", "")
	req, err = NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for limit above bound")
	}
}

func TestNewSettlePaymentStatusRequestFromContext(t *testing.T) {
	ctx := jsonContext(t, "POST", "/payments/7/status", `{"status": " REFUNDED "}`)
	ctx.SetParamNames("id")
	ctx.SetParamValues("7")

	req, err := NewSettlePaymentStatusRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.ID != 7 || req.Status != "refunded" {
		t.Fatalf("unexpected request %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req.Status = ""
	if err := req.Validate(); err == nil {
		t.Fatal("expected error for empty status")
	}
}

func TestNewPaymentSummaryRequestFromContext(t *testing.T) {
	ctx := jsonContext(t, "GET", "/appointments/appt-1/payments/summary?appointment_total=150.50", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("appt-1")

	req, err := NewPaymentSummaryRequestFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.AppointmentID != "appt-1" || req.AppointmentTotal != 150.50 {
		t.Fatalf("unexpected request %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	ctx = jsonContext(t, "GET", "/appointments/appt-1/payments/summary", "")
	ctx.SetParamNames("id")
	ctx.SetParamValues("appt-1")
	if _, err := NewPaymentSummaryRequestFromContext(ctx); err == nil {
		t.Fatal("expected error for missing appointment_total")
	}
}
