package types

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

var validate = validator.New()

type RecordPaymentRequest struct {
	AppointmentID       string  `json:"appointment_id" validate:"required"`
	AppointmentTotal    float64 `json:"appointment_total" validate:"gte=0"`
	PaymentAmount       float64 `json:"payment_amount"`
	PaymentMethod       string  `json:"payment_method" validate:"required"`
	IsPartial           bool    `json:"is_partial"`
	SplitPaymentGroupID string  `json:"split_payment_group_id"`
	Notes               string  `json:"notes"`
}

func NewRecordPaymentRequestFromContext(ctx echo.Context) (*RecordPaymentRequest, error) {
	var body RecordPaymentRequest
	if err := ctx.Bind(&body); err != nil {
		return nil, err
	}

	body.AppointmentID = strings.TrimSpace(body.AppointmentID)
	body.PaymentMethod = strings.ToLower(strings.TrimSpace(body.PaymentMethod))
	body.SplitPaymentGroupID = strings.TrimSpace(body.SplitPaymentGroupID)
	body.Notes = strings.TrimSpace(body.Notes)

	return &body, nil
}

// Validate covers request shape only. Amount positivity, method membership,
// and split-group rules are admission guards and belong to the reconcile
// package so their rejection reasons stay intact.
func (r *RecordPaymentRequest) Validate() error {
	if strings.TrimSpace(r.AppointmentID) == "" {
		return errors.New("appointment_id is required")
	}
	if strings.TrimSpace(r.PaymentMethod) == "" {
		return errors.New("payment_method is required")
	}
	if r.AppointmentTotal < 0 {
		return errors.New("appointment_total must be >= 0")
	}
	return validate.Struct(r)
}

type GetPaymentRequest struct {
	ID uint64
}

func NewGetPaymentRequestFromContext(ctx echo.Context) (*GetPaymentRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}
	return &GetPaymentRequest{ID: id}, nil
}

func (r *GetPaymentRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	return nil
}

type ListPaymentsRequest struct {
	AppointmentID string
	HasStatus     bool
	Status        string
	Method        string
	Limit         int32
	Offset        int32
}

func NewListPaymentsRequestFromContext(ctx echo.Context) (*ListPaymentsRequest, error) {
	req := &ListPaymentsRequest{
		AppointmentID: strings.TrimSpace(ctx.QueryParam("appointment_id")),
		Method:        strings.ToLower(strings.TrimSpace(ctx.QueryParam("method"))),
		Limit:         100,
		Offset:        0,
	}

	if statusRaw := strings.ToLower(strings.TrimSpace(ctx.QueryParam("status"))); statusRaw != "" {
		req.HasStatus = true
		req.Status = statusRaw
	}

	if limitRaw := strings.TrimSpace(ctx.QueryParam("limit")); limitRaw != "" {
		limit, err := strconv.ParseInt(limitRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Limit = int32(limit)
	}

	if offsetRaw := strings.TrimSpace(ctx.QueryParam("offset")); offsetRaw != "" {
		offset, err := strconv.ParseInt(offsetRaw, 10, 32)
		if err != nil {
			return nil, err
		}
		req.Offset = int32(offset)
	}

	return req, nil
}

func (r *ListPaymentsRequest) Validate() error {
	if r.Limit <= 0 || r.Limit > 500 {
		return errors.New("limit must be between 1 and 500")
	}
	if r.Offset < 0 {
		return errors.New("offset must be >= 0")
	}
	if r.HasStatus && !entity.IsValidPaymentStatus(entity.PaymentStatus(r.Status)) {
		return errors.New("invalid status")
	}
	if r.Method != "" && !entity.IsValidPaymentMethod(entity.PaymentMethod(r.Method)) {
		return errors.New("invalid method")
	}
	return nil
}

type SettlePaymentStatusRequest struct {
	ID     uint64 `json:"-"`
	Status string `json:"status" validate:"required"`
}

func NewSettlePaymentStatusRequestFromContext(ctx echo.Context) (*SettlePaymentStatusRequest, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil {
		return nil, err
	}

	var body SettlePaymentStatusRequest
	if err = ctx.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	body.ID = id
	body.Status = strings.ToLower(strings.TrimSpace(body.Status))

	return &body, nil
}

func (r *SettlePaymentStatusRequest) Validate() error {
	if r.ID == 0 {
		return errors.New("invalid payment id")
	}
	if r.Status == "" {
		return errors.New("status is required")
	}
	if !entity.IsValidPaymentStatus(entity.PaymentStatus(r.Status)) {
		return errors.New("invalid status")
	}
	return validate.Struct(r)
}

type PaymentSummaryRequest struct {
	AppointmentID    string
	AppointmentTotal float64
}

func NewPaymentSummaryRequestFromContext(ctx echo.Context) (*PaymentSummaryRequest, error) {
	totalRaw := strings.TrimSpace(ctx.QueryParam("appointment_total"))
	if totalRaw == "" {
		return nil, errors.New("appointment_total query parameter is required")
	}
	total, err := strconv.ParseFloat(totalRaw, 64)
	if err != nil {
		return nil, err
	}

	return &PaymentSummaryRequest{
		AppointmentID:    strings.TrimSpace(ctx.Param("id")),
		AppointmentTotal: total,
	}, nil
}

func (r *PaymentSummaryRequest) Validate() error {
	if r.AppointmentID == "" {
		return errors.New("appointment id is required")
	}
	if r.AppointmentTotal < 0 {
		return errors.New("appointment_total must be >= 0")
	}
	return nil
}

type Payment struct {
	ID                  uint64  `json:"id"`
	AppointmentID       string  `json:"appointment_id"`
	PaymentMethod       string  `json:"payment_method"`
	PaidAmount          float64 `json:"paid_amount"`
	PaymentStatus       string  `json:"payment_status"`
	IsPartial           bool    `json:"is_partial"`
	SplitPaymentGroupID string  `json:"split_payment_group_id,omitempty"`
	PaymentSequence     int32   `json:"payment_sequence"`
	PaymentDate         string  `json:"payment_date"`
	Notes               string  `json:"notes,omitempty"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}

type PaymentEnvelopeResponse struct {
	Payment *Payment `json:"payment"`
}

type ListPaymentsResponse struct {
	Payments []*Payment `json:"payments"`
}

type ValidatePaymentResponse struct {
	IsValid bool    `json:"is_valid"`
	Error   *string `json:"error"`
}

type PaymentBreakdownEntry struct {
	Method   string  `json:"method"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"status"`
	Sequence int32   `json:"sequence"`
	Date     string  `json:"date"`
}

type PaymentSummaryResponse struct {
	AppointmentTotal float64                 `json:"appointment_total"`
	TotalPaid        float64                 `json:"total_paid"`
	RemainingBalance float64                 `json:"remaining_balance"`
	IsFullyPaid      bool                    `json:"is_fully_paid"`
	IsSplitPayment   bool                    `json:"is_split_payment"`
	PaymentCount     int                     `json:"payment_count"`
	PaymentBreakdown []PaymentBreakdownEntry `json:"payment_breakdown"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
