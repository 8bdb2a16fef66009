package controller

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/factory"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/mapper"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/reconcile"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/service"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/types"
)

type PaymentController struct {
	paymentService *service.PaymentService
	logger         logrus.FieldLogger
}

func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
		logger:         factory.NewModuleLogger("payments-controller"),
	}
}

func (c *PaymentController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *PaymentController) RecordPayment(ctx echo.Context) error {
	req, err := types.NewRecordPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.RecordPayment(ctx.Request().Context(), recordInputFromRequest(req))
	if err != nil {
		switch {
		case errors.Is(err, reconcile.ErrAlreadyFullyPaid):
			return c.writeError(ctx, http.StatusConflict, err.Error())
		case isAdmissionReject(err), errors.Is(err, service.ErrInvalidRequest):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Record payment failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusCreated, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) ValidatePayment(ctx echo.Context) error {
	req, err := types.NewRecordPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	err = c.paymentService.ValidatePayment(ctx.Request().Context(), recordInputFromRequest(req))
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, &types.ValidatePaymentResponse{IsValid: true})
	case isAdmissionReject(err), errors.Is(err, reconcile.ErrAlreadyFullyPaid):
		reason := err.Error()
		return ctx.JSON(http.StatusOK, &types.ValidatePaymentResponse{IsValid: false, Error: &reason})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	default:
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Validate payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func (c *PaymentController) GetPayment(ctx echo.Context) error {
	req, err := types.NewGetPaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.GetPayment(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Is(err, service.ErrPaymentNotFound) {
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) ListPayments(ctx echo.Context) error {
	req, err := types.NewListPaymentsRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	items, err := c.paymentService.ListPayments(ctx.Request().Context(), service.ListPaymentsInput{
		AppointmentID: req.AppointmentID,
		HasStatus:     req.HasStatus,
		Status:        entity.PaymentStatus(req.Status),
		Method:        entity.PaymentMethod(req.Method),
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
	if err != nil {
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("List payments failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.ListPaymentsResponse{Payments: mapper.PaymentsToResponse(items)})
}

func (c *PaymentController) SettlePaymentStatus(ctx echo.Context) error {
	req, err := types.NewSettlePaymentStatusRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	item, err := c.paymentService.SettlePaymentStatus(ctx.Request().Context(), req.ID, entity.PaymentStatus(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			return c.writeError(ctx, http.StatusNotFound, "payment not found")
		case errors.Is(err, service.ErrInvalidStatus):
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		default:
			factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Settle payment status failed")
			return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
		}
	}

	return ctx.JSON(http.StatusOK, &types.PaymentEnvelopeResponse{Payment: mapper.PaymentToResponse(item)})
}

func (c *PaymentController) GetPaymentSummary(ctx echo.Context) error {
	req, err := types.NewPaymentSummaryRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	summary, err := c.paymentService.GetPaymentSummary(ctx.Request().Context(), req.AppointmentID, req.AppointmentTotal)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRequest) {
			return c.writeError(ctx, http.StatusBadRequest, err.Error())
		}
		factory.LoggerWithContext(c.logger, ctx).WithError(err).Error("Get payment summary failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, mapper.SummaryToResponse(summary))
}

func (c *PaymentController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}

func recordInputFromRequest(req *types.RecordPaymentRequest) service.RecordPaymentInput {
	return service.RecordPaymentInput{
		AppointmentID:       req.AppointmentID,
		AppointmentTotal:    req.AppointmentTotal,
		Amount:              req.PaymentAmount,
		Method:              entity.PaymentMethod(req.PaymentMethod),
		IsPartial:           req.IsPartial,
		SplitPaymentGroupID: req.SplitPaymentGroupID,
		Notes:               req.Notes,
	}
}

// isAdmissionReject reports whether err is one of the reconcile guard
// rejections other than the already-settled conflict.
func isAdmissionReject(err error) bool {
	var balanceErr *reconcile.BalanceExceededError
	return errors.Is(err, reconcile.ErrInvalidAmount) ||
		errors.Is(err, reconcile.ErrUnknownPaymentMethod) ||
		errors.Is(err, reconcile.ErrMissingSplitGroup) ||
		errors.Is(err, reconcile.ErrSplitGroupMismatch) ||
		errors.As(err, &balanceErr)
}
