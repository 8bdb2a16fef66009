package mapper

import (
	"time"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/reconcile"
	"github.com/vetlink-solutions/ms-go-clinic-payments/app/types"
)

func PaymentToResponse(item *entity.Payment) *types.Payment {
	if item == nil {
		return nil
	}

	return &types.Payment{
		ID:                  item.ID,
		AppointmentID:       item.AppointmentID,
		PaymentMethod:       string(item.Method),
		PaidAmount:          item.PaidAmount,
		PaymentStatus:       string(item.Status),
		IsPartial:           item.IsPartial,
		SplitPaymentGroupID: derefString(item.SplitPaymentGroupID),
		PaymentSequence:     item.PaymentSequence,
		PaymentDate:         item.PaymentDate.UTC().Format(time.RFC3339),
		Notes:               derefString(item.Notes),
		CreatedAt:           item.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:           item.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func PaymentsToResponse(items []*entity.Payment) []*types.Payment {
	result := make([]*types.Payment, 0, len(items))
	for _, item := range items {
		result = append(result, PaymentToResponse(item))
	}
	return result
}

func SummaryToResponse(summary reconcile.PaymentSummary) *types.PaymentSummaryResponse {
	breakdown := make([]types.PaymentBreakdownEntry, 0, len(summary.Breakdown))
	for _, entry := range summary.Breakdown {
		breakdown = append(breakdown, types.PaymentBreakdownEntry{
			Method:   string(entry.Method),
			Amount:   entry.Amount,
			Status:   string(entry.Status),
			Sequence: entry.Sequence,
			Date:     entry.Date.UTC().Format(time.RFC3339),
		})
	}

	return &types.PaymentSummaryResponse{
		AppointmentTotal: summary.AppointmentTotal,
		TotalPaid:        summary.TotalPaid,
		RemainingBalance: summary.RemainingBalance,
		IsFullyPaid:      summary.IsFullyPaid,
		IsSplitPayment:   summary.IsSplitPayment,
		PaymentCount:     summary.PaymentCount,
		PaymentBreakdown: breakdown,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
