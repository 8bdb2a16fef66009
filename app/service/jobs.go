package service

import (
	"context"
	"time"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

// RunExpirePendingBatch soft-cancels pending payments older than the
// configured timeout by marking them failed. Rows are never deleted; the
// ledger simply stops counting them.
func (s *PaymentService) RunExpirePendingBatch(ctx context.Context) error {
	now := time.Now().UTC()
	cutoff := now.Add(-s.paymentsCfg.PendingTimeout)

	items, err := s.paymentRepo.ListExpiredPending(ctx, cutoff, s.batchSize())
	if err != nil {
		return err
	}

	var firstErr error
	for _, payment := range items {
		if payment == nil || payment.Status != entity.PaymentStatusPending {
			continue
		}

		oldStatus := payment.Status
		if err := s.paymentRepo.UpdateStatus(ctx, payment.ID, entity.PaymentStatusFailed, now); err != nil {
			firstErr = keepFirstErr(firstErr, err)
			continue
		}

		_ = s.eventRepo.Create(ctx, &entity.PaymentEvent{
			PaymentID: payment.ID,
			EventType: "payment_expired",
			OldStatus: &oldStatus,
			NewStatus: entity.PaymentStatusFailed,
			CreatedAt: now,
		})
	}

	return firstErr
}

func keepFirstErr(current, candidate error) error {
	if current != nil {
		return current
	}
	return candidate
}
