package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/vetlink-solutions/ms-go-clinic-payments/app/entity"
)

var (
	ErrPaymentNotFound      = errors.New("payment not found")
	ErrPaymentAlreadyExists = errors.New("payment already exists")
)

type PaymentFilter struct {
	AppointmentID string
	HasStatus     bool
	Status        entity.PaymentStatus
	Method        entity.PaymentMethod
	Limit         int32
	Offset        int32
}

type PaymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const paymentColumns = `id, appointment_id, payment_method, paid_amount, payment_status,
			is_partial, split_payment_group_id, payment_sequence,
			payment_date, notes, created_at, updated_at`

func (r *PaymentRepository) Create(ctx context.Context, payment *entity.Payment) error {
	query := `
		INSERT INTO payments (
			appointment_id, payment_method, paid_amount, payment_status,
			is_partial, split_payment_group_id, payment_sequence,
			payment_date, notes, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		payment.AppointmentID,
		string(payment.Method),
		payment.PaidAmount,
		string(payment.Status),
		payment.IsPartial,
		nullableStringValue(payment.SplitPaymentGroupID),
		payment.PaymentSequence,
		payment.PaymentDate,
		nullableStringValue(payment.Notes),
		payment.CreatedAt,
		payment.UpdatedAt,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrPaymentAlreadyExists
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = uint64(id)
	return nil
}

func (r *PaymentRepository) UpdateStatus(ctx context.Context, id uint64, status entity.PaymentStatus, updatedAt time.Time) error {
	query := `
		UPDATE payments SET
			payment_status = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, string(status), updatedAt, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uint64) (*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE id = ?
	`

	payment := &entity.Payment{}
	if err := scanPayment(r.db.QueryRowContext(ctx, query, id), payment); err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	return payment, nil
}

// ListByAppointment returns the full payment history for one appointment in
// arrival order. The reconcile package depends on this ordering for split
// grouping and sequencing.
func (r *PaymentRepository) ListByAppointment(ctx context.Context, appointmentID string) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE appointment_id = ?
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, appointmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) List(ctx context.Context, filter PaymentFilter) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
	`

	conditions := make([]string, 0, 3)
	args := make([]interface{}, 0, 5)

	if strings.TrimSpace(filter.AppointmentID) != "" {
		conditions = append(conditions, "appointment_id = ?")
		args = append(args, filter.AppointmentID)
	}
	if filter.HasStatus {
		conditions = append(conditions, "payment_status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Method != "" {
		conditions = append(conditions, "payment_method = ?")
		args = append(args, string(filter.Method))
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

func (r *PaymentRepository) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int32) ([]*entity.Payment, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE payment_status = ?
		  AND created_at <= ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, string(entity.PaymentStatusPending), cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectPayments(rows)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(scan rowScanner, payment *entity.Payment) error {
	var method string
	var status string
	var paidAmount sql.NullFloat64
	var groupID sql.NullString
	var sequence sql.NullInt32
	var notes sql.NullString

	err := scan.Scan(
		&payment.ID,
		&payment.AppointmentID,
		&method,
		&paidAmount,
		&status,
		&payment.IsPartial,
		&groupID,
		&sequence,
		&payment.PaymentDate,
		&notes,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		return err
	}

	payment.Method = entity.PaymentMethod(method)
	payment.Status = entity.PaymentStatus(status)
	payment.PaidAmount = amountFromNull(paidAmount)
	payment.SplitPaymentGroupID = stringPtrFromNull(groupID)
	payment.PaymentSequence = sequenceFromNull(sequence)
	payment.Notes = stringPtrFromNull(notes)

	return nil
}

func collectPayments(rows *sql.Rows) ([]*entity.Payment, error) {
	payments := make([]*entity.Payment, 0)
	for rows.Next() {
		item := &entity.Payment{}
		if err := scanPayment(rows, item); err != nil {
			return nil, err
		}
		payments = append(payments, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}
