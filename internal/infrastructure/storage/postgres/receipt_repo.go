package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"centavo/internal/core/apperror"
	"centavo/internal/core/id"
	"centavo/internal/core/types"
	"centavo/internal/domain/pricing"
	"centavo/internal/domain/receipt"
)

// Compile-time check.
var _ receipt.Repository = (*ReceiptRepo)(nil)

var receiptColumns = []string{
	"id", "number", "kind", "status",
	"customer_name", "customer_phone",
	"items", "bill_discount", "tax_percent",
	"subtotal", "taxable_base", "tax_amount", "grand_total",
	"delivery_provider", "delivery_external_id", "delivery_provider_status",
	"created_by", "created_at", "updated_at",
}

// receiptRow is the flat DB shape. Items and the bill discount live in
// JSONB columns; the delivery reference is three nullable columns.
type receiptRow struct {
	ID     id.ID          `db:"id"`
	Number string         `db:"number"`
	Kind   receipt.Kind   `db:"kind"`
	Status receipt.Status `db:"status"`

	CustomerName  string `db:"customer_name"`
	CustomerPhone string `db:"customer_phone"`

	Items        []byte      `db:"items"`
	BillDiscount []byte      `db:"bill_discount"`
	TaxPercent   types.Money `db:"tax_percent"`

	Subtotal    types.Money `db:"subtotal"`
	TaxableBase types.Money `db:"taxable_base"`
	TaxAmount   types.Money `db:"tax_amount"`
	GrandTotal  types.Money `db:"grand_total"`

	DeliveryProvider       *string `db:"delivery_provider"`
	DeliveryExternalID     *string `db:"delivery_external_id"`
	DeliveryProviderStatus *string `db:"delivery_provider_status"`

	CreatedBy string    `db:"created_by"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row *receiptRow) toDomain() (*receipt.Receipt, error) {
	r := &receipt.Receipt{
		ID:            row.ID,
		Number:        row.Number,
		Kind:          row.Kind,
		Status:        row.Status,
		CustomerName:  row.CustomerName,
		CustomerPhone: row.CustomerPhone,
		TaxPercent:    row.TaxPercent,
		Subtotal:      row.Subtotal,
		TaxableBase:   row.TaxableBase,
		TaxAmount:     row.TaxAmount,
		GrandTotal:    row.GrandTotal,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}

	if len(row.Items) > 0 {
		if err := json.Unmarshal(row.Items, &r.Items); err != nil {
			return nil, fmt.Errorf("unmarshal receipt items: %w", err)
		}
	}
	if len(row.BillDiscount) > 0 {
		var d pricing.Discount
		if err := json.Unmarshal(row.BillDiscount, &d); err != nil {
			return nil, fmt.Errorf("unmarshal bill discount: %w", err)
		}
		r.BillDiscount = &d
	}
	if row.DeliveryProvider != nil && row.DeliveryExternalID != nil {
		ref := receipt.DeliveryRef{
			Provider:   *row.DeliveryProvider,
			ExternalID: *row.DeliveryExternalID,
		}
		if row.DeliveryProviderStatus != nil {
			ref.ProviderStatus = *row.DeliveryProviderStatus
		}
		r.Delivery = &ref
	}
	return r, nil
}

// ReceiptRepo is the PostgreSQL receipt repository.
type ReceiptRepo struct {
	txManager *TxManager
}

// NewReceiptRepo creates a receipt repository.
func NewReceiptRepo(txManager *TxManager) *ReceiptRepo {
	return &ReceiptRepo{txManager: txManager}
}

func (r *ReceiptRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func marshalReceiptFields(rec *receipt.Receipt) (items, billDiscount []byte, err error) {
	items, err = json.Marshal(rec.Items)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal receipt items: %w", err)
	}
	if rec.BillDiscount != nil {
		billDiscount, err = json.Marshal(rec.BillDiscount)
		if err != nil {
			return nil, nil, fmt.Errorf("marshal bill discount: %w", err)
		}
	}
	return items, billDiscount, nil
}

// Create inserts a new receipt.
func (r *ReceiptRepo) Create(ctx context.Context, rec *receipt.Receipt) error {
	items, billDiscount, err := marshalReceiptFields(rec)
	if err != nil {
		return err
	}

	q := r.builder().
		Insert("receipts").
		Columns(
			"id", "number", "kind", "status",
			"customer_name", "customer_phone",
			"items", "bill_discount", "tax_percent",
			"subtotal", "taxable_base", "tax_amount", "grand_total",
			"created_by", "created_at", "updated_at",
		).
		Values(
			rec.ID, rec.Number, rec.Kind, rec.Status,
			rec.CustomerName, rec.CustomerPhone,
			items, billDiscount, rec.TaxPercent,
			rec.Subtotal, rec.TaxableBase, rec.TaxAmount, rec.GrandTotal,
			rec.CreatedBy, rec.CreatedAt, rec.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

// Get loads a receipt by ID.
func (r *ReceiptRepo) Get(ctx context.Context, receiptID id.ID) (*receipt.Receipt, error) {
	q := r.builder().
		Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"id": receiptID}).
		Limit(1)

	return r.getOne(ctx, q, receiptID.String())
}

// FindByDeliveryRef resolves the receipt a courier order belongs to.
func (r *ReceiptRepo) FindByDeliveryRef(ctx context.Context, provider, externalID string) (*receipt.Receipt, error) {
	q := r.builder().
		Select(receiptColumns...).
		From("receipts").
		Where(squirrel.Eq{"delivery_provider": provider}).
		Where(squirrel.Eq{"delivery_external_id": externalID}).
		Limit(1)

	return r.getOne(ctx, q, externalID)
}

func (r *ReceiptRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key string) (*receipt.Receipt, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var row receiptRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("receipt", key)
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return row.toDomain()
}

// GetStatus loads only the current status.
func (r *ReceiptRepo) GetStatus(ctx context.Context, receiptID id.ID) (receipt.Status, error) {
	sql, args, err := r.builder().
		Select("status").
		From("receipts").
		Where(squirrel.Eq{"id": receiptID}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build query: %w", err)
	}

	var status receipt.Status
	err = r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperror.NewNotFound("receipt", receiptID.String())
		}
		return "", fmt.Errorf("get receipt status: %w", err)
	}
	return status, nil
}

// Update persists the editable fields and recomputed totals.
func (r *ReceiptRepo) Update(ctx context.Context, rec *receipt.Receipt) error {
	items, billDiscount, err := marshalReceiptFields(rec)
	if err != nil {
		return err
	}

	q := r.builder().
		Update("receipts").
		Set("customer_name", rec.CustomerName).
		Set("customer_phone", rec.CustomerPhone).
		Set("items", items).
		Set("bill_discount", billDiscount).
		Set("tax_percent", rec.TaxPercent).
		Set("subtotal", rec.Subtotal).
		Set("taxable_base", rec.TaxableBase).
		Set("tax_amount", rec.TaxAmount).
		Set("grand_total", rec.GrandTotal).
		Set("updated_at", rec.UpdatedAt).
		Where(squirrel.Eq{"id": rec.ID})

	return r.execExpectingRow(ctx, q, rec.ID, "update receipt")
}

// UpdateStatus flips the lifecycle status.
func (r *ReceiptRepo) UpdateStatus(ctx context.Context, receiptID id.ID, status receipt.Status) error {
	q := r.builder().
		Update("receipts").
		Set("status", status).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": receiptID})

	return r.execExpectingRow(ctx, q, receiptID, "update receipt status")
}

// SetDeliveryRef stores the courier handle after a successful dispatch.
func (r *ReceiptRepo) SetDeliveryRef(ctx context.Context, receiptID id.ID, ref receipt.DeliveryRef) error {
	q := r.builder().
		Update("receipts").
		Set("delivery_provider", ref.Provider).
		Set("delivery_external_id", ref.ExternalID).
		Set("delivery_provider_status", ref.ProviderStatus).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": receiptID})

	return r.execExpectingRow(ctx, q, receiptID, "set delivery ref")
}

// UpdateProviderStatus refreshes the stored raw courier status.
func (r *ReceiptRepo) UpdateProviderStatus(ctx context.Context, receiptID id.ID, providerStatus string) error {
	q := r.builder().
		Update("receipts").
		Set("delivery_provider_status", providerStatus).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": receiptID})

	return r.execExpectingRow(ctx, q, receiptID, "update provider status")
}

func (r *ReceiptRepo) execExpectingRow(ctx context.Context, q squirrel.UpdateBuilder, receiptID any, op string) error {
	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", op, err)
	}

	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("receipt", receiptID)
	}
	return nil
}
