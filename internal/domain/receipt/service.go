package receipt

import (
	"context"
	"time"

	"centavo/internal/core/apperror"
	appctx "centavo/internal/core/context"
	"centavo/internal/core/id"
	"centavo/internal/core/numerator"
	"centavo/internal/core/tx"
	"centavo/internal/core/types"
	"centavo/internal/domain/audit"
	"centavo/internal/domain/delivery"
	"centavo/internal/domain/pricing"
	"centavo/pkg/logger"
)

// CashLedger is the slice of the cashbox ledger the receipt service needs:
// posting the cash effect of a collected sale. The full ledger lives in
// the cashbox package.
type CashLedger interface {
	PostSaleCollection(ctx context.Context, receiptID id.ID, amount types.Money, method string) error
}

// Service provides business logic for receipts: pricing, numbering,
// editability guarding, delivery dispatch and status merging.
type Service struct {
	repo      Repository
	registry  *delivery.Registry
	numbers   numerator.Generator
	txManager tx.Manager
	ledger    CashLedger
	auditor   audit.Recorder
}

// NewService creates a receipt service. ledger may be nil when cash
// collection endpoints are not wired (e.g. purchase-only deployments).
func NewService(
	repo Repository,
	registry *delivery.Registry,
	numbers numerator.Generator,
	txManager tx.Manager,
	ledger CashLedger,
	auditor audit.Recorder,
) *Service {
	if auditor == nil {
		auditor = audit.Nop{}
	}
	return &Service{
		repo:      repo,
		registry:  registry,
		numbers:   numbers,
		txManager: txManager,
		ledger:    ledger,
		auditor:   auditor,
	}
}

// CreateInput is everything needed to open a new receipt.
type CreateInput struct {
	Kind          Kind
	CustomerName  string
	CustomerPhone string
	Items         []pricing.LineItem
	BillDiscount  *pricing.Discount
	TaxPercent    types.Money
}

// numberPrefix returns the document number prefix per receipt kind.
func numberPrefix(kind Kind) string {
	if kind == KindPurchase {
		return "PUR"
	}
	return "RCP"
}

// Create prices and persists a new receipt in pending status.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Receipt, error) {
	if in.Kind != KindSale && in.Kind != KindPurchase {
		return nil, apperror.NewValidation("kind must be sale or purchase").
			WithDetail("kind", string(in.Kind))
	}
	if len(in.Items) == 0 {
		return nil, apperror.NewValidation("receipt must have at least one item")
	}

	totals, err := pricing.ComputeTotals(pricing.Input{
		Items:        in.Items,
		BillDiscount: in.BillDiscount,
		TaxPercent:   in.TaxPercent,
	}, pricing.Options{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	number, err := s.numbers.GetNextNumber(ctx, numerator.DefaultConfig(numberPrefix(in.Kind)), now)
	if err != nil {
		return nil, err
	}

	r := &Receipt{
		ID:            id.New(),
		Number:        number,
		Kind:          in.Kind,
		Status:        StatusPending,
		CustomerName:  in.CustomerName,
		CustomerPhone: in.CustomerPhone,
		Items:         in.Items,
		BillDiscount:  in.BillDiscount,
		TaxPercent:    in.TaxPercent,
		Subtotal:      totals.Subtotal,
		TaxableBase:   totals.TaxableBase,
		TaxAmount:     totals.TaxAmount,
		GrandTotal:    totals.GrandTotal,
		CreatedBy:     appctx.GetUserID(ctx),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, "receipt", r.ID, audit.ActionCreate, r)
	return r, nil
}

// Get loads a receipt by ID.
func (s *Service) Get(ctx context.Context, receiptID id.ID) (*Receipt, error) {
	return s.repo.Get(ctx, receiptID)
}

// EnsureEditable is the single authority consulted before any mutation to
// a receipt's items, discounts or delivery assignment. It returns the
// current status, or RECEIPT_LOCKED once the receipt is completed.
func (s *Service) EnsureEditable(ctx context.Context, receiptID id.ID) (Status, error) {
	status, err := s.repo.GetStatus(ctx, receiptID)
	if err != nil {
		return "", err
	}
	if status == StatusCompleted {
		return "", apperror.NewReceiptLocked(receiptID)
	}
	return status, nil
}

// UpdateInput carries the editable receipt fields.
type UpdateInput struct {
	CustomerName  string
	CustomerPhone string
	Items         []pricing.LineItem
	BillDiscount  *pricing.Discount
	TaxPercent    types.Money
}

// Update reprices and persists an editable receipt.
func (s *Service) Update(ctx context.Context, receiptID id.ID, in UpdateInput) (*Receipt, error) {
	if _, err := s.EnsureEditable(ctx, receiptID); err != nil {
		return nil, err
	}
	if len(in.Items) == 0 {
		return nil, apperror.NewValidation("receipt must have at least one item")
	}

	totals, err := pricing.ComputeTotals(pricing.Input{
		Items:        in.Items,
		BillDiscount: in.BillDiscount,
		TaxPercent:   in.TaxPercent,
	}, pricing.Options{})
	if err != nil {
		return nil, err
	}

	r, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}

	r.CustomerName = in.CustomerName
	r.CustomerPhone = in.CustomerPhone
	r.Items = in.Items
	r.BillDiscount = in.BillDiscount
	r.TaxPercent = in.TaxPercent
	r.Subtotal = totals.Subtotal
	r.TaxableBase = totals.TaxableBase
	r.TaxAmount = totals.TaxAmount
	r.GrandTotal = totals.GrandTotal
	r.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}

	s.auditor.Record(ctx, "receipt", r.ID, audit.ActionUpdate, r)
	return r, nil
}

// ChangeStatus applies a guarded status transition.
func (s *Service) ChangeStatus(ctx context.Context, receiptID id.ID, next Status) (Status, error) {
	current, err := s.repo.GetStatus(ctx, receiptID)
	if err != nil {
		return "", err
	}
	if err := AssertTransition(current, next); err != nil {
		return "", err
	}
	if current == next {
		return current, nil
	}
	if err := s.repo.UpdateStatus(ctx, receiptID, next); err != nil {
		return "", err
	}
	s.auditor.Record(ctx, "receipt", receiptID, audit.ActionStatusChange,
		map[string]string{"from": string(current), "to": string(next)})
	return next, nil
}

// AssignDeliveryInput addresses a dispatch.
type AssignDeliveryInput struct {
	CompanyKey  string
	Destination delivery.Destination
	Items       []delivery.OrderItem
}

// AssignDelivery dispatches a sale receipt through the selected courier and
// stores the returned reference. The receipt moves to ordered: dispatch is
// what establishes that state, subsequent changes go through the guard.
func (s *Service) AssignDelivery(ctx context.Context, receiptID id.ID, in AssignDeliveryInput) (*delivery.OrderRef, error) {
	r, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r.IsCompleted() {
		return nil, apperror.NewReceiptLocked(receiptID)
	}
	if r.Kind != KindSale {
		return nil, apperror.NewValidation("only sale receipts can be dispatched for delivery")
	}
	if r.Delivery != nil {
		// A second dispatch would orphan the first courier order and
		// rewind the lifecycle behind the guard's back.
		return nil, apperror.NewValidation("receipt is already dispatched for delivery").
			WithDetail("provider", r.Delivery.Provider).
			WithDetail("external_id", r.Delivery.ExternalID)
	}

	order := delivery.Order{
		Customer: delivery.Customer{
			Phone: r.CustomerPhone,
			Name:  r.CustomerName,
		},
		Destination: in.Destination,
		Items:       in.Items,
		CODAmount:   r.GrandTotal,
	}

	ref, err := s.registry.Dispatch(ctx, in.CompanyKey, order)
	if err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.SetDeliveryRef(ctx, receiptID, DeliveryRef{
			Provider:       string(ref.Provider),
			ExternalID:     ref.ExternalID,
			ProviderStatus: ref.ProviderStatus,
		}); err != nil {
			return err
		}
		return s.repo.UpdateStatus(ctx, receiptID, StatusOrdered)
	})
	if err != nil {
		// The courier order exists upstream but our reference did not land.
		// Reconciliation is operational: the order stays pollable by ID.
		return nil, err
	}

	s.auditor.Record(ctx, "receipt", receiptID, audit.ActionStatusChange,
		map[string]string{"from": string(r.Status), "to": string(StatusOrdered), "external_id": ref.ExternalID})
	return ref, nil
}

// RefreshDeliveryStatus polls the courier for a receipt's shipment and
// merges the mapped status into the receipt, gated by the lifecycle guard.
// A provider status whose mapped edge is not allowed (stale webhooks,
// out-of-order polls) leaves the receipt untouched.
func (s *Service) RefreshDeliveryStatus(ctx context.Context, receiptID id.ID) (*delivery.StatusResult, error) {
	r, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r.Delivery == nil {
		return nil, apperror.NewValidation("receipt has no delivery assigned").
			WithDetail("receipt_id", receiptID.String())
	}

	res, err := s.registry.PollStatus(ctx, r.Delivery.Provider, r.Delivery.ExternalID)
	if err != nil {
		return nil, err
	}

	if err := s.applyDeliveryStatus(ctx, r, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyProviderStatus merges a raw courier status pushed via webhook,
// running it through the same taxonomy and guard as polling.
func (s *Service) ApplyProviderStatus(ctx context.Context, receiptID id.ID, raw string) (*delivery.StatusResult, error) {
	r, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if r.Delivery == nil {
		return nil, apperror.NewValidation("receipt has no delivery assigned").
			WithDetail("receipt_id", receiptID.String())
	}

	res := &delivery.StatusResult{
		ProviderStatus: raw,
		Internal:       delivery.MapProviderStatus(delivery.Provider(r.Delivery.Provider), raw),
	}
	if err := s.applyDeliveryStatus(ctx, r, res); err != nil {
		return nil, err
	}
	return res, nil
}

// ApplyProviderStatusByRef is the webhook entry point: couriers identify
// shipments by their own tracking ID, not ours.
func (s *Service) ApplyProviderStatusByRef(ctx context.Context, provider, externalID, raw string) (*delivery.StatusResult, error) {
	r, err := s.repo.FindByDeliveryRef(ctx, provider, externalID)
	if err != nil {
		return nil, err
	}
	return s.ApplyProviderStatus(ctx, r.ID, raw)
}

func (s *Service) applyDeliveryStatus(ctx context.Context, r *Receipt, res *delivery.StatusResult) error {
	if err := s.repo.UpdateProviderStatus(ctx, r.ID, res.ProviderStatus); err != nil {
		return err
	}

	next, ok := statusFromDelivery(res.Internal)
	if !ok {
		logger.Info(ctx, "delivery status has no receipt state, keeping current",
			"receipt_id", r.ID, "delivery_status", res.Internal)
		return nil
	}

	if err := AssertTransition(r.Status, next); err != nil {
		logger.Warn(ctx, "courier status not applied, transition rejected",
			"receipt_id", r.ID, "from", r.Status, "to", next)
		return nil
	}
	if r.Status == next {
		return nil
	}

	if err := s.repo.UpdateStatus(ctx, r.ID, next); err != nil {
		return err
	}
	s.auditor.Record(ctx, "receipt", r.ID, audit.ActionStatusChange,
		map[string]string{"from": string(r.Status), "to": string(next), "provider_status": res.ProviderStatus})
	return nil
}

// CollectPayment records that a sale's cash was collected in person:
// the receipt transitions to payment_collected and the cash effect posts
// to the open cashbox session, atomically.
func (s *Service) CollectPayment(ctx context.Context, receiptID id.ID, method string) error {
	r, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return err
	}
	if r.Kind != KindSale {
		return apperror.NewValidation("only sale receipts collect payment")
	}
	if r.Status == StatusPaymentCollected {
		// The guard treats same-status as a no-op, so a retried collect
		// must bail out here or the cash effect posts twice.
		logger.Info(ctx, "payment already collected, skipping",
			"receipt_id", receiptID)
		return nil
	}
	if err := AssertTransition(r.Status, StatusPaymentCollected); err != nil {
		return err
	}
	if s.ledger == nil {
		return apperror.NewInternal(nil).WithDetail("reason", "cash ledger not configured")
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateStatus(ctx, receiptID, StatusPaymentCollected); err != nil {
			return err
		}
		if err := s.ledger.PostSaleCollection(ctx, receiptID, r.GrandTotal, method); err != nil {
			return err
		}
		s.auditor.Record(ctx, "receipt", receiptID, audit.ActionStatusChange,
			map[string]string{"from": string(r.Status), "to": string(StatusPaymentCollected)})
		return nil
	})
}
