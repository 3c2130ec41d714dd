package service

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/domain/payment"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/billcraft/billcraft/internal/validator"
)

// PaymentService records settlements against issued invoices.
type PaymentService interface {
	// PayInvoice applies a payment to a payable invoice. When the request
	// carries no amount the invoice's remaining balance is settled in full.
	PayInvoice(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest) (*dto.PayInvoiceResponse, error)
	Get(ctx context.Context, id string) (*dto.PaymentResponse, error)
	List(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error)
}

type paymentService struct {
	ServiceParams
}

func NewPaymentService(params ServiceParams) PaymentService {
	return &paymentService{ServiceParams: params}
}

func (s *paymentService) PayInvoice(ctx context.Context, invoiceID string, req dto.PayInvoiceRequest) (*dto.PayInvoiceResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var resp *dto.PayInvoiceResponse

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.DB.LockEntity(ctx, "invoice:"+invoiceID); err != nil {
			return err
		}

		inv, err := s.InvoiceRepo.GetWithLineItems(ctx, invoiceID)
		if err != nil {
			return err
		}

		if inv.InvoiceStatus == types.InvoiceStatusPaid {
			return ierr.NewErrorf("invoice %s is already settled", inv.ID).
				WithHint("The invoice has been paid in full").
				WithReportableDetails(map[string]any{
					"invoice_id": inv.ID,
					"paid_date":  inv.PaidDate,
				}).
				Mark(ierr.ErrAlreadySettled)
		}
		if !inv.InvoiceStatus.IsPayable() {
			return ierr.NewErrorf("invoice %s is %s", inv.ID, inv.InvoiceStatus).
				WithHint("Only confirmed or overdue invoices accept payments").
				WithReportableDetails(map[string]any{
					"invoice_id":     inv.ID,
					"invoice_status": inv.InvoiceStatus,
				}).
				Mark(ierr.ErrInvalidState)
		}

		remaining := inv.GetRemainingAmount()
		amount := remaining
		if req.Amount != nil {
			amount = *req.Amount
		}
		if amount.GreaterThan(remaining) {
			return ierr.NewErrorf("payment of %s exceeds remaining balance %s on invoice %s",
				amount, remaining, inv.ID).
				WithHint("Payments above the remaining balance are rejected").
				WithReportableDetails(map[string]any{
					"invoice_id":       inv.ID,
					"amount":           amount,
					"amount_remaining": remaining,
				}).
				Mark(ierr.ErrOverpaymentRejected)
		}

		now := time.Now().UTC()
		pay := &payment.Payment{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PAYMENT),
			InvoiceID:     inv.ID,
			Amount:        amount,
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: types.PaymentStatusCompleted,
			ReferenceID:   req.ReferenceID,
			PaymentDate:   now,
			Metadata:      req.Metadata,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}
		if err := s.PaymentRepo.Create(ctx, pay); err != nil {
			return err
		}

		inv.AmountPaid = inv.AmountPaid.Add(amount)
		if inv.IsSettled() {
			inv.InvoiceStatus = types.InvoiceStatusPaid
			inv.PaidDate = &now
		}
		if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
			return err
		}

		s.Logger.Infow("recorded payment",
			"payment_id", pay.ID,
			"invoice_id", inv.ID,
			"amount", amount,
			"invoice_status", inv.InvoiceStatus,
		)
		s.publishWebhookEvent(ctx, types.WebhookEventPaymentSuccess, dto.NewPaymentResponse(pay))
		s.publishWebhookEvent(ctx, types.WebhookEventInvoiceUpdatePayment, dto.NewInvoiceResponse(inv))

		resp = &dto.PayInvoiceResponse{
			Invoice: dto.NewInvoiceResponse(inv),
			Payment: dto.NewPaymentResponse(pay),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *paymentService) Get(ctx context.Context, id string) (*dto.PaymentResponse, error) {
	pay, err := s.PaymentRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPaymentResponse(pay), nil
}

func (s *paymentService) List(ctx context.Context, filter *types.PaymentFilter) (*dto.ListPaymentsResponse, error) {
	if filter == nil {
		filter = types.NewPaymentFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Invalid payment filter").
			Mark(ierr.ErrValidation)
	}

	payments, err := s.PaymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.PaymentRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.PaymentResponse, len(payments))
	for i, pay := range payments {
		items[i] = dto.NewPaymentResponse(pay)
	}

	return &dto.ListPaymentsResponse{
		Items:      items,
		Pagination: types.PaginationResponse{Total: total, Limit: filter.GetLimit(), Offset: filter.GetOffset()},
	}, nil
}
