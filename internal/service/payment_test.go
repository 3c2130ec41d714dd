package service

import (
	"testing"
	"time"

	"github.com/billcraft/billcraft/internal/api/dto"
	"github.com/billcraft/billcraft/internal/domain/invoice"
	ierr "github.com/billcraft/billcraft/internal/errors"
	"github.com/billcraft/billcraft/internal/testutil"
	"github.com/billcraft/billcraft/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  PaymentService
	testData struct {
		invoice *invoice.Invoice
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(ServiceParams{
		Logger:               s.GetLogger(),
		Config:               s.GetConfig(),
		DB:                   s.GetDB(),
		Cache:                s.GetCache(),
		CustomerRepo:         s.GetStores().CustomerRepo,
		ProductRepo:          s.GetStores().ProductRepo,
		PlanRepo:             s.GetStores().PlanRepo,
		SubRepo:              s.GetStores().SubscriptionRepo,
		InvoiceRepo:          s.GetStores().InvoiceRepo,
		PaymentRepo:          s.GetStores().PaymentRepo,
		IdempotencyGenerator: s.GetIdempotencyGenerator(),
		WebhookPublisher:     s.GetWebhookPublisher(),
	})
	s.setupTestData()
}

func (s *PaymentServiceSuite) setupTestData() {
	ctx := s.GetContext()
	now := time.Now().UTC()

	s.testData.invoice = &invoice.Invoice{
		ID:             "inv_test_payment",
		InvoiceNumber:  "INV-00000001",
		CustomerID:     "cust_test",
		SubscriptionID: "subs_test",
		InvoiceStatus:  types.InvoiceStatusConfirmed,
		BillingReason:  types.InvoiceBillingReasonSubscriptionCreate,
		IssueDate:      now,
		DueDate:        lo.ToPtr(now.AddDate(0, 0, 15)),
		Subtotal:       decimal.NewFromInt(250),
		TaxTotal:       decimal.NewFromInt(20),
		DiscountTotal:  decimal.Zero,
		GrandTotal:     decimal.NewFromInt(270),
		AmountPaid:     decimal.Zero,
		Version:        1,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
	s.NoError(s.GetStores().InvoiceRepo.CreateWithLineItems(ctx, s.testData.invoice))
}

func (s *PaymentServiceSuite) paymentCount() int {
	count, err := s.GetStores().PaymentRepo.Count(s.GetContext(), types.NewNoLimitPaymentFilter())
	s.NoError(err)
	return count
}

func (s *PaymentServiceSuite) TestPayWithoutAmountSettlesInFull() {
	resp, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
	})
	s.NoError(err)

	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)
	s.NotNil(resp.Invoice.PaidDate)
	s.True(resp.Invoice.AmountPaid.Equal(decimal.NewFromInt(270)))
	s.True(resp.Invoice.AmountRemaining.IsZero())

	s.True(resp.Payment.Amount.Equal(decimal.NewFromInt(270)))
	s.Equal(types.PaymentStatusCompleted, resp.Payment.PaymentStatus)
	s.True(resp.Invoice.PaidDate.Equal(resp.Payment.PaymentDate))
	s.Equal(1, s.paymentCount())
}

func (s *PaymentServiceSuite) TestPayAlreadySettledInvoice() {
	_, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeCard,
	})
	s.NoError(err)

	_, err = s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeCard,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrAlreadySettled))
	s.Equal(1, s.paymentCount())
}

func (s *PaymentServiceSuite) TestOverpaymentIsRejected() {
	_, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeNetbanking,
		Amount:        lo.ToPtr(decimal.NewFromInt(300)),
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrOverpaymentRejected))
	s.Zero(s.paymentCount())

	// Invoice is untouched.
	inv, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Equal(types.InvoiceStatusConfirmed, inv.InvoiceStatus)
	s.True(inv.AmountPaid.IsZero())
}

func (s *PaymentServiceSuite) TestPartialPaymentsAccumulate() {
	resp, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
		Amount:        lo.ToPtr(decimal.NewFromInt(100)),
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusConfirmed, resp.Invoice.InvoiceStatus)
	s.Nil(resp.Invoice.PaidDate)
	s.True(resp.Invoice.AmountRemaining.Equal(decimal.NewFromInt(170)))

	// Overpaying the remainder is still rejected.
	_, err = s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
		Amount:        lo.ToPtr(decimal.NewFromInt(200)),
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrOverpaymentRejected))

	// Settling the exact remainder flips the invoice to paid.
	resp, err = s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeCard,
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)
	s.True(resp.Payment.Amount.Equal(decimal.NewFromInt(170)))
	s.Equal(2, s.paymentCount())

	completed, err := s.GetStores().PaymentRepo.ListCompletedByInvoice(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	s.Len(completed, 2)
	s.True(completed[0].Amount.Equal(decimal.NewFromInt(100)))
}

func (s *PaymentServiceSuite) TestPayOverdueInvoice() {
	inv, err := s.GetStores().InvoiceRepo.GetWithLineItems(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	inv.InvoiceStatus = types.InvoiceStatusOverdue
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	resp, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
	})
	s.NoError(err)
	s.Equal(types.InvoiceStatusPaid, resp.Invoice.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestPayCancelledInvoice() {
	inv, err := s.GetStores().InvoiceRepo.GetWithLineItems(s.GetContext(), s.testData.invoice.ID)
	s.NoError(err)
	inv.InvoiceStatus = types.InvoiceStatusCancelled
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	_, err = s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidState))
}

func (s *PaymentServiceSuite) TestInvalidPaymentMethod() {
	_, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodType("CASH"),
	})
	s.Error(err)
	s.True(ierr.Is(err, ierr.ErrInvalidPaymentMethod))
	s.Zero(s.paymentCount())
}

func (s *PaymentServiceSuite) TestNonPositiveAmount() {
	_, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
		Amount:        lo.ToPtr(decimal.Zero),
	})
	s.Error(err)
	s.Zero(s.paymentCount())
}

func (s *PaymentServiceSuite) TestListFiltersByInvoice() {
	_, err := s.service.PayInvoice(s.GetContext(), s.testData.invoice.ID, dto.PayInvoiceRequest{
		PaymentMethod: types.PaymentMethodTypeUPI,
		Amount:        lo.ToPtr(decimal.NewFromInt(50)),
		ReferenceID:   lo.ToPtr("txn_12345"),
	})
	s.NoError(err)

	filter := types.NewNoLimitPaymentFilter()
	filter.InvoiceID = s.testData.invoice.ID
	list, err := s.service.List(s.GetContext(), filter)
	s.NoError(err)
	s.Len(list.Items, 1)
	s.Equal("txn_12345", *list.Items[0].ReferenceID)
}
