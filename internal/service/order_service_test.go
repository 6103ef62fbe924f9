package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bouncehub/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderServiceForTest() (OrderService, *fakeOrderRepo, *fakeContactRepo, *fakeAnalytics) {
	orderRepo := newFakeOrderRepo()
	contactRepo := newFakeContactRepo()
	analytics := &fakeAnalytics{}
	svc := NewOrderService(orderRepo, contactRepo, fakeTxManager{}, analytics)
	return svc, orderRepo, contactRepo, analytics
}

func checkoutFixture() CheckoutRequest {
	return CheckoutRequest{
		CustomerName:    "Jane Smith",
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "555-0100",
		EventDate:       time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC),
		DeliveryAddress: "12 Elm St",
		Items: []CheckoutItem{
			{ItemType: "rental", Name: "Castle Bounce House", Quantity: 1, UnitPrice: "150.00"},
		},
		TaxAmount:     "12.38",
		DeliveryFee:   "20",
		DepositAmount: "50",
		PaymentMethod: "card",
	}
}

func TestCheckoutPricing(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	assert.Equal(t, "150.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "12.38", order.TaxAmount.StringFixed(2))
	assert.Equal(t, "20.00", order.DeliveryFee.StringFixed(2))
	// 3% of the subtotal
	assert.Equal(t, "4.50", order.ProcessingFee.StringFixed(2))
	assert.Equal(t, "186.88", order.TotalAmount.StringFixed(2))
	assert.Equal(t, "136.88", order.BalanceDue.StringFixed(2))

	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.PaymentPending, order.PaymentStatus)

	expectedNumber := fmt.Sprintf("BB-%d-0001", time.Now().Year())
	assert.Equal(t, expectedNumber, order.OrderNumber)
}

func TestCheckoutDefaultsDeliveryFee(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	req := checkoutFixture()
	req.DeliveryFee = ""
	order, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "20.00", order.DeliveryFee.StringFixed(2))
}

func TestCheckoutSequencesOrderNumbers(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	first, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)
	second, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("BB-%d-0001", year), first.OrderNumber)
	assert.Equal(t, fmt.Sprintf("BB-%d-0002", year), second.OrderNumber)
}

func TestCheckoutConvertsContact(t *testing.T) {
	svc, _, contactRepo, _ := newOrderServiceForTest()

	contact := &model.Contact{Name: "Jane Smith", Email: "jane@example.com", Status: model.ContactNew}
	require.NoError(t, contactRepo.Create(context.Background(), contact))

	req := checkoutFixture()
	req.ContactID = contact.ID.String()
	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	updated, err := contactRepo.FindByID(context.Background(), contact.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ContactConverted, updated.Status)
}

func TestCheckoutTracksFunnelEvent(t *testing.T) {
	svc, _, _, analytics := newOrderServiceForTest()

	req := checkoutFixture()
	req.SessionID = "sess-123"
	_, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, analytics.events, 1)
	assert.Equal(t, model.EventCheckoutComplete, analytics.events[0].EventType)
	assert.Equal(t, "sess-123", analytics.events[0].SessionID)
}

func TestUpdateStatusLegalAndIllegalMoves(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	// pending -> processing is legal
	order, err = svc.UpdateStatus(context.Background(), order.ID.String(), UpdateOrderStatusRequest{Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, order.Status)

	// processing -> confirmed skips paid and must be rejected
	_, err = svc.UpdateStatus(context.Background(), order.ID.String(), UpdateOrderStatusRequest{Status: "confirmed"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidTransition)

	// the rejected move wrote nothing
	current, err := svc.GetOrder(context.Background(), order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.OrderProcessing, current.Status)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID.String(), UpdateOrderStatusRequest{Status: "shipped"})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestCapturePaymentFullAmount(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	order, err = svc.CapturePayment(context.Background(), order.ID.String(), CapturePaymentRequest{Amount: "186.88"})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentPaid, order.PaymentStatus)
	assert.Equal(t, model.OrderPaid, order.Status)
	assert.True(t, order.BalanceDue.Equal(decimal.Zero), "balance should be zero after full capture, got %s", order.BalanceDue)
}

func TestCapturePaymentDeposit(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	order, err = svc.CapturePayment(context.Background(), order.ID.String(), CapturePaymentRequest{Amount: "50"})
	require.NoError(t, err)

	assert.Equal(t, model.PaymentAuthorized, order.PaymentStatus)
	// deposit does not advance the order itself
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, "136.88", order.BalanceDue.StringFixed(2))
}

func TestCapturePaymentMismatchRecordsFailure(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	_, err = svc.CapturePayment(context.Background(), order.ID.String(), CapturePaymentRequest{Amount: "99.99"})
	require.Error(t, err)

	// the failed capture is persisted even though the call errors
	stored, findErr := orderRepo.FindByID(context.Background(), order.ID)
	require.NoError(t, findErr)
	assert.Equal(t, model.PaymentFailed, stored.PaymentStatus)
}

func TestRefundFullMovesOrderToRefunded(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)
	order, err = svc.CapturePayment(context.Background(), order.ID.String(), CapturePaymentRequest{Amount: "186.88"})
	require.NoError(t, err)

	order, err = svc.Refund(context.Background(), order.ID.String(), RefundRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.OrderRefunded, order.Status)
	assert.Equal(t, model.PaymentRefunded, order.PaymentStatus)
}

func TestRefundPartialKeepsOrderStatus(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)
	order, err = svc.CapturePayment(context.Background(), order.ID.String(), CapturePaymentRequest{Amount: "186.88"})
	require.NoError(t, err)

	order, err = svc.Refund(context.Background(), order.ID.String(), RefundRequest{Amount: "25.00"})
	require.NoError(t, err)

	assert.Equal(t, model.OrderPaid, order.Status)
	assert.Equal(t, model.PaymentPartiallyRefunded, order.PaymentStatus)
}

func TestRefundPendingOrderRejected(t *testing.T) {
	svc, _, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	_, err = svc.Refund(context.Background(), order.ID.String(), RefundRequest{})
	assert.ErrorIs(t, err, model.ErrInvalidTransition)
}

func TestDeleteOrderGuard(t *testing.T) {
	svc, orderRepo, _, _ := newOrderServiceForTest()

	order, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)

	// pending orders delete fine
	require.NoError(t, svc.DeleteOrder(context.Background(), order.ID.String()))

	// paid orders do not
	paid, err := svc.Checkout(context.Background(), checkoutFixture())
	require.NoError(t, err)
	paid, err = svc.CapturePayment(context.Background(), paid.ID.String(), CapturePaymentRequest{Amount: "186.88"})
	require.NoError(t, err)

	err = svc.DeleteOrder(context.Background(), paid.ID.String())
	assert.ErrorIs(t, err, model.ErrOrderNotDeletable)

	_, err = orderRepo.FindByID(context.Background(), paid.ID)
	assert.NoError(t, err, "paid order must survive the delete attempt")
}
