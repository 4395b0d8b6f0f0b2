package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/gateway/abacatepay"
	"github.com/moitinho/rifa-api/internal/gateway/stripecard"
	"github.com/moitinho/rifa-api/internal/repository"
)

type stubRaffleRepo struct {
	raffle domain.Raffle
	err    error
}

func (s *stubRaffleRepo) FindByID(ctx context.Context, id uint) (domain.Raffle, error) {
	return s.raffle, s.err
}

type stubTicketRepo struct {
	created   []domain.Ticket
	createErr error

	exists    bool
	existsErr error

	byViewCode    domain.Ticket
	byViewCodeErr error

	byChargeID    domain.Ticket
	byChargeIDErr error

	paidByChargeID int64
	paidByViewCode int64

	chargeIDCalls []string
	viewCodeCalls []string
}

func (s *stubTicketRepo) Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error) {
	if s.createErr != nil {
		return domain.Ticket{}, s.createErr
	}
	s.created = append(s.created, ticket)

	return ticket, nil
}

func (s *stubTicketRepo) Exists(ctx context.Context, raffleID uint, number int) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubTicketRepo) FindByViewCode(ctx context.Context, code string) (domain.Ticket, error) {
	return s.byViewCode, s.byViewCodeErr
}

func (s *stubTicketRepo) FindByChargeID(ctx context.Context, chargeID string) (domain.Ticket, error) {
	return s.byChargeID, s.byChargeIDErr
}

func (s *stubTicketRepo) MarkPaidByChargeID(ctx context.Context, chargeID string) (int64, error) {
	s.chargeIDCalls = append(s.chargeIDCalls, chargeID)

	return s.paidByChargeID, nil
}

func (s *stubTicketRepo) MarkPaidByViewCode(ctx context.Context, code string) (int64, error) {
	s.viewCodeCalls = append(s.viewCodeCalls, code)

	return s.paidByViewCode, nil
}

type stubPixGateway struct {
	customerErr error

	charge     abacatepay.PixCharge
	chargeErr  error
	lastCharge abacatepay.CreatePixChargeInput

	checked    abacatepay.PixCharge
	checkedErr error
	checkCalls int
}

func (s *stubPixGateway) CreateCustomer(ctx context.Context, customer abacatepay.Customer) (string, error) {
	if s.customerErr != nil {
		return "", s.customerErr
	}

	return "cust_1", nil
}

func (s *stubPixGateway) CreatePixCharge(ctx context.Context, input abacatepay.CreatePixChargeInput) (abacatepay.PixCharge, error) {
	s.lastCharge = input
	if s.chargeErr != nil {
		return abacatepay.PixCharge{}, s.chargeErr
	}

	return s.charge, nil
}

func (s *stubPixGateway) CheckPixCharge(ctx context.Context, chargeID string) (abacatepay.PixCharge, error) {
	s.checkCalls++

	return s.checked, s.checkedErr
}

type stubCardGateway struct {
	charge    stripecard.Charge
	err       error
	lastInput stripecard.CreateChargeInput
}

func (s *stubCardGateway) CreateCharge(ctx context.Context, input stripecard.CreateChargeInput) (stripecard.Charge, error) {
	s.lastInput = input

	return s.charge, s.err
}

func testRaffle() domain.Raffle {
	return domain.Raffle{
		ID:          1,
		UserID:      7,
		Title:       "Rifa do bairro",
		TicketPrice: 5.00,
		MaxNumber:   10,
	}
}

func testBuyer() Buyer {
	return Buyer{
		Name:  "Ana",
		TaxID: "11111111111",
		Phone: "11999999999",
	}
}

func newTestPaymentService(raffles *stubRaffleRepo, tickets *stubTicketRepo, pix *stubPixGateway, card CardGateway) *PaymentService {
	return NewPaymentService(raffles, tickets, pix, card, "topsecret")
}

func TestReservePix(t *testing.T) {
	expires := time.Now().Add(20 * time.Minute).UTC().Truncate(time.Second)
	raffles := &stubRaffleRepo{raffle: testRaffle()}
	tickets := &stubTicketRepo{}
	pix := &stubPixGateway{
		charge: abacatepay.PixCharge{
			ID:           "pix_123",
			BRCode:       "00020126...",
			BRCodeBase64: "data:image/png;base64,...",
			Status:       abacatepay.StatusPending,
			ExpiresAt:    expires,
		},
	}

	svc := newTestPaymentService(raffles, tickets, pix, nil)

	got, err := svc.ReservePix(context.Background(), 1, 3, testBuyer())

	require.NoError(t, err)
	assert.Len(t, got.ViewCode, 12)
	assert.Equal(t, "00020126...", got.QRCodeText)
	assert.Equal(t, "data:image/png;base64,...", got.QRCodeBase64)
	assert.Equal(t, 5.00, got.Amount)
	assert.Equal(t, expires, got.ExpiresAt)

	// The charge carries integer minor units and the view code as metadata.
	assert.Equal(t, int64(500), pix.lastCharge.Amount)
	assert.Equal(t, 1200, pix.lastCharge.ExpiresIn)
	assert.Equal(t, got.ViewCode, pix.lastCharge.ExternalID)
	assert.Equal(t, "Bilhete 3 - Rifa do bairro", pix.lastCharge.Description)
	assert.Equal(t, "11111111111@bilhete.rifa", pix.lastCharge.Customer.Email)

	require.Len(t, tickets.created, 1)
	ticket := tickets.created[0]
	assert.Equal(t, domain.PaymentPending, ticket.Status)
	assert.Equal(t, "pix_123", ticket.ChargeID)
	assert.Equal(t, got.ViewCode, ticket.ViewCode)
	assert.Equal(t, 5.00, ticket.AmountPaid)
}

func TestReservePix_UnknownRaffle(t *testing.T) {
	raffles := &stubRaffleRepo{err: repository.ErrRaffleNotFound}
	svc := newTestPaymentService(raffles, &stubTicketRepo{}, &stubPixGateway{}, nil)

	_, err := svc.ReservePix(context.Background(), 99, 3, testBuyer())

	assert.ErrorIs(t, err, ErrRaffleNotFound)
}

func TestReservePix_NumberOutOfRange(t *testing.T) {
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, &stubTicketRepo{}, &stubPixGateway{}, nil)

	for _, number := range []int{0, -1, 11} {
		_, err := svc.ReservePix(context.Background(), 1, number, testBuyer())

		assert.ErrorIs(t, err, ErrNumberOutOfRange, "number %d", number)
	}
}

func TestReservePix_NumberAlreadyTaken(t *testing.T) {
	tickets := &stubTicketRepo{exists: true}
	pix := &stubPixGateway{}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	_, err := svc.ReservePix(context.Background(), 1, 7, testBuyer())

	assert.ErrorIs(t, err, ErrTicketNumberTaken)
	// No gateway calls and no second charge for a taken number.
	assert.Empty(t, pix.lastCharge.ExternalID)
	assert.Empty(t, tickets.created)
}

func TestReservePix_GatewayFailureLeavesNoTicket(t *testing.T) {
	tickets := &stubTicketRepo{}
	pix := &stubPixGateway{chargeErr: errors.New("boom")}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	_, err := svc.ReservePix(context.Background(), 1, 3, testBuyer())

	assert.ErrorIs(t, err, ErrPaymentGateway)
	assert.Empty(t, tickets.created)
}

func TestReservePix_ConcurrentInsertConflict(t *testing.T) {
	// The pre-check passed but another request inserted the same number
	// first; the unique index violation surfaces as the same conflict.
	tickets := &stubTicketRepo{createErr: repository.ErrTicketNumberTaken}
	pix := &stubPixGateway{charge: abacatepay.PixCharge{ID: "pix_123"}}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	_, err := svc.ReservePix(context.Background(), 1, 3, testBuyer())

	assert.ErrorIs(t, err, ErrTicketNumberTaken)
}

func TestReserveCard_NotConfigured(t *testing.T) {
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, &stubTicketRepo{}, &stubPixGateway{}, nil)

	_, err := svc.ReserveCard(context.Background(), 1, 3, testBuyer(), "pm_1")

	assert.ErrorIs(t, err, ErrCardNotConfigured)
}

func TestReserveCard_SucceededPersistsPaid(t *testing.T) {
	tickets := &stubTicketRepo{}
	card := &stubCardGateway{charge: stripecard.Charge{ID: "pi_1", Status: stripecard.StatusSucceeded}}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, &stubPixGateway{}, card)

	got, err := svc.ReserveCard(context.Background(), 1, 3, testBuyer(), "pm_1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Status)
	assert.Equal(t, int64(500), card.lastInput.Amount)

	require.Len(t, tickets.created, 1)
	assert.Equal(t, domain.PaymentPaid, tickets.created[0].Status)
}

func TestReserveCard_OtherStatusStaysPending(t *testing.T) {
	tickets := &stubTicketRepo{}
	card := &stubCardGateway{charge: stripecard.Charge{ID: "pi_1", Status: "requires_action"}}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, &stubPixGateway{}, card)

	got, err := svc.ReserveCard(context.Background(), 1, 3, testBuyer(), "pm_1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.Status)
	require.Len(t, tickets.created, 1)
	assert.Equal(t, domain.PaymentPending, tickets.created[0].Status)
}

func TestConfirmWebhook_InvalidSignature(t *testing.T) {
	tickets := &stubTicketRepo{}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	_, err := svc.ConfirmWebhook(context.Background(), "wrong", WebhookPayload{Status: "PAID", PixID: "pix_1"})

	assert.ErrorIs(t, err, ErrInvalidWebhookSignature)
	assert.Empty(t, tickets.chargeIDCalls)
}

func TestConfirmWebhook_MissingStatusIsNoOp(t *testing.T) {
	tickets := &stubTicketRepo{}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	updated, err := svc.ConfirmWebhook(context.Background(), "topsecret", WebhookPayload{PixID: "pix_1"})

	require.NoError(t, err)
	assert.False(t, updated)
	assert.Empty(t, tickets.chargeIDCalls)
	assert.Empty(t, tickets.viewCodeCalls)
}

func TestConfirmWebhook_PaidByChargeID(t *testing.T) {
	tickets := &stubTicketRepo{paidByChargeID: 1}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	updated, err := svc.ConfirmWebhook(context.Background(), "topsecret", WebhookPayload{Status: "PAID", PixID: "pix_1"})

	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, []string{"pix_1"}, tickets.chargeIDCalls)
	assert.Empty(t, tickets.viewCodeCalls)
}

func TestConfirmWebhook_NestedPayloadFallsBackToViewCode(t *testing.T) {
	tickets := &stubTicketRepo{paidByViewCode: 1}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	var payload WebhookPayload
	payload.Data.ID = "pix_2"
	payload.Data.Status = "PAID"
	payload.Data.Metadata.ExternalID = "A1B2C3D4E5F6"

	updated, err := svc.ConfirmWebhook(context.Background(), "topsecret", payload)

	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, []string{"pix_2"}, tickets.chargeIDCalls)
	assert.Equal(t, []string{"A1B2C3D4E5F6"}, tickets.viewCodeCalls)
}

func TestConfirmWebhook_RedeliveryIsIdempotent(t *testing.T) {
	// Both updates match zero rows the second time around; the webhook is
	// still acknowledged without an error.
	tickets := &stubTicketRepo{}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	updated, err := svc.ConfirmWebhook(context.Background(), "topsecret", WebhookPayload{Status: "PAID", PixID: "pix_1"})

	require.NoError(t, err)
	assert.False(t, updated)
}

func TestCheckStatus_LocalPaidSkipsGateway(t *testing.T) {
	tickets := &stubTicketRepo{byChargeID: domain.Ticket{ChargeID: "pix_1", Status: domain.PaymentPaid}}
	pix := &stubPixGateway{}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, pix, nil)

	got, err := svc.CheckStatus(context.Background(), "pix_1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Status)
	assert.Zero(t, pix.checkCalls)
}

func TestCheckStatus_UpgradesPendingToPaid(t *testing.T) {
	tickets := &stubTicketRepo{
		byChargeID:     domain.Ticket{ChargeID: "pix_1", ViewCode: "A1B2C3D4E5F6", Status: domain.PaymentPending},
		paidByChargeID: 1,
	}
	pix := &stubPixGateway{checked: abacatepay.PixCharge{ID: "pix_1", Status: abacatepay.StatusPaid}}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, pix, nil)

	got, err := svc.CheckStatus(context.Background(), "pix_1")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Status)
	assert.Equal(t, []string{"pix_1"}, tickets.chargeIDCalls)
}

func TestCheckStatus_UnknownCharge(t *testing.T) {
	tickets := &stubTicketRepo{byChargeIDErr: repository.ErrTicketNotFound}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	_, err := svc.CheckStatus(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestCheckStatus_GatewayFailure(t *testing.T) {
	tickets := &stubTicketRepo{byChargeID: domain.Ticket{ChargeID: "pix_1", Status: domain.PaymentPending}}
	pix := &stubPixGateway{checkedErr: errors.New("boom")}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, pix, nil)

	_, err := svc.CheckStatus(context.Background(), "pix_1")

	assert.ErrorIs(t, err, ErrPaymentGateway)
}

func TestViewByCode_ReconcilesPendingTicket(t *testing.T) {
	tickets := &stubTicketRepo{
		byViewCode: domain.Ticket{
			RaffleID:  1,
			Number:    3,
			BuyerName: "Ana",
			ViewCode:  "A1B2C3D4E5F6",
			ChargeID:  "pix_1",
			Status:    domain.PaymentPending,
		},
		paidByChargeID: 1,
	}
	pix := &stubPixGateway{checked: abacatepay.PixCharge{ID: "pix_1", Status: abacatepay.StatusPaid}}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	got, err := svc.ViewByCode(context.Background(), "A1B2C3D4E5F6")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Ticket.Status)
	assert.Equal(t, "Rifa do bairro", got.Raffle.Title)
}

func TestViewByCode_ExpiredChargeStaysPending(t *testing.T) {
	tickets := &stubTicketRepo{
		byViewCode: domain.Ticket{RaffleID: 1, Number: 3, ChargeID: "pix_1", Status: domain.PaymentPending},
	}
	pix := &stubPixGateway{checked: abacatepay.PixCharge{ID: "pix_1", Status: abacatepay.StatusExpired}}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	got, err := svc.ViewByCode(context.Background(), "A1B2C3D4E5F6")

	require.NoError(t, err)
	assert.Equal(t, 1, pix.checkCalls)
	assert.Equal(t, domain.PaymentPending, got.Ticket.Status)
}

func TestViewByCode_GatewayFailureDegradesToLocalStatus(t *testing.T) {
	tickets := &stubTicketRepo{
		byViewCode: domain.Ticket{RaffleID: 1, Number: 3, ChargeID: "pix_1", Status: domain.PaymentPending},
	}
	pix := &stubPixGateway{checkedErr: errors.New("boom")}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	got, err := svc.ViewByCode(context.Background(), "A1B2C3D4E5F6")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, got.Ticket.Status)
}

func TestViewByCode_PaidTicketSkipsGateway(t *testing.T) {
	tickets := &stubTicketRepo{
		byViewCode: domain.Ticket{RaffleID: 1, ChargeID: "pix_1", Status: domain.PaymentPaid},
	}
	pix := &stubPixGateway{}
	svc := newTestPaymentService(&stubRaffleRepo{raffle: testRaffle()}, tickets, pix, nil)

	got, err := svc.ViewByCode(context.Background(), "A1B2C3D4E5F6")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.Ticket.Status)
	assert.Zero(t, pix.checkCalls)
}

func TestViewByCode_UnknownCode(t *testing.T) {
	tickets := &stubTicketRepo{byViewCodeErr: repository.ErrTicketNotFound}
	svc := newTestPaymentService(&stubRaffleRepo{}, tickets, &stubPixGateway{}, nil)

	_, err := svc.ViewByCode(context.Background(), "nope")

	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestGenerateViewCode(t *testing.T) {
	a, err := generateViewCode()
	require.NoError(t, err)
	b, err := generateViewCode()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToUpper(a), a)
}
