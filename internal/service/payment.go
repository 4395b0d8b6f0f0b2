package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/gateway/abacatepay"
	"github.com/moitinho/rifa-api/internal/gateway/stripecard"
	"github.com/moitinho/rifa-api/internal/repository"
)

const chargeExpirySeconds = 1200

var (
	ErrTicketNotFound          = repository.ErrTicketNotFound
	ErrTicketNumberTaken       = repository.ErrTicketNumberTaken
	ErrNumberOutOfRange        = errors.New("ticket number outside the raffle range")
	ErrPaymentGateway          = errors.New("payment gateway request failed")
	ErrInvalidWebhookSignature = errors.New("invalid webhook signature")
	ErrCardNotConfigured       = errors.New("card payments are not configured")
)

type PixGateway interface {
	CreateCustomer(ctx context.Context, customer abacatepay.Customer) (string, error)
	CreatePixCharge(ctx context.Context, input abacatepay.CreatePixChargeInput) (abacatepay.PixCharge, error)
	CheckPixCharge(ctx context.Context, chargeID string) (abacatepay.PixCharge, error)
}

type CardGateway interface {
	CreateCharge(ctx context.Context, input stripecard.CreateChargeInput) (stripecard.Charge, error)
}

type PaymentRaffleRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Raffle, error)
}

type PaymentTicketRepository interface {
	Create(ctx context.Context, ticket domain.Ticket) (domain.Ticket, error)
	Exists(ctx context.Context, raffleID uint, number int) (bool, error)
	FindByViewCode(ctx context.Context, code string) (domain.Ticket, error)
	FindByChargeID(ctx context.Context, chargeID string) (domain.Ticket, error)
	MarkPaidByChargeID(ctx context.Context, chargeID string) (int64, error)
	MarkPaidByViewCode(ctx context.Context, code string) (int64, error)
}

type PaymentService struct {
	raffleRepo    PaymentRaffleRepository
	ticketRepo    PaymentTicketRepository
	pix           PixGateway
	card          CardGateway
	webhookSecret string
}

func NewPaymentService(raffleRepo PaymentRaffleRepository, ticketRepo PaymentTicketRepository, pix PixGateway, card CardGateway, webhookSecret string) *PaymentService {
	return &PaymentService{
		raffleRepo:    raffleRepo,
		ticketRepo:    ticketRepo,
		pix:           pix,
		card:          card,
		webhookSecret: webhookSecret,
	}
}

type Buyer struct {
	Name  string
	TaxID string
	Phone string
}

type PixReservation struct {
	ViewCode     string
	QRCodeBase64 string
	QRCodeText   string
	Amount       float64
	ExpiresAt    time.Time
}

type CardReservation struct {
	ChargeID string
	Status   domain.PaymentStatus
	ViewCode string
}

type ChargeStatus struct {
	Status    domain.PaymentStatus
	ExpiresAt *time.Time
}

type TicketViewResult struct {
	Ticket domain.TicketView
	Raffle struct {
		Title       string
		Description string
		DrawDate    time.Time
	}
}

// ReservePix reserves a number and creates a PIX charge. The ticket row is
// only written after the gateway accepted the charge, so a gateway failure
// leaves the number free.
func (s *PaymentService) ReservePix(ctx context.Context, raffleID uint, number int, buyer Buyer) (PixReservation, error) {
	raffle, code, err := s.checkReservation(ctx, raffleID, number)
	if err != nil {
		return PixReservation{}, err
	}

	customer := abacatepay.Customer{
		Name:      buyer.Name,
		Cellphone: buyer.Phone,
		Email:     buyerEmail(buyer.TaxID),
		TaxID:     buyer.TaxID,
	}

	if _, err = s.pix.CreateCustomer(ctx, customer); err != nil {
		return PixReservation{}, fmt.Errorf("%w: s.pix.CreateCustomer -> %v", ErrPaymentGateway, err)
	}

	charge, err := s.pix.CreatePixCharge(ctx, abacatepay.CreatePixChargeInput{
		Amount:      domain.Cents(raffle.TicketPrice),
		ExpiresIn:   chargeExpirySeconds,
		Description: chargeDescription(number, raffle.Title),
		Customer:    customer,
		ExternalID:  code,
	})
	if err != nil {
		return PixReservation{}, fmt.Errorf("%w: s.pix.CreatePixCharge -> %v", ErrPaymentGateway, err)
	}

	if _, err = s.ticketRepo.Create(ctx, domain.Ticket{
		RaffleID:   raffleID,
		Number:     number,
		BuyerName:  buyer.Name,
		BuyerTaxID: buyer.TaxID,
		BuyerPhone: buyer.Phone,
		AmountPaid: raffle.TicketPrice,
		ViewCode:   code,
		Status:     domain.PaymentPending,
		ChargeID:   charge.ID,
	}); err != nil {
		if errors.Is(err, repository.ErrTicketNumberTaken) {
			return PixReservation{}, ErrTicketNumberTaken
		}

		return PixReservation{}, fmt.Errorf("s.ticketRepo.Create -> %w", err)
	}

	return PixReservation{
		ViewCode:     code,
		QRCodeBase64: charge.BRCodeBase64,
		QRCodeText:   charge.BRCode,
		Amount:       raffle.TicketPrice,
		ExpiresAt:    charge.ExpiresAt,
	}, nil
}

// ReserveCard reserves a number through the card gateway. An immediately
// approved charge persists the ticket as PAID, otherwise as PENDING.
func (s *PaymentService) ReserveCard(ctx context.Context, raffleID uint, number int, buyer Buyer, paymentMethodID string) (CardReservation, error) {
	if s.card == nil {
		return CardReservation{}, ErrCardNotConfigured
	}

	raffle, code, err := s.checkReservation(ctx, raffleID, number)
	if err != nil {
		return CardReservation{}, err
	}

	charge, err := s.card.CreateCharge(ctx, stripecard.CreateChargeInput{
		Amount:          domain.Cents(raffle.TicketPrice),
		Description:     chargeDescription(number, raffle.Title),
		PaymentMethodID: paymentMethodID,
		BuyerEmail:      buyerEmail(buyer.TaxID),
		ExternalID:      code,
	})
	if err != nil {
		return CardReservation{}, fmt.Errorf("%w: s.card.CreateCharge -> %v", ErrPaymentGateway, err)
	}

	status := domain.PaymentPending
	if charge.Status == stripecard.StatusSucceeded {
		status = domain.PaymentPaid
	}

	if _, err = s.ticketRepo.Create(ctx, domain.Ticket{
		RaffleID:   raffleID,
		Number:     number,
		BuyerName:  buyer.Name,
		BuyerTaxID: buyer.TaxID,
		BuyerPhone: buyer.Phone,
		AmountPaid: raffle.TicketPrice,
		ViewCode:   code,
		Status:     status,
		ChargeID:   charge.ID,
	}); err != nil {
		if errors.Is(err, repository.ErrTicketNumberTaken) {
			return CardReservation{}, ErrTicketNumberTaken
		}

		return CardReservation{}, fmt.Errorf("s.ticketRepo.Create -> %w", err)
	}

	return CardReservation{
		ChargeID: charge.ID,
		Status:   status,
		ViewCode: code,
	}, nil
}

type WebhookPayload struct {
	Status    string `json:"status"`
	PixID     string `json:"pixId"`
	ID        string `json:"id"`
	BillingID string `json:"billingId"`
	Metadata  struct {
		ExternalID string `json:"externalId"`
	} `json:"metadata"`
	Data struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Metadata struct {
			ExternalID string `json:"externalId"`
		} `json:"metadata"`
	} `json:"data"`
}

// ConfirmWebhook handles a gateway callback. Payloads without a recognizable
// status are acknowledged as no-ops; repeated delivery of the same payload is
// harmless because the update matches zero rows the second time.
func (s *PaymentService) ConfirmWebhook(ctx context.Context, signature string, payload WebhookPayload) (bool, error) {
	if subtle.ConstantTimeCompare([]byte(signature), []byte(s.webhookSecret)) != 1 {
		return false, ErrInvalidWebhookSignature
	}

	status := payload.Status
	if status == "" {
		status = payload.Data.Status
	}
	if status == "" {
		return false, nil
	}
	if status != string(domain.PaymentPaid) {
		return false, nil
	}

	chargeID := firstNonEmpty(payload.PixID, payload.ID, payload.BillingID, payload.Data.ID)
	viewCode := firstNonEmpty(payload.Metadata.ExternalID, payload.Data.Metadata.ExternalID)

	updated, err := s.markPaid(ctx, chargeID, viewCode)
	if err != nil {
		return false, err
	}

	return updated > 0, nil
}

// CheckStatus is the client-pollable reconciliation path.
func (s *PaymentService) CheckStatus(ctx context.Context, chargeID string) (ChargeStatus, error) {
	ticket, err := s.ticketRepo.FindByChargeID(ctx, chargeID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return ChargeStatus{}, ErrTicketNotFound
		}

		return ChargeStatus{}, fmt.Errorf("s.ticketRepo.FindByChargeID -> %w", err)
	}

	if ticket.Status == domain.PaymentPaid {
		return ChargeStatus{Status: domain.PaymentPaid}, nil
	}

	status, expiresAt, err := s.reconcile(ctx, ticket)
	if err != nil {
		return ChargeStatus{}, fmt.Errorf("%w: s.reconcile -> %v", ErrPaymentGateway, err)
	}

	return ChargeStatus{Status: status, ExpiresAt: expiresAt}, nil
}

// ViewByCode looks a ticket up by its view code, opportunistically upgrading
// an unpaid ticket when the gateway already reports it as paid. Gateway
// failures degrade to the locally known status.
func (s *PaymentService) ViewByCode(ctx context.Context, code string) (TicketViewResult, error) {
	ticket, err := s.ticketRepo.FindByViewCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return TicketViewResult{}, ErrTicketNotFound
		}

		return TicketViewResult{}, fmt.Errorf("s.ticketRepo.FindByViewCode -> %w", err)
	}

	if ticket.Status != domain.PaymentPaid && ticket.ChargeID != "" {
		status, _, err := s.reconcile(ctx, ticket)
		if err != nil {
			zap.L().Warn("status reconciliation failed, serving local status",
				zap.String("charge_id", ticket.ChargeID),
				zap.Error(err),
			)
		} else if status == domain.PaymentPaid {
			// The buyer view only ever shows the stored status or an
			// upgrade to paid, never an intermediate gateway status.
			ticket.Status = status
		}
	}

	raffle, err := s.raffleRepo.FindByID(ctx, ticket.RaffleID)
	if err != nil {
		return TicketViewResult{}, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}

	result := TicketViewResult{
		Ticket: domain.TicketView{
			Number:     ticket.Number,
			BuyerName:  ticket.BuyerName,
			BuyerPhone: ticket.BuyerPhone,
			Status:     ticket.Status,
			ReservedAt: ticket.ReservedAt,
		},
	}
	result.Raffle.Title = raffle.Title
	result.Raffle.Description = raffle.Description
	result.Raffle.DrawDate = raffle.DrawDate

	return result, nil
}

type ReceiptData struct {
	Ticket domain.Ticket
	Raffle domain.Raffle
}

// Receipt returns the data for the rendered receipt page. Purely a read.
func (s *PaymentService) Receipt(ctx context.Context, code string) (ReceiptData, error) {
	ticket, err := s.ticketRepo.FindByViewCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return ReceiptData{}, ErrTicketNotFound
		}

		return ReceiptData{}, fmt.Errorf("s.ticketRepo.FindByViewCode -> %w", err)
	}

	raffle, err := s.raffleRepo.FindByID(ctx, ticket.RaffleID)
	if err != nil {
		return ReceiptData{}, fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}

	return ReceiptData{Ticket: ticket, Raffle: raffle}, nil
}

// checkReservation validates the raffle, the number range and the number's
// availability, and generates the view code shared by both payment paths.
func (s *PaymentService) checkReservation(ctx context.Context, raffleID uint, number int) (domain.Raffle, string, error) {
	raffle, err := s.raffleRepo.FindByID(ctx, raffleID)
	if err != nil {
		if errors.Is(err, repository.ErrRaffleNotFound) {
			return domain.Raffle{}, "", ErrRaffleNotFound
		}

		return domain.Raffle{}, "", fmt.Errorf("s.raffleRepo.FindByID -> %w", err)
	}

	if number < 1 || number > raffle.MaxNumber {
		return domain.Raffle{}, "", ErrNumberOutOfRange
	}

	taken, err := s.ticketRepo.Exists(ctx, raffleID, number)
	if err != nil {
		return domain.Raffle{}, "", fmt.Errorf("s.ticketRepo.Exists -> %w", err)
	}
	if taken {
		return domain.Raffle{}, "", ErrTicketNumberTaken
	}

	code, err := generateViewCode()
	if err != nil {
		return domain.Raffle{}, "", fmt.Errorf("generateViewCode -> %w", err)
	}

	return raffle, code, nil
}

// reconcile asks the gateway for the charge status and upgrades the local row
// to PAID when the gateway reports payment. It never downgrades.
func (s *PaymentService) reconcile(ctx context.Context, ticket domain.Ticket) (domain.PaymentStatus, *time.Time, error) {
	charge, err := s.pix.CheckPixCharge(ctx, ticket.ChargeID)
	if err != nil {
		return ticket.Status, nil, fmt.Errorf("s.pix.CheckPixCharge -> %w", err)
	}

	var expiresAt *time.Time
	if !charge.ExpiresAt.IsZero() {
		expiresAt = &charge.ExpiresAt
	}

	if charge.Status == abacatepay.StatusPaid && ticket.Status != domain.PaymentPaid {
		if _, err = s.markPaid(ctx, ticket.ChargeID, ticket.ViewCode); err != nil {
			return ticket.Status, expiresAt, err
		}

		return domain.PaymentPaid, expiresAt, nil
	}

	if charge.Status == "" {
		return ticket.Status, expiresAt, nil
	}

	return domain.PaymentStatus(charge.Status), expiresAt, nil
}

// markPaid is the single write path for the PENDING → PAID transition, used
// by the webhook, the status poll and the view-code lookup. It tries the
// charge id first and falls back to the view code.
func (s *PaymentService) markPaid(ctx context.Context, chargeID, viewCode string) (int64, error) {
	var updated int64
	var err error

	if chargeID != "" {
		updated, err = s.ticketRepo.MarkPaidByChargeID(ctx, chargeID)
		if err != nil {
			return 0, fmt.Errorf("s.ticketRepo.MarkPaidByChargeID -> %w", err)
		}
	}

	if updated == 0 && viewCode != "" {
		updated, err = s.ticketRepo.MarkPaidByViewCode(ctx, viewCode)
		if err != nil {
			return 0, fmt.Errorf("s.ticketRepo.MarkPaidByViewCode -> %w", err)
		}
	}

	return updated, nil
}

// generateViewCode returns 6 random bytes as 12 uppercase hex characters.
// Statistically unique; collisions are not checked.
func generateViewCode() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

func chargeDescription(number int, title string) string {
	return fmt.Sprintf("Bilhete %d - %s", number, title)
}

// buyerEmail synthesizes the gateway-side email from the buyer tax id; the
// platform never collects real buyer emails.
func buyerEmail(taxID string) string {
	return taxID + "@bilhete.rifa"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
