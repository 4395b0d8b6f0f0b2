package v1

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moitinho/rifa-api/internal/api/handler/v1/request"
	"github.com/moitinho/rifa-api/internal/api/handler/v1/response"
	"github.com/moitinho/rifa-api/internal/service"
)

type PaymentService interface {
	ReservePix(ctx context.Context, raffleID uint, number int, buyer service.Buyer) (service.PixReservation, error)
	ReserveCard(ctx context.Context, raffleID uint, number int, buyer service.Buyer, paymentMethodID string) (service.CardReservation, error)
	ConfirmWebhook(ctx context.Context, signature string, payload service.WebhookPayload) (bool, error)
	CheckStatus(ctx context.Context, chargeID string) (service.ChargeStatus, error)
	ViewByCode(ctx context.Context, code string) (service.TicketViewResult, error)
	Receipt(ctx context.Context, code string) (service.ReceiptData, error)
}

type PaymentHandler struct {
	svc     PaymentService
	receipt *template.Template
}

func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{
		svc:     svc,
		receipt: template.Must(template.New("receipt").Parse(receiptTemplate)),
	}
}

// HandleReservePix godoc
// @Summary      Reserve a number and create a PIX charge
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.PixReservationRequest true "request body"
// @Success      201      {object}  response.PixReservationResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /payments/pix [post]
func (h *PaymentHandler) HandleReservePix(ctx *gin.Context) {
	var req request.PixReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reservation, err := h.svc.ReservePix(ctx.Request.Context(), req.RaffleID, req.Number, service.Buyer{
		Name:  req.BuyerName,
		TaxID: req.TaxID,
		Phone: req.Phone,
	})
	if err != nil {
		h.renderReservationErr(ctx, "HandleReservePix", "h.svc.ReservePix", err, req.RaffleID)
		return
	}

	ctx.JSON(http.StatusCreated, response.PixReservationResponse{
		ViewCode:   reservation.ViewCode,
		QRCode:     reservation.QRCodeBase64,
		QRCodeText: reservation.QRCodeText,
		Amount:     reservation.Amount,
		ExpiresAt:  reservation.ExpiresAt,
	})
}

// HandleReserveCard godoc
// @Summary      Reserve a number and charge a card
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request  body      request.CardReservationRequest true "request body"
// @Success      201      {object}  response.CardReservationResponse
// @Failure      400      {object}  response.Err
// @Failure      404      {object}  response.Err
// @Failure      409      {object}  response.Err
// @Failure      500      {object}  response.Err
// @Router       /payments/card [post]
func (h *PaymentHandler) HandleReserveCard(ctx *gin.Context) {
	var req request.CardReservationRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	reservation, err := h.svc.ReserveCard(ctx.Request.Context(), req.RaffleID, req.Number, service.Buyer{
		Name:  req.BuyerName,
		TaxID: req.TaxID,
		Phone: req.Phone,
	}, req.PaymentMethodID)
	if err != nil {
		if errors.Is(err, service.ErrCardNotConfigured) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}

		h.renderReservationErr(ctx, "HandleReserveCard", "h.svc.ReserveCard", err, req.RaffleID)
		return
	}

	ctx.JSON(http.StatusCreated, response.CardReservationResponse{
		ChargeID: reservation.ChargeID,
		Status:   string(reservation.Status),
		ViewCode: reservation.ViewCode,
	})
}

// HandleWebhook godoc
// @Summary      Payment gateway callback
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Abacate-Signature  header    string true "shared webhook secret"
// @Success      200                  {object}  response.WebhookResponse
// @Failure      401                  {object}  response.Err
// @Failure      500                  {object}  response.Err
// @Router       /payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(ctx *gin.Context) {
	var payload service.WebhookPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	updated, err := h.svc.ConfirmWebhook(ctx.Request.Context(), ctx.GetHeader("X-Abacate-Signature"), payload)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWebhookSignature) {
			response.RenderErr(ctx, response.ErrInvalidWebhookSignature())
			return
		}

		err = fmt.Errorf("v1.HandleWebhook -> h.svc.ConfirmWebhook -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	msg := "ignored"
	if updated {
		msg = "payment confirmed"
	}

	ctx.JSON(http.StatusOK, response.WebhookResponse{Message: msg})
}

// HandleCheckStatus godoc
// @Summary      Poll a charge's payment status
// @Tags         payments
// @Produce      json
// @Param        chargeID  path      string true "gateway charge id"
// @Success      200       {object}  response.ChargeStatusResponse
// @Failure      404       {object}  response.Err
// @Failure      500       {object}  response.Err
// @Router       /payments/status/{chargeID} [get]
func (h *PaymentHandler) HandleCheckStatus(ctx *gin.Context) {
	chargeID := ctx.Param("chargeID")

	status, err := h.svc.CheckStatus(ctx.Request.Context(), chargeID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("charge", "id", chargeID))
			return
		}
		if errors.Is(err, service.ErrPaymentGateway) {
			response.RenderErr(ctx, response.ErrPaymentGateway(err))
			return
		}

		err = fmt.Errorf("v1.HandleCheckStatus -> h.svc.CheckStatus -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.ChargeStatusResponse{
		Status:    string(status.Status),
		ExpiresAt: status.ExpiresAt,
	})
}

// HandleViewTicket godoc
// @Summary      View a ticket by its shareable code
// @Tags         payments
// @Produce      json
// @Param        code  path      string true "view code"
// @Success      200   {object}  response.TicketViewResponse
// @Failure      404   {object}  response.Err
// @Failure      500   {object}  response.Err
// @Router       /payments/ticket/{code} [get]
func (h *PaymentHandler) HandleViewTicket(ctx *gin.Context) {
	code := ctx.Param("code")

	result, err := h.svc.ViewByCode(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("ticket", "code", code))
			return
		}

		err = fmt.Errorf("v1.HandleViewTicket -> h.svc.ViewByCode -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.TicketViewResponse{
		Ticket: result.Ticket,
		Raffle: response.RaffleSummary{
			Title:       result.Raffle.Title,
			Description: result.Raffle.Description,
			DrawDate:    result.Raffle.DrawDate,
		},
	})
}

// HandleReceipt godoc
// @Summary      Render an HTML receipt for a ticket
// @Tags         payments
// @Produce      html
// @Param        code  path  string true "view code"
// @Success      200   {string}  string
// @Failure      404   {string}  string
// @Router       /payments/receipt/{code} [get]
func (h *PaymentHandler) HandleReceipt(ctx *gin.Context) {
	code := ctx.Param("code")

	data, err := h.svc.Receipt(ctx.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			ctx.String(http.StatusNotFound, "Comprovante não encontrado")
			return
		}

		err = fmt.Errorf("v1.HandleReceipt -> h.svc.Receipt -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusOK)
	ctx.Header("Content-Type", "text/html; charset=utf-8")
	if err := h.receipt.Execute(ctx.Writer, data); err != nil {
		_ = ctx.Error(fmt.Errorf("v1.HandleReceipt -> h.receipt.Execute -> %w", err))
	}
}

func (h *PaymentHandler) renderReservationErr(ctx *gin.Context, handler, op string, err error, raffleID uint) {
	switch {
	case errors.Is(err, service.ErrRaffleNotFound):
		response.RenderErr(ctx, response.ErrNotFound("raffle", "id", raffleID))
	case errors.Is(err, service.ErrNumberOutOfRange):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrTicketNumberTaken):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrPaymentGateway):
		response.RenderErr(ctx, response.ErrPaymentGateway(err))
	default:
		err = fmt.Errorf("v1.%v -> %v -> %w", handler, op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}

const receiptTemplate = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Comprovante - Bilhete {{.Ticket.Number}}</title>
<style>
body { font-family: sans-serif; max-width: 480px; margin: 40px auto; color: #222; }
h1 { font-size: 1.3em; border-bottom: 2px solid #222; padding-bottom: 8px; }
dl { display: grid; grid-template-columns: auto 1fr; gap: 6px 16px; }
dt { font-weight: bold; }
.status { padding: 2px 8px; border-radius: 4px; color: #fff; }
.status-PAID { background: #2e7d32; }
.status-PENDING { background: #f9a825; }
</style>
</head>
<body>
<h1>Comprovante de Reserva</h1>
<dl>
<dt>Rifa</dt><dd>{{.Raffle.Title}}</dd>
<dt>Número</dt><dd>{{.Ticket.Number}}</dd>
<dt>Comprador</dt><dd>{{.Ticket.BuyerName}}</dd>
<dt>WhatsApp</dt><dd>{{.Ticket.BuyerPhone}}</dd>
<dt>Status</dt><dd><span class="status status-{{.Ticket.Status}}">{{.Ticket.Status}}</span></dd>
<dt>Reservado em</dt><dd>{{.Ticket.ReservedAt.Format "02/01/2006 15:04"}}</dd>
<dt>Sorteio</dt><dd>{{.Raffle.DrawDate.Format "02/01/2006"}}</dd>
<dt>Código</dt><dd>{{.Ticket.ViewCode}}</dd>
</dl>
</body>
</html>
`
