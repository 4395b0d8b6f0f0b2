package response

import (
	"time"

	"github.com/moitinho/rifa-api/internal/domain"
)

type PixReservationResponse struct {
	ViewCode   string    `json:"codigo_visualizacao"`
	QRCode     string    `json:"qrcode"`
	QRCodeText string    `json:"qrcode_text"`
	Amount     float64   `json:"amount"`
	ExpiresAt  time.Time `json:"expira_em"`
}

type CardReservationResponse struct {
	ChargeID string `json:"id"`
	Status   string `json:"status"`
	ViewCode string `json:"codigo_visualizacao"`
}

type ChargeStatusResponse struct {
	Status    string     `json:"status"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type WebhookResponse struct {
	Message string `json:"message"`
}

type TicketViewResponse struct {
	Ticket domain.TicketView `json:"bilhete"`
	Raffle RaffleSummary     `json:"rifa"`
}

type RaffleSummary struct {
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	DrawDate    time.Time `json:"data_sorteio"`
}
