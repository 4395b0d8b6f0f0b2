package domain

import (
	"math"
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
)

type Ticket struct {
	ID         uint          `json:"id"`
	RaffleID   uint          `json:"rifa_id"`
	Number     int           `json:"numero"`
	BuyerName  string        `json:"nome_comprador"`
	BuyerTaxID string        `json:"cpf"`
	BuyerPhone string        `json:"whatsapp"`
	AmountPaid float64       `json:"valor_pago"`
	ViewCode   string        `json:"codigo_visualizacao"`
	Status     PaymentStatus `json:"status_pagamento"`
	ChargeID   string        `json:"pix_id"`
	ReservedAt time.Time     `json:"data_reserva"`
}

// TicketView is the buyer-safe projection returned by the view-code lookup.
// It never carries the tax id or internal identifiers.
type TicketView struct {
	Number     int           `json:"numero"`
	BuyerName  string        `json:"nome_comprador"`
	BuyerPhone string        `json:"whatsapp"`
	Status     PaymentStatus `json:"status_pagamento"`
	ReservedAt time.Time     `json:"data_reserva"`
}

// Cents converts a decimal currency amount into integer minor units for the
// payment gateway. Exact for two-decimal values.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
