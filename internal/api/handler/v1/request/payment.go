package request

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	taxIDPattern = regexp.MustCompile(`^\d{11}$`)
	phonePattern = regexp.MustCompile(`^\d{10,13}$`)
)

type PixReservationRequest struct {
	RaffleID  uint   `json:"rifa_id"`
	Number    int    `json:"numero"`
	BuyerName string `json:"nome_comprador"`
	TaxID     string `json:"cpf"`
	Phone     string `json:"whatsapp"`
}

func (req *PixReservationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.RaffleID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Number, validation.Required, validation.Min(1)),
		validation.Field(&req.BuyerName, validation.Required, validation.Length(2, 200)),
		validation.Field(&req.TaxID, validation.Required, validation.Match(taxIDPattern)),
		validation.Field(&req.Phone, validation.Required, validation.Match(phonePattern)),
	)
}

type CardReservationRequest struct {
	PixReservationRequest
	PaymentMethodID string `json:"payment_method_id"`
}

func (req *CardReservationRequest) Validate() error {
	if err := req.PixReservationRequest.Validate(); err != nil {
		return err
	}

	return validation.ValidateStruct(
		req,
		validation.Field(&req.PaymentMethodID, validation.Required),
	)
}
