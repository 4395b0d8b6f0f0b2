package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateRaffleRequest struct {
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	CoverURL    string    `json:"foto_url"`
	TicketPrice *float64  `json:"valor_bilhete"`
	DrawDate    time.Time `json:"data_sorteio"`
	MaxNumber   int       `json:"numero_max"`
}

func (req *CreateRaffleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.TicketPrice, validation.NotNil, validation.Min(0.0)),
		validation.Field(&req.DrawDate, validation.Required),
		validation.Field(&req.MaxNumber, validation.Required, validation.Min(1)),
	)
}

// UpdateRaffleRequest is a partial update; nil fields stay untouched.
type UpdateRaffleRequest struct {
	Title       *string    `json:"titulo"`
	Description *string    `json:"descricao"`
	CoverURL    *string    `json:"foto_url"`
	TicketPrice *float64   `json:"valor_bilhete"`
	DrawDate    *time.Time `json:"data_sorteio"`
	MaxNumber   *int       `json:"numero_max"`
}

func (req *UpdateRaffleRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Title, validation.Length(1, 200)),
		validation.Field(&req.Description, validation.Length(0, 2000)),
		validation.Field(&req.TicketPrice, validation.Min(0.0)),
		validation.Field(&req.MaxNumber, validation.Min(1)),
	)
}
