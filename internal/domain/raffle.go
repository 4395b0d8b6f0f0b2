package domain

import "time"

type Raffle struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"user_id"`
	Title       string    `json:"titulo"`
	Description string    `json:"descricao"`
	CoverURL    string    `json:"foto_url"`
	TicketPrice float64   `json:"valor_bilhete"`
	DrawDate    time.Time `json:"data_sorteio"`
	MaxNumber   int       `json:"numero_max"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RaffleDetail is a Raffle plus the derived number sets and its media,
// as served by the single-raffle endpoint.
type RaffleDetail struct {
	Raffle
	OccupiedNumbers  []int    `json:"numeros_ocupados"`
	AvailableNumbers []int    `json:"numeros_disponiveis"`
	MediaURLs        []string `json:"fotos"`
}

// RaffleListing is the anonymous catalog projection with sale counters.
type RaffleListing struct {
	Raffle
	Sold      int `json:"vendidos"`
	Available int `json:"disponiveis"`
}

// RaffleUpdate carries a partial update; nil fields are left unchanged.
type RaffleUpdate struct {
	Title       *string
	Description *string
	CoverURL    *string
	TicketPrice *float64
	DrawDate    *time.Time
	MaxNumber   *int
}
