package domain

import "time"

type MediaKind string

const (
	MediaPhoto MediaKind = "foto"
	MediaVideo MediaKind = "video"
)

type Media struct {
	ID        uint      `json:"id"`
	RaffleID  uint      `json:"rifa_id"`
	URL       string    `json:"url"`
	Order     int       `json:"ordem"`
	Kind      MediaKind `json:"tipo"`
	CreatedAt time.Time `json:"created_at"`
}
