package models

import "time"

type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
)

// MediaItem — элемент рекламного плейлиста турнира. Плейлист упорядочен
// по Rank (по возрастанию) и показывается во время пауз.
type MediaItem struct {
	ID           string    `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Type         MediaType `json:"type" db:"type"`
	URL          string    `json:"url" db:"url"`
	Title        string    `json:"title" db:"title"`
	Rank         int       `json:"rank" db:"rank"`
	FileKey      *string   `json:"-" db:"file_key"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
