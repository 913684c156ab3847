package display

import (
	"time"

	"github.com/courtside/pickleball-league/models"
)

// Mode — режим отрисовки экрана табло. Ровно один режим активен в каждый
// момент; приоритет: featured_image > drs > ads > live.
type Mode string

const (
	ModeLive          Mode = "live"
	ModeFeaturedImage Mode = "featured_image"
	ModeAds           Mode = "ads"
	ModeDRS           Mode = "drs"
)

// AdsState — видимая часть рекламного оверлея.
type AdsState struct {
	Visible bool              `json:"visible"`
	Index   int               `json:"index"`
	Item    *models.MediaItem `json:"item,omitempty"`

	// TimeoutCountdown не nil только пока идёт отсчёт таймаута.
	TimeoutCountdown *int   `json:"timeout_countdown,omitempty"`
	TimeoutTeam      string `json:"timeout_team,omitempty"`
}

// State — снимок состояния табло, уходящий на экраны по websocket и
// отдаваемый snapshot-эндпоинтом. Строится заново после каждого изменения
// данных или тика таймера.
type State struct {
	Mode             Mode             `json:"mode"`
	TournamentID     int              `json:"tournament_id"`
	DisplayDate      string           `json:"display_date"`
	Score            FixtureScore     `json:"score"`
	Featured         *models.Match    `json:"featured,omitempty"`
	Completed        []*models.Match  `json:"completed"`
	Upcoming         []*models.Match  `json:"upcoming"`
	Ads              AdsState         `json:"ads"`
	DRSVideoURL      string           `json:"drs_video_url,omitempty"`
	FeaturedImageURL string           `json:"featured_image_url,omitempty"`
	Sponsors         []models.Sponsor `json:"sponsors"`
	UpdatedAt        time.Time        `json:"updated_at"`
}
