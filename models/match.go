package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MatchStatus соответствует ENUM match_status в БД.
type MatchStatus string

const (
	MatchStatusScheduled  MatchStatus = "scheduled"
	MatchStatusLive       MatchStatus = "live"
	MatchStatusInProgress MatchStatus = "in_progress"
	MatchStatusCompleted  MatchStatus = "completed"
)

// IsLive reports whether the match is currently being played.
func (s MatchStatus) IsLive() bool {
	return s == MatchStatusLive || s == MatchStatusInProgress
}

// IsUpcoming treats scheduled, empty and unrecognized statuses as upcoming.
func (s MatchStatus) IsUpcoming() bool {
	return !s.IsLive() && s != MatchStatusCompleted
}

type MatchWinner string

const (
	WinnerTeam1 MatchWinner = "team1"
	WinnerTeam2 MatchWinner = "team2"
)

// GameScore хранит очки одной партии.
type GameScore struct {
	Team1 int `json:"team1"`
	Team2 int `json:"team2"`
}

// GameScores маппится на JSONB-колонку matches.games.
type GameScores []GameScore

func (g GameScores) Value() (driver.Value, error) {
	if g == nil {
		return "[]", nil
	}
	data, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game scores: %w", err)
	}
	return string(data), nil
}

func (g *GameScores) Scan(src interface{}) error {
	if src == nil {
		*g = GameScores{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for game scores: %T", src)
	}
	if len(data) == 0 {
		*g = GameScores{}
		return nil
	}
	return json.Unmarshal(data, g)
}

// Game returns the score of game i (0-based); absent games read as 0:0.
func (g GameScores) Game(i int) GameScore {
	if i < 0 || i >= len(g) {
		return GameScore{}
	}
	return g[i]
}

// TimeoutState описывает активный таймаут матча. Старые записи хранят
// вместо объекта голый boolean; он принимается при разборе и помечается
// полем Legacy.
type TimeoutState struct {
	Legacy    bool      `json:"-"`
	Team      string    `json:"team,omitempty"`
	StartTime time.Time `json:"start_time,omitempty"`
}

// Active reports whether the state denotes a running timeout: either the
// legacy boolean form, or an object carrying both team and start time.
func (t *TimeoutState) Active() bool {
	if t == nil {
		return false
	}
	if t.Legacy {
		return true
	}
	return t.Team != "" && !t.StartTime.IsZero()
}

// ParseTimeout разбирает JSONB-значение matches.timeout: null, boolean или
// объект {team, start_time}. Нераспознанное значение трактуется как
// отсутствие таймаута.
func ParseTimeout(data []byte) (*TimeoutState, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var legacy bool
	if err := json.Unmarshal(data, &legacy); err == nil {
		if !legacy {
			return nil, nil
		}
		return &TimeoutState{Legacy: true}, nil
	}

	var state TimeoutState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse timeout state: %w", err)
	}
	return &state, nil
}

func (t *TimeoutState) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	if t.Legacy {
		return "true", nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timeout state: %w", err)
	}
	return string(data), nil
}

// Match представляет один матч внутри пары команд (fixture) игрового дня.
type Match struct {
	ID               int           `json:"id" db:"id"`
	TournamentID     int           `json:"tournament_id" db:"tournament_id"`
	FixtureGroupID   string        `json:"fixture_group_id" db:"fixture_group_id"`
	Court            string        `json:"court" db:"court"`
	MatchDate        time.Time     `json:"match_date" db:"match_date"`
	MatchOrder       int           `json:"match_order" db:"match_order"`
	MatchTypeLabel   *string       `json:"match_type_label,omitempty" db:"match_type_label"`
	Team1Name        string        `json:"team1_name" db:"team1_name"`
	Team2Name        string        `json:"team2_name" db:"team2_name"`
	Team1Players     *string       `json:"team1_players,omitempty" db:"team1_players"`
	Team2Players     *string       `json:"team2_players,omitempty" db:"team2_players"`
	Status           MatchStatus   `json:"status" db:"status"`
	Games            GameScores    `json:"games" db:"games"`
	Winner           *MatchWinner  `json:"winner,omitempty" db:"winner"`
	Timeout          *TimeoutState `json:"timeout,omitempty" db:"timeout"`
	DRSVideoActive   bool          `json:"drs_video_active" db:"drs_video_active"`
	DRSVideoURL      *string       `json:"drs_video_url,omitempty" db:"drs_video_url"`
	FeaturedImageURL *string       `json:"featured_image_url,omitempty" db:"featured_image_url"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}

// TimeoutActive учитывает статус матча: таймаут имеет смысл только пока
// матч играется.
func (m *Match) TimeoutActive() bool {
	return m.Status.IsLive() && m.Timeout.Active()
}

// DRSReady reports whether a replay overlay can be shown for this match.
func (m *Match) DRSReady() bool {
	return m.DRSVideoActive && m.DRSVideoURL != nil && *m.DRSVideoURL != ""
}

// HasFeaturedImage reports whether a promotional image is attached.
func (m *Match) HasFeaturedImage() bool {
	return m.FeaturedImageURL != nil && *m.FeaturedImageURL != ""
}
