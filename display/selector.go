package display

import (
	"log/slog"
	"sort"

	"github.com/courtside/pickleball-league/models"
)

// Порядковый номер решающего матча при счёте 3-3 по итогам первых шести.
const decisiveMatchOrder = 7

// Метки решающего матча встречаются в данных в двух вариантах.
var decisiveLabels = map[string]struct{}{
	"Game Breaker":  {},
	"Dream Breaker": {},
}

// FixtureScore — счёт пары команд по выигранным матчам.
type FixtureScore struct {
	Team1Wins int `json:"team1_wins"`
	Team2Wins int `json:"team2_wins"`
}

// FixtureState — результат чистой выборки матчей по выбранной паре команд:
// разбиение по статусам, счёт пары и матч, который должен показываться
// на табло.
type FixtureState struct {
	Matches    []*models.Match
	Completed  []*models.Match
	InProgress []*models.Match
	Upcoming   []*models.Match
	Score      FixtureScore
	Featured   *models.Match

	// AllScheduled взводится, когда все матчи пары ещё не начаты и хотя бы
	// один несёт промо-изображение: экран показывает его вместо табло.
	AllScheduled     bool
	FeaturedImageURL string
}

// BuildFixtureState фильтрует матчи по выбранной паре, сортирует их по
// порядковому номеру и выбирает матч для показа. Чистая функция: одинаковый
// вход всегда даёт одинаковый результат. Пустой вход вырождается в
// "нет матча для показа".
func BuildFixtureState(matches []*models.Match, sel *models.DisplaySelection, logger *slog.Logger) FixtureState {
	state := FixtureState{}
	if sel == nil || sel.FixtureGroupID == "" {
		return state
	}

	for _, m := range matches {
		if m != nil && m.FixtureGroupID == sel.FixtureGroupID {
			state.Matches = append(state.Matches, m)
		}
	}
	sort.SliceStable(state.Matches, func(i, j int) bool {
		return state.Matches[i].MatchOrder < state.Matches[j].MatchOrder
	})

	for _, m := range state.Matches {
		switch {
		case m.Status == models.MatchStatusCompleted:
			state.Completed = append(state.Completed, m)
			if m.Winner != nil {
				switch *m.Winner {
				case models.WinnerTeam1:
					state.Score.Team1Wins++
				case models.WinnerTeam2:
					state.Score.Team2Wins++
				}
			}
		case m.Status.IsLive():
			state.InProgress = append(state.InProgress, m)
		default:
			// scheduled, пустой или неизвестный статус — матч ещё впереди
			state.Upcoming = append(state.Upcoming, m)
		}
	}

	state.Featured = pickFeatured(&state, logger)

	if len(state.Matches) > 0 && len(state.Completed) == 0 && len(state.InProgress) == 0 {
		for _, m := range state.Matches {
			if m.HasFeaturedImage() {
				state.AllScheduled = true
				state.FeaturedImageURL = *m.FeaturedImageURL
				break
			}
		}
	}

	return state
}

// pickFeatured выбирает матч для показа по приоритету: решающий матч при
// 3-3, затем первый играющийся, затем первый предстоящий, затем последний
// завершённый.
func pickFeatured(state *FixtureState, logger *slog.Logger) *models.Match {
	if state.Score.Team1Wins == 3 && state.Score.Team2Wins == 3 {
		if m := findDecisiveMatch(state.Matches, logger); m != nil {
			return m
		}
	}
	if len(state.InProgress) > 0 {
		return state.InProgress[0]
	}
	if len(state.Upcoming) > 0 {
		return state.Upcoming[0]
	}
	if len(state.Completed) > 0 {
		return state.Completed[len(state.Completed)-1]
	}
	return nil
}

// findDecisiveMatch ищет решающий матч по метке или порядковому номеру.
// Данные не гарантируют единственность кандидата: берём первый по порядку
// и предупреждаем, если их несколько.
func findDecisiveMatch(matches []*models.Match, logger *slog.Logger) *models.Match {
	var found *models.Match
	count := 0
	for _, m := range matches {
		if !isDecisive(m) {
			continue
		}
		count++
		if found == nil {
			found = m
		}
	}
	if count > 1 && logger != nil {
		logger.Warn("multiple decisive match candidates in fixture",
			slog.String("fixture_group_id", found.FixtureGroupID),
			slog.Int("candidates", count))
	}
	return found
}

func isDecisive(m *models.Match) bool {
	if m.MatchOrder == decisiveMatchOrder {
		return true
	}
	if m.MatchTypeLabel != nil {
		if _, ok := decisiveLabels[*m.MatchTypeLabel]; ok {
			return true
		}
	}
	return false
}
