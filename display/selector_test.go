package display_test

import (
	"testing"

	"github.com/courtside/pickleball-league/display"
	"github.com/courtside/pickleball-league/models"
	. "github.com/smartystreets/goconvey/convey"
)

func strPtr(s string) *string { return &s }

func winnerPtr(w models.MatchWinner) *models.MatchWinner { return &w }

func fixtureMatch(id, order int, status models.MatchStatus, winner *models.MatchWinner) *models.Match {
	return &models.Match{
		ID:             id,
		FixtureGroupID: "fx-1",
		MatchOrder:     order,
		Team1Name:      "Smash Bros",
		Team2Name:      "Dink Dynasty",
		Status:         status,
		Winner:         winner,
	}
}

func selection() *models.DisplaySelection {
	return &models.DisplaySelection{
		TournamentID:   1,
		FixtureGroupID: "fx-1",
		Team1Name:      "Smash Bros",
		Team2Name:      "Dink Dynasty",
	}
}

func TestBuildFixtureState(t *testing.T) {
	Convey("Given matches from several fixtures", t, func() {
		matches := []*models.Match{
			fixtureMatch(1, 2, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(2, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			{ID: 99, FixtureGroupID: "fx-other", MatchOrder: 1, Status: models.MatchStatusLive},
			fixtureMatch(3, 3, models.MatchStatusInProgress, nil),
			fixtureMatch(4, 4, models.MatchStatusScheduled, nil),
		}

		Convey("When building state for the selected fixture", func() {
			state := display.BuildFixtureState(matches, selection(), nil)

			Convey("Then only the selected fixture's matches are kept, ordered", func() {
				So(state.Matches, ShouldHaveLength, 4)
				So(state.Matches[0].ID, ShouldEqual, 2)
				So(state.Matches[1].ID, ShouldEqual, 1)
			})

			Convey("And matches are partitioned by status", func() {
				So(state.Completed, ShouldHaveLength, 2)
				So(state.InProgress, ShouldHaveLength, 1)
				So(state.Upcoming, ShouldHaveLength, 1)
			})

			Convey("And the fixture score counts wins per team", func() {
				So(state.Score.Team1Wins, ShouldEqual, 1)
				So(state.Score.Team2Wins, ShouldEqual, 1)
			})

			Convey("And the in-progress match is featured", func() {
				So(state.Featured, ShouldNotBeNil)
				So(state.Featured.ID, ShouldEqual, 3)
			})
		})

		Convey("When the selection is nil", func() {
			state := display.BuildFixtureState(matches, nil, nil)

			Convey("Then the state is empty", func() {
				So(state.Matches, ShouldBeEmpty)
				So(state.Featured, ShouldBeNil)
			})
		})
	})
}

func TestBuildFixtureStateFeaturedPriority(t *testing.T) {
	Convey("Given a fixture with no match in progress", t, func() {
		matches := []*models.Match{
			fixtureMatch(1, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(2, 2, models.MatchStatusScheduled, nil),
			fixtureMatch(3, 3, models.MatchStatusScheduled, nil),
		}

		Convey("Then the first upcoming match is featured", func() {
			state := display.BuildFixtureState(matches, selection(), nil)
			So(state.Featured.ID, ShouldEqual, 2)
		})
	})

	Convey("Given a fixture where everything is completed", t, func() {
		matches := []*models.Match{
			fixtureMatch(1, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(2, 2, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
		}

		Convey("Then the last completed match stays on screen", func() {
			state := display.BuildFixtureState(matches, selection(), nil)
			So(state.Featured.ID, ShouldEqual, 2)
		})
	})
}

func TestBuildFixtureStateGameBreaker(t *testing.T) {
	// Шесть завершённых матчей со счётом 3-3 плюс решающий.
	tiedFixture := func(decisive *models.Match) []*models.Match {
		matches := []*models.Match{
			fixtureMatch(1, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(2, 2, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			fixtureMatch(3, 3, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(4, 4, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			fixtureMatch(5, 5, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(6, 6, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
		}
		return append(matches, decisive)
	}

	Convey("Given a 3-3 fixture with a Game Breaker label", t, func() {
		decisive := fixtureMatch(7, 9, models.MatchStatusScheduled, nil)
		decisive.MatchTypeLabel = strPtr("Game Breaker")

		Convey("Then the labelled match is featured regardless of order", func() {
			state := display.BuildFixtureState(tiedFixture(decisive), selection(), nil)
			So(state.Score.Team1Wins, ShouldEqual, 3)
			So(state.Score.Team2Wins, ShouldEqual, 3)
			So(state.Featured.ID, ShouldEqual, 7)
		})
	})

	Convey("Given a 3-3 fixture with a Dream Breaker label", t, func() {
		decisive := fixtureMatch(7, 9, models.MatchStatusScheduled, nil)
		decisive.MatchTypeLabel = strPtr("Dream Breaker")

		Convey("Then the alternate label is recognized too", func() {
			state := display.BuildFixtureState(tiedFixture(decisive), selection(), nil)
			So(state.Featured.ID, ShouldEqual, 7)
		})
	})

	Convey("Given a 3-3 fixture without labels", t, func() {
		decisive := fixtureMatch(7, 7, models.MatchStatusScheduled, nil)

		Convey("Then match order seven marks the decisive match", func() {
			state := display.BuildFixtureState(tiedFixture(decisive), selection(), nil)
			So(state.Featured.ID, ShouldEqual, 7)
		})
	})

	Convey("Given a 4-3 fixture", t, func() {
		matches := []*models.Match{
			fixtureMatch(1, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(2, 2, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			fixtureMatch(3, 3, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(4, 4, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			fixtureMatch(5, 5, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(6, 6, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam2)),
			fixtureMatch(7, 7, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
			fixtureMatch(8, 8, models.MatchStatusScheduled, nil),
		}

		Convey("Then the decisive rule does not apply and the next upcoming match is featured", func() {
			state := display.BuildFixtureState(matches, selection(), nil)
			So(state.Score.Team1Wins, ShouldEqual, 4)
			So(state.Featured.ID, ShouldEqual, 8)
		})
	})
}

func TestBuildFixtureStateAllScheduled(t *testing.T) {
	Convey("Given a fixture where nothing has started", t, func() {
		promo := fixtureMatch(1, 1, models.MatchStatusScheduled, nil)
		promo.FeaturedImageURL = strPtr("https://cdn.example.com/promo.jpg")
		matches := []*models.Match{
			promo,
			fixtureMatch(2, 2, models.MatchStatusScheduled, nil),
		}

		Convey("Then the promo image takes over the screen", func() {
			state := display.BuildFixtureState(matches, selection(), nil)
			So(state.AllScheduled, ShouldBeTrue)
			So(state.FeaturedImageURL, ShouldEqual, "https://cdn.example.com/promo.jpg")
		})

		Convey("When one match goes live", func() {
			matches[1].Status = models.MatchStatusLive

			Convey("Then the promo image is dropped", func() {
				state := display.BuildFixtureState(matches, selection(), nil)
				So(state.AllScheduled, ShouldBeFalse)
				So(state.FeaturedImageURL, ShouldBeEmpty)
			})
		})
	})

	Convey("Given scheduled matches without a promo image", t, func() {
		matches := []*models.Match{
			fixtureMatch(1, 1, models.MatchStatusScheduled, nil),
		}

		Convey("Then the screen stays in normal mode", func() {
			state := display.BuildFixtureState(matches, selection(), nil)
			So(state.AllScheduled, ShouldBeFalse)
		})
	})
}
