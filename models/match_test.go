package models_test

import (
	"testing"
	"time"

	"github.com/courtside/pickleball-league/models"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseTimeout(t *testing.T) {
	Convey("Given the timeout column value", t, func() {
		Convey("When the value is null or empty", func() {
			for _, raw := range [][]byte{nil, []byte("null")} {
				state, err := models.ParseTimeout(raw)
				So(err, ShouldBeNil)
				So(state, ShouldBeNil)
			}
		})

		Convey("When the value is the legacy boolean true", func() {
			state, err := models.ParseTimeout([]byte("true"))
			So(err, ShouldBeNil)
			So(state, ShouldNotBeNil)
			So(state.Legacy, ShouldBeTrue)
			So(state.Active(), ShouldBeTrue)
		})

		Convey("When the value is the legacy boolean false", func() {
			state, err := models.ParseTimeout([]byte("false"))
			So(err, ShouldBeNil)
			So(state, ShouldBeNil)
		})

		Convey("When the value is a timeout object", func() {
			raw := []byte(`{"team":"team2","start_time":"2026-08-30T18:04:05Z"}`)
			state, err := models.ParseTimeout(raw)
			So(err, ShouldBeNil)
			So(state, ShouldNotBeNil)
			So(state.Team, ShouldEqual, "team2")
			So(state.Active(), ShouldBeTrue)
		})

		Convey("When the object misses the start time", func() {
			state, err := models.ParseTimeout([]byte(`{"team":"team1"}`))
			So(err, ShouldBeNil)
			So(state.Active(), ShouldBeFalse)
		})

		Convey("When the value is garbage", func() {
			_, err := models.ParseTimeout([]byte(`[1,2,3]`))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestMatchTimeoutActive(t *testing.T) {
	Convey("Given a match with a timeout object", t, func() {
		timeout := &models.TimeoutState{Team: "team1", StartTime: time.Now()}

		Convey("Then the timeout only counts while the match is being played", func() {
			match := &models.Match{Status: models.MatchStatusInProgress, Timeout: timeout}
			So(match.TimeoutActive(), ShouldBeTrue)

			match.Status = models.MatchStatusLive
			So(match.TimeoutActive(), ShouldBeTrue)

			match.Status = models.MatchStatusCompleted
			So(match.TimeoutActive(), ShouldBeFalse)

			match.Status = models.MatchStatusScheduled
			So(match.TimeoutActive(), ShouldBeFalse)
		})
	})
}

func TestMatchStatus(t *testing.T) {
	Convey("Given the match status helpers", t, func() {
		Convey("Then live and in_progress both mean the match is playing", func() {
			So(models.MatchStatusLive.IsLive(), ShouldBeTrue)
			So(models.MatchStatusInProgress.IsLive(), ShouldBeTrue)
			So(models.MatchStatusCompleted.IsLive(), ShouldBeFalse)
		})

		Convey("Then unknown and empty statuses read as upcoming", func() {
			So(models.MatchStatus("").IsUpcoming(), ShouldBeTrue)
			So(models.MatchStatus("postponed").IsUpcoming(), ShouldBeTrue)
			So(models.MatchStatusCompleted.IsUpcoming(), ShouldBeFalse)
		})
	})
}

func TestGameScoresScan(t *testing.T) {
	Convey("Given the games JSONB column", t, func() {
		Convey("When scanning a stored value", func() {
			var games models.GameScores
			err := games.Scan([]byte(`[{"team1":11,"team2":7},{"team1":9,"team2":11}]`))
			So(err, ShouldBeNil)
			So(games, ShouldHaveLength, 2)
			So(games.Game(0).Team1, ShouldEqual, 11)
			So(games.Game(1).Team2, ShouldEqual, 11)
		})

		Convey("When scanning NULL", func() {
			var games models.GameScores
			So(games.Scan(nil), ShouldBeNil)
			So(games, ShouldBeEmpty)
		})

		Convey("When reading a game that was never played", func() {
			games := models.GameScores{{Team1: 11, Team2: 3}}
			So(games.Game(5), ShouldResemble, models.GameScore{})
		})
	})
}
