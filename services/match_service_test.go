package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/courtside/pickleball-league/events"
	"github.com/courtside/pickleball-league/models"
	"github.com/courtside/pickleball-league/repositories"
	"github.com/courtside/pickleball-league/services"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeMatchRepo держит матчи в памяти и ведёт себя как постгрес-реализация
// в части ошибок "не найдено".
type fakeMatchRepo struct {
	mu      sync.Mutex
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: make(map[int]*models.Match), nextID: 1}
}

func (r *fakeMatchRepo) put(m *models.Match) *models.Match {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.nextID
		r.nextID++
	}
	r.matches[m.ID] = m
	return m
}

func (r *fakeMatchRepo) Create(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	match.CreatedAt = time.Now()
	r.put(match)
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id int) (*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMatchRepo) ListByTournamentDate(_ context.Context, tournamentID int, _ time.Time) ([]*models.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeMatchRepo) UpdateScore(_ context.Context, id int, games models.GameScores, status models.MatchStatus, winner *models.MatchWinner) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Games = games
	m.Status = status
	m.Winner = winner
	return nil
}

func (r *fakeMatchRepo) UpdateStatus(_ context.Context, id int, status models.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Status = status
	return nil
}

func (r *fakeMatchRepo) SetTimeout(_ context.Context, id int, timeout *models.TimeoutState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.Timeout = timeout
	return nil
}

func (r *fakeMatchRepo) SetDRS(_ context.Context, id int, active bool, videoURL *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.DRSVideoActive = active
	if videoURL != nil {
		m.DRSVideoURL = videoURL
	}
	return nil
}

func (r *fakeMatchRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *fakePublisher) Publish(_ context.Context, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *fakePublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

func seedMatch(repo *fakeMatchRepo, status models.MatchStatus) *models.Match {
	return repo.put(&models.Match{
		TournamentID:   7,
		FixtureGroupID: "fx-1",
		MatchDate:      time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		MatchOrder:     1,
		Team1Name:      "Smash Bros",
		Team2Name:      "Dink Dynasty",
		Status:         status,
	})
}

func TestMatchServiceTimeouts(t *testing.T) {
	Convey("Given a match service over an in-memory repository", t, func() {
		repo := newFakeMatchRepo()
		publisher := &fakePublisher{}
		svc := services.NewMatchService(repo, nil, publisher, nil)
		ctx := context.Background()

		Convey("When a timeout starts on a live match", func() {
			match := seedMatch(repo, models.MatchStatusInProgress)

			updated, err := svc.StartTimeout(ctx, match.ID, "team1")

			Convey("Then the timeout is stored and a change event goes out", func() {
				So(err, ShouldBeNil)
				So(updated.Timeout, ShouldNotBeNil)
				So(updated.Timeout.Team, ShouldEqual, "team1")
				So(updated.Timeout.Active(), ShouldBeTrue)

				published := publisher.published()
				So(published, ShouldHaveLength, 1)
				So(published[0].Kind, ShouldEqual, events.KindMatches)
				So(published[0].TournamentID, ShouldEqual, 7)
				So(published[0].DisplayDate, ShouldEqual, "2026-08-30")
			})
		})

		Convey("When a timeout starts on a scheduled match", func() {
			match := seedMatch(repo, models.MatchStatusScheduled)

			_, err := svc.StartTimeout(ctx, match.ID, "team1")

			Convey("Then the request is rejected", func() {
				So(err, ShouldEqual, services.ErrTimeoutNotAllowed)
				So(publisher.published(), ShouldBeEmpty)
			})
		})

		Convey("When a timeout starts without a team", func() {
			match := seedMatch(repo, models.MatchStatusLive)

			_, err := svc.StartTimeout(ctx, match.ID, "")

			Convey("Then the request is rejected", func() {
				So(err, ShouldEqual, services.ErrTimeoutTeamRequired)
			})
		})

		Convey("When the scoreboard clears an expired timeout", func() {
			match := seedMatch(repo, models.MatchStatusInProgress)
			_, err := svc.StartTimeout(ctx, match.ID, "team2")
			So(err, ShouldBeNil)

			err = svc.ClearTimeout(ctx, match.ID)

			Convey("Then the timeout is gone and the change is published", func() {
				So(err, ShouldBeNil)
				stored, getErr := repo.GetByID(ctx, match.ID)
				So(getErr, ShouldBeNil)
				So(stored.Timeout, ShouldBeNil)
				So(publisher.published(), ShouldHaveLength, 2)
			})
		})
	})
}

func TestMatchServiceDRS(t *testing.T) {
	Convey("Given a match service over an in-memory repository", t, func() {
		repo := newFakeMatchRepo()
		svc := services.NewMatchService(repo, nil, &fakePublisher{}, nil)
		ctx := context.Background()

		Convey("When DRS is activated without any video URL", func() {
			match := seedMatch(repo, models.MatchStatusInProgress)

			_, err := svc.SetDRS(ctx, match.ID, true, nil)

			Convey("Then the request is rejected", func() {
				So(err, ShouldEqual, services.ErrDRSVideoURLRequired)
			})
		})

		Convey("When DRS is activated with a URL", func() {
			match := seedMatch(repo, models.MatchStatusInProgress)
			url := "https://cdn.example.com/replay.mp4"

			updated, err := svc.SetDRS(ctx, match.ID, true, &url)

			Convey("Then the replay flag and URL are stored", func() {
				So(err, ShouldBeNil)
				So(updated.DRSVideoActive, ShouldBeTrue)
				So(updated.DRSVideoURL, ShouldNotBeNil)
				So(*updated.DRSVideoURL, ShouldEqual, url)
			})

			Convey("And deactivating keeps the stored URL for reuse", func() {
				So(err, ShouldBeNil)
				updated, err = svc.SetDRS(ctx, match.ID, false, nil)
				So(err, ShouldBeNil)
				So(updated.DRSVideoActive, ShouldBeFalse)
				So(updated.DRSVideoURL, ShouldNotBeNil)

				updated, err = svc.SetDRS(ctx, match.ID, true, nil)
				So(err, ShouldBeNil)
				So(updated.DRSVideoActive, ShouldBeTrue)
			})
		})
	})
}
