package display_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/courtside/pickleball-league/display"
	"github.com/courtside/pickleball-league/models"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeClearer записывает вызовы сброса таймаута и сигналит о каждом в канал.
type fakeClearer struct {
	mu    sync.Mutex
	calls []int
	fired chan int
}

func newFakeClearer() *fakeClearer {
	return &fakeClearer{fired: make(chan int, 4)}
}

func (f *fakeClearer) ClearTimeout(_ context.Context, matchID int) error {
	f.mu.Lock()
	f.calls = append(f.calls, matchID)
	f.mu.Unlock()
	f.fired <- matchID
	return nil
}

func (f *fakeClearer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClearer) waitForCall(t *testing.T) int {
	t.Helper()
	select {
	case id := <-f.fired:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for timeout clear write")
		return 0
	}
}

func imageItem(id string, rank int) models.MediaItem {
	return models.MediaItem{ID: id, Type: models.MediaTypeImage, URL: "https://cdn.example.com/" + id + ".jpg", Rank: rank}
}

func videoItem(id string, rank int) models.MediaItem {
	return models.MediaItem{ID: id, Type: models.MediaTypeVideo, URL: "https://cdn.example.com/" + id + ".mp4", Rank: rank}
}

func breakTimeMatches() []*models.Match {
	return []*models.Match{
		fixtureMatch(1, 1, models.MatchStatusCompleted, winnerPtr(models.WinnerTeam1)),
		fixtureMatch(2, 2, models.MatchStatusScheduled, nil),
	}
}

func liveTimeoutMatches() []*models.Match {
	m := fixtureMatch(1, 1, models.MatchStatusInProgress, nil)
	m.Timeout = &models.TimeoutState{Team: "team1", StartTime: time.Now()}
	return []*models.Match{m}
}

func newTestEngine(clearer display.TimeoutClearer) *display.Engine {
	return display.NewEngine(1, "2026-08-30", clearer, nil, nil)
}

func TestEngineBreakTimeAds(t *testing.T) {
	Convey("Given an engine with media and a selection", t, func() {
		engine := newTestEngine(nil)
		engine.SetSelection(selection())
		engine.SetMedia([]models.MediaItem{imageItem("a", 1), imageItem("b", 2)})

		Convey("When a match completes and nothing is in progress", func() {
			engine.SetMatches(breakTimeMatches())

			Convey("Then the ads overlay shows without a countdown", func() {
				state := engine.Snapshot()
				So(state.Mode, ShouldEqual, display.ModeAds)
				So(state.Ads.Visible, ShouldBeTrue)
				So(state.Ads.TimeoutCountdown, ShouldBeNil)
				So(state.Ads.Item, ShouldNotBeNil)
				So(state.Ads.Item.ID, ShouldEqual, "a")
			})
		})

		Convey("When a match goes back in progress", func() {
			engine.SetMatches(breakTimeMatches())
			matches := breakTimeMatches()
			matches[1].Status = models.MatchStatusLive
			engine.SetMatches(matches)

			Convey("Then the overlay hides again", func() {
				state := engine.Snapshot()
				So(state.Mode, ShouldEqual, display.ModeLive)
				So(state.Ads.Visible, ShouldBeFalse)
			})
		})

		Convey("When there is no media at all", func() {
			engine.SetMedia(nil)
			engine.SetMatches(breakTimeMatches())

			Convey("Then the screen stays live even during a break", func() {
				So(engine.Snapshot().Mode, ShouldEqual, display.ModeLive)
			})
		})
	})
}

func TestEngineTimeoutCountdown(t *testing.T) {
	Convey("Given an engine with a live match", t, func() {
		clearer := newFakeClearer()
		engine := newTestEngine(clearer)
		engine.SetSelection(selection())
		engine.SetMedia([]models.MediaItem{imageItem("a", 1)})

		Convey("When a timeout starts", func() {
			engine.SetMatches(liveTimeoutMatches())

			Convey("Then the ads overlay shows with a 60 second countdown", func() {
				state := engine.Snapshot()
				So(state.Mode, ShouldEqual, display.ModeAds)
				So(state.Ads.TimeoutCountdown, ShouldNotBeNil)
				So(*state.Ads.TimeoutCountdown, ShouldEqual, 60)
				So(state.Ads.TimeoutTeam, ShouldEqual, "team1")
			})

			Convey("And the countdown survives unrelated data refreshes", func() {
				for i := 0; i < 10; i++ {
					engine.Tick()
				}
				engine.SetMatches(liveTimeoutMatches())

				state := engine.Snapshot()
				So(state.Ads.TimeoutCountdown, ShouldNotBeNil)
				So(*state.Ads.TimeoutCountdown, ShouldEqual, 50)
			})

			Convey("When the countdown runs out", func() {
				for i := 0; i < 60; i++ {
					engine.Tick()
				}

				Convey("Then the overlay hides and exactly one clear write happens", func() {
					So(engine.Snapshot().Mode, ShouldEqual, display.ModeLive)
					So(clearer.waitForCall(t), ShouldEqual, 1)

					for i := 0; i < 5; i++ {
						engine.Tick()
					}
					So(clearer.callCount(), ShouldEqual, 1)
				})
			})

			Convey("When the operator cancels the timeout early", func() {
				for i := 0; i < 10; i++ {
					engine.Tick()
				}
				cleared := liveTimeoutMatches()
				cleared[0].Timeout = nil
				engine.SetMatches(cleared)

				Convey("Then the overlay hides without any clear write", func() {
					state := engine.Snapshot()
					So(state.Mode, ShouldEqual, display.ModeLive)
					So(state.Ads.TimeoutCountdown, ShouldBeNil)
					So(clearer.callCount(), ShouldEqual, 0)
				})
			})
		})
	})
}

func TestEngineMediaCycling(t *testing.T) {
	Convey("Given a break-time ads overlay with a mixed playlist", t, func() {
		engine := newTestEngine(nil)
		engine.SetSelection(selection())
		engine.SetMedia([]models.MediaItem{imageItem("a", 1), imageItem("b", 2), videoItem("c", 3)})
		engine.SetMatches(breakTimeMatches())
		So(engine.Snapshot().Mode, ShouldEqual, display.ModeAds)

		Convey("When ten seconds pass on an image", func() {
			for i := 0; i < 10; i++ {
				engine.Tick()
			}

			Convey("Then the playlist advances to the next item", func() {
				So(engine.Snapshot().Ads.Index, ShouldEqual, 1)
			})
		})

		Convey("When nine seconds pass on an image", func() {
			for i := 0; i < 9; i++ {
				engine.Tick()
			}

			Convey("Then the same image is still showing", func() {
				So(engine.Snapshot().Ads.Index, ShouldEqual, 0)
			})
		})

		Convey("When the playlist reaches the video", func() {
			for i := 0; i < 20; i++ {
				engine.Tick()
			}
			So(engine.Snapshot().Ads.Index, ShouldEqual, 2)

			Convey("Then ticks alone never advance past it", func() {
				for i := 0; i < 30; i++ {
					engine.Tick()
				}
				So(engine.Snapshot().Ads.Index, ShouldEqual, 2)
			})

			Convey("And the player's ended signal wraps back to the start", func() {
				engine.VideoEnded()
				So(engine.Snapshot().Ads.Index, ShouldEqual, 0)
			})
		})

		Convey("When the ended signal arrives while an image is showing", func() {
			engine.VideoEnded()

			Convey("Then it is ignored", func() {
				So(engine.Snapshot().Ads.Index, ShouldEqual, 0)
			})
		})
	})
}

func TestEngineDRSOverlay(t *testing.T) {
	drsMatches := func(active bool) []*models.Match {
		matches := breakTimeMatches()
		// Featured в перерыве — первый предстоящий матч.
		matches[1].DRSVideoActive = active
		matches[1].DRSVideoURL = strPtr("https://cdn.example.com/replay.mp4")
		return matches
	}

	Convey("Given an ads overlay advanced to the second item", t, func() {
		engine := newTestEngine(nil)
		engine.SetSelection(selection())
		engine.SetMedia([]models.MediaItem{imageItem("a", 1), imageItem("b", 2), imageItem("c", 3)})
		engine.SetMatches(breakTimeMatches())
		for i := 0; i < 10; i++ {
			engine.Tick()
		}
		So(engine.Snapshot().Ads.Index, ShouldEqual, 1)

		Convey("When a replay is activated on the featured match", func() {
			engine.SetMatches(drsMatches(true))

			Convey("Then the replay overlay takes over", func() {
				state := engine.Snapshot()
				So(state.Mode, ShouldEqual, display.ModeDRS)
				So(state.DRSVideoURL, ShouldEqual, "https://cdn.example.com/replay.mp4")
			})

			Convey("And ticks do not advance the frozen playlist", func() {
				for i := 0; i < 25; i++ {
					engine.Tick()
				}
				engine.SetMatches(drsMatches(true))
				So(engine.Snapshot().Mode, ShouldEqual, display.ModeDRS)

				Convey("When the replay is deactivated", func() {
					engine.SetMatches(drsMatches(false))

					Convey("Then the ads overlay returns exactly where it left off", func() {
						state := engine.Snapshot()
						So(state.Mode, ShouldEqual, display.ModeAds)
						So(state.Ads.Index, ShouldEqual, 1)
						So(state.Ads.Item.ID, ShouldEqual, "b")
					})
				})
			})
		})
	})
}

func TestEngineFeaturedImageMode(t *testing.T) {
	Convey("Given a fixture where nothing has started and a promo image exists", t, func() {
		engine := newTestEngine(nil)
		engine.SetSelection(selection())
		engine.SetMedia([]models.MediaItem{imageItem("a", 1)})

		promo := fixtureMatch(1, 1, models.MatchStatusScheduled, nil)
		promo.FeaturedImageURL = strPtr("https://cdn.example.com/promo.jpg")
		engine.SetMatches([]*models.Match{promo, fixtureMatch(2, 2, models.MatchStatusScheduled, nil)})

		Convey("Then the promo image mode wins", func() {
			state := engine.Snapshot()
			So(state.Mode, ShouldEqual, display.ModeFeaturedImage)
			So(state.FeaturedImageURL, ShouldEqual, "https://cdn.example.com/promo.jpg")
		})
	})
}
