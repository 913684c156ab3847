package display

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/courtside/pickleball-league/metrics"
	"github.com/courtside/pickleball-league/models"
)

const (
	// Отсчёт таймаута: 60 тиков по секунде.
	timeoutCountdownTicks = 60
	// Картинка в рекламном плейлисте висит 10 тиков, затем листается.
	imageDisplayTicks = 10

	clearWriteTimeout = 5 * time.Second
)

type overlayMode int

const (
	overlayNone overlayMode = iota
	overlayAds
	overlayDRS
)

// TimeoutClearer сбрасывает флаг таймаута на матче после истечения отсчёта.
// Запись best-effort: ошибка логируется и не повторяется, следующее
// обновление данных выправит состояние само.
type TimeoutClearer interface {
	ClearTimeout(ctx context.Context, matchID int) error
}

// adsSnapshot — состояние рекламного оверлея, замороженное на время
// DRS-повтора и восстанавливаемое поле в поле после его окончания.
type adsSnapshot struct {
	visible        bool
	mediaIndex     int
	imageTicksLeft int
	countdownLeft  int
	countdownMatch int
}

// Engine — согласователь состояния табло одного турнира и игрового дня.
// Все данные принадлежат ему одному; внешние события (обновления данных,
// тики таймера, окончание видео) сериализуются мьютексом, поэтому каждая
// переоценка видит согласованный снимок входов.
type Engine struct {
	tournamentID int
	displayDate  string

	logger    *slog.Logger
	clearer   TimeoutClearer
	broadcast func(*State)

	mu sync.Mutex

	matches   []*models.Match
	selection *models.DisplaySelection
	media     []models.MediaItem
	sponsors  []models.Sponsor

	fixture        FixtureState
	overlay        overlayMode
	mediaIndex     int
	imageTicksLeft int
	countdownLeft  int // -1, когда отсчёт не запущен
	countdownMatch int
	saved          *adsSnapshot
}

func NewEngine(tournamentID int, displayDate string, clearer TimeoutClearer, broadcast func(*State), logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		tournamentID:  tournamentID,
		displayDate:   displayDate,
		logger:        logger,
		clearer:       clearer,
		broadcast:     broadcast,
		countdownLeft: -1,
	}
}

// SetMatches заменяет набор матчей и переоценивает состояние табло.
func (e *Engine) SetMatches(matches []*models.Match) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.matches = matches
	e.reconcile()
	e.publish()
}

// SetSelection заменяет выбранную пару команд.
func (e *Engine) SetSelection(sel *models.DisplaySelection) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = sel
	e.reconcile()
	e.publish()
}

// SetMedia заменяет рекламный плейлист; элементы упорядочиваются по рангу.
func (e *Engine) SetMedia(items []models.MediaItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	// Копия: один и тот же срез может раздаваться нескольким движкам.
	items = append([]models.MediaItem(nil), items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })
	e.media = items
	if e.mediaIndex >= len(e.media) {
		e.mediaIndex = 0
		e.armMediaTimer()
	}
	e.reconcile()
	e.publish()
}

// SetSponsors обновляет список логотипов; на логику оверлеев не влияет.
func (e *Engine) SetSponsors(sponsors []models.Sponsor) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sponsors = sponsors
	e.publish()
}

// VideoEnded вызывается экраном, когда видео-элемент плейлиста доиграл.
func (e *Engine) VideoEnded() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.overlay != overlayAds || e.currentMediaType() != models.MediaTypeVideo {
		return
	}
	e.advanceMedia()
	e.publish()
}

// Tick продвигает таймеры на одну секунду. Вызывается менеджером с живым
// тикером; тесты зовут его напрямую, что делает отсчёты детерминированными.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.overlay != overlayAds {
		return
	}
	changed := false

	if e.countdownLeft > 0 {
		e.countdownLeft--
		changed = true
		if e.countdownLeft == 0 {
			matchID := e.countdownMatch
			e.stopCountdown()
			e.exitAds()
			go e.clearTimeout(matchID)
		}
	}

	// Картинки листаются по таймеру, видео ждёт сигнала VideoEnded:
	// взведён всегда ровно один из двух триггеров.
	if e.overlay == overlayAds && e.currentMediaType() == models.MediaTypeImage {
		e.imageTicksLeft--
		changed = true
		if e.imageTicksLeft <= 0 {
			e.advanceMedia()
		}
	}

	if changed {
		e.publish()
	}
}

// Snapshot возвращает текущее состояние табло.
func (e *Engine) Snapshot() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buildState()
}

// reconcile — единственная точка принятия решений: после каждого изменения
// данных состояние выводится заново из последних входов.
func (e *Engine) reconcile() {
	e.fixture = BuildFixtureState(e.matches, e.selection, e.logger)

	feat := e.fixture.Featured
	drsReady := feat != nil && feat.DRSReady()

	if e.overlay == overlayDRS {
		if drsReady {
			// Повтор продолжается, рекламное состояние остаётся замороженным.
			return
		}
		e.restoreAds()
	} else if drsReady {
		e.enterDRS()
		return
	}

	active, timeoutMatch := e.activeTimeout()
	breakTime := len(e.fixture.Completed) > 0 && len(e.fixture.InProgress) == 0
	eligible := len(e.media) > 0 && (active || breakTime)

	if e.countdownLeft >= 0 && !active {
		// Таймаут закончился раньше отсчёта: таймер снимается, не дожидаясь нуля.
		e.stopCountdown()
	}

	switch {
	case e.overlay == overlayAds && !eligible:
		e.exitAds()
	case e.overlay != overlayAds && eligible:
		e.enterAds()
	}

	if e.overlay == overlayAds && active && e.countdownLeft < 0 {
		e.countdownLeft = timeoutCountdownTicks
		e.countdownMatch = timeoutMatch.ID
	}
}

// activeTimeout возвращает первый играющийся матч пары с активным таймаутом.
func (e *Engine) activeTimeout() (bool, *models.Match) {
	for _, m := range e.fixture.Matches {
		if m.TimeoutActive() {
			return true, m
		}
	}
	return false, nil
}

func (e *Engine) enterAds() {
	e.overlay = overlayAds
	if e.mediaIndex >= len(e.media) {
		e.mediaIndex = 0
	}
	e.armMediaTimer()
	metrics.OverlayTransitions.WithLabelValues(string(ModeAds)).Inc()
}

func (e *Engine) exitAds() {
	e.overlay = overlayNone
	e.stopCountdown()
	metrics.OverlayTransitions.WithLabelValues(string(ModeLive)).Inc()
}

func (e *Engine) enterDRS() {
	e.saved = &adsSnapshot{
		visible:        e.overlay == overlayAds,
		mediaIndex:     e.mediaIndex,
		imageTicksLeft: e.imageTicksLeft,
		countdownLeft:  e.countdownLeft,
		countdownMatch: e.countdownMatch,
	}
	e.overlay = overlayDRS
	metrics.OverlayTransitions.WithLabelValues(string(ModeDRS)).Inc()
}

// restoreAds возвращает рекламный оверлей ровно в то состояние, в котором
// он был на момент входа в DRS, сколько бы обновлений ни пришло за время
// повтора.
func (e *Engine) restoreAds() {
	if e.saved == nil {
		e.overlay = overlayNone
		return
	}
	if e.saved.visible {
		e.overlay = overlayAds
	} else {
		e.overlay = overlayNone
	}
	e.mediaIndex = e.saved.mediaIndex
	e.imageTicksLeft = e.saved.imageTicksLeft
	e.countdownLeft = e.saved.countdownLeft
	e.countdownMatch = e.saved.countdownMatch
	e.saved = nil
	if e.mediaIndex >= len(e.media) {
		e.mediaIndex = 0
		e.armMediaTimer()
	}
}

func (e *Engine) stopCountdown() {
	e.countdownLeft = -1
	e.countdownMatch = 0
}

func (e *Engine) currentMediaItem() *models.MediaItem {
	if len(e.media) == 0 || e.mediaIndex >= len(e.media) {
		return nil
	}
	return &e.media[e.mediaIndex]
}

func (e *Engine) currentMediaType() models.MediaType {
	if item := e.currentMediaItem(); item != nil {
		return item.Type
	}
	return ""
}

func (e *Engine) advanceMedia() {
	if len(e.media) == 0 {
		return
	}
	e.mediaIndex = (e.mediaIndex + 1) % len(e.media)
	e.armMediaTimer()
}

func (e *Engine) armMediaTimer() {
	if e.currentMediaType() == models.MediaTypeImage {
		e.imageTicksLeft = imageDisplayTicks
	} else {
		e.imageTicksLeft = 0
	}
}

// clearTimeout выполняет единственную запись этого компонента. Вызывается
// в отдельной горутине, чтобы не держать мьютекс на время сетевого вызова.
func (e *Engine) clearTimeout(matchID int) {
	if e.clearer == nil || matchID == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), clearWriteTimeout)
	defer cancel()
	if err := e.clearer.ClearTimeout(ctx, matchID); err != nil {
		metrics.TimeoutClears.WithLabelValues("error").Inc()
		e.logger.Error("failed to clear match timeout",
			slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}
	metrics.TimeoutClears.WithLabelValues("ok").Inc()
}

func (e *Engine) publish() {
	if e.broadcast == nil {
		return
	}
	e.broadcast(e.buildState())
}

func (e *Engine) buildState() *State {
	st := &State{
		Mode:         ModeLive,
		TournamentID: e.tournamentID,
		DisplayDate:  e.displayDate,
		Score:        e.fixture.Score,
		Featured:     e.fixture.Featured,
		Completed:    e.fixture.Completed,
		Upcoming:     e.fixture.Upcoming,
		Sponsors:     e.sponsors,
		UpdatedAt:    time.Now().UTC(),
	}

	switch {
	case e.fixture.AllScheduled && e.fixture.FeaturedImageURL != "":
		st.Mode = ModeFeaturedImage
		st.FeaturedImageURL = e.fixture.FeaturedImageURL
	case e.overlay == overlayDRS:
		st.Mode = ModeDRS
		if f := e.fixture.Featured; f != nil && f.DRSVideoURL != nil {
			st.DRSVideoURL = *f.DRSVideoURL
		}
	case e.overlay == overlayAds:
		st.Mode = ModeAds
	}

	if e.overlay == overlayAds {
		st.Ads.Visible = true
		st.Ads.Index = e.mediaIndex
		st.Ads.Item = e.currentMediaItem()
		if e.countdownLeft >= 0 {
			left := e.countdownLeft
			st.Ads.TimeoutCountdown = &left
			st.Ads.TimeoutTeam = e.countdownTeam()
		}
	}

	return st
}

func (e *Engine) countdownTeam() string {
	for _, m := range e.fixture.Matches {
		if m.ID == e.countdownMatch && m.Timeout != nil {
			return m.Timeout.Team
		}
	}
	return ""
}
