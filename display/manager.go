package display

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/courtside/pickleball-league/models"
)

// Виды входных данных движка; совпадают со значениями в событиях шины.
const (
	RefreshMatches   = "matches"
	RefreshSelection = "selection"
	RefreshMedia     = "media"
	RefreshSponsors  = "sponsors"
)

const displayDateLayout = "2006-01-02"

// Loader загружает входы движка из хранилища. Ошибки чтения не фатальны:
// менеджер логирует их и подставляет пустые данные.
type Loader interface {
	LoadMatches(ctx context.Context, tournamentID int, date time.Time) ([]*models.Match, error)
	LoadSelection(ctx context.Context, tournamentID int, date time.Time) (*models.DisplaySelection, error)
	LoadMedia(ctx context.Context, tournamentID int) ([]models.MediaItem, error)
	LoadSponsors(ctx context.Context) ([]models.Sponsor, error)
}

// ParseDisplayDate разбирает дату игрового дня в формате YYYY-MM-DD.
func ParseDisplayDate(s string) (time.Time, error) {
	t, err := time.Parse(displayDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid display date %q: %w", s, err)
	}
	return t, nil
}

type engineEntry struct {
	engine       *Engine
	tournamentID int
	displayDate  string
	stop         chan struct{}
}

// Manager держит по одному движку на пару турнир+игровой день, создаёт их
// по требованию и перегружает входы по событиям шины. Каждому движку
// принадлежит секундный тикер для отсчётов.
type Manager struct {
	loader  Loader
	clearer TimeoutClearer
	hub     *Hub
	logger  *slog.Logger

	mu      sync.Mutex
	engines map[string]*engineEntry
	closed  bool
}

func NewManager(loader Loader, clearer TimeoutClearer, hub *Hub, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loader:  loader,
		clearer: clearer,
		hub:     hub,
		logger:  logger,
		engines: make(map[string]*engineEntry),
	}
}

// Engine возвращает движок для турнира и даты, создавая и наполняя его при
// первом обращении.
func (m *Manager) Engine(ctx context.Context, tournamentID int, displayDate string) (*Engine, error) {
	date, err := ParseDisplayDate(displayDate)
	if err != nil {
		return nil, err
	}

	key := RoomKey(tournamentID, displayDate)

	m.mu.Lock()
	if entry, ok := m.engines[key]; ok {
		m.mu.Unlock()
		return entry.engine, nil
	}

	broadcast := func(state *State) {
		m.hub.BroadcastToRoom(key, state)
	}
	engine := NewEngine(tournamentID, displayDate, m.clearer, broadcast, m.logger)
	entry := &engineEntry{
		engine:       engine,
		tournamentID: tournamentID,
		displayDate:  displayDate,
		stop:         make(chan struct{}),
	}
	m.engines[key] = entry
	m.mu.Unlock()

	matches, selection, media, sponsors := m.loadAll(ctx, tournamentID, date)
	engine.SetSponsors(sponsors)
	engine.SetMedia(media)
	engine.SetSelection(selection)
	engine.SetMatches(matches)

	go m.runTicker(entry)
	return engine, nil
}

// loadAll читает все входы параллельно. Неудачное чтение вырождается в
// пустые данные: табло покажет "нет матча", а следующее событие всё поправит.
func (m *Manager) loadAll(ctx context.Context, tournamentID int, date time.Time) (
	[]*models.Match, *models.DisplaySelection, []models.MediaItem, []models.Sponsor,
) {
	var (
		matches   []*models.Match
		selection *models.DisplaySelection
		media     []models.MediaItem
		sponsors  []models.Sponsor
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := m.loader.LoadMatches(gctx, tournamentID, date)
		if err != nil {
			m.logReadError("matches", tournamentID, err)
			return nil
		}
		matches = res
		return nil
	})
	g.Go(func() error {
		res, err := m.loader.LoadSelection(gctx, tournamentID, date)
		if err != nil {
			m.logReadError("selection", tournamentID, err)
			return nil
		}
		selection = res
		return nil
	})
	g.Go(func() error {
		res, err := m.loader.LoadMedia(gctx, tournamentID)
		if err != nil {
			m.logReadError("media", tournamentID, err)
			return nil
		}
		media = res
		return nil
	})
	g.Go(func() error {
		res, err := m.loader.LoadSponsors(gctx)
		if err != nil {
			m.logReadError("sponsors", tournamentID, err)
			return nil
		}
		sponsors = res
		return nil
	})
	_ = g.Wait()

	return matches, selection, media, sponsors
}

func (m *Manager) logReadError(kind string, tournamentID int, err error) {
	m.logger.Error("display input read failed, using empty data",
		slog.String("kind", kind),
		slog.Int("tournament_id", tournamentID),
		slog.Any("error", err))
}

// Refresh перегружает один вход движка по событию шины. События для пар,
// на которые никто не смотрит, игнорируются.
func (m *Manager) Refresh(ctx context.Context, tournamentID int, displayDate, kind string) {
	key := RoomKey(tournamentID, displayDate)

	m.mu.Lock()
	entry, ok := m.engines[key]
	m.mu.Unlock()
	if !ok {
		return
	}

	date, err := ParseDisplayDate(displayDate)
	if err != nil {
		m.logger.Warn("refresh with invalid display date",
			slog.String("date", displayDate), slog.Any("error", err))
		return
	}

	switch kind {
	case RefreshMatches:
		res, err := m.loader.LoadMatches(ctx, tournamentID, date)
		if err != nil {
			m.logReadError(kind, tournamentID, err)
			return
		}
		entry.engine.SetMatches(res)
	case RefreshSelection:
		res, err := m.loader.LoadSelection(ctx, tournamentID, date)
		if err != nil {
			m.logReadError(kind, tournamentID, err)
			return
		}
		entry.engine.SetSelection(res)
	default:
		m.logger.Warn("unknown refresh kind", slog.String("kind", kind))
	}
}

// RefreshMediaAll перегружает плейлист на всех движках турнира: плейлист
// общий для всех игровых дней.
func (m *Manager) RefreshMediaAll(ctx context.Context, tournamentID int) {
	entries := m.entriesFor(tournamentID)
	if len(entries) == 0 {
		return
	}
	res, err := m.loader.LoadMedia(ctx, tournamentID)
	if err != nil {
		m.logReadError(RefreshMedia, tournamentID, err)
		return
	}
	for _, entry := range entries {
		entry.engine.SetMedia(res)
	}
}

// RefreshSponsorsAll перегружает логотипы на всех движках.
func (m *Manager) RefreshSponsorsAll(ctx context.Context) {
	entries := m.allEntries()
	if len(entries) == 0 {
		return
	}
	res, err := m.loader.LoadSponsors(ctx)
	if err != nil {
		m.logReadError(RefreshSponsors, 0, err)
		return
	}
	for _, entry := range entries {
		entry.engine.SetSponsors(res)
	}
}

func (m *Manager) entriesFor(tournamentID int) []*engineEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var entries []*engineEntry
	for _, entry := range m.engines {
		if entry.tournamentID == tournamentID {
			entries = append(entries, entry)
		}
	}
	return entries
}

func (m *Manager) allEntries() []*engineEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	entries := make([]*engineEntry, 0, len(m.engines))
	for _, entry := range m.engines {
		entries = append(entries, entry)
	}
	return entries
}

// Snapshot возвращает текущее состояние табло для snapshot-эндпоинта.
func (m *Manager) Snapshot(ctx context.Context, tournamentID int, displayDate string) (*State, error) {
	engine, err := m.Engine(ctx, tournamentID, displayDate)
	if err != nil {
		return nil, err
	}
	return engine.Snapshot(), nil
}

// VideoEnded пробрасывает сигнал экрана о доигранном рекламном видео.
func (m *Manager) VideoEnded(ctx context.Context, tournamentID int, displayDate string) error {
	engine, err := m.Engine(ctx, tournamentID, displayDate)
	if err != nil {
		return err
	}
	engine.VideoEnded()
	return nil
}

func (m *Manager) runTicker(entry *engineEntry) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-entry.stop:
			return
		case <-ticker.C:
			entry.engine.Tick()
		}
	}
}

// Close останавливает тикеры всех движков.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	for _, entry := range m.engines {
		close(entry.stop)
	}
}
