package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/courtside/pickleball-league/display"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Экраны табло подключаются из локальной сети площадки,
		// проверку Origin настраивают на обратном прокси.
		return true
	},
}

type WebSocketHandler struct {
	hub     *display.Hub
	manager *display.Manager
	logger  *slog.Logger
}

func NewWebSocketHandler(hub *display.Hub, manager *display.Manager, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{hub: hub, manager: manager, logger: logger}
}

// ServeWs подключает экран табло к комнате турнира и игрового дня:
// /ws/scoreboard/{tournamentID}/{date}. Сразу после регистрации клиенту
// уходит текущий снимок состояния, дальше он получает только дельты
// через трансляцию.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	tournamentID, date, err := scoreboardParams(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	// Движок создаётся до апгрейда: первый подписавшийся экран
	// поднимает комнату и начинает тикать её таймерами.
	engine, err := h.manager.Engine(r.Context(), tournamentID, date)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам отвечает клиенту HTTP-ошибкой.
		h.logger.Error("websocket upgrade failed",
			slog.Int("tournament_id", tournamentID),
			slog.String("display_date", date),
			slog.Any("error", err))
		return
	}

	client := &display.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: display.RoomKey(tournamentID, date),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()

	if initial, err := json.Marshal(engine.Snapshot()); err == nil {
		client.Send <- initial
	} else {
		h.logger.Error("failed to marshal initial scoreboard state", slog.Any("error", err))
	}
}
