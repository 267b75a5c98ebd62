package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/anatolykoptev/go_clips/internal/engine"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
}

// stream pushes the session's State as JSON on every change.
func (s *Server) stream(c *gin.Context) {
	up := upgrader
	if len(s.opts.CORSOrigins) > 0 {
		allowed := make(map[string]bool, len(s.opts.CORSOrigins))
		for _, o := range s.opts.CORSOrigins {
			allowed[o] = true
		}
		up.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || allowed[origin] || origin == "http://"+r.Host || origin == "https://"+r.Host
		}
	}

	ws, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Debug("web: websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer ws.Close()
	engine.AddWSClients(1)
	defer engine.AddWSClients(-1)

	updates, cancel := controller(c).Subscribe()
	defer cancel()

	// The read loop only handles control frames and notices the peer leaving.
	closed := make(chan struct{})
	ws.SetReadLimit(512)
	_ = ws.SetReadDeadline(time.Now().Add(wsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	go func() {
		defer close(closed)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case st, ok := <-updates:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
				return
			}
			if err := ws.WriteJSON(st); err != nil {
				return
			}
		case <-ping.C:
			_ = ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
