package api

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"

	"github.com/annel0/horde-arena/internal/logging"
)

// handleStream шлёт снимки кадров по websocket с интервалом streamInterval.
// Клиент только читает; входящие сообщения игнорируются.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // просмотрщики открываются с любых origin
	})
	if err != nil {
		logging.Warn("⚠️ websocket accept: %v", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead обслуживает управляющие кадры и отменяет ctx при закрытии клиентом
	ctx := conn.CloseRead(c.Request.Context())

	logging.Debug("📺 Подключён просмотрщик %s", c.ClientIP())
	err = s.streamSnapshots(ctx, conn)
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		conn.Close(websocket.StatusNormalClosure, "")
	case websocket.CloseStatus(err) != -1:
		// клиент закрыл соединение сам
	default:
		logging.Debug("📺 Поток снимков прерван: %v", err)
		conn.Close(websocket.StatusInternalError, "stream error")
	}
}

func (s *Server) streamSnapshots(ctx context.Context, conn *websocket.Conn) error {
	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()

	var lastTick uint64
	sent := false
	for {
		snap := s.runner.Snapshot()
		// Повторно не шлём кадр, если симуляция не сдвинулась
		if !sent || snap.Tick != lastTick {
			writeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			err := wsjson.Write(writeCtx, conn, snap)
			cancel()
			if err != nil {
				return err
			}
			lastTick = snap.Tick
			sent = true
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
