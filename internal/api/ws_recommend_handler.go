package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"football-agent/internal/config"
	"football-agent/internal/llm"
	"football-agent/internal/recommender"
)

// MaxDuration caps a session at a full 90 minute match.
const MaxDuration = 18

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocket connection wrapper with mutex for thread-safe writes
type safeWSConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *safeWSConn) WriteJSON(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(v)
}

func (s *safeWSConn) ReadMessage() (int, []byte, error) {
	return s.conn.ReadMessage()
}

func (s *safeWSConn) Close() error {
	return s.conn.Close()
}

// Publish sends one loop event to the client as a text frame.
func (s *safeWSConn) Publish(_ context.Context, _ string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// fanout delivers to the socket first; a failing extra publisher is only logged.
type fanout struct {
	conn   *safeWSConn
	extra  recommender.Publisher
	logger *zap.Logger
}

func (f fanout) Publish(ctx context.Context, key string, payload []byte) error {
	if err := f.conn.Publish(ctx, key, payload); err != nil {
		return err
	}
	if f.extra != nil {
		if err := f.extra.Publish(ctx, key, payload); err != nil {
			f.logger.Warn("broadcast failed", zap.String("session", key), zap.Error(err))
		}
	}
	return nil
}

// controlMessage is a client frame sent after the report.
type controlMessage struct {
	Event string `json:"event"`
}

func isStop(msg []byte) bool {
	var m controlMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return false
	}
	return m.Event == "stop"
}

type recommendParams struct {
	team     string
	opponent string
	duration int
}

func parseRecommendParams(c *gin.Context, cfg *config.Config) (recommendParams, error) {
	p := recommendParams{
		team:     strings.TrimSpace(c.Query("team")),
		opponent: strings.TrimSpace(c.Query("opponent")),
		duration: cfg.Recommender.Duration,
	}
	if p.team == "" || p.opponent == "" {
		return p, errors.New("team and opponent are required")
	}
	if raw := c.Query("duration"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			return p, errors.New("duration must be a non-negative integer")
		}
		p.duration = d
	}
	if p.duration <= 0 && c.Query("duration") == "" {
		p.duration = recommender.DefaultDuration
	}
	if p.duration > MaxDuration {
		p.duration = MaxDuration
	}
	return p, nil
}

// GET /ws/recommend?team=&opponent=&duration=
//
// The first client message is the report JSON. Every iteration is then sent
// as a recommender.Event, followed by {"event":"done"}.
func WSRecommendHandler(cfg *config.Config, model llm.Generator, extra recommender.Publisher, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if model == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model not configured"})
			return
		}
		params, err := parseRecommendParams(c, cfg)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		rawConn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}
		conn := &safeWSConn{conn: rawConn}
		defer conn.Close()

		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.WriteJSON(map[string]string{"error": "invalid initial payload"})
			return
		}
		insights, err := recommender.ParseReport(msg)
		if err != nil {
			conn.WriteJSON(map[string]string{"error": "initial payload must be the report JSON"})
			return
		}

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Client close or {"event":"stop"} ends the session.
		go func() {
			for {
				_, msg, err := rawConn.ReadMessage()
				if err != nil {
					cancel()
					return
				}
				if isStop(msg) {
					cancel()
					return
				}
			}
		}()

		loop := recommender.NewLoop(params.team, params.opponent, insights, model)
		loop.Duration = params.duration
		loop.Interval = cfg.Recommender.Interval()
		loop.Logger = logger
		loop.Publisher = fanout{conn: conn, extra: extra, logger: logger}

		logger.Info("recommendation session started",
			zap.String("session", loop.SessionID()),
			zap.String("team", params.team),
			zap.String("opponent", params.opponent),
			zap.Int("duration", params.duration))

		if err := loop.Run(ctx, io.Discard); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Warn("recommendation session failed", zap.Error(err))
				conn.WriteJSON(map[string]string{"error": err.Error()})
			}
			return
		}
		conn.WriteJSON(map[string]string{"event": "done", "session_id": loop.SessionID()})
	}
}
