// Package api отдаёт состояние боя по HTTP и websocket и принимает команды операторов.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/horde-arena/internal/auth"
	"github.com/annel0/horde-arena/internal/entity"
	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/middleware"
	"github.com/annel0/horde-arena/internal/storage"
)

// Registry реестр Prometheus, в который пишет и из которого читает API
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Config содержит зависимости REST сервера
type Config struct {
	Addr           string // адрес для запуска сервера, например ":8088"
	ServiceName    string
	Runner         *game.Runner
	Runs           storage.RunRepo
	Tokens         *auth.TokenManager
	Registry       Registry
	Events         *EventLog
	Webhooks       *WebhookManager
	StreamInterval time.Duration
	MetricsTTL     time.Duration
	Logger         *logging.Logger
}

// Server REST API и websocket-поток снимков
type Server struct {
	router         *gin.Engine
	http           *http.Server
	runner         *game.Runner
	runs           storage.RunRepo
	tokens         *auth.TokenManager
	events         *EventLog
	webhooks       *WebhookManager
	metrics        *ServerMetrics
	streamInterval time.Duration
}

// GenericResponse представляет общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// InputRequest ввод игрока через API
type InputRequest struct {
	Player int `json:"player"`
	entity.InputState
}

// NewServer создает REST сервер
func NewServer(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8088"
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "horde-arena"
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 50 * time.Millisecond
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger/recovery
	router.Use(gin.Recovery()) // добавим только recovery

	// === Observability middleware ===
	router.Use(otelgin.Middleware(cfg.ServiceName))
	router.Use(middleware.NewRequestLogger(cfg.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware("horde_api", cfg.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router, cfg.Registry)

	s := &Server{
		router:         router,
		runner:         cfg.Runner,
		runs:           cfg.Runs,
		tokens:         cfg.Tokens,
		events:         cfg.Events,
		webhooks:       cfg.Webhooks,
		metrics:        NewServerMetrics(cfg.MetricsTTL),
		streamInterval: cfg.StreamInterval,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes настраивает маршруты REST API
func (s *Server) setupRoutes() {
	s.router.Use(corsMiddleware())

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/ws", s.handleStream)

	api := s.router.Group("/api")
	{
		api.GET("/snapshot", s.handleSnapshot)
		api.GET("/hud", s.handleHUD)
		api.GET("/state", s.handleState)
		api.GET("/server", s.handleServerInfo)
		api.GET("/runs", s.handleRuns)
		api.GET("/runs/:id", s.handleRun)
		api.GET("/events", s.handleEvents)
	}

	// Управление боем требует JWT
	control := api.Group("/control")
	control.Use(s.jwtMiddleware())
	{
		control.POST("/input", s.handleInput)

		reset := control.Group("")
		reset.Use(s.resetMiddleware())
		{
			reset.POST("/restart", s.handleRestart)
			reset.GET("/webhooks", s.handleGetWebhooks)
			reset.POST("/webhooks", s.handleCreateWebhook)
			reset.DELETE("/webhooks/:id", s.handleDeleteWebhook)
		}
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (s *Server) Handler() http.Handler { return s.router }

// Start запускает REST сервер и блокируется до остановки
func (s *Server) Start() error {
	logging.Info("🌐 REST API слушает %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop останавливает сервер, дожидаясь активных запросов
func (s *Server) Stop(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// handleHealth проверка состояния сервера
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

func (s *Server) handleSnapshot(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Snapshot())
}

func (s *Server) handleHUD(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.HUD())
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.State())
}

// handleServerInfo возвращает информацию о процессе сервера
func (s *Server) handleServerInfo(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Информация о сервере",
		Data:    s.metrics.Info(),
	})
}

// handleRuns отдаёт таблицу лидеров
func (s *Server) handleRuns(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 10
	}

	runs, err := s.runs.Top(c.Request.Context(), limit)
	if err != nil {
		logging.Error("❌ Не удалось прочитать таблицу лидеров: %v", err)
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка хранилища",
		})
		return
	}

	total, _ := s.runs.Count(c.Request.Context())
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Таблица лидеров",
		Data: gin.H{
			"runs":  runs,
			"limit": limit,
			"total": total,
		},
	})
}

func (s *Server) handleRun(c *gin.Context) {
	rec, err := s.runs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, GenericResponse{
			Success: false,
			Message: "Забег не найден",
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, GenericResponse{
			Success: false,
			Message: "Ошибка хранилища",
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Забег", Data: rec})
}

// handleEvents отдаёт последние события шины: ?type=GameOver&limit=20
func (s *Server) handleEvents(c *gin.Context) {
	if s.events == nil {
		c.JSON(http.StatusServiceUnavailable, GenericResponse{
			Success: false,
			Message: "Журнал событий отключён",
		})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 {
		limit = 50
	}
	events := s.events.Recent(c.Query("type"), limit)
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Последние события",
		Data:    gin.H{"events": events, "total": len(events)},
	})
}

func (s *Server) handleInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Неверный формат запроса",
		})
		return
	}

	if !s.runner.SetInput(req.Player, req.InputState) {
		c.JSON(http.StatusBadRequest, GenericResponse{
			Success: false,
			Message: "Нет игрока с таким индексом",
		})
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Ввод принят"})
}

func (s *Server) handleRestart(c *gin.Context) {
	s.runner.Restart()
	claims := claimsFrom(c)
	logging.Info("🔄 Забег перезапущен оператором %s", claims.Operator)

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Забег перезапущен",
		Data:    s.runner.State(),
	})
}

func claimsFrom(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
