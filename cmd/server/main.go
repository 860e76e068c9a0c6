package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/horde-arena/internal/api"
	"github.com/annel0/horde-arena/internal/app"
	"github.com/annel0/horde-arena/internal/auth"
	"github.com/annel0/horde-arena/internal/cache"
	"github.com/annel0/horde-arena/internal/config"
	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
	"github.com/annel0/horde-arena/internal/metrics"
	"github.com/annel0/horde-arena/internal/observability"
)

func main() {
	configPath := flag.String("config", os.Getenv("HORDE_CONFIG"), "путь к YAML конфигурации")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := configureLogging(cfg.Logging); err != nil {
		log.Fatalf("❌ Ошибка настройки логирования: %v", err)
	}
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	defer logging.GetLoggerManager().CloseAll()

	logging.Info("🎮 Запуск Horde Arena сервера...")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === ТРАССИРОВКА ===
	shutdownTelemetry, err := observability.InitTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		logging.Warn("⚠️ Трассировка отключена: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === ХРАНИЛИЩЕ И ШИНА СОБЫТИЙ ===
	runs := app.OpenRunRepo(ctx, cfg.Storage)
	bus := app.OpenEventBus(cfg.EventBus)

	var invalidator *cache.BusInvalidator
	if leaderboard := app.CacheLeaderboard(ctx, cfg.Storage, runs); leaderboard != nil {
		runs = leaderboard
		if invalidator, err = cache.NewBusInvalidator(bus, leaderboard); err != nil {
			logging.Warn("⚠️ Инвалидация кеша по событиям недоступна: %v", err)
		}
	}

	// === МЕТРИКИ ===
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	simMetrics := metrics.NewSimulationMetrics(registry)
	busMetrics := eventbus.NewMetricsExporter(bus, registry)
	busMetrics.Start()

	// === СИМУЛЯЦИЯ ===
	params, err := cfg.GameParams()
	if err != nil {
		log.Fatalf("❌ Некорректные параметры игры: %v", err)
	}

	publisher := eventbus.NewGamePublisher(bus, "horde-arena", 256)
	recorder := app.NewRunRecorder(runs)
	sim := game.New(params, game.Observers{simMetrics, publisher, recorder})
	runner := game.NewRunner(sim, cfg.Simulation.FPS)

	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ LoggingListener не запущен: %v", err)
	}

	eventLog, err := api.NewEventLog(bus, 512)
	if err != nil {
		log.Fatalf("❌ Ошибка подписки журнала событий: %v", err)
	}
	webhooks, err := api.NewWebhookManager(bus, "horde-arena")
	if err != nil {
		log.Fatalf("❌ Ошибка подписки вебхуков: %v", err)
	}

	// === АУТЕНТИФИКАЦИЯ ===
	tokens, err := auth.NewTokenManager(cfg.Auth.GetJWTSecret(), cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		log.Fatalf("❌ Ошибка инициализации JWT: %v", err)
	}
	if cfg.Auth.GetJWTSecret() == "" {
		logging.Warn("🔑 Секрет JWT не задан, токены операторов выдать нельзя")
	} else {
		logging.Info("🔑 Токены операторов: event-cli -cmd token (секрет %s)", tokens.Fingerprint())
	}

	// === REST API ===
	restAddr := fmt.Sprintf(":%d", cfg.Server.GetRESTPort())
	server := api.NewServer(api.Config{
		Addr:           restAddr,
		ServiceName:    cfg.Telemetry.ServiceName,
		Runner:         runner,
		Runs:           runs,
		Tokens:         tokens,
		Registry:       registry,
		Events:         eventLog,
		Webhooks:       webhooks,
		StreamInterval: cfg.Server.StreamInterval,
		MetricsTTL:     cfg.Server.ServerMetricsTTL,
		Logger:         logging.GetAPILogger(),
	})

	go func() {
		if err := server.Start(); err != nil {
			logging.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	// Отдельный порт только для Prometheus
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("❌ Ошибка сервера метрик: %v", err)
		}
	}()

	go func() {
		if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error("❌ Игровой цикл завершился с ошибкой: %v", err)
		}
	}()

	// === ГОРЯЧАЯ ПЕРЕЗАГРУЗКА ===
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath)
		if err != nil {
			logging.Warn("⚠️ Наблюдение за конфигурацией недоступно: %v", err)
		} else {
			defer watcher.Close()
			go watchConfig(watcher, runner)
		}
	}

	logging.Info("✅ Сервер запущен:")
	logging.Info("   🌐 REST API: http://localhost%s", restAddr)
	logging.Info("   📡 Поток снимков: ws://localhost%s/ws", restAddr)
	logging.Info("   📊 Метрики: http://localhost%s/metrics", metricsAddr)
	logging.Info("   💾 Хранилище забегов: %s", cfg.Storage.Backend)

	// === ОЖИДАНИЕ СИГНАЛА ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logging.Info("🛑 Получен сигнал %v, останавливаем сервер...", sig)

	// === ЗАВЕРШЕНИЕ ===
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки REST API: %v", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки сервера метрик: %v", err)
	}

	publisher.Close()
	recorder.Wait()
	if invalidator != nil {
		invalidator.Close()
	}
	webhooks.Close()
	eventLog.Close()
	busMetrics.Stop()

	if err := bus.Close(); err != nil {
		logging.Error("Ошибка закрытия шины событий: %v", err)
	}
	if err := runs.Close(); err != nil {
		logging.Error("Ошибка закрытия хранилища: %v", err)
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logging.Error("Ошибка остановки трассировки: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}

func configureLogging(cfg config.LoggingConfig) error {
	console, err := logging.ParseLevel(cfg.ConsoleLevel)
	if err != nil {
		return err
	}
	file, err := logging.ParseLevel(cfg.FileLevel)
	if err != nil {
		return err
	}
	logging.Configure(logging.Options{Dir: cfg.Dir, MinConsoleLevel: console, MinFileLevel: file})
	return logging.GetLoggerManager().ApplyLevels(cfg.Components)
}

// watchConfig применяет новые параметры игры; они вступят в силу со следующего забега
func watchConfig(w *config.Watcher, runner *game.Runner) {
	for {
		select {
		case cfg, ok := <-w.Updates:
			if !ok {
				return
			}
			params, err := cfg.GameParams()
			if err != nil {
				logging.Warn("⚠️ Новая конфигурация отклонена: %v", err)
				continue
			}
			runner.SetParams(params)
			logging.Info("🔄 Конфигурация перечитана, параметры применятся при рестарте")
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logging.Warn("⚠️ Ошибка чтения конфигурации: %v", err)
		}
	}
}
