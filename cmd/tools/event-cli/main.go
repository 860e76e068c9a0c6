package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/horde-arena/internal/app"
	"github.com/annel0/horde-arena/internal/auth"
	"github.com/annel0/horde-arena/internal/config"
	"github.com/annel0/horde-arena/internal/eventbus"
	"github.com/annel0/horde-arena/internal/game"
	"github.com/annel0/horde-arena/internal/logging"
)

const timeFormat = "15:04:05"

func main() {
	var (
		configPath = flag.String("config", os.Getenv("HORDE_CONFIG"), "путь к YAML конфигурации")
		command    = flag.String("cmd", "tail", "Команда: tail, top, token")
		natsURL    = flag.String("nats", "", "адрес NATS (по умолчанию из конфигурации)")
		eventTypes = flag.String("types", "", "Фильтр типов событий (через запятую)")
		limit      = flag.Int("limit", 20, "Максимальное число событий или забегов")
		follow     = flag.Bool("follow", false, "Ждать новые события (как tail -f)")
		operator   = flag.String("operator", "operator", "Имя оператора для токена")
		canReset   = flag.Bool("reset", false, "Разрешить токену рестарт и управление вебхуками")
	)
	flag.Parse()

	logging.Configure(logging.Options{MinConsoleLevel: logging.WARN, MinFileLevel: logging.WARN})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *command {
	case "tail":
		busCfg := cfg.EventBus
		if *natsURL != "" {
			busCfg.URL = *natsURL
		}
		if busCfg.URL == "" {
			log.Fatalf("❌ Не задан адрес NATS: используйте -nats или eventbus.url")
		}
		if err := tailEvents(ctx, busCfg, &TailOptions{
			EventTypes: parseStringList(*eventTypes),
			Limit:      *limit,
			Follow:     *follow,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "top":
		if err := showTop(ctx, cfg.Storage, *limit); err != nil {
			log.Fatalf("❌ Top failed: %v", err)
		}

	case "token":
		if err := issueToken(cfg.Auth, *operator, *canReset); err != nil {
			log.Fatalf("❌ Token failed: %v", err)
		}

	default:
		fmt.Printf("❌ Неизвестная команда: %s\n", *command)
		fmt.Println("Доступные команды: tail, top, token")
		os.Exit(1)
	}
}

// TailOptions параметры команды tail
type TailOptions struct {
	EventTypes []string
	Limit      int
	Follow     bool
}

// tailEvents читает события из JetStream и печатает их
func tailEvents(ctx context.Context, cfg config.EventBusConfig, opts *TailOptions) error {
	bus, err := eventbus.NewJetStreamBus(cfg.URL, cfg.Stream, time.Duration(cfg.Retention)*time.Hour)
	if err != nil {
		return fmt.Errorf("подключение к NATS: %w", err)
	}
	defer bus.Close()

	fmt.Printf("🎬 Чтение событий (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	events := make(chan *eventbus.Envelope, 64)
	done := make(chan struct{})
	defer close(done)

	sub, err := bus.Subscribe(ctx, eventbus.Filter{Types: opts.EventTypes}, func(_ context.Context, ev *eventbus.Envelope) {
		select {
		case events <- ev:
		case <-done:
		}
	})
	if err != nil {
		return fmt.Errorf("подписка: %w", err)
	}
	defer sub.Unsubscribe()

	// Без follow выходим, когда история закончилась
	idle := time.NewTimer(2 * time.Second)
	defer idle.Stop()

	count := 0
	for {
		select {
		case <-ctx.Done():
			fmt.Printf("\n📊 Всего событий: %d\n", count)
			return nil
		case <-idle.C:
			if !opts.Follow {
				fmt.Printf("\n📊 Всего событий: %d\n", count)
				return nil
			}
		case ev := <-events:
			fmt.Println(formatEvent(ev))
			count++
			if !opts.Follow && opts.Limit > 0 && count >= opts.Limit {
				fmt.Printf("\n📊 Всего событий: %d\n", count)
				return nil
			}
			idle.Reset(2 * time.Second)
		}
	}
}

// showTop печатает таблицу лидеров из хранилища забегов
func showTop(ctx context.Context, cfg config.StorageConfig, limit int) error {
	repo := app.OpenRunRepo(ctx, cfg)
	defer repo.Close()

	runs, err := repo.Top(ctx, limit)
	if err != nil {
		return err
	}
	total, err := repo.Count(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("🏆 Лучшие забеги (%s, всего %d)\n", cfg.Backend, total)
	for i, r := range runs {
		fmt.Printf("%3d. %s  убито: %d  волн: %d  время: %.1fс  %s\n",
			i+1, r.ID, r.Kills, r.Waves, r.Survived, r.EndedAt.Format(time.RFC3339))
	}
	return nil
}

// issueToken выпускает JWT для управляющих эндпоинтов
func issueToken(cfg config.AuthConfig, operator string, canReset bool) error {
	secret := cfg.GetJWTSecret()
	if secret == "" {
		return fmt.Errorf("секрет не задан: auth.jwt_secret или HORDE_JWT_SECRET")
	}
	tokens, err := auth.NewTokenManager(secret, cfg.TokenTTL, cfg.Issuer)
	if err != nil {
		return err
	}
	token, err := tokens.Generate(operator, canReset)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "🔑 секрет %s\n", tokens.Fingerprint())
	fmt.Println(token)
	return nil
}

// formatEvent выводит событие в читаемом формате
func formatEvent(ev *eventbus.Envelope) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s [%s] run=%s", ev.Timestamp.Format(timeFormat), ev.Source, ev.EventType, ev.CorrelationID)

	// Добавляем детали в зависимости от типа события
	switch ev.EventType {
	case eventbus.TypeEnemyKilled:
		var kill game.KillEvent
		if ev.Decode(&kill) == nil {
			fmt.Fprintf(&b, "\n  Враг: %d Источник: %s Всего: %d", kill.EnemyID, kill.Source, kill.Kills)
		}
	case eventbus.TypeWaveSpawned:
		var wave game.WaveEvent
		if ev.Decode(&wave) == nil {
			fmt.Fprintf(&b, "\n  Волна: %d Врагов: %d", wave.Wave, wave.Enemies)
		}
	case eventbus.TypeGameOver:
		var summary game.RunSummary
		if ev.Decode(&summary) == nil {
			fmt.Fprintf(&b, "\n  Убито: %d Волн: %d Время: %.1fс", summary.Kills, summary.Waves, summary.Survived)
		}
	}
	return b.String()
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
