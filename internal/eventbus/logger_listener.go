package eventbus

import (
	"context"

	"github.com/annel0/horde-arena/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Итоги забега пишутся на уровне INFO, остальное: DEBUG.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.EventType == TypeGameOver {
			logging.Info("🏁 [EventBus] %s run=%s %s", ev.EventType, ev.CorrelationID, string(ev.Payload))
			return
		}
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
