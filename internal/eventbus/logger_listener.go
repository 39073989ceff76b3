package eventbus

import (
	"context"

	"github.com/latticeworld/worldcore/internal/logging"
)

// StartLoggingListener subscribes to every event and writes it to the
// eventbus component log. Non-blocking.
func StartLoggingListener(bus EventBus) error {
	log := logging.GetLogger("eventbus")
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		log.Debug("%s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return err
	}
	log.Info("logging listener subscribed to all events")
	return nil
}
