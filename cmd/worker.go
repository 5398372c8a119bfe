package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/frahmantamala/rental-management/internal/core/events"
	"github.com/frahmantamala/rental-management/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Start background workers",
	Long:  `Start and manage background workers such as the event bus consumer`,
}

// Event Bus worker command
var eventWorkerCmd = &cobra.Command{
	Use:   "events",
	Short: "Start event bus worker",
	Long:  `Start the event bus and log every rental and equipment event it sees`,
	Run: func(cmd *cobra.Command, args []string) {
		startEventWorker()
	},
}

func init() {
	workerCmd.AddCommand(eventWorkerCmd)
}

func startEventWorker() {
	lg := logger.L()

	eventBus := events.NewEventBus(lg)

	logEvent := func(ctx context.Context, event events.Event) error {
		lg.Info("event received",
			"event_id", event.EventID(),
			"event_type", event.EventType(),
			"payload", event.Payload())
		return nil
	}

	for _, eventType := range []string{
		events.EventTypeRentalRegistered,
		events.EventTypeRentalReturned,
		events.EventTypeRentalPeriodUpdated,
		events.EventTypeEquipmentDeleted,
	} {
		eventBus.Subscribe(eventType, logEvent)
	}

	lg.Info("event worker started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	lg.Info("event worker stopping", "signal", sig)
}
