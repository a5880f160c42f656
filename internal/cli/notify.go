package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/example/ec-fulfillment/internal/config"
	"github.com/example/ec-fulfillment/internal/email"
	"github.com/example/ec-fulfillment/internal/infrastructure/kafka"
	"github.com/example/ec-fulfillment/internal/notification"
	"github.com/spf13/cobra"
)

func newNotifyCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notify",
		Short: "Consume order events from Kafka and mail customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return notify(ctx, opts.configPath)
		},
	}
}

func notify(ctx context.Context, configPath string) (err error) {
	rt, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rt.close())
	}()

	busCfg := rt.cfg.Bus
	if busCfg.Driver != config.BusKafka {
		return fmt.Errorf("notify needs the kafka bus, got %q (use serve --notify for watermill)", busCfg.Driver)
	}
	if rt.cfg.Store.Driver == config.StoreMemory {
		rt.log.Warn("memory store is not shared with the API; lookups will miss")
	}

	consumer := kafka.NewConsumer(busCfg.KafkaBrokers, busCfg.KafkaTopic, busCfg.KafkaGroupID, rt.log)
	rt.onClose(consumer.Close)

	rt.log.Info("notifier started",
		"brokers", busCfg.KafkaBrokers,
		"topic", busCfg.KafkaTopic,
		"group", busCfg.KafkaGroupID,
		"smtp", rt.cfg.SMTP.Host+":"+rt.cfg.SMTP.Port,
	)
	if err := consumer.Consume(ctx, newNotificationHandler(rt).HandleEvent); err != nil && ctx.Err() == nil {
		return err
	}
	rt.log.Info("notifier stopped")
	return nil
}

func newNotificationHandler(rt *runtime) *notification.Handler {
	mailer := email.NewService(email.Config{
		Host:     rt.cfg.SMTP.Host,
		Port:     rt.cfg.SMTP.Port,
		From:     rt.cfg.SMTP.From,
		Username: rt.cfg.SMTP.Username,
		Password: rt.cfg.SMTP.Password,
	})
	return notification.NewHandler(mailer, rt.repos.Orders, rt.repos.Accounts, rt.log)
}
