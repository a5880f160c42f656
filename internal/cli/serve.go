package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"

	"github.com/example/ec-fulfillment/internal/api"
	"github.com/example/ec-fulfillment/internal/infrastructure/eventbus"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var localNotifier bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long:  "Serves the storefront and admin API. With the watermill bus, --notify also mails customers from this process.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.configPath, localNotifier)
		},
	}
	cmd.Flags().BoolVar(&localNotifier, "notify", false, "run the notifier in-process (watermill bus only)")
	return cmd
}

func serve(ctx context.Context, configPath string, localNotifier bool) (err error) {
	rt, err := bootstrap(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, rt.close())
	}()

	b := openBus(rt)
	cmdHandler := newCommandHandler(rt, b.publisher)
	queryHandler := newQueryHandler(rt)
	tokens := newJWTService(rt.cfg.JWT)

	if rt.cfg.LogMode == "production" || rt.cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(
		api.NewHandlers(cmdHandler, queryHandler),
		api.NewAuthHandlers(cmdHandler, queryHandler, tokens, rt.repos.Sessions),
		tokens,
		rt.log,
	)

	var wg sync.WaitGroup
	if localNotifier {
		if b.channel == nil {
			return errors.New("--notify needs the watermill bus")
		}
		handler := newNotificationHandler(rt)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := eventbus.Consume(ctx, b.channel, rt.cfg.Bus.KafkaTopic, handler.HandleEvent); err != nil && ctx.Err() == nil {
				rt.log.Error("in-process notifier stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:    rt.cfg.HTTP.Addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		rt.log.Info("server started", "addr", rt.cfg.HTTP.Addr, "store", rt.cfg.Store.Driver, "bus", rt.cfg.Bus.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	wg.Wait()
	return nil
}
