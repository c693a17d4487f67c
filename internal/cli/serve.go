package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	transport "quizforge/internal/transport/http"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP run trigger and status server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), root, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "port to listen on (defaults to config or PORT)")
	return cmd
}

func runServer(ctx context.Context, root *rootOptions, portFlag string) error {
	cfg, log, err := root.load()
	if err != nil {
		return err
	}
	defer log.Sync()

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := wire(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer c.Close()

	handler := transport.NewHandler(c.runner, c.source, transport.Defaults{
		QuestionType: cfg.Quiz.QuestionType,
		InputSource:  cfg.Input.Source,
		Seed:         cfg.Quiz.Seed,
	}, log)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quizforge server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	c.runner.Wait()
	return err
}
