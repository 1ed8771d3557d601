package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"

	"github.com/Abraxas-365/exceptionx"
	"github.com/Abraxas-365/exceptionx/errx"
	"github.com/Abraxas-365/exceptionx/fiberx"
	"github.com/Abraxas-365/exceptionx/hostx"
	"github.com/Abraxas-365/exceptionx/logx"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Get("server.addr").AsStringDefault(addr)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mod, err := flags.module(ctx, cfg, nil)
			if err != nil {
				return err
			}

			if watch && flags.configFile != "" {
				if err := mod.WatchPresets(ctx, flags.configFile); err != nil {
					return err
				}
			}

			return serve(ctx, newApp(mod), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	cmd.Flags().BoolVar(&watch, "watch", false, "register codes added to the config file while running")
	return cmd
}

// newApp mounts the demo routes
func newApp(mod *exceptionx.Module) *fiber.App {
	mod.Dispatcher.Register(kindRateLimited, func(err error, host hostx.Host) {
		host.Status(fiber.StatusTooManyRequests)
		_ = host.JSON(fiber.Map{"retryAfter": 30, "path": host.Path()})
	})

	app := fiberx.New(mod.Filter, fiber.Config{DisableStartupMessage: true})

	app.Get("/errors/:code", func(c *fiber.Ctx) error {
		return mod.Exceptions.New(c.Params("code"), errx.WithStack())
	})
	app.Get("/limited", func(c *fiber.Ctx) error {
		return mod.Exceptions.New("RATE_LIMITED", errx.WithKind(kindRateLimited))
	})
	app.Get("/forbidden", func(c *fiber.Ctx) error {
		return fiber.ErrForbidden
	})
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("demo panic")
	})
	return app
}

var kindRateLimited = errx.NewKind("RateLimited", errx.KindException)

func serve(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logx.Info("listening on %s", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	logx.Info("server stopped")
	return nil
}
