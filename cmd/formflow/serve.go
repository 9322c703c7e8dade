package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-formflow/internal/config"
	"github.com/goliatone/go-formflow/internal/server"
	"github.com/goliatone/go-formflow/pkg/i18n"
	"github.com/goliatone/go-formflow/pkg/prefs/sqlite"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/tui"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
)

const shutdownTimeout = 10 * time.Second

func (a *app) serveCmd() *cobra.Command {
	var (
		addr     string
		formID   string
		renderer string
		engine   string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the form over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("form") {
				a.cfg.Form = formID
			}
			if cmd.Flags().Changed("template-engine") {
				a.cfg.TemplateEngine = engine
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			return a.serve(cmd.Context(), renderer)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides FORMFLOW_ADDR)")
	cmd.Flags().StringVar(&formID, "form", "", "form variant to serve (overrides FORMFLOW_FORM)")
	cmd.Flags().StringVar(&renderer, "renderer", "vanilla", "page renderer (vanilla or tui)")
	cmd.Flags().StringVar(&engine, "template-engine", "", "vanilla template engine (pongo2 or go-template)")
	return cmd
}

func (a *app) serve(parent context.Context, rendererName string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	form, err := a.form(a.cfg.Form)
	if err != nil {
		return err
	}
	table, err := a.table()
	if err != nil {
		return err
	}
	renderers, err := newRenderers(a.cfg.TemplateEngine)
	if err != nil {
		return err
	}
	renderer, err := renderers.Get(rendererName)
	if err != nil {
		return err
	}

	backend, closeBackend, err := a.prefsBackend(ctx)
	if err != nil {
		return err
	}
	defer closeBackend()

	srv, err := server.New(form, renderer,
		server.WithSender(a.sender(form)),
		server.WithTable(table),
		server.WithPrefs(backend),
		server.WithNotifyTTL(a.cfg.NotifyTTL),
		server.WithIdleTTL(a.cfg.SessionIdleTTL),
		server.WithStrictI18n(a.cfg.StrictI18n),
		server.WithThemeVariant(a.cfg.ThemeVariant),
		server.WithShareURL(a.cfg.ShareURL),
		server.WithAssets(vanilla.AssetsFS()),
		server.WithLogger(a.logger),
	)
	if err != nil {
		return err
	}
	defer srv.Close()

	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.logger.Info("listening", zap.String("addr", a.cfg.Addr), zap.String("form", form.ID), zap.String("renderer", renderer.Name()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		return srv.Run(gctx)
	})
	if a.cfg.WatchCatalogs && strings.TrimSpace(a.cfg.CatalogDir) != "" {
		g.Go(func() error {
			return i18n.Watch(gctx, a.cfg.CatalogDir, srv.SetTable, a.logger)
		})
	}
	return g.Wait()
}

func newRenderers(engine string) (*render.Registry, error) {
	registry := render.NewRegistry()
	var opts []vanilla.Option
	if engine == config.EngineGoTemplate {
		opts = append(opts, vanilla.WithGoTemplateOptions())
	}
	page, err := vanilla.New(opts...)
	if err != nil {
		return nil, err
	}
	text, err := tui.New()
	if err != nil {
		return nil, err
	}
	registry.MustRegister(page)
	registry.MustRegister(text)
	return registry, nil
}

func (a *app) prefsBackend(ctx context.Context) (server.PrefsBackend, func(), error) {
	switch a.cfg.PrefsDriver {
	case config.PrefsSQLite:
		store, err := sqlite.Open(ctx, a.cfg.PrefsPath)
		if err != nil {
			return nil, nil, err
		}
		return server.SQLitePrefs{Store: store}, func() {
			if err := store.Close(); err != nil {
				a.logger.Warn("close preferences store", zap.Error(err))
			}
		}, nil
	case config.PrefsMemory:
		return &server.MemoryPrefs{}, func() {}, nil
	default:
		return server.CookiePrefs{}, func() {}, nil
	}
}
