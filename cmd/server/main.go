package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"warpgate.gg/internal/gui/condition"
	"warpgate.gg/internal/gui/engine"
	"warpgate.gg/internal/gui/icons"
	"warpgate.gg/internal/gui/item"
	"warpgate.gg/internal/gui/paneldef"
	"warpgate.gg/internal/gui/provider"
	"warpgate.gg/internal/gui/render"
	"warpgate.gg/internal/i18n"
	persistlog "warpgate.gg/internal/persistence/log"
	"warpgate.gg/internal/transport/ws"
	"warpgate.gg/internal/tuning"
	"warpgate.gg/internal/warps"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		dbPath     = flag.String("db", "", "warp database path (default: <data>/warps.db)")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Printf("tuning not found (%s); using defaults", tp)
			tune = tuning.Defaults()
		} else {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	cat, err := icons.Load(filepath.Join(*configDir, "icons.json"), icons.NoSkins{})
	if err != nil {
		logger.Fatalf("load icons: %v", err)
	}
	loc, err := i18n.Load(filepath.Join(*configDir, "i18n"), tune.DefaultLocale)
	if err != nil {
		logger.Fatalf("load i18n: %v", err)
	}
	panelsDir := filepath.Join(*configDir, "panels")
	set, err := paneldef.Load(panelsDir, logger)
	if err != nil {
		logger.Fatalf("load panels: %v", err)
	}
	defs := paneldef.NewRegistry(set)
	logger.Printf("panels loaded: %d digest=%s", len(set.ByName), shortDigest(set.Digest))

	db := strings.TrimSpace(*dbPath)
	if db == "" {
		db = filepath.Join(*dataDir, "warps.db")
	}
	store, err := warps.OpenSQLite(db)
	if err != nil {
		logger.Fatalf("open warp db: %v", err)
	}
	defer store.Close()

	auditLog := persistlog.NewAuditLogger(*dataDir)
	defer auditLog.Close()

	builder := item.NewBuilder(condition.New(logger), cat, loc, logger)
	eng := engine.New(engine.Config{
		CacheTTL:     time.Duration(tune.MenuCacheTTLSec) * time.Second,
		SweepEvery:   time.Duration(tune.CacheSweepSec) * time.Second,
		FetchTimeout: time.Duration(tune.FetchTimeoutSec) * time.Second,
		HistoryMax:   tune.HistoryMax,
		DetailPanel:  tune.DetailPanel,
	}, engine.Deps{
		Defs:      defs,
		Icons:     cat,
		Builder:   builder,
		Renderers: render.NewRegistry(render.Listing{}, render.Standard{}),
		Providers: []provider.Provider{
			provider.NewOwned(tune.OwnedListPanels, tune.PageSize),
			provider.NewPublic(tune.PublicListPanels, tune.PageSize),
			provider.NewDetail([]string{tune.DetailPanel}),
		},
		Store:   store,
		Locales: loc,
		Audit:   auditLog,
		Log:     logger,
	})

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := eng.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("engine stopped: %v", err)
		}
	}()

	// SIGHUP swaps the panel set in one shot; a load error keeps the old set.
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGHUP)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ch:
				next, err := paneldef.Load(panelsDir, logger)
				if err != nil {
					logger.Printf("panel reload failed, keeping current set: %v", err)
					continue
				}
				defs.Swap(next)
				logger.Printf("panels reloaded: %d digest=%s", len(next.ByName), shortDigest(next.Digest))
			}
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", ws.NewServer(eng, logger).Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}
