package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"screening_notifier/internal/config"
	"screening_notifier/internal/fetcher"
	"screening_notifier/internal/notify"
	"screening_notifier/internal/reconciler"
	"screening_notifier/internal/signer"
	"screening_notifier/internal/storage"
)

type app struct {
	cfg        *config.Config
	log        *slog.Logger
	store      storage.Store
	reconciler *reconciler.Reconciler
}

// setup loads configuration and wires every component. Configuration and
// store problems surface here, before any network call.
func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log := newLogger(cfg.LogLevel)

	sig, err := signer.New(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: cfg.HTTPTimeout}

	f := fetcher.New(client, sig, cfg.APIURL, fetcher.Query{
		CoCd:   cfg.Query.CoCd,
		SiteNo: cfg.Query.SiteNo,
		MovNo:  cfg.Query.MovNo,
		Div:    cfg.Query.Div,
		AttrCd: cfg.Query.AttrCd,
	}, log)
	f.SetTimeout(cfg.HTTPTimeout)

	channels := notify.Multi{notify.NewDiscord(client, cfg.WebhookURL, cfg.MessageHeader)}
	if cfg.TelegramEnabled() {
		channels = append(channels, notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, cfg.MessageHeader))
	}

	return &app{
		cfg:        cfg,
		log:        log,
		store:      store,
		reconciler: reconciler.New(store, f, channels, log),
	}, nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	path := cfg.StorePath()
	if cfg.SeenStore == storage.BackendSQLite {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("create data directory %s: %w", dir, err)
			}
		}
	}
	store, err := storage.Open(cfg.SeenStore, path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error("close store", "error", err)
	}
}
