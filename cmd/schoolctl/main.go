package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/distrischool/schoolctl/internal/api"
	"github.com/distrischool/schoolctl/internal/app"
	"github.com/distrischool/schoolctl/internal/logging"
	"github.com/distrischool/schoolctl/internal/model"
	"github.com/distrischool/schoolctl/internal/notify"
	"github.com/distrischool/schoolctl/internal/realtime"
	"github.com/distrischool/schoolctl/internal/session"
	"github.com/distrischool/schoolctl/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "schoolctl: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		return err
	}

	if err := os.MkdirAll(model.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	logging.Init(cfg.Log.Level, cfg.Log.File)

	gateway := api.NewClient(cfg.Server.GatewayURL)
	auth := api.NewAuthClient(gateway.WithBase(cfg.Server.ServiceURL(cfg.Server.AuthURL)))
	notifications := api.NewNotificationsClient(gateway)
	students := api.NewStudentsClient(gateway.WithBase(cfg.Server.ServiceURL(cfg.Server.StudentURL)))
	teachers := api.NewTeachersClient(gateway.WithBase(cfg.Server.ServiceURL(cfg.Server.TeacherURL)))

	heartbeat := time.Duration(cfg.Realtime.HeartbeatSec) * time.Second
	channel, err := realtime.New(cfg.Server.GatewayURL, heartbeat)
	if err != nil {
		return err
	}

	cache, err := store.NewSQLiteStore(filepath.Join(model.ConfigDir(), "inbox.db"))
	if err != nil {
		logging.Log.WithError(err).Warn("opening inbox cache failed, running without it")
		cache = nil
	} else {
		defer cache.Close()
	}

	var notifier *notify.Coordinator
	if cache != nil {
		notifier = notify.New(notifications, cache)
	} else {
		notifier = notify.New(notifications, nil)
	}

	sess := session.New(gateway, auth, channel)

	root := app.New(app.Deps{
		Session:         sess,
		Notifier:        notifier,
		Channel:         channel,
		Students:        students,
		Teachers:        teachers,
		RefreshInterval: time.Duration(cfg.Display.RefreshIntervalSec) * time.Second,
	})

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
