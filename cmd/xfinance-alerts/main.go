package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"xfinance-dashboard/internal/alerts"
	"xfinance-dashboard/internal/config"
	"xfinance-dashboard/internal/dashboard"
	"xfinance-dashboard/internal/domain"
	"xfinance-dashboard/internal/gateway"
	"xfinance-dashboard/internal/logger"
	"xfinance-dashboard/internal/mqtt"
	"xfinance-dashboard/internal/notify"
)

const pollInterval = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "xfinance-alerts")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer log.Sync()

	actor := domain.Actor{UserID: cfg.Session.UserID, Role: cfg.Session.Role, Email: cfg.Session.Email}
	gw := gateway.NewClient(gateway.ClientConfig{
		BaseURL:    cfg.Gateway.BaseURL,
		Timeout:    cfg.Gateway.Timeout,
		RetryCount: cfg.Gateway.RetryCount,
		Actor:      actor,
	}, log)

	session := dashboard.NewSession(dashboard.Options{
		Gateway:        gw,
		Actor:          actor,
		PageSize:       cfg.Grid.PageSize,
		BlurDebounce:   cfg.Editor.BlurDebounce,
		Notifier:       notify.NewLogNotifier(log),
		Logger:         log,
		RefreshTimeout: cfg.Gateway.Timeout,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshes := make(chan struct{}, 1)
	requestRefresh := func() {
		select {
		case refreshes <- struct{}{}:
		default:
		}
	}
	requestRefresh()

	if cfg.MQTT.Enabled {
		mqttCfg := cfg.MQTT
		mqttCfg.ClientID = cfg.MQTT.ClientID + "-alerts"
		client, err := mqtt.NewClient(&mqttCfg, log)
		if err != nil {
			log.Warn("MQTT unavailable, polling only", zap.Error(err))
		} else {
			defer client.Disconnect()
			err := client.Subscribe(cfg.MQTT.Topic, cfg.MQTT.QoS, func(_ string, payload []byte) error {
				e, err := mqtt.DecodeEvent(payload)
				if err != nil {
					return err
				}
				log.Debug("Record change received", zap.String("type", e.Type), zap.Int64s("ids_princ", e.IDsPrinc))
				requestRefresh()
				return nil
			})
			if err != nil {
				log.Warn("MQTT subscribe failed, polling only", zap.Error(err))
			}
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Info("Stopping xfinance-alerts")
			return
		case <-ticker.C:
			requestRefresh()
		case <-refreshes:
			refreshCtx, refreshCancel := context.WithTimeout(ctx, cfg.Gateway.Timeout)
			err := session.Refresh(refreshCtx)
			refreshCancel()
			if err != nil {
				continue
			}
			logSummary(log, session)
		}
	}
}

func logSummary(log *zap.Logger, session *dashboard.Session) {
	summary := session.AlertSummary()
	for _, stage := range alerts.Stages {
		counts := summary[stage]
		log.Info("Alert summary",
			zap.String("stage", string(stage)),
			zap.Int("warning", counts[alerts.LevelWarning]),
			zap.Int("danger", counts[alerts.LevelDanger]),
			zap.Int("success", counts[alerts.LevelSuccess]),
		)
	}
	log.Info("Grid", zap.String("summary", session.View().Summary()))
}
