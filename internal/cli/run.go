package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mt5crs/riskcore/alert"
	"github.com/mt5crs/riskcore/broker/sim"
	"github.com/mt5crs/riskcore/config"
	"github.com/mt5crs/riskcore/engine"
	"github.com/mt5crs/riskcore/journal"
	"github.com/mt5crs/riskcore/market"
	"github.com/mt5crs/riskcore/monitoring"
	"github.com/mt5crs/riskcore/portfolio"
	"github.com/mt5crs/riskcore/risk"
)

func newRunCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop against the paper gateway",
		Long: `Runs the full signal-to-fill pipeline with the in-process paper
gateway, driven by the scripted quotes and signals in the config's
simulation section. Ctrl-C stops the loop.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}
			return runEngine(cmd.Context(), rc, cfg)
		},
	}
	return cmd
}

func runEngine(parent context.Context, rc *RootConfig, cfg *config.Config) error {
	log := rc.Logger

	j, _, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	ks, err := risk.NewKillSwitch(cfg.Risk.KillSwitchLockFile, log)
	if err != nil {
		return err
	}
	if ks.IsActive() {
		st := ks.Status()
		log.Error().Str("reason", st.Reason).Time("since", st.ActivatedAt).
			Msg("kill switch is active; run `riskcore reset` before trading")
	}

	var sink alert.Sink = alert.Nop{}
	if cfg.Alert.WebhookURL != "" {
		sink = alert.NewWebhook(cfg.Alert.WebhookURL, log)
	}

	pf := portfolio.NewManager(j, log)
	mon := risk.NewMonitor(risk.Limits{
		MaxDailyLoss:    cfg.Risk.MaxDailyLoss,
		MaxOrderRate:    cfg.Risk.MaxOrderRate,
		MaxPositionSize: cfg.Risk.MaxPositionSize,
	}, ks, pf, nil, sink, log)

	gw := sim.NewEngine(log)
	defer gw.Close()

	eng := engine.New(engine.Config{
		Symbol:      cfg.Trading.Symbol,
		OrderVolume: cfg.Trading.OrderVolume,
	}, mon, pf, gw, log)

	if cfg.Monitoring.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.Handler())
		srv := &http.Server{Addr: cfg.Monitoring.MetricsAddr, Handler: mux}
		go func() {
			log.Info().Str("addr", cfg.Monitoring.MetricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("metrics server failed")
			}
		}()
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_ = j.RecordEvent(journal.EventRecord{
		Time: time.Now().UTC(), Kind: "ENGINE_START", Detail: cfg.Trading.Symbol,
	})

	signals := make(chan market.Signal)
	ticks := make(chan market.Tick)
	go feedSimulation(ctx, cfg, gw, signals, ticks)

	runErr := eng.Run(ctx, signals, ticks)
	if runErr == context.Canceled {
		runErr = nil
	}

	// Persist the violation history for post-mortems.
	for _, v := range mon.Violations() {
		_ = j.RecordEvent(journal.EventRecord{
			Time: v.Time, Kind: string(v.Type), Detail: v.Message,
		})
	}
	_ = j.RecordEvent(journal.EventRecord{
		Time: time.Now().UTC(), Kind: "ENGINE_STOP",
		Detail: fmt.Sprintf("daily_pnl=%.2f", pf.DailyPnL()),
	})

	summary := pf.PositionSummary(cfg.Trading.Symbol, lastMid(gw, cfg))
	log.Info().
		Str("status", string(summary.Status)).
		Str("direction", summary.Direction).
		Float64("net_volume", summary.NetVolume).
		Float64("daily_pnl", pf.DailyPnL()).
		Msg("engine stopped")

	return runErr
}

// feedSimulation pushes the scripted quotes and signals from the
// config into the engine, then closes the signal channel so the run
// finishes on its own.
func feedSimulation(
	ctx context.Context,
	cfg *config.Config,
	gw *sim.Engine,
	signals chan<- market.Signal,
	ticks chan<- market.Tick,
) {
	defer close(signals)

	send := func(t market.Tick) bool {
		gw.Ticks().Set(t)
		select {
		case ticks <- t:
			return true
		case <-ctx.Done():
			return false
		}
	}

	now := time.Now()
	if !send(market.Tick{
		Symbol: cfg.Trading.Symbol,
		Bid:    cfg.Simulation.InitialBid,
		Ask:    cfg.Simulation.InitialAsk,
		Time:   now,
	}) {
		return
	}

	for _, step := range cfg.Simulation.Steps {
		if d, _ := step.ParseDelay(); d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return
			}
		}

		if step.Bid > 0 && step.Ask > 0 {
			if !send(market.Tick{Symbol: cfg.Trading.Symbol, Bid: step.Bid, Ask: step.Ask, Time: time.Now()}) {
				return
			}
		}

		if dir, ok := parseDirection(step.Signal); ok {
			select {
			case signals <- market.Signal{Symbol: cfg.Trading.Symbol, Direction: dir}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func parseDirection(s string) (market.Direction, bool) {
	switch strings.ToUpper(s) {
	case "BUY":
		return market.Buy, true
	case "SELL":
		return market.Sell, true
	case "HOLD":
		return market.Hold, true
	default:
		return market.Hold, false
	}
}

func lastMid(gw *sim.Engine, cfg *config.Config) float64 {
	if t, err := gw.Ticks().Get(cfg.Trading.Symbol); err == nil {
		return t.Mid()
	}
	return cfg.Simulation.InitialBid
}
