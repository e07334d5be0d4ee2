package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xela07ax/emergency-console/internal/connectors"
	"github.com/xela07ax/emergency-console/internal/engine"
	"github.com/xela07ax/emergency-console/internal/infra"
)

var Version = "dev"

type rootFlags struct {
	configPath string
	mock       bool
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "console",
		Short: "Operator console for the unified emergency number",
		Long:  "Console polls the classification backend, aggregates call statistics and serves the operator dashboard API.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "path to config file (default: ./config.yaml or ./configs/config.yaml)")
	root.PersistentFlags().BoolVar(&flags.mock, "mock", false, "use the built-in simulated backend instead of HTTP")

	root.AddCommand(
		newServeCmd(flags),
		newSnapshotCmd(flags),
		newHistoryCmd(flags),
		newClassifyCmd(flags),
	)

	root.Version = Version
	root.SetVersionTemplate(fmt.Sprintf("console %s\n", Version))

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// deps — собранный слой исполнения, общий для всех команд
type deps struct {
	cfg      *infra.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *engine.Metrics
	client   *engine.StatsClient
}

func buildDeps(flags *rootFlags) (*deps, error) {
	// 1. Конфигурация и логгер
	cfg, err := infra.LoadConfig(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := infra.NewLogger(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// 2. Метрики
	reg := prometheus.NewRegistry()
	metrics := engine.NewMetrics(reg)

	// 3. Бэкенд, обернутый в Reliability (таймауты, Circuit Breaker, ретраи classify)
	var backend engine.Backend = connectors.NewHTTPBackend(cfg.Backend.BaseURL, &http.Client{})
	if flags.mock {
		logger.Warn("using simulated backend")
		backend = connectors.NewMockBackend()
	}
	safeBackend := engine.NewReliabilityWrapper(backend, cfg.Backend, metrics, logger)

	return &deps{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		metrics:  metrics,
		client:   engine.NewStatsClient(safeBackend, cfg.Backend.HistoryLimit, logger),
	}, nil
}
