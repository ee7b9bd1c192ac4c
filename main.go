// ════════════════════════════════════════════════════════════════════════════════════════════════
// MEV Ingestion Node - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Opportunity Extraction Hot Path
// Component: Main Entry Point & System Orchestration
//
// Description:
//   Phased startup: configuration → pools and queue → engine → exposure.
//   The mempool feed and the relay transport are external collaborators;
//   this binary owns everything between raw calldata in and bundle bytes
//   out. The replay subcommand drives the same pipeline from a capture
//   file for offline runs.
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mevcore/bufpool"
	"mevcore/config"
	"mevcore/constants"
	"mevcore/journal"
	"mevcore/keccak"
	"mevcore/metrics"
	"mevcore/mpsc"
	"mevcore/pipeline"
	"mevcore/relay"
)

func main() {
	root := &cobra.Command{
		Use:          "mevcore",
		Short:        "latency-critical mempool ingestion and bundle encoding",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file path")
	root.PersistentFlags().Int("queue-capacity", constants.DefaultQueueCapacity, "opportunity queue capacity (rounded up to a power of two)")
	root.PersistentFlags().Int("result-blocks", constants.ResultBlockCount, "result pool block count")
	root.PersistentFlags().Int("tx-blocks", constants.TxBlockCount, "transaction pool block count")
	root.PersistentFlags().Int("calldata-blocks", constants.CalldataBlockCount, "calldata pool block count")
	root.PersistentFlags().String("journal", "", "sqlite opportunity journal path (empty disables)")
	root.PersistentFlags().String("metrics-listen", "", "prometheus listen address (empty disables)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion engine until interrupted",
		RunE:  runNode,
	}
	root.AddCommand(runCmd)

	replayCmd := &cobra.Command{
		Use:   "replay [capture-file]",
		Short: "Feed captured calldata (hex, one per line) through the pipeline",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runReplay,
	}
	root.AddCommand(replayCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// node bundles everything runNode and runReplay share.
type node struct {
	cfg    config.Config
	log    *zap.Logger
	pools  *bufpool.Set
	queue  *mpsc.Queue
	engine *pipeline.Engine
	jnl    *journal.Journal
}

func buildNode(cmd *cobra.Command) (*node, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logCfg := zap.NewProductionConfig()
	if err := logCfg.Level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", cfg.LogLevel, err)
	}
	log, err := logCfg.Build()
	if err != nil {
		return nil, err
	}

	pools := bufpool.NewSet(bufpool.SetConfig{
		ResultBlocks:   cfg.ResultBlocks,
		TxBlocks:       cfg.TxBlocks,
		CalldataBlocks: cfg.CalldataBlocks,
	})
	queue := mpsc.New(cfg.QueueCapacity)

	var jnl *journal.Journal
	if cfg.JournalPath != "" {
		jnl, err = journal.Open(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
	}

	engine := pipeline.New(pipeline.Config{
		Journal: jnl,
		Logger:  log,
	}, pools, queue, &relaySubmitter{log: log})

	return &node{cfg: cfg, log: log, pools: pools, queue: queue, engine: engine, jnl: jnl}, nil
}

func (n *node) close() {
	if n.jnl != nil {
		if err := n.jnl.Close(); err != nil {
			n.log.Warn("journal close", zap.Error(err))
		}
	}
	_ = n.log.Sync()
}

// relaySubmitter is the handoff point to the external relay transport:
// it shapes the eth_sendBundle body and logs where the network layer
// would post it.
type relaySubmitter struct {
	log *zap.Logger
	seq atomic.Uint64
}

func (s *relaySubmitter) Submit(payload []byte) error {
	bundle := relay.WrapPayload(payload, 0)
	body, err := relay.BuildSendBundleBody(s.seq.Add(1), bundle)
	if err != nil {
		return err
	}
	fp := keccak.Sum256(payload)
	s.log.Info("bundle ready for relay",
		zap.Int("body_bytes", len(body)),
		zap.String("fingerprint", hex.EncodeToString(fp[:8])))
	return nil
}

func runNode(cmd *cobra.Command, _ []string) error {
	n, err := buildNode(cmd)
	if err != nil {
		return err
	}
	defer n.close()

	// PHASE 1: exposure. Metrics are scrape-time samplers over the
	// lock-free counters, so serving them costs the hot path nothing.
	var metricsSrv *http.Server
	if n.cfg.MetricsListen != "" {
		reg := metrics.NewRegistry(metrics.NewCollector(n.pools, n.queue, n.engine.Counters))
		metricsSrv = &http.Server{
			Addr:    n.cfg.MetricsListen,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				n.log.Error("metrics server", zap.Error(err))
			}
		}()
		n.log.Info("metrics listening", zap.String("addr", n.cfg.MetricsListen))
	}

	// PHASE 2: consume. The mempool feed collaborator attaches to
	// engine.Ingest from its own threads.
	n.engine.Start()
	n.log.Info("engine running",
		zap.Int("queue_capacity", n.queue.Capacity()),
		zap.Int("result_blocks", n.cfg.ResultBlocks))

	// PHASE 3: wait for shutdown. Feed stops first, then the consumer
	// drains, then resources go away — in that order.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	n.log.Info("shutting down")
	n.engine.Stop()
	if metricsSrv != nil {
		_ = metricsSrv.Close()
	}
	return nil
}

func runReplay(cmd *cobra.Command, args []string) error {
	n, err := buildNode(cmd)
	if err != nil {
		return err
	}
	defer n.close()

	in := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	n.engine.Start()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		calldata, err := hex.DecodeString(strings.TrimPrefix(text, "0x"))
		if err != nil {
			n.log.Warn("skipping undecodable line", zap.Int("line", line), zap.Error(err))
			continue
		}
		// Replay has no real tx hashes; fingerprint the calldata instead.
		n.engine.Ingest(keccak.Sum256(calldata), calldata)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	n.engine.Stop()

	c := n.engine.Counters()
	n.log.Info("replay complete",
		zap.Int("lines", line),
		zap.Uint64("detected", c.Detected),
		zap.Uint64("submitted", c.Submitted),
		zap.Uint64("not_a_swap", c.NotASwap),
		zap.Uint64("malformed", c.Malformed),
		zap.Uint64("dropped", c.Dropped))
	return nil
}
