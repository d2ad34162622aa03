package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mezonai/decash/events"
	"github.com/mezonai/decash/exception"
	"github.com/mezonai/decash/jsonx"
	"github.com/mezonai/decash/logx"
	"github.com/mezonai/decash/monitoring"
	"github.com/mezonai/decash/stringutil"
	"github.com/mezonai/decash/vm"
	"github.com/spf13/cobra"
)

const maxReplayLineSize = 4 * 1024 * 1024

type ReplayConfig struct {
	File          string
	StopOnFailure bool
	ServeMetrics  bool
	LogEvents     bool
}

var replayConfig ReplayConfig

var replayCmd = &cobra.Command{
	Use:   "replay [flags]",
	Short: "Execute a file of transactions in order",
	Long: `This command reads one JSON transaction per line and executes them in file order,
printing one receipt per line. Blank lines and lines starting with '#' are skipped.

Each transaction has the form:
  {"signer":"alice","actions":[{"method":"append_memo","args":{"memo_text":"coffee","price":"2.5"}}]}

With --metrics the prometheus endpoint stays up after the replay until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runReplay(ctx, replayConfig)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayConfig.File, "file", "f", "", "JSON-lines transaction file, '-' for stdin")
	replayCmd.Flags().BoolVar(&replayConfig.StopOnFailure, "stop-on-failure", false, "stop at the first failed transaction")
	replayCmd.Flags().BoolVar(&replayConfig.ServeMetrics, "metrics", false, "serve /metrics on the configured listen address")
	replayCmd.Flags().BoolVar(&replayConfig.LogEvents, "events", false, "log contract events")
	_ = replayCmd.MarkFlagRequired("file")
}

type replayStats struct {
	Committed int
	Failed    int
}

func runReplay(ctx context.Context, replayConfig ReplayConfig) error {
	bus := events.NewEventBus()
	rt, stores, nodeCfg, err := openRuntime(vm.WithEventBus(bus))
	if err != nil {
		return err
	}
	defer stores.Close()

	if replayConfig.LogEvents {
		id, ch := bus.Subscribe()
		defer bus.Unsubscribe(id)
		exception.SafeGo("EventLogger", func() {
			for event := range ch {
				logx.Info("EVENT", fmt.Sprintf("%s | receipt=%s", event.Type(), stringutil.ShortenLog(event.ReceiptHash())))
			}
		})
	}

	var server *http.Server
	if replayConfig.ServeMetrics {
		mux := http.NewServeMux()
		monitoring.RegisterMetrics(mux)
		server = &http.Server{Addr: nodeCfg.Metrics.ListenAddr, Handler: mux}
		exception.SafeGo("MetricsServer", func() {
			logx.Info("REPLAY", "Serving metrics on", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logx.Error("REPLAY", "Metrics server stopped:", err)
			}
		})
	}

	in := io.Reader(os.Stdin)
	if replayConfig.File != "-" {
		file, err := os.Open(replayConfig.File)
		if err != nil {
			return err
		}
		defer file.Close()
		in = file
	}

	stats, err := replayTransactions(ctx, rt, in, os.Stdout, replayConfig.StopOnFailure)
	logx.Info("REPLAY", fmt.Sprintf("Replay finished | committed=%d | failed=%d", stats.Committed, stats.Failed))
	if err != nil {
		return err
	}

	if server != nil {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
	return nil
}

// replayTransactions executes every transaction read from r and writes its receipt to w
func replayTransactions(ctx context.Context, rt *vm.Runtime, r io.Reader, w io.Writer, stopOnFailure bool) (replayStats, error) {
	var stats replayStats
	encoder := jsonx.NewEncoder(w)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxReplayLineSize)
	line := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		var tx vm.Transaction
		if err := jsonx.Unmarshal([]byte(text), &tx); err != nil {
			return stats, fmt.Errorf("line %d: invalid transaction: %w", line, err)
		}

		receipt, err := rt.Execute(ctx, &tx)
		if err != nil {
			stats.Failed++
			logx.Warn("REPLAY", fmt.Sprintf("Transaction failed | line=%d | error=%v", line, err))
		} else {
			stats.Committed++
		}
		if receipt != nil {
			if encErr := encoder.Encode(receipt); encErr != nil {
				return stats, encErr
			}
		}
		if err != nil && stopOnFailure {
			return stats, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}
