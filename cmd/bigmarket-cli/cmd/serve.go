package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radicleart/bigmarket-dao/api"
	"github.com/radicleart/bigmarket-dao/ledger"
	"github.com/radicleart/bigmarket-dao/market"
)

const defaultListenAddr = "127.0.0.1:9650"

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [scenario.toml]",
	Short: "Serves the read model of a ledger, optionally after running a scenario on it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}

		var l *ledger.Ledger
		if len(args) == 1 {
			l, err = runScenario(cmd, args[0])
			if err != nil {
				return err
			}
		} else {
			l = ledger.New(memdb.New(), market.NewDefault(log), log)
		}
		defer l.Close()

		addr := listenAddr
		if addr == "" {
			addr = os.Getenv("BIGMARKET_LISTEN_ADDR")
		}
		if addr == "" {
			addr = defaultListenAddr
		}
		srv := &http.Server{
			Addr:              addr,
			Handler:           api.NewServer(l, log).Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		log.Info("serving read model", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "listen address (overrides BIGMARKET_LISTEN_ADDR)")
}
