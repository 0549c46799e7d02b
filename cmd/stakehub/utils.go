// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/kr8tiv/staking/co"
	"github.com/kr8tiv/staking/config"
	"github.com/kr8tiv/staking/kr8tiv"
	"github.com/kr8tiv/staking/log"
	"github.com/kr8tiv/staking/metrics"
)

func fatal(args ...interface{}) {
	fmt.Fprint(os.Stderr, "Fatal: ")
	fmt.Fprintln(os.Stderr, args...)
	os.Exit(1)
}

func initLogger(ctx *cli.Context) *slog.LevelVar {
	logLevel := log.FromLegacyLevel(ctx.Int(verbosityFlag.Name))
	var level slog.LevelVar
	level.Set(logLevel)

	var handler slog.Handler
	switch {
	case ctx.Bool(jsonLogsFlag.Name):
		handler = log.JSONHandlerWithLevel(os.Stderr, &level)
	case isatty.IsTerminal(os.Stderr.Fd()):
		handler = log.NewTerminalHandlerWithLevel(os.Stderr, &level)
	default:
		handler = log.LogfmtHandlerWithLevel(os.Stderr, &level)
	}
	log.SetDefault(log.NewLogger(handler))
	return &level
}

func kr8tivAddress(raw, field string) (kr8tiv.Address, error) {
	if raw == "" {
		return kr8tiv.Address{}, errors.Errorf("config field '%v' is required", field)
	}
	addr, err := kr8tiv.ParseAddress(raw)
	if err != nil {
		return kr8tiv.Address{}, errors.Wrapf(err, "config field '%v'", field)
	}
	return *addr, nil
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx.String(configFlag.Name))
	if err != nil {
		return nil, err
	}
	if dir := ctx.String(dataDirFlag.Name); dir != "" {
		cfg.DataDir = dir
	}
	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		cfg.AdminAddr = addr
	}
	if addr := ctx.String(metricsAddrFlag.Name); addr != "" {
		cfg.MetricsAddr = addr
	}
	return cfg, nil
}

// handleExitSignal returns a context cancelled on SIGINT or SIGTERM.
func handleExitSignal() context.Context {
	exitSignalCtx, cancel := context.WithCancel(context.Background())
	go func() {
		exitSignalCh := make(chan os.Signal, 1)
		signal.Notify(exitSignalCh, os.Interrupt, syscall.SIGTERM)

		sig := <-exitSignalCh
		log.Info("exit signal received", "signal", sig)
		cancel()
	}()
	return exitSignalCtx
}

func startMetricsServer(addr string) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen metrics API addr [%v]", addr)
	}

	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	handler := handlers.CompressHandler(router)

	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/metrics", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
