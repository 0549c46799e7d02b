// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package admin serves the runtime admin API: log verbosity control,
// health and a pool status snapshot.
package admin

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/kr8tiv/staking/co"
)

// PoolStatus is the snapshot returned by the status endpoint.
type PoolStatus struct {
	TotalStaked         string `json:"totalStaked"`
	TotalWeight         string `json:"totalWeight"`
	PendingDistribution string `json:"pendingDistribution"`
	RewardRate          string `json:"rewardRate"`
	RewardsDeposited    string `json:"rewardsDeposited"`
	EmergencyLevel      string `json:"emergencyLevel"`
	Paused              bool   `json:"paused"`
}

// StatusProvider supplies the current pool snapshot.
type StatusProvider func() (*PoolStatus, error)

func logLevelHandler(logLevel *slog.LevelVar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getLogLevelHandler(logLevel).ServeHTTP(w, r)
		case http.MethodPost:
			postLogLevelHandler(logLevel).ServeHTTP(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
	}
}

func HTTPHandler(logLevel *slog.LevelVar, status StatusProvider) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/admin/loglevel", logLevelHandler(logLevel))
	router.HandleFunc("/admin/health", healthHandler())
	if status != nil {
		router.HandleFunc("/admin/status", statusHandler(status))
	}
	return handlers.CompressHandler(router)
}

// StartServer serves the admin API on addr. It returns the base URL and a
// close function.
func StartServer(addr string, logLevel *slog.LevelVar, status StatusProvider) (string, func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, errors.Wrapf(err, "listen admin API addr [%v]", addr)
	}

	srv := &http.Server{
		Handler:           HTTPHandler(logLevel, status),
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
	}
	var goes co.Goes
	goes.Go(func() {
		srv.Serve(listener)
	})
	return "http://" + listener.Addr().String() + "/admin", func() {
		srv.Close()
		goes.Wait()
	}, nil
}
