// Copyright (c) 2025 The KR8TIV Staking developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// stakehub hosts a staking pool: it keeps the pool records in a local
// database and serves the admin and metrics APIs.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/kr8tiv/staking/admin"
	"github.com/kr8tiv/staking/config"
	"github.com/kr8tiv/staking/engine"
	"github.com/kr8tiv/staking/eventdb"
	"github.com/kr8tiv/staking/ledger"
	"github.com/kr8tiv/staking/log"
	"github.com/kr8tiv/staking/lvldb"
	"github.com/kr8tiv/staking/metrics"
	"github.com/kr8tiv/staking/stakepool"
	"github.com/kr8tiv/staking/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "stakehub",
		Usage:     "KR8TIV staking pool host",
		Copyright: "2025 The KR8TIV Staking developers",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			adminAddrFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: runAction,
		Commands: []cli.Command{
			{
				Name:  "init",
				Usage: "initialize the pool records from the configuration",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: initAction,
			},
			{
				Name:  "status",
				Usage: "print the pool status snapshot",
				Flags: []cli.Flag{
					configFlag,
					dataDirFlag,
					verbosityFlag,
					jsonLogsFlag,
				},
				Action: statusAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openEngine(cfg *config.Config) (*engine.Engine, func(), error) {
	pool, err := kr8tivAddress(cfg.PoolAddress, "poolAddress")
	if err != nil {
		return nil, nil, err
	}
	stakeVault, err := kr8tivAddress(cfg.StakeVault, "stakeVault")
	if err != nil {
		return nil, nil, err
	}
	rewardVault, err := kr8tivAddress(cfg.RewardVault, "rewardVault")
	if err != nil {
		return nil, nil, err
	}

	db, err := lvldb.New(cfg.DataDir, lvldb.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("open record store at '%v': %w", cfg.DataDir, err)
	}

	var events *eventdb.EventDB
	if cfg.EventDBPath != "" {
		events, err = eventdb.New(cfg.EventDBPath)
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("open event store at '%v': %w", cfg.EventDBPath, err)
		}
	}

	eng := engine.New(state.New(db), ledger.NewMem(), events, engine.SystemClock(), engine.Options{
		PoolAddress: pool,
		StakeVault:  stakeVault,
		RewardVault: rewardVault,
	})
	closer := func() {
		if events != nil {
			events.Close()
		}
		db.Close()
	}
	return eng, closer, nil
}

func initAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	eng, closer, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer closer()

	authority, err := kr8tivAddress(cfg.Authority, "authority")
	if err != nil {
		return err
	}
	emergencyAdmins, err := config.Addresses(cfg.EmergencyAdmins)
	if err != nil {
		return err
	}
	criticalAdmins, err := config.Addresses(cfg.CriticalAdmins)
	if err != nil {
		return err
	}

	if err := eng.Initialize(authority, cfg.Rate(), emergencyAdmins, criticalAdmins, cfg.RequiredApprovals); err != nil {
		return err
	}
	log.Info("pool initialized",
		"dataDir", cfg.DataDir,
		"authority", authority,
		"rate", cfg.RewardRate,
	)
	return nil
}

func statusAction(ctx *cli.Context) error {
	initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	eng, closer, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer closer()

	status, err := poolStatus(eng.Pool())
	if err != nil {
		return err
	}
	buf, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func runAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	eng, closer, err := openEngine(cfg)
	if err != nil {
		return err
	}
	defer closer()

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
		url, closeFunc, err := startMetricsServer(cfg.MetricsAddr)
		if err != nil {
			return fmt.Errorf("unable to start metrics server - %w", err)
		}
		log.Info("metrics server started", "url", url)
		defer closeFunc()
	}

	adminURL, closeFunc, err := admin.StartServer(cfg.AdminAddr, logLevel, func() (*admin.PoolStatus, error) {
		return poolStatus(eng.Pool())
	})
	if err != nil {
		return fmt.Errorf("unable to start admin server - %w", err)
	}
	log.Info("admin server started", "url", adminURL)
	defer closeFunc()

	printStartupMessage(cfg, adminURL)

	<-handleExitSignal().Done()
	return nil
}

func poolStatus(pool *stakepool.StakePool) (*admin.PoolStatus, error) {
	totalStaked, totalWeight, err := pool.Totals()
	if err != nil {
		return nil, err
	}
	pendingDistribution, err := pool.PendingDistribution()
	if err != nil {
		return nil, err
	}
	rate, err := pool.RewardRate()
	if err != nil {
		return nil, err
	}
	deposited, err := pool.RewardsDeposited()
	if err != nil {
		return nil, err
	}
	level, err := pool.EmergencyLevel()
	if err != nil {
		return nil, err
	}
	paused, err := pool.Paused()
	if err != nil {
		return nil, err
	}
	return &admin.PoolStatus{
		TotalStaked:         totalStaked.String(),
		TotalWeight:         totalWeight.String(),
		PendingDistribution: pendingDistribution.String(),
		RewardRate:          rate.String(),
		RewardsDeposited:    deposited.String(),
		EmergencyLevel:      level.String(),
		Paused:              paused,
	}, nil
}

func printStartupMessage(cfg *config.Config, adminURL string) {
	fmt.Printf(`Starting %v
    Version     %v
    Data dir    [%v]
    Admin API   [%v]
`,
		"stakehub",
		fullVersion(),
		cfg.DataDir,
		adminURL,
	)
}
