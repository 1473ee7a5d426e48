package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/controllers"
	"github.com/zsmartex/powermatch/jobs/cron"
	"github.com/zsmartex/powermatch/matching"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/routes"
	"github.com/zsmartex/powermatch/server"
	"github.com/zsmartex/powermatch/settlement"
	"github.com/zsmartex/powermatch/workers"
	"github.com/zsmartex/powermatch/workers/daemons"
	"github.com/zsmartex/powermatch/workers/engines"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	defer config.InfluxDB.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewGormRepository(config.DataBase)

	matchingEngine := matching.NewEngine(store, config.Plan, matching.WithPointWriter(config.InfluxDB))
	settlementEngine := settlement.NewEngine(store, config.Plan, settlement.WithPointWriter(config.InfluxDB))

	queue := workers.NewQueue()
	queue.Register(engines.MatchingJobKind, engines.NewMatchingWorker(matchingEngine))
	queue.Register(engines.SettlementJobKind, engines.NewSettlementWorker(settlementEngine))

	cronJob := daemons.NewCronJob(cron.NewSettlementJob(queue, config.Plan, nil))
	app := routes.SetupRouter(controllers.NewMatchingController(queue, store))
	health := server.NewEngineServer(queue)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		queue.Run(ctx)
		return nil
	})

	g.Go(func() error {
		cronJob.Start()
		return nil
	})

	g.Go(func() error {
		return app.Listen(fmt.Sprintf(":%s", config.GetEnv("API_PORT", "3000")))
	})

	g.Go(func() error {
		return health.Serve(ctx, fmt.Sprintf(":%s", config.GetEnv("ENGINE_PORT", "9090")))
	})

	g.Go(func() error {
		<-ctx.Done()
		config.Logger.Info("Shutting down powermatch engine")

		cronJob.Stop()
		return app.Shutdown()
	})

	if err := g.Wait(); err != nil {
		config.Logger.Errorf("powermatch engine stopped: %v", err)
		os.Exit(1)
	}
}
