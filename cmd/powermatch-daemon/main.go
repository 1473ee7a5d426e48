package main

import (
	"fmt"
	"os"

	"github.com/zsmartex/powermatch/config"
	"github.com/zsmartex/powermatch/repository"
	"github.com/zsmartex/powermatch/settlement"
	"github.com/zsmartex/powermatch/workers/daemons"
)

func CreateWorker(id string) daemons.Worker {
	switch id {
	case "settlement":
		store := repository.NewGormRepository(config.DataBase)
		return daemons.NewSettlement(settlement.NewEngine(store, config.Plan, settlement.WithPointWriter(config.InfluxDB)))
	default:
		return nil
	}
}

func main() {
	if err := config.InitializeConfig(); err != nil {
		fmt.Println(err.Error())
		return
	}
	defer config.InfluxDB.Close()

	ARVG := os.Args[1:]

	for _, id := range ARVG {
		fmt.Println("Start powermatch-daemon: " + id)
		worker := CreateWorker(id)
		if worker == nil {
			config.Logger.Errorf("Unknown daemon: %s", id)
			continue
		}

		worker.Start()
	}
}
