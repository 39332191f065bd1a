// Command controller is the host-side entry point: it loads configuration,
// wires the bus and every host task together through hostapp.App, and runs
// until SIGINT/SIGTERM.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Ymit24/too-hot-to-prandtl-control-system/bus"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/config"
	"github.com/Ymit24/too-hot-to-prandtl-control-system/hostapp"
)

func main() {
	configPath := flag.String("config", "/etc/prandtl/controller.yaml", "Path to config file")
	flag.Parse()

	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.Println("[main] prandtl controller starting")

	cfg := config.Load(*configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("[main] received %v, shutting down", sig)
		cancel()
	}()

	probe, err := hostapp.NewSysfsTempProbe()
	if err != nil {
		log.Fatalf("[main] no CPU temperature sensor available: %v", err)
	}

	app := &hostapp.App{
		Bus:              bus.NewBus(32),
		TempProbe:        probe,
		Fuser:            cfg.BuildControlFuser(),
		Serial:           cfg.Serial.DeviceMatch(),
		TempPollInterval: time.Duration(cfg.Tasks.HostTempPollMS) * time.Millisecond,
	}

	app.Run(ctx)
	log.Println("[main] controller stopped")
}
