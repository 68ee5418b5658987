package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"binance-cli/internal/command"
	"binance-cli/internal/config"
	"binance-cli/internal/exchange/binance"
	"binance-cli/internal/venue"
)

func main() {
	// A .env next to the binary is a convenience, not a requirement.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if os.Getenv("BINANCE_CLI_DEBUG") != "" {
		log.SetLevel(logrus.DebugLevel)
	}

	cfg, err := loadConfig()
	if err != nil {
		fatal(err.Error())
	}

	printer := command.NewPrinter(os.Stdout)
	clients := make(map[venue.ID]*binance.Client, 3)
	for _, d := range venue.Table() {
		settings := venue.Materialize(d, fileVenue(cfg, d.ID))
		clients[d.ID] = binance.NewClient(settings, binance.Options{Log: log})
	}

	app := command.NewApp(command.Params{
		Printer:   printer,
		Spot:      clients[venue.Spot],
		UMFutures: clients[venue.UMFutures],
		CMFutures: clients[venue.CMFutures],
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fatal(err.Error())
	}
}

func loadConfig() (config.Config, error) {
	if path := os.Getenv(config.EnvPath); path != "" {
		return config.Load(path)
	}
	return config.LoadOptional(config.DefaultPath())
}

func fileVenue(cfg config.Config, id venue.ID) config.Venue {
	switch id {
	case venue.UMFutures:
		return cfg.UMFutures
	case venue.CMFutures:
		return cfg.CMFutures
	default:
		return cfg.Spot
	}
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(1)
}
