// Package venue describes the three Binance trading contexts the CLI talks
// to. Everything venue-specific that used to be copy-pasted per venue lives
// in one descriptor table: base URLs, REST path quirks, credential variables.
package venue

import (
	"os"

	"binance-cli/internal/config"
)

type ID string

const (
	Spot      ID = "spot"
	UMFutures ID = "um"
	CMFutures ID = "cm"
)

// Descriptor is the static shape of one venue.
type Descriptor struct {
	ID            ID
	Label         string
	CommandPrefix string

	PathPrefix    string // market/trade endpoints, e.g. /api/v3
	AccountPath   string
	CancelAllPath string
	HasAvgPrice   bool

	DefaultBaseURL   string
	DefaultStreamURL string

	KeyEnv       string
	SecretEnv    string
	BaseURLEnv   string
	StreamURLEnv string
}

// Table lists all supported venues. UM and CM futures share credential and
// base-URL variables; that mirrors the environment contract users already
// script against.
func Table() []Descriptor {
	return []Descriptor{
		{
			ID:               Spot,
			Label:            "spot",
			CommandPrefix:    "",
			PathPrefix:       "/api/v3",
			AccountPath:      "/api/v3/account",
			CancelAllPath:    "/api/v3/openOrders",
			HasAvgPrice:      true,
			DefaultBaseURL:   "https://api.binance.com",
			DefaultStreamURL: "wss://stream.binance.com:443",
			KeyEnv:           "BINANCE_API_KEY",
			SecretEnv:        "BINANCE_API_SECRET",
			BaseURLEnv:       "SERVER",
			StreamURLEnv:     "STREAM_SERVER",
		},
		{
			ID:               UMFutures,
			Label:            "UM futures",
			CommandPrefix:    "um_",
			PathPrefix:       "/fapi/v1",
			AccountPath:      "/fapi/v2/account",
			CancelAllPath:    "/fapi/v1/allOpenOrders",
			DefaultBaseURL:   "https://fapi.binance.com",
			DefaultStreamURL: "wss://fstream.binance.com",
			KeyEnv:           "BINANCE_FUTURES_API_KEY",
			SecretEnv:        "BINANCE_FUTURES_API_SECRET",
			BaseURLEnv:       "FUTURES_SERVER",
			StreamURLEnv:     "FUTURES_STREAM_SERVER",
		},
		{
			ID:               CMFutures,
			Label:            "CM futures",
			CommandPrefix:    "cm_",
			PathPrefix:       "/dapi/v1",
			AccountPath:      "/dapi/v1/account",
			CancelAllPath:    "/dapi/v1/allOpenOrders",
			DefaultBaseURL:   "https://dapi.binance.com",
			DefaultStreamURL: "wss://dstream.binance.com",
			KeyEnv:           "BINANCE_FUTURES_API_KEY",
			SecretEnv:        "BINANCE_FUTURES_API_SECRET",
			BaseURLEnv:       "FUTURES_SERVER",
			StreamURLEnv:     "FUTURES_STREAM_SERVER",
		},
	}
}

// Settings is a descriptor resolved against the process environment and the
// optional config file. One Settings value backs one client for the whole
// process lifetime.
type Settings struct {
	Descriptor
	BaseURL     string
	StreamURL   string
	Credentials Credentials
}

// Materialize resolves one venue: environment variables win over the config
// file, the config file wins over built-in defaults.
func Materialize(d Descriptor, file config.Venue) Settings {
	return Settings{
		Descriptor: d,
		BaseURL:    firstNonEmpty(os.Getenv(d.BaseURLEnv), file.BaseURL, d.DefaultBaseURL),
		StreamURL:  firstNonEmpty(os.Getenv(d.StreamURLEnv), file.StreamURL, d.DefaultStreamURL),
		Credentials: Credentials{
			APIKey:    firstNonEmpty(os.Getenv(d.KeyEnv), file.APIKey),
			APISecret: firstNonEmpty(os.Getenv(d.SecretEnv), file.APISecret),
			KeyEnv:    d.KeyEnv,
			SecretEnv: d.SecretEnv,
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
