package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/taller-finder/internal/cli"
	"github.com/ukydev/taller-finder/internal/geocode"
	"github.com/ukydev/taller-finder/internal/logging"
	"github.com/ukydev/taller-finder/internal/places"
	"github.com/ukydev/taller-finder/internal/proximity"
)

var version = "dev"

const requestTimeout = 15 * time.Second

func main() {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logging.Setup(level, "text")
	log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpClient := &http.Client{Timeout: requestTimeout}
	deps := cli.Dependencies{
		NewSearcher: func(apiURL string) proximity.PlaceSearcher {
			return places.NewProxyClient(apiURL, httpClient)
		},
		Geocoder:   geocode.NewClient(os.Getenv("GEOCODER_BASE_URL"), requestTimeout),
		HTTPClient: httpClient,
		Version:    version,
	}

	os.Exit(cli.Execute(ctx, os.Args[1:], deps, os.Stdout, os.Stderr))
}
