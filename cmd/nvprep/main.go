// Package main is the entry point for the nvprep binary. It loads the job
// config, optionally initializes a metrics backend, and executes the
// single-pass preparation run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"nvprep/internal/config"
	"nvprep/internal/job"
	"nvprep/internal/metrics"
	"nvprep/internal/metrics/prompush"

	// register all storage backends with the factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "nvprep/internal/storage/all"
)

func main() {
	var (
		cfgPath           string
		metricsBackendFlg string
		pushGatewayURLFlg string
		validate          bool
	)

	flag.StringVar(&cfgPath, "config", "configs/sample.json", "job config JSON path")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (pushgateway, none)")
	flag.StringVar(&pushGatewayURLFlg, "pushgateway-url", "", "Pushgateway base URL (overrides env PUSHGATEWAY_URL)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	f, err := os.Open(cfgPath)
	if err != nil {
		fatalf("open config: %v", err)
	}
	defer f.Close()

	var j config.Job
	if err := json.NewDecoder(f).Decode(&j); err != nil {
		fatalf("decode config: %v", err)
	}

	issues := config.Validate(j)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		log.Printf("Configuration is invalid: %v", cfgPath)
		os.Exit(1)
	}
	if validate {
		log.Printf("Configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "pushgateway":
		gwURL := pushGatewayURLFlg
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(j.Name, gwURL)
		if err != nil {
			log.Printf("metrics: failed to init prom push backend: %v; using nop", err)
		} else {
			log.Printf("metrics: url=%v, backend=%v, job_name=%v", gwURL, backendName, j.Name)
			metrics.SetBackend(b)
			defer func() {
				if err := metrics.Flush(); err != nil {
					log.Printf("metrics: flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		log.Printf("metrics: unknown backend %q; metrics disabled", backendName)
	}

	ctx := context.Background()

	if *verbose {
		log.Printf("job: name=%s supplier=%s period_days=%d window_start=%s storage=%s",
			j.Name, j.SupplierID, j.PeriodDays, j.WindowStart, j.Storage.Kind)
	}

	summary, err := job.Run(ctx, j)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("done: stores=%d catalog_items=%d demand_rows=%d exports=%d sink_rows=%d elapsed=%s",
		summary.Stores, summary.CatalogItems, summary.DemandRows,
		summary.ExportsWritten, summary.SinkRows,
		summary.Elapsed.Truncate(time.Millisecond))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
