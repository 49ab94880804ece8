// Package main hosts the jsonscraper entrypoint.
//
// Architecture overview:
//   - Options: internal/options parses the declarative options file in declared key order and validates it
//     before any network activity. Every URL referenced by any output is fetched exactly once.
//   - Fetch: internal/pipeline fans out one Colly request per distinct URL and waits behind an errgroup
//     barrier. The first failure (transport error or non-2xx status) cancels the requests still in flight.
//   - Extract: once every body is in, fields are resolved in declared order (raw slice, field path, or whole
//     body, with optional number coercion) into ordered output documents.
//   - Write: every document is written concurrently to the local sink and, when configured, mirrored to GCS.
//     The run is all-or-nothing at the process level; one error ends it with exit code 1.
//   - Plumbing: Viper loads settings from file and SCRAPER_* env vars; zap provides structured logging;
//     progress events flow through a non-blocking hub into log and Prometheus sinks; metrics may be pushed to a
//     Pushgateway and the run summary published to Pub/Sub. Under GitHub Actions the outcome is reported as
//     step outputs and an error annotation.
//
// Quick checklist:
//   - Run locally: go run ./cmd/jsonscraper run --options options.json
//   - Check an options file: go run ./cmd/jsonscraper validate --options options.json
//   - Settings: --config settings.yaml, or env vars such as SCRAPER_HTTP_TIMEOUT=10s,
//     SCRAPER_OUTPUT_BASE_DIR, SCRAPER_OUTPUT_GCS_BUCKET, SCRAPER_NOTIFY_PUBSUB_TOPIC,
//     SCRAPER_METRICS_PUSHGATEWAY_URL.
package main
