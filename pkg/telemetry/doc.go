// telemetry counts and times pipeline runs and the steps within them.
// Supported metrics includes:
// - rps(*_started_total)
// - success/skipped/error count(*_handled_total)
// - latency histogram(*_handling_seconds_bucket)
//
// Metrics are pushed to a Prometheus pushgateway at the end of a process, since
// pipeline steps are short-lived and cannot be scraped.
package telemetry
