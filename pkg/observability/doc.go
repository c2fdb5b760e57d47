/*
Package observability turns console hooks into Prometheus metrics and structured logs.

Both helpers return domain.ConsoleHooks, so they compose with each other and with
session hooks through ConsoleHooks.Merge.
*/
package observability
