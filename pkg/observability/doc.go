/*
Package observability turns controller lifecycle hooks into Prometheus
metrics and structured log lines.

Hooks from several observers are combined with Chain and handed to the
controller through controller.WithLifecycleHooks.
*/
package observability
