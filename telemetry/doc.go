// Package telemetry buffers order-received events and ships them to pluggable
// writers (logs, the SQL store, a job queue).
package telemetry
