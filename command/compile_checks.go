package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[ResolveOrderMessage]   = (*ResolveOrderCommand)(nil)
	_ gocmd.Commander[FlushTelemetryMessage] = (*FlushTelemetryCommand)(nil)
)
