// internal/writer/builder.go
package writer

import (
	"errors"
	"time"

	cfg "github.com/tamzrod/picapture/internal/config"
	wmodbus "github.com/tamzrod/picapture/internal/writer/modbus"
)

// Build constructs the status writer from config and wires the Modbus
// client lifecycle. It returns (nil, nil, nil) when status export is off.
// A connect failure at startup is returned so the caller can decide;
// the client reconnects lazily on later writes.
func Build(se cfg.StatusExportConfig) (StatusWriter, func() error, error) {
	if !se.Enabled {
		return nil, nil, nil
	}
	if se.Endpoint == "" {
		return nil, nil, errors.New("writer: status endpoint required")
	}

	client, connErr := wmodbus.NewEndpointClient(wmodbus.Config{
		Endpoint: se.Endpoint,
		Timeout:  time.Duration(se.TimeoutMs) * time.Millisecond,
	})
	if client == nil {
		return nil, nil, connErr
	}

	sw := NewStatusWriter(StatusPlan{
		Endpoint:   se.Endpoint,
		UnitID:     se.UnitID,
		BaseSlot:   se.BaseSlot,
		DeviceName: se.DeviceName,
	}, client)

	return sw, client.Close, connErr
}
