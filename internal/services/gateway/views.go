package gateway

import (
	"context"

	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

// zoneView is a zone with its device references resolved. Dangling
// references (a deleted sensor or pump still listed on the zone) are
// silently skipped rather than failing the read.
type zoneView struct {
	*entities.Zone
	Sensors []entities.Sensor `json:"sensors"`
	Pump    *entities.Pump    `json:"pump,omitempty"`
}

func (a *App) buildZoneView(ctx context.Context, zone *entities.Zone) *zoneView {
	view := &zoneView{Zone: zone, Sensors: make([]entities.Sensor, 0, len(zone.ConnectedSensors))}
	for _, sid := range zone.ConnectedSensors {
		sensor, err := a.devices.GetSensor(ctx, sid, zone.UserID)
		if err != nil {
			continue
		}
		view.Sensors = append(view.Sensors, *sensor)
	}
	if zone.ConnectedPump != "" {
		if pump, err := a.devices.GetPump(ctx, zone.ConnectedPump, zone.UserID); err == nil {
			view.Pump = pump
		}
	}
	return view
}
