package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func (m *Mongo) pumpsCol() *mongo.Collection { return m.db.Collection(colPumps) }

func (m *Mongo) GetPump(ctx context.Context, id, userID string) (*entities.Pump, error) {
	var p entities.Pump
	err := m.pumpsCol().FindOne(ctx, userScope(id, userID)).Decode(&p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (m *Mongo) ListPumps(ctx context.Context, userID string) ([]entities.Pump, error) {
	cur, err := m.pumpsCol().Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]entities.Pump, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (m *Mongo) CreatePump(ctx context.Context, p *entities.Pump) error {
	_, err := m.pumpsCol().InsertOne(ctx, p)
	return mapErr(err)
}

func (m *Mongo) UpdatePump(ctx context.Context, id, userID string, patch model.PumpPatch) (*entities.Pump, error) {
	set := bson.M{}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.ZoneID != nil {
		if *patch.ZoneID == "" {
			unset["zoneId"] = ""
		} else {
			set["zoneId"] = *patch.ZoneID
		}
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.FlowRate != nil {
		set["flowRate"] = *patch.FlowRate
	}
	if patch.Pressure != nil {
		set["pressure"] = *patch.Pressure
	}
	if patch.Energy != nil {
		usageSet(set, "energyConsumption", *patch.Energy)
	}
	if patch.Water != nil {
		usageSet(set, "waterOutput", *patch.Water)
	}
	if patch.OperatingHours != nil {
		set["operatingHours"] = *patch.OperatingHours
	}
	if patch.LastMaintenance != nil {
		set["lastMaintenance"] = *patch.LastMaintenance
	}
	if patch.NextMaintenance != nil {
		set["nextMaintenance"] = *patch.NextMaintenance
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return m.GetPump(ctx, id, userID)
	}

	var p entities.Pump
	err := m.pumpsCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&p)
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (m *Mongo) DeletePump(ctx context.Context, id, userID string) error {
	res, err := m.pumpsCol().DeleteOne(ctx, userScope(id, userID))
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func usageSet(set bson.M, prefix string, p model.UsagePatch) {
	if p.Current != nil {
		set[prefix+".current"] = *p.Current
	}
	if p.Today != nil {
		set[prefix+".today"] = *p.Today
	}
	if p.Week != nil {
		set[prefix+".week"] = *p.Week
	}
	if p.Month != nil {
		set[prefix+".month"] = *p.Month
	}
}
