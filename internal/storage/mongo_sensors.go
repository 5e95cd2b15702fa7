package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func (m *Mongo) sensorsCol() *mongo.Collection { return m.db.Collection(colSensors) }

func (m *Mongo) GetSensor(ctx context.Context, id, userID string) (*entities.Sensor, error) {
	var s entities.Sensor
	err := m.sensorsCol().FindOne(ctx, userScope(id, userID)).Decode(&s)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (m *Mongo) ListSensors(ctx context.Context, userID string) ([]entities.Sensor, error) {
	cur, err := m.sensorsCol().Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]entities.Sensor, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (m *Mongo) CreateSensor(ctx context.Context, s *entities.Sensor) error {
	_, err := m.sensorsCol().InsertOne(ctx, s)
	return mapErr(err)
}

func (m *Mongo) UpdateSensor(ctx context.Context, id, userID string, patch model.SensorPatch) (*entities.Sensor, error) {
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
	if patch.BatteryLevel != nil {
		set["batteryLevel"] = *patch.BatteryLevel
	}
	if patch.Unit != nil {
		set["unit"] = *patch.Unit
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return m.GetSensor(ctx, id, userID)
	}

	var s entities.Sensor
	err := m.sensorsCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&s)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (m *Mongo) DeleteSensor(ctx context.Context, id, userID string) error {
	res, err := m.sensorsCol().DeleteOne(ctx, userScope(id, userID))
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) AppendReading(ctx context.Context, id, userID string, r entities.Reading, max int) (*entities.Sensor, error) {
	// $push with a negative $slice keeps the newest max readings, which is
	// exactly the FIFO eviction contract, in one atomic document update.
	update := bson.M{
		"$set": bson.M{
			"currentValue": r.Value,
			"lastReading":  r.Timestamp,
		},
		"$push": bson.M{"readings": bson.M{
			"$each":  []entities.Reading{r},
			"$slice": -max,
		}},
	}
	var s entities.Sensor
	err := m.sensorsCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&s)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (m *Mongo) SetSensorStatus(ctx context.Context, id, userID string, status entities.SensorStatus) (*entities.Sensor, error) {
	var s entities.Sensor
	err := m.sensorsCol().FindOneAndUpdate(ctx, userScope(id, userID),
		bson.M{"$set": bson.M{"status": status}}, afterUpdate).Decode(&s)
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}
