package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/abderrahmenzaway/wie-empower/internal/model"
	"github.com/abderrahmenzaway/wie-empower/internal/model/entities"
)

func (m *Mongo) zonesCol() *mongo.Collection { return m.db.Collection(colZones) }

func (m *Mongo) GetZone(ctx context.Context, id, userID string) (*entities.Zone, error) {
	var z entities.Zone
	err := m.zonesCol().FindOne(ctx, userScope(id, userID)).Decode(&z)
	if err != nil {
		return nil, mapErr(err)
	}
	return &z, nil
}

func (m *Mongo) ListZones(ctx context.Context, userID string) ([]entities.Zone, error) {
	cur, err := m.zonesCol().Find(ctx, bson.M{"userId": userID})
	if err != nil {
		return nil, mapErr(err)
	}
	out := make([]entities.Zone, 0)
	if err := cur.All(ctx, &out); err != nil {
		return nil, mapErr(err)
	}
	return out, nil
}

func (m *Mongo) CreateZone(ctx context.Context, z *entities.Zone) error {
	_, err := m.zonesCol().InsertOne(ctx, z)
	return mapErr(err)
}

func (m *Mongo) UpdateZone(ctx context.Context, id, userID string, patch model.ZonePatch) (*entities.Zone, error) {
	set := bson.M{}
	unset := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.MoistureThreshold != nil {
		set["moistureThreshold"] = *patch.MoistureThreshold
	}
	if patch.PlantType != nil {
		set["plantType"] = *patch.PlantType
	}
	if patch.WateringMode != nil {
		set["wateringMode"] = *patch.WateringMode
	}
	if patch.ManualOverride != nil {
		set["wateringStatus.manualOverride"] = *patch.ManualOverride
	}
	if patch.PredictedSchedule != nil {
		set["predictedSchedule"] = *patch.PredictedSchedule
	}
	if patch.ConnectedSensors != nil {
		set["connectedSensors"] = *patch.ConnectedSensors
	}
	if patch.ConnectedPump != nil {
		if *patch.ConnectedPump == "" {
			unset["connectedPump"] = ""
		} else {
			set["connectedPump"] = *patch.ConnectedPump
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	if len(update) == 0 {
		return m.GetZone(ctx, id, userID)
	}

	var z entities.Zone
	err := m.zonesCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&z)
	if err != nil {
		return nil, mapErr(err)
	}
	return &z, nil
}

func (m *Mongo) DeleteZone(ctx context.Context, id, userID string) error {
	res, err := m.zonesCol().DeleteOne(ctx, userScope(id, userID))
	if err != nil {
		return mapErr(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) SetWateringState(ctx context.Context, id, userID string, expectRunning bool, ws entities.WateringStatus, status entities.ZoneStatus) (*entities.Zone, error) {
	filter := bson.M{
		"_id":                      id,
		"userId":                   userID,
		"wateringStatus.isRunning": expectRunning,
	}
	var z entities.Zone
	err := m.zonesCol().FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{
		"wateringStatus": ws,
		"status":         status,
	}}, afterUpdate).Decode(&z)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// The CAS filter hides whether the zone is missing or merely moved.
		if _, gerr := m.GetZone(ctx, id, userID); gerr != nil {
			return nil, gerr
		}
		return nil, ErrConflict
	}
	if err != nil {
		return nil, mapErr(err)
	}
	return &z, nil
}

func (m *Mongo) RecordMoisture(ctx context.Context, id, userID string, level float64, p entities.HumidityPoint, maxHistory int) (*entities.Zone, error) {
	update := bson.M{
		"$set": bson.M{"moistureLevel": level},
		"$push": bson.M{"humidityHistory": bson.M{
			"$each":  []entities.HumidityPoint{p},
			"$slice": -maxHistory,
		}},
	}
	var z entities.Zone
	err := m.zonesCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&z)
	if err != nil {
		return nil, mapErr(err)
	}
	return &z, nil
}

func (m *Mongo) AppendWateringRecord(ctx context.Context, id, userID string, rec entities.WateringRecord, maxHistory int) (*entities.Zone, error) {
	update := bson.M{
		"$push": bson.M{"wateringHistory": bson.M{
			"$each":  []entities.WateringRecord{rec},
			"$slice": -maxHistory,
		}},
	}
	var z entities.Zone
	err := m.zonesCol().FindOneAndUpdate(ctx, userScope(id, userID), update, afterUpdate).Decode(&z)
	if err != nil {
		return nil, mapErr(err)
	}
	return &z, nil
}
