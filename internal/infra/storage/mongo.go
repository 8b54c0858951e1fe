package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	domlvl "github.com/briarwatch/survivalcore/internal/domain/leveling"
	"github.com/briarwatch/survivalcore/internal/domain/player"
	"github.com/briarwatch/survivalcore/internal/persistence"
)

// Mongo is a persistence.Port backed by MongoDB, sized for a host that
// already runs a Mongo deployment for the rest of its stack and would
// rather not stand up a second store just for survival state.
type Mongo struct {
	stats    *mongo.Collection
	leveling *mongo.Collection
}

// ConnectMongo dials uri and returns a Mongo bound to database dbName's
// player_stats/player_leveling collections.
func ConnectMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	return &Mongo{
		stats:    db.Collection("player_stats"),
		leveling: db.Collection("player_leveling"),
	}, nil
}

type statsDoc struct {
	PlayerID string  `bson:"_id"`
	Hunger   float64 `bson:"hunger"`
	Thirst   float64 `bson:"thirst"`
	Energy   float64 `bson:"energy"`
}

func (m *Mongo) LoadStats(ctx context.Context, id player.ID) (*persistence.StatRecord, bool, error) {
	var doc statsDoc
	err := m.stats.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &persistence.StatRecord{PlayerID: id, Hunger: doc.Hunger, Thirst: doc.Thirst, Energy: doc.Energy}, true, nil
}

func (m *Mongo) SaveStats(ctx context.Context, rec persistence.StatRecord) error {
	doc := statsDoc{PlayerID: rec.PlayerID.String(), Hunger: rec.Hunger, Thirst: rec.Thirst, Energy: rec.Energy}
	_, err := m.stats.ReplaceOne(ctx, bson.M{"_id": doc.PlayerID}, doc, options.Replace().SetUpsert(true))
	return err
}

type levelingDoc struct {
	PlayerID string                            `bson:"_id"`
	Records  map[string]domlvl.ProgressRecord `bson:"records"`
}

func (m *Mongo) LoadLeveling(ctx context.Context, id player.ID) (*persistence.LevelingRecord, bool, error) {
	var doc levelingDoc
	err := m.leveling.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	progress := domlvl.NewProgress()
	for _, prof := range domlvl.AllProfessions {
		if rec, ok := doc.Records[prof.String()]; ok {
			progress = progress.With(prof, rec)
		}
	}
	return &persistence.LevelingRecord{PlayerID: id, Progress: progress}, true, nil
}

func (m *Mongo) SaveLeveling(ctx context.Context, rec persistence.LevelingRecord) error {
	doc := levelingDoc{PlayerID: rec.PlayerID.String(), Records: make(map[string]domlvl.ProgressRecord, len(domlvl.AllProfessions))}
	for _, prof := range domlvl.AllProfessions {
		doc.Records[prof.String()] = rec.Progress.Get(prof)
	}
	_, err := m.leveling.ReplaceOne(ctx, bson.M{"_id": doc.PlayerID}, doc, options.Replace().SetUpsert(true))
	return err
}
