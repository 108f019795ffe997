package internal

import (
	"context"
	"errors"
	"evcdr/entity"
	"evcdr/entity/cdr"
	"evcdr/entity/location"
	"evcdr/entity/tariff"
	"evcdr/internal/config"
	"fmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"log"
	"time"
)

const (
	collectionLog       = "sys_log"
	collectionLocations = "locations"
	collectionTariffs   = "tariffs"
	collectionSessions  = "sessions"
	collectionCdrs      = "cdrs"
)

type MongoDB struct {
	ctx           context.Context
	clientOptions *options.ClientOptions
	database      string
}

func NewMongoClient(conf *config.Config) (*MongoDB, error) {
	if !conf.Mongo.Enabled {
		return nil, nil
	}
	connectionUri := fmt.Sprintf("mongodb://%s:%s", conf.Mongo.Host, conf.Mongo.Port)
	clientOptions := options.Client().ApplyURI(connectionUri)
	if conf.Mongo.User != "" {
		clientOptions.SetAuth(options.Credential{
			Username:   conf.Mongo.User,
			Password:   conf.Mongo.Password,
			AuthSource: conf.Mongo.Database,
		})
	}
	client := &MongoDB{
		ctx:           context.Background(),
		clientOptions: clientOptions,
		database:      conf.Mongo.Database,
	}
	return client, nil
}

func (m *MongoDB) connect(ctx context.Context) (*mongo.Client, error) {
	connection, err := mongo.Connect(ctx, m.clientOptions)
	if err != nil {
		return nil, err
	}
	return connection, nil
}

func (m *MongoDB) disconnect(connection *mongo.Client) {
	err := connection.Disconnect(m.ctx)
	if err != nil {
		log.Println("mongodb disconnect error;", err)
	}
}

func (m *MongoDB) WriteLogMessage(data Data) error {
	connection, err := m.connect(m.ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(connection)
	collection := connection.Database(m.database).Collection(collectionLog)
	_, err = collection.InsertOne(m.ctx, data)
	if err != nil {
		return err
	}
	return nil
}

func (m *MongoDB) ReadLog() (interface{}, error) {
	connection, err := m.connect(m.ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	var logMessages []FeatureLogMessage
	collection := connection.Database(m.database).Collection(collectionLog)
	filter := bson.D{}
	opts := options.Find().SetSort(bson.D{{"timestamp", -1}}).SetLimit(1000)
	cursor, err := collection.Find(m.ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	if err = cursor.All(m.ctx, &logMessages); err != nil {
		return nil, err
	}
	return logMessages, nil
}

func (m *MongoDB) GetLocation(ctx context.Context, id string) (*location.Location, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"id", id}}
	collection := connection.Database(m.database).Collection(collectionLocations)
	var loc location.Location
	err = collection.FindOne(ctx, filter).Decode(&loc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", id, err)
	}
	return &loc, nil
}

func (m *MongoDB) SaveLocation(ctx context.Context, loc *location.Location) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"country_code", loc.CountryCode}, {"party_id", loc.PartyId}, {"id", loc.Id}}
	collection := connection.Database(m.database).Collection(collectionLocations)
	_, err = collection.ReplaceOne(ctx, filter, loc, options.Replace().SetUpsert(true))
	return err
}

// GetTariffIds reads the tariff ids of the connector; they are the same for every eMSP
func (m *MongoDB) GetTariffIds(ctx context.Context, countryCode, partyId, locationId, evseUid, connectorId, _ string) ([]string, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"country_code", countryCode}, {"party_id", partyId}, {"id", locationId}}
	collection := connection.Database(m.database).Collection(collectionLocations)
	var loc location.Location
	err = collection.FindOne(ctx, filter).Decode(&loc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("location %s: %w", locationId, err)
	}
	return connectorTariffIds(&loc, evseUid, connectorId), nil
}

// GetTariff returns the version of the tariff effective at the given time
func (m *MongoDB) GetTariff(ctx context.Context, id string, at time.Time, _ string) (*tariff.Tariff, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{
		{"id", id},
		{"$and", bson.A{
			bson.D{{"$or", bson.A{
				bson.D{{"start_date_time", bson.D{{"$exists", false}}}},
				bson.D{{"start_date_time", bson.D{{"$lte", at}}}},
			}}},
			bson.D{{"$or", bson.A{
				bson.D{{"end_date_time", bson.D{{"$exists", false}}}},
				bson.D{{"end_date_time", bson.D{{"$gt", at}}}},
			}}},
		}},
	}
	opts := options.FindOne().SetSort(bson.D{{"start_date_time", -1}})
	collection := connection.Database(m.database).Collection(collectionTariffs)
	var t tariff.Tariff
	err = collection.FindOne(ctx, filter, opts).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tariff %s: %w", id, err)
	}
	return &t, nil
}

// SaveTariff stores a tariff version, versions are told apart by start_date_time
func (m *MongoDB) SaveTariff(ctx context.Context, t *tariff.Tariff) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"country_code", t.CountryCode}, {"party_id", t.PartyId}, {"id", t.Id}, {"start_date_time", t.StartDateTime}}
	collection := connection.Database(m.database).Collection(collectionTariffs)
	_, err = collection.ReplaceOne(ctx, filter, t, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoDB) GetSession(ctx context.Context, id string) (*entity.ChargingSession, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"id", id}}
	collection := connection.Database(m.database).Collection(collectionSessions)
	var session entity.ChargingSession
	err = collection.FindOne(ctx, filter).Decode(&session)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return &session, nil
}

func (m *MongoDB) SaveSession(ctx context.Context, session *entity.ChargingSession) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"id", session.Id}}
	collection := connection.Database(m.database).Collection(collectionSessions)
	_, err = collection.ReplaceOne(ctx, filter, session, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoDB) GetCdr(ctx context.Context, id string) (*cdr.Cdr, error) {
	connection, err := m.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"id", id}}
	collection := connection.Database(m.database).Collection(collectionCdrs)
	var record cdr.Cdr
	err = collection.FindOne(ctx, filter).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cdr %s: %w", id, err)
	}
	return &record, nil
}

// SaveCdr replaces a previously built CDR with the same id
func (m *MongoDB) SaveCdr(ctx context.Context, record *cdr.Cdr) error {
	connection, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer m.disconnect(connection)

	filter := bson.D{{"country_code", record.CountryCode}, {"party_id", record.PartyId}, {"id", record.Id}}
	collection := connection.Database(m.database).Collection(collectionCdrs)
	_, err = collection.ReplaceOne(ctx, filter, record, options.Replace().SetUpsert(true))
	return err
}

func connectorTariffIds(loc *location.Location, evseUid, connectorId string) []string {
	evse := loc.FindEvse(evseUid)
	if evse == nil {
		return nil
	}
	connector := evse.FindConnector(connectorId)
	if connector == nil {
		return nil
	}
	return append([]string(nil), connector.TariffIds...)
}
