package sink

import (
	"context"

	"github.com/Vostanis/etl-io/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// OpenMongo creates a MongoDB client for uri.
func OpenMongo(uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, errors.TransportFailure, "could not connect to mongo")
	}
	return client, nil
}

// Mongo replaces the document with _id = documentID in the collection named
// by the destination, inserting it when absent.
type Mongo struct {
	client   *mongo.Client
	database string
	log      *zap.Logger
}

// NewMongo creates a MongoDB sink writing into database.
func NewMongo(client *mongo.Client, database string, log *zap.Logger) *Mongo {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mongo{client: client, database: database, log: log}
}

func (m *Mongo) Upsert(ctx context.Context, document any, destination, documentID string) error {
	doc, err := mongoDocument(document, documentID)
	if err != nil {
		return err
	}
	coll := m.client.Database(m.database).Collection(destination)
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": documentID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return errors.Wrap(err, errors.TransportFailure, "could not upsert document %s into %s", documentID, destination)
		}
		return errors.Wrap(err, errors.Unclassified, "could not upsert document %s into %s", documentID, destination)
	}
	m.log.Debug("upserted document",
		zap.String("collection", destination),
		zap.String("document_id", documentID),
		zap.Bool("update", res.MatchedCount > 0),
	)
	return nil
}

// mongoDocument converts document to BSON via its JSON form and pins _id.
func mongoDocument(document any, documentID string) (bson.M, error) {
	body, err := marshal(document)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.UnmarshalExtJSON(body, false, &doc); err != nil {
		return nil, errors.Wrap(err, errors.FormatFailure, "document %s is not a json object", documentID)
	}
	if doc == nil {
		return nil, errors.New(errors.FormatFailure, "document %s is empty", documentID)
	}
	doc["_id"] = documentID
	return doc, nil
}
