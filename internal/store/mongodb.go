package store

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"report-bot/internal/apperr"
)

type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDB connects and pings. Transactions need the server to run as a
// replica set (a single-node set is enough).
func NewMongoDB(ctx context.Context, uri, database string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetRegistry(newRegistry()))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	slog.Info("connected to mongodb", "database", database)

	return &MongoDB{
		client: client,
		db:     client.Database(database),
	}, nil
}

func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// conflict maps a duplicate-key write error to apperr.ErrConflict.
func conflict(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", apperr.ErrConflict, err)
	}
	return err
}

var decimalType = reflect.TypeOf(decimal.Decimal{})

// newRegistry stores decimal.Decimal as its exact string form.
func newRegistry() *bson.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(decimalType, bson.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(decimalType, bson.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bson.EncodeContext, vw bson.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != decimalType {
		return fmt.Errorf("decimal encoder cannot encode %v", val)
	}
	return vw.WriteString(val.Interface().(decimal.Decimal).String())
}

func decodeDecimal(_ bson.DecodeContext, vr bson.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != decimalType {
		return fmt.Errorf("decimal decoder cannot decode into %v", val.Type())
	}

	var d decimal.Decimal
	switch vr.Type() {
	case bson.TypeString:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		if d, err = decimal.NewFromString(s); err != nil {
			return fmt.Errorf("decode decimal %q: %w", s, err)
		}
	case bson.TypeNull:
		if err := vr.ReadNull(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot decode %v into decimal", vr.Type())
	}
	val.Set(reflect.ValueOf(d))
	return nil
}
