package medium

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoBlockSize is the fixed document payload size. Shard pieces span a
// handful of blocks; unwritten blocks read back as zeros.
const mongoBlockSize = 4096

// MongoMedium stores the byte space as fixed-size blocks, one document per
// block, keyed by block index.
type MongoMedium struct {
	client *mongo.Client
	coll   *mongo.Collection
	size   int64
}

// NewMongoMedium connects and pings the deployment before returning, the
// same way the rest of the tooling treats remote backends: fail at
// construction, not mid-write.
func NewMongoMedium(ctx context.Context, uri, dbName, collName string, size int64) (*MongoMedium, error) {
	if uri == "" {
		return nil, errors.New("medium: mongo uri is empty")
	}
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := cli.Ping(pctx, nil); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return &MongoMedium{
		client: cli,
		coll:   cli.Database(dbName).Collection(collName),
		size:   size,
	}, nil
}

func (m *MongoMedium) Read(ctx context.Context, off int64, size int) ([]byte, error) {
	if off < 0 || size < 0 || off+int64(size) > m.size {
		return nil, fmt.Errorf("%w: read [%d, %d)", ErrOutOfRange, off, off+int64(size))
	}
	out := make([]byte, size)
	if size == 0 {
		return out, nil
	}

	first := off / mongoBlockSize
	last := (off + int64(size) - 1) / mongoBlockSize

	cur, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$gte": first, "$lte": last}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc struct {
			ID   int64  `bson:"_id"`
			Data []byte `bson:"data"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		blockStart := doc.ID * mongoBlockSize
		for i, b := range doc.Data {
			pos := blockStart + int64(i) - off
			if pos >= 0 && pos < int64(size) {
				out[pos] = b
			}
		}
	}
	return out, cur.Err()
}

func (m *MongoMedium) Write(ctx context.Context, off int64, data []byte) error {
	if off < 0 || off+int64(len(data)) > m.size {
		return fmt.Errorf("%w: write [%d, %d)", ErrOutOfRange, off, off+int64(len(data)))
	}

	for len(data) > 0 {
		block := off / mongoBlockSize
		inner := int(off % mongoBlockSize)
		n := mongoBlockSize - inner
		if n > len(data) {
			n = len(data)
		}

		buf := make([]byte, mongoBlockSize)
		if inner != 0 || n != mongoBlockSize {
			// partial block: merge with what is already stored
			var doc struct {
				Data []byte `bson:"data"`
			}
			err := m.coll.FindOne(ctx, bson.M{"_id": block}).Decode(&doc)
			if err == nil {
				copy(buf, doc.Data)
			} else if err != mongo.ErrNoDocuments {
				return err
			}
		}
		copy(buf[inner:], data[:n])

		_, err := m.coll.UpdateByID(ctx, block,
			bson.M{"$set": bson.M{"data": buf, "updatedAt": time.Now()}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return err
		}

		off += int64(n)
		data = data[n:]
	}
	return nil
}

func (m *MongoMedium) Size(context.Context) (int64, error) { return m.size, nil }

// Sync is a no-op: every write is acknowledged by the deployment already.
func (m *MongoMedium) Sync(context.Context) error { return nil }

func (m *MongoMedium) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
