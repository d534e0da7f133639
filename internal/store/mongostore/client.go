// Package mongostore implements the store.* repository interfaces against
// MongoDB, grounded on original_source's db.rs two-logical-database split
// (spec.md §6: "a main database... a logs database").
package mongostore

import (
	"context"
	"time"

	"github.com/authcore/authcore/pkg/config"
	"github.com/authcore/authcore/pkg/logx"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Databases bundles the two logical database handles every repository is
// constructed from.
type Databases struct {
	Client *mongo.Client
	Main   *mongo.Database
	Logs   *mongo.Database
}

// Connect dials Mongo and returns both logical database handles.
func Connect(ctx context.Context, cfg config.MongoConfig) (*Databases, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	logx.WithFields(logx.Fields{"main_db": cfg.MainDB, "logs_db": cfg.LogsDB}).Info("connected to mongodb")

	return &Databases{
		Client: client,
		Main:   client.Database(cfg.MainDB),
		Logs:   client.Database(cfg.LogsDB),
	}, nil
}

// Disconnect closes the underlying client with a bounded timeout.
func (d *Databases) Disconnect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
