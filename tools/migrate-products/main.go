// Command migrate-products copies the product catalog from MongoDB into the
// DynamoDB products table so PRODUCT_STORE can be switched to dynamodb.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/Rohit1034/HrudaySparshi/common/logger"
	"github.com/Rohit1034/HrudaySparshi/database"
	"github.com/Rohit1034/HrudaySparshi/models"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"
	ddb "github.com/Rohit1034/HrudaySparshi/pkg/dynamodb"
	"github.com/Rohit1034/HrudaySparshi/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type productSource interface {
	List(ctx context.Context, category string) ([]models.Product, error)
}

type productSink interface {
	Create(ctx context.Context, product *models.Product) error
}

type result struct {
	Migrated int
	Failed   int
}

func main() {
	_ = godotenv.Load()

	var mongoURI, dbName, table string
	var dryRun bool
	flag.StringVar(&mongoURI, "mongo", envOr("MONGO_URI", "mongodb://localhost:27017"), "MongoDB URI")
	flag.StringVar(&dbName, "db", envOr("MONGO_DB", "hruday_sparshi"), "MongoDB database name")
	flag.StringVar(&table, "table", envOr("DYNAMODB_PRODUCTS_TABLE", "products"), "DynamoDB table name")
	flag.BoolVar(&dryRun, "dry-run", false, "read and normalise products without writing them")
	flag.Parse()

	log, err := logger.New(envOr("APP_ENV", "development"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	ctx := context.Background()

	mongoClient, mongoDB, err := database.ConnectMongo(ctx, mongoURI, dbName)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatal("Failed to load AWS config", zap.Error(err))
	}
	ddbClient := ddb.NewClientFromConfig(awsCfg)
	if !dryRun {
		if err := ddb.EnsureTable(ctx, ddbClient, table, "id"); err != nil {
			log.Fatal("Failed to ensure products table", zap.String("table", table), zap.Error(err))
		}
	}

	var sink productSink = repository.NewDynamoProductRepository(ddbClient, table)
	if dryRun {
		sink = discard{}
	}

	res, err := migrate(ctx, repository.NewMongoProductRepository(mongoDB), sink, time.Now, log)
	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration complete",
		zap.Int("migrated", res.Migrated),
		zap.Int("failed", res.Failed),
		zap.Bool("dry_run", dryRun),
	)
}

// migrate writes every source product to the sink. A failed write is logged
// and counted; only a failed read aborts the run.
func migrate(ctx context.Context, src productSource, dst productSink, now func() time.Time, log *zap.Logger) (result, error) {
	products, err := src.List(ctx, "")
	if err != nil {
		return result{}, err
	}

	var res result
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now().UTC()
		}
		if p.UpdatedAt.IsZero() {
			p.UpdatedAt = p.CreatedAt
		}

		if err := dst.Create(ctx, p); err != nil {
			log.Warn("Failed to write product", zap.String("product_id", p.ID), zap.Error(err))
			res.Failed++
			continue
		}
		res.Migrated++
		if res.Migrated%100 == 0 {
			log.Info("Migrating products", zap.Int("migrated", res.Migrated))
		}
	}
	return res, nil
}

type discard struct{}

func (discard) Create(context.Context, *models.Product) error { return nil }

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
