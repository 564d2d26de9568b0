// Command seed grants the admin role to a portal account, creating the
// account when it does not exist yet. Run it once after deployment so that
// someone can reach the dashboard:
//
//	MONGODB_URI=... go run ./cmd/seed -email admin@example.com -name "Admin"
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/malikarslanasif131/hackathon-backend/internal/config"
	"github.com/malikarslanasif131/hackathon-backend/internal/database"
	"github.com/malikarslanasif131/hackathon-backend/internal/models"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/pkg/logger"
)

func main() {
	email := flag.String("email", "", "email of the account to promote (required)")
	name := flag.String("name", "", "display name for a newly created account")
	flag.Parse()

	logger.Init(os.Getenv("LOG_LEVEL"))
	if *email == "" {
		logger.Fatalf("-email is required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		logger.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	col := client.Database(cfg.MongoDB.Database).Collection(store.Users)
	now := time.Now().UTC()
	res, err := col.UpdateOne(ctx,
		bson.M{"email": *email},
		bson.M{
			"$set": bson.M{
				"roles.admins": models.StatusAccepted,
				"updatedAt":    now,
			},
			"$setOnInsert": bson.M{
				"email":     *email,
				"name":      *name,
				"createdAt": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		logger.Fatalf("failed to grant admin role: %v", err)
	}

	if res.UpsertedCount > 0 {
		logger.Infof("created %s with the admin role", *email)
	} else {
		logger.Infof("granted the admin role to existing account %s", *email)
	}
}
