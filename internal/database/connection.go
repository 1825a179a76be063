package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // Need this import
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect initializes the MongoDB client and verifies the connection
func Connect(uri string) (*mongo.Client, error) {
	// Bounded so the app doesn't hang forever if the DB is down
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the database to verify the connection is actually alive
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	return client, nil
}

// ConnectSQL opens the MySQL connection used by the audit trail.
func ConnectSQL(user, pass, host, name string) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:3306)/%s?parseTime=true", user, pass, host, name)
	return sql.Open("mysql", dsn)
}
