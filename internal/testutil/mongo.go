package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoURIEnv points tests at an existing MongoDB instead of a container.
const MongoURIEnv = "STAJYERLOG_TEST_MONGO_URI"

var (
	clientOnce sync.Once
	client     *mongo.Client
	clientErr  error
)

// TestContext returns a context with a timeout suitable for test database calls.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SetupTestDB returns a fresh database for the calling test. The database is
// dropped when the test finishes. One MongoDB client (and container, when
// no URI is configured) is shared by the whole test binary. The test is
// skipped when no MongoDB is reachable.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	clientOnce.Do(func() { client, clientErr = connect() })
	if clientErr != nil {
		t.Skipf("mongodb unavailable: %v", clientErr)
	}

	name := "stajyerlog_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	db := client.Database(name)

	t.Cleanup(func() {
		ctx, cancel := TestContext()
		defer cancel()
		_ = db.Drop(ctx)
	})
	return db
}

func connect() (c *mongo.Client, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	uri := os.Getenv(MongoURIEnv)
	if uri == "" {
		// The container library can panic when no docker provider exists.
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("start mongodb container: %v", r)
			}
		}()
		container, err := mongodb.Run(ctx, "mongo:7")
		if err != nil {
			return nil, fmt.Errorf("start mongodb container: %w", err)
		}
		if uri, err = container.ConnectionString(ctx); err != nil {
			return nil, fmt.Errorf("mongodb connection string: %w", err)
		}
	}

	c, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := c.Ping(ctx, nil); err != nil {
		_ = c.Disconnect(context.Background())
		return nil, err
	}
	return c, nil
}
