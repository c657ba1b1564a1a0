package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/procboard/procboard/api/models"
	"github.com/procboard/procboard/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const testJWTSecret = "test-secret"

// setupTestDB opens an isolated in-memory sqlite database with migrations applied
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// testConfig returns a configuration suitable for unit tests
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Auth.JWT.Secret = testJWTSecret
	return cfg
}

// setupTestServer builds a Server over an in-memory database and a gin engine
// with all routes registered
func setupTestServer(t *testing.T) (*Server, *gin.Engine) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	server := NewServer(testConfig(), db)

	engine := gin.New()
	server.RegisterHandlers(engine)
	return server, engine
}

// mintToken creates a signed JWT for the given user
func mintToken(t *testing.T, userID, name, role string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"name": name,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return signed
}

// newTestClient creates a hub client without a live websocket connection.
// Frames pushed to it accumulate in the buffered send channel.
func newTestClient() *ChatClient {
	return &ChatClient{
		ID:          uuid.New().String(),
		Send:        make(chan []byte, 64),
		ConnectedAt: time.Now().UTC(),
	}
}

// drainFrames empties a client's send channel and returns the frames
func drainFrames(c *ChatClient) [][]byte {
	var frames [][]byte
	for {
		select {
		case frame := <-c.Send:
			frames = append(frames, frame)
		default:
			return frames
		}
	}
}
