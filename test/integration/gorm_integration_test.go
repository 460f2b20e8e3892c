package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/repository/specification"
	"influencer-scout-be/internal/repository/unitofwork"
	"influencer-scout-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.ChatSessionRepository())
	assert.NotNil(t, uow.DatasetRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check ChatSession Repository", func(t *testing.T) {
		count, err := uow.ChatSessionRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatSession count: %d", count)
	})

	t.Run("Check ChatMessage Repository", func(t *testing.T) {
		count, err := uow.ChatMessageRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("ChatMessage count: %d", count)
	})

	t.Run("Transactional Session With Handoff", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:             sessionId,
			UserId:         uuid.New(),
			Title:          "Integration Test Session",
			Mode:           entity.SessionModeQualifying,
			PipelineStatus: "",
		}
		err = uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		messages := []*entity.ChatMessage{
			{Id: uuid.New(), ChatSessionId: sessionId, Role: "user", Chat: "tech influencers on TikTok"},
			{Id: uuid.New(), ChatSessionId: sessionId, Role: "assistant", Chat: "Any location preference?"},
		}
		err = uow.ChatMessageRepository().CreateBatch(ctx, messages)
		assert.NoError(t, err)

		handoff := &entity.SummaryHandoff{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Summary:       "tech influencers on TikTok",
			Status:        entity.HandoffStatusPending,
		}
		err = uow.SummaryHandoffRepository().Create(ctx, handoff)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		t.Log("Successfully created Session with Messages and Handoff in Transaction")
	})

	t.Run("Dataset Upsert Replaces Existing", func(t *testing.T) {
		ctx := context.Background()

		sessionId := uuid.New()
		session := &entity.ChatSession{
			Id:     sessionId,
			UserId: uuid.New(),
			Title:  "Upsert Test Session",
			Mode:   entity.SessionModeQualifying,
		}
		err := uow.ChatSessionRepository().Create(ctx, session)
		assert.NoError(t, err)

		first := &entity.Dataset{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Keywords:      []string{"tech"},
			Columns:       []string{"post_id", "user_name"},
			Rows:          []map[string]any{{"post_id": "1", "user_name": "alice"}},
			GroundingText: "- post_id: \"1\"",
			TokenCount:    3,
		}
		err = uow.DatasetRepository().Upsert(ctx, first)
		assert.NoError(t, err)

		second := &entity.Dataset{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Keywords:      []string{"tech", "US"},
			Columns:       []string{"post_id", "user_name"},
			Rows:          []map[string]any{{"post_id": "2", "user_name": "bob"}},
			GroundingText: "- post_id: \"2\"",
			TokenCount:    3,
		}
		err = uow.DatasetRepository().Upsert(ctx, second)
		assert.NoError(t, err)

		found, err := uow.DatasetRepository().FindOne(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, []string{"tech", "US"}, found.Keywords)
			assert.Equal(t, "bob", found.Rows[0]["user_name"])
		}

		// Cleanup
		_ = uow.DatasetRepository().DeleteBySessionId(ctx, sessionId)
		_ = uow.ChatSessionRepository().Delete(ctx, sessionId)
	})
}
