package service

import (
	"context"
	"log"
	"time"

	"influencer-scout-be/internal/dto"
	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/pkg/logger"
	"influencer-scout-be/internal/repository/memory"
	"influencer-scout-be/internal/repository/specification"
	"influencer-scout-be/internal/repository/unitofwork"
	"influencer-scout-be/internal/websocket"
	"influencer-scout-be/pkg/events"
	pktNats "influencer-scout-be/pkg/nats"
	"influencer-scout-be/pkg/pipeline"
	"influencer-scout-be/pkg/store"
	"influencer-scout-be/pkg/transform"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type IPipelineService interface {
	// Process turns the latest summary handoff for a session into a
	// dataset. Blocking; callers on the request path should accept the
	// latency or go through the bus consumer.
	Process(ctx context.Context, sessionId uuid.UUID) (*dto.ProcessResponse, error)
	GetDataset(ctx context.Context, sessionId uuid.UUID) (*dto.DatasetResponse, error)
	GetDatasetCSV(ctx context.Context, sessionId uuid.UUID) (string, error)
}

type pipelineService struct {
	uowFactory     unitofwork.RepositoryFactory
	sessionRepo    *memory.SessionRepository
	orchestrator   *pipeline.Orchestrator
	hub            *websocket.Hub
	eventPublisher *pktNats.Publisher
	rdb            *redis.Client
	sysLogger      logger.ILogger
}

func NewPipelineService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	orchestrator *pipeline.Orchestrator,
	hub *websocket.Hub,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	sysLogger logger.ILogger,
) IPipelineService {
	return &pipelineService{
		uowFactory:     uowFactory,
		sessionRepo:    sessionRepo,
		orchestrator:   orchestrator,
		hub:            hub,
		eventPublisher: eventPublisher,
		rdb:            rdb,
		sysLogger:      sysLogger,
	}
}

func (s *pipelineService) Process(ctx context.Context, sessionId uuid.UUID) (*dto.ProcessResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	// Latest handoff wins; reprocessing a processed one is allowed and
	// overwrites the session's dataset.
	handoff, err := uow.SummaryHandoffRepository().FindOne(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if handoff == nil {
		return nil, fiber.NewError(fiber.StatusConflict, "session has no concluded summary to process")
	}

	s.setPipelineStatus(ctx, session, store.StatusProcessing)
	s.notify(sessionId, "pipeline_started", map[string]interface{}{"summary": handoff.Summary})

	result := s.orchestrator.Process(ctx, handoff.Summary)

	now := time.Now()
	handoff.ProcessedAt = &now
	handoff.Status = handoffStatusFor(result.Status)

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SummaryHandoffRepository().Update(ctx, handoff); err != nil {
		return nil, err
	}

	records := 0
	if result.Status == pipeline.StatusOK {
		records = len(result.Dataset.Rows)

		dataset := &entity.Dataset{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Keywords:      result.Keywords,
			Columns:       result.Dataset.Columns,
			Rows:          result.Dataset.Rows,
			GroundingText: result.Grounding,
			TokenCount:    result.TokenCount,
		}
		if err := uow.DatasetRepository().Upsert(ctx, dataset); err != nil {
			return nil, err
		}

		session.Mode = entity.SessionModeGrounded
	}
	session.PipelineStatus = string(result.Status)
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.applyOutcome(ctx, sessionId, session, result, records)

	return &dto.ProcessResponse{
		SessionId:  sessionId,
		Status:     string(result.Status),
		Keywords:   result.Keywords,
		Records:    records,
		TokenCount: result.TokenCount,
	}, nil
}

// applyOutcome fans the committed result out: live session state, grounding
// cache, websocket watchers and the external event bus.
func (s *pipelineService) applyOutcome(ctx context.Context, sessionId uuid.UUID, session *entity.ChatSession, result *pipeline.Result, records int) {
	if live, found := s.sessionRepo.Get(sessionId.String()); found {
		live.Lock()
		live.PipelineStatus = string(result.Status)
		if result.Status == pipeline.StatusOK {
			live.Mode = store.ModeGrounded
			live.GroundingContext = result.Grounding
		}
		live.Unlock()
		s.sessionRepo.Save(live)
	}

	if result.Status == pipeline.StatusOK {
		if s.rdb != nil && result.Grounding != "" {
			s.rdb.Set(ctx, groundingCacheKey(sessionId), result.Grounding, groundingCacheTTL)
		}

		s.sysLogger.Info("Pipeline", "Dataset ready", map[string]interface{}{
			"session_id": sessionId, "records": records, "token_count": result.TokenCount,
		})
		s.notify(sessionId, "dataset_ready", map[string]interface{}{
			"records":     records,
			"token_count": result.TokenCount,
		})
		if s.eventPublisher != nil {
			evt := events.NewDatasetReady(sessionId.String(), records, result.TokenCount)
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				log.Printf("[WARN] Failed to publish DATASET_READY: %v", err)
			}
		}
		return
	}

	s.sysLogger.Warn("Pipeline", "Run ended without dataset", map[string]interface{}{
		"session_id": sessionId, "status": string(result.Status),
	})
	s.notify(sessionId, "pipeline_failed", map[string]interface{}{"status": string(result.Status)})
	if s.eventPublisher != nil {
		evt := events.NewPipelineFailed(sessionId.String(), string(result.Status))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish PIPELINE_FAILED: %v", err)
		}
	}
}

func (s *pipelineService) GetDataset(ctx context.Context, sessionId uuid.UUID) (*dto.DatasetResponse, error) {
	dataset, err := s.findDataset(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	return &dto.DatasetResponse{
		SessionId:  sessionId,
		Keywords:   dataset.Keywords,
		Columns:    dataset.Columns,
		Rows:       dataset.Rows,
		TokenCount: dataset.TokenCount,
		CreatedAt:  dataset.CreatedAt,
	}, nil
}

func (s *pipelineService) GetDatasetCSV(ctx context.Context, sessionId uuid.UUID) (string, error) {
	dataset, err := s.findDataset(ctx, sessionId)
	if err != nil {
		return "", err
	}

	tabular := &transform.Dataset{
		Columns: dataset.Columns,
		Rows:    dataset.Rows,
	}
	return tabular.CSV()
}

func (s *pipelineService) findDataset(ctx context.Context, sessionId uuid.UUID) (*entity.Dataset, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	dataset, err := uow.DatasetRepository().FindOne(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
	if err != nil {
		return nil, err
	}
	if dataset == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "no dataset for session")
	}
	return dataset, nil
}

func (s *pipelineService) setPipelineStatus(ctx context.Context, session *entity.ChatSession, status string) {
	session.PipelineStatus = status
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		s.sysLogger.Warn("Pipeline", "Failed to persist pipeline status", map[string]interface{}{
			"session_id": session.Id, "error": err.Error(),
		})
	}

	if live, found := s.sessionRepo.Get(session.Id.String()); found {
		live.Lock()
		live.PipelineStatus = status
		live.Unlock()
	}
}

func (s *pipelineService) notify(sessionId uuid.UUID, eventType string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Send(sessionId, websocket.Event{Type: eventType, Data: data})
}

func handoffStatusFor(status pipeline.Status) string {
	switch status {
	case pipeline.StatusOK:
		return entity.HandoffStatusProcessed
	case pipeline.StatusNoKeywords:
		return entity.HandoffStatusNoKeywords
	default:
		return entity.HandoffStatusNoData
	}
}
