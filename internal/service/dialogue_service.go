package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"influencer-scout-be/internal/dto"
	"influencer-scout-be/internal/entity"
	"influencer-scout-be/internal/pkg/logger"
	"influencer-scout-be/internal/repository/memory"
	"influencer-scout-be/internal/repository/specification"
	"influencer-scout-be/internal/repository/unitofwork"
	"influencer-scout-be/pkg/dialogue"
	"influencer-scout-be/pkg/events"
	"influencer-scout-be/pkg/llm"
	pktNats "influencer-scout-be/pkg/nats"
	"influencer-scout-be/pkg/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const groundingCacheTTL = 24 * time.Hour

func groundingCacheKey(sessionId uuid.UUID) string {
	return fmt.Sprintf("grounding:%s", sessionId)
}

type IDialogueService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	HandleTurn(ctx context.Context, sessionId uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error)
	GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error)
	GetStatus(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStatusResponse, error)
}

type dialogueService struct {
	uowFactory       unitofwork.RepositoryFactory
	sessionRepo      *memory.SessionRepository
	machine          *dialogue.Machine
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	rdb              *redis.Client
	sysLogger        logger.ILogger
}

func NewDialogueService(
	uowFactory unitofwork.RepositoryFactory,
	sessionRepo *memory.SessionRepository,
	machine *dialogue.Machine,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	rdb *redis.Client,
	sysLogger logger.ILogger,
) IDialogueService {
	return &dialogueService{
		uowFactory:       uowFactory,
		sessionRepo:      sessionRepo,
		machine:          machine,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		rdb:              rdb,
		sysLogger:        sysLogger,
	}
}

func (s *dialogueService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	title := req.Title
	if title == "" {
		title = "Lead qualification"
	}

	session := &entity.ChatSession{
		Id:     uuid.New(),
		UserId: userId,
		Title:  title,
		Mode:   entity.SessionModeQualifying,
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.sessionRepo.Save(&store.Session{
		ID:   session.Id.String(),
		Mode: store.ModeQualifying,
	})

	s.sysLogger.Info("Dialogue", "Session created", map[string]interface{}{"session_id": session.Id})

	return &dto.CreateSessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		Mode:      session.Mode,
		CreatedAt: session.CreatedAt,
	}, nil
}

func (s *dialogueService) HandleTurn(ctx context.Context, sessionId uuid.UUID, req *dto.ChatTurnRequest) (*dto.ChatTurnResponse, error) {
	live, err := s.loadSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}

	before := len(live.Turns)
	result := s.machine.HandleTurn(ctx, live, req.Message)

	// A contained completion failure mutates nothing, so there is nothing
	// to persist. The apologetic reply still goes out.
	if result.Err == nil {
		if err := s.persistTurn(ctx, sessionId, live, result, before); err != nil {
			s.sysLogger.Error("Dialogue", "Failed to persist turn", map[string]interface{}{
				"session_id": sessionId, "error": err.Error(),
			})
			return nil, err
		}
	}

	s.sessionRepo.Save(live)

	return &dto.ChatTurnResponse{
		SessionId:    sessionId,
		Reply:        result.Reply,
		Mode:         live.Mode,
		Concluded:    result.Concluded,
		ProcessReady: result.Concluded,
	}, nil
}

// persistTurn mirrors the in-memory history into the database and, on a
// concluded turn, writes the summary handoff and kicks the processing bus.
func (s *dialogueService) persistTurn(ctx context.Context, sessionId uuid.UUID, live *store.Session, result *dialogue.TurnResult, before int) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if result.Reset {
		// A greeting wipes the transcript and any attached dataset.
		if err := uow.ChatMessageRepository().DeleteAllBySessionId(ctx, sessionId); err != nil {
			return err
		}
		if err := uow.DatasetRepository().DeleteBySessionId(ctx, sessionId); err != nil {
			return err
		}
		if s.rdb != nil {
			s.rdb.Del(ctx, groundingCacheKey(sessionId))
		}
	}

	// Persist the turns this result appended in memory.
	appended := turnsAppended(live, result, before)
	msgs := make([]*entity.ChatMessage, 0, len(appended))
	for _, t := range appended {
		msgs = append(msgs, &entity.ChatMessage{
			Id:            uuid.New(),
			Chat:          t.Content,
			Role:          t.Role,
			ChatSessionId: sessionId,
		})
	}
	if err := uow.ChatMessageRepository().CreateBatch(ctx, msgs); err != nil {
		return err
	}

	dbSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	if dbSession != nil {
		dbSession.Mode = live.Mode
		dbSession.PipelineStatus = live.PipelineStatus
		if err := uow.ChatSessionRepository().Update(ctx, dbSession); err != nil {
			return err
		}
	}

	if result.Concluded {
		handoff := &entity.SummaryHandoff{
			Id:            uuid.New(),
			ChatSessionId: sessionId,
			Summary:       result.Summary,
			Status:        entity.HandoffStatusPending,
		}
		if err := uow.SummaryHandoffRepository().Create(ctx, handoff); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// Side effects go out only after the transaction holds.
	if result.Concluded {
		payload, _ := json.Marshal(dto.PublishProcessMessage{SessionId: sessionId})
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.sysLogger.Error("Dialogue", "Failed to publish process message", map[string]interface{}{
				"session_id": sessionId, "error": err.Error(),
			})
		}
		if s.eventPublisher != nil {
			evt := events.NewSessionConcluded(sessionId.String(), result.Summary)
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				log.Printf("[WARN] Failed to publish SESSION_CONCLUDED: %v", err)
			}
		}
	}

	return nil
}

// turnsAppended returns the turns this result added to the live history.
// A reset replaced the history outright; an unchanged length means the turn
// mutated nothing (invalid input).
func turnsAppended(live *store.Session, result *dialogue.TurnResult, before int) []llm.Message {
	if result.Reset {
		return live.Turns
	}
	if before >= len(live.Turns) {
		return nil
	}
	return live.Turns[before:]
}

func (s *dialogueService) GetHistory(ctx context.Context, sessionId uuid.UUID) (*dto.ChatHistoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ChatHistoryItem, 0, len(messages))
	for _, m := range messages {
		items = append(items, dto.ChatHistoryItem{
			Role:      m.Role,
			Chat:      m.Chat,
			CreatedAt: m.CreatedAt,
		})
	}

	return &dto.ChatHistoryResponse{SessionId: sessionId, Messages: items}, nil
}

func (s *dialogueService) GetStatus(ctx context.Context, sessionId uuid.UUID) (*dto.SessionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	res := &dto.SessionStatusResponse{
		SessionId:      sessionId,
		Mode:           session.Mode,
		PipelineStatus: session.PipelineStatus,
	}

	handoff, err := uow.SummaryHandoffRepository().FindOne(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if handoff != nil {
		res.HandoffStatus = handoff.Status
	}

	return res, nil
}

// loadSession returns the live session, rehydrating from the database after
// a cache eviction or restart.
func (s *dialogueService) loadSession(ctx context.Context, sessionId uuid.UUID) (*store.Session, error) {
	if live, found := s.sessionRepo.Get(sessionId.String()); found {
		return live, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	dbSession, err := uow.ChatSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if dbSession == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "session not found")
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	live := &store.Session{
		ID:             dbSession.Id.String(),
		Mode:           dbSession.Mode,
		PipelineStatus: dbSession.PipelineStatus,
	}
	for _, m := range messages {
		live.Append(m.Role, m.Chat)
	}

	if live.Mode == store.ModeGrounded {
		live.GroundingContext = s.loadGrounding(ctx, uow, sessionId)
	}

	s.sessionRepo.Save(live)
	return live, nil
}

// loadGrounding prefers the Redis cache and falls back to the persisted
// dataset row, refilling the cache on the way out.
func (s *dialogueService) loadGrounding(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID) string {
	if s.rdb != nil {
		if text, err := s.rdb.Get(ctx, groundingCacheKey(sessionId)).Result(); err == nil && text != "" {
			return text
		}
	}

	dataset, err := uow.DatasetRepository().FindOne(ctx, specification.ByChatSessionID{ChatSessionID: sessionId})
	if err != nil || dataset == nil {
		return ""
	}

	if s.rdb != nil && dataset.GroundingText != "" {
		s.rdb.Set(ctx, groundingCacheKey(sessionId), dataset.GroundingText, groundingCacheTTL)
	}
	return dataset.GroundingText
}
