package unitofwork

import (
	"context"

	"influencer-scout-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatSessionRepository() contract.ChatSessionRepository
	ChatMessageRepository() contract.ChatMessageRepository
	SummaryHandoffRepository() contract.SummaryHandoffRepository
	DatasetRepository() contract.DatasetRepository
}
