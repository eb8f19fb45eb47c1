package unitofwork

import (
	"context"
	"errors"

	"shate-rag-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatLogRepository() contract.ChatLogRepository
	CorpusEmbeddingRepository() contract.CorpusEmbeddingRepository
}

// Transact runs fn inside one transaction, committing on success and rolling back on error.
func Transact(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := fn(uow); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return uow.Commit()
}
