package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"library-backend/internal/domains/book/model"
	"library-backend/internal/domains/book/repository"
	"library-backend/internal/shared/access"
	"library-backend/pkg/cache"
	"library-backend/pkg/clock"
)

const (
	cacheKeyBookList = "books:list"
	bookCacheTTL     = 5 * time.Minute
)

type BookService struct {
	repo  repository.RepositoryInterface
	cache cache.Cache
	clk   clock.Clock
}

// NewService creates a new book service. cache may be nil (tests).
func NewService(repo repository.RepositoryInterface, cache cache.Cache, clk clock.Clock) ServiceInterface {
	return &BookService{
		repo:  repo,
		cache: cache,
		clk:   clk,
	}
}

func cacheKeyBook(id uuid.UUID) string {
	return "books:id:" + id.String()
}

func (s *BookService) CreateBook(ctx context.Context, caller access.Caller, req model.CreateBookRequest) (*model.BookResponse, error) {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	book := model.Book{
		ID:          uuid.New(),
		Title:       req.Title,
		Author:      req.Author,
		PublishDate: req.PublishDate,
		ISBN:        req.ISBN,
		Status:      model.StatusAvailable,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, &book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.invalidateCache(ctx, book.ID)

	response := book.ToResponse()
	return &response, nil
}

func (s *BookService) GetBookByID(ctx context.Context, id uuid.UUID) (*model.BookResponse, error) {
	if s.cache != nil {
		var cached model.BookResponse
		found, err := s.cache.Get(ctx, cacheKeyBook(id), &cached)
		if err != nil {
			log.Warn().Err(err).Msg("book cache read failed")
		}
		if found {
			return &cached, nil
		}
	}

	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	response := book.ToResponse()
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyBook(id), response, bookCacheTTL); err != nil {
			log.Warn().Err(err).Msg("book cache write failed")
		}
	}
	return &response, nil
}

func (s *BookService) ListBooks(ctx context.Context) ([]model.BookResponse, error) {
	if s.cache != nil {
		var cached []model.BookResponse
		found, err := s.cache.Get(ctx, cacheKeyBookList, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("book list cache read failed")
		}
		if found {
			return cached, nil
		}
	}

	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	responses := model.ToResponseList(books)
	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKeyBookList, responses, bookCacheTTL); err != nil {
			log.Warn().Err(err).Msg("book list cache write failed")
		}
	}
	return responses, nil
}

func (s *BookService) UpdateBook(ctx context.Context, caller access.Caller, id uuid.UUID, req model.UpdateBookRequest) (*model.BookResponse, error) {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Title != nil {
		updated.Title = *req.Title
	}
	if req.Author != nil {
		updated.Author = *req.Author
	}
	if req.PublishDate != nil {
		updated.PublishDate = req.PublishDate
	}
	if req.ISBN != nil {
		updated.ISBN = req.ISBN
	}
	updated.UpdatedAt = s.clk.Now()

	if err := s.repo.Update(ctx, &updated, current.Version); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)

	response := updated.ToResponse()
	return &response, nil
}

func (s *BookService) DeleteBook(ctx context.Context, caller access.Caller, id uuid.UUID) error {
	if err := access.Require(caller, access.OpManageCatalog); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, id)
	return nil
}

func (s *BookService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKeyBook(id), cacheKeyBookList); err != nil {
		log.Warn().Err(err).Msg("book cache invalidation failed")
	}
}
