package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/member/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL member repository.
func NewRepository(pool *pgxpool.Pool) RepositoryInterface {
	return &postgresRepository{
		pool: pool,
	}
}

func (r *postgresRepository) Create(ctx context.Context, member *model.Member) error {
	query := `
		INSERT INTO members (
			id, name, membership_id, email, phone, user_id, version, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		member.ID,
		member.Name,
		member.MembershipID,
		member.Email,
		member.Phone,
		member.UserID,
		member.Version,
		member.CreatedAt,
		member.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrMembershipIDTaken
		}
		return fmt.Errorf("failed to insert member: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	query := `
		SELECT id, name, membership_id, email, phone, user_id, version, created_at, updated_at
		FROM members
		WHERE id = $1
	`

	var member model.Member
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&member.ID,
		&member.Name,
		&member.MembershipID,
		&member.Email,
		&member.Phone,
		&member.UserID,
		&member.Version,
		&member.CreatedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewMemberNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get member by id: %w", err)
	}

	return &member, nil
}

func (r *postgresRepository) List(ctx context.Context) ([]model.Member, error) {
	query := `
		SELECT id, name, membership_id, email, phone, user_id, version, created_at, updated_at
		FROM members
		ORDER BY name ASC, id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	members := make([]model.Member, 0)
	for rows.Next() {
		var member model.Member
		err := rows.Scan(
			&member.ID,
			&member.Name,
			&member.MembershipID,
			&member.Email,
			&member.Phone,
			&member.UserID,
			&member.Version,
			&member.CreatedAt,
			&member.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}

	return members, nil
}

func (r *postgresRepository) Update(ctx context.Context, member *model.Member, expectedVersion int) error {
	query := `
		UPDATE members
		SET name = $2,
			membership_id = $3,
			email = $4,
			phone = $5,
			user_id = $6,
			version = version + 1,
			updated_at = $7
		WHERE id = $1 AND version = $8
		RETURNING version
	`

	err := r.pool.QueryRow(ctx, query,
		member.ID,
		member.Name,
		member.MembershipID,
		member.Email,
		member.Phone,
		member.UserID,
		member.UpdatedAt,
		expectedVersion,
	).Scan(&member.Version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			current, getErr := r.GetByID(ctx, member.ID)
			if getErr != nil {
				return getErr
			}
			return model.NewOptimisticLockError(expectedVersion, current.Version)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrMembershipIDTaken
		}
		return fmt.Errorf("failed to update member: %w", err)
	}

	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM members m
		WHERE m.id = $1
		  AND NOT EXISTS (SELECT 1 FROM loans l WHERE l.member_id = m.id AND NOT l.returned)
		  AND NOT EXISTS (SELECT 1 FROM reservations r WHERE r.member_id = m.id AND NOT r.fulfilled)
	`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return model.ErrMemberReferenced
	}

	return nil
}
