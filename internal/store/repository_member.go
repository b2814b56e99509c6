package store

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/mkhalin/family-expenses/internal/logger"
	"github.com/mkhalin/family-expenses/models"
)

const createMember = `
	INSERT INTO family_members (id, name, email, family_id, last_modified, is_deleted, sync_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, name, email, family_id, last_modified, is_deleted, sync_id;`

const memberColumns = "id, name, email, family_id, last_modified, is_deleted, sync_id"

type memberRepository struct {
	*DB
	logger *logger.Logger
}

func NewMemberRepository(db *DB, logger *logger.Logger) MemberRepository {
	return &memberRepository{DB: db, logger: logger}
}

func (r *memberRepository) Create(ctx context.Context, member models.FamilyMember) (models.FamilyMember, error) {
	log := logger.FromContext(ctx)

	row := r.DB.QueryRowContext(ctx, createMember,
		member.ID,
		member.Name,
		member.Email,
		member.FamilyID,
		member.LastModified,
		member.IsDeleted,
		member.SyncID,
	)

	created, err := scanMember(row)
	if err != nil {
		log.Err(err).
			Str("func", "memberRepository.Create").
			Str("member_id", member.ID).
			Msg("failed to create family member")
		return models.FamilyMember{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return created, nil
}

func (r *memberRepository) ListByFamily(ctx context.Context, familyID string) ([]models.FamilyMember, error) {
	log := logger.FromContext(ctx)

	query, args, err := psql.Select(memberColumns).
		From("family_members").
		Where(sq.Eq{"family_id": familyID, "is_deleted": false}).
		OrderBy("name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "memberRepository.ListByFamily").
			Msg("failed to execute member query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	members := make([]models.FamilyMember, 0, 8)
	for rows.Next() {
		member, scanErr := scanMember(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		members = append(members, member)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return members, nil
}

func scanMember(row rowScanner) (models.FamilyMember, error) {
	var m models.FamilyMember
	var email sql.NullString

	err := row.Scan(
		&m.ID,
		&m.Name,
		&email,
		&m.FamilyID,
		&m.LastModified,
		&m.IsDeleted,
		&m.SyncID,
	)
	if err != nil {
		return models.FamilyMember{}, err
	}

	if email.Valid {
		m.Email = &email.String
	}

	return m, nil
}
