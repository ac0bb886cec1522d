package repositories

import (
	"context"
	"fmt"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/infra/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const instaMemberColumns = `id, COALESCE(member_id, 0), username, gender, likes, created_at, updated_at`

// InstaMemberRepository lê os handles verificados mantidos pelo subsistema de verificação.
type InstaMemberRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewInstaMemberRepository(readWriteClient *postgres.ReadWriteClient) *InstaMemberRepository {
	return &InstaMemberRepository{
		readPool:  readWriteClient.GetReadPool(),
		writePool: readWriteClient.GetWritePool(),
	}
}

func (r *InstaMemberRepository) FindByMemberID(ctx context.Context, memberID int64) (*entities.InstaMember, error) {
	query := `SELECT ` + instaMemberColumns + ` FROM insta_members WHERE member_id = $1`

	return r.findOne(ctx, "FindByMemberID", query, memberID)
}

func (r *InstaMemberRepository) FindByUsername(ctx context.Context, username string) (*entities.InstaMember, error) {
	query := `SELECT ` + instaMemberColumns + ` FROM insta_members WHERE username = $1`

	return r.findOne(ctx, "FindByUsername", query, username)
}

// FindByIDs devolve um mapa id -> InstaMember; ids desconhecidos ficam fora do mapa.
func (r *InstaMemberRepository) FindByIDs(ctx context.Context, ids []int64) (map[int64]entities.InstaMember, error) {
	result := make(map[int64]entities.InstaMember, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	query := `SELECT ` + instaMemberColumns + ` FROM insta_members WHERE id = ANY($1)`

	rows, err := r.readPool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("InstaMemberRepository.FindByIDs - query failed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		instaMember, err := scanInstaMember(rows)
		if err != nil {
			return nil, fmt.Errorf("InstaMemberRepository.FindByIDs - failed to scan row: %w", err)
		}
		result[instaMember.ID] = *instaMember
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("InstaMemberRepository.FindByIDs - error iterating rows: %w", err)
	}

	return result, nil
}

// Upsert é usado pelo seed e pelos testes; em produção quem escreve é o subsistema de verificação.
func (r *InstaMemberRepository) Upsert(ctx context.Context, instaMember *entities.InstaMember) error {
	query := `
		INSERT INTO insta_members (member_id, username, gender, likes)
		VALUES (NULLIF($1, 0), $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET
			member_id = COALESCE(excluded.member_id, insta_members.member_id),
			gender = excluded.gender,
			likes = excluded.likes,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.writePool.QueryRow(ctx, query,
		instaMember.MemberID,
		instaMember.Username,
		instaMember.Gender,
		instaMember.Likes,
	).Scan(&instaMember.ID, &instaMember.CreatedAt, &instaMember.UpdatedAt)
	if err != nil {
		return fmt.Errorf("InstaMemberRepository.Upsert - upsert failed: %w", err)
	}

	return nil
}

func (r *InstaMemberRepository) findOne(ctx context.Context, operation string, query string, args ...any) (*entities.InstaMember, error) {
	instaMember, err := scanInstaMember(r.readPool.QueryRow(ctx, query, args...))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("InstaMemberRepository.%s - %v: %w", operation, args, domain.ErrInstaMemberNotFound)
		}
		return nil, fmt.Errorf("InstaMemberRepository.%s - query failed: %w", operation, err)
	}

	return instaMember, nil
}

func scanInstaMember(row pgx.Row) (*entities.InstaMember, error) {
	var instaMember entities.InstaMember

	err := row.Scan(
		&instaMember.ID,
		&instaMember.MemberID,
		&instaMember.Username,
		&instaMember.Gender,
		&instaMember.Likes,
		&instaMember.CreatedAt,
		&instaMember.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &instaMember, nil
}
