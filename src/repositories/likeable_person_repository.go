package repositories

import (
	"context"
	"fmt"
	"time"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/infra/postgres"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const likeablePersonColumns = `
	id,
	from_insta_member_id,
	from_insta_member_username,
	to_insta_member_id,
	to_insta_member_username,
	attractive_type_code,
	modify_unlock_date,
	created_at,
	updated_at`

type LikeablePersonRepository struct {
	readPool  *pgxpool.Pool
	writePool *pgxpool.Pool
}

func NewLikeablePersonRepository(readWriteClient *postgres.ReadWriteClient) *LikeablePersonRepository {
	return &LikeablePersonRepository{
		readPool:  readWriteClient.GetReadPool(),
		writePool: readWriteClient.GetWritePool(),
	}
}

func (r *LikeablePersonRepository) FindByID(ctx context.Context, id int64) (*entities.LikeablePerson, error) {
	// Leitura no primário: o resultado decide ownership e cooldown de uma mutação.
	query := `SELECT ` + likeablePersonColumns + ` FROM likeable_people WHERE id = $1`

	likeablePerson, err := scanLikeablePerson(r.writePool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("LikeablePersonRepository.FindByID - id %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("LikeablePersonRepository.FindByID - query failed: %w", err)
	}

	return likeablePerson, nil
}

func (r *LikeablePersonRepository) FindByFromAndToUsername(ctx context.Context, fromInstaMemberID int64, toUsername string) (*entities.LikeablePerson, error) {
	query := `SELECT ` + likeablePersonColumns + `
		FROM likeable_people
		WHERE from_insta_member_id = $1 AND to_insta_member_username = $2`

	likeablePerson, err := scanLikeablePerson(r.writePool.QueryRow(ctx, query, fromInstaMemberID, toUsername))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("LikeablePersonRepository.FindByFromAndToUsername - %d -> %s: %w", fromInstaMemberID, toUsername, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("LikeablePersonRepository.FindByFromAndToUsername - query failed: %w", err)
	}

	return likeablePerson, nil
}

func (r *LikeablePersonRepository) ListByToInstaMemberID(ctx context.Context, toInstaMemberID int64) ([]entities.LikeablePerson, error) {
	query := `SELECT ` + likeablePersonColumns + ` FROM likeable_people WHERE to_insta_member_id = $1`

	return r.list(ctx, "ListByToInstaMemberID", query, toInstaMemberID)
}

func (r *LikeablePersonRepository) ListByFromInstaMemberID(ctx context.Context, fromInstaMemberID int64) ([]entities.LikeablePerson, error) {
	query := `SELECT ` + likeablePersonColumns + ` FROM likeable_people WHERE from_insta_member_id = $1 ORDER BY id`

	return r.list(ctx, "ListByFromInstaMemberID", query, fromInstaMemberID)
}

// Insert usa ON CONFLICT DO NOTHING: entre dois "declare" concorrentes para o
// mesmo (from, to_username) só um recebe a linha de volta.
func (r *LikeablePersonRepository) Insert(ctx context.Context, likeablePerson *entities.LikeablePerson) error {
	query := `
		INSERT INTO likeable_people (
			from_insta_member_id,
			from_insta_member_username,
			to_insta_member_id,
			to_insta_member_username,
			attractive_type_code,
			modify_unlock_date
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (from_insta_member_id, to_insta_member_username) DO NOTHING
		RETURNING id, modify_unlock_date, created_at, updated_at`

	err := r.writePool.QueryRow(ctx, query,
		postgres.NewNullInt64(likeablePerson.FromInstaMemberID),
		likeablePerson.FromInstaMemberUsername,
		postgres.NewNullInt64(likeablePerson.ToInstaMemberID),
		likeablePerson.ToInstaMemberUsername,
		int16(likeablePerson.AttractiveTypeCode),
		likeablePerson.ModifyUnlockDate,
	).Scan(&likeablePerson.ID, &likeablePerson.ModifyUnlockDate, &likeablePerson.CreatedAt, &likeablePerson.UpdatedAt)

	if err != nil {
		if postgres.IsNoRows(err) || postgres.IsUniqueViolation(err) {
			return fmt.Errorf("LikeablePersonRepository.Insert - %s: %w", likeablePerson.ToInstaMemberUsername, domain.ErrDuplicateEdge)
		}
		return fmt.Errorf("LikeablePersonRepository.Insert - insert failed: %w", err)
	}

	return nil
}

// UpdateAttractiveType só aplica a mudança se modify_unlock_date ainda for o
// valor lido pelo chamador (controle otimista). Caso contrário retorna ErrConflict.
func (r *LikeablePersonRepository) UpdateAttractiveType(
	ctx context.Context,
	id int64,
	expectedModifyUnlockDate time.Time,
	attractiveTypeCode entities.AttractiveType,
	modifyUnlockDate time.Time,
) (*entities.LikeablePerson, error) {
	query := `
		UPDATE likeable_people SET
			attractive_type_code = $3,
			modify_unlock_date = $4,
			updated_at = NOW()
		WHERE
			id = $1 AND modify_unlock_date = $2
		RETURNING ` + likeablePersonColumns

	likeablePerson, err := scanLikeablePerson(r.writePool.QueryRow(ctx, query, id, expectedModifyUnlockDate, int16(attractiveTypeCode), modifyUnlockDate))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("LikeablePersonRepository.UpdateAttractiveType - id %d: %w", id, domain.ErrConflict)
		}
		return nil, fmt.Errorf("LikeablePersonRepository.UpdateAttractiveType - update failed: %w", err)
	}

	return likeablePerson, nil
}

func (r *LikeablePersonRepository) Delete(ctx context.Context, id int64) (*entities.LikeablePerson, error) {
	query := `DELETE FROM likeable_people WHERE id = $1 RETURNING ` + likeablePersonColumns

	deleted, err := scanLikeablePerson(r.writePool.QueryRow(ctx, query, id))
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, fmt.Errorf("LikeablePersonRepository.Delete - id %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("LikeablePersonRepository.Delete - delete failed: %w", err)
	}

	return deleted, nil
}

// LinkToInstaMember preenche to_insta_member_id das declarações feitas antes
// do alvo verificar o handle. Retorna os ids alterados.
func (r *LikeablePersonRepository) LinkToInstaMember(ctx context.Context, toUsername string, toInstaMemberID int64) ([]int64, error) {
	query := `
		UPDATE likeable_people SET
			to_insta_member_id = $2,
			updated_at = NOW()
		WHERE
			to_insta_member_username = $1 AND to_insta_member_id IS NULL
		RETURNING id`

	rows, err := r.writePool.Query(ctx, query, toUsername, toInstaMemberID)
	if err != nil {
		return nil, fmt.Errorf("LikeablePersonRepository.LinkToInstaMember - update failed: %w", err)
	}
	defer rows.Close()

	var linkedIDs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("LikeablePersonRepository.LinkToInstaMember - failed to scan id: %w", err)
		}
		linkedIDs = append(linkedIDs, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LikeablePersonRepository.LinkToInstaMember - error iterating rows: %w", err)
	}

	return linkedIDs, nil
}

func (r *LikeablePersonRepository) list(ctx context.Context, operation string, query string, args ...any) ([]entities.LikeablePerson, error) {
	rows, err := r.readPool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("LikeablePersonRepository.%s - query failed: %w", operation, err)
	}
	defer rows.Close()

	likeablePeople := make([]entities.LikeablePerson, 0)
	for rows.Next() {
		likeablePerson, err := scanLikeablePerson(rows)
		if err != nil {
			return nil, fmt.Errorf("LikeablePersonRepository.%s - failed to scan row: %w", operation, err)
		}
		likeablePeople = append(likeablePeople, *likeablePerson)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LikeablePersonRepository.%s - error iterating rows: %w", operation, err)
	}

	return likeablePeople, nil
}

func scanLikeablePerson(row pgx.Row) (*entities.LikeablePerson, error) {
	var (
		likeablePerson     entities.LikeablePerson
		fromInstaMemberID  pgtype.Int8
		toInstaMemberID    pgtype.Int8
		attractiveTypeCode int16
	)

	err := row.Scan(
		&likeablePerson.ID,
		&fromInstaMemberID,
		&likeablePerson.FromInstaMemberUsername,
		&toInstaMemberID,
		&likeablePerson.ToInstaMemberUsername,
		&attractiveTypeCode,
		&likeablePerson.ModifyUnlockDate,
		&likeablePerson.CreatedAt,
		&likeablePerson.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	likeablePerson.FromInstaMemberID = postgres.ScanNullInt64(fromInstaMemberID)
	likeablePerson.ToInstaMemberID = postgres.ScanNullInt64(toInstaMemberID)
	likeablePerson.AttractiveTypeCode = entities.AttractiveType(attractiveTypeCode)

	return &likeablePerson, nil
}
