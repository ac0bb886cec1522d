package test_seeder

import (
	"context"

	"gramgram/src/domain/entities"
	"gramgram/src/infra/postgres"

	"github.com/jackc/pgtype"
)

// SelectLikeablePeopleByFromUsername retrieves the declarations made by a username ordered by id
func (ts TestSeeder) SelectLikeablePeopleByFromUsername(ctx context.Context, fromUsername string) ([]entities.LikeablePerson, error) {
	query := `SELECT id, from_insta_member_id, from_insta_member_username, to_insta_member_id,
				to_insta_member_username, attractive_type_code, modify_unlock_date, created_at, updated_at
			  FROM likeable_people WHERE from_insta_member_username = $1
			  ORDER BY id`

	rows, err := ts.pool.Query(ctx, query, fromUsername)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likeablePeople []entities.LikeablePerson
	for rows.Next() {
		var (
			likeablePerson     entities.LikeablePerson
			fromInstaMemberID  pgtype.Int8
			toInstaMemberID    pgtype.Int8
			attractiveTypeCode int16
		)

		err := rows.Scan(
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
		likeablePeople = append(likeablePeople, likeablePerson)
	}

	return likeablePeople, rows.Err()
}
