package test_seeder

import (
	"context"
	"fmt"

	"gramgram/src/domain/entities"
	"gramgram/src/infra/postgres"
)

// InsertInstaMember inserts a verified insta member into the database for testing
func (ts TestSeeder) InsertInstaMember(ctx context.Context, instaMember *entities.InstaMember) {
	query := `
		INSERT INTO insta_members (member_id, username, gender, likes, created_at, updated_at)
		VALUES (NULLIF($1, 0), $2, $3, $4, $5, $6) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		instaMember.MemberID,
		instaMember.Username,
		instaMember.Gender,
		instaMember.Likes,
		instaMember.CreatedAt,
		instaMember.UpdatedAt,
	).Scan(&instaMember.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertInstaMember failed: %v", err))
	}
}

// InsertLikeablePerson inserts a likeable person declaration into the database for testing
func (ts TestSeeder) InsertLikeablePerson(ctx context.Context, likeablePerson *entities.LikeablePerson) {
	query := `
		INSERT INTO likeable_people (
			from_insta_member_id, from_insta_member_username,
			to_insta_member_id, to_insta_member_username,
			attractive_type_code, modify_unlock_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	err := ts.pool.QueryRow(ctx, query,
		postgres.NewNullInt64(likeablePerson.FromInstaMemberID),
		likeablePerson.FromInstaMemberUsername,
		postgres.NewNullInt64(likeablePerson.ToInstaMemberID),
		likeablePerson.ToInstaMemberUsername,
		int(likeablePerson.AttractiveTypeCode),
		likeablePerson.ModifyUnlockDate,
		likeablePerson.CreatedAt,
		likeablePerson.UpdatedAt,
	).Scan(&likeablePerson.ID)

	if err != nil {
		panic(fmt.Sprintf("Seeder.InsertLikeablePerson failed: %v", err))
	}
}
