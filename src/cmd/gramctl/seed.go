package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/repositories"
	"gramgram/src/services/likeableperson"

	"github.com/go-faker/faker/v4"
	"github.com/spf13/cobra"
)

var genders = []string{"M", "W"}

func runSeed(cmd *cobra.Command, args []string) error {
	members, _ := cmd.Flags().GetInt("members")
	likesPerMember, _ := cmd.Flags().GetInt("likes-per-member")
	pendingRatio, _ := cmd.Flags().GetFloat64("pending-ratio")
	memberIDOffset, _ := cmd.Flags().GetInt64("member-id-offset")

	if members < 2 {
		return fmt.Errorf("--members must be at least 2")
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	client, err := newReadWriteClient()
	if err != nil {
		return err
	}
	defer client.Close()

	instaMemberRepository := repositories.NewInstaMemberRepository(client)
	service := likeableperson.NewLikeablePersonService(
		newLogger(),
		repositories.NewLikeablePersonRepository(client),
		instaMemberRepository,
		nil,
		likeableperson.DefaultModifyCooldown,
	)

	seeded, err := seedInstaMembers(ctx, instaMemberRepository, members, memberIDOffset)
	if err != nil {
		return err
	}

	created, skipped := 0, 0
	for _, from := range seeded {
		actor := domain.Actor{MemberID: from.MemberID}

		for i := 0; i < likesPerMember; i++ {
			_, err := service.Like(ctx, actor, domain.LikeRequest{
				Username:           pickTarget(seeded, from, pendingRatio),
				AttractiveTypeCode: rand.IntN(3) + 1,
			})
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDuplicateEdge), errors.Is(err, domain.ErrValidation):
				skipped++
			default:
				return err
			}
		}
	}

	fmt.Printf("seeded %d insta members, %d likeable people (%d skipped)\n", len(seeded), created, skipped)
	return nil
}

func seedInstaMembers(ctx context.Context, repository *repositories.InstaMemberRepository, count int, memberIDOffset int64) ([]entities.InstaMember, error) {
	seeded := make([]entities.InstaMember, 0, count)

	for i := 0; i < count; i++ {
		instaMember := entities.InstaMember{
			MemberID: memberIDOffset + int64(i),
			Username: fakeUsername(),
			Gender:   genders[rand.IntN(len(genders))],
			Likes:    rand.Int64N(10_000),
		}

		if err := repository.Upsert(ctx, &instaMember); err != nil {
			return nil, err
		}
		seeded = append(seeded, instaMember)
	}

	return seeded, nil
}

// pickTarget escolhe outro membro seedado ou, na fração pendente, um username sem verificação.
func pickTarget(seeded []entities.InstaMember, from entities.InstaMember, pendingRatio float64) string {
	if rand.Float64() < pendingRatio {
		return fakeUsername()
	}

	for {
		target := seeded[rand.IntN(len(seeded))]
		if target.ID != from.ID {
			return target.Username
		}
	}
}

func fakeUsername() string {
	username := strings.ToLower(faker.Username())
	if len(username) > 24 {
		username = username[:24]
	}
	return fmt.Sprintf("%s_%04d", username, rand.IntN(10_000))
}
