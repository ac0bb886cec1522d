package repositories_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gramgram/src/helper/env"
	"gramgram/src/infra/postgres"
	"gramgram/src/repositories"
	"gramgram/src/test_artefacts/comparer"
	"gramgram/src/test_artefacts/stubs"
	"gramgram/src/test_artefacts/test_seeder"
)

var _ = Describe("LikeablePersonRepository (postgres)", Ordered, func() {
	var (
		readWriteClient *postgres.ReadWriteClient
		testSeeder      test_seeder.TestSeeder
	)

	dbHost := env.GetString("TEST_DB_HOST")
	dbPort := env.GetString("TEST_DB_PORT", "5432")
	dbname := env.GetString("TEST_DB_NAME", "gramgram_test")
	dbUser := env.GetString("TEST_DB_USER", "postgres")
	dbPassword := env.GetString("TEST_DB_PASSWORD", "postgres")

	BeforeAll(func() {
		if dbHost == "" {
			Skip("TEST_DB_HOST not set")
		}

		var err error
		readWriteClient, err = postgres.NewReadWriteClient(dbHost, dbHost, dbPort, dbPort, dbname, dbUser, dbPassword, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(postgres.Migrate(context.Background(), readWriteClient.GetWritePool())).To(Succeed())

		testSeeder = test_seeder.New(readWriteClient.GetWritePool())
	})

	AfterAll(func() {
		if readWriteClient != nil {
			readWriteClient.Close()
		}
	})

	describeStoreContract(func(ctx context.Context) storeFixture {
		testSeeder.TruncateTables(ctx)

		fixture := storeFixture{
			store: repositories.NewLikeablePersonRepository(readWriteClient),
			alice: stubs.NewInstaMemberStub().WithUsername("alice").Get(),
			bob:   stubs.NewInstaMemberStub().WithUsername("bob").Get(),
			carol: stubs.NewInstaMemberStub().WithUsername("carol").Get(),
		}
		testSeeder.InsertInstaMember(ctx, &fixture.alice)
		testSeeder.InsertInstaMember(ctx, &fixture.bob)
		testSeeder.InsertInstaMember(ctx, &fixture.carol)

		return fixture
	})

	Context("InstaMemberRepository", func() {
		It("resolves seeded members and ignores unknown ids", func() {
			ctx := context.Background()
			testSeeder.TruncateTables(ctx)

			alice := stubs.NewInstaMemberStub().WithMemberID(77).WithUsername("alice").Get()
			testSeeder.InsertInstaMember(ctx, &alice)
			instaMembers := repositories.NewInstaMemberRepository(readWriteClient)

			found, err := instaMembers.FindByMemberID(ctx, 77)
			Expect(err).NotTo(HaveOccurred())
			Expect(found.Username).To(Equal("alice"))

			byIDs, err := instaMembers.FindByIDs(ctx, []int64{alice.ID, alice.ID + 100})
			Expect(err).NotTo(HaveOccurred())
			Expect(byIDs).To(HaveLen(1))
			Expect(byIDs[alice.ID].Gender).To(Equal(alice.Gender))
		})
	})

	Context("when a declaration is inserted through the seeder", func() {
		It("is visible to the repository with the same shape", func() {
			ctx := context.Background()
			testSeeder.TruncateTables(ctx)

			alice := stubs.NewInstaMemberStub().WithUsername("alice").Get()
			testSeeder.InsertInstaMember(ctx, &alice)
			seeded := stubs.NewLikeablePersonStub().WithFrom(alice).WithPendingTo("pending_target").Get()
			testSeeder.InsertLikeablePerson(ctx, &seeded)

			rows, err := testSeeder.SelectLikeablePeopleByFromUsername(ctx, "alice")

			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(1))
			Expect(rows[0]).To(BeComparableTo(seeded, comparer.LikeablePersonIgnoringAudit()))
			Expect(rows[0].ToInstaMemberID).To(BeNil())
		})
	})
})
