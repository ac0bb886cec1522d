package likeableperson_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gramgram/src/domain"
	"gramgram/src/domain/entities"
	"gramgram/src/repositories"
	"gramgram/src/services/likeableperson"
	"gramgram/src/test_artefacts/stubs"
)

var _ = Describe("LikeablePersonService lifecycle", func() {
	var (
		ctx          context.Context
		clock        *fakeClock
		store        *repositories.MemoryLikeablePersonRepository
		instaMembers *repositories.MemoryInstaMemberRepository
		publisher    *recordingPublisher
		service      *likeableperson.LikeablePersonService

		alice   entities.InstaMember
		bob     entities.InstaMember
		charlie entities.InstaMember
		actorA  domain.Actor
		actorC  domain.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = newFakeClock()
		store = repositories.NewMemoryLikeablePersonRepository()
		instaMembers = repositories.NewMemoryInstaMemberRepository()
		publisher = &recordingPublisher{}
		service = newService(store, instaMembers, publisher, clock)

		alice = seedInstaMember(ctx, instaMembers, stubs.NewInstaMemberStub().WithMemberID(100).WithUsername("alice"))
		bob = seedInstaMember(ctx, instaMembers, stubs.NewInstaMemberStub().WithMemberID(200).WithUsername("bob"))
		charlie = seedInstaMember(ctx, instaMembers, stubs.NewInstaMemberStub().WithMemberID(300).WithUsername("charlie"))
		actorA = domain.Actor{MemberID: alice.MemberID}
		actorC = domain.Actor{MemberID: charlie.MemberID}
	})

	Context("when the actor cannot be resolved", func() {
		It("returns ErrUnauthenticated for an anonymous actor on every operation", func() {
			_, err := service.Like(ctx, domain.Actor{}, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).To(MatchError(domain.ErrUnauthenticated))

			Expect(service.Cancel(ctx, domain.Actor{}, 1)).To(MatchError(domain.ErrUnauthenticated))

			_, err = service.ModifyAttractive(ctx, domain.Actor{}, domain.ModifyRequest{ID: 1, AttractiveTypeCode: 2})
			Expect(err).To(MatchError(domain.ErrUnauthenticated))

			_, err = service.ListOutgoing(ctx, domain.Actor{})
			Expect(err).To(MatchError(domain.ErrUnauthenticated))

			_, err = service.ListIncoming(ctx, domain.Actor{}, domain.IncomingQuery{})
			Expect(err).To(MatchError(domain.ErrUnauthenticated))
		})

		It("returns ErrNotVerified when the member has no verified handle", func() {
			_, err := service.Like(ctx, domain.Actor{MemberID: 999}, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})

			Expect(err).To(MatchError(domain.ErrNotVerified))
		})
	})

	Context("when declaring", func() {
		It("creates the edge linked to the verified target with the cooldown applied", func() {
			// ACT
			likeablePerson, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "  bob ", AttractiveTypeCode: 1})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(likeablePerson.ID).To(BeNumerically(">", 0))
			Expect(likeablePerson.IsOwnedBy(alice.ID)).To(BeTrue())
			Expect(likeablePerson.FromInstaMemberUsername).To(Equal("alice"))
			Expect(likeablePerson.ToInstaMemberUsername).To(Equal("bob"))
			Expect(likeablePerson.ToInstaMemberID).To(HaveValue(Equal(bob.ID)))
			Expect(likeablePerson.AttractiveTypeCode).To(Equal(entities.AttractiveTypeAppearance))
			Expect(likeablePerson.ModifyUnlockDate).To(Equal(clock.Now().Add(24 * time.Hour)))
			Expect(publisher.EventTypes()).To(Equal([]string{domain.EventLikeablePersonCreated}))
		})

		It("leaves the target pending when the handle is not verified yet", func() {
			likeablePerson, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "dave_unverified", AttractiveTypeCode: 2})

			Expect(err).NotTo(HaveOccurred())
			Expect(likeablePerson.ToInstaMemberID).To(BeNil())
		})

		DescribeTable("rejects invalid input with ErrValidation",
			func(username string, code int) {
				_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: username, AttractiveTypeCode: code})

				Expect(err).To(MatchError(domain.ErrValidation))
				Expect(publisher.EventTypes()).To(BeEmpty())
			},
			Entry("blank username", "   ", 1),
			Entry("username too short", "ab", 1),
			Entry("username too long", "abcdefghijklmnopqrstuvwxyz12345", 1),
			Entry("category zero", "bob", 0),
			Entry("category above range", "bob", 4),
			Entry("own handle", "alice", 1),
		)

		It("accepts usernames at both length limits", func() {
			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "abc", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Like(ctx, actorA, domain.LikeRequest{Username: "abcdefghijklmnopqrstuvwxyz1234", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a second declaration toward the same handle with ErrDuplicateEdge", func() {
			// ARRANGE
			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())

			// ACT
			_, err = service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 2})

			// ASSERT
			Expect(err).To(MatchError(domain.ErrDuplicateEdge))
			outgoing, err := service.ListOutgoing(ctx, actorA)
			Expect(err).NotTo(HaveOccurred())
			Expect(outgoing).To(HaveLen(1))
			Expect(outgoing[0].AttractiveTypeCode).To(Equal(entities.AttractiveTypeAppearance))
		})

		It("lets exactly one of many concurrent declarations win", func() {
			const attempts = 16
			var (
				wg         sync.WaitGroup
				mu         sync.Mutex
				succeeded  int
				duplicates int
			)

			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()

					_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})

					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case errors.Is(err, domain.ErrDuplicateEdge):
						duplicates++
					default:
						Fail("unexpected error: " + err.Error())
					}
				}()
			}
			wg.Wait()

			Expect(succeeded).To(Equal(1))
			Expect(duplicates).To(Equal(attempts - 1))
		})

		It("surfaces storage failures as ErrStorage", func() {
			service = newService(&failingStore{LikeablePersonStore: store, failInsert: true}, instaMembers, publisher, clock)

			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})

			Expect(err).To(MatchError(domain.ErrStorage))
			Expect(err).To(MatchError(errBoom))
			Expect(likeableperson.Outcome(err)).To(Equal("storage"))
		})

		It("still succeeds when the event publisher fails", func() {
			publisher.err = errBoom

			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})

			Expect(err).NotTo(HaveOccurred())
		})

		It("works without a publisher", func() {
			service = newService(store, instaMembers, nil, clock)

			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})

			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("when canceling", func() {
		var declared *entities.LikeablePerson

		BeforeEach(func() {
			var err error
			declared, err = service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())
		})

		It("removes the edge right after the declaration, with no cooldown", func() {
			// ACT
			err := service.Cancel(ctx, actorA, declared.ID)

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			_, err = store.FindByID(ctx, declared.ID)
			Expect(err).To(MatchError(domain.ErrNotFound))
			Expect(publisher.EventTypes()).To(Equal([]string{
				domain.EventLikeablePersonCreated,
				domain.EventLikeablePersonCanceled,
			}))
		})

		It("allows declaring toward the same handle again after cancel", func() {
			Expect(service.Cancel(ctx, actorA, declared.ID)).To(Succeed())

			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 3})

			Expect(err).NotTo(HaveOccurred())
		})

		It("returns ErrForbidden for another actor and keeps the edge", func() {
			_, err := service.CanCancel(ctx, actorC, declared.ID)
			Expect(err).To(MatchError(domain.ErrForbidden))

			Expect(service.Cancel(ctx, actorC, declared.ID)).To(MatchError(domain.ErrForbidden))

			_, err = store.FindByID(ctx, declared.ID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns ErrNotFound for an unknown id and for a second cancel", func() {
			Expect(service.Cancel(ctx, actorA, declared.ID+1000)).To(MatchError(domain.ErrNotFound))

			Expect(service.Cancel(ctx, actorA, declared.ID)).To(Succeed())
			Expect(service.Cancel(ctx, actorA, declared.ID)).To(MatchError(domain.ErrNotFound))
		})
	})

	Context("when the declarer lost verification", func() {
		var orphan entities.LikeablePerson

		BeforeEach(func() {
			orphan = stubs.NewLikeablePersonStub().
				WithTo(bob).
				WithAttractiveTypeCode(1).
				WithModifyUnlockDate(clock.Now().Add(-time.Hour)).
				Get()
			orphan.FromInstaMemberID = nil
			orphan.FromInstaMemberUsername = alice.Username
			Expect(store.Insert(ctx, &orphan)).To(Succeed())
		})

		It("forbids cancel and modify even for the former handle owner", func() {
			Expect(service.Cancel(ctx, actorA, orphan.ID)).To(MatchError(domain.ErrForbidden))

			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: orphan.ID, AttractiveTypeCode: 2})
			Expect(err).To(MatchError(domain.ErrForbidden))

			stored, err := store.FindByID(ctx, orphan.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.AttractiveTypeCode).To(Equal(entities.AttractiveType(1)))
		})
	})

	Context("when modifying the attractive type", func() {
		var declared *entities.LikeablePerson

		BeforeEach(func() {
			var err error
			declared, err = service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())
		})

		It("returns Locked with the remaining time inside the cooldown", func() {
			// ARRANGE
			clock.Advance(30 * time.Second)

			// ACT
			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 2})

			// ASSERT
			Expect(err).To(MatchError(domain.ErrLocked))
			var lockedErr *domain.LockedError
			Expect(errors.As(err, &lockedErr)).To(BeTrue())
			Expect(lockedErr.Remaining).To(Equal("23 hours 59 minutes"))
			Expect(lockedErr.ModifyUnlockDate).To(Equal(declared.ModifyUnlockDate))

			_, err = service.CanModify(ctx, actorA, declared.ID)
			Expect(err).To(MatchError(domain.ErrLocked))
		})

		It("returns NoChange for the same category once unlocked", func() {
			clock.Advance(24 * time.Hour)

			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 1})

			Expect(err).To(MatchError(domain.ErrNoChange))
		})

		It("checks existence, ownership and input before the cooldown", func() {
			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID + 1000, AttractiveTypeCode: 2})
			Expect(err).To(MatchError(domain.ErrNotFound))

			_, err = service.ModifyAttractive(ctx, actorC, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 2})
			Expect(err).To(MatchError(domain.ErrForbidden))

			_, err = service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 9})
			Expect(err).To(MatchError(domain.ErrValidation))
		})

		It("updates the category, pushes the unlock date and locks again", func() {
			// ARRANGE
			clock.Advance(25 * time.Hour)

			check, err := service.CanModify(ctx, actorA, declared.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(check.Remaining).To(Equal("0 minutes"))

			// ACT
			updated, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 2})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.AttractiveTypeCode).To(Equal(entities.AttractiveTypePersonality))
			Expect(updated.ModifyUnlockDate).To(BeTemporally(">", declared.ModifyUnlockDate))
			Expect(updated.ModifyUnlockDate).To(Equal(clock.Now().Add(24 * time.Hour)))

			_, err = service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 3})
			Expect(err).To(MatchError(domain.ErrLocked))

			Expect(publisher.events).To(HaveLen(2))
			Expect(publisher.events[1].EventType).To(Equal(domain.EventLikeablePersonModified))
			Expect(publisher.events[1].PreviousAttractiveTypeCode).To(Equal(entities.AttractiveTypeAppearance))
		})

		It("reports Locked when a concurrent modification wins the race", func() {
			// ARRANGE
			clock.Advance(25 * time.Hour)
			racing := &failingStore{LikeablePersonStore: store, conflictOnce: true}
			racing.onConflict = func() {
				_, err := store.UpdateAttractiveType(ctx, declared.ID, declared.ModifyUnlockDate, entities.AttractiveTypeAbility, clock.Now().Add(24*time.Hour))
				Expect(err).NotTo(HaveOccurred())
			}
			service = newService(racing, instaMembers, publisher, clock)

			// ACT
			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 2})

			// ASSERT
			Expect(err).To(MatchError(domain.ErrLocked))
			current, err := store.FindByID(ctx, declared.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(current.AttractiveTypeCode).To(Equal(entities.AttractiveTypeAbility))
		})

		It("reports NotFound when the edge is canceled during the modification", func() {
			clock.Advance(25 * time.Hour)
			racing := &failingStore{LikeablePersonStore: store, conflictOnce: true}
			racing.onConflict = func() {
				Expect(store.Delete(ctx, declared.ID)).Error().NotTo(HaveOccurred())
			}
			service = newService(racing, instaMembers, publisher, clock)

			_, err := service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: declared.ID, AttractiveTypeCode: 2})

			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Context("walkthrough", func() {
		It("follows declare, locked modify, foreign cancel and owner cancel", func() {
			e1, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())
			Expect(e1.ModifyUnlockDate).To(Equal(clock.Now().Add(24 * time.Hour)))

			clock.Advance(time.Minute)
			_, err = service.ModifyAttractive(ctx, actorA, domain.ModifyRequest{ID: e1.ID, AttractiveTypeCode: 2})
			var lockedErr *domain.LockedError
			Expect(errors.As(err, &lockedErr)).To(BeTrue())
			Expect(lockedErr.Remaining).To(Equal("23 hours 59 minutes"))

			Expect(service.Cancel(ctx, actorC, e1.ID)).To(MatchError(domain.ErrForbidden))
			Expect(service.Cancel(ctx, actorA, e1.ID)).To(Succeed())

			_, err = store.FindByID(ctx, e1.ID)
			Expect(err).To(MatchError(domain.ErrNotFound))
		})
	})

	Context("when a pending target becomes verified", func() {
		It("links the pending declarations and shows them as incoming", func() {
			// ARRANGE
			_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: "erin", AttractiveTypeCode: 2})
			Expect(err).NotTo(HaveOccurred())
			_, err = service.Like(ctx, actorC, domain.LikeRequest{Username: "erin", AttractiveTypeCode: 3})
			Expect(err).NotTo(HaveOccurred())

			erin := seedInstaMember(ctx, instaMembers, stubs.NewInstaMemberStub().WithMemberID(400).WithUsername("erin"))

			// ACT
			linked, err := service.LinkPendingTargets(ctx, domain.InstaMemberVerifiedEvent{
				ID:       erin.ID,
				MemberID: erin.MemberID,
				Username: erin.Username,
			})

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(linked).To(Equal(2))

			incoming, err := service.ListIncoming(ctx, domain.Actor{MemberID: erin.MemberID}, domain.IncomingQuery{SortCode: domain.SortIDAsc})
			Expect(err).NotTo(HaveOccurred())
			Expect(incoming).To(HaveLen(2))
			Expect(incoming[0].FromInstaMemberUsername).To(Equal("alice"))
			Expect(incoming[1].FromInstaMemberUsername).To(Equal("charlie"))

			linked, err = service.LinkPendingTargets(ctx, domain.InstaMemberVerifiedEvent{ID: erin.ID, Username: erin.Username})
			Expect(err).NotTo(HaveOccurred())
			Expect(linked).To(BeZero())
		})

		It("rejects events without id or username", func() {
			_, err := service.LinkPendingTargets(ctx, domain.InstaMemberVerifiedEvent{Username: "erin"})

			Expect(err).To(MatchError(domain.ErrValidation))
		})
	})

	Context("when listing outgoing declarations", func() {
		It("returns only the actor's edges in ascending id order", func() {
			for _, username := range []string{"bob", "charlie", "zed_pending"} {
				_, err := service.Like(ctx, actorA, domain.LikeRequest{Username: username, AttractiveTypeCode: 1})
				Expect(err).NotTo(HaveOccurred())
			}
			_, err := service.Like(ctx, actorC, domain.LikeRequest{Username: "bob", AttractiveTypeCode: 1})
			Expect(err).NotTo(HaveOccurred())

			outgoing, err := service.ListOutgoing(ctx, actorA)

			Expect(err).NotTo(HaveOccurred())
			Expect(outgoing).To(HaveLen(3))
			Expect(outgoing[0].ToInstaMemberUsername).To(Equal("bob"))
			Expect(outgoing[1].ToInstaMemberUsername).To(Equal("charlie"))
			Expect(outgoing[2].ToInstaMemberUsername).To(Equal("zed_pending"))
		})
	})
})
