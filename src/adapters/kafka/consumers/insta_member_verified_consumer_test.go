package consumers_test

import (
	"context"
	"errors"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gramgram/src/adapters/kafka/consumers"
	"gramgram/src/domain"
	"gramgram/src/infra/debezium"
	"gramgram/src/infra/kafka"
)

type fakeLinker struct {
	calls []domain.InstaMemberVerifiedEvent
	errs  map[string]error
}

func (l *fakeLinker) LinkPendingTargets(_ context.Context, event domain.InstaMemberVerifiedEvent) (int, error) {
	l.calls = append(l.calls, event)
	if err, ok := l.errs[event.Username]; ok {
		return 0, err
	}
	return 1, nil
}

var _ = Describe("InstaMemberVerifiedConsumer", func() {
	var (
		ctx      context.Context
		linker   *fakeLinker
		consumer *consumers.InstaMemberVerifiedConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		linker = &fakeLinker{errs: map[string]error{}}
		consumer = consumers.NewInstaMemberVerifiedConsumer(slog.New(slog.NewTextHandler(io.Discard, nil)), linker)
	})

	message := func(value string) kafka.Message {
		return kafka.Message{Value: []byte(value)}
	}

	It("links every verified username once, keeping the last event of the batch", func() {
		// ACT
		err := consumer.HandleMessages(ctx, []kafka.Message{
			message(`{"id": 1, "member_id": 10, "username": "bob", "gender": "M", "likes": 5}`),
			message(`{"id": 2, "member_id": 20, "username": "carol", "gender": "W", "likes": 7}`),
			message(`{"id": 3, "member_id": 30, "username": "bob", "gender": "M", "likes": 9}`),
		})

		// ASSERT
		Expect(err).NotTo(HaveOccurred())
		Expect(linker.calls).To(HaveLen(2))
		Expect(linker.calls[0].Username).To(Equal("bob"))
		Expect(linker.calls[0].ID).To(Equal(int64(3)))
		Expect(linker.calls[1].Username).To(Equal("carol"))
	})

	It("treats usernames differing only by surrounding spaces as the same handle", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			message(`{"id": 1, "username": " bob"}`),
			message(`{"id": 2, "username": "bob "}`),
			message(`{"id": 3, "username": "   "}`),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(linker.calls).To(HaveLen(1))
		Expect(linker.calls[0].Username).To(Equal("bob"))
		Expect(linker.calls[0].ID).To(Equal(int64(2)))
	})

	It("skips malformed and incomplete messages", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{
			message(`not json`),
			message(`{"id": 0, "username": "bob"}`),
			message(`{"id": 4, "username": ""}`),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(linker.calls).To(BeEmpty())
	})

	It("skips validation failures but fails the batch on storage errors", func() {
		linker.errs["bob"] = domain.Validation("bad event")
		linker.errs["carol"] = errors.Join(domain.ErrStorage, errors.New("connection refused"))

		err := consumer.HandleMessages(ctx, []kafka.Message{
			message(`{"id": 1, "username": "bob"}`),
			message(`{"id": 2, "username": "carol"}`),
		})

		Expect(err).To(MatchError(domain.ErrStorage))
		Expect(linker.calls).To(HaveLen(2))
	})

	It("accepts an empty batch", func() {
		Expect(consumer.HandleMessages(ctx, nil)).To(Succeed())
	})

	Context("with the insta_members CDC stream", func() {
		BeforeEach(func() {
			consumer.WithDebeziumSerializer(debezium.NewCDCSerializer("insta_members"))
		})

		It("maps the after row of creates and updates", func() {
			err := consumer.HandleMessages(ctx, []kafka.Message{
				message(`{"op": "c", "source": {"table": "insta_members"},
					"after": {"id": 7, "member_id": null, "username": "dora", "gender": "W", "likes": 12}}`),
				message(`{"op": "u", "source": {"table": "insta_members"}, "before": {"id": 8},
					"after": {"id": 8, "member_id": 80, "username": "enzo", "gender": "M", "likes": 3}}`),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(linker.calls).To(Equal([]domain.InstaMemberVerifiedEvent{
				{ID: 7, Username: "dora", Gender: "W", Likes: 12},
				{ID: 8, MemberID: 80, Username: "enzo", Gender: "M", Likes: 3},
			}))
		})

		It("ignores deletes, other tables and broken rows", func() {
			err := consumer.HandleMessages(ctx, []kafka.Message{
				message(`{"op": "d", "source": {"table": "insta_members"}, "before": {"id": 7, "username": "dora"}}`),
				message(`{"op": "c", "source": {"table": "likeable_people"}, "after": {"id": 1, "username": "x"}}`),
				message(`{"op": "c", "source": {"table": "insta_members"}, "after": {"id": "seven", "username": "dora"}}`),
				message(`{"id": 1, "username": "bob"}`),
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(linker.calls).To(BeEmpty())
		})
	})
})
