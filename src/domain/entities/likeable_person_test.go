package entities_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gramgram/src/domain/entities"
)

var _ = Describe("AttractiveType", func() {
	DescribeTable("validity and display name",
		func(code entities.AttractiveType, valid bool, name string) {
			Expect(code.IsValid()).To(Equal(valid))
			Expect(code.DisplayName()).To(Equal(name))
		},
		Entry("appearance", entities.AttractiveTypeAppearance, true, "appearance"),
		Entry("personality", entities.AttractiveTypePersonality, true, "personality"),
		Entry("ability", entities.AttractiveTypeAbility, true, "ability"),
		Entry("zero", entities.AttractiveType(0), false, "unknown"),
		Entry("out of range", entities.AttractiveType(4), false, "unknown"),
	)
})

var _ = Describe("LikeablePerson", func() {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	Context("ownership", func() {
		It("is owned only by the declaring insta member", func() {
			fromID := int64(7)
			likeablePerson := entities.LikeablePerson{FromInstaMemberID: &fromID}

			Expect(likeablePerson.IsOwnedBy(7)).To(BeTrue())
			Expect(likeablePerson.IsOwnedBy(8)).To(BeFalse())
		})

		It("has no owner once the declarer lost verification", func() {
			likeablePerson := entities.LikeablePerson{}

			Expect(likeablePerson.IsOwnedBy(0)).To(BeFalse())
		})
	})

	Context("modify cooldown", func() {
		It("is locked before the unlock date and unlocked from it on", func() {
			likeablePerson := entities.LikeablePerson{ModifyUnlockDate: now}

			Expect(likeablePerson.IsModifyUnlocked(now.Add(-time.Nanosecond))).To(BeFalse())
			Expect(likeablePerson.IsModifyUnlocked(now)).To(BeTrue())
			Expect(likeablePerson.IsModifyUnlocked(now.Add(time.Minute))).To(BeTrue())
		})
	})
})
