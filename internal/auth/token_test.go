package auth_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/auth"
)

var _ = Describe("JWTTokenGenerator", func() {
	const secret = "test-secret-0123456789-0123456789"

	var (
		generator *auth.JWTTokenGenerator
		baseTime  time.Time
	)

	BeforeEach(func() {
		baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		generator = auth.NewJWTTokenGenerator(secret, 24*time.Hour).
			WithClock(func() time.Time { return baseTime })
	})

	Describe("Issue", func() {
		It("mints a credential that decodes back to the same principal", func() {
			user := auth.User{ID: 7, Email: "an@example.com", Role: auth.RoleAdmin}

			token, expiresAt, err := generator.Issue(user)
			Expect(err).NotTo(HaveOccurred())
			Expect(expiresAt).To(Equal(baseTime.Add(24 * time.Hour)))

			claims, err := generator.Decode(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(7)))
			Expect(claims.Email).To(Equal("an@example.com"))
			Expect(claims.Role).To(Equal(auth.RoleAdmin))
		})

		It("embeds the role at issuance time, not a live lookup", func() {
			token, _, err := generator.Issue(auth.User{ID: 7, Email: "an@example.com", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			// The credential keeps saying member no matter what happens to
			// the stored account afterwards.
			claims, err := generator.Decode(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Role).To(Equal(auth.RoleMember))
		})
	})

	Describe("Decode", func() {
		It("rejects an expired credential", func() {
			token, _, err := generator.Issue(auth.User{ID: 7, Email: "an@example.com", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			late := auth.NewJWTTokenGenerator(secret, 24*time.Hour).
				WithClock(func() time.Time { return baseTime.Add(25 * time.Hour) })
			_, err = late.Decode(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("rejects a credential signed with a different secret", func() {
			other := auth.NewJWTTokenGenerator("another-secret-0123456789-012345", 24*time.Hour).
				WithClock(func() time.Time { return baseTime })
			token, _, err := other.Issue(auth.User{ID: 7, Email: "an@example.com", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			_, err = generator.Decode(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("rejects garbage", func() {
			_, err := generator.Decode("not-a-jwt")
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("rejects a structurally valid credential with an invalid role", func() {
			token, _, err := generator.Issue(auth.User{ID: 7, Email: "an@example.com", Role: auth.Role("root")})
			Expect(err).NotTo(HaveOccurred())

			_, err = generator.Decode(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})

		It("rejects a credential without a user id", func() {
			token, _, err := generator.Issue(auth.User{Email: "an@example.com", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			_, err = generator.Decode(token)
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})
	})
})
