package auth_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	oidc "github.com/coreos/go-oidc"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/auth"
)

const testAudience = "client-id.apps.googleusercontent.com"

// fakeChecker stands in for the OIDC signature verification. The claims
// themselves are decoded from the raw token.
type fakeChecker struct {
	err error
}

func (f *fakeChecker) Verify(_ context.Context, _ string) (*oidc.IDToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &oidc.IDToken{}, nil
}

func signTestToken(claims jwt.MapClaims) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("irrelevant-signing-key-for-tests"))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("GoogleVerifier", func() {
	var (
		checker  *fakeChecker
		verifier *auth.GoogleVerifier
		baseTime time.Time
		logger   *slog.Logger
	)

	BeforeEach(func() {
		checker = &fakeChecker{}
		baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		verifier = auth.NewVerifier(checker, testAudience, 5*time.Minute, logger).
			WithClock(func() time.Time { return baseTime })
	})

	validClaims := func() jwt.MapClaims {
		return jwt.MapClaims{
			"email":   "student@ductridn.edu.vn",
			"name":    "A Student",
			"picture": "https://lh3.googleusercontent.com/a/photo",
			"aud":     testAudience,
			"iat":     time.Date(2025, 6, 1, 11, 59, 0, 0, time.UTC).Unix(),
			"exp":     time.Date(2025, 6, 1, 12, 59, 0, 0, time.UTC).Unix(),
		}
	}

	It("rejects an empty token before touching the checker", func() {
		_, err := verifier.Verify(context.Background(), "  ")
		Expect(err).To(MatchError(auth.ErrMissingToken))
	})

	Context("when the checker accepts the token", func() {
		It("returns the identity claims", func() {
			claims, err := verifier.Verify(context.Background(), signTestToken(validClaims()))
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Email).To(Equal("student@ductridn.edu.vn"))
			Expect(claims.Name).To(Equal("A Student"))
			Expect(claims.Audience).To(Equal(testAudience))
		})

		It("accepts a token whose nbf is still in the future", func() {
			mc := validClaims()
			mc["nbf"] = baseTime.Add(2 * time.Minute).Unix()

			claims, err := verifier.Verify(context.Background(), signTestToken(mc))
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.NotBefore).NotTo(BeNil())
			Expect(claims.NotBefore.After(baseTime)).To(BeTrue())
		})
	})

	Context("when the checker rejects the token for clock skew", func() {
		BeforeEach(func() {
			checker.err = errors.New("oidc: token used before issued (iat)")
		})

		It("accepts a token with the right audience and a live expiry", func() {
			claims, err := verifier.Verify(context.Background(), signTestToken(validClaims()))
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Email).To(Equal("student@ductridn.edu.vn"))
		})

		It("accepts a token expired within the grace window", func() {
			mc := validClaims()
			mc["exp"] = baseTime.Add(-2 * time.Minute).Unix()

			_, err := verifier.Verify(context.Background(), signTestToken(mc))
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a token expired beyond the grace window", func() {
			mc := validClaims()
			mc["exp"] = baseTime.Add(-10 * time.Minute).Unix()

			_, err := verifier.Verify(context.Background(), signTestToken(mc))
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects a token for another application", func() {
			mc := validClaims()
			mc["aud"] = "someone-elses-client-id"

			_, err := verifier.Verify(context.Background(), signTestToken(mc))
			Expect(err).To(MatchError(auth.ErrAudienceMismatch))
		})

		It("rejects a token without an expiry", func() {
			mc := validClaims()
			delete(mc, "exp")

			_, err := verifier.Verify(context.Background(), signTestToken(mc))
			Expect(err).To(MatchError(auth.ErrMalformedToken))
		})

		It("rejects a token that does not decode", func() {
			_, err := verifier.Verify(context.Background(), "x.y")
			Expect(err).To(MatchError(auth.ErrMalformedToken))
		})
	})

	Context("when the checker rejects the token for other reasons", func() {
		It("maps audience failures", func() {
			checker.err = errors.New("oidc: expected audience \"a\" got [\"b\"]")
			_, err := verifier.Verify(context.Background(), signTestToken(validClaims()))
			Expect(err).To(MatchError(auth.ErrAudienceMismatch))
		})

		It("maps expiry failures", func() {
			checker.err = errors.New("oidc: token is expired")
			_, err := verifier.Verify(context.Background(), signTestToken(validClaims()))
			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("maps malformed tokens", func() {
			checker.err = errors.New("oidc: malformed jwt, expected 3 parts got 1")
			_, err := verifier.Verify(context.Background(), "garbage")
			Expect(err).To(MatchError(auth.ErrMalformedToken))
		})

		It("treats anything else as a signature failure", func() {
			checker.err = errors.New("failed to verify id token signature")
			_, err := verifier.Verify(context.Background(), signTestToken(validClaims()))
			Expect(err).To(MatchError(auth.ErrSignatureInvalid))
		})
	})
})
