package auth_test

import (
	"context"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/core/events"
)

type fakeVerifier struct {
	claims *auth.IdentityClaims
	err    error
}

func (f *fakeVerifier) Verify(_ context.Context, _ string) (*auth.IdentityClaims, error) {
	return f.claims, f.err
}

type fakeAccountStore struct {
	accounts      map[int64]*auth.Account
	upserted      []auth.LoginProfile
	touched       []int64
	setOffline    []int64
	upsertAccount *auth.Account
	upsertErr     error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[int64]*auth.Account)}
}

func (f *fakeAccountStore) UpsertOnLogin(_ context.Context, profile auth.LoginProfile) (*auth.Account, error) {
	f.upserted = append(f.upserted, profile)
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return f.upsertAccount, nil
}

func (f *fakeAccountStore) GetByID(_ context.Context, id int64) (*auth.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) TouchActivity(_ context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeAccountStore) SetOffline(_ context.Context, id int64) error {
	f.setOffline = append(f.setOffline, id)
	return nil
}

type fakeWhitelist struct {
	active  map[string]bool
	queried []string
}

func (f *fakeWhitelist) IsActive(_ context.Context, email string) (bool, error) {
	f.queried = append(f.queried, email)
	return f.active[email], nil
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

var _ = Describe("AuthService", func() {
	var (
		verifier  *fakeVerifier
		store     *fakeAccountStore
		whitelist *fakeWhitelist
		publisher *fakePublisher
		tokens    *auth.JWTTokenGenerator
		service   *auth.Service
		logger    *slog.Logger
	)

	newService := func(enforced bool) *auth.Service {
		return auth.NewService(verifier, tokens, store, whitelist, publisher, enforced, logger)
	}

	BeforeEach(func() {
		verifier = &fakeVerifier{
			claims: &auth.IdentityClaims{
				Email:   "Student@Ductridn.Edu.Vn",
				Name:    "A Student",
				Picture: "https://example.com/photo.png",
			},
		}
		store = newFakeAccountStore()
		store.upsertAccount = &auth.Account{
			ID:       7,
			Email:    "student@ductridn.edu.vn",
			FullName: "A Student",
			Role:     auth.RoleMember,
		}
		whitelist = &fakeWhitelist{active: map[string]bool{"student@ductridn.edu.vn": true}}
		publisher = &fakePublisher{}
		tokens = auth.NewJWTTokenGenerator("test-secret-0123456789-0123456789", 24*time.Hour)
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = newService(true)
	})

	Describe("LoginWithGoogle", func() {
		It("verifies, whitelists, upserts and issues a session", func() {
			session, err := service.LoginWithGoogle(context.Background(), "raw-token", "10.0.0.1", "Firefox")
			Expect(err).NotTo(HaveOccurred())
			Expect(session.Token).NotTo(BeEmpty())
			Expect(session.Account.ID).To(Equal(int64(7)))

			claims, err := tokens.Decode(session.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.UserID).To(Equal(int64(7)))
			Expect(claims.Role).To(Equal(auth.RoleMember))
		})

		It("normalizes the email before any lookup or write", func() {
			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(whitelist.queried).To(ConsistOf("student@ductridn.edu.vn"))
			Expect(store.upserted).To(HaveLen(1))
			Expect(store.upserted[0].Email).To(Equal("student@ductridn.edu.vn"))
		})

		It("captures the request metadata on the stored profile", func() {
			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "10.0.0.1", "Firefox on Linux")
			Expect(err).NotTo(HaveOccurred())
			Expect(store.upserted[0].IPAddress).To(Equal("10.0.0.1"))
			Expect(store.upserted[0].DeviceInfo).To(Equal("Firefox on Linux"))
		})

		It("rejects non-whitelisted emails before touching account storage", func() {
			whitelist.active = map[string]bool{}

			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "", "")
			Expect(err).To(MatchError(auth.ErrNotWhitelisted))
			Expect(store.upserted).To(BeEmpty())
		})

		It("skips the whitelist entirely when enforcement is off", func() {
			whitelist.active = map[string]bool{}
			service = newService(false)

			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(whitelist.queried).To(BeEmpty())
		})

		It("propagates verification failures untouched", func() {
			verifier.err = auth.ErrTokenExpired

			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "", "")
			Expect(err).To(MatchError(auth.ErrTokenExpired))
			Expect(store.upserted).To(BeEmpty())
		})

		It("publishes a login event", func() {
			_, err := service.LoginWithGoogle(context.Background(), "raw-token", "10.0.0.1", "Firefox")
			Expect(err).NotTo(HaveOccurred())
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeSessionLogin))
		})
	})

	Describe("Refresh", func() {
		It("re-reads the stored role so promotions take effect", func() {
			store.accounts[7] = &auth.Account{ID: 7, Email: "student@ductridn.edu.vn", Role: auth.RoleAdmin}

			session, err := service.Refresh(context.Background(), &auth.User{ID: 7, Email: "student@ductridn.edu.vn", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			claims, err := tokens.Decode(session.Token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Role).To(Equal(auth.RoleAdmin))
		})

		It("fails when the account no longer exists", func() {
			_, err := service.Refresh(context.Background(), &auth.User{ID: 404, Email: "gone@ductridn.edu.vn", Role: auth.RoleMember})
			Expect(err).To(MatchError(auth.ErrAccountNotFound))
		})
	})

	Describe("Logout", func() {
		It("marks the account offline and publishes the logout event", func() {
			err := service.Logout(context.Background(), &auth.User{ID: 7, Email: "student@ductridn.edu.vn", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.setOffline).To(ConsistOf(int64(7)))
			Expect(publisher.published).To(HaveLen(1))
			Expect(publisher.published[0].EventType()).To(Equal(events.EventTypeSessionLogout))
		})
	})

	Describe("TrackActivity", func() {
		It("bumps the activity timestamp", func() {
			err := service.TrackActivity(context.Background(), &auth.User{ID: 7, Email: "student@ductridn.edu.vn", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())
			Expect(store.touched).To(ConsistOf(int64(7)))
		})
	})

	Describe("DecodeCredential", func() {
		It("resolves a minted credential into a principal", func() {
			token, _, err := tokens.Issue(auth.User{ID: 7, Email: "student@ductridn.edu.vn", Role: auth.RoleMember})
			Expect(err).NotTo(HaveOccurred())

			principal, err := service.DecodeCredential(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(principal.ID).To(Equal(int64(7)))
			Expect(principal.Role).To(Equal(auth.RoleMember))
		})

		It("fails closed on a tampered credential", func() {
			_, err := service.DecodeCredential("tampered.credential.value")
			Expect(err).To(MatchError(auth.ErrInvalidCredential))
		})
	})
})
