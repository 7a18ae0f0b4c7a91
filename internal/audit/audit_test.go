package audit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/core/events"
)

func TestAudit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Audit Suite")
}

type mockAuditRepository struct {
	entries   []audit.Entry
	insertErr error
	lastLimit int
}

func (m *mockAuditRepository) Insert(ctx context.Context, entry *audit.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockAuditRepository) ListRecent(_ context.Context, limit int) ([]audit.EntryView, error) {
	m.lastLimit = limit
	views := make([]audit.EntryView, 0, len(m.entries))
	for _, entry := range m.entries {
		views = append(views, audit.EntryView{Entry: entry})
	}
	return views, nil
}

var _ = Describe("AuditService", func() {
	var (
		repo    *mockAuditRepository
		service *audit.Service
	)

	BeforeEach(func() {
		repo = &mockAuditRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1}))
		service = audit.NewService(repo, logger)
	})

	Describe("Record", func() {
		It("persists the actor, action and details", func() {
			service.Record(context.Background(), 7, audit.ActionCreateTask, audit.Details{"task_id": int64(3)})

			Expect(repo.entries).To(HaveLen(1))
			Expect(repo.entries[0].UserID).To(Equal(int64(7)))
			Expect(repo.entries[0].Action).To(Equal(audit.ActionCreateTask))
			Expect(repo.entries[0].Details).To(HaveKeyWithValue("task_id", int64(3)))
		})

		It("swallows storage failures", func() {
			repo.insertErr = errors.New("connection reset")

			Expect(func() {
				service.Record(context.Background(), 7, audit.ActionDeleteTask, nil)
			}).NotTo(Panic())
		})
	})

	Describe("ListRecent", func() {
		It("clamps a missing or oversized limit", func() {
			_, err := service.ListRecent(context.Background(), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLimit).To(Equal(audit.DefaultListLimit))

			_, err = service.ListRecent(context.Background(), 5000)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLimit).To(Equal(audit.DefaultListLimit))
		})

		It("passes a sane limit through", func() {
			_, err := service.ListRecent(context.Background(), 20)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastLimit).To(Equal(20))
		})
	})
})

var _ = Describe("Session event handling", func() {
	var (
		repo *mockAuditRepository
		bus  *events.EventBus
	)

	BeforeEach(func() {
		repo = &mockAuditRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError + 1}))
		bus = events.NewEventBus(logger)
		audit.NewEventHandler(audit.NewService(repo, logger)).RegisterHandlers(bus)
	})

	It("turns a login event into a LOGIN entry with request metadata", func() {
		event := events.NewLoginEvent(7, "student@ductridn.edu.vn", "10.0.0.1", "Firefox")

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.entries).To(HaveLen(1))
		Expect(repo.entries[0].Action).To(Equal(audit.ActionLogin))
		Expect(repo.entries[0].UserID).To(Equal(int64(7)))
		Expect(repo.entries[0].Details).To(HaveKeyWithValue("email", "student@ductridn.edu.vn"))
		Expect(repo.entries[0].Details).To(HaveKeyWithValue("ip_address", "10.0.0.1"))
		Expect(repo.entries[0].Details).To(HaveKeyWithValue("device_info", "Firefox"))
	})

	It("records the entry even after the request context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		event := events.NewLoginEvent(7, "student@ductridn.edu.vn", "10.0.0.1", "Firefox")
		Expect(bus.PublishSync(ctx, event)).To(Succeed())

		Expect(repo.entries).To(HaveLen(1))
		Expect(repo.entries[0].Action).To(Equal(audit.ActionLogin))
	})

	It("turns a logout event into a LOGOUT entry", func() {
		event := events.NewLogoutEvent(7, "student@ductridn.edu.vn")

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())

		Expect(repo.entries).To(HaveLen(1))
		Expect(repo.entries[0].Action).To(Equal(audit.ActionLogout))
	})

	It("ignores event types nothing subscribed to", func() {
		event := events.SessionEvent{
			BaseEvent: events.BaseEvent{ID: "x", Type: "session.unknown"},
			AccountID: 7,
		}

		Expect(bus.PublishSync(context.Background(), event)).To(Succeed())
		Expect(repo.entries).To(BeEmpty())
	})
})
