package document_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal/audit"
	"github.com/locpham246/task-manager/internal/auth"
	"github.com/locpham246/task-manager/internal/document"
)

func TestDocumentService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DocumentService Suite")
}

type mockDocumentRepository struct {
	docs      map[int64]*document.SharedDocument
	deleted   []int64
	replaced  map[int64][]int64
	nextID    int64
	lastAll   bool
	lastWhoID int64
}

func newMockDocumentRepository() *mockDocumentRepository {
	return &mockDocumentRepository{
		docs:     make(map[int64]*document.SharedDocument),
		replaced: make(map[int64][]int64),
		nextID:   1,
	}
}

func (m *mockDocumentRepository) Create(_ context.Context, doc *document.SharedDocument) error {
	doc.ID = m.nextID
	m.nextID++
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *mockDocumentRepository) GetByID(_ context.Context, id int64) (*document.SharedDocument, error) {
	doc, ok := m.docs[id]
	if !ok {
		return nil, document.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *mockDocumentRepository) ListVisible(_ context.Context, viewerID int64, all bool) ([]document.SharedDocument, error) {
	m.lastWhoID = viewerID
	m.lastAll = all
	var out []document.SharedDocument
	for _, doc := range m.docs {
		out = append(out, *doc)
	}
	return out, nil
}

func (m *mockDocumentRepository) ReplaceShares(_ context.Context, docID int64, userIDs []int64) error {
	m.replaced[docID] = userIDs
	return nil
}

func (m *mockDocumentRepository) Delete(_ context.Context, id int64) error {
	delete(m.docs, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockRecorder struct {
	actions []string
}

func (m *mockRecorder) Record(_ context.Context, _ int64, action string, _ audit.Details) {
	m.actions = append(m.actions, action)
}

var _ = Describe("DocumentService", func() {
	var (
		repo     *mockDocumentRepository
		recorder *mockRecorder
		service  *document.Service

		owner *auth.User
		other *auth.User
		admin *auth.User
	)

	BeforeEach(func() {
		repo = newMockDocumentRepository()
		recorder = &mockRecorder{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = document.NewService(repo, recorder, logger)

		owner = &auth.User{ID: 2, Email: "owner@ductridn.edu.vn", Role: auth.RoleMember}
		other = &auth.User{ID: 3, Email: "other@ductridn.edu.vn", Role: auth.RoleMember}
		admin = &auth.User{ID: 1, Email: "admin@ductridn.edu.vn", Role: auth.RoleAdmin}
	})

	seedDoc := func(sharedBy int64) *document.SharedDocument {
		doc := &document.SharedDocument{
			Title:    "Syllabus",
			URL:      "https://docs.google.com/document/d/abc/edit",
			SharedBy: sharedBy,
		}
		Expect(repo.Create(context.Background(), doc)).To(Succeed())
		return doc
	}

	Describe("Share", func() {
		It("stamps the actor as sharer and records it", func() {
			dto := &document.ShareDocumentDTO{
				Title:      "Exam schedule",
				URL:        "https://docs.google.com/spreadsheets/d/def/edit",
				SharedWith: []int64{3},
			}

			doc, err := service.Share(context.Background(), owner, dto)
			Expect(err).NotTo(HaveOccurred())
			Expect(doc.SharedBy).To(Equal(owner.ID))
			Expect(recorder.actions).To(Equal([]string{audit.ActionShareDocument}))
		})
	})

	Describe("List", func() {
		It("gives admins the unrestricted view", func() {
			_, err := service.List(context.Background(), admin)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastAll).To(BeTrue())
		})

		It("scopes members to their visibility", func() {
			_, err := service.List(context.Background(), owner)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.lastAll).To(BeFalse())
			Expect(repo.lastWhoID).To(Equal(owner.ID))
		})
	})

	Describe("UpdateShares", func() {
		It("lets the original sharer update", func() {
			doc := seedDoc(owner.ID)

			updated, err := service.UpdateShares(context.Background(), owner, doc.ID, []int64{1, 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.SharedWith).To(Equal([]int64{1, 3}))
			Expect(repo.replaced[doc.ID]).To(Equal([]int64{1, 3}))
			Expect(recorder.actions).To(Equal([]string{audit.ActionUpdateDocumentShares}))
		})

		It("blocks other members even if the document is shared with them", func() {
			doc := seedDoc(owner.ID)

			_, err := service.UpdateShares(context.Background(), other, doc.ID, []int64{3})
			Expect(err).To(MatchError(auth.ErrNotOwner))
			Expect(recorder.actions).To(BeEmpty())
		})

		It("lets admins update any document", func() {
			doc := seedDoc(owner.ID)

			_, err := service.UpdateShares(context.Background(), admin, doc.ID, nil)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("Delete", func() {
		It("enforces the same ownership rule", func() {
			doc := seedDoc(owner.ID)

			Expect(service.Delete(context.Background(), other, doc.ID)).To(MatchError(auth.ErrNotOwner))
			Expect(service.Delete(context.Background(), owner, doc.ID)).To(Succeed())
			Expect(repo.deleted).To(ConsistOf(doc.ID))
			Expect(recorder.actions).To(Equal([]string{audit.ActionDeleteDocument}))
		})

		It("returns not found for a missing document", func() {
			Expect(service.Delete(context.Background(), admin, 404)).To(MatchError(document.ErrDocumentNotFound))
		})
	})
})
