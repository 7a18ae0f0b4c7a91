package auth_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/locpham246/task-manager/internal"
	"github.com/locpham246/task-manager/internal/auth"
)

var _ = Describe("Policy", func() {
	var policy auth.Policy

	BeforeEach(func() {
		policy = auth.NewPolicy()
	})

	Describe("CanAuthenticate", func() {
		It("admits whitelisted emails when enforcement is on", func() {
			Expect(policy.CanAuthenticate(true, true)).To(BeTrue())
		})

		It("rejects non-whitelisted emails when enforcement is on", func() {
			Expect(policy.CanAuthenticate(true, false)).To(BeFalse())
		})

		It("admits anyone when enforcement is off", func() {
			Expect(policy.CanAuthenticate(false, false)).To(BeTrue())
		})
	})

	Describe("CanViewTask", func() {
		It("lets admins view any task", func() {
			Expect(policy.CanViewTask(auth.RoleAdmin, 99, 1, nil)).To(BeTrue())
		})

		It("lets members view tasks they own", func() {
			Expect(policy.CanViewTask(auth.RoleMember, 1, 1, nil)).To(BeTrue())
		})

		It("lets members view tasks they are assigned to", func() {
			Expect(policy.CanViewTask(auth.RoleMember, 2, 1, []int64{2, 3})).To(BeTrue())
		})

		It("hides unrelated tasks from members", func() {
			Expect(policy.CanViewTask(auth.RoleMember, 9, 1, []int64{2, 3})).To(BeFalse())
		})
	})

	Describe("AllowedTaskFields", func() {
		It("passes every field through for admins", func() {
			requested := []string{auth.TaskFieldTitle, auth.TaskFieldAssignees}
			allowed, err := policy.AllowedTaskFields(auth.RoleAdmin, 9, 1, nil, requested)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(Equal(requested))
		})

		It("rejects members who are not assigned", func() {
			_, err := policy.AllowedTaskFields(auth.RoleMember, 9, 1, []int64{2}, []string{auth.TaskFieldStatus})
			Expect(err).To(MatchError(auth.ErrNotAssigned))
		})

		It("intersects member requests with status and description", func() {
			requested := []string{auth.TaskFieldTitle, auth.TaskFieldStatus, auth.TaskFieldDescription}
			allowed, err := policy.AllowedTaskFields(auth.RoleMember, 2, 1, []int64{2}, requested)
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(ConsistOf(auth.TaskFieldStatus, auth.TaskFieldDescription))
		})

		It("denies an assigned member whose request intersects to nothing", func() {
			_, err := policy.AllowedTaskFields(auth.RoleMember, 2, 1, []int64{2}, []string{auth.TaskFieldAssignees})
			Expect(err).To(MatchError(auth.ErrFieldDenied))
		})

		It("treats the primary owner as assigned", func() {
			allowed, err := policy.AllowedTaskFields(auth.RoleMember, 1, 1, nil, []string{auth.TaskFieldStatus})
			Expect(err).NotTo(HaveOccurred())
			Expect(allowed).To(Equal([]string{auth.TaskFieldStatus}))
		})
	})

	Describe("CanCreateTaskFor", func() {
		It("lets members create tasks only for themselves", func() {
			Expect(policy.CanCreateTaskFor(auth.RoleMember, 2, []int64{2})).To(BeTrue())
			Expect(policy.CanCreateTaskFor(auth.RoleMember, 2, []int64{2, 3})).To(BeFalse())
		})

		It("lets admins assign anyone", func() {
			Expect(policy.CanCreateTaskFor(auth.RoleAdmin, 2, []int64{5, 6})).To(BeTrue())
		})
	})

	Describe("CanDeleteTask", func() {
		It("restricts deletion to admin and above", func() {
			Expect(policy.CanDeleteTask(auth.RoleMember)).To(BeFalse())
			Expect(policy.CanDeleteTask(auth.RoleAdmin)).To(BeTrue())
			Expect(policy.CanDeleteTask(auth.RoleSuperAdmin)).To(BeTrue())
		})
	})

	Describe("CanManageDocument", func() {
		It("lets the sharer manage their own document", func() {
			Expect(policy.CanManageDocument(auth.RoleMember, 2, 2)).To(BeTrue())
		})

		It("blocks other members", func() {
			Expect(policy.CanManageDocument(auth.RoleMember, 3, 2)).To(BeFalse())
		})

		It("lets admins manage any document", func() {
			Expect(policy.CanManageDocument(auth.RoleAdmin, 3, 2)).To(BeTrue())
		})
	})

	Describe("CanChangeRole", func() {
		It("rejects non-super admins", func() {
			err := policy.CanChangeRole(auth.RoleAdmin, 1, 2, auth.RoleAdmin)
			Expect(err).To(MatchError(auth.ErrRoleDenied))
		})

		It("rejects invalid roles", func() {
			err := policy.CanChangeRole(auth.RoleSuperAdmin, 1, 2, auth.Role("owner"))
			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidRole))
		})

		It("rejects self-demotion", func() {
			err := policy.CanChangeRole(auth.RoleSuperAdmin, 1, 1, auth.RoleAdmin)
			Expect(err).To(MatchError(auth.ErrSelfDemote))
		})

		It("allows re-asserting super_admin on yourself", func() {
			Expect(policy.CanChangeRole(auth.RoleSuperAdmin, 1, 1, auth.RoleSuperAdmin)).To(Succeed())
		})

		It("allows promoting someone else", func() {
			Expect(policy.CanChangeRole(auth.RoleSuperAdmin, 1, 2, auth.RoleAdmin)).To(Succeed())
		})
	})

	Describe("role-gated views", func() {
		It("restricts the audit log and whitelist to super_admin", func() {
			Expect(policy.CanViewAuditLog(auth.RoleAdmin)).To(BeFalse())
			Expect(policy.CanViewAuditLog(auth.RoleSuperAdmin)).To(BeTrue())
			Expect(policy.CanManageWhitelist(auth.RoleAdmin)).To(BeFalse())
			Expect(policy.CanManageWhitelist(auth.RoleSuperAdmin)).To(BeTrue())
		})

		It("opens activity, user listing and invitations to admin and above", func() {
			Expect(policy.CanViewActivity(auth.RoleMember)).To(BeFalse())
			Expect(policy.CanViewActivity(auth.RoleAdmin)).To(BeTrue())
			Expect(policy.CanListUsers(auth.RoleAdmin)).To(BeTrue())
			Expect(policy.CanInviteUsers(auth.RoleAdmin)).To(BeTrue())
			Expect(policy.CanInviteUsers(auth.RoleMember)).To(BeFalse())
		})

		It("lets accounts read their own profile and super_admin read any", func() {
			Expect(policy.CanViewProfile(auth.RoleMember, 2, 2)).To(BeTrue())
			Expect(policy.CanViewProfile(auth.RoleMember, 2, 3)).To(BeFalse())
			Expect(policy.CanViewProfile(auth.RoleSuperAdmin, 2, 3)).To(BeTrue())
		})
	})
})
