package auth

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("Permission predicates", func() {
	var (
		admin   *UserContext
		hr      *UserContext
		bare    *UserContext
		limited *UserContext
	)

	ginkgo.BeforeEach(func() {
		admin = &UserContext{ID: 1, Role: RoleAdmin, AllowedCategories: []string{"Client"}, Permissions: &Permissions{
			Contact:     &CRUDPermissions{Delete: Bool(false)},
			CRMFeatures: &FeaturePermissions{ExportContacts: Bool(false)},
		}}
		hr = &UserContext{ID: 2, Role: RoleHR, AllowedCategories: []string{"Personal", "Vendor"}, Permissions: &Permissions{
			Contact:     &CRUDPermissions{Read: Bool(true), Delete: Bool(false)},
			CRMFeatures: &FeaturePermissions{ViewBirthdays: Bool(true), ExportContacts: Bool(false)},
		}}
		bare = &UserContext{ID: 3, Role: RoleUser}
		limited = &UserContext{ID: 4, Role: RoleUser, AllowedCategories: []string{" client "}}
	})

	ginkgo.Describe("IsAdmin", func() {
		ginkgo.It("should only accept the Admin role", func() {
			gomega.Expect(IsAdmin(admin)).To(gomega.BeTrue())
			gomega.Expect(IsAdmin(hr)).To(gomega.BeFalse())
			gomega.Expect(IsAdmin(nil)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CanPerform", func() {
		ginkgo.It("should let admins override explicit denials", func() {
			gomega.Expect(CanPerform(admin, ResourceContact, ActionDelete)).To(gomega.BeTrue())
		})

		ginkgo.It("should deny only explicitly false flags", func() {
			gomega.Expect(CanPerform(hr, ResourceContact, ActionDelete)).To(gomega.BeFalse())
			gomega.Expect(CanPerform(hr, ResourceContact, ActionRead)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(hr, ResourceContact, ActionUpdate)).To(gomega.BeTrue())
			gomega.Expect(CanPerform(hr, ResourceTasks, ActionCreate)).To(gomega.BeTrue())
		})

		ginkgo.It("should allow everything when no permissions are set", func() {
			gomega.Expect(CanPerform(bare, ResourceNotes, ActionDelete)).To(gomega.BeTrue())
		})

		ginkgo.It("should deny a missing user", func() {
			gomega.Expect(CanPerform(nil, ResourceContact, ActionRead)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("CanUseFeature", func() {
		ginkgo.It("should follow the same fail-open policy", func() {
			gomega.Expect(CanUseFeature(admin, FeatureExportContacts)).To(gomega.BeTrue())
			gomega.Expect(CanUseFeature(hr, FeatureExportContacts)).To(gomega.BeFalse())
			gomega.Expect(CanUseFeature(hr, FeatureViewBirthdays)).To(gomega.BeTrue())
			gomega.Expect(CanUseFeature(hr, FeatureImportContacts)).To(gomega.BeTrue())
			gomega.Expect(CanUseFeature(bare, FeatureViewStatistics)).To(gomega.BeTrue())
			gomega.Expect(CanUseFeature(nil, FeatureViewStatistics)).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("HasCategoryAccess", func() {
		ginkgo.It("should treat an empty list as unrestricted", func() {
			gomega.Expect(HasCategoryAccess(bare, "Investor")).To(gomega.BeTrue())
		})

		ginkgo.It("should ignore the list for admins", func() {
			gomega.Expect(HasCategoryAccess(admin, "Investor")).To(gomega.BeTrue())
		})

		ginkgo.It("should match case-insensitively after trimming", func() {
			gomega.Expect(HasCategoryAccess(limited, "CLIENT")).To(gomega.BeTrue())
			gomega.Expect(HasCategoryAccess(limited, "Prospect")).To(gomega.BeFalse())
		})

		ginkgo.It("should accept any visible category in a set", func() {
			gomega.Expect(HasAnyCategoryAccess(hr, []string{"Client", "vendor"})).To(gomega.BeTrue())
			gomega.Expect(HasAnyCategoryAccess(hr, []string{"Client"})).To(gomega.BeFalse())
		})

		ginkgo.It("should deny a missing user", func() {
			gomega.Expect(HasCategoryAccess(nil, "Client")).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("denial reasons", func() {
		ginkgo.It("should name the role and the refused operation", func() {
			gomega.Expect(DenialReason(hr, ResourceContact, ActionDelete)).To(gomega.Equal("your role (HR) cannot delete contacts"))
			gomega.Expect(FeatureDenialReason(hr, FeatureExportContacts)).To(gomega.Equal("your role (HR) does not have the export_contacts permission"))
		})

		ginkgo.It("should list the categories the user can see", func() {
			gomega.Expect(CategoryDenialReason(hr, "Client")).To(gomega.Equal("you don't have access to Client contacts; you only have access to: Personal, Vendor"))
		})

		ginkgo.It("should label a missing user", func() {
			gomega.Expect(RoleLabel(nil)).To(gomega.Equal("unknown"))
			gomega.Expect(AllowedCategoriesLabel(nil)).To(gomega.Equal("none"))
		})
	})

	ginkgo.Describe("DefaultPermissionChecker", func() {
		ginkgo.It("should delegate to the predicates", func() {
			checker := NewPermissionChecker()
			ctx := context.Background()

			ok, err := checker.IsAdminCtx(ctx, admin)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(ok).To(gomega.BeTrue())

			ok, _ = checker.CanPerformCtx(ctx, hr, ResourceContact, ActionDelete)
			gomega.Expect(ok).To(gomega.BeFalse())

			ok, _ = checker.HasCategoryAccessCtx(ctx, limited, "Lead")
			gomega.Expect(ok).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("UserContext.Clone", func() {
		ginkgo.It("should not share permission flags with the original", func() {
			clone := hr.Clone()
			*clone.Permissions.Contact.Read = false
			clone.AllowedCategories[0] = "Changed"

			gomega.Expect(*hr.Permissions.Contact.Read).To(gomega.BeTrue())
			gomega.Expect(hr.AllowedCategories[0]).To(gomega.Equal("Personal"))
		})
	})
})
