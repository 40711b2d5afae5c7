package category_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/crm-assistant/internal/auth"
	"github.com/frahmantamala/crm-assistant/internal/category"
	categoryPostgres "github.com/frahmantamala/crm-assistant/internal/category/postgres"
	categoryDatamodel "github.com/frahmantamala/crm-assistant/internal/core/datamodel/category"
	"github.com/frahmantamala/crm-assistant/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Category Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    category.RepositoryAPI
		service *category.Service
		handler *category.Handler
		slogger *slog.Logger
	)

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&categoryDatamodel.ContactCategory{})
		Expect(err).NotTo(HaveOccurred())

		repo = categoryPostgres.NewCategoryRepository(db)
		service = category.NewService(repo, slogger)
		baseHandler := &transport.BaseHandler{Logger: slogger}
		handler = category.NewHandler(baseHandler, service)

		for _, cat := range []*category.Category{
			category.NewCategory("Client", "Paying customers"),
			category.NewCategory("Vendor", "Suppliers and service providers"),
			category.NewCategory("Retired", "No longer used"),
		} {
			_, err := repo.Ensure(category.ToDataModel(cat))
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(db.Model(&categoryDatamodel.ContactCategory{}).Where("name = ?", "Retired").Update("is_active", false).Error).To(Succeed())
	})

	get := func(u *auth.UserContext) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil)
		if u != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), u))
		}
		w := httptest.NewRecorder()
		handler.GetCategories(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) category.CategoriesResponse {
		var response category.CategoriesResponse
		Expect(json.NewDecoder(w.Body).Decode(&response)).To(Succeed())
		return response
	}

	It("should list active categories as accessible for an unrestricted user", func() {
		w := get(&auth.UserContext{ID: 1, Role: auth.RoleUser})

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		response := decode(w)
		Expect(response.Restricted).To(BeFalse())
		Expect(response.Categories).To(HaveLen(2))

		names := make([]string, len(response.Categories))
		for i, cat := range response.Categories {
			names[i] = cat.Name
			Expect(cat.Accessible).To(BeTrue())
			Expect(cat.Description).NotTo(BeEmpty())
		}
		Expect(names).To(ConsistOf("Client", "Vendor"))
	})

	It("should mark categories outside the allowed set", func() {
		response := decode(get(&auth.UserContext{ID: 2, Role: auth.RoleHR, AllowedCategories: []string{"vendor"}}))

		Expect(response.Restricted).To(BeTrue())
		for _, cat := range response.Categories {
			Expect(cat.Accessible).To(Equal(cat.Name == "Vendor"), cat.Name)
		}
	})

	It("should ignore the allowed set for admins", func() {
		response := decode(get(&auth.UserContext{ID: 3, Role: auth.RoleAdmin, AllowedCategories: []string{"Vendor"}}))

		Expect(response.Restricted).To(BeFalse())
		for _, cat := range response.Categories {
			Expect(cat.Accessible).To(BeTrue())
		}
	})

	It("should require a signed-in user", func() {
		Expect(get(nil).Code).To(Equal(http.StatusUnauthorized))
	})
})
