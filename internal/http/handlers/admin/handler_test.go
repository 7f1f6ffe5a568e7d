package admin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/provider"
	"github.com/fidelidade-next/internal/queue"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/repository"
	"github.com/fidelidade-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func setupAdminHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateTo(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("init disabled queue failed: %v", err)
	}
	cfg := &config.Config{Report: config.ReportConfig{Dir: t.TempDir()}}
	c := &provider.Container{Config: cfg, QueueClient: queueClient}
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.EnrollmentRepo = repository.NewEnrollmentRepository(db)
	c.ReportJobRepo = repository.NewReportJobRepository(db)
	c.Hub = realtime.NewHub(16, realtime.LocalBroker{})
	c.StorefrontView = realtime.NewStorefrontView(c.Hub, c.OfferRepo.ListActive, 0)
	c.OfferService = service.NewOfferService(c.OfferRepo, c.MerchantRepo, c.Hub)
	c.MerchantService = service.NewMerchantService(c.MerchantRepo, c.StorefrontView, c.OfferService)
	c.AdminUserService = service.NewAdminUserService(c.ProfileRepo)
	c.ReportService = service.NewReportService(cfg, c.ReportJobRepo, c.ProfileRepo, c.MerchantRepo, c.OfferRepo, c.EnrollmentRepo, queueClient)
	return New(c), db
}

func seedProfile(t *testing.T, db *gorm.DB, email, role string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		Email:        email,
		Name:         role,
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return profile
}

func serve(t *testing.T, handler gin.HandlerFunc, method, path, route string, body interface{}, adminID string) (int, envelope) {
	t.Helper()
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		c.Set(handlershared.ContextKeyProfileID, adminID)
		c.Set(handlershared.ContextKeyRole, constants.RoleAdmin)
		c.Next()
	}, handler)

	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body failed: %v", err)
		}
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp envelope
	if w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
		}
	}
	return w.Code, resp
}

func TestUpdateAdminUserStatusRejectsSelfDisable(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	admin := seedProfile(t, db, "root@example.com", constants.RoleAdmin)

	_, resp := serve(t, h.UpdateAdminUserStatus, http.MethodPut, "/admin/users/"+admin.ID+"/status", "/admin/users/:id/status",
		UpdateUserStatusRequest{Status: constants.UserStatusDisabled}, admin.ID)
	if resp.StatusCode != 403 {
		t.Fatalf("status_code want 403 got %d", resp.StatusCode)
	}
}

func TestUpdateAdminUserStatusDisablesCustomer(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	admin := seedProfile(t, db, "root@example.com", constants.RoleAdmin)
	customer := seedProfile(t, db, "ana@example.com", constants.RoleCustomer)

	_, resp := serve(t, h.UpdateAdminUserStatus, http.MethodPut, "/admin/users/"+customer.ID+"/status", "/admin/users/:id/status",
		UpdateUserStatusRequest{Status: "DISABLED"}, admin.ID)
	if resp.StatusCode != 0 {
		t.Fatalf("disable customer failed: %+v", resp)
	}
	var stored models.Profile
	if err := db.First(&stored, "id = ?", customer.ID).Error; err != nil {
		t.Fatalf("reload profile failed: %v", err)
	}
	if stored.Status != constants.UserStatusDisabled {
		t.Fatalf("status want disabled got %s", stored.Status)
	}

	_, resp = serve(t, h.UpdateAdminUserStatus, http.MethodPut, "/admin/users/missing/status", "/admin/users/:id/status",
		UpdateUserStatusRequest{Status: constants.UserStatusActive}, admin.ID)
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
}

func TestUpdateMerchantActiveUnknownMerchant(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	admin := seedProfile(t, db, "root@example.com", constants.RoleAdmin)

	active := false
	_, resp := serve(t, h.UpdateMerchantActive, http.MethodPut, "/admin/merchants/missing/active", "/admin/merchants/:id/active",
		UpdateMerchantActiveRequest{Active: &active}, admin.ID)
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}

	_, resp = serve(t, h.UpdateMerchantActive, http.MethodPut, "/admin/merchants/missing/active", "/admin/merchants/:id/active",
		map[string]string{}, admin.ID)
	if resp.StatusCode != 400 {
		t.Fatalf("missing active flag want 400 got %d", resp.StatusCode)
	}
}

func TestCreateReportGeneratesInlineWithoutQueue(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	admin := seedProfile(t, db, "root@example.com", constants.RoleAdmin)
	seedProfile(t, db, "ana@example.com", constants.RoleCustomer)

	_, resp := serve(t, h.CreateReport, http.MethodPost, "/admin/reports", "/admin/reports",
		CreateReportRequest{Type: constants.ReportTypeUsers}, admin.ID)
	if resp.StatusCode != 0 {
		t.Fatalf("create report failed: %+v", resp)
	}
	var job models.ReportJob
	if err := json.Unmarshal(resp.Data, &job); err != nil {
		t.Fatalf("decode report failed: %v", err)
	}
	if job.Status != constants.ReportStatusDone || job.RowCount != 2 {
		t.Fatalf("unexpected report job: %+v", job)
	}

	code, _ := serve(t, h.DownloadReport, http.MethodGet, "/admin/reports/"+job.ID+"/download", "/admin/reports/:id/download", nil, admin.ID)
	if code != http.StatusOK {
		t.Fatalf("download want 200 got %d", code)
	}
}

func TestCreateReportRejectsUnknownType(t *testing.T) {
	h, db := setupAdminHandlerTest(t)
	admin := seedProfile(t, db, "root@example.com", constants.RoleAdmin)

	_, resp := serve(t, h.CreateReport, http.MethodPost, "/admin/reports", "/admin/reports",
		CreateReportRequest{Type: "orders"}, admin.ID)
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}

	_, resp = serve(t, h.GetReport, http.MethodGet, "/admin/reports/missing", "/admin/reports/:id", nil, admin.ID)
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
}
