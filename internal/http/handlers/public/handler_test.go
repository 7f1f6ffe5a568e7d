package public

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	handlershared "github.com/fidelidade-next/internal/http/handlers/shared"
	"github.com/fidelidade-next/internal/i18n"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/provider"
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

func setupPublicHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateTo(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "public-handler-test-secret-0123456789", ExpireHours: 1},
		Security: config.SecurityConfig{PasswordPolicy: config.PasswordPolicyConfig{
			MinLength:     8,
			RequireLower:  true,
			RequireNumber: true,
		}},
		Feed: config.FeedConfig{StreamHeartbeatSeconds: 1},
	}
	c := &provider.Container{Config: cfg}
	c.ProfileRepo = repository.NewProfileRepository(db)
	c.MerchantRepo = repository.NewMerchantRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.EnrollmentRepo = repository.NewEnrollmentRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.Hub = realtime.NewHub(16, realtime.LocalBroker{})
	c.StorefrontView = realtime.NewStorefrontView(c.Hub, c.OfferRepo.ListActive, 0)
	c.AuthService = service.NewAuthService(cfg, c.ProfileRepo, c.MerchantRepo)
	c.OfferService = service.NewOfferService(c.OfferRepo, c.MerchantRepo, c.Hub)
	c.EnrollmentService = service.NewEnrollmentService(c.EnrollmentRepo, c.MerchantRepo, c.ProfileRepo, c.OfferRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	return New(c), db
}

// serve 以指定账号身份调用单个处理函数
func serve(t *testing.T, handler gin.HandlerFunc, method, path, route string, body interface{}, profileID, role string) envelope {
	t.Helper()
	r := gin.New()
	r.Handle(method, route, func(c *gin.Context) {
		if profileID != "" {
			c.Set(handlershared.ContextKeyProfileID, profileID)
			c.Set(handlershared.ContextKeyRole, role)
		}
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
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp envelope
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func seedMerchantAccount(t *testing.T, h *Handler, email, storeName, city string) *models.Merchant {
	t.Helper()
	_, merchant, _, _, err := h.AuthService.RegisterMerchant(service.MerchantRegistration{
		CustomerRegistration: service.CustomerRegistration{
			Name:            "Dono " + storeName,
			Email:           email,
			Password:        "senha1234",
			ConfirmPassword: "senha1234",
		},
		StoreName: storeName,
		City:      city,
	})
	if err != nil {
		t.Fatalf("register merchant failed: %v", err)
	}
	return merchant
}

func seedCustomerAccount(t *testing.T, h *Handler, email string) *models.Profile {
	t.Helper()
	profile, _, _, err := h.AuthService.RegisterCustomer(service.CustomerRegistration{
		Name:            "Cliente",
		Email:           email,
		Password:        "senha1234",
		ConfirmPassword: "senha1234",
	})
	if err != nil {
		t.Fatalf("register customer failed: %v", err)
	}
	return profile
}

func TestEnrollTwiceReportsAlreadyEnrolled(t *testing.T) {
	h, db := setupPublicHandlerTest(t)
	merchant := seedMerchantAccount(t, h, "padaria@example.com", "Padaria", "Recife")
	customer := seedCustomerAccount(t, h, "ana@example.com")

	body := EnrollRequest{MerchantID: merchant.ID}
	first := serve(t, h.Enroll, http.MethodPost, "/customer/enrollments", "/customer/enrollments", body, customer.ID, constants.RoleCustomer)
	if first.StatusCode != 0 {
		t.Fatalf("first enroll failed: %+v", first)
	}
	if first.Msg != i18n.T(i18n.DefaultLocale, "notice.enrolled") {
		t.Fatalf("unexpected first notice: %s", first.Msg)
	}

	second := serve(t, h.Enroll, http.MethodPost, "/customer/enrollments", "/customer/enrollments", body, customer.ID, constants.RoleCustomer)
	if second.StatusCode != 0 {
		t.Fatalf("second enroll should succeed, got %+v", second)
	}
	if second.Msg != i18n.T(i18n.DefaultLocale, "notice.already_enrolled") {
		t.Fatalf("unexpected second notice: %s", second.Msg)
	}
	var result service.EnrollResult
	if err := json.Unmarshal(second.Data, &result); err != nil {
		t.Fatalf("decode enroll result failed: %v", err)
	}
	if result.Status != service.EnrollStatusAlreadyEnrolled {
		t.Fatalf("status want already_enrolled got %s", result.Status)
	}

	var count int64
	if err := db.Model(&models.EnrollmentRecord{}).Where("customer_id = ? AND merchant_id = ?", customer.ID, merchant.ID).Count(&count).Error; err != nil {
		t.Fatalf("count enrollments failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("enrollment rows want 1 got %d", count)
	}
}

func TestEnrollUnknownMerchant(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	customer := seedCustomerAccount(t, h, "bia@example.com")
	resp := serve(t, h.Enroll, http.MethodPost, "/customer/enrollments", "/customer/enrollments", EnrollRequest{MerchantID: "missing"}, customer.ID, constants.RoleCustomer)
	if resp.StatusCode != 404 {
		t.Fatalf("status_code want 404 got %d", resp.StatusCode)
	}
}

func TestGetMyPointsTotalsAcrossStores(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	padaria := seedMerchantAccount(t, h, "padaria2@example.com", "Padaria", "Recife")
	ferragens := seedMerchantAccount(t, h, "ferragens@example.com", "Ferragens", "Recife")
	customer := seedCustomerAccount(t, h, "caio@example.com")

	ctx := context.Background()
	for _, merchantID := range []string{padaria.ID, ferragens.ID} {
		if _, err := h.EnrollmentService.Enroll(ctx, customer.ID, merchantID); err != nil {
			t.Fatalf("enroll failed: %v", err)
		}
	}
	if _, err := h.EnrollmentService.Accrue(ctx, padaria.ID, customer.ID, 120, "compra"); err != nil {
		t.Fatalf("accrue padaria failed: %v", err)
	}
	if _, err := h.EnrollmentService.Accrue(ctx, ferragens.ID, customer.ID, 30, "compra"); err != nil {
		t.Fatalf("accrue ferragens failed: %v", err)
	}

	resp := serve(t, h.GetMyPoints, http.MethodGet, "/customer/points", "/customer/points", nil, customer.ID, constants.RoleCustomer)
	if resp.StatusCode != 0 {
		t.Fatalf("get points failed: %+v", resp)
	}
	var summary service.PointsSummary
	if err := json.Unmarshal(resp.Data, &summary); err != nil {
		t.Fatalf("decode summary failed: %v", err)
	}
	var sum int64
	for _, row := range summary.Balances {
		sum += row.Points
	}
	if summary.Total != 150 || sum != summary.Total {
		t.Fatalf("total want 150 (sum=%d) got %d", sum, summary.Total)
	}
}

func TestSearchMerchantsBlankCityReturnsEmpty(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	seedMerchantAccount(t, h, "recife@example.com", "Loja Recife", "Recife")
	customer := seedCustomerAccount(t, h, "dani@example.com")

	resp := serve(t, h.SearchMerchants, http.MethodGet, "/customer/merchants?city=%20%20", "/customer/merchants", nil, customer.ID, constants.RoleCustomer)
	var merchants []models.Merchant
	if err := json.Unmarshal(resp.Data, &merchants); err != nil {
		t.Fatalf("decode merchants failed: %v", err)
	}
	if len(merchants) != 0 {
		t.Fatalf("blank city should return no merchants, got %d", len(merchants))
	}

	resp = serve(t, h.SearchMerchants, http.MethodGet, "/customer/merchants?city=recife", "/customer/merchants", nil, customer.ID, constants.RoleCustomer)
	if err := json.Unmarshal(resp.Data, &merchants); err != nil {
		t.Fatalf("decode merchants failed: %v", err)
	}
	if len(merchants) != 1 {
		t.Fatalf("city search want 1 merchant got %d", len(merchants))
	}
}

func TestLoginRoleMismatchIssuesNoToken(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	seedCustomerAccount(t, h, "edu@example.com")

	resp := serve(t, h.Login, http.MethodPost, "/auth/login", "/auth/login", LoginRequest{
		Email:    "edu@example.com",
		Password: "senha1234",
		Portal:   constants.RoleMerchant,
	}, "", "")
	if resp.StatusCode != 403 {
		t.Fatalf("status_code want 403 got %d", resp.StatusCode)
	}
	if bytes.Contains(resp.Data, []byte(`"token"`)) {
		t.Fatalf("role mismatch must not return a token: %s", resp.Data)
	}

	resp = serve(t, h.Login, http.MethodPost, "/auth/login", "/auth/login", LoginRequest{
		Email:    "edu@example.com",
		Password: "senha1234",
		Portal:   constants.RoleCustomer,
	}, "", "")
	if resp.StatusCode != 0 || !bytes.Contains(resp.Data, []byte(`"token"`)) {
		t.Fatalf("matching portal should issue a token, got %+v", resp)
	}
}

func TestRegisterCustomerFieldErrors(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	resp := serve(t, h.RegisterCustomer, http.MethodPost, "/auth/customer/register", "/auth/customer/register", CustomerRegisterRequest{
		Name:            "Fabi",
		Email:           "fabi@example.com",
		Password:        "senha1234",
		ConfirmPassword: "outra1234",
	}, "", "")
	if resp.StatusCode != 400 {
		t.Fatalf("status_code want 400 got %d", resp.StatusCode)
	}
	if resp.Msg != i18n.T(i18n.DefaultLocale, "error.password_mismatch") {
		t.Fatalf("unexpected message: %s", resp.Msg)
	}
}

func TestListStoreOffersServesStorefrontView(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	merchant := seedMerchantAccount(t, h, "kits@example.com", "Kits", "Olinda")
	customer := seedCustomerAccount(t, h, "gabi@example.com")
	if err := h.StorefrontView.Attach(); err != nil {
		t.Fatalf("attach storefront view failed: %v", err)
	}
	t.Cleanup(func() { _ = h.StorefrontView.Stop(context.Background()) })

	offer, err := h.OfferService.Create(context.Background(), merchant.ID, service.OfferDraft{
		Title:            "Kit chaves",
		Description:      "Doze chaves",
		TotalPrice:       "300.00",
		PointsPercentage: 20,
		ValidUntil:       time.Now().AddDate(0, 1, 0).Format(constants.DateLayout),
	})
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if offer.PointsRequired != 6000 {
		t.Fatalf("points required want 6000 got %d", offer.PointsRequired)
	}
	if err := h.StorefrontView.Reload(); err != nil {
		t.Fatalf("reload storefront failed: %v", err)
	}

	resp := serve(t, h.ListStoreOffers, http.MethodGet, "/store/offers", "/store/offers", nil, customer.ID, constants.RoleCustomer)
	var offers []models.Offer
	if err := json.Unmarshal(resp.Data, &offers); err != nil {
		t.Fatalf("decode offers failed: %v", err)
	}
	if len(offers) != 1 || offers[0].ID != offer.ID {
		t.Fatalf("storefront should list the new offer, got %+v", offers)
	}
}

func TestGetMeRequiresProfile(t *testing.T) {
	h, _ := setupPublicHandlerTest(t)
	resp := serve(t, h.GetMe, http.MethodGet, "/me", "/me", nil, "", "")
	if resp.StatusCode != 401 {
		t.Fatalf("status_code want 401 got %d", resp.StatusCode)
	}
}
