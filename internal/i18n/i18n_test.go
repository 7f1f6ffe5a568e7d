package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fidelidade-next/internal/constants"

	"github.com/gin-gonic/gin"
)

func newContext(target, acceptLanguage string) *gin.Context {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if acceptLanguage != "" {
		req.Header.Set("Accept-Language", acceptLanguage)
	}
	c.Request = req
	return c
}

func TestResolveLocale(t *testing.T) {
	cases := []struct {
		target string
		header string
		want   string
	}{
		{"/", "", constants.LocalePtBR},
		{"/", "en-GB,en;q=0.8", constants.LocaleEnUS},
		{"/", "fr-FR, pt;q=0.5", constants.LocalePtBR},
		{"/?lang=en_us", "pt-BR", constants.LocaleEnUS},
		{"/?lang=de", "en", constants.LocaleEnUS},
	}
	for _, tc := range cases {
		if got := ResolveLocale(newContext(tc.target, tc.header)); got != tc.want {
			t.Fatalf("resolve %s %q: want %s got %s", tc.target, tc.header, tc.want, got)
		}
	}
	if ResolveLocale(nil) != DefaultLocale {
		t.Fatalf("nil context should use default locale")
	}
}

func TestTranslateFallbacks(t *testing.T) {
	if got := T(constants.LocaleEnUS, "error.offer_not_found"); got != "Offer not found" {
		t.Fatalf("unexpected en-US message: %s", got)
	}
	if got := T("xx", "error.offer_not_found"); got != "Oferta não encontrada" {
		t.Fatalf("unknown locale should fall back to pt-BR, got %s", got)
	}
	if got := T(constants.LocaleEnUS, "error.unknown_key"); got != "error.unknown_key" {
		t.Fatalf("missing key should return key, got %s", got)
	}
	if got := Sprintf(constants.LocaleEnUS, "error.password_min_length", 8); got != "Password must be at least 8 characters" {
		t.Fatalf("unexpected formatted message: %s", got)
	}
}

func TestCatalogsHaveSameKeys(t *testing.T) {
	for key := range ptBR {
		if _, ok := enUS[key]; !ok {
			t.Fatalf("en-US missing key %s", key)
		}
	}
	for key := range enUS {
		if _, ok := ptBR[key]; !ok {
			t.Fatalf("pt-BR missing key %s", key)
		}
	}
}
