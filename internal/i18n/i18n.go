package i18n

import (
	"fmt"
	"strings"

	"github.com/fidelidade-next/internal/constants"

	"github.com/gin-gonic/gin"
)

const (
	// DefaultLocale 默认语言
	DefaultLocale  = constants.LocalePtBR
	localeQueryKey = "lang"
)

var catalogs = map[string]map[string]string{
	constants.LocalePtBR: ptBR,
	constants.LocaleEnUS: enUS,
}

// ResolveLocale 解析请求语言：优先 ?lang=，其次 Accept-Language，默认 pt-BR
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if locale := NormalizeLocale(c.Query(localeQueryKey)); locale != "" {
		return locale
	}
	header := c.GetHeader("Accept-Language")
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if locale := NormalizeLocale(tag); locale != "" {
			return locale
		}
	}
	return DefaultLocale
}

// NormalizeLocale 将语言标签映射到支持的语言，无法识别时返回空串
func NormalizeLocale(raw string) string {
	tag := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, "_", "-")))
	if tag == "" {
		return ""
	}
	for _, locale := range constants.SupportedLocales {
		if strings.ToLower(locale) == tag {
			return locale
		}
	}
	switch strings.SplitN(tag, "-", 2)[0] {
	case "pt":
		return constants.LocalePtBR
	case "en":
		return constants.LocaleEnUS
	}
	return ""
}

// T 翻译文案，缺失时回退默认语言，仍缺失返回 key
func T(locale, key string) string {
	if catalog, ok := catalogs[locale]; ok {
		if msg, ok := catalog[key]; ok {
			return msg
		}
	}
	if msg, ok := catalogs[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译并格式化
func Sprintf(locale, key string, args ...interface{}) string {
	if len(args) == 0 {
		return T(locale, key)
	}
	return fmt.Sprintf(T(locale, key), args...)
}
