package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/handlers/dto"
	"github.com/writify/writify-backend/internal/infrastructure/i18n"
)

// I18nMiddleware picks the language of each request.
type I18nMiddleware struct {
	i18nService *i18n.Service
}

func NewI18nMiddleware(i18nService *i18n.Service) *I18nMiddleware {
	return &I18nMiddleware{i18nService: i18nService}
}

// DetectLanguage stores the request language and the i18n service in the context.
// Priority: ?lang=, then Accept-Language, then the default language.
func (m *I18nMiddleware) DetectLanguage() gin.HandlerFunc {
	return func(c *gin.Context) {
		var lang string

		if queryLang := c.Query("lang"); queryLang != "" && m.i18nService.IsLanguageSupported(queryLang) {
			lang = queryLang
		}
		if lang == "" {
			lang = m.parseAcceptLanguage(c.GetHeader("Accept-Language"))
		}
		if lang == "" {
			lang = m.i18nService.GetDefaultLanguage()
		}

		c.Set(dto.LanguageContextKey, lang)
		c.Set(dto.I18nServiceContextKey, m.i18nService)

		c.Next()
	}
}

// parseAcceptLanguage returns the first supported language of the header, in
// the order listed. "fr-CA" falls back to "fr".
func (m *I18nMiddleware) parseAcceptLanguage(acceptLang string) string {
	for _, lang := range strings.Split(acceptLang, ",") {
		lang = strings.TrimSpace(lang)
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		if lang == "" {
			continue
		}
		if m.i18nService.IsLanguageSupported(lang) {
			return lang
		}
		if idx := strings.Index(lang, "-"); idx != -1 && m.i18nService.IsLanguageSupported(lang[:idx]) {
			return lang[:idx]
		}
	}
	return ""
}
