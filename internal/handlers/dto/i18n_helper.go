package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/writify/writify-backend/internal/infrastructure/i18n"
)

const (
	// LanguageContextKey holds the language detected for the request.
	LanguageContextKey = "language"
	// I18nServiceContextKey holds the *i18n.Service.
	I18nServiceContextKey = "i18n_service"
)

// T translates key in the request's language.
// Usage: dto.T(c, "validation.required", map[string]any{"Field": "name"})
func T(c *gin.Context, key string, params ...map[string]any) string {
	service, ok := i18nService(c)
	if !ok {
		return key
	}
	return service.T(GetLanguage(c), key, params...)
}

// TOr translates key, or returns fallback when no translation exists.
func TOr(c *gin.Context, key, fallback string, params ...map[string]any) string {
	service, ok := i18nService(c)
	if !ok || !service.Has(GetLanguage(c), key) {
		return fallback
	}
	return service.T(GetLanguage(c), key, params...)
}

// GetLanguage returns the request's language, "en" when none was detected.
func GetLanguage(c *gin.Context) string {
	if lang, ok := c.Get(LanguageContextKey); ok {
		if s, ok := lang.(string); ok {
			return s
		}
	}
	return "en"
}

func i18nService(c *gin.Context) (*i18n.Service, bool) {
	v, ok := c.Get(I18nServiceContextKey)
	if !ok {
		return nil, false
	}
	service, ok := v.(*i18n.Service)
	return service, ok
}
