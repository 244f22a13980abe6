// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/javajoker/royalty-ledger/internal/i18n"
)

// I18nMiddleware picks the response language from the lang query parameter,
// then the Accept-Language header, then defaultLang.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := defaultLang

		// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
		if header := c.GetHeader("Accept-Language"); header != "" {
			first := strings.TrimSpace(strings.Split(strings.Split(header, ",")[0], ";")[0])
			switch first {
			case "zh-TW", "zh-Hant", "zh_TW":
				lang = "zh_TW"
			case "en", "en-US", "en-GB":
				lang = "en"
			}
		}

		if query := c.Query("lang"); query != "" && lo.Contains(i18n.GetSupportedLanguages(), query) {
			lang = query
		}

		// Set language in context
		c.Set("lang", lang)
		c.Next()
	}
}
