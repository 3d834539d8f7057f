package middleware

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"github.com/vnkhanh/questionnaire-server/utils"
)

const CtxLocale = "locale"

// Locale chọn ngôn ngữ thông điệp từ Accept-Language; không khớp thì dùng defaultLocale.
func Locale(defaultLocale string) gin.HandlerFunc {
	if !utils.IsSupportedLocale(defaultLocale) {
		defaultLocale = utils.SupportedLocales[0]
	}

	// phần tử đầu của matcher là fallback
	locales := []string{defaultLocale}
	for _, l := range utils.SupportedLocales {
		if l != defaultLocale {
			locales = append(locales, l)
		}
	}
	tags := make([]language.Tag, len(locales))
	for i, l := range locales {
		tags[i] = language.Make(l)
	}
	matcher := language.NewMatcher(tags)

	return func(c *gin.Context) {
		locale := defaultLocale
		if header := c.GetHeader("Accept-Language"); header != "" {
			if wanted, _, err := language.ParseAcceptLanguage(header); err == nil && len(wanted) > 0 {
				if _, idx, conf := matcher.Match(wanted...); conf != language.No {
					locale = locales[idx]
				}
			}
		}
		c.Set(CtxLocale, locale)
		c.Next()
	}
}

// GetLocale trả về locale của request, mặc định tiếng Anh nếu middleware chưa chạy.
func GetLocale(c *gin.Context) string {
	if v, ok := c.Get(CtxLocale); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return utils.SupportedLocales[0]
}
