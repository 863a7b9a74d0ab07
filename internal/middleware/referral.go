// AngelaMos | 2026
// referral.go

package middleware

import (
	"net/http"
	"strings"
	"time"
)

const maxReferralCodeLength = 64

// ReferralCapture remembers the ?ref= code of a landing request in a cookie
// so a checkout made later in the session can still be attributed. A newer
// code replaces an older one.
func ReferralCapture(
	cookieName string,
	ttl time.Duration,
	secure bool,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := strings.TrimSpace(r.URL.Query().Get("ref"))
			if code != "" && len(code) <= maxReferralCodeLength {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    code,
					Path:     "/",
					MaxAge:   int(ttl.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ReferralCode reads the code stored by ReferralCapture. The query string
// wins over the cookie.
func ReferralCode(r *http.Request, cookieName string) string {
	if code := strings.TrimSpace(r.URL.Query().Get("ref")); code != "" {
		return code
	}

	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(c.Value)
}
