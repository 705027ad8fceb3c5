package middleware

import (
	"net"
	"net/http"

	"github.com/mssola/useragent"

	"portaria/pkg/requestcontext"
)

// Device parses the User-Agent into a short "Browser em OS" summary and puts
// it, along with the raw UA and client IP, into the request context. The auth
// service logs it with each login.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawUA := r.Header.Get("User-Agent")

		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ip = host
		}

		ctx := requestcontext.WithClientMetadata(r.Context(), ip, rawUA)
		if rawUA != "" {
			ua := useragent.New(rawUA)
			browser, _ := ua.Browser()
			summary := browser
			if os := ua.OS(); os != "" {
				summary = browser + " em " + os
			}
			ctx = requestcontext.WithDevice(ctx, summary)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
