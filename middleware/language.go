// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"net/http"

	"github.com/eerco/ensuring-integrity/i18n"
)

// LangCookie remembers the visitor's language choice
const LangCookie = "ei_lang"

type langKey struct{}

// WithLanguage resolves the response language from ?lang=, the ei_lang
// cookie, then Accept-Language, defaulting to English. An explicit ?lang=
// choice is stored in the cookie.
func WithLanguage(bundle *i18n.Bundle) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang, fromQuery := resolveLang(bundle, r)

			if fromQuery {
				http.SetCookie(w, &http.Cookie{
					Name:     LangCookie,
					Value:    lang,
					Path:     "/",
					MaxAge:   365 * 24 * 60 * 60,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set("Content-Language", lang)
			w.Header().Add("Vary", "Accept-Language")

			next.ServeHTTP(w, r.WithContext(WithLang(r.Context(), lang)))
		})
	}
}

func resolveLang(bundle *i18n.Bundle, r *http.Request) (lang string, fromQuery bool) {
	if lang, ok := bundle.ParseLang(r.URL.Query().Get("lang")); ok {
		return lang, true
	}
	if c, err := r.Cookie(LangCookie); err == nil {
		if lang, ok := bundle.ParseLang(c.Value); ok {
			return lang, false
		}
	}
	return bundle.MatchAcceptLanguage(r.Header.Get("Accept-Language")), false
}

// WithLang stores lang in ctx
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, langKey{}, lang)
}

// LangFromContext returns the resolved language, English if none was set
func LangFromContext(ctx context.Context) string {
	if lang, ok := ctx.Value(langKey{}).(string); ok && lang != "" {
		return lang
	}
	return i18n.BaseLang
}
