// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/url"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/middleware"
	"github.com/eerco/ensuring-integrity/models"
)

type ContentHandler struct {
	bundle *i18n.Bundle
	cfg    cliparse.Config
}

func NewContentHandler(bundle *i18n.Bundle, cfg cliparse.Config) *ContentHandler {
	return &ContentHandler{bundle: bundle, cfg: cfg}
}

// Manifesto handles GET /api/manifesto
func (h *ContentHandler) Manifesto(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())

	middleware.JSONResponse(w, http.StatusOK, models.ManifestoResponse{
		Lang:         lang,
		Title:        h.bundle.T(lang, "manifesto_title"),
		Vision:       h.bundle.T(lang, "vision_desc"),
		Pillars:      h.bundle.Pillars(lang),
		FiveFreedoms: h.bundle.FiveFreedoms(lang),
	})
}

// Share handles GET /api/share
func (h *ContentHandler) Share(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())
	middleware.JSONResponse(w, http.StatusOK, shareFor(h.bundle, lang, publicURL(h.cfg, r)))
}

// Neighborhoods handles GET /api/neighborhoods
func (h *ContentHandler) Neighborhoods(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())

	middleware.JSONResponse(w, http.StatusOK, models.NeighborhoodsResponse{
		Lang:          lang,
		Default:       models.DefaultLocation,
		Neighborhoods: h.bundle.Neighborhoods(lang),
	})
}

// publicURL is the address shared on social networks: the configured public
// URL, or the address this request came in on.
func publicURL(cfg cliparse.Config, r *http.Request) string {
	if cfg.PublicURL != "" {
		return cfg.PublicURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return (&url.URL{Scheme: scheme, Host: r.Host, Path: "/"}).String()
}

func shareFor(bundle *i18n.Bundle, lang, pageURL string) models.ShareResponse {
	text := bundle.T(lang, "share_text")

	return models.ShareResponse{
		URL:  pageURL,
		Text: text,
		Links: []models.ShareLink{
			{Name: "Facebook", Icon: "facebook", URL: "https://www.facebook.com/sharer/sharer.php?u=" + url.QueryEscape(pageURL)},
			{Name: "Instagram", Icon: "instagram", URL: "https://www.instagram.com/"},
			{Name: "WhatsApp", Icon: "send", URL: "https://wa.me/?text=" + url.QueryEscape(text+" "+pageURL)},
			{Name: bundle.T(lang, "share_copy"), Icon: "share", URL: pageURL},
		},
	}
}
