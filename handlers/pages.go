// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eerco/ensuring-integrity/cliparse"
	"github.com/eerco/ensuring-integrity/db"
	"github.com/eerco/ensuring-integrity/i18n"
	"github.com/eerco/ensuring-integrity/middleware"
	"github.com/eerco/ensuring-integrity/models"
	"github.com/eerco/ensuring-integrity/petition"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// recentOnPage is how many signatures the landing page lists
const recentOnPage = 12

// Form outcomes carried from POST /sign to the landing page
const (
	statusSigned  = "signed"
	statusPending = "pending"
)

type PageHandler struct {
	svc    *petition.Service
	cache  *db.Cache
	bundle *i18n.Bundle
	cfg    cliparse.Config
	now    func() time.Time
}

func NewPageHandler(svc *petition.Service, cache *db.Cache, bundle *i18n.Bundle, cfg cliparse.Config) *PageHandler {
	return &PageHandler{svc: svc, cache: cache, bundle: bundle, cfg: cfg, now: time.Now}
}

type signatureView struct {
	Initial  string
	Name     string
	Location string
	Comment  string
	Ago      string
}

type landingView struct {
	bundle *i18n.Bundle

	Lang          string
	OtherLang     string
	Count         string
	Target        string
	Percent       int
	Recent        []signatureView
	Placeholder   bool
	Syncing       bool
	Pillars       []models.Pillar
	FiveFreedoms  []string
	Neighborhoods []models.NeighborhoodOption
	Share         models.ShareResponse
	ShowSuccess   bool
	Notice        string
	Error         string
}

// T looks up a message in the page's language
func (v landingView) T(key string) string {
	return v.bundle.T(v.Lang, key)
}

// Landing handles GET /
func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())
	state := h.svc.State()
	query := r.URL.Query()
	now := h.now()

	recent, placeholder := state.Recent(recentOnPage)
	views := make([]signatureView, 0, len(recent))
	for _, sig := range recent {
		views = append(views, signatureView{
			Initial:  initial(sig.Name),
			Name:     sig.Name,
			Location: h.bundle.NeighborhoodLabel(lang, sig.Location),
			Comment:  sig.Comment,
			Ago:      h.bundle.RelativeTime(lang, sig.Timestamp, now),
		})
	}

	progress := petition.Progress(state.Count(), h.cfg.TargetSignatures)

	view := landingView{
		bundle:        h.bundle,
		Lang:          lang,
		OtherLang:     otherLang(lang),
		Count:         h.bundle.FormatCount(lang, progress.Count),
		Target:        h.bundle.FormatCount(lang, progress.Target),
		Percent:       progress.DisplayPercent,
		Recent:        views,
		Placeholder:   placeholder,
		Syncing:       state.Syncing(),
		Pillars:       h.bundle.Pillars(lang),
		FiveFreedoms:  h.bundle.FiveFreedoms(lang),
		Neighborhoods: h.bundle.Neighborhoods(lang),
		Share:         shareFor(h.bundle, lang, publicURL(h.cfg, r)),
	}

	switch status := query.Get("status"); status {
	case statusSigned:
		view.ShowSuccess = true
	case statusPending:
		view.ShowSuccess = true
		view.Notice = h.bundle.T(lang, "notice_not_synced")
	case "":
	default:
		if isErrorKey(status) {
			view.Error = h.bundle.T(lang, status)
		}
	}

	if !view.ShowSuccess && query.Get("again") == "" {
		view.ShowSuccess = h.hasSigned(r.Context())
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, "landing.html", view); err != nil {
		slog.Error("failed to render landing page", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *PageHandler) hasSigned(ctx context.Context) bool {
	clientID := middleware.ClientIDFromContext(ctx)
	if clientID == "" || h.cache == nil {
		return false
	}
	signed, err := h.cache.HasSigned(ctx, clientID)
	if err != nil {
		slog.Warn("failed to read has-signed flag", "client_id", clientID, "error", err)
		return false
	}
	return signed
}

// SignForm handles POST /sign
// Browser form fallback for POST /api/signatures. Always redirects back to
// the form with the outcome in ?status=.
func (h *PageHandler) SignForm(w http.ResponseWriter, r *http.Request) {
	lang := middleware.LangFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		redirectToForm(w, r, lang, "error_generic")
		return
	}

	req := models.SignRequest{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Location: r.PostForm.Get("location"),
		Comment:  r.PostForm.Get("comment"),
	}

	ctx := context.WithoutCancel(r.Context())
	res, err := h.svc.Sign(ctx, middleware.ClientIDFromContext(r.Context()), req)
	if err != nil {
		status, key := signErrorStatus(err)
		if status == http.StatusInternalServerError {
			slog.Error("failed to sign from form", "error", err)
		}
		redirectToForm(w, r, lang, key)
		return
	}

	if res.Synced {
		redirectToForm(w, r, lang, statusSigned)
	} else {
		redirectToForm(w, r, lang, statusPending)
	}
}

func redirectToForm(w http.ResponseWriter, r *http.Request, lang, status string) {
	q := url.Values{}
	q.Set("lang", lang)
	q.Set("status", status)
	http.Redirect(w, r, "/?"+q.Encode()+"#petition", http.StatusSeeOther)
}

func isErrorKey(key string) bool {
	switch key {
	case "error_required", "error_location", "error_in_progress", "error_generic":
		return true
	}
	return false
}

func otherLang(lang string) string {
	if lang == models.LangGreek {
		return models.LangEnglish
	}
	return models.LangGreek
}

func initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}
