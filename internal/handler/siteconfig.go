package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"github.com/go-chi/chi/v5"
)

// Default palette served until a branch saves its own theme.
const (
	defaultPrimaryColor   = "#0ea5e9"
	defaultSecondaryColor = "#0f172a"
	defaultAccentColor    = "#f59e0b"
)

type SiteConfigHandler struct {
	Config  repository.ConfigRepository
	Themes  repository.ThemeRepository
	Banners repository.BannerRepository
}

func (h SiteConfigHandler) RegisterBranchRoutes(r chi.Router) {
	r.Get("/theme", h.getTheme)
	r.Put("/theme", h.saveTheme)
}

func (h SiteConfigHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/site-config", h.getSiteConfig)
	r.Put("/site-config", h.saveSiteConfig)
	r.Get("/roi-config", h.getRoiConfig)
	r.Put("/roi-config", h.saveRoiConfig)
	r.Get("/banners", h.listBanners)
	r.Post("/banners", h.createBanner)
	r.Patch("/banners/{id}", h.updateBanner)
}

func (h SiteConfigHandler) getTheme(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	t, err := h.Themes.Get(r.Context(), branchID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeJSON(w, http.StatusOK, defaultThemeResponse(branchID))
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse(t))
}

func (h SiteConfigHandler) saveTheme(w http.ResponseWriter, r *http.Request) {
	p := principal(w, r)
	if p == nil {
		return
	}
	branchID, err := resolveBranchID(r, p)
	if err != nil {
		writeError(w, http.StatusBadRequest, "branchId is required")
		return
	}

	var req struct {
		PrimaryColor   string `json:"primaryColor"`
		SecondaryColor string `json:"secondaryColor"`
		AccentColor    string `json:"accentColor"`
		LogoURL        string `json:"logoUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	t, err := h.Themes.Save(r.Context(), domain.BranchTheme{
		BranchID:       branchID,
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		AccentColor:    req.AccentColor,
		LogoURL:        req.LogoURL,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, themeResponse(t))
}

func (h SiteConfigHandler) getSiteConfig(w http.ResponseWriter, r *http.Request) {
	c, err := h.Config.GetSiteConfig(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, siteConfigResponse(c))
}

func (h SiteConfigHandler) saveSiteConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SiteName     string `json:"siteName"`
		Tagline      string `json:"tagline"`
		ContactEmail string `json:"contactEmail"`
		ContactPhone string `json:"contactPhone"`
		Address      string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.SiteName == "" {
		writeError(w, http.StatusBadRequest, "siteName is required")
		return
	}

	c, err := h.Config.SaveSiteConfig(r.Context(), domain.SiteConfig{
		SiteName:     req.SiteName,
		Tagline:      req.Tagline,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, siteConfigResponse(c))
}

func (h SiteConfigHandler) getRoiConfig(w http.ResponseWriter, r *http.Request) {
	c, err := h.Config.GetRoiConfig(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roiConfigResponse(c))
}

func (h SiteConfigHandler) saveRoiConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		InvestmentAmount json.RawMessage `json:"investmentAmount"`
		MonthlyTarget    json.RawMessage `json:"monthlyTarget"`
		BreakEvenMonths  int             `json:"breakEvenMonths"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	investment, err := parseAmount(req.InvestmentAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid investmentAmount")
		return
	}
	target, err := parseAmount(req.MonthlyTarget)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid monthlyTarget")
		return
	}
	if req.BreakEvenMonths < 0 {
		writeError(w, http.StatusBadRequest, "breakEvenMonths must not be negative")
		return
	}

	c, err := h.Config.SaveRoiConfig(r.Context(), repository.SaveRoiConfigInput{
		InvestmentAmount: investment,
		MonthlyTarget:    target,
		BreakEvenMonths:  req.BreakEvenMonths,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, roiConfigResponse(c))
}

func (h SiteConfigHandler) listBanners(w http.ResponseWriter, r *http.Request) {
	var branchID *int64
	if raw := r.URL.Query().Get("branchId"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid branchId")
			return
		}
		branchID = &id
	}

	items, err := h.Banners.ListActive(r.Context(), branchID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, b := range items {
		resp = append(resp, bannerResponse(&b))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h SiteConfigHandler) createBanner(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BranchID  *int64 `json:"branchId"`
		Title     string `json:"title"`
		ImageURL  string `json:"imageUrl"`
		LinkURL   string `json:"linkUrl"`
		SortOrder int    `json:"sortOrder"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.ImageURL == "" {
		writeError(w, http.StatusBadRequest, "imageUrl is required")
		return
	}

	b, err := h.Banners.Create(r.Context(), repository.CreateBannerInput{
		BranchID:  req.BranchID,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse(b))
}

func (h SiteConfigHandler) updateBanner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid banner id")
		return
	}

	var req struct {
		Title     *string `json:"title"`
		ImageURL  *string `json:"imageUrl"`
		LinkURL   *string `json:"linkUrl"`
		SortOrder *int    `json:"sortOrder"`
		IsActive  *bool   `json:"isActive"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	b, err := h.Banners.Update(r.Context(), id, repository.UpdateBannerInput{
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		IsActive:  req.IsActive,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "banner not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bannerResponse(b))
}

func themeResponse(t *domain.BranchTheme) map[string]any {
	return map[string]any{
		"branchId":       t.BranchID,
		"primaryColor":   t.PrimaryColor,
		"secondaryColor": t.SecondaryColor,
		"accentColor":    t.AccentColor,
		"logoUrl":        t.LogoURL,
	}
}

func defaultThemeResponse(branchID int64) map[string]any {
	return map[string]any{
		"branchId":       branchID,
		"primaryColor":   defaultPrimaryColor,
		"secondaryColor": defaultSecondaryColor,
		"accentColor":    defaultAccentColor,
		"logoUrl":        "",
	}
}

func siteConfigResponse(c *domain.SiteConfig) map[string]any {
	return map[string]any{
		"siteName":     c.SiteName,
		"tagline":      c.Tagline,
		"contactEmail": c.ContactEmail,
		"contactPhone": c.ContactPhone,
		"address":      c.Address,
		"updatedAt":    c.UpdatedAt.Format(time.RFC3339),
	}
}

func roiConfigResponse(c *domain.RoiConfig) map[string]any {
	return map[string]any{
		"investmentAmount": c.InvestmentAmount,
		"monthlyTarget":    c.MonthlyTarget,
		"breakEvenMonths":  c.BreakEvenMonths,
		"updatedAt":        c.UpdatedAt.Format(time.RFC3339),
	}
}

func bannerResponse(b *domain.Banner) map[string]any {
	resp := map[string]any{
		"id":        b.ID,
		"title":     b.Title,
		"imageUrl":  b.ImageURL,
		"linkUrl":   b.LinkURL,
		"sortOrder": b.SortOrder,
		"isActive":  b.IsActive,
	}
	if b.BranchID != nil {
		resp["branchId"] = *b.BranchID
	}
	return resp
}
