package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"washtrack-backend/internal/domain"
	"washtrack-backend/internal/repository"
	"washtrack-backend/internal/service"
	"github.com/go-chi/chi/v5"
)

const (
	pointHistoryLimit   = 100
	customerCouponLimit = 50
)

// LoyaltyHandler serves the customer-facing loyalty app. The endpoints are
// unauthenticated: the customer app identifies itself by possession of a
// customer id and a branch slug, not by a session. Nothing here exposes
// back-office data.
type LoyaltyHandler struct {
	Branches  repository.BranchRepository
	Themes    repository.ThemeRepository
	Banners   repository.BannerRepository
	Config    repository.ConfigRepository
	Customers repository.CustomerRepository
	Vehicles  repository.VehicleRepository
	Points    repository.PointRepository
	Coupons   repository.CouponRepository
	Loyalty   service.LoyaltyService
}

func (h LoyaltyHandler) RegisterRoutes(r chi.Router) {
	r.Route("/loyalty", func(lr chi.Router) {
		lr.Get("/theme", h.theme)
		lr.Get("/banners", h.banners)
		lr.Get("/config", h.siteConfig)
		lr.Get("/vehicles", h.listVehicles)
		lr.Post("/vehicles", h.createVehicle)
		lr.Patch("/vehicles", h.updateVehicle)
		lr.Delete("/vehicles", h.deleteVehicle)
		lr.Get("/points", h.points)
		lr.Get("/coupons", h.listCoupons)
		lr.Post("/coupons/scan", h.scanCoupon)
	})
}

// theme always answers 200 with a usable palette: an unknown slug or a branch
// without a saved theme gets the defaults so the app can render before any
// branch setup happens.
func (h LoyaltyHandler) theme(w http.ResponseWriter, r *http.Request) {
	slug := r.URL.Query().Get("branch")
	if slug == "" {
		writeJSON(w, http.StatusOK, defaultThemeResponse(0))
		return
	}
	b, err := h.Branches.GetBySlug(r.Context(), slug)
	if err != nil {
		writeJSON(w, http.StatusOK, defaultThemeResponse(0))
		return
	}
	t, err := h.Themes.Get(r.Context(), b.ID)
	if err != nil {
		writeJSON(w, http.StatusOK, defaultThemeResponse(b.ID))
		return
	}
	writeJSON(w, http.StatusOK, themeResponse(t))
}

func (h LoyaltyHandler) banners(w http.ResponseWriter, r *http.Request) {
	var branchID *int64
	if slug := r.URL.Query().Get("branch"); slug != "" {
		b, err := h.Branches.GetBySlug(r.Context(), slug)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "branch not found")
				return
			}
			writeServerError(w, err)
			return
		}
		branchID = &b.ID
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

func (h LoyaltyHandler) siteConfig(w http.ResponseWriter, r *http.Request) {
	c, err := h.Config.GetSiteConfig(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, siteConfigResponse(c))
}

// customerID validates the customerId query param against the registry so
// the rest of the handler can trust it refers to a real customer.
func (h LoyaltyHandler) customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := parseIDQuery(r, "customerId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "customerId is required")
		return 0, false
	}
	if _, err := h.Customers.Get(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return 0, false
		}
		writeServerError(w, err)
		return 0, false
	}
	return id, true
}

func (h LoyaltyHandler) listVehicles(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	items, err := h.Vehicles.ListByCustomer(r.Context(), customerID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, v := range items {
		resp = append(resp, vehicleResponse(&v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LoyaltyHandler) createVehicle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Plate string `json:"plate"`
		Brand string `json:"brand"`
		Model string `json:"model"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Plate == "" {
		writeError(w, http.StatusBadRequest, "plate is required")
		return
	}

	v, err := h.Vehicles.Create(r.Context(), customerID, req.Plate, req.Brand, req.Model, req.Color)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse(v))
}

func (h LoyaltyHandler) updateVehicle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	id, err := parseIDQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var req struct {
		Plate *string `json:"plate"`
		Brand *string `json:"brand"`
		Model *string `json:"model"`
		Color *string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	v, err := h.Vehicles.Update(r.Context(), id, customerID, repository.VehicleInput{
		Plate: req.Plate,
		Brand: req.Brand,
		Model: req.Model,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vehicleResponse(v))
}

func (h LoyaltyHandler) deleteVehicle(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	id, err := parseIDQuery(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.Vehicles.SoftDelete(r.Context(), id, customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "vehicle not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeSuccess(w)
}

func vehicleResponse(v *domain.CustomerVehicle) map[string]any {
	return map[string]any{
		"id":         v.ID,
		"customerId": v.CustomerID,
		"plate":      v.Plate,
		"brand":      v.Brand,
		"model":      v.Model,
		"color":      v.Color,
		"createdAt":  v.CreatedAt.Format(time.RFC3339),
	}
}

func (h LoyaltyHandler) points(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}

	balance, err := h.Points.Balance(r.Context(), customerID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	history, err := h.Points.History(r.Context(), customerID, pointHistoryLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(history))
	for _, t := range history {
		item := map[string]any{
			"id":        t.ID,
			"points":    t.Points,
			"note":      t.Note,
			"createdAt": t.CreatedAt.Format(time.RFC3339),
		}
		if t.BranchID != nil {
			item["branchId"] = *t.BranchID
		}
		items = append(items, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"balance": balance,
		"history": items,
	})
}

func (h LoyaltyHandler) listCoupons(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	items, err := h.Coupons.ListByCustomer(r.Context(), customerID, customerCouponLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, couponResponse(&c))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h LoyaltyHandler) scanCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	d, err := h.Loyalty.RedeemCoupon(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCouponNotFound):
			writeError(w, http.StatusNotFound, "coupon not found")
		case errors.Is(err, service.ErrCouponUsed):
			writeError(w, http.StatusBadRequest, "coupon already used")
		case errors.Is(err, service.ErrCouponExpired):
			writeError(w, http.StatusBadRequest, "coupon expired")
		default:
			writeServerError(w, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"code":          d.Code,
		"templateName":  d.TemplateName,
		"discountType":  string(d.DiscountType),
		"discountValue": d.DiscountValue,
		"usedAt":        d.UsedAt.Format(time.RFC3339),
	})
}
