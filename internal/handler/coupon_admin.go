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

const customerListLimit = 200

// CouponAdminHandler covers the back-office side of the loyalty program:
// template management, coupon issuance and the customer registry.
type CouponAdminHandler struct {
	Coupons   repository.CouponRepository
	Customers repository.CustomerRepository
	Points    repository.PointRepository
}

func (h CouponAdminHandler) RegisterRoutes(r chi.Router) {
	r.Get("/coupon-templates", h.listTemplates)
	r.Post("/coupon-templates", h.createTemplate)
	r.Post("/coupons", h.issueCoupon)
	r.Get("/customers", h.listCustomers)
	r.Post("/customers", h.createCustomer)
	r.Post("/customers/{id}/points", h.addPoints)
}

func (h CouponAdminHandler) listTemplates(w http.ResponseWriter, r *http.Request) {
	items, err := h.Coupons.ListTemplates(r.Context())
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, t := range items {
		resp = append(resp, templateResponse(&t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h CouponAdminHandler) createTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name          string          `json:"name"`
		DiscountType  string          `json:"discountType"`
		DiscountValue json.RawMessage `json:"discountValue"`
		ValidDays     int             `json:"validDays"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	discountType := domain.DiscountType(req.DiscountType)
	if discountType != domain.DiscountPercent && discountType != domain.DiscountFixed {
		writeError(w, http.StatusBadRequest, "discountType must be PERCENT or FIXED")
		return
	}
	value, err := parseAmount(req.DiscountValue)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid discountValue")
		return
	}
	if req.ValidDays <= 0 {
		writeError(w, http.StatusBadRequest, "validDays must be positive")
		return
	}

	t, err := h.Coupons.CreateTemplate(r.Context(), repository.CreateTemplateInput{
		Name:          req.Name,
		DiscountType:  discountType,
		DiscountValue: value,
		ValidDays:     req.ValidDays,
	})
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, templateResponse(t))
}

func (h CouponAdminHandler) issueCoupon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TemplateID int64 `json:"templateId"`
		CustomerID int64 `json:"customerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.TemplateID == 0 || req.CustomerID == 0 {
		writeError(w, http.StatusBadRequest, "templateId and customerId are required")
		return
	}
	if _, err := h.Customers.Get(r.Context(), req.CustomerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeServerError(w, err)
		return
	}

	c, err := h.Coupons.Issue(r.Context(), req.TemplateID, req.CustomerID, service.NewCouponCode())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon template not found")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, couponResponse(c))
}

func (h CouponAdminHandler) listCustomers(w http.ResponseWriter, r *http.Request) {
	items, err := h.Customers.List(r.Context(), customerListLimit)
	if err != nil {
		writeServerError(w, err)
		return
	}
	resp := make([]map[string]any, 0, len(items))
	for _, c := range items {
		resp = append(resp, map[string]any{
			"id":        c.ID,
			"name":      c.Name,
			"phone":     c.Phone,
			"createdAt": c.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h CouponAdminHandler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Name == "" || req.Phone == "" {
		writeError(w, http.StatusBadRequest, "name and phone are required")
		return
	}

	c, err := h.Customers.Create(r.Context(), req.Name, req.Phone)
	if err != nil {
		if repository.IsDuplicate(err) {
			writeError(w, http.StatusBadRequest, "phone already registered")
			return
		}
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        c.ID,
		"name":      c.Name,
		"phone":     c.Phone,
		"createdAt": c.CreatedAt.Format(time.RFC3339),
	})
}

// addPoints appends to the customer's point ledger. Negative points are
// allowed so a redemption or correction can be recorded the same way.
func (h CouponAdminHandler) addPoints(w http.ResponseWriter, r *http.Request) {
	customerID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid customer id")
		return
	}
	if _, err := h.Customers.Get(r.Context(), customerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "customer not found")
			return
		}
		writeServerError(w, err)
		return
	}

	var req struct {
		Points   int    `json:"points"`
		BranchID *int64 `json:"branchId"`
		Note     string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.Points == 0 {
		writeError(w, http.StatusBadRequest, "points must not be zero")
		return
	}

	t, err := h.Points.Add(r.Context(), customerID, req.BranchID, req.Points, req.Note)
	if err != nil {
		writeServerError(w, err)
		return
	}
	balance, err := h.Points.Balance(r.Context(), customerID)
	if err != nil {
		writeServerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":        t.ID,
		"points":    t.Points,
		"note":      t.Note,
		"balance":   balance,
		"createdAt": t.CreatedAt.Format(time.RFC3339),
	})
}

func templateResponse(t *domain.CouponTemplate) map[string]any {
	return map[string]any{
		"id":            t.ID,
		"name":          t.Name,
		"discountType":  string(t.DiscountType),
		"discountValue": t.DiscountValue,
		"validDays":     t.ValidDays,
	}
}

func couponResponse(c *domain.CustomerCoupon) map[string]any {
	resp := map[string]any{
		"id":         c.ID,
		"code":       c.Code,
		"customerId": c.CustomerID,
		"status":     string(c.Status),
		"expiresAt":  c.ExpiresAt.Format(time.RFC3339),
	}
	if c.UsedAt != nil {
		resp["usedAt"] = c.UsedAt.Format(time.RFC3339)
	}
	if c.Template != nil {
		resp["template"] = templateResponse(c.Template)
	}
	return resp
}
