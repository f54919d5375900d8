package httpx

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/auth"
	"github.com/ariefcatur/go-pos-backend/internal/loyalty"
)

type LoyaltyService interface {
	Create(ctx context.Context, in loyalty.CreateInput, idemKey string) (*loyalty.Transaction, bool, error)
	Get(ctx context.Context, id int64) (*loyalty.Transaction, error)
	List(ctx context.Context, f loyalty.ListFilter) ([]loyalty.Transaction, int, error)
	Update(ctx context.Context, id int64, in loyalty.UpdateInput) (*loyalty.Transaction, error)
	Remove(ctx context.Context, id int64) (*loyalty.Transaction, error)
}

type LoyaltyHandler struct {
	Service LoyaltyService
}

const maxIdempotencyKey = 128

var (
	loyaltyWriters = []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleManager, auth.RoleCashier}
	loyaltyAdmins  = []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleManager}
)

func (h *LoyaltyHandler) Register(r chi.Router) {
	r.Route("/loyalty-point-transactions", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(writeError, loyaltyWriters...))
			r.Post("/", h.create)
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(writeError, loyaltyAdmins...))
			r.Patch("/{id}", h.update)
			r.Delete("/{id}", h.remove)
		})
	})
}

func (h *LoyaltyHandler) create(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if len(key) > maxIdempotencyKey {
		writeError(w, r, apperr.BadRequest("Idempotency-Key must be at most %d characters", maxIdempotencyKey))
		return
	}
	var in loyalty.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, replayed, err := h.Service.Create(ctx, in, key)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
		respond(w, http.StatusOK, "Loyalty point transaction already recorded", loyalty.ToResponse(t))
		return
	}
	respond(w, http.StatusCreated, "Loyalty point transaction created", loyalty.ToResponse(t))
}

func (h *LoyaltyHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := loyalty.ParseListFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	items, total, err := h.Service.List(ctx, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	page(w, "Loyalty point transactions retrieved", loyalty.ToResponses(items), f.Page.Meta(total))
}

func (h *LoyaltyHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	t, err := h.Service.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Loyalty point transaction retrieved", loyalty.ToResponse(t))
}

func (h *LoyaltyHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in loyalty.UpdateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Empty() {
		writeError(w, r, apperr.BadRequest("no fields to update"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Service.Update(ctx, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Loyalty point transaction updated", loyalty.ToResponse(t))
}

func (h *LoyaltyHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	t, err := h.Service.Remove(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Loyalty point transaction deleted", loyalty.ToResponse(t))
}
