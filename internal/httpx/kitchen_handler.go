package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/auth"
	"github.com/ariefcatur/go-pos-backend/internal/kitchen"
)

type KitchenService interface {
	Create(ctx context.Context, in kitchen.CreateInput) (*kitchen.Order, error)
	Get(ctx context.Context, id int64) (*kitchen.Order, error)
	List(ctx context.Context, f kitchen.ListFilter) ([]kitchen.Order, int, error)
	Update(ctx context.Context, id int64, in kitchen.UpdateInput) (*kitchen.Order, error)
	Remove(ctx context.Context, id int64) (*kitchen.Order, error)
	Ticket(ctx context.Context, id int64, baseURL string) ([]byte, error)
}

type KitchenHandler struct {
	Service       KitchenService
	TicketBaseURL string
}

var (
	kitchenReaders = []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleManager, auth.RoleCashier, auth.RoleKitchen}
	kitchenAdmins  = []auth.Role{auth.RoleAdmin, auth.RoleOwner, auth.RoleManager}
)

func (h *KitchenHandler) Register(r chi.Router) {
	r.Route("/kitchen-orders", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(writeError, kitchenReaders...))
			r.Post("/", h.create)
			r.Get("/", h.list)
			r.Get("/{id}", h.get)
			r.Patch("/{id}", h.update)
			r.Get("/{id}/ticket", h.ticket)
		})
		r.With(auth.RequireRole(writeError, kitchenAdmins...)).Delete("/{id}", h.remove)
	})
}

func (h *KitchenHandler) create(w http.ResponseWriter, r *http.Request) {
	var in kitchen.CreateInput
	if err := decode(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Create(ctx, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Kitchen order created", kitchen.ToResponse(o))
}

func (h *KitchenHandler) list(w http.ResponseWriter, r *http.Request) {
	f, err := kitchen.ParseListFilter(r.URL.Query())
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
	page(w, "Kitchen orders retrieved", kitchen.ToResponses(items), f.Page.Meta(total))
}

func (h *KitchenHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Service.Get(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Kitchen order retrieved", kitchen.ToResponse(o))
}

func (h *KitchenHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in kitchen.UpdateInput
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

	o, err := h.Service.Update(ctx, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Kitchen order updated", kitchen.ToResponse(o))
}

func (h *KitchenHandler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Service.Remove(ctx, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Kitchen order deleted", kitchen.ToResponse(o))
}

func (h *KitchenHandler) ticket(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	png, err := h.Service.Ticket(ctx, id, h.TicketBaseURL)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
