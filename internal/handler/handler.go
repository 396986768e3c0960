// Package handler exposes the checkout flow and admin order views over HTTP.
// Each route translates one user-interaction event (checkout click, widget
// completion callback, widget dismissal) into a flow operation.
package handler

import (
	"net/http"
	"sync"

	"github.com/xenking/storefront-checkout/internal/admin"
	"github.com/xenking/storefront-checkout/internal/domain/checkout"
	"github.com/xenking/storefront-checkout/internal/store"
)

// Handler wires HTTP routes to the checkout service and the admin viewer.
type Handler struct {
	store    store.Store
	svc      *checkout.Service
	viewer   *admin.Viewer
	sessions *sessionRegistry
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(st store.Store, svc *checkout.Service, viewer *admin.Viewer) *Handler {
	return &Handler{
		store:    st,
		svc:      svc,
		viewer:   viewer,
		sessions: newSessionRegistry(),
	}
}

// Routes returns the HTTP mux for the checkout facade.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/checkout", h.initiateCheckout)
	mux.HandleFunc("GET /api/checkout/{id}", h.checkoutStatus)
	mux.HandleFunc("POST /api/checkout/{id}/confirm", h.confirmPayment)
	mux.HandleFunc("POST /api/checkout/{id}/dismiss", h.dismissPayment)
	mux.HandleFunc("GET /api/admin/orders", h.adminOrders)
	mux.HandleFunc("GET /api/admin/orders/{id}", h.adminOrderDetails)
	return mux
}

// sessionRegistry tracks live checkout sessions by id.
type sessionRegistry struct {
	mu sync.RWMutex
	m  map[string]*checkout.Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{m: make(map[string]*checkout.Session)}
}

func (r *sessionRegistry) add(s *checkout.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[s.ID()] = s
}

func (r *sessionRegistry) get(id string) (*checkout.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.m[id]
	return s, ok
}
