package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

func (h *Handler) adminOrders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.viewer.Rows(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("orders")
		e.ArrStart()
		for _, row := range rows {
			e.ObjStart()
			e.FieldStart("orderId")
			e.Str(row.OrderID)
			e.FieldStart("userName")
			e.Str(row.UserName)
			e.FieldStart("orderDate")
			e.Str(row.OrderDate)
			e.FieldStart("orderStatus")
			e.Str(row.OrderStatus)
			e.FieldStart("badge")
			e.Str(row.Badge)
			e.FieldStart("totalAmount")
			e.Num(jx.Num(row.TotalAmount.String()))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	})
}

func (h *Handler) adminOrderDetails(w http.ResponseWriter, r *http.Request) {
	order, err := h.viewer.Details(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(order); err != nil {
		zctx.From(r.Context()).Error("Encode order details", zap.Error(err))
	}
}
