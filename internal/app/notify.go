package app

import (
	"go.uber.org/zap"

	"github.com/xenking/storefront-checkout/internal/domain/checkout"
)

// toastNotifier records user-facing checkout notifications in the service
// log. The storefront shows its own toasts from the API responses; this
// keeps a server-side trail of what the shopper was told.
type toastNotifier struct {
	lg *zap.Logger
}

var _ checkout.Notifier = toastNotifier{}

func (n toastNotifier) Success(title, description string) {
	n.lg.Info("Checkout notification",
		zap.String("kind", "success"),
		zap.String("title", title),
		zap.String("description", description),
	)
}

func (n toastNotifier) Failure(title, description string) {
	n.lg.Warn("Checkout notification",
		zap.String("kind", "failure"),
		zap.String("title", title),
		zap.String("description", description),
	)
}
