package ledger

import (
	"context"
	"fmt"

	"github.com/medstock/backend/internal/domain/ledger"
	"github.com/medstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LowStockHandler reacts to StockBelowReorderLevel events and forwards
// them to a notifier so someone restocks before the shelf runs dry.
type LowStockHandler struct {
	logger   *zap.Logger
	notifier LowStockNotifier
}

// LowStockNotifier is the interface for delivering restock alerts.
// Implementations can support different channels (in-app, email, SMS).
type LowStockNotifier interface {
	// NotifyLowStock delivers a restock alert
	NotifyLowStock(ctx context.Context, alert LowStockAlert) error
}

// LowStockAlert describes a medicine that crossed its reorder threshold
type LowStockAlert struct {
	MedicineID   string `json:"medicine_id"`
	Name         string `json:"name"`
	CurrentStock int64  `json:"current_stock"`
	ReorderLevel int64  `json:"reorder_level"`
	OutOfStock   bool   `json:"out_of_stock"`
}

// NewLowStockHandler creates a new handler for low stock events
func NewLowStockHandler(logger *zap.Logger) *LowStockHandler {
	return &LowStockHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for delivering alerts
func (h *LowStockHandler) WithNotifier(notifier LowStockNotifier) *LowStockHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockHandler) EventTypes() []string {
	return []string{ledger.EventTypeStockBelowReorder}
}

// Handle processes a StockBelowReorderLevelEvent
func (h *LowStockHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStock, ok := event.(*ledger.StockBelowReorderLevelEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", ledger.EventTypeStockBelowReorder),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			ledger.EventTypeStockBelowReorder, event.EventType())
	}

	h.logger.Warn("stock below reorder level",
		zap.String("medicine_id", lowStock.MedicineID.String()),
		zap.String("name", lowStock.Name),
		zap.Int64("current_stock", lowStock.CurrentStock),
		zap.Int64("reorder_level", lowStock.ReorderLevel),
	)

	if h.notifier == nil {
		return nil
	}

	alert := LowStockAlert{
		MedicineID:   lowStock.MedicineID.String(),
		Name:         lowStock.Name,
		CurrentStock: lowStock.CurrentStock,
		ReorderLevel: lowStock.ReorderLevel,
		OutOfStock:   lowStock.CurrentStock == 0,
	}
	if err := h.notifier.NotifyLowStock(ctx, alert); err != nil {
		// Notification failure must not fail the event handling
		h.logger.Error("failed to deliver low stock alert",
			zap.String("medicine_id", alert.MedicineID),
			zap.Error(err),
		)
	}
	return nil
}

var _ shared.EventHandler = (*LowStockHandler)(nil)

// LoggingLowStockNotifier logs alerts instead of delivering them.
// Useful for development and testing.
type LoggingLowStockNotifier struct {
	logger *zap.Logger
}

// NewLoggingLowStockNotifier creates a new logging notifier
func NewLoggingLowStockNotifier(logger *zap.Logger) *LoggingLowStockNotifier {
	return &LoggingLowStockNotifier{
		logger: logger,
	}
}

// NotifyLowStock logs the restock alert
func (n *LoggingLowStockNotifier) NotifyLowStock(_ context.Context, alert LowStockAlert) error {
	n.logger.Warn("RESTOCK ALERT",
		zap.String("medicine_id", alert.MedicineID),
		zap.String("name", alert.Name),
		zap.Int64("current_stock", alert.CurrentStock),
		zap.Int64("reorder_level", alert.ReorderLevel),
		zap.Bool("out_of_stock", alert.OutOfStock),
	)
	return nil
}

var _ LowStockNotifier = (*LoggingLowStockNotifier)(nil)
