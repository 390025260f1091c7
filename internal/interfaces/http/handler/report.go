package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	appreport "github.com/medstock/backend/internal/application/report"
)

// ReportHandler exposes reconciliation and analytics endpoints.
type ReportHandler struct {
	BaseHandler
	reconciliation *appreport.ReconciliationService
	analytics      *appreport.AnalyticsService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(
	reconciliation *appreport.ReconciliationService,
	analytics *appreport.AnalyticsService,
) *ReportHandler {
	return &ReportHandler{
		reconciliation: reconciliation,
		analytics:      analytics,
	}
}

// RegisterRoutes wires the report endpoints into the API group.
func (h *ReportHandler) RegisterRoutes(api *gin.RouterGroup) {
	reconciliation := api.Group("/reconciliation")
	{
		reconciliation.POST("/compare", h.CompareStock)
		reconciliation.GET("/audit", h.AuditReport)
	}

	reports := api.Group("/reports")
	{
		reports.GET("/restock-recommendations", h.RestockRecommendations)
		reports.GET("/dead-stock", h.DeadStock)
		reports.GET("/top-sellers", h.TopSellers)
		reports.GET("/bottom-sellers", h.BottomSellers)
		reports.GET("/category-performance", h.CategoryPerformance)
	}
}

// CompareStock checks a declared closing count against the expected one.
func (h *ReportHandler) CompareStock(c *gin.Context) {
	var req appreport.StockComparisonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	comparison, err := h.reconciliation.CompareStock(req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, comparison)
}

// AuditReport folds the movement ledger over a date window, one row per
// active medicine.
func (h *ReportHandler) AuditReport(c *gin.Context) {
	var filter appreport.AuditReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	// Dates bind at midnight; push the end forward so the last day counts.
	filter.EndDate = filter.EndDate.Add(24 * time.Hour)

	auditReport, err := h.reconciliation.AuditReport(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, auditReport)
}

// RestockRecommendations lists medicines that need reordering, ranked by
// urgency.
func (h *ReportHandler) RestockRecommendations(c *gin.Context) {
	recommendations, err := h.analytics.RestockRecommendations(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, recommendations)
}

// DeadStock lists medicines with no recent sales and the capital tied up
// in them.
func (h *ReportHandler) DeadStock(c *gin.Context) {
	items, err := h.analytics.DeadStock(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, items)
}

// TopSellers ranks medicines by units sold in the window, best first.
func (h *ReportHandler) TopSellers(c *gin.Context) {
	filter, ok := h.bindRankingFilter(c)
	if !ok {
		return
	}

	sellers, err := h.analytics.TopSellers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sellers)
}

// BottomSellers ranks medicines by units sold in the window, worst first.
func (h *ReportHandler) BottomSellers(c *gin.Context) {
	filter, ok := h.bindRankingFilter(c)
	if !ok {
		return
	}

	sellers, err := h.analytics.BottomSellers(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, sellers)
}

// CategoryPerformance aggregates sales by medicine category.
func (h *ReportHandler) CategoryPerformance(c *gin.Context) {
	filter, ok := h.bindRankingFilter(c)
	if !ok {
		return
	}

	categories, err := h.analytics.CategoryPerformance(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, categories)
}

func (h *ReportHandler) bindRankingFilter(c *gin.Context) (appreport.SellerRankingFilter, bool) {
	var filter appreport.SellerRankingFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return filter, false
	}
	filter.EndDate = filter.EndDate.Add(24 * time.Hour)
	return filter, true
}
