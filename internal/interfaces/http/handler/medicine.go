package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appledger "github.com/medstock/backend/internal/application/ledger"
)

// MedicineHandler exposes the medicine catalogue and its stock ledger.
type MedicineHandler struct {
	BaseHandler
	service *appledger.LedgerService
}

// NewMedicineHandler creates a new MedicineHandler
func NewMedicineHandler(service *appledger.LedgerService) *MedicineHandler {
	return &MedicineHandler{service: service}
}

// RegisterRoutes wires the medicine and movement endpoints into the API group.
func (h *MedicineHandler) RegisterRoutes(api *gin.RouterGroup) {
	medicines := api.Group("/medicines")
	{
		medicines.POST("", h.Register)
		medicines.GET("", h.List)
		medicines.GET("/low-stock", h.ListLowStock)
		medicines.GET("/:id", h.Get)
		medicines.GET("/:id/movements", h.ListMedicineMovements)
		medicines.POST("/:id/activate", h.Activate)
		medicines.POST("/:id/deactivate", h.Deactivate)
		medicines.POST("/:id/deduct", h.Deduct)
		medicines.POST("/:id/restock", h.Restock)
		medicines.POST("/:id/loss", h.RecordLoss)
		medicines.POST("/:id/adjust", h.Adjust)
		medicines.POST("/:id/return", h.Return)
		medicines.POST("/:id/expire", h.Expire)
	}

	movements := api.Group("/movements")
	{
		movements.GET("", h.ListMovements)
	}
}

// Register creates a medicine and writes its opening ledger entry.
func (h *MedicineHandler) Register(c *gin.Context) {
	var req appledger.RegisterMedicineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.RegisterMedicine(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, result)
}

// Get returns a single medicine by ID.
func (h *MedicineHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	medicine, err := h.service.GetMedicine(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, medicine)
}

// List returns medicines matching the filter, paginated.
func (h *MedicineHandler) List(c *gin.Context) {
	var filter appledger.MedicineListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	medicines, total, err := h.service.ListMedicines(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, medicines, filter.Page, filter.PageSize, total)
}

// ListLowStock returns active medicines at or below their reorder level.
func (h *MedicineHandler) ListLowStock(c *gin.Context) {
	medicines, err := h.service.ListLowStock(c.Request.Context())
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, medicines)
}

// Deactivate removes a medicine from sale without touching its ledger.
func (h *MedicineHandler) Deactivate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	medicine, err := h.service.DeactivateMedicine(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, medicine)
}

// Activate puts a deactivated medicine back on sale.
func (h *MedicineHandler) Activate(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	medicine, err := h.service.ActivateMedicine(c.Request.Context(), id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, medicine)
}

// Deduct records a sale in the given pack unit.
func (h *MedicineHandler) Deduct(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.DeductStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.DeductStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Restock receives purchased stock in base units.
func (h *MedicineHandler) Restock(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.AddStock(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// RecordLoss writes off damaged or missing stock.
func (h *MedicineHandler) RecordLoss(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.RecordLossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.RecordLoss(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Adjust applies a signed stock correction after a physical count.
func (h *MedicineHandler) Adjust(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.RecordAdjustment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Return puts a customer return back into stock.
func (h *MedicineHandler) Return(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.ReturnStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.RecordReturn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Expire writes off stock past its expiry date.
func (h *MedicineHandler) Expire(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var req appledger.ExpireStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.service.WriteOffExpired(c.Request.Context(), id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// ListMovements returns ledger entries matching the filter, paginated.
func (h *MedicineHandler) ListMovements(c *gin.Context) {
	var filter appledger.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if raw := c.Query("medicine_id"); raw != "" {
		medicineID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid medicine ID")
			return
		}
		filter.MedicineID = &medicineID
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	movements, total, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, filter.Page, filter.PageSize, total)
}

// ListMedicineMovements returns the ledger for a single medicine.
func (h *MedicineHandler) ListMedicineMovements(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid medicine ID")
		return
	}

	var filter appledger.MovementListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	filter.MedicineID = &id
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	movements, total, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, movements, filter.Page, filter.PageSize, total)
}
