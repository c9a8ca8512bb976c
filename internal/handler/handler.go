package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/repository"
	"github.com/gaida-lisongo/server-batis-nexus/internal/service"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/response"
)

// Handler carries the finance services behind the REST surface.
type Handler struct {
	transactionService  *service.TransactionService
	subscriptionService *service.SubscriptionService
	depenseService      *service.DepenseService
}

func NewHandler(db *gorm.DB, cfg *config.Config) *Handler {
	linker := service.NewProductLinker(repository.NewProductRegistry(db))
	return &Handler{
		transactionService:  service.NewTransactionService(db, cfg, linker),
		subscriptionService: service.NewSubscriptionService(db, cfg),
		depenseService:      service.NewDepenseService(db, cfg),
	}
}

// ============================================================
// Recettes (transaction ledger)
// ============================================================

type createRecetteRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	AgentID     *uint           `json:"agentId"`
	ProductID   uint            `json:"productId"`
	ProductType string          `json:"productType"`
}

// CreateRecette opens a ledger entry.
// POST /finance/recettes
func (h *Handler) CreateRecette(c *gin.Context) {
	var req createRecetteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	transaction, err := h.transactionService.Create(c.Request.Context(), service.CreateTransactionInput{
		Amount:      req.Amount,
		AgentID:     req.AgentID,
		ProductID:   req.ProductID,
		ProductType: req.ProductType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, transaction)
}

// GetRecettes returns one transaction when ?id= is given, otherwise a
// filtered, paginated page.
// GET /finance/recettes?{id|status|productType|productId|agentId|page|limit|sortBy|sortOrder}
func (h *Handler) GetRecettes(c *gin.Context) {
	if idStr := c.Query("id"); idStr != "" {
		id, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			response.ParamError(c, "invalid id")
			return
		}

		transaction, err := h.transactionService.Get(c.Request.Context(), uint(id))
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, transaction)
		return
	}

	query := service.ListQuery{
		Filter: repository.TransactionFilter{
			Status:      c.Query("status"),
			ProductType: c.Query("productType"),
			ProductID:   queryUint(c, "productId"),
			AgentID:     queryUint(c, "agentId"),
		},
		Page:      int(queryUint(c, "page")),
		Limit:     int(queryUint(c, "limit")),
		SortBy:    c.DefaultQuery("sortBy", "createdAt"),
		SortOrder: c.DefaultQuery("sortOrder", "desc"),
	}

	transactions, pagination, err := h.transactionService.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{
		"transactions": transactions,
		"pagination":   pagination,
	})
}

type updateRecetteRequest struct {
	ID          uint             `json:"id"`
	Amount      *decimal.Decimal `json:"amount"`
	AgentID     *uint            `json:"agentId"`
	ProductID   *uint            `json:"productId"`
	ProductType *string          `json:"productType"`
	Status      *string          `json:"status"`
}

// UpdateRecette patches a transaction, repointing the product back-reference
// when the link changed.
// PUT /finance/recettes
func (h *Handler) UpdateRecette(c *gin.Context) {
	var req updateRecetteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}
	if req.ID == 0 {
		response.ParamError(c, "Transaction ID is required")
		return
	}

	transaction, err := h.transactionService.Update(c.Request.Context(), req.ID, service.UpdateTransactionInput{
		Amount:      req.Amount,
		AgentID:     req.AgentID,
		ProductID:   req.ProductID,
		ProductType: req.ProductType,
		Status:      req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Transaction updated successfully", transaction)
}

type subscribeRequest struct {
	TransactionID uint `json:"transactionId"`
	StudentID     uint `json:"studentId"`
}

// SubscribeRecette runs the atomic pay-to-enroll transfer.
// PATCH /finance/recettes
func (h *Handler) SubscribeRecette(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.subscriptionService.Subscribe(c.Request.Context(), req.TransactionID, req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Student successfully subscribed to transaction", result)
}

// UnsubscribeRecette reverses one subscription transfer.
// DELETE /finance/recettes/subscriptions
func (h *Handler) UnsubscribeRecette(c *gin.Context) {
	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	transaction, err := h.subscriptionService.Unsubscribe(c.Request.Context(), req.TransactionID, req.StudentID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Subscription reversed", transaction)
}

type deleteRecetteRequest struct {
	ID uint `json:"id"`
}

// DeleteRecette removes a non-completed transaction.
// DELETE /finance/recettes
func (h *Handler) DeleteRecette(c *gin.Context) {
	var req deleteRecetteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == 0 {
		response.ParamError(c, "Transaction ID is required")
		return
	}

	if err := h.transactionService.Delete(c.Request.Context(), req.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Transaction deleted successfully", gin.H{"deletedId": req.ID})
}

// ============================================================
// Retraits (withdrawals)
// ============================================================

type createRetraitRequest struct {
	AgentID uint            `json:"agentId"`
	AnneeID uint            `json:"anneeId"`
	Service string          `json:"service"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreateRetrait files a withdrawal request.
// POST /finance/retraits
func (h *Handler) CreateRetrait(c *gin.Context) {
	var req createRetraitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	depense, err := h.depenseService.Create(c.Request.Context(), service.CreateDepenseInput{
		AgentID: req.AgentID,
		AnneeID: req.AnneeID,
		Service: req.Service,
		Amount:  req.Amount,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Retrait enregistré avec succès", depense)
}

// GetRetraitsByAgent lists one agent's withdrawals.
// GET /finance/retraits/user/:id
func (h *Handler) GetRetraitsByAgent(c *gin.Context) {
	id, err := paramUint(c, "id")
	if err != nil {
		response.ParamError(c, "invalid agent id")
		return
	}

	depenses, err := h.depenseService.ListByAgent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, depenses)
}

// GetRetraitsByAnnee lists withdrawals for one academic year.
// GET /finance/retraits/annee/:id
func (h *Handler) GetRetraitsByAnnee(c *gin.Context) {
	id, err := paramUint(c, "id")
	if err != nil {
		response.ParamError(c, "invalid annee id")
		return
	}

	depenses, err := h.depenseService.ListByAnnee(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, depenses)
}

// GetAllRetraits lists every withdrawal.
// GET /finance/retraits/all
func (h *Handler) GetAllRetraits(c *gin.Context) {
	depenses, err := h.depenseService.ListAll(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, depenses)
}

type updateRetraitRequest struct {
	AnneeID *uint            `json:"anneeId"`
	Service *string          `json:"service"`
	Amount  *decimal.Decimal `json:"amount"`
	Status  *string          `json:"status"`
}

// UpdateRetrait patches a withdrawal, including its status.
// PUT /finance/retraits/update/:id
func (h *Handler) UpdateRetrait(c *gin.Context) {
	id, err := paramUint(c, "id")
	if err != nil {
		response.ParamError(c, "invalid retrait id")
		return
	}

	var req updateRetraitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "invalid request body: "+err.Error())
		return
	}

	depense, err := h.depenseService.Update(c.Request.Context(), id, service.UpdateDepenseInput{
		AnneeID: req.AnneeID,
		Service: req.Service,
		Amount:  req.Amount,
		Status:  req.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Retrait mis à jour avec succès", depense)
}

// DeleteRetrait removes a withdrawal record.
// DELETE /finance/retraits/:id
func (h *Handler) DeleteRetrait(c *gin.Context) {
	id, err := paramUint(c, "id")
	if err != nil {
		response.ParamError(c, "invalid retrait id")
		return
	}

	if err := h.depenseService.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMessage(c, "Retrait supprimé avec succès", gin.H{"deletedId": id})
}

func queryUint(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(c.Query(name), 10, 32)
	if err != nil {
		return 0
	}
	return uint(value)
}

func paramUint(c *gin.Context, name string) (uint, error) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}
