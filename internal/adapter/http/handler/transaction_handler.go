package handler

import (
	"p2p-wallet/internal/adapter/http/dto"
	"p2p-wallet/internal/adapter/http/middleware"
	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"
	"p2p-wallet/pkg/apperror"
	"p2p-wallet/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles transfers, requests and history.
type TransactionHandler struct {
	transferSvc ports.TransferService
	querySvc    ports.QueryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transferSvc ports.TransferService, querySvc ports.QueryService) *TransactionHandler {
	return &TransactionHandler{transferSvc: transferSvc, querySvc: querySvc}
}

// Send handles POST /api/transactions/send.
func (h *TransactionHandler) Send(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.SendMoneyRequest
	if appErr := dto.BindJSON(c, &req); appErr != nil {
		response.Error(c, appErr)
		return
	}
	receiverID, ok := parseID(c, req.ReceiverID, "receiverId")
	if !ok {
		return
	}

	result, err := h.transferSvc.SendMoney(c.Request.Context(), ports.SendMoneyRequest{
		SenderID:    userID,
		ReceiverID:  receiverID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, result.Transaction.ID.String())
	response.Created(c, "Money sent successfully", dto.NewTransferResponse(result))
}

// Request handles POST /api/transactions/request.
func (h *TransactionHandler) Request(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req dto.RequestMoneyRequest
	if appErr := dto.BindJSON(c, &req); appErr != nil {
		response.Error(c, appErr)
		return
	}
	payerID, ok := parseID(c, req.PayerID, "payerId")
	if !ok {
		return
	}

	result, err := h.transferSvc.RequestMoney(c.Request.Context(), ports.RequestMoneyRequest{
		RequesterID: userID,
		PayerID:     payerID,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, result.Transaction.ID.String())
	response.Created(c, "Money request sent successfully", dto.NewTransferResponse(result))
}

// Respond handles PUT /api/transactions/:id/respond.
func (h *TransactionHandler) Respond(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	txnID, ok := parseID(c, c.Param("id"), "id")
	if !ok {
		return
	}

	var req dto.RespondRequest
	if appErr := dto.BindJSON(c, &req); appErr != nil {
		response.Error(c, appErr)
		return
	}

	result, err := h.transferSvc.RespondToRequest(c.Request.Context(), ports.RespondRequest{
		TransactionID: txnID,
		ActorID:       userID,
		Action:        req.Action,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	msg := "Request rejected"
	if result.Transaction.Status == domain.TransactionStatusCompleted {
		msg = "Request accepted and payment completed"
	}
	response.OK(c, msg, dto.NewTransferResponse(result))
}

// List handles GET /api/transactions?type=&status=.
func (h *TransactionHandler) List(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var q dto.ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}

	views, err := h.querySvc.ListTransactions(c.Request.Context(), userID, ports.TransactionFilter{
		Type:   q.Type,
		Status: q.Status,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Transactions retrieved successfully", dto.NewTransactionListResponse(views))
}

// Summary handles GET /api/transactions/summary.
func (h *TransactionHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.querySvc.GetSummary(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Summary retrieved successfully", dto.NewSummaryResponse(summary))
}

func parseID(c *gin.Context, raw, path string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, apperror.ValidationFields("Validation failed", []apperror.FieldError{
			{Path: path, Message: "Invalid ID format"},
		}))
		return uuid.Nil, false
	}
	return id, true
}
