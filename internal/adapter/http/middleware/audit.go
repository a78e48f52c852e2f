package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"p2p-wallet/internal/core/domain"
	"p2p-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog records successful state-changing calls. Handlers may set
// CtxResourceID (and CtxUserID for anonymous routes) to enrich the entry.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			return
		}

		action, resourceType := mapRouteToAction(c.FullPath(), c.Request.Method)
		if action == "" {
			return
		}

		var userID *uuid.UUID
		if id, ok := UserID(c); ok {
			userID = &id
		}

		resourceID := c.GetString(CtxResourceID)
		if resourceID == "" {
			resourceID = c.Param("id")
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": status,
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserID:       userID,
			Action:       action,
			ResourceType: resourceType,
			ResourceID:   resourceID,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapRouteToAction(route, method string) (domain.AuditAction, string) {
	switch {
	case route == "/api/users/register" && method == http.MethodPost:
		return domain.AuditActionRegister, "user"
	case route == "/api/users/login" && method == http.MethodPost:
		return domain.AuditActionLogin, "session"
	case route == "/api/transactions/send" && method == http.MethodPost:
		return domain.AuditActionSend, "transaction"
	case route == "/api/transactions/request" && method == http.MethodPost:
		return domain.AuditActionRequest, "transaction"
	case route == "/api/transactions/:id/respond" && method == http.MethodPut:
		return domain.AuditActionRespond, "transaction"
	}
	return "", ""
}
