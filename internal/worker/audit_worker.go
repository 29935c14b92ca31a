package worker

import (
	"github.com/spec-kit/bookshelf-auth/internal/service"
)

// StartAuditWorker subscribes the audit log writer to security events.
// Delivery is synchronous; there is no background goroutine to stop.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}
