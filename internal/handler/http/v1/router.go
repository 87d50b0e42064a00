package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	// Liveness доступен без ключа для балансировщика
	api.GET("/system/live", h.liveness)

	protected := api.Group("", APIKeyAuthMiddleware(h.cfg, h.logger))

	// Прием сигналов
	protected.POST("/signals", h.submitSignal)
	protected.POST("/sos", h.triggerSOS)

	detections := protected.Group("/detections")
	{
		detections.POST("/crowd", h.detectCrowd)
		detections.POST("/anomaly", h.detectAnomaly)
		detections.POST("/face", h.detectFaces)
	}

	// Жизненный цикл инцидентов
	incidents := protected.Group("/incidents")
	{
		incidents.GET("", h.listIncidents)
		incidents.GET("/stats", h.getStats)
		incidents.GET("/:id", h.getIncident)
		incidents.POST("/:id/acknowledge", h.acknowledgeIncident)
		incidents.POST("/:id/escalate", h.escalateIncident)
		incidents.POST("/:id/resolve", h.resolveIncident)
		incidents.POST("/:id/location", h.refineLocation)
		incidents.POST("/:id/attachments", h.attachToIncident)
	}

	protected.POST("/attachments", h.uploadAttachment)
	protected.GET("/attachments/:ref", h.getAttachment)

	// Поток изменений (SSE)
	protected.GET("/stream", h.streamChanges)

	protected.GET("/system/health", h.healthCheck)

	admin := protected.Group("/admin")
	{
		admin.POST("/maintenance/:intent", h.runMaintenance)
		admin.POST("/broadcast", h.broadcast)
		admin.GET("/logs", h.auditLog)
	}
}
