package web

import (
	"net/http"
	"strconv"

	"gitee.com/visioncare/notification-center/internal/domain"
	"gitee.com/visioncare/notification-center/internal/pkg/ratelimit"
	"gitee.com/visioncare/notification-center/internal/service/notification"
	"gitee.com/visioncare/notification-center/internal/service/preference"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 200
)

// Handler 通知中心的 HTTP 入口
type Handler struct {
	svc     notification.Service
	prefSvc preference.Service
	limiter ratelimit.Limiter
	logger  *elog.Component
}

// NewHandler 创建 HTTP 入口。limiter 为 nil 时发送接口不限流
func NewHandler(svc notification.Service, prefSvc preference.Service, limiter ratelimit.Limiter) *Handler {
	return &Handler{
		svc:     svc,
		prefSvc: prefSvc,
		limiter: limiter,
		logger:  elog.DefaultLogger,
	}
}

// RegisterRoutes 把处理器绑定到路由引擎
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.POST("/notifications", h.rateLimit, h.Send)
		api.POST("/notifications/batch", h.rateLimit, h.SendBatch)
		api.POST("/notifications/retry", h.Retry)
		api.GET("/notifications", h.ListLogs)
		api.GET("/notifications/stats", h.Stats)
		api.GET("/preferences/:recipient", h.GetPreferences)
		api.PUT("/preferences/:recipient", h.UpdatePreferences)
	}
}

// rateLimit 发送接口的全局限流
func (h *Handler) rateLimit(c *gin.Context) {
	if h.limiter == nil {
		return
	}
	limited, err := h.limiter.Limit(c.Request.Context(), "notification:send")
	if err != nil {
		// 限流器故障时放行，避免 Redis 抖动拖垮发送
		h.logger.Warn("限流器判断失败", elog.FieldErr(err))
		return
	}
	if limited {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
	}
}

// Send 单条发送。投递结果无论成败都以 200 返回，契约里的失败在响应体里表达
func (h *Handler) Send(c *gin.Context) {
	var req SendNotificationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	resp, err := h.svc.Send(c.Request.Context(), req.toDomain())
	if err != nil {
		h.logger.Warn("发送通知失败",
			elog.FieldErr(err),
			elog.String("recipient", req.Recipient.Email+req.Recipient.Phone))
	}
	c.JSON(http.StatusOK, toSendResp(resp))
}

// SendBatch 批量发送，响应按请求下标一一对应
func (h *Handler) SendBatch(c *gin.Context) {
	var req BatchSendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	ns := make([]domain.Notification, 0, len(req.Notifications))
	for _, r := range req.Notifications {
		ns = append(ns, r.toDomain())
	}

	responses, err := h.svc.SendBatch(c.Request.Context(), ns)
	if err != nil {
		h.logger.Error("批量发送失败", elog.FieldErr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := BatchSendResp{Responses: make([]SendNotificationResp, 0, len(responses))}
	for _, resp := range responses {
		out.Responses = append(out.Responses, toSendResp(resp))
	}
	c.JSON(http.StatusOK, out)
}

// Retry 批量重试失败记录
func (h *Handler) Retry(c *gin.Context) {
	count, err := h.svc.RetryFailed(c.Request.Context())
	if err != nil {
		h.logger.Error("批量重试失败", elog.FieldErr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, RetryResp{Retried: count})
}

// ListLogs 按发送时间倒序分页查询日志
func (h *Handler) ListLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageLimit)))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	if limit == 0 || limit > maxPageLimit {
		limit = maxPageLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}

	logs, err := h.svc.ListLogs(c.Request.Context(), limit, offset)
	if err != nil {
		h.logger.Error("查询日志失败", elog.FieldErr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := ListLogsResp{Logs: make([]NotificationLogVO, 0, len(logs))}
	for _, l := range logs {
		out.Logs = append(out.Logs, toLogVO(l))
	}
	c.JSON(http.StatusOK, out)
}

// Stats 全量日志统计
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("统计失败", elog.FieldErr(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toStatsResp(stats))
}

// GetPreferences 查询偏好，不存在时懒创建默认值
func (h *Handler) GetPreferences(c *gin.Context) {
	recipient := c.Param("recipient")
	prefs, err := h.prefSvc.GetByRecipient(c.Request.Context(), recipient)
	if err != nil {
		h.logger.Error("查询偏好失败", elog.FieldErr(err), elog.String("recipient", recipient))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPreferencesVO(prefs))
}

// UpdatePreferences 部分更新偏好
func (h *Handler) UpdatePreferences(c *gin.Context) {
	recipient := c.Param("recipient")

	var req UpdatePreferencesReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	prefs, err := h.prefSvc.Update(c.Request.Context(), recipient, req.toPatch())
	if err != nil {
		h.logger.Error("更新偏好失败", elog.FieldErr(err), elog.String("recipient", recipient))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toPreferencesVO(prefs))
}
