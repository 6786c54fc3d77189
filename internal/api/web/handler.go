package web

import (
	"errors"
	"net/http"
	"time"

	"gitee.com/flycash/task-reminder/internal/domain"
	"gitee.com/flycash/task-reminder/internal/errs"
	"gitee.com/flycash/task-reminder/internal/repository"
	"gitee.com/flycash/task-reminder/internal/service/audit"
	"gitee.com/flycash/task-reminder/internal/service/planner"
	"gitee.com/flycash/task-reminder/internal/service/scheduler"
	"gitee.com/flycash/task-reminder/internal/service/sender"
	"github.com/gin-gonic/gin"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server/egin"
)

const recentAuditLimit = 50

// Handler 提醒核心的HTTP入口
// 上游CRUD系统通过任务事件接口触发排期，诊断接口只读，不做鉴权（由网关层负责）
type Handler struct {
	planner  planner.Service
	sender   sender.ReminderSender
	repo     repository.ReminderRepository
	auditSvc audit.Service
	dispatch *scheduler.DispatchTask
	logger   *elog.Component
}

// NewHandler 创建HTTP入口
func NewHandler(
	p planner.Service,
	s sender.ReminderSender,
	repo repository.ReminderRepository,
	auditSvc audit.Service,
	dispatch *scheduler.DispatchTask,
) *Handler {
	return &Handler{
		planner:  p,
		sender:   s,
		repo:     repo,
		auditSvc: auditSvc,
		dispatch: dispatch,
		logger:   elog.DefaultLogger,
	}
}

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(server *egin.Component) {
	api := server.Group("/api")
	api.POST("/tasks/events", h.HandleTaskEvent)
	api.POST("/reminders/trigger", h.TriggerReminder)

	debug := api.Group("/debug")
	debug.GET("/reminders", h.DebugReminders)
	debug.POST("/process", h.DebugProcess)
}

// TaskEventReq 任务事件请求，携带任务的完整快照
type TaskEventReq struct {
	Trigger string `json:"trigger" binding:"required"`
	Task    struct {
		ID           int64  `json:"id" binding:"required"`
		Title        string `json:"title" binding:"required"`
		Description  string `json:"description"`
		Priority     string `json:"priority" binding:"required"`
		Status       string `json:"status" binding:"required"`
		Deadline     *int64 `json:"deadline"`
		AssigneeID   int64  `json:"assigneeId" binding:"required"`
		AssignorName string `json:"assignorName"`
		ProjectID    int64  `json:"projectId"`
		ProjectName  string `json:"projectName"`
	} `json:"task" binding:"required"`
}

// HandleTaskEvent 接收任务生命周期事件并触发提醒排期
// 排期是尽力而为：存储故障只记日志，照样返回202，绝不让上游回滚任务保存
func (h *Handler) HandleTaskEvent(c *gin.Context) {
	var req TaskEventReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	task := domain.Task{
		ID:           req.Task.ID,
		Title:        req.Task.Title,
		Description:  req.Task.Description,
		Priority:     domain.Priority(req.Task.Priority),
		Status:       domain.TaskStatus(req.Task.Status),
		AssigneeID:   req.Task.AssigneeID,
		AssignorName: req.Task.AssignorName,
		ProjectID:    req.Task.ProjectID,
		ProjectName:  req.Task.ProjectName,
	}
	if req.Task.Deadline != nil {
		deadline := time.UnixMilli(*req.Task.Deadline)
		task.Deadline = &deadline
	}

	created, err := h.planner.Plan(c.Request.Context(), task, domain.TriggerReason(req.Trigger))
	if err != nil {
		if errors.Is(err, errs.ErrInvalidParameter) {
			respondError(c, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("任务事件排期失败",
			elog.Any("taskID", task.ID),
			elog.FieldErr(err),
		)
	}

	respondSuccess(c, http.StatusAccepted, gin.H{"created": len(created)})
}

// TriggerReminderReq 手动触发请求
type TriggerReminderReq struct {
	TaskID          int64  `json:"taskId" binding:"required"`
	ParticipantID   int64  `json:"participantId" binding:"required"`
	ReminderType    string `json:"reminderType" binding:"required"`
	TriggeredByName string `json:"triggeredByName"`
}

// TriggerReminder 手动触发一条提醒，同步等待网关结果
func (h *Handler) TriggerReminder(c *gin.Context) {
	var req TriggerReminderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}

	resp, err := h.sender.SendNow(c.Request.Context(), sender.ManualSendReq{
		TaskID:          req.TaskID,
		ParticipantID:   req.ParticipantID,
		ReminderType:    domain.ReminderType(req.ReminderType),
		TriggeredByName: req.TriggeredByName,
	})
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrInvalidParameter):
			respondError(c, http.StatusBadRequest, err)
		case errors.Is(err, errs.ErrTaskNotFound),
			errors.Is(err, errs.ErrParticipantNotFound),
			errors.Is(err, errs.ErrNoContactAddress):
			respondError(c, http.StatusNotFound, err)
		case errors.Is(err, errs.ErrAuthFailed):
			// 密钥失效要让调用方立刻看到，运维换key
			respondError(c, http.StatusBadGateway, err)
		default:
			respondError(c, http.StatusBadGateway, err)
		}
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"messageId": resp.MessageID,
		"instance":  resp.Instance,
	})
}

// DebugReminders 诊断页：队列计数 + 最近投递记录
func (h *Handler) DebugReminders(c *gin.Context) {
	ctx := c.Request.Context()

	stats, err := h.repo.Stats(ctx, time.Now())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	records, err := h.auditSvc.ListRecent(ctx, recentAuditLimit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{
		"due":        stats.Due,
		"future":     stats.Future,
		"deadLetter": stats.DeadLetter,
		"recent":     records,
	})
}

// DebugProcess 立刻扫一批到期提醒，绕开循环的休眠间隔
func (h *Handler) DebugProcess(c *gin.Context) {
	cnt, err := h.dispatch.Process(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"processed": cnt})
}

func respondSuccess(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"code": 0, "data": data})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"code": status, "msg": err.Error()})
}
