package errs

import (
	"errors"
)

// 定义统一的错误类型
var (
	ErrInvalidParameter  = errors.New("参数错误")
	ErrReminderNotFound  = errors.New("提醒记录不存在")
	ErrReminderDuplicate = errors.New("提醒记录主键冲突")
	ErrReminderClaimed   = errors.New("提醒记录已被抢占")
	ErrPlanReminder      = errors.New("写入提醒计划失败")
	ErrNoContactAddress  = errors.New("执行人没有联系方式")

	ErrTaskNotFound        = errors.New("任务记录不存在")
	ErrParticipantNotFound = errors.New("参与人记录不存在")

	ErrChannelUnresolved = errors.New("网关实例未确认")
	ErrAuthFailed        = errors.New("网关鉴权失败，需要更换密钥")
	ErrGatewayFailed     = errors.New("网关返回错误")
	ErrTransportFailed   = errors.New("网关网络请求失败")
	ErrMalformedResponse = errors.New("网关响应缺少消息ID")
	ErrSendRateLimited   = errors.New("触发网关发送限流")

	ErrCreateDeliveryLogFailed = errors.New("创建投递日志失败")
)
