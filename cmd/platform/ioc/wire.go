//go:build wireinject

package ioc

import (
	"gitee.com/flycash/task-reminder/internal/api/web"
	"gitee.com/flycash/task-reminder/internal/ioc"
	"gitee.com/flycash/task-reminder/internal/repository"
	"gitee.com/flycash/task-reminder/internal/repository/dao"
	auditsvc "gitee.com/flycash/task-reminder/internal/service/audit"
	"gitee.com/flycash/task-reminder/internal/service/channel"
	"gitee.com/flycash/task-reminder/internal/service/planner"
	"gitee.com/flycash/task-reminder/internal/service/scheduler"
	"gitee.com/flycash/task-reminder/internal/service/sender"
	"gitee.com/flycash/task-reminder/internal/service/workwindow"
	"github.com/google/wire"
)

var (
	baseSet = wire.NewSet(
		ioc.InitDB,
		ioc.InitRedisClient,
		ioc.InitDistributedLock,
		ioc.InitGatewayConfig,
		ioc.InitProvider,
		ioc.InitSenderConfig,
		ioc.InitDispatchConfig,
	)
	repoSet = wire.NewSet(
		dao.NewReminderDAO,
		dao.NewTaskDAO,
		dao.NewParticipantDAO,
		dao.NewDeliveryLogDAO,
		repository.NewReminderRepository,
		repository.NewTaskRepository,
		repository.NewParticipantRepository,
		repository.NewDeliveryLogRepository,
	)
	svcSet = wire.NewSet(
		auditsvc.NewService,
		workwindow.NewResolver,
		channel.NewResolver,
		planner.NewService,
		sender.NewSender,
	)
	taskSet = wire.NewSet(
		scheduler.NewDispatchTask,
		scheduler.NewStaleClaimTask,
		ioc.InitTasks,
	)
)

func InitApp() *ioc.App {
	wire.Build(
		baseSet,
		repoSet,
		svcSet,
		taskSet,

		web.NewHandler,
		ioc.InitWebServer,
		wire.Struct(new(ioc.App), "*"),
	)
	return new(ioc.App)
}
