package main

import (
	"context"

	"gitee.com/flycash/task-reminder/cmd/platform/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
	"github.com/gotomicro/ego/server"
)

func main() {
	egoApp := ego.New()

	// ego.New() 之后配置才加载完成，这时候才能装配依赖
	app := ioc.InitApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app.StartTasks(ctx)

	if err := egoApp.Serve(func() server.Server {
		return app.WebServer
	}()).Run(); err != nil {
		elog.Panic("startup", elog.Any("err", err))
	}
}
