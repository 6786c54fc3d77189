package ioc

import (
	"gitee.com/flycash/task-reminder/internal/api/web"
	"github.com/gotomicro/ego/server/egin"
)

func InitWebServer(handler *web.Handler) *egin.Component {
	server := egin.Load("server.web").Build()
	handler.RegisterRoutes(server)
	return server
}
