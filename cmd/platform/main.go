package main

import (
	"context"

	"gitee.com/visioncare/notification-center/internal/ioc"
	"github.com/gotomicro/ego"
	"github.com/gotomicro/ego/core/elog"
)

func main() {
	app := ioc.InitApp()
	app.StartTasks(context.Background())
	defer app.Shutdown(context.Background())

	if err := ego.New().Serve(app.Web).Run(); err != nil {
		elog.Panic("startup", elog.FieldErr(err))
	}
}
