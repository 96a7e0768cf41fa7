package router

import (
	"github.com/gin-gonic/gin"

	"clipcap/internal/handler"
	"clipcap/internal/service"
)

func SetupRouter(r *gin.Engine, svc *service.Service) {
	api := r.Group("/api")

	hdl := handler.NewHandler(svc)
	{
		api.POST("/capability/captionTask", hdl.StartCaptionTask)
		api.GET("/capability/captionTask", hdl.GetCaptionTask)
		api.GET("/capability/history", hdl.GetTaskHistory)
		api.DELETE("/capability/task/:taskId", hdl.DeleteTask)
		api.GET("/capability/taskEvents", hdl.TaskEvents)
		api.POST("/capability/model", hdl.DownloadModel)
		api.POST("/file", hdl.UploadFile)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
	}
}
