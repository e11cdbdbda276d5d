package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/controllers"
)

func SetupReportRoutes(protected *gin.RouterGroup, reportController *controllers.ReportController) {
	reports := protected.Group("/reports")
	{
		reports.POST("", reportController.CreateReport)
		reports.GET("/mine", reportController.GetMyReports)
	}
}
