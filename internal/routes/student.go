package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"quipus-system/internal/controllers"
	"quipus-system/internal/services"
	"quipus-system/pkg/middleware"
)

func runStudentRouter(secureGroup *echo.Group, studentService services.StudentServiceInterface, logger *zap.Logger, authMW *middleware.AuthMiddleware) {
	studentCtrl := controllers.NewStudentController(studentService, logger)

	studentGroup := secureGroup.Group("/students")
	{
		studentGroup.GET("", studentCtrl.GetStudents)
		studentGroup.GET("/search", studentCtrl.SearchStudents)
		studentGroup.GET("/grade-config", studentCtrl.GetGradeConfig)
		studentGroup.GET("/:id", studentCtrl.FindStudent)
		studentGroup.POST("", studentCtrl.RegisterStudent, authMW.RequireAdministrator)
		studentGroup.PUT("/:id", studentCtrl.UpdateStudent, authMW.RequireAdministrator)
		studentGroup.DELETE("/:id", studentCtrl.DeleteStudent, authMW.RequireAdministrator)
		studentGroup.POST("/promote_grades", studentCtrl.PromoteGrades, authMW.RequireAdministrator)
	}
}
