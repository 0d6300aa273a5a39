package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/apis"
	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/middleware"
	"github.com/soybean-go/admin-core/sdk/pkg/authz"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
	"github.com/soybean-go/admin-core/sdk/pkg/logger"
)

// InitRouter 注册全部路由。/auth/login 和 /metrics 不做判定，
// 其余接口依次经过请求日志、JWT 解析、策略判定三级中间件。
func InitRouter(engine *gin.Engine, db *gorm.DB, enforcer *authz.Enforcer, publisher *events.Publisher) {
	engine.Use(logger.SetRequestLogger)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")

	auth := &apis.SysAuth{DB: db, JWT: config.JwtConfig, Events: publisher}
	v1.POST("/auth/login", auth.Login)

	protected := v1.Group("")
	protected.Use(
		middleware.JwtAuth(config.JwtConfig),
		middleware.AuthCheck(enforcer, config.AuthzConfig.DomainScoped),
	)

	authorization := &apis.SysAuthorization{DB: db, Enforcer: enforcer, Events: publisher}
	protected.PUT("/authorization/assign-permission", authorization.AssignPermission)
	protected.PUT("/authorization/assign-routes", authorization.AssignRoutes)
	protected.PUT("/authorization/assign-users", authorization.AssignUsers)
}
