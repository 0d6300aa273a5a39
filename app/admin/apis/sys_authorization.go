package apis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/service"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
	"github.com/soybean-go/admin-core/sdk/pkg/jwtauth/user"
	"github.com/soybean-go/admin-core/sdk/restapi"
	sdkservice "github.com/soybean-go/admin-core/sdk/service"
)

type SysAuthorization struct {
	restapi.RestApi
	DB       *gorm.DB
	Enforcer service.PolicySyncer
	Events   *events.Publisher
}

type AssignPermissionReq struct {
	Domain      string   `json:"domain" binding:"required"`
	RoleID      string   `json:"roleId" binding:"required"`
	Permissions []string `json:"permissions"`
}

type AssignRouteReq struct {
	Domain   string `json:"domain" binding:"required"`
	RoleID   string `json:"roleId" binding:"required"`
	RouteIDs []int  `json:"routeIds"`
}

type AssignUserReq struct {
	RoleID  string   `json:"roleId" binding:"required"`
	UserIDs []string `json:"userIds"`
}

func (e *SysAuthorization) makeService(c *gin.Context) *service.SysAuthorization {
	return &service.SysAuthorization{
		Service:  sdkservice.Service{Orm: e.DB, Log: e.GetLogger(c)},
		Enforcer: e.Enforcer,
	}
}

// AssignPermission 整体替换角色在某域下的端点授权
// @Router /api/v1/authorization/assign-permission [put]
func (e *SysAuthorization) AssignPermission(c *gin.Context) {
	var req AssignPermissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.Error(c, http.StatusBadRequest, err, "参数校验失败")
		return
	}
	if err := e.makeService(c).AssignPermission(req.Domain, req.RoleID, req.Permissions); err != nil {
		code, msg := errorStatus(err)
		e.Error(c, code, err, msg)
		return
	}
	e.publishChanged(c, "assign-permission", req.Domain, req.RoleID)
	e.OK(c, nil, "授权成功")
}

// AssignRoutes 整体替换角色在某域下的路由
// @Router /api/v1/authorization/assign-routes [put]
func (e *SysAuthorization) AssignRoutes(c *gin.Context) {
	var req AssignRouteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.Error(c, http.StatusBadRequest, err, "参数校验失败")
		return
	}
	if err := e.makeService(c).AssignRoutes(req.Domain, req.RoleID, req.RouteIDs); err != nil {
		code, msg := errorStatus(err)
		e.Error(c, code, err, msg)
		return
	}
	e.publishChanged(c, "assign-routes", req.Domain, req.RoleID)
	e.OK(c, nil, "授权成功")
}

// AssignUsers 整体替换角色的用户集合
// @Router /api/v1/authorization/assign-users [put]
func (e *SysAuthorization) AssignUsers(c *gin.Context) {
	var req AssignUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.Error(c, http.StatusBadRequest, err, "参数校验失败")
		return
	}
	if err := e.makeService(c).AssignUsers(req.RoleID, req.UserIDs); err != nil {
		code, msg := errorStatus(err)
		e.Error(c, code, err, msg)
		return
	}
	e.publishChanged(c, "assign-users", "", req.RoleID)
	e.OK(c, nil, "授权成功")
}

// publishChanged 授权变更审计事件，操作人取自当前请求的 token。
func (e *SysAuthorization) publishChanged(c *gin.Context, action, domain, roleID string) {
	if e.Events == nil {
		return
	}
	e.Events.Publish(events.TopicAuthzChanged, map[string]string{
		"action":   action,
		"domain":   domain,
		"roleId":   roleID,
		"operator": user.GetUserName(c),
	})
}

// errorStatus 把服务层错误映射为状态码和对外文案。未识别的错误
// （存储、驱动）只回笼统说明，细节进日志。
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrDomainNotFound),
		errors.Is(err, service.ErrRoleNotFound),
		errors.Is(err, service.ErrPermissionsNotFound),
		errors.Is(err, service.ErrRoutesNotFound),
		errors.Is(err, service.ErrUsersNotFound):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "操作失败"
	}
}
