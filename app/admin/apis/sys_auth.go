package apis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/service"
	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
	"github.com/soybean-go/admin-core/sdk/restapi"
	sdkservice "github.com/soybean-go/admin-core/sdk/service"
)

type SysAuth struct {
	restapi.RestApi
	DB     *gorm.DB
	JWT    *config.JWT
	Events *events.Publisher
}

type LoginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 用户登录
// @Router /api/v1/auth/login [post]
func (e *SysAuth) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		e.Error(c, http.StatusBadRequest, err, "参数校验失败")
		return
	}

	svc := &service.SysAuth{
		Service: sdkservice.Service{Orm: e.DB, Log: e.GetLogger(c)},
		JWT:     e.JWT,
		Events:  e.Events,
	}
	res, err := svc.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			e.Error(c, http.StatusUnauthorized, err, "用户名或密码错误")
		case errors.Is(err, service.ErrUserDisabled):
			e.Error(c, http.StatusForbidden, err, "用户已被禁用")
		default:
			e.Error(c, http.StatusInternalServerError, err, "登录失败")
		}
		return
	}
	e.OK(c, res, "登录成功")
}
