package service

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/soybean-go/admin-core/app/admin/models"
	"github.com/soybean-go/admin-core/sdk/config"
	"github.com/soybean-go/admin-core/sdk/pkg/events"
	"github.com/soybean-go/admin-core/sdk/pkg/jwtauth"
	"github.com/soybean-go/admin-core/sdk/service"
)

// SysAuth 登录认证服务
type SysAuth struct {
	service.Service
	JWT    *config.JWT
	Events *events.Publisher
}

type LoginResult struct {
	Token    string   `json:"token"`
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Domain   string   `json:"domain"`
}

// Login 校验用户名密码，解析角色编码后签发 token。
// 失败时统一返回 ErrInvalidCredentials，不区分用户不存在和密码错误。
func (s *SysAuth) Login(username, password string) (*LoginResult, error) {
	var user models.SysUser
	if err := s.Orm.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.publishLogin(events.TopicLoginFailed, username, "")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Status == models.StatusDisabled {
		s.publishLogin(events.TopicLoginFailed, username, user.ID)
		return nil, ErrUserDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		s.publishLogin(events.TopicLoginFailed, username, user.ID)
		return nil, ErrInvalidCredentials
	}

	roles, err := s.roleCodes(user.ID)
	if err != nil {
		return nil, err
	}

	token, err := jwtauth.Generate(s.JWT, user.ID, user.Username, roles, user.Domain, "")
	if err != nil {
		return nil, err
	}

	s.publishLogin(events.TopicLoginSuccess, username, user.ID)
	return &LoginResult{
		Token:    token,
		UserID:   user.ID,
		Username: user.Username,
		Roles:    roles,
		Domain:   user.Domain,
	}, nil
}

// roleCodes 经 sys_user_role 关联取出用户的角色编码。
func (s *SysAuth) roleCodes(userID string) ([]string, error) {
	var codes []string
	err := s.Orm.Model(&models.SysRole{}).
		Joins("join sys_user_role on sys_user_role.role_id = sys_role.id").
		Where("sys_user_role.user_id = ?", userID).
		Pluck("sys_role.code", &codes).Error
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *SysAuth) publishLogin(topic, username, userID string) {
	if s.Events == nil {
		return
	}
	s.Events.Publish(topic, map[string]string{
		"username": username,
		"userId":   userID,
	})
}
