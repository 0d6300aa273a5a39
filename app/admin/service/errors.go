package service

import "errors"

// 同步服务按实体类别返回严格的未找到错误，缺哪类就报哪类。
var (
	ErrDomainNotFound      = errors.New("domain not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrPermissionsNotFound = errors.New("permissions not found")
	ErrRoutesNotFound      = errors.New("routes not found")
	ErrUsersNotFound       = errors.New("users not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserDisabled        = errors.New("user disabled")
)
