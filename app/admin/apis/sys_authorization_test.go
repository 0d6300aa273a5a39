package apis

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soybean-go/admin-core/app/admin/service"
)

func TestErrorStatus_NotFoundSentinels(t *testing.T) {
	for _, err := range []error{
		service.ErrDomainNotFound,
		service.ErrRoleNotFound,
		service.ErrPermissionsNotFound,
		service.ErrRoutesNotFound,
		service.ErrUsersNotFound,
	} {
		code, msg := errorStatus(err)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, err.Error(), msg)
	}
}

func TestErrorStatus_HidesInternalDetail(t *testing.T) {
	// 存储层的错误文本不能出现在响应文案里
	dbErr := errors.New("Error 1045: Access denied for user 'root'@'10.0.0.1'")
	code, msg := errorStatus(dbErr)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "操作失败", msg)
	assert.NotContains(t, msg, "Access denied")
}
