package web

import (
	stderr "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	errs "ChatApp/tools/errs"
)

// RespData 成功响应
func RespData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

// RespErr 失败响应：业务错误码映射到 HTTP 状态码，未知错误一律 500
func RespErr(c *gin.Context, err error) {
	var codeErr *errs.CodeError
	if !stderr.As(err, &codeErr) {
		c.JSON(http.StatusInternalServerError, errs.ErrInternal.WithDetail(err.Error()))
		return
	}
	c.JSON(httpStatus(codeErr.Code), codeErr)
}

func httpStatus(code int) int {
	switch code {
	case errs.ArgsError, errs.DuplicateError:
		return http.StatusBadRequest
	case errs.TokenInvalidError, errs.TokenExpiredError:
		return http.StatusUnauthorized
	case errs.RateLimitedError:
		return http.StatusTooManyRequests
	case errs.RecordNotFoundError:
		return http.StatusNotFound
	case errs.MediaUploadError:
		return http.StatusBadGateway
	case errs.DatabaseError, errs.ServerInternalError:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
