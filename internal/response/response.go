package response

import (
	"github.com/gin-gonic/gin"

	apperrors "clipcap/pkg/errors"
)

// Response is the standard API envelope.
type Response struct {
	Error  int32  `json:"error"` // 0 = success
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
	Data   any    `json:"data"`
}

func R(c *gin.Context, data any) {
	c.JSON(200, data)
}

func Success(c *gin.Context, data any) {
	c.JSON(200, Response{
		Error: 0,
		Msg:   "Success",
		Data:  data,
	})
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(200, Response{
		Error: int32(code),
		Msg:   msg,
	})
}

// FromError maps an error to a Response, extracting the code, message and
// detail when it is an AppError.
func FromError(err error) Response {
	if err == nil {
		return Response{Error: 0, Msg: "Success"}
	}

	var detail string
	if appErr, ok := err.(*apperrors.AppError); ok {
		detail = appErr.Detail
	}
	return Response{
		Error:  int32(apperrors.GetCode(err)),
		Msg:    apperrors.GetMessage(err),
		Detail: detail,
	}
}

func ErrorResponse(c *gin.Context, err error) {
	c.JSON(200, FromError(err))
}
