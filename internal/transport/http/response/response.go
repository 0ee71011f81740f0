package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                  = 0
	CodeBadRequest          = 40000
	CodeNoFile              = 40001
	CodeUnsupportedFile     = 40002
	CodeExtractionFailed    = 40003
	CodeInsufficientContent = 40004
	CodeEmptyMessage        = 40005
	CodeDocumentNotFound    = 40401
	CodeSessionNotFound     = 40402
	CodeFileTooLarge        = 41300
	CodeInternalServer      = 50000
	CodeAnswerFailed        = 50001
	CodeHistoryDisabled     = 50100
)

type APIResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.AbortWithStatusJSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}
