package public

import (
	handlershared "github.com/hairlab-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func getCustomerID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "customer_id", "客户标识不合法", "客户标识类型不合法")
}

// optionalCustomerID 读取可选的登录客户标识，未登录返回 0。
func optionalCustomerID(c *gin.Context) uint {
	value, exists := c.Get("customer_id")
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

func customerEmail(c *gin.Context) string {
	value, exists := c.Get("customer_email")
	if !exists {
		return ""
	}
	if email, ok := value.(string); ok {
		return email
	}
	return ""
}
