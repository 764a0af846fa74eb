package service

import "github.com/hairlab-next/internal/constants"

// Principal 操作主体。积分调整等变更类调用需要显式传入主体身份，
// 不依赖请求上下文中的隐式状态。
type Principal struct {
	Role       string
	CustomerID uint
}

// AdminPrincipal 管理员主体
func AdminPrincipal() Principal {
	return Principal{Role: constants.PrincipalRoleAdmin}
}

// CustomerPrincipal 客户主体
func CustomerPrincipal(customerID uint) Principal {
	return Principal{Role: constants.PrincipalRoleCustomer, CustomerID: customerID}
}

// ServicePrincipal 内部服务主体（订单完成事件等系统调用）
func ServicePrincipal() Principal {
	return Principal{Role: constants.PrincipalRoleService}
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Role == constants.PrincipalRoleAdmin
}

// IsService 是否内部服务
func (p Principal) IsService() bool {
	return p.Role == constants.PrincipalRoleService
}
