// Package internalapi 承载服务间调用的内部接口，由服务令牌保护。
package internalapi

import "github.com/hairlab-next/internal/provider"

// Handler 内部接口处理器入口
type Handler struct {
	*provider.Container
}

// New 创建内部处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
