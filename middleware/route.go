package middleware

import (
	"github.com/gin-gonic/gin"

	midsec "ChatApp/middleware/security"
)

// 路由配置选项
type RouteOpt struct {
	IsAuth bool
}

// 封装 POST
func POST(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.POST(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.POST(path, handler)
	}
}

// 封装 GET
func GET(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.GET(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.GET(path, handler)
	}
}

// 封装 PUT
func PUT(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.PUT(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.PUT(path, handler)
	}
}

// 封装 DELETE
func DELETE(r gin.IRoutes, path string, handler gin.HandlerFunc, opt RouteOpt) {
	if opt.IsAuth {
		r.DELETE(path,
			midsec.Middleware(midsec.DefaultOptions()),
			handler,
		)
	} else {
		r.DELETE(path, handler)
	}
}
