package handler

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/flicky/aqua-storefront/internal/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Invoice *InvoiceHandler
	Admin   *AdminHandler
	Feed    *FeedHandler
	Health  *HealthHandler
}

type RouterConfig struct {
	JWTSecret    string
	AllowOrigins []string
	Sessions     middleware.SessionVerifier
	Middleware   []gin.HandlerFunc
}

func NewRouter(h Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cfg.Middleware...)
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader},
		ExposeHeaders: []string{"Content-Disposition", middleware.SessionHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowsAny(cfg.AllowOrigins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", h.Health.Healthz)
	router.GET("/readyz", h.Health.Readyz)

	auth := middleware.AuthMiddleware(cfg.JWTSecret, cfg.Sessions)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/products", h.Product.List)
		v1.GET("/products/:id", h.Product.GetByID)
		v1.GET("/assistant/context", h.Product.AssistantContext)

		session := v1.Group("", middleware.Session())
		session.POST("/auth/login", h.Auth.Login)
		session.POST("/checkout", h.Order.Checkout)

		cart := session.Group("/cart")
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PUT("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.DeleteItem)

		v1.POST("/auth/logout", auth, h.Auth.Logout)
		v1.GET("/feed", auth, middleware.AdminOnly(), h.Feed.Serve)

		admin := v1.Group("/admin", auth, middleware.AdminOnly())
		admin.POST("/products", h.Product.Create)
		admin.PUT("/products", h.Product.Replace)
		admin.PUT("/products/:id", h.Product.Update)
		admin.DELETE("/products/:id", h.Product.Delete)
		admin.POST("/products/import", h.Admin.ImportInventory)

		admin.GET("/orders", h.Order.ListOrders)
		admin.GET("/orders/:id", h.Order.GetOrder)
		admin.PATCH("/orders/:id/status", h.Order.UpdateStatus)
		admin.GET("/orders/:id/invoice", h.Invoice.ForOrder)
		admin.POST("/invoices", h.Invoice.Draft)

		admin.GET("/inventory/search", h.Product.Search)
		admin.GET("/stats", h.Admin.Stats)
		admin.GET("/export/inventory.xlsx", h.Admin.ExportInventory)
	}

	return router
}

func allowsAny(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
