package httpserver

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/service"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

type Deps struct {
	DB *gorm.DB

	Auth       *service.AuthService
	Users      *service.UserService
	Addresses  *service.AddressService
	Cart       *service.CartService
	Orders     *service.OrderService
	Catalog    *service.CatalogService
	Admin      *service.ProductAdminService
	Inventory  *service.InventoryService
	Reviews    *service.ReviewService
	Wishlist   *service.WishlistService
	Promotions *service.PromotionService

	JWTSecret    []byte
	CookieSecure bool

	// LoginLimiter throttles register and login per client IP. Nil disables it.
	LoginLimiter ratelimit.Limiter
	// CSRF guards the cookie-authenticated auth routes when set.
	CSRF *csrf.Config
	// Gatherer backs GET /metrics. Nil hides the endpoint.
	Gatherer prometheus.Gatherer
}

func Register(e *echo.Echo, d *Deps) {
	bearer := authmw.NewBearerAuth(d.JWTSecret)

	health := &HealthHTTP{DB: d.DB}
	e.GET("/health/live", health.Live)
	e.GET("/health/ready", health.Ready)
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api")

	authH := &AuthHTTP{Svc: d.Auth, CookieSecure: d.CookieSecure}
	authG := api.Group("/auth")
	if d.CSRF != nil {
		authG.Use(csrf.Middleware(*d.CSRF))
	}
	throttled := []echo.MiddlewareFunc{}
	if d.LoginLimiter != nil {
		throttled = append(throttled, ratelimit.Middleware(d.LoginLimiter, "auth"))
	}
	authG.POST("/register", authH.Register, throttled...)
	authG.POST("/login", authH.Login, throttled...)
	authG.POST("/refresh", authH.Refresh)
	authG.POST("/logout", authH.Logout)
	authG.GET("/me", authH.Me, bearer.RequireAuth)
	authG.POST("/password/request", authH.RequestPasswordChange, bearer.RequireAuth)
	authG.POST("/password/confirm", authH.ConfirmPasswordChange, bearer.RequireAuth)

	userH := &UserHTTP{Svc: d.Users}
	api.PUT("/users/me", userH.UpdateMe, bearer.RequireAuth)

	addrH := &AddressHTTP{Svc: d.Addresses}
	addr := api.Group("/addresses", bearer.RequireAuth)
	addr.GET("", addrH.List)
	addr.POST("", addrH.Create)
	addr.PUT("/:id", addrH.Update)
	addr.DELETE("/:id", addrH.Delete)
	addr.PUT("/:id/default", addrH.SetDefault)

	cartH := &CartHTTP{Svc: d.Cart}
	cart := api.Group("/cart")
	cart.GET("", cartH.Get, bearer.OptionalAuth)
	cart.POST("/add", cartH.Add, bearer.OptionalAuth)
	cart.PUT("/update", cartH.Update, bearer.RequireAuth)
	cart.PUT("/change-variant", cartH.ChangeVariant, bearer.RequireAuth)
	cart.DELETE("/remove/:variantId", cartH.Remove, bearer.RequireAuth)
	cart.DELETE("", cartH.Clear, bearer.RequireAuth)
	cart.POST("/merge", cartH.Merge, bearer.RequireAuth)

	orderH := &OrderHTTP{Svc: d.Orders}
	orders := api.Group("/orders", bearer.RequireAuth)
	orders.POST("", orderH.Create)
	orders.GET("/my", orderH.My)
	orders.GET("/:id", orderH.Get)
	orders.POST("/:id/cancel", orderH.Cancel)
	orders.PATCH("/:id/status", orderH.UpdateStatus, bearer.RequireAdmin)

	catH := &CatalogHTTP{Svc: d.Catalog}
	api.GET("/products", catH.Products)
	api.GET("/products/meta/brands", catH.Brands)
	api.GET("/products/meta/categories", catH.Categories)
	api.GET("/products/:id", catH.Product)
	api.GET("/products/:id/variants", catH.ProductVariants)
	api.GET("/variants/:id", catH.Variant)
	api.GET("/categories/new-in", catH.NewIn)
	api.GET("/categories/best-sellers", catH.BestSellers)
	api.GET("/categories/:category", catH.Category)
	api.GET("/search", catH.Search)

	// Product writes live next to the public reads; /admin/products mirrors them.
	adminH := &AdminHTTP{Products: d.Admin, Catalog: d.Catalog, Promotions: d.Promotions}
	api.POST("/products", adminH.CreateProduct, bearer.RequireAdmin)
	api.PUT("/products/:id", adminH.UpdateProduct, bearer.RequireAdmin)
	api.DELETE("/products/:id", adminH.DeleteProduct, bearer.RequireAdmin)
	api.POST("/products/:id/variants", adminH.AddVariant, bearer.RequireAdmin)
	api.POST("/products/:id/images", adminH.AddImages, bearer.RequireAdmin)

	revH := &ReviewHTTP{Svc: d.Reviews}
	api.GET("/reviews/product/:productId", revH.ForProduct)
	api.POST("/reviews", revH.Create, bearer.RequireAuth)
	api.PUT("/reviews/:id", revH.Update, bearer.RequireAuth)
	api.DELETE("/reviews/:id", revH.Delete, bearer.RequireAuth)

	wishH := &WishlistHTTP{Svc: d.Wishlist}
	wish := api.Group("/wishlist", bearer.RequireAuth)
	wish.GET("", wishH.List)
	wish.POST("", wishH.Add)
	wish.DELETE("/:productId", wishH.Remove)

	promoH := &PromotionHTTP{Svc: d.Promotions}
	api.GET("/promotions/active", promoH.Active)

	invH := &InventoryHTTP{Svc: d.Inventory}
	inv := api.Group("/inventory", bearer.RequireAdmin)
	inv.GET("/variants", invH.Variants)
	inv.GET("/variants/:id", invH.Variant)
	inv.PATCH("/variants/:id/stock", invH.Adjust)
	inv.GET("/logs", invH.Logs)

	admin := api.Group("/admin", bearer.RequireAdmin)
	admin.GET("/users", userH.List)
	admin.POST("/users", userH.Create)
	admin.PATCH("/users/:id/active", userH.SetActive)

	admin.GET("/orders", orderH.AdminList)
	admin.PATCH("/orders/:id/status", orderH.UpdateStatus)

	admin.GET("/products", adminH.ListProducts)
	admin.POST("/products", adminH.CreateProduct)
	admin.GET("/products/:id", adminH.GetProduct)
	admin.PUT("/products/:id", adminH.UpdateProduct)
	admin.DELETE("/products/:id", adminH.DeleteProduct)
	admin.POST("/products/:id/variants", adminH.AddVariant)
	admin.POST("/products/:id/images", adminH.AddImages)
	admin.PUT("/variants/:id", adminH.UpdateVariant)
	admin.DELETE("/variants/:id", adminH.DeleteVariant)
	admin.DELETE("/images/:id", adminH.DeleteImage)

	admin.GET("/brands", adminH.ListBrands)
	admin.POST("/brands", adminH.CreateBrand)
	admin.PUT("/brands/:id", adminH.UpdateBrand)
	admin.DELETE("/brands/:id", adminH.DeleteBrand)

	admin.GET("/categories", adminH.ListCategories)
	admin.POST("/categories", adminH.CreateCategory)
	admin.POST("/categories/:id/aliases", adminH.AddCategoryAlias)
	admin.DELETE("/categories/:id", adminH.DeleteCategory)

	admin.GET("/promotions", adminH.ListPromotions)
	admin.POST("/promotions", adminH.CreatePromotion)
	admin.DELETE("/promotions/:id", adminH.DeletePromotion)
}
