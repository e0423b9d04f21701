package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"dentalmarket/internal/cart"
	"dentalmarket/internal/config"
	"dentalmarket/internal/database"
	"dentalmarket/internal/models"
	"dentalmarket/internal/pricing"
	"dentalmarket/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DBInterface, veritabanı işlemlerini tanımlar.
type DBInterface interface {
	// Ürün işlemleri
	GetAllProducts() ([]models.Product, error)
	GetProductByID(id int) (*models.Product, error)
	CreateProduct(product *models.Product) error
	UpdateProduct(product *models.Product) error
	DeleteProduct(id int) error
	// Kullanıcı işlemleri
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetAllUsers() ([]models.User, error)
	DeleteUser(userID int) error
	// Sipariş işlemleri
	GetOrderByID(orderID int) (*models.Order, error)
	GetOrdersByUserID(userID int) ([]models.Order, error)
	GetAllOrders() ([]models.Order, error)
	UpdateOrderStatus(orderID int, status string, adminNotes string) error
	DeleteOrder(orderID int) error
	// Teklif talebi işlemleri
	CreateQuotation(quotation *models.Quotation) error
	GetAllQuotations() ([]models.Quotation, error)
	UpdateQuotationStatus(quotationID int, status string) error
}

// Handler, HTTP isteklerini yönetir.
type Handler struct {
	db          DBInterface
	cartStorage cart.Storage
	orders      *services.OrderService
	payments    *services.PaymentService
	email       *services.EmailService
	adminUser   string
	adminPass   string
}

// NewHandler, yeni bir Handler örneği oluşturur.
func NewHandler(db DBInterface, cartStorage cart.Storage, orders *services.OrderService,
	payments *services.PaymentService, email *services.EmailService, cfg *config.Config) *Handler {
	return &Handler{
		db:          db,
		cartStorage: cartStorage,
		orders:      orders,
		payments:    payments,
		email:       email,
		adminUser:   cfg.Admin.Username,
		adminPass:   cfg.Admin.Password,
	}
}

// RegisterRoutes, tüm HTTP rotalarını router'a bağlar.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	// Ödeme sağlayıcısı müşteriyi bu adrese geri yönlendirir.
	router.GET("/payment/verify", h.AuthUserMiddleware(), h.VerifyPayment)

	api := router.Group("/api")
	{
		api.GET("/products", h.GetProducts)
		api.GET("/products/:id", h.GetProduct)
		api.POST("/quotations", h.CreateQuotation)

		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)

		api.GET("/cart", h.GetCart)
		api.GET("/cart/count", h.CartCount)
		api.POST("/cart/add", h.AddToCart)
		api.POST("/cart/update", h.UpdateCartItem)
		api.POST("/cart/remove", h.RemoveFromCart)
		api.POST("/cart/clear", h.ClearCart)

		user := api.Group("")
		user.Use(h.AuthUserMiddleware())
		{
			user.GET("/me", h.Me)
			user.POST("/checkout", h.Checkout)
			user.GET("/orders", h.MyOrders)
			user.GET("/orders/:id", h.MyOrder)
		}
	}

	admin := router.Group("/admin")
	{
		admin.POST("/login", h.AdminLogin)
		admin.POST("/logout", h.AdminLogout)

		protected := admin.Group("")
		protected.Use(h.AuthMiddleware())
		{
			protected.GET("/stats", h.AdminStats)
			protected.POST("/products", h.AdminCreateProduct)
			protected.PUT("/products/:id", h.AdminUpdateProduct)
			protected.DELETE("/products/:id", h.AdminDeleteProduct)
			protected.GET("/orders", h.AdminOrders)
			protected.GET("/orders/:id", h.AdminOrderDetail)
			protected.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)
			protected.DELETE("/orders/:id", h.AdminDeleteOrder)
			protected.GET("/users", h.AdminUsers)
			protected.DELETE("/users/:id", h.AdminDeleteUser)
			protected.GET("/quotations", h.AdminQuotations)
			protected.PUT("/quotations/:id/status", h.AdminUpdateQuotationStatus)
		}
	}
}

// --- Kimlik yardımcıları ---

// shopperIdentity, sepet slotunun anahtarını belirler. Giriş yapmış
// kullanıcılar kullanıcı adlarıyla, misafirler cart_session çerezinden gelen
// "guest:<uuid>" kimliğiyle eşleşir.
func (h *Handler) shopperIdentity(c *gin.Context) string {
	if session, _ := c.Cookie("user_session"); session != "" {
		if username, _ := c.Cookie("username"); username != "" {
			return username
		}
	}
	return h.guestIdentity(c)
}

func (h *Handler) guestIdentity(c *gin.Context) string {
	sessionID, _ := c.Cookie("cart_session")
	if sessionID == "" {
		sessionID = uuid.New().String()
		c.SetCookie("cart_session", sessionID, 86400*30, "/", "", false, true)
	}
	return "guest:" + sessionID
}

// cartStore, isteğin alışverişçi kimliğine bağlı sepet store'unu açar.
func (h *Handler) cartStore(c *gin.Context) *cart.Store {
	return cart.NewStore(h.cartStorage, h.shopperIdentity(c))
}

// currentUser, user_session çerezine bağlı kullanıcıyı döndürür.
func (h *Handler) currentUser(c *gin.Context) *models.User {
	session, _ := c.Cookie("user_session")
	if session == "" {
		return nil
	}
	username, _ := c.Cookie("username")
	if username == "" {
		return nil
	}
	user, err := h.db.GetUserByUsername(username)
	if err != nil {
		return nil
	}
	return user
}

// AuthMiddleware, admin rotalarını korur.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := c.Cookie("admin_session")
		if session == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Yönetici girişi gerekli"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthUserMiddleware, kullanıcı rotalarını korur ve kullanıcıyı context'e koyar.
func (h *Handler) AuthUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := h.currentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Giriş yapmanız gerekiyor"})
			c.Abort()
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

func userFromContext(c *gin.Context) *models.User {
	value, ok := c.Get("user")
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// --- Kullanıcı kimlik işlemleri ---

type registerRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Username string `json:"username" binding:"required,min=3"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register, yeni kullanıcı kaydı oluşturur.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz kayıt bilgileri"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Kayıt oluşturulamadı"})
		return
	}

	user := &models.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         "customer",
	}

	if err := h.db.CreateUser(user); err != nil {
		if errors.Is(err, database.ErrUsernameTaken) || errors.Is(err, database.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "error": err.Error()})
			return
		}
		log.Printf("Handler.Register - Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Kayıt oluşturulamadı"})
		return
	}

	log.Printf("Handler.Register - New user registered: %s", user.Username)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Kayıt başarılı"})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login, kullanıcı girişini yapar. Misafir sepeti kendi slotunda bırakılır
// ve kullanıcının kayıtlı sepeti yüklenir; sepetler asla birleştirilmez.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Kullanıcı adı ve şifre gerekli"})
		return
	}

	user, err := h.db.GetUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Geçersiz kullanıcı adı veya şifre"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Geçersiz kullanıcı adı veya şifre"})
		return
	}

	// Misafir slotu diske yazılır, ardından kullanıcının slotu yüklenir.
	store := cart.NewStore(h.cartStorage, h.guestIdentity(c))
	userCart := store.SwitchIdentity(user.Username)

	sessionID := uuid.New().String()
	c.SetCookie("user_session", sessionID, 86400*7, "/", "", false, true)
	c.SetCookie("username", user.Username, 86400*7, "/", "", false, true)

	log.Printf("Handler.Login - User logged in: %s", user.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": user.ID, "full_name": user.FullName, "username": user.Username, "email": user.Email},
		"cart":    userCart,
	})
}

// Logout, oturumu kapatır ve yeni bir misafir sepetine geçer. Kullanıcının
// sepeti kendi slotunda saklı kalır.
func (h *Handler) Logout(c *gin.Context) {
	if username, _ := c.Cookie("username"); username != "" {
		guestID := uuid.New().String()
		c.SetCookie("cart_session", guestID, 86400*30, "/", "", false, true)
		store := cart.NewStore(h.cartStorage, username)
		store.SwitchIdentity("guest:" + guestID)
	}

	c.SetCookie("user_session", "", -1, "/", "", false, true)
	c.SetCookie("username", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Çıkış yapıldı"})
}

// Me, giriş yapmış kullanıcının bilgilerini döndürür.
func (h *Handler) Me(c *gin.Context) {
	user := userFromContext(c)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    gin.H{"id": user.ID, "full_name": user.FullName, "username": user.Username, "email": user.Email},
	})
}

// --- Ürün işlemleri ---

// GetProducts, katalogdaki ürünleri döndürür. category ve featured sorgu
// parametreleriyle filtrelenebilir.
func (h *Handler) GetProducts(c *gin.Context) {
	products, err := h.db.GetAllProducts()
	if err != nil {
		log.Printf("Handler.GetProducts - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ürünler yüklenemedi"})
		return
	}

	category := c.Query("category")
	featuredOnly := c.Query("featured") == "true"

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if featuredOnly && !p.Featured {
			continue
		}
		filtered = append(filtered, p)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "products": filtered})
}

// GetProduct, tek bir ürünü döndürür.
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz ürün ID"})
		return
	}

	product, err := h.db.GetProductByID(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ürün bulunamadı"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// --- Sepet işlemleri ---

type addToCartRequest struct {
	ProductID    int   `json:"product_id" binding:"required"`
	Quantity     int   `json:"quantity"`
	InclusionIDs []int `json:"inclusion_ids"`
}

// GetCart, sepetin anlık görüntüsünü döndürür.
func (h *Handler) GetCart(c *gin.Context) {
	snapshot := h.cartStore(c).Snapshot()
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": snapshot})
}

// AddToCart, ürünü seçilen ek ürünleriyle sepete ekler. Birim fiyat ve ek
// ürün bilgileri katalogdan bu anda kopyalanır; sonraki katalog değişiklikleri
// sepeti etkilemez.
func (h *Handler) AddToCart(c *gin.Context) {
	var req addToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz istek"})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	product, err := h.db.GetProductByID(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ürün bulunamadı"})
		return
	}

	line := models.CartLine{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Quantity:  req.Quantity,
		Image:     product.Image,
	}
	for _, incID := range req.InclusionIDs {
		for _, inc := range product.Inclusions {
			if inc.ID == incID {
				line.SelectedInclusions = append(line.SelectedInclusions, models.SelectedInclusion{
					InclusionID: inc.ID,
					Name:        inc.Name,
					Description: inc.Description,
					Price:       inc.Price,
				})
				break
			}
		}
	}

	snapshot := h.cartStore(c).Add(line)
	log.Printf("Handler.AddToCart - Added product %d x%d, cart total: %s",
		product.ID, req.Quantity, pricing.FormatAmount(snapshot.Total))
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": snapshot})
}

type updateCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required,min=1"`
}

// UpdateCartItem, sepetteki satırın adedini günceller.
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz istek"})
		return
	}

	snapshot := h.cartStore(c).UpdateQuantity(req.ProductID, req.Quantity)
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": snapshot})
}

type removeFromCartRequest struct {
	ProductID int `json:"product_id" binding:"required"`
}

// RemoveFromCart, ürünü sepetten çıkarır.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	var req removeFromCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz istek"})
		return
	}

	snapshot := h.cartStore(c).Remove(req.ProductID)
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": snapshot})
}

// ClearCart, sepeti boşaltır.
func (h *Handler) ClearCart(c *gin.Context) {
	snapshot := h.cartStore(c).Clear()
	c.JSON(http.StatusOK, gin.H{"success": true, "cart": snapshot})
}

// CartCount, sepetteki toplam parça sayısını döndürür.
func (h *Handler) CartCount(c *gin.Context) {
	snapshot := h.cartStore(c).Snapshot()
	count := 0
	for _, line := range snapshot.Lines {
		count += line.Quantity
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// --- Checkout ve ödeme ---

// Checkout, sepetten pending bir sipariş oluşturur ve ödeme sağlayıcısında
// checkout oturumu açar. Sepet bu aşamada temizlenmez; müşteri ödemeden
// vazgeçerse sepeti aynen durur. Başarısızlıkta sipariş de oluşmaz ya da
// pending olarak tekrar kullanılmak üzere bekler.
func (h *Handler) Checkout(c *gin.Context) {
	user := userFromContext(c)

	var info models.CustomerInfo
	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Teslimat bilgileri eksik"})
		return
	}
	if info.Email == "" {
		info.Email = user.Email
	}

	snapshot := cart.NewStore(h.cartStorage, user.Username).Snapshot()

	order, err := h.orders.CreateOrder(snapshot.Lines, info, user.ID)
	if err != nil {
		h.writeOrderError(c, err)
		return
	}

	checkoutURL, err := h.payments.CreateCheckoutSession(c.Request.Context(), order)
	if err != nil {
		log.Printf("Handler.Checkout - Checkout session failed for order %d: %v", order.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Ödeme sayfası açılamadı, lütfen tekrar deneyin"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"checkout_url": checkoutURL,
	})
}

func (h *Handler) writeOrderError(c *gin.Context, err error) {
	var missingField *services.MissingFieldError
	var missingProducts *services.MissingProductsError

	switch {
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Sepetiniz boş"})
	case errors.As(err, &missingField):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error(), "field": missingField.Field})
	case errors.As(err, &missingProducts):
		c.JSON(http.StatusConflict, gin.H{
			"success":             false,
			"error":               err.Error(),
			"missing_product_ids": missingProducts.ProductIDs,
		})
	default:
		log.Printf("Handler.writeOrderError - Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Sipariş oluşturulamadı"})
	}
}

// VerifyPayment, ödeme sağlayıcısından dönüşte ödemeyi doğrular. Başarılı
// doğrulamada sipariş paid olur, stok düşer, sepet temizlenir ve bildirim
// e-postaları gönderilir. Aynı URL'ye tekrar gelinmesi (yenileme, geri tuşu)
// başarılı bir no-op'tur; stok ikinci kez düşmez.
func (h *Handler) VerifyPayment(c *gin.Context) {
	user := userFromContext(c)

	paymentIntentID := c.Query("payment_intent_id")
	orderID, err := strconv.Atoi(c.Query("order_id"))
	if paymentIntentID == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz doğrulama isteği"})
		return
	}

	order, err := h.db.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Bu sipariş size ait değil"})
		return
	}

	result, err := h.payments.Reconcile(c.Request.Context(), paymentIntentID, orderID)
	if err != nil {
		h.writeReconcileError(c, err)
		return
	}

	if result.Transitioned {
		cart.NewStore(h.cartStorage, user.Username).Clear()

		paid, err := h.db.GetOrderByID(orderID)
		if err == nil {
			go h.sendOrderEmails(paid)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"order_id":     result.OrderID,
		"order_number": order.OrderNumber,
		"status":       result.Status,
		"message":      "Ödemeniz alındı, siparişiniz hazırlanıyor",
	})
}

func (h *Handler) writeReconcileError(c *gin.Context, err error) {
	var providerErr *services.ProviderError

	switch {
	case errors.Is(err, services.ErrPaymentNotCompleted):
		c.JSON(http.StatusPaymentRequired, gin.H{"success": false, "error": "Ödeme henüz tamamlanmadı"})
	case errors.Is(err, database.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
	case errors.As(err, &providerErr):
		log.Printf("Handler.writeReconcileError - Provider error: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Ödeme doğrulanamadı, lütfen tekrar deneyin"})
	default:
		log.Printf("Handler.writeReconcileError - Unexpected error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ödeme doğrulanamadı"})
	}
}

// sendOrderEmails, ödemesi alınan sipariş için bildirim e-postalarını gönderir.
func (h *Handler) sendOrderEmails(order *models.Order) {
	if err := h.email.SendCustomerOrderConfirmation(order.Email, order); err != nil {
		log.Printf("Handler.sendOrderEmails - Customer email error for order %d: %v", order.ID, err)
	}
	if err := h.email.SendAdminOrderNotification(order); err != nil {
		log.Printf("Handler.sendOrderEmails - Admin email error for order %d: %v", order.ID, err)
	}
}

// --- Kullanıcı siparişleri ---

// MyOrders, giriş yapmış kullanıcının siparişlerini döndürür.
func (h *Handler) MyOrders(c *gin.Context) {
	user := userFromContext(c)

	orders, err := h.db.GetOrdersByUserID(user.ID)
	if err != nil {
		log.Printf("Handler.MyOrders - Error for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Siparişler yüklenemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// MyOrder, kullanıcının tek bir siparişini döndürür.
func (h *Handler) MyOrder(c *gin.Context) {
	user := userFromContext(c)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz sipariş ID"})
		return
	}

	order, err := h.db.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
		return
	}
	if order.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "Bu sipariş size ait değil"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

// --- Teklif talepleri ---

// CreateQuotation, bir ürün için teklif talebi kaydeder ve admin'e e-posta
// bildirimi gönderir. Giriş gerektirmez.
func (h *Handler) CreateQuotation(c *gin.Context) {
	var form models.QuotationForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz teklif talebi"})
		return
	}

	product, err := h.db.GetProductByID(form.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ürün bulunamadı"})
		return
	}

	quotation := &models.Quotation{
		ProductID: form.ProductID,
		Name:      form.Name,
		Email:     form.Email,
		Phone:     form.Phone,
		Message:   form.Message,
		Status:    "new",
	}
	if err := h.db.CreateQuotation(quotation); err != nil {
		log.Printf("Handler.CreateQuotation - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Teklif talebi kaydedilemedi"})
		return
	}

	go func() {
		if err := h.email.SendQuotationNotification(quotation, product.Name); err != nil {
			log.Printf("Handler.CreateQuotation - Notification email error: %v", err)
		}
	}()

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Teklif talebiniz alındı, en kısa sürede dönüş yapacağız"})
}

// --- Admin işlemleri ---

// AdminLogin, yönetici girişini yapar.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Kullanıcı adı ve şifre gerekli"})
		return
	}

	if h.adminUser == "" || req.Username != h.adminUser || req.Password != h.adminPass {
		log.Printf("Handler.AdminLogin - Failed login attempt for: %s", req.Username)
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Geçersiz kullanıcı adı veya şifre"})
		return
	}

	sessionID := uuid.New().String()
	c.SetCookie("admin_session", sessionID, 3600, "/", "", false, true)
	log.Printf("Handler.AdminLogin - Admin logged in: %s", req.Username)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Giriş başarılı"})
}

// AdminLogout, yönetici oturumunu kapatır.
func (h *Handler) AdminLogout(c *gin.Context) {
	c.SetCookie("admin_session", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Çıkış yapıldı"})
}

// AdminCreateProduct, kataloğa yeni ürün ekler.
func (h *Handler) AdminCreateProduct(c *gin.Context) {
	var form models.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz ürün bilgileri"})
		return
	}

	product := productFromForm(form)
	if err := h.db.CreateProduct(product); err != nil {
		log.Printf("Handler.AdminCreateProduct - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ürün oluşturulamadı"})
		return
	}

	log.Printf("Handler.AdminCreateProduct - Created product %d: %s", product.ID, product.Name)
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
}

// AdminUpdateProduct, mevcut ürünü günceller. Ek ürün listesi gelen formla
// değiştirilir; geçmiş siparişlerdeki kopyalar etkilenmez.
func (h *Handler) AdminUpdateProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz ürün ID"})
		return
	}

	var form models.ProductForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz ürün bilgileri"})
		return
	}

	product := productFromForm(form)
	product.ID = id
	if err := h.db.UpdateProduct(product); err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ürün bulunamadı"})
			return
		}
		log.Printf("Handler.AdminUpdateProduct - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ürün güncellenemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
}

// AdminDeleteProduct, ürünü katalogdan kaldırır. Geçmiş siparişler fiyat ve
// ek ürün kopyaları taşıdığı için etkilenmez.
func (h *Handler) AdminDeleteProduct(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz ürün ID"})
		return
	}

	if err := h.db.DeleteProduct(id); err != nil {
		if errors.Is(err, database.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Ürün bulunamadı"})
			return
		}
		log.Printf("Handler.AdminDeleteProduct - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Ürün silinemedi"})
		return
	}

	log.Printf("Handler.AdminDeleteProduct - Deleted product %d", id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ürün silindi"})
}

func productFromForm(form models.ProductForm) *models.Product {
	product := &models.Product{
		Name:        form.Name,
		Description: form.Description,
		Price:       form.Price,
		Image:       form.Image,
		Category:    form.Category,
		Stock:       form.Stock,
		Featured:    form.Featured,
		Features:    form.Features,
	}
	for _, inc := range form.Inclusions {
		product.Inclusions = append(product.Inclusions, models.ProductInclusion{
			Name:        inc.Name,
			Description: inc.Description,
			Price:       inc.Price,
		})
	}
	return product
}

// AdminOrders, tüm siparişleri döndürür (en yeni önce).
func (h *Handler) AdminOrders(c *gin.Context) {
	orders, err := h.db.GetAllOrders()
	if err != nil {
		log.Printf("Handler.AdminOrders - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Siparişler yüklenemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

// AdminOrderDetail, tek bir siparişin detayını döndürür.
func (h *Handler) AdminOrderDetail(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz sipariş ID"})
		return
	}

	order, err := h.db.GetOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}

type updateOrderStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes"`
}

var validOrderStatuses = map[string]bool{
	models.OrderStatusPending:    true,
	models.OrderStatusPaid:       true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
	models.OrderStatusCancelled:  true,
}

// AdminUpdateOrderStatus, sipariş durumunu günceller. Ödemesi alınmış bir
// siparişin iptalinde stoklar geri eklenir.
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz sipariş ID"})
		return
	}

	var req updateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || !validOrderStatuses[req.Status] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz sipariş durumu"})
		return
	}

	if err := h.db.UpdateOrderStatus(orderID, req.Status, req.AdminNotes); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
			return
		}
		log.Printf("Handler.AdminUpdateOrderStatus - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Sipariş güncellenemedi"})
		return
	}

	log.Printf("Handler.AdminUpdateOrderStatus - Order %d -> %s", orderID, req.Status)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sipariş durumu güncellendi"})
}

// AdminDeleteOrder, siparişi kalıcı olarak siler.
func (h *Handler) AdminDeleteOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz sipariş ID"})
		return
	}

	if err := h.db.DeleteOrder(orderID); err != nil {
		if errors.Is(err, database.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Sipariş bulunamadı"})
			return
		}
		log.Printf("Handler.AdminDeleteOrder - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Sipariş silinemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Sipariş silindi"})
}

// AdminUsers, kayıtlı kullanıcıları döndürür. Şifre hash'leri yanıtta yer almaz.
func (h *Handler) AdminUsers(c *gin.Context) {
	users, err := h.db.GetAllUsers()
	if err != nil {
		log.Printf("Handler.AdminUsers - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Kullanıcılar yüklenemedi"})
		return
	}

	out := make([]gin.H, len(users))
	for i, u := range users {
		out[i] = gin.H{
			"id":         u.ID,
			"full_name":  u.FullName,
			"username":   u.Username,
			"email":      u.Email,
			"role":       u.Role,
			"created_at": u.CreatedAt,
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": out})
}

// AdminDeleteUser, kullanıcıyı siler. Siparişleri tarihsel kayıt olarak kalır.
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz kullanıcı ID"})
		return
	}

	if err := h.db.DeleteUser(userID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Kullanıcı bulunamadı"})
			return
		}
		log.Printf("Handler.AdminDeleteUser - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Kullanıcı silinemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Kullanıcı silindi"})
}

// AdminQuotations, tüm teklif taleplerini döndürür.
func (h *Handler) AdminQuotations(c *gin.Context) {
	quotations, err := h.db.GetAllQuotations()
	if err != nil {
		log.Printf("Handler.AdminQuotations - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Teklif talepleri yüklenemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "quotations": quotations})
}

type updateQuotationStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=new answered closed"`
}

// AdminUpdateQuotationStatus, teklif talebinin durumunu günceller.
func (h *Handler) AdminUpdateQuotationStatus(c *gin.Context) {
	quotationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz teklif ID"})
		return
	}

	var req updateQuotationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Geçersiz teklif durumu"})
		return
	}

	if err := h.db.UpdateQuotationStatus(quotationID, req.Status); err != nil {
		if errors.Is(err, database.ErrQuotationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Teklif talebi bulunamadı"})
			return
		}
		log.Printf("Handler.AdminUpdateQuotationStatus - Error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Teklif talebi güncellenemedi"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Teklif durumu güncellendi"})
}

// Gelir hesabına giren sipariş durumları. Pending ödenmediği, cancelled
// iade edildiği için dışarıda kalır.
var revenueStatuses = map[string]bool{
	models.OrderStatusPaid:       true,
	models.OrderStatusProcessing: true,
	models.OrderStatusShipped:    true,
	models.OrderStatusDelivered:  true,
}

// AdminStats, yönetim paneli için özet istatistikleri döndürür.
func (h *Handler) AdminStats(c *gin.Context) {
	orders, err := h.db.GetAllOrders()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "İstatistikler yüklenemedi"})
		return
	}
	products, err := h.db.GetAllProducts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "İstatistikler yüklenemedi"})
		return
	}
	users, err := h.db.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "İstatistikler yüklenemedi"})
		return
	}
	quotations, err := h.db.GetAllQuotations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "İstatistikler yüklenemedi"})
		return
	}

	var revenue int64
	paidCount := 0
	pendingCount := 0
	for _, order := range orders {
		if revenueStatuses[order.Status] {
			revenue += order.Total
			paidCount++
		}
		if order.Status == models.OrderStatusPending {
			pendingCount++
		}
	}

	var avgOrderValue int64
	if paidCount > 0 {
		avgOrderValue = revenue / int64(paidCount)
	}

	lowStock := make([]gin.H, 0)
	for _, p := range products {
		if p.Stock <= 3 {
			lowStock = append(lowStock, gin.H{"id": p.ID, "name": p.Name, "stock": p.Stock})
		}
	}

	newQuotations := 0
	for _, q := range quotations {
		if q.Status == "new" {
			newQuotations++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats": gin.H{
			"total_orders":          len(orders),
			"paid_orders":           paidCount,
			"pending_orders":        pendingCount,
			"total_revenue":         revenue,
			"total_revenue_display": pricing.FormatAmount(revenue),
			"average_order_value":   avgOrderValue,
			"total_products":        len(products),
			"total_users":           len(users),
			"new_quotations":        newQuotations,
			"low_stock_products":    lowStock,
		},
	})
}
