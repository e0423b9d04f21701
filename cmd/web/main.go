package main

import (
	"fmt"
	"log"
	"os"

	"dentalmarket/internal/cart"
	"dentalmarket/internal/config"
	"dentalmarket/internal/database"
	"dentalmarket/internal/handlers"
	"dentalmarket/internal/paymongo"
	"dentalmarket/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	// Production modunu aktif et
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load(os.Getenv("DENTALMARKET_CONFIG"))
	if err != nil {
		log.Fatalf("Yapılandırma yüklenemedi: %v", err)
	}

	db, err := database.NewDatabase(cfg.Storage.DataFile)
	if err != nil {
		log.Fatalf("Veritabanı başlatılamadı: %v", err)
	}

	cartStorage, err := cart.NewFileStorage(cfg.Storage.CartFile)
	if err != nil {
		log.Fatalf("Sepet deposu başlatılamadı: %v", err)
	}

	provider := paymongo.NewClient(cfg.PayMongo.APIURL, cfg.PayMongo.SecretKey)
	if cfg.PayMongo.SecretKey == "" {
		log.Println("PayMongo secret key ayarlanmamış. Ödeme istekleri başarısız olacak.")
	}

	orderService := services.NewOrderService(db)
	paymentService := services.NewPaymentService(db, provider, cfg.Server.BaseURL, cfg.PayMongo.Currency)
	emailService := services.NewEmailService(cfg.SMTP)

	h := handlers.NewHandler(db, cartStorage, orderService, paymentService, emailService, cfg)

	// Engine'i manuel olarak oluştur (middleware'leri kontrol etmek için)
	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Proxy güvenlik ayarları
	r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	h.RegisterRoutes(r)

	port := cfg.Server.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}

	log.Printf("Sunucu başlatılıyor: http://localhost:%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatalf("Sunucu başlatılamadı: %v", err)
	}
}
