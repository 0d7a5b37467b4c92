package main

import (
	"log"

	"github.com/sujoy-karmokar/shoptal-sub000/internal/config"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/domain/model"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/handler"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/infra/db"
	infraRepo "github.com/sujoy-karmokar/shoptal-sub000/internal/infra/repository"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/server"
	"github.com/sujoy-karmokar/shoptal-sub000/internal/usecase"

	"github.com/joho/godotenv"
)

func main() {
	//.envは無くてもよい（本番は環境変数で渡す）
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file, using environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Product{},
		&model.Coupon{},
		&model.Cart{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	//Repository（GORM実装）生成
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	couponRepo := infraRepo.NewCouponGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Usecase生成
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, cartRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)
	couponUC := usecase.NewCouponUsecase(couponRepo, auditRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txManager, auditRepo)

	//Handler生成
	productH := handler.NewProductHandler(productUC)
	cartH := handler.NewCartHandler(cartUC)
	orderH := handler.NewOrderHandler(orderUC)
	couponH := handler.NewCouponHandler(couponUC)
	adminOrderH := handler.NewAdminOrderHandler(adminOrderUC)

	//Server起動
	e := server.New(productH, cartH, orderH, couponH, adminOrderH)

	addr := ":" + cfg.Port
	if cfg.Port[0] == ':' {
		addr = cfg.Port
	}

	if err := server.Start(e, addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
