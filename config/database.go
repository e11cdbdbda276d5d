package config

import (
	"log"

	"github.com/spotlist/api-go/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg DatabaseConfig) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		TranslateError: true,
		// Reports outlive their post until the delete cascade runs.
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto Migrate models
	if err := db.AutoMigrate(
		&models.User{},
		&models.AdminUser{},
		&models.Post{},
		&models.Report{},
		&models.PaymentSubscription{},
		&models.CascadeTask{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	return db
}
