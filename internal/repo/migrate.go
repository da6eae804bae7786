package repo

import (
	"gorm.io/gorm"

	"usdrop-admin/internal/feature/user"
)

// Migrate creates the auth and profile tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&user.IdentityModel{}, &user.ProfileModel{})
}
