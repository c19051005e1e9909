package database

import (
	"resorthub/internal/models"
)

// Models lists every table in dependency order. The migration command creates
// them in this order before applying the SQL migrations.
func Models() []any {
	return []any{
		&models.Admin{},
		&models.Customer{},
		&models.Owner{},
		&models.Listing{},
		&models.ListingImage{},
		&models.Reservation{},
		&models.Conversation{},
		&models.AdminConversation{},
		&models.Message{},
		&models.Notification{},
	}
}

// MigrateModels runs GORM AutoMigrate for all models.
func (db *DB) MigrateModels() error {
	log := db.log.Function("MigrateModels")
	log.Info("Starting database migration")

	for _, model := range Models() {
		if err := db.SQL.AutoMigrate(model); err != nil {
			return log.Err("Failed to migrate model", err, "model", model)
		}
	}

	log.Info("Database migration completed successfully")
	return nil
}

var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_reservations_resource_confirmed ON reservations(resource_kind, resource_id, check_in, check_out) WHERE status = 'confirmed'",
	"CREATE INDEX IF NOT EXISTS idx_reservations_pending_expiry ON reservations(expires_at) WHERE status = 'pending'",
	"CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages(created_at, id)",
	"CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at DESC)",
}

// CreateIndexes adds the partial indexes GORM tags cannot express.
func (db *DB) CreateIndexes() error {
	log := db.log.Function("CreateIndexes")
	log.Info("Creating additional database indexes")

	for _, indexSQL := range indexes {
		if err := db.SQL.Exec(indexSQL).Error; err != nil {
			log.Warn("Failed to create index", "sql", indexSQL, "error", err)
		}
	}

	return nil
}
