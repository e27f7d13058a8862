package database

import (
	"fmt"
	"log"
	"os"

	"github.com/hazlamahedich/shop-sub004/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDatabase connects to Postgres and prepares the assistant's tables
func InitDatabase() {
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // No logging for cleaner output
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Database connected successfully")

	if err := autoMigrateTables(); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Create NOTIFY trigger for the conversation job queue
	if err := createNotifyTrigger(); err != nil {
		log.Printf("Warning: Failed to create NOTIFY trigger: %v", err)
	}
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// autoMigrateTables checks and migrates only tables that don't exist
func autoMigrateTables() error {
	tables := []struct {
		name  string
		model interface{}
	}{
		{"merchants", &models.Merchant{}},
		{"conversations", &models.Conversation{}},
		{"chat_messages", &models.ChatMessage{}},
		{"consent_records", &models.ConsentRecord{}},
		{"handoff_alerts", &models.HandoffAlert{}},
		{"email_alert_logs", &models.EmailAlertLog{}},
		{"products", &models.Product{}},
		{"orders", &models.Order{}},
		{"customer_profiles", &models.CustomerProfile{}},
		{"conversation_jobs", &models.ConversationJob{}},
		{"conversation_job_attempts", &models.ConversationJobAttempt{}},
		{"response_send_logs", &models.ResponseSendLog{}},
		{"usage_logs", &models.UsageLog{}},
	}

	migratedCount := 0
	skippedCount := 0

	log.Println("Checking database tables...")

	for _, table := range tables {
		if !DB.Migrator().HasTable(table.model) {
			log.Printf("Table '%s' not found, creating...", table.name)
			if err := DB.AutoMigrate(table.model); err != nil {
				return fmt.Errorf("failed to migrate table %s: %v", table.name, err)
			}
			log.Printf("✓ Created table: %s", table.name)
			migratedCount++
		} else {
			log.Printf("✓ Table '%s' already exists, skipping", table.name)
			skippedCount++
		}
	}

	if migratedCount > 0 {
		log.Printf("Database migration completed: %d tables created, %d tables skipped", migratedCount, skippedCount)
	} else {
		log.Printf("All database tables already exist (%d tables), no migration needed", skippedCount)
	}
	return nil
}

// createNotifyTrigger creates the Postgres NOTIFY trigger for the
// conversation job queue
func createNotifyTrigger() error {
	log.Println("Creating NOTIFY trigger for conversation job queue...")

	err := DB.Exec(`
		CREATE OR REPLACE FUNCTION notify_conversation_job_insert()
		RETURNS TRIGGER AS $$
		BEGIN
			PERFORM pg_notify('conversation_jobs_channel', 'new');
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql;
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create notify function: %v", err)
	}

	err = DB.Exec(`
		DROP TRIGGER IF EXISTS conversation_jobs_insert_trigger ON conversation_jobs;
	`).Error
	if err != nil {
		return fmt.Errorf("failed to drop existing trigger: %v", err)
	}

	err = DB.Exec(`
		CREATE TRIGGER conversation_jobs_insert_trigger
		AFTER INSERT ON conversation_jobs
		FOR EACH ROW
		EXECUTE FUNCTION notify_conversation_job_insert();
	`).Error
	if err != nil {
		return fmt.Errorf("failed to create trigger: %v", err)
	}

	log.Println("✓ NOTIFY trigger created successfully for conversation_jobs_channel")
	return nil
}
