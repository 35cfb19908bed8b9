package services

import (
	"testing"
	"time"

	"lanarena/models"
	"lanarena/realtime"
	"lanarena/storage"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-test-secret-test-secret!"

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.Registration{}, &models.Notification{}, &models.SiteSettings{}, &models.AdminUser{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

type fixture struct {
	db            *gorm.DB
	store         *storage.DiskStore
	broker        *realtime.MemoryBroker
	registrations *RegistrationService
	notifications *NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	store, err := storage.NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("disk store: %v", err)
	}
	broker := realtime.NewMemoryBroker()
	t.Cleanup(func() { broker.Close() })

	regs := NewRegistrationService(db, store, broker, RegistrationServiceConfig{
		Signer:         storage.NewSigner(testSecret, "/files"),
		SignedURLTTL:   10 * time.Minute,
		UploadMaxBytes: 10 << 20,
	})
	return &fixture{
		db:            db,
		store:         store,
		broker:        broker,
		registrations: regs,
		notifications: NewNotificationService(db, broker, regs),
	}
}

// seedRegistration inserts a row directly with a fixed creation time.
func (f *fixture) seedRegistration(t *testing.T, team string, status models.RegistrationStatus, created time.Time) *models.Registration {
	t.Helper()
	reg := &models.Registration{
		TeamName:     team,
		College:      team + " College",
		CaptainName:  team + " Captain",
		CaptainEmail: "captain@" + team + ".test",
		CaptainPhone: "9999999999",
		Status:       status,
		CreatedAt:    created,
	}
	if err := f.db.Create(reg).Error; err != nil {
		t.Fatalf("seed registration: %v", err)
	}
	return reg
}

// nextEvent waits for one event on sub.
func nextEvent(t *testing.T, sub *realtime.Subscription) realtime.Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no realtime event received")
		return realtime.Event{}
	}
}

func validForm() RegistrationForm {
	f := RegistrationForm{
		TeamName:     "Night Owls",
		College:      "DIT University",
		CaptainName:  "Asha",
		CaptainUID:   "1234567",
		CaptainEmail: "asha@example.com",
		CaptainPhone: "+91 90000 00000",
		AcceptTerms:  true,
	}
	f.Players[0] = Player{Name: "Ravi", UID: "222"}
	f.Players[2] = Player{Name: "Kiran", UID: "444"}
	return f
}
