package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/diewo77/go-sourcing/internal/events"
	"github.com/diewo77/go-sourcing/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&models.Counter{},
		&models.Product{},
		&models.Quotation{}, &models.SelectedCompany{},
		&models.Negotiation{}, &models.NegotiationRevision{},
		&models.Category{}, &models.SubCategory{},
		&models.UserFavorites{}, &models.FavoriteEntry{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// fixedClock pins the negId date to 2024-03-05.
func fixedClock() time.Time {
	return time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
}

// sequenceIntN returns the given values in order, then repeats the last one.
func sequenceIntN(values ...int) func(int) int {
	var mu sync.Mutex
	i := 0
	return func(int) int {
		mu.Lock()
		defer mu.Unlock()
		v := values[i]
		if i < len(values)-1 {
			i++
		}
		return v
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.NegotiationAccepted
	err    error
}

func (p *recordingPublisher) PublishAccepted(_ context.Context, evt events.NegotiationAccepted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func newTestEngine(db *gorm.DB, pub events.Publisher, intn ...int) *NegotiationEngine {
	if len(intn) == 0 {
		intn = []int{42, 43, 44, 45, 46, 47, 48, 49}
	}
	gen := &NegIDGenerator{Now: fixedClock, IntN: sequenceIntN(intn...)}
	if pub == nil {
		pub = events.LogPublisher{}
	}
	return NewNegotiationEngine(db, WithNegIDGenerator(gen), WithClock(fixedClock), WithPublisher(pub))
}

func sampleCreate(seller, request, product string) CreateInput {
	return CreateInput{
		SellerEmail:    seller,
		ProductDetails: models.ProductDetails{ProductName: "Steel", ProductID: product, Measurement: "ton", GST: 18},
		RequestInfo:    models.RequestInfo{RequestID: request},
		Commission:     models.Commission{Mode: models.CommissionPercentage, Value: 10},
		Amount:         100,
		Quantity:       10,
	}
}
