package services

import (
	"context"
	"errors"
	"log"

	"coop-backoffice/internal/adapters/persistence/models"
	"coop-backoffice/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// CronService runs scheduled background jobs
type CronService struct {
	db               *gorm.DB
	cron             *cron.Cron
	savingsService   *SavingsService
	inventoryService *InventoryService
	refreshTokenRepo repositories.RefreshTokenRepository
}

// NewCronService creates a new cron service
func NewCronService(db *gorm.DB, savingsService *SavingsService, inventoryService *InventoryService, refreshTokenRepo repositories.RefreshTokenRepository) *CronService {
	return &CronService{
		db:               db,
		cron:             cron.New(),
		savingsService:   savingsService,
		inventoryService: inventoryService,
		refreshTokenRepo: refreshTokenRepo,
	}
}

// Start registers and launches all scheduled jobs
func (s *CronService) Start() {
	// Monthly interest sweep, 1st of the month at 02:00
	s.cron.AddFunc("0 2 1 * *", s.runInterestSweep)

	// Daily maintenance at 03:00
	s.cron.AddFunc("0 3 * * *", s.runDailyMaintenance)

	s.cron.Start()
	log.Println("🚀 CronService started")
}

// Stop stops the scheduler, waiting for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// runInterestSweep capitalizes interest on every eligible savings account.
// Accounts capitalized too recently or without a rate are skipped.
func (s *CronService) runInterestSweep() {
	ctx := context.Background()

	var ids []uint
	if err := s.db.Model(&models.MemberSavings{}).
		Where("interest_rate > 0").
		Pluck("id", &ids).Error; err != nil {
		log.Printf("❌ Interest sweep query failed: %v", err)
		return
	}

	capitalized := 0
	for _, id := range ids {
		_, _, err := s.savingsService.CapitalizeInterest(ctx, id)
		if err != nil {
			if errors.Is(err, ErrInterestPeriodTooShort) || errors.Is(err, ErrNoInterestRate) {
				continue
			}
			log.Printf("❌ Interest sweep failed for savings %d: %v", id, err)
			continue
		}
		capitalized++
	}

	log.Printf("✅ Interest sweep finished: %d of %d accounts capitalized", capitalized, len(ids))
}

// runDailyMaintenance purges expired refresh tokens and logs low stock
func (s *CronService) runDailyMaintenance() {
	ctx := context.Background()

	if err := s.refreshTokenRepo.DeleteExpired(ctx); err != nil {
		log.Printf("❌ Expired token cleanup failed: %v", err)
	}

	products, err := s.inventoryService.LowStockProducts(ctx)
	if err != nil {
		log.Printf("❌ Low stock check failed: %v", err)
		return
	}
	for _, p := range products {
		log.Printf("⚠️ Low stock: %s (%s) at %s", p.Name, p.SKU, p.CurrentStock.StringFixed(2))
	}
}
