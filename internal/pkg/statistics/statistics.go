package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/imobipro/imobipro-api/app/models"
	"github.com/imobipro/imobipro-api/internal/pkg/cache"
	"github.com/imobipro/imobipro-api/internal/pkg/database"
)

const (
	CacheKeyCorretoresTotal = "statistics:corretores:total"
	CacheKeyPaymentsTotal   = "statistics:payments:total"
	CacheKeyApprovedDaily   = "statistics:payments:approved:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyStuckPayments   = "statistics:payments:stuck"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData is the aggregate view served on the admin stats endpoint.
type StatisticsData struct {
	TotalCorretores int `json:"total_corretores"`
	TotalPayments   int `json:"total_payments"`
	ApprovedToday   int `json:"approved_today"`
	StuckPayments   int `json:"stuck_payments"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the cached aggregates when the last refresh
// is older than the update interval.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateStatisticsCache(); err != nil {
		log.Printf("statistics cache refresh failed: %v", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recomputes every aggregate from the database and
// stores it in Redis.
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalCorretores int64
	if err := db.Model(&models.Corretor{}).Count(&totalCorretores).Error; err != nil {
		return err
	}

	var totalPayments int64
	if err := db.Model(&models.Payment{}).Count(&totalPayments).Error; err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	var approvedToday int64
	if err := db.Model(&models.Payment{}).
		Where("status = ? AND DATE(updated_at) = ?", models.PaymentStatusApproved, today).
		Count(&approvedToday).Error; err != nil {
		return err
	}

	var stuck int64
	if err := db.Model(&models.Payment{}).
		Where("status = ? AND provisionado = ?", models.PaymentStatusApproved, false).
		Count(&stuck).Error; err != nil {
		return err
	}

	if err := cache.Set(CacheKeyCorretoresTotal, strconv.FormatInt(totalCorretores, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(CacheKeyPaymentsTotal, strconv.FormatInt(totalPayments, 10), CacheExpiration); err != nil {
		return err
	}
	if err := cache.Set(fmt.Sprintf(CacheKeyApprovedDaily, today), strconv.FormatInt(approvedToday, 10), CacheExpiration); err != nil {
		return err
	}
	return cache.Set(CacheKeyStuckPayments, strconv.FormatInt(stuck, 10), CacheExpiration)
}

// GetStatistics returns the cached aggregates, refreshing the cache when it
// is stale or missing.
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalCorretores: cachedInt(CacheKeyCorretoresTotal),
		TotalPayments:   cachedInt(CacheKeyPaymentsTotal),
		ApprovedToday:   cachedInt(fmt.Sprintf(CacheKeyApprovedDaily, time.Now().Format("2006-01-02"))),
		StuckPayments:   cachedInt(CacheKeyStuckPayments),
	}
}

func cachedInt(key string) int {
	raw, err := cache.Get(key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}
