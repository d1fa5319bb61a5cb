package statistics

import (
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/flixhive/flixhive/app/models"
	"github.com/flixhive/flixhive/internal/pkg/cache"
	"github.com/flixhive/flixhive/internal/pkg/database"
)

const (
	CacheKeyUsersTotal    = "statistics:users:total"
	CacheKeyUsersDaily    = "statistics:users:daily:%s" // Format with date YYYY-MM-DD
	CacheKeyMoviesTotal   = "statistics:movies:total"
	CacheKeySubsActive    = "statistics:subscriptions:active"
	CacheKeyPaymentsMonth = "statistics:payments:month:%s" // Format with month YYYY-MM
	CacheExpiration       = 30 * time.Minute
)

// StatisticsData holds the aggregate numbers for the admin dashboard
type StatisticsData struct {
	TotalUsers          int
	TodaySignups        int
	TotalMovies         int
	ActiveSubscriptions int
	MonthRevenue        float64
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// ShouldUpdateCache checks whether the cached numbers are older than the interval
func ShouldUpdateCache() bool {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	return time.Since(lastCacheUpdate) > cacheUpdateInterval
}

// UpdateCacheIfNeeded refreshes the cache when the interval has passed
func UpdateCacheIfNeeded() {
	if ShouldUpdateCache() {
		cacheUpdateMutex.Lock()
		defer cacheUpdateMutex.Unlock()

		log.Println("Updating statistics cache...")
		if err := UpdateStatisticsCache(); err != nil {
			log.Printf("Error updating statistics cache: %v", err)
		} else {
			lastCacheUpdate = time.Now()
		}
	}
}

// ResetCacheUpdateTimer forces the next read to refresh the cache
func ResetCacheUpdateTimer() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	lastCacheUpdate = time.Time{}
}

// UpdateStatisticsCache updates all statistics in the cache
func UpdateStatisticsCache() error {
	db := database.GetDB()

	var totalUsers int64
	if err := db.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		log.Printf("Error counting total users: %v", err)
		return err
	}

	var todaySignups int64
	today := time.Now().Format("2006-01-02")
	todayStart, _ := time.Parse("2006-01-02", today)
	todayEnd := todayStart.Add(24 * time.Hour)

	if err := db.Model(&models.User{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&todaySignups).Error; err != nil {
		log.Printf("Error counting today's signups: %v", err)
		return err
	}

	var totalMovies int64
	if err := db.Model(&models.Movie{}).Count(&totalMovies).Error; err != nil {
		log.Printf("Error counting movies: %v", err)
		return err
	}

	var activeSubs int64
	if err := db.Model(&models.Subscription{}).
		Where("status IN ?", []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
		Count(&activeSubs).Error; err != nil {
		log.Printf("Error counting active subscriptions: %v", err)
		return err
	}

	month := time.Now().Format("2006-01")
	monthStart, _ := time.Parse("2006-01", month)
	monthEnd := monthStart.AddDate(0, 1, 0)
	var monthRevenue float64
	if err := db.Model(&models.Payment{}).
		Where("status = ? AND created_at BETWEEN ? AND ?", models.PaymentStatusSucceeded, monthStart, monthEnd).
		Select("COALESCE(SUM(amount), 0)").Scan(&monthRevenue).Error; err != nil {
		log.Printf("Error summing month revenue: %v", err)
		return err
	}

	if err := cache.Set(CacheKeyUsersTotal, strconv.FormatInt(totalUsers, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total users: %v", err)
		return err
	}
	dailyKey := fmt.Sprintf(CacheKeyUsersDaily, today)
	if err := cache.Set(dailyKey, strconv.FormatInt(todaySignups, 10), CacheExpiration); err != nil {
		log.Printf("Error caching today's signups: %v", err)
		return err
	}
	if err := cache.Set(CacheKeyMoviesTotal, strconv.FormatInt(totalMovies, 10), CacheExpiration); err != nil {
		log.Printf("Error caching total movies: %v", err)
		return err
	}
	if err := cache.Set(CacheKeySubsActive, strconv.FormatInt(activeSubs, 10), CacheExpiration); err != nil {
		log.Printf("Error caching active subscriptions: %v", err)
		return err
	}
	monthKey := fmt.Sprintf(CacheKeyPaymentsMonth, month)
	if err := cache.Set(monthKey, strconv.FormatFloat(monthRevenue, 'f', 2, 64), CacheExpiration); err != nil {
		log.Printf("Error caching month revenue: %v", err)
		return err
	}

	log.Printf("Statistics updated in cache: Users: %d, Signups today: %d, Movies: %d, Active subscriptions: %d",
		totalUsers, todaySignups, totalMovies, activeSubs)

	return nil
}

// cachedCount reads an integer statistic from cache, recomputing via count on miss
func cachedCount(key string, count func() int64) int {
	val, err := cache.Get(key)
	if err != nil {
		c := count()
		if err := cache.Set(key, strconv.FormatInt(c, 10), CacheExpiration); err != nil {
			log.Printf("Error caching %s: %v", key, err)
		}
		return int(c)
	}

	c, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return int(c)
}

// GetTotalUsers returns the total number of users from cache or database
func GetTotalUsers() int {
	return cachedCount(CacheKeyUsersTotal, func() int64 {
		var count int64
		if err := database.GetDB().Model(&models.User{}).Count(&count).Error; err != nil {
			log.Printf("Error counting total users: %v", err)
			return 0
		}
		return count
	})
}

// GetTodaySignups returns the number of users registered today from cache or database
func GetTodaySignups() int {
	today := time.Now().Format("2006-01-02")
	dailyKey := fmt.Sprintf(CacheKeyUsersDaily, today)

	return cachedCount(dailyKey, func() int64 {
		todayStart, _ := time.Parse("2006-01-02", today)
		todayEnd := todayStart.Add(24 * time.Hour)

		var count int64
		if err := database.GetDB().Model(&models.User{}).Where("created_at BETWEEN ? AND ?", todayStart, todayEnd).Count(&count).Error; err != nil {
			log.Printf("Error counting today's signups: %v", err)
			return 0
		}
		return count
	})
}

// GetTotalMovies returns the catalog size from cache or database
func GetTotalMovies() int {
	return cachedCount(CacheKeyMoviesTotal, func() int64 {
		var count int64
		if err := database.GetDB().Model(&models.Movie{}).Count(&count).Error; err != nil {
			log.Printf("Error counting movies: %v", err)
			return 0
		}
		return count
	})
}

// GetActiveSubscriptions returns the number of active or trialing subscriptions
func GetActiveSubscriptions() int {
	return cachedCount(CacheKeySubsActive, func() int64 {
		var count int64
		if err := database.GetDB().Model(&models.Subscription{}).
			Where("status IN ?", []string{models.SubscriptionStatusActive, models.SubscriptionStatusTrialing}).
			Count(&count).Error; err != nil {
			log.Printf("Error counting active subscriptions: %v", err)
			return 0
		}
		return count
	})
}

// GetMonthRevenue returns the sum of succeeded payments for the current month
func GetMonthRevenue() float64 {
	month := time.Now().Format("2006-01")
	monthKey := fmt.Sprintf(CacheKeyPaymentsMonth, month)

	val, err := cache.Get(monthKey)
	if err != nil {
		monthStart, _ := time.Parse("2006-01", month)
		monthEnd := monthStart.AddDate(0, 1, 0)

		var sum float64
		if err := database.GetDB().Model(&models.Payment{}).
			Where("status = ? AND created_at BETWEEN ? AND ?", models.PaymentStatusSucceeded, monthStart, monthEnd).
			Select("COALESCE(SUM(amount), 0)").Scan(&sum).Error; err != nil {
			log.Printf("Error summing month revenue: %v", err)
			return 0
		}
		if err := cache.Set(monthKey, strconv.FormatFloat(sum, 'f', 2, 64), CacheExpiration); err != nil {
			log.Printf("Error caching month revenue: %v", err)
		}
		return sum
	}

	sum, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0
	}
	return sum
}

// GetStatisticsData returns all dashboard statistics
func GetStatisticsData() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalUsers:          GetTotalUsers(),
		TodaySignups:        GetTodaySignups(),
		TotalMovies:         GetTotalMovies(),
		ActiveSubscriptions: GetActiveSubscriptions(),
		MonthRevenue:        GetMonthRevenue(),
	}
}
