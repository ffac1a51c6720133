package barber

import (
	"sort"

	"github.com/BruksfildServices01/housecall-booking/internal/models"
)

func IsEligible(b *models.Barber) bool {
	return b.IsActive && !b.IsBlocked
}

// SortPool orders barbers by badge number, then id. Round-robin indexes into this order.
func SortPool(pool []models.Barber) {
	sort.SliceStable(pool, func(i, j int) bool {
		if pool[i].BadgeNumber != pool[j].BadgeNumber {
			return pool[i].BadgeNumber < pool[j].BadgeNumber
		}
		return pool[i].ID < pool[j].ID
	})
}

// Eligible filters and orders a roster into the assignment pool.
func Eligible(all []models.Barber) []models.Barber {
	pool := make([]models.Barber, 0, len(all))
	for _, b := range all {
		if IsEligible(&b) {
			pool = append(pool, b)
		}
	}
	SortPool(pool)
	return pool
}
