package ledger

import "github.com/finebot/penalty-ledger/internal/models"

// ResolveToday returns the today counter valid on currentDate. A counter
// stored for another day no longer counts.
func ResolveToday(storedDate models.Date, storedToday int, currentDate models.Date) int {
	if storedDate != currentDate {
		return 0
	}
	return storedToday
}
