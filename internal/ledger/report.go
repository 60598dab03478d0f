package ledger

import (
	"math"
	"time"

	"github.com/roach88/rxtrace/internal/ir"
)

// Report summarises retailer inventory as of one day.
type Report struct {
	Date       string      `json:"date"`
	Total      int         `json:"total"`
	Available  int         `json:"available"`
	LowStock   int         `json:"low_stock"`
	NearExpiry int         `json:"near_expiry"`
	Rows       []ReportRow `json:"rows"`
}

// ReportRow is one inventory row with its derived flags.
type ReportRow struct {
	DrugID       string `json:"drug_id"`
	Name         string `json:"name"`
	SerialNumber string `json:"serial_number"`
	BatchNumber  string `json:"batch_number"`
	Quantity     int64  `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	DaysToExpiry int    `json:"days_to_expiry"`
	Status       string `json:"status"`
	LowStock     bool   `json:"low_stock"`
	NearExpiry   bool   `json:"near_expiry"`
}

// InventoryReport counts available, low-stock and near-expiry rows.
//
// A row is low on stock when its quantity is below the low-stock threshold
// and near expiry when fewer than the configured number of days remain
// (already expired rows count as near expiry). Days are whole calendar days
// rounded up.
func (l *Ledger) InventoryReport(today time.Time) Report {
	l.mu.RLock()
	defer l.mu.RUnlock()

	day := truncateDay(today)
	r := Report{
		Date:  ir.FormatDate(day),
		Total: len(l.st.inventory),
		Rows:  make([]ReportRow, 0, len(l.st.inventory)),
	}
	for _, it := range l.st.inventory {
		row := ReportRow{
			DrugID:       it.ID,
			Name:         it.Name,
			SerialNumber: it.SerialNumber,
			BatchNumber:  it.BatchNumber,
			Quantity:     it.Quantity,
			ExpiryDate:   it.ExpiryDate,
			Status:       string(it.Status),
			LowStock:     it.Quantity < l.lowStock,
		}
		// Stored rows are validated on load, so the date parses.
		if exp, err := ir.ParseDate(it.ExpiryDate); err == nil {
			row.DaysToExpiry = int(math.Ceil(exp.Sub(day).Hours() / 24))
			row.NearExpiry = row.DaysToExpiry < l.nearExpiry
		}

		if it.Quantity > 0 {
			r.Available++
		}
		if row.LowStock {
			r.LowStock++
		}
		if row.NearExpiry {
			r.NearExpiry++
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
