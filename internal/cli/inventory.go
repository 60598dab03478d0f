package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
)

// NewInventoryCommand creates the inventory command group.
func NewInventoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Report and export retailer inventory",
	}
	cmd.AddCommand(newInventoryReportCommand(rootOpts))
	cmd.AddCommand(newInventoryExportCommand(rootOpts))
	return cmd
}

// reportDay resolves --date, defaulting to the ledger's calendar.
func reportDay(l *ledger.Ledger, value string) (time.Time, error) {
	if value == "" {
		return l.Clock().Now(), nil
	}
	date, err := isoDate("date", value)
	if err != nil {
		return time.Time{}, err
	}
	return ir.ParseDate(date)
}

func newInventoryReportCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarise stock, low-stock and near-expiry rows",
		Long: `Summarise retailer inventory.

A row is low on stock below the configured threshold (low_stock_threshold)
and near expiry when fewer than near_expiry_days remain.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			s, err := rootOpts.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			day, err := reportDay(s.ledger, date)
			if err != nil {
				return err
			}
			report := s.ledger.InventoryReport(day)

			return newFormatter(rootOpts, cmd).Success(report, func(w io.Writer) {
				writeReportText(w, report)
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "report as of this date (default today)")
	return cmd
}

func writeReportText(w io.Writer, r ledger.Report) {
	fmt.Fprintf(w, "Inventory as of %s\n", r.Date)
	fmt.Fprintf(w, "  Items:       %d\n", r.Total)
	fmt.Fprintf(w, "  Available:   %d\n", r.Available)
	fmt.Fprintf(w, "  Low stock:   %d\n", r.LowStock)
	fmt.Fprintf(w, "  Near expiry: %d\n", r.NearExpiry)
	if len(r.Rows) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, row := range r.Rows {
		var flags string
		if row.LowStock {
			flags += " LOW"
		}
		if row.NearExpiry {
			flags += " EXPIRING"
		}
		fmt.Fprintf(w, "  %s  %-24s  %s/%s  qty %d  expires %s (%d days)%s\n",
			row.DrugID, row.Name, row.SerialNumber, row.BatchNumber,
			row.Quantity, row.ExpiryDate, row.DaysToExpiry, flags)
	}
}

// inventoryCSVRow is one line of an inventory export.
type inventoryCSVRow struct {
	DrugID       string `csv:"drug_id"`
	Name         string `csv:"name"`
	SerialNumber string `csv:"serial_number"`
	BatchNumber  string `csv:"batch_number"`
	Quantity     int64  `csv:"quantity"`
	ExpiryDate   string `csv:"expiry_date"`
	DaysToExpiry int    `csv:"days_to_expiry"`
	Status       string `csv:"status"`
	LowStock     bool   `csv:"low_stock"`
	NearExpiry   bool   `csv:"near_expiry"`
}

func csvRows(r ledger.Report) []*inventoryCSVRow {
	rows := make([]*inventoryCSVRow, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = &inventoryCSVRow{
			DrugID:       row.DrugID,
			Name:         row.Name,
			SerialNumber: row.SerialNumber,
			BatchNumber:  row.BatchNumber,
			Quantity:     row.Quantity,
			ExpiryDate:   row.ExpiryDate,
			DaysToExpiry: row.DaysToExpiry,
			Status:       row.Status,
			LowStock:     row.LowStock,
			NearExpiry:   row.NearExpiry,
		}
	}
	return rows
}

func newInventoryExportCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		out  string
		date string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export inventory rows as CSV",
		Long: `Export inventory rows, with their low-stock and near-expiry flags, as CSV.

Writes to stdout unless --out names a file.

Example:
  rxtrace inventory export --out inventory.csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			s, err := rootOpts.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			day, err := reportDay(s.ledger, date)
			if err != nil {
				return err
			}
			rows := csvRows(s.ledger.InventoryReport(day))

			if out == "" || out == "-" {
				if err := gocsv.Marshal(rows, cmd.OutOrStdout()); err != nil {
					return WrapExitError(ExitCommandError, "failed to write CSV", err)
				}
				return nil
			}

			f, err := os.Create(out)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to create output file", err)
			}
			if err := gocsv.Marshal(rows, f); err != nil {
				_ = f.Close()
				return WrapExitError(ExitCommandError, "failed to write CSV", err)
			}
			if err := f.Close(); err != nil {
				return WrapExitError(ExitCommandError, "failed to write CSV", err)
			}

			newFormatter(rootOpts, cmd).VerboseLog("wrote %d rows to %s", len(rows), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&date, "date", "", "flag rows as of this date (default today)")
	return cmd
}
