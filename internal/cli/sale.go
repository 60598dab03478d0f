package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/ir"
)

// SaleOptions holds flags for sale record.
type SaleOptions struct {
	*RootOptions
	ID           string
	DrugID       string
	Quantity     int64
	CustomerName string
	CustomerID   string
	Date         string
}

// NewSaleCommand creates the sale command group.
func NewSaleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Record retail sales",
	}
	cmd.AddCommand(newSaleRecordCommand(rootOpts))
	return cmd
}

func newSaleRecordCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a sale against retailer inventory",
		Long: `Record a retail sale.

The quantity is taken from the drug's inventory row and must not exceed
the units on hand. A Sold to Customer entry is appended to the custody
path and the drug moves to Sold.

Example:
  rxtrace sale record --drug d1 --quantity 2 --customer "Jane Doe" \
    --customer-id C-17 --date 2024-02-01`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSaleRecord(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "sale id (generated when empty)")
	cmd.Flags().StringVar(&opts.DrugID, "drug", "", "drug id (required)")
	cmd.Flags().Int64Var(&opts.Quantity, "quantity", 0, "units sold (required)")
	cmd.Flags().StringVar(&opts.CustomerName, "customer", "", "customer name (required)")
	cmd.Flags().StringVar(&opts.CustomerID, "customer-id", "", "customer id (required)")
	cmd.Flags().StringVar(&opts.Date, "date", "", "sale date (required)")
	for _, name := range []string{"drug", "quantity", "customer", "customer-id", "date"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runSaleRecord(opts *SaleOptions, cmd *cobra.Command) error {
	date, err := isoDate("date", opts.Date)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	s, err := opts.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	out := newFormatter(opts.RootOptions, cmd)
	item, err := s.ledger.RecordSale(ctx, ir.Sale{
		ID:           opts.ID,
		DrugID:       opts.DrugID,
		Quantity:     opts.Quantity,
		CustomerName: opts.CustomerName,
		CustomerID:   opts.CustomerID,
		Date:         date,
	})
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(item.Canonical(), func(w io.Writer) {
		fmt.Fprintf(w, "Sold %d x %s to %s; %d left in stock\n", opts.Quantity, item.Name, opts.CustomerName, item.Quantity)
	})
}
