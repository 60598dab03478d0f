package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/ir"
	"github.com/roach88/rxtrace/internal/ledger"
)

// ShipmentOptions holds flags for shipment create.
type ShipmentOptions struct {
	*RootOptions
	ID               string
	DrugID           string
	Destination      string
	Quantity         int64
	Temperature      string
	ShipmentDate     string
	ExpectedDelivery string
	Origin           string // manufacturing plant, first shipment only
}

// NewShipmentCommand creates the shipment command group.
func NewShipmentCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipment",
		Short: "Dispatch, deliver and list shipments",
	}
	cmd.AddCommand(newShipmentCreateCommand(rootOpts))
	cmd.AddCommand(newShipmentDeliverCommand(rootOpts))
	cmd.AddCommand(newShipmentListCommand(rootOpts))
	return cmd
}

func newShipmentCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShipmentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Dispatch a shipment of a registered drug",
		Long: `Dispatch a shipment towards a retailer.

A Distribution entry is appended to the drug's custody path and the drug
moves to InTransit. The temperature is a number in degrees Celsius.

With --origin, the drug's first shipment starts its path with a
Manufacturing entry at that plant, dated the manufacturing date.

Example:
  rxtrace shipment create --drug d1 --destination "Pharmacy North" \
    --quantity 100 --temperature 5 --date 2024-01-02 --expected 2024-01-05`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShipmentCreate(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "shipment id (generated when empty)")
	cmd.Flags().StringVar(&opts.DrugID, "drug", "", "drug id (required)")
	cmd.Flags().StringVar(&opts.Destination, "destination", "", "retailer receiving the shipment (required)")
	cmd.Flags().Int64Var(&opts.Quantity, "quantity", 0, "number of units (required)")
	cmd.Flags().StringVar(&opts.Temperature, "temperature", "", "transport temperature in °C (required)")
	cmd.Flags().StringVar(&opts.ShipmentDate, "date", "", "shipment date (required)")
	cmd.Flags().StringVar(&opts.ExpectedDelivery, "expected", "", "expected delivery date")
	cmd.Flags().StringVar(&opts.Origin, "origin", "", "manufacturing plant (first shipment of a drug only)")
	for _, name := range []string{"drug", "destination", "quantity", "temperature", "date"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runShipmentCreate(opts *ShipmentOptions, cmd *cobra.Command) error {
	date, err := isoDate("date", opts.ShipmentDate)
	if err != nil {
		return err
	}
	expected, err := isoDate("expected", opts.ExpectedDelivery)
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
	req := ir.Shipment{
		ID:               opts.ID,
		DrugID:           opts.DrugID,
		Destination:      opts.Destination,
		Quantity:         opts.Quantity,
		Temperature:      opts.Temperature,
		ShipmentDate:     date,
		ExpectedDelivery: expected,
	}
	if opts.Origin != "" {
		// An unknown drug is left for AddShipment to report.
		if drug, ok := s.ledger.Drug(opts.DrugID); ok {
			if len(drug.Path) > 0 {
				return out.Fail(fmt.Errorf("%w: --origin applies only to the first shipment of drug %q",
					ledger.ErrInvalidInput, drug.ID))
			}
			req.Path = ir.Path{ir.NewManufacturingEntry(opts.Origin, drug.ManufacturingDate, opts.Temperature)}
		}
	}

	sh, err := s.ledger.AddShipment(ctx, req)
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(sh.Canonical(), func(w io.Writer) {
		fmt.Fprintf(w, "Shipment %s: %d x %s to %s (%s)\n", sh.ID, sh.Quantity, sh.DrugID, sh.Destination, sh.Status)
	})
}

func newShipmentDeliverCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "deliver <shipment-id>",
		Short: "Mark a shipment delivered to its retailer",
		Long: `Mark an in-transit shipment Delivered.

The delivery is dated today. The drug moves to AtRetailer and the
shipped quantity is added to the retailer's inventory. A shipment can
be delivered only once.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			s, err := rootOpts.openSession(ctx)
			if err != nil {
				return err
			}
			defer s.close()

			out := newFormatter(rootOpts, cmd)
			sh, err := s.ledger.UpdateShipmentStatus(ctx, args[0], ir.ShipmentStatus(status))
			if err != nil {
				return out.Fail(err)
			}

			return out.Success(sh.Canonical(), func(w io.Writer) {
				last, _ := sh.Path.Last()
				fmt.Fprintf(w, "Shipment %s delivered to %s on %s\n", sh.ID, sh.Destination, last.Date)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", string(ir.ShipmentDelivered), "new shipment status")
	return cmd
}

func newShipmentListCommand(rootOpts *RootOptions) *cobra.Command {
	var drugID string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List shipments",
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

			shipments := s.ledger.Shipments()
			if drugID != "" {
				shipments = s.ledger.ShipmentsForDrug(drugID)
			}
			data := make([]map[string]any, len(shipments))
			for i, sh := range shipments {
				data[i] = sh.Canonical()
			}

			return newFormatter(rootOpts, cmd).Success(data, func(w io.Writer) {
				if len(shipments) == 0 {
					fmt.Fprintln(w, "No shipments.")
					return
				}
				for _, sh := range shipments {
					fmt.Fprintf(w, "%s  drug %s  %5d units  to %-20s  %s  %s\n",
						sh.ID, sh.DrugID, sh.Quantity, sh.Destination, sh.ShipmentDate, sh.Status)
				}
			})
		},
	}

	cmd.Flags().StringVar(&drugID, "drug", "", "only shipments of this drug")
	return cmd
}
