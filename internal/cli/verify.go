package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/verify"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <serial> <batch>",
		Short: "Verify a drug by serial and batch number",
		Long: `Look a drug up by serial and batch number and show its custody path.

Exit codes:
  0 - Drug found
  1 - No drug with this serial and batch number
  2 - Command error`,
		Args:          cobra.ExactArgs(2),
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
			res, err := verify.NewResolver(s.ledger).VerifyDrug(args[0], args[1])
			if err != nil {
				return out.Fail(err)
			}
			if !res.Success {
				if werr := out.Error(CodeNotFound, res.Message, nil); werr != nil {
					return werr
				}
				return &ExitError{Code: ExitFailure, Message: res.Message, Reported: true}
			}

			return out.Success(res.Drug, func(w io.Writer) {
				writeVerifiedText(w, res.Drug, rootOpts.Verbose)
			})
		},
	}
}

func writeVerifiedText(w io.Writer, v *verify.Verified, verbose bool) {
	fmt.Fprintf(w, "Verified: %s (%s)\n", v.Name, v.ID)
	if v.Description != "" {
		fmt.Fprintf(w, "  %s\n", v.Description)
	}
	fmt.Fprintf(w, "  Serial/Batch:  %s / %s\n", v.SerialNumber, v.BatchNumber)
	fmt.Fprintf(w, "  Manufactured:  %s\n", v.ManufacturingDate)
	fmt.Fprintf(w, "  Expires:       %s\n", v.ExpiryDate)
	fmt.Fprintf(w, "  Status:        %s\n", v.CurrentStatus)
	if v.LastKnownLocation != "" {
		fmt.Fprintf(w, "  Location:      %s\n", v.LastKnownLocation)
	}
	if v.Quantity != nil {
		fmt.Fprintf(w, "  In stock:      %d\n", *v.Quantity)
	}
	if sh := v.ShipmentDetails; sh != nil {
		fmt.Fprintf(w, "  Shipment:      %s to %s, %d units, %s\n", sh.ID, sh.Destination, sh.Quantity, sh.Status)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Custody Path ===")
	if len(v.Path) == 0 {
		fmt.Fprintln(w, "  (no custody events)")
		return
	}
	for i, step := range v.Path {
		fmt.Fprintf(w, "  %d. %s  %s  %s\n", i+1, step.Date, step.Stage, step.Location)
		if verbose {
			fmt.Fprintf(w, "     Temperature: %s\n", step.Temperature)
			if step.Customer != "" {
				fmt.Fprintf(w, "     Customer: %s\n", step.Customer)
			}
		}
	}
}
