package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/rxtrace/internal/ir"
)

// DrugOptions holds flags for drug register.
type DrugOptions struct {
	*RootOptions
	ID                string
	Name              string
	Description       string
	SerialNumber      string
	BatchNumber       string
	ManufacturingDate string
	ExpiryDate        string
}

// NewDrugCommand creates the drug command group.
func NewDrugCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drug",
		Short: "Register and list drugs",
	}
	cmd.AddCommand(newDrugRegisterCommand(rootOpts))
	cmd.AddCommand(newDrugListCommand(rootOpts))
	return cmd
}

func newDrugRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DrugOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a manufactured drug",
		Long: `Register a drug by serial and batch number.

The drug starts Registered with an empty custody path. The pair of
serial and batch number must be unique.

Example:
  rxtrace drug register --name "Amoxicillin 250mg" --serial SN1 --batch B1 \
    --mfg 2024-01-01 --expiry "Jan 1, 2026"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDrugRegister(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "drug id (generated when empty)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "drug name (required)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "free-text description")
	cmd.Flags().StringVar(&opts.SerialNumber, "serial", "", "serial number (required)")
	cmd.Flags().StringVar(&opts.BatchNumber, "batch", "", "batch number (required)")
	cmd.Flags().StringVar(&opts.ManufacturingDate, "mfg", "", "manufacturing date (required)")
	cmd.Flags().StringVar(&opts.ExpiryDate, "expiry", "", "expiry date (required)")
	for _, name := range []string{"name", "serial", "batch", "mfg", "expiry"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runDrugRegister(opts *DrugOptions, cmd *cobra.Command) error {
	mfg, err := isoDate("mfg", opts.ManufacturingDate)
	if err != nil {
		return err
	}
	expiry, err := isoDate("expiry", opts.ExpiryDate)
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
	d, err := s.ledger.AddDrug(ctx, ir.Drug{
		ID:                opts.ID,
		Name:              opts.Name,
		Description:       opts.Description,
		SerialNumber:      opts.SerialNumber,
		BatchNumber:       opts.BatchNumber,
		ManufacturingDate: mfg,
		ExpiryDate:        expiry,
	})
	if err != nil {
		return out.Fail(err)
	}

	return out.Success(d.Canonical(), func(w io.Writer) {
		fmt.Fprintf(w, "Registered drug %s (%s, serial %s, batch %s)\n", d.ID, d.Name, d.SerialNumber, d.BatchNumber)
	})
}

func newDrugListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List registered drugs",
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

			drugs := s.ledger.Drugs()
			data := make([]map[string]any, len(drugs))
			for i, d := range drugs {
				data[i] = d.Canonical()
			}

			return newFormatter(rootOpts, cmd).Success(data, func(w io.Writer) {
				if len(drugs) == 0 {
					fmt.Fprintln(w, "No drugs registered.")
					return
				}
				for _, d := range drugs {
					fmt.Fprintf(w, "%s  %-24s  %s/%s  %-10s  %d path entries\n",
						d.ID, d.Name, d.SerialNumber, d.BatchNumber, d.Status, len(d.Path))
				}
			})
		},
	}
}
