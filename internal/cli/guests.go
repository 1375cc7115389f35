package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrlokans/weddingplanner/internal/database/wedding"
	"github.com/mrlokans/weddingplanner/internal/entities"
	"github.com/mrlokans/weddingplanner/internal/seating"
)

func newGuestsCommand(dbPath *string) *cobra.Command {
	var userID uint

	cmd := &cobra.Command{
		Use:   "guests",
		Short: "Export or import a guest list as CSV",
	}
	cmd.PersistentFlags().UintVar(&userID, "user-id", 0, "owner of the guest list (0 in single-user mode)")

	var output string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write the guest list as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd, *dbPath)
			if err != nil {
				return err
			}
			defer e.Close()

			guests, err := wedding.NewRepository(e.db.DB).ListGuests(userID, wedding.GuestFilter{})
			if err != nil {
				return fmt.Errorf("list guests: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := seating.ExportCSV(w, guests); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			e.logger.Info("exported guests", "user_id", userID, "count", len(guests))
			return nil
		},
	}
	export.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	var dryRun bool
	importCmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Add guests from a CSV file",
		Long: `Adds every valid row of the CSV file to the guest list. Invalid rows
are reported and skipped. Use "-" to read from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}

			guests, rowErrors, err := seating.ImportCSV(r)
			if err != nil {
				return fmt.Errorf("read csv: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, re := range rowErrors {
				fmt.Fprintf(out, "line %d: %s\n", re.Line, re.Message)
			}
			if dryRun {
				fmt.Fprintf(out, "%d guests would be imported, %d rows rejected\n", len(guests), len(rowErrors))
				return nil
			}

			e, err := openEnv(cmd, *dbPath)
			if err != nil {
				return err
			}
			defer e.Close()

			now := time.Now()
			for i := range guests {
				guests[i].UserID = userID
				if guests[i].RSVPStatus != entities.RSVPPending {
					guests[i].RespondedAt = &now
				}
			}
			err = wedding.NewRepository(e.db.DB).CreateGuests(guests)
			if err != nil {
				e.events.LogGuestImport(userID, 0, len(rowErrors), err)
				return fmt.Errorf("save guests: %w", err)
			}
			e.events.LogGuestImport(userID, len(guests), len(rowErrors), nil)
			fmt.Fprintf(out, "Imported %d guests, rejected %d rows\n", len(guests), len(rowErrors))
			return nil
		},
	}
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without saving")

	cmd.AddCommand(export, importCmd)
	return cmd
}
