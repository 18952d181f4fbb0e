package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/challan"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/exports"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

var (
	exportOut  string
	exportFrom string
	exportTo   string
	challanOut string
)

var exportCmd = &cobra.Command{
	Use:       "export products|orders",
	Short:     "Write an xlsx export",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"products", "orders"},
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		ex := exports.New(catalog.NewRepo(e.db), orders.NewRepo(e.db))
		out := exportOut
		if out == "" {
			out = args[0] + ".xlsx"
		}
		return writeFile(cmd, out, func(w io.Writer) error {
			if args[0] == "products" {
				return ex.Products(cmd.Context(), w)
			}
			from, to, err := exports.Range(exportFrom, exportTo, time.Now())
			if err != nil {
				return err
			}
			return ex.Orders(cmd.Context(), w, from, to)
		})
	}),
}

var challanCmd = &cobra.Command{
	Use:   "challan <order-number>",
	Short: "Render the delivery challan PDF for an order",
	Args:  cobra.ExactArgs(1),
	RunE: withEnv(func(cmd *cobra.Command, args []string, e *env) error {
		ctx := cmd.Context()
		repo := orders.NewRepo(e.db)
		o, err := repo.GetByNumber(ctx, strings.ToUpper(strings.TrimSpace(args[0])))
		if err != nil {
			return err
		}
		d, err := repo.AdminGetDetail(ctx, o.ID)
		if err != nil {
			return err
		}
		site, err := content.NewSettingsRepo(e.db).Site(ctx)
		if err != nil {
			return err
		}
		out := challanOut
		if out == "" {
			out = challan.Filename(o.Number)
		}
		return writeFile(cmd, out, func(w io.Writer) error {
			return challan.Render(w, challan.Data{Site: site, Tracking: d.Tracking})
		})
	}),
}

func writeFile(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "wrote", path)
	return nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default <kind>.xlsx)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "orders from date, YYYY-MM-DD")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "orders to date, YYYY-MM-DD")
	challanCmd.Flags().StringVarP(&challanOut, "out", "o", "", "output file (default challan-<number>.pdf)")

	rootCmd.AddCommand(exportCmd, challanCmd)
}
