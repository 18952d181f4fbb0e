package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/db/migrate"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/catalog"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/content"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load categories, products, gift boxes and site settings from YAML",
	Long:  "Loads a YAML seed file. Existing slugs are skipped, so the command can be re-run.",
	Args:  cobra.NoArgs,
	RunE: withEnv(func(cmd *cobra.Command, _ []string, e *env) error {
		f, err := os.Open(seedFile)
		if err != nil {
			return err
		}
		defer f.Close()

		data, err := seed.Parse(f)
		if err != nil {
			return err
		}
		if err := migrate.Up(cmd.Context(), e.db, e.log); err != nil {
			return err
		}
		res, err := seed.Apply(cmd.Context(), catalog.NewRepo(e.db), content.NewSettingsRepo(e.db), data, e.log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "categories: %d, products: %d, gift boxes: %d, skipped: %d, settings: %d\n",
			res.Categories, res.Products, res.GiftBoxes, res.Skipped, len(res.Settings))
		return nil
	}),
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "seed/catalog.yaml", "seed YAML file")
	rootCmd.AddCommand(seedCmd)
}
