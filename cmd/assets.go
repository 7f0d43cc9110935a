package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"sonicpdf/catalog"
	"sonicpdf/config"

	"github.com/spf13/cobra"
)

var assetsDir string

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Verify the audio asset directory",
	Long:  `Check that every music track and sound effect in the catalogs has a file on disk, and list files the catalogs do not reference.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := assetsDir
		if dir == "" {
			dir = config.Load().AssetDir
		}
		fmt.Printf("Checking assets under %s\n", dir)

		referenced := make(map[string]string, len(catalog.Music)+len(catalog.Effects))
		for _, m := range catalog.Music {
			referenced[filepath.FromSlash(m.Asset)] = string(m.ID)
		}
		for _, e := range catalog.Effects {
			referenced[filepath.FromSlash(e.Asset)] = string(e.ID)
		}

		missing := 0
		for asset, id := range referenced {
			if _, err := os.Stat(filepath.Join(dir, asset)); err != nil {
				fmt.Printf("MISSING %-6s %s\n", id, asset)
				missing++
			}
		}

		extra := 0
		err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			if _, ok := referenced[rel]; !ok {
				fmt.Printf("UNREFERENCED    %s\n", rel)
				extra++
			}
			return nil
		})
		if err != nil {
			log.Fatalf("Failed to walk asset directory: %v", err)
		}

		fmt.Printf("%d catalog entries, %d missing, %d unreferenced files\n",
			len(referenced), missing, extra)
		if missing > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	assetsCmd.Flags().StringVarP(&assetsDir, "dir", "d", "", "asset directory (defaults to ASSET_DIR)")
	rootCmd.AddCommand(assetsCmd)
}
