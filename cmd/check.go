package cmd

import (
	"fmt"
	"log"

	"sonicpdf/config"
	"sonicpdf/db"
	"sonicpdf/storage"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check backing service connectivity",
	Long:  `Connect to MySQL, Redis and MinIO with the current configuration and report each result.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		failed := 0

		fmt.Printf("MySQL   %s:%s ... ", cfg.DBHost, cfg.DBPort)
		if err := db.ConnectDB(cfg); err != nil {
			fmt.Printf("FAIL: %v\n", err)
			failed++
		} else {
			fmt.Println("ok")
			db.CloseDB()
		}

		fmt.Printf("Redis   %s:%s ... ", cfg.RedisHost, cfg.RedisPort)
		if err := db.ConnectRedis(cfg); err != nil {
			fmt.Printf("FAIL: %v\n", err)
			failed++
		} else {
			fmt.Println("ok")
			db.CloseRedis()
		}

		fmt.Printf("MinIO   %s bucket %s ... ", cfg.MinioEndpoint, cfg.MinioBucket)
		if _, err := storage.NewDocumentStore(cfg); err != nil {
			fmt.Printf("FAIL: %v\n", err)
			failed++
		} else {
			fmt.Println("ok")
		}

		if failed > 0 {
			log.Fatalf("%d of 3 services unreachable", failed)
		}
		fmt.Println("All services reachable.")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
