package cmd

import (
	"sonicpdf/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the SonicPDF server",
	Long:  `Run the HTTP server serving the reader API, the WebSocket reading session and the audio assets.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
