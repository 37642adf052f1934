package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yi-nology/showcase/pkg/ui"
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "Stored asset maintenance",
}

var assetsRecompressCmd = &cobra.Command{
	Use:   "recompress",
	Short: "Rewrite stored payloads with the configured compression",
	Long: `Rewrite every inline and offloaded payload into the current envelope.

Payloads stored raw or at another compression level are re-encoded with
storage.compression_level and moved to object storage when they exceed
storage.offload_threshold. External URLs are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		report, err := showcase.Service.Recompress(getContext(cmd))
		out := cmd.OutOrStdout()
		if report != nil {
			fmt.Fprintln(out, ui.FormatInfo(fmt.Sprintf("rewrote %d files, %d gallery images, %d HDRIs", report.Files, report.Gallery, report.HDRIs)))
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.FormatSuccess("Recompression finished"))
		return nil
	},
}

func init() {
	assetsCmd.AddCommand(assetsRecompressCmd)
}
