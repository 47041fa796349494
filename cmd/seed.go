package cmd

import (
	"fmt"

	"soundwave/seed"

	"github.com/spf13/cobra"
)

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入演示歌曲",
	Long:  `将 8 首演示歌曲写入歌曲库。已存在相同目录ID的歌曲会被跳过，--reset 会先清空歌曲库。`,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openSongStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		repo, closeEvents := withSongEvents(repo)
		defer closeEvents()

		res, err := seed.Seed(cmd.Context(), repo, seedReset)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded songs: %d inserted, %d skipped, %d deleted\n", res.Inserted, res.Skipped, res.Deleted)
		return nil
	},
}

var audioURLsCmd = &cobra.Command{
	Use:   "audio-urls",
	Short: "为演示歌曲设置音频地址",
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, closeStore, err := openSongStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		missing, err := seed.ApplyAudioURLs(cmd.Context(), repo, seed.AudioURLs())
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			fmt.Printf("No song with catalog id: %v\n", missing)
		}
		fmt.Println("All songs updated with audioUrl")
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "删除已有歌曲后再写入")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(audioURLsCmd)
}
