package cmd

import (
	"errors"
	"fmt"
	"os"

	"soundwave/core/utils"
	"soundwave/logger"
	"soundwave/model"
	"soundwave/storage"

	"github.com/spf13/cobra"
)

var (
	assetSong   string
	assetKind   string
	assetFile   string
	assetURL    string
	assetPrefix string
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "MinIO 歌曲资源管理",
	Long:  `上传歌曲音频和封面到 MinIO，并把歌曲的 audioUrl / image 指向上传后的地址。`,
}

var assetsUploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "上传音频或封面",
	RunE: func(cmd *cobra.Command, args []string) error {
		if assetSong == "" {
			return errors.New("--song is required")
		}
		if assetKind != "audio" && assetKind != "cover" {
			return fmt.Errorf("unknown asset kind %q, want audio or cover", assetKind)
		}
		if (assetFile == "") == (assetURL == "") {
			return errors.New("exactly one of --file or --url is required")
		}
		ctx := cmd.Context()

		repo, closeStore, err := openSongStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		repo, closeEvents := withSongEvents(repo)
		defer closeEvents()

		song, err := repo.GetByID(ctx, assetSong)
		if err != nil {
			return err
		}
		if song == nil {
			return fmt.Errorf("song %s not found", assetSong)
		}

		local, name := assetFile, assetFile
		if assetURL != "" {
			fmt.Printf("下载文件: %s\n", assetURL)
			path, size, err := utils.DownloadFile(ctx, assetURL, "")
			if err != nil {
				return err
			}
			defer os.Remove(path)
			logger.Debug("Asset downloaded", logger.String("path", path), logger.Int64("size", size))
			local, name = path, assetURL
		}

		store, err := storage.ConnectAssetStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		url, err := store.UploadFile(ctx, storage.ObjectKey(assetKind, song.Key, utils.FileExt(name)), local)
		if err != nil {
			return err
		}

		patch := &model.SongPatch{}
		if assetKind == "audio" {
			patch.AudioURL = &url
		} else {
			patch.Image = &url
		}
		if _, err := repo.Update(ctx, song.Key, patch); err != nil {
			return fmt.Errorf("failed to update song %s: %w", song.Key, err)
		}
		fmt.Printf("%s uploaded for %q: %s\n", assetKind, song.Title, url)
		return nil
	},
}

var assetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "列出存储桶中的资源",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)
		store, err := storage.ConnectAssetStore(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("无法连接到MinIO: %w", err)
		}

		objects, stats, err := store.List(cmd.Context(), assetPrefix)
		if err != nil {
			return fmt.Errorf("列出文件失败: %w", err)
		}
		for _, o := range objects {
			fmt.Printf("%-48s %10s  %s  %s\n", o.Key, storage.FormatSize(o.Size), o.LastModified.Format("2006-01-02 15:04:05"), o.ContentType)
		}
		fmt.Printf("\n总文件数: %d, 总大小: %s\n", stats.TotalObjects, storage.FormatSize(stats.TotalSize))
		return nil
	},
}

func init() {
	assetsUploadCmd.Flags().StringVar(&assetSong, "song", "", "歌曲 _id")
	assetsUploadCmd.Flags().StringVar(&assetKind, "kind", "audio", "资源类型: audio 或 cover")
	assetsUploadCmd.Flags().StringVar(&assetFile, "file", "", "本地文件路径")
	assetsUploadCmd.Flags().StringVar(&assetURL, "url", "", "先下载该地址再上传")
	assetsListCmd.Flags().StringVarP(&assetPrefix, "prefix", "p", "", "按前缀过滤文件")

	assetsCmd.AddCommand(assetsUploadCmd, assetsListCmd)
	rootCmd.AddCommand(assetsCmd)

	assetsCmd.Example = `  # 上传本地音频
  soundwave assets upload --song 665f... --kind audio --file ./song.mp3

  # 下载封面后上传
  soundwave assets upload --song 665f... --kind cover --url https://example.com/cover.jpg

  # 列出所有音频
  soundwave assets list -p audio/`
}
