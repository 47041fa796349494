package cmd

import (
	"errors"
	"fmt"
	"strings"

	"soundwave/core/admin"
	"soundwave/core/api"
	"soundwave/core/auth"
	"soundwave/core/catalog"
	"soundwave/core/player"

	"github.com/spf13/cobra"
)

var (
	songsQuery string
	songsGenre string
)

func openSession() (*auth.Session, error) {
	dir, err := auth.NewDemoDirectory()
	if err != nil {
		return nil, err
	}
	session, err := auth.NewSession(dir, auth.NewFileStore(cfg.SessionFile), cfg.SessionSecret)
	if err != nil {
		return nil, err
	}
	if _, err := session.Load(); err != nil {
		return nil, err
	}
	return session, nil
}

// requireAdmin 仅管理员可执行
func requireAdmin() error {
	session, err := openSession()
	if err != nil {
		return err
	}
	if !session.IsAdmin() {
		return errors.New("admin login required")
	}
	return nil
}

var songsCmd = &cobra.Command{
	Use:   "songs",
	Short: "按关键字和流派浏览歌曲",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := admin.NewService(api.New(cfg.APIBaseURL))
		songs, err := svc.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		genre := songsGenre
		if genre == "" {
			genre = catalog.AllGenres
		}
		shown := catalog.Filter(songs, songsQuery, genre)
		for _, s := range shown {
			like := " "
			if s.IsLiked {
				like = "♥"
			}
			fmt.Printf("%s %-26s %-24s %-10s %5s  %s\n", like, s.Key, s.Title, s.Genre,
				player.FormatTime(player.ParseDuration(s.Duration)), s.Artist)
		}
		st := catalog.Summarize(songs)
		fmt.Printf("\n%s · genres: %s\n", catalog.ResultLabel(len(shown)), strings.Join(catalog.Genres(songs), ", "))
		fmt.Printf("%d artists, %d liked, %d without audio\n", st.Artists, st.Liked, st.NoAudio)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login <username> <password>",
	Short: "登录演示账号",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		u, err := session.Login(args[0], args[1])
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errors.New("Invalid username or password")
		}
		if err != nil {
			return err
		}
		fmt.Printf("Welcome, %s (%s)\n", u.Name, u.Type)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "退出登录",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		return session.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "显示当前用户",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := openSession()
		if err != nil {
			return err
		}
		u := session.Current()
		if u == nil {
			fmt.Println("Not logged in")
			return nil
		}
		fmt.Printf("%s <%s> %s, joined %s\n", u.Name, u.Email, u.Type, u.JoinDate)
		fmt.Printf("%d songs played, %d hours, %d liked songs, %d playlists\n",
			u.Stats.SongsPlayed, u.Stats.HoursListened, u.Stats.LikedSongs, u.Stats.Playlists)
		return nil
	},
}

var likeCmd = &cobra.Command{
	Use:   "like <id>",
	Short: "切换歌曲喜欢状态 (管理员)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		client := api.New(cfg.APIBaseURL)
		song, err := client.GetSong(cmd.Context(), args[0])
		if err != nil {
			return errors.New(api.UserMessage(api.OpFetch, err))
		}
		updated, err := admin.NewService(client).ToggleLike(cmd.Context(), song)
		if err != nil {
			return err
		}
		fmt.Printf("%s liked: %t\n", updated.Title, updated.IsLiked)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "删除歌曲 (管理员)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAdmin(); err != nil {
			return err
		}
		if err := admin.NewService(api.New(cfg.APIBaseURL)).Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Println("Song deleted")
		return nil
	},
}

func init() {
	songsCmd.Flags().StringVarP(&songsQuery, "query", "q", "", "按标题或歌手搜索")
	songsCmd.Flags().StringVarP(&songsGenre, "genre", "g", "", "按流派过滤")
	rootCmd.AddCommand(songsCmd, loginCmd, logoutCmd, whoamiCmd, likeCmd, deleteCmd)
}
