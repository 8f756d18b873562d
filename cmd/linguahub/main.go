package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/linguahub/client/internal/config"
	"github.com/linguahub/client/internal/export"
	"github.com/linguahub/client/internal/infra/httpapi"
	"github.com/linguahub/client/internal/infra/sqlite"
	"github.com/linguahub/client/internal/logger"
	"github.com/linguahub/client/internal/service"
)

const usage = `usage: linguahub <command> [args]

commands:
  register <name> <email>     create an account (password read from stdin)
  login <email>               sign in (password read from stdin)
  logout                      sign out and clear the local session
  whoami                      show the current user
  progress                    show completion percentages
  complete <topic-id> <score> mark a topic completed
  levels                      list course levels with unlock state
  leaderboard                 show the points ranking
  chat <message>              ask the learning assistant
  export [path]               write the progress report to an .xlsx file
  sync                        run background sync until interrupted
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	store, err := sqlite.Open(cfg.DataDir)
	if err != nil {
		zl.Fatal("open session store", zap.Error(err))
	}
	defer store.Close()

	client := httpapi.New(cfg.API.BaseURL, cfg.API.Timeout)

	session := service.NewSessionService(client, client, store, zl)
	client.SetAuthenticator(session)

	progress := service.NewProgressService(client, zl)
	defer progress.Close()

	course := service.NewCourseService(client, progress)
	leaderboard := service.NewLeaderboardService(client)
	chat := service.NewChatService(client)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	session.Restore(ctx)

	app := &app{
		cfg:         cfg,
		log:         zl,
		session:     session,
		progress:    progress,
		course:      course,
		leaderboard: leaderboard,
		chat:        chat,
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := app.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	cfg         *config.Config
	log         *zap.Logger
	session     *service.SessionService
	progress    *service.ProgressService
	course      *service.CourseService
	leaderboard *service.LeaderboardService
	chat        *service.ChatService
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		if len(args) != 2 {
			return fmt.Errorf("register needs <name> <email>")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		user, err := a.session.Register(ctx, args[0], args[1], password)
		if err != nil {
			return err
		}
		fmt.Printf("registered as %s (%s)\n", user.Name, user.Level)
		return nil

	case "login":
		if len(args) != 1 {
			return fmt.Errorf("login needs <email>")
		}
		password, err := readPassword()
		if err != nil {
			return err
		}
		user, err := a.session.Login(ctx, args[0], password)
		if err != nil {
			return err
		}
		fmt.Printf("welcome back, %s (%s, %d points)\n", user.Name, user.Level, user.Points)
		return nil

	case "logout":
		a.session.Logout(ctx)
		fmt.Println("logged out")
		return nil

	case "whoami":
		user := a.session.CurrentUser()
		if user == nil {
			fmt.Println("not logged in")
			return nil
		}
		fmt.Printf("%s <%s> level %s, %d points\n", user.Name, user.Email, user.Level, user.Points)
		return nil

	case "progress":
		if err := a.loadProgress(ctx); err != nil {
			return err
		}
		levels, err := a.course.Catalog(ctx)
		if err != nil {
			return err
		}
		a.progress.SetCatalog(levels)
		for _, level := range levels {
			fmt.Printf("%-3s %3d%%\n", level.Name, a.progress.LevelProgress(level.ID))
		}
		fmt.Printf("total: %d%%\n", a.progress.TotalProgress())
		return nil

	case "complete":
		if len(args) != 2 {
			return fmt.Errorf("complete needs <topic-id> <score>")
		}
		score, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("score must be an integer: %w", err)
		}
		// On an ambiguous earlier failure the server state is checked
		// first so a completion is never double-counted.
		if err := a.progress.Refresh(ctx); err != nil {
			a.log.Warn("pre-completion refresh failed", zap.Error(err))
		}
		if e, ok := a.progress.TopicProgress(args[0]); ok && e.Completed {
			fmt.Println("topic already completed")
			return nil
		}
		if err := a.progress.CompleteTopic(ctx, args[0], score); err != nil {
			return err
		}
		fmt.Println("topic completed")
		return nil

	case "levels":
		if err := a.loadProgress(ctx); err != nil {
			return err
		}
		levels, err := a.course.Levels(ctx)
		if err != nil {
			return err
		}
		for i, level := range levels {
			state := "locked"
			if a.course.IsUnlocked(levels, i) {
				state = "unlocked"
			}
			fmt.Printf("%-3s %-30s %s\n", level.Name, level.Title, state)
		}
		return nil

	case "leaderboard":
		entries, err := a.leaderboard.Top(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%3d. %-24s %-3s %6d\n", e.Rank, e.Name, e.Level, e.Points)
		}
		if user := a.session.CurrentUser(); user != nil {
			if rank, ok := a.leaderboard.Rank(entries, user.ID); ok {
				fmt.Printf("your rank: %d\n", rank)
			}
		}
		return nil

	case "chat":
		if len(args) == 0 {
			return fmt.Errorf("chat needs <message>")
		}
		if !a.session.Active() {
			return service.ErrNotAuthenticated
		}

		sessions, err := a.chat.Sessions(ctx)
		if err != nil {
			return err
		}
		var sessionID string
		if len(sessions) > 0 {
			sessionID = sessions[0].ID
		} else {
			created, err := a.chat.CreateSession(ctx, "", "CLI conversation")
			if err != nil {
				return err
			}
			sessionID = created.ID
		}

		reply, err := a.chat.Send(ctx, sessionID, strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(reply.Content)
		return nil

	case "export":
		user := a.session.CurrentUser()
		if user == nil {
			return service.ErrNotAuthenticated
		}
		if err := a.loadProgress(ctx); err != nil {
			return err
		}
		levels, err := a.course.Catalog(ctx)
		if err != nil {
			return err
		}
		a.progress.SetCatalog(levels)

		path := filepath.Join(a.cfg.DataDir, fmt.Sprintf("%s-%s.xlsx", a.cfg.Sync.ExportPrefix, time.Now().Format("2006-01-02")))
		if len(args) > 0 {
			path = args[0]
		}
		if err := export.WriteReport(path, a.cfg.Sync.ExportSheet, user, levels, a.progress); err != nil {
			return err
		}
		fmt.Println("report written to", path)
		return nil

	case "sync":
		if err := a.loadProgress(ctx); err != nil {
			return err
		}
		if levels, err := a.course.Catalog(ctx); err == nil {
			a.progress.SetCatalog(levels)
		}

		syncer := service.NewSyncer(a.session, a.progress, a.cfg.Sync.Interval, a.cfg.Sync.RenewBefore, a.log)
		if err := syncer.Start(); err != nil {
			return err
		}
		defer syncer.Stop()

		a.log.Info("sync running, press Ctrl+C to stop")
		<-ctx.Done()
		a.log.Info("shutdown signal received")
		return nil

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) loadProgress(ctx context.Context) error {
	if !a.session.Active() {
		return service.ErrNotAuthenticated
	}
	return a.progress.Refresh(ctx)
}

func readPassword() (string, error) {
	fmt.Print("password: ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}

	password := strings.TrimSpace(line)
	if password == "" {
		return "", fmt.Errorf("password must not be empty")
	}
	return password, nil
}
