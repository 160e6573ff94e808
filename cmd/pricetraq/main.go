package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/config"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/gateway"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/linking"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/session"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/session/seal"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/session/sqlite"
	"github.com/Surajsharma07/pricetraqor-twa-sub000/internal/watchlist"
)

// Константы для определения окружения.
const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting application", "env", cfg.Env)

	// Корневой контекст по сигналам.
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	// Локальное хранилище сессии (опционально зашифрованное).
	var sealer *seal.Sealer
	if cfg.Storage.SealKey != "" {
		var err error
		sealer, err = seal.New(cfg.Storage.SealKey)
		if err != nil {
			log.Error("seal_init_failed", slog.String("err", err.Error()))
			os.Exit(1)
		}
	}

	persist, err := sqlite.Open(cfg.Storage.Path, sealer)
	if err != nil {
		log.Error("storage_open_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer persist.Close()
	log.Info("storage_opened", slog.String("path", cfg.Storage.Path))

	sessions, err := session.Open(persist)
	if err != nil {
		log.Error("session_open_failed", slog.String("err", err.Error()))
		persist.Close()
		os.Exit(1)
	}

	gw, err := gateway.New(sessions, gateway.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Logger:    log,
	})
	if err != nil {
		log.Error("gateway_init_failed", slog.String("err", err.Error()))
		persist.Close()
		os.Exit(1)
	}

	orch := linking.New(gw, sessions, log)
	wl := watchlist.New(gw, sessions)

	// Автологин по initData при старте; подавление после logout и
	// отсутствие initData дают молчаливый initial.
	initData := ""
	if cfg.Auth.AutoLogin {
		initData = cfg.Auth.InitData
	}

	state, err := orch.Start(rootCtx, initData)
	if err != nil {
		log.Warn("auto_auth_failed", slog.String("err", err.Error()))
	}
	log.Info("linking_state", slog.String("state", string(state)))

	if err := runShell(rootCtx, os.Stdin, os.Stdout, orch, wl, gw); err != nil {
		log.Error("shell_failed", slog.String("err", err.Error()))
		persist.Close()
		os.Exit(1)
	}

	log.Info("client_stopped")
}

// runShell — строчный командный цикл поверх оркестратора и вотчлиста.
// Завершается по EOF, команде quit или отмене контекста.
func runShell(ctx context.Context, in *os.File, out *os.File, orch *linking.Orchestrator, wl *watchlist.Service, gw *gateway.Client) error {
	w := bufio.NewWriter(out)
	defer w.Flush()

	printf := func(format string, args ...any) {
		fmt.Fprintf(w, format+"\n", args...)
		w.Flush()
	}

	printf("pricetraq shell; команда help выведет список команд")

	sc := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		printf("[%s]>", orch.State())
		if !sc.Scan() {
			return sc.Err()
		}

		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]

		var err error
		switch cmd {
		case "help":
			printf("state | email <addr> <pw> | linkpw <pw> | back | signup <addr> <pw> [name] | login <addr> <pw>")
			printf("list | refresh | add <url> [target] | rm <id> | pause <id> | resume <id> | target <id> <price>")
			printf("profile | notifications | passwd <old> <new> | logout | quit")
		case "quit", "exit":
			return nil
		case "state":
			printf("%s", orch.State())
		case "email":
			err = needArgs(args, 2, func() error {
				state, serr := orch.SubmitEmail(ctx, args[0], args[1])
				printf("-> %s", state)
				return serr
			})
		case "linkpw":
			err = needArgs(args, 1, func() error {
				state, serr := orch.SubmitLinkPassword(ctx, args[0])
				printf("-> %s", state)
				return serr
			})
		case "back":
			state, serr := orch.UseDifferentEmail()
			printf("-> %s", state)
			err = serr
		case "signup":
			err = needArgs(args, 2, func() error {
				fullName := strings.Join(args[2:], " ")
				state, serr := orch.SignUp(ctx, args[0], args[1], fullName)
				printf("-> %s", state)
				return serr
			})
		case "login":
			err = needArgs(args, 2, func() error {
				state, serr := orch.LogIn(ctx, args[0], args[1])
				printf("-> %s", state)
				return serr
			})
		case "list":
			for _, p := range wl.Items() {
				printf("%s\t%.2f -> %.2f\tactive=%v\t%s", p.ID, p.CurrentPrice, p.TargetPrice, p.Active, p.URL)
			}
		case "refresh":
			_, err = wl.Refresh(ctx)
		case "add":
			err = needArgs(args, 1, func() error {
				var target float64
				if len(args) > 1 {
					t, perr := strconv.ParseFloat(args[1], 64)
					if perr != nil {
						return fmt.Errorf("bad target price: %w", perr)
					}
					target = t
				}

				p, aerr := wl.Add(ctx, args[0], target)
				if aerr != nil {
					return aerr
				}

				printf("tracking %s", p.ID)
				return nil
			})
		case "rm":
			err = needArgs(args, 1, func() error { return wl.Remove(ctx, args[0]) })
		case "pause":
			err = needArgs(args, 1, func() error { return wl.SetActive(ctx, args[0], false) })
		case "resume":
			err = needArgs(args, 1, func() error { return wl.SetActive(ctx, args[0], true) })
		case "target":
			err = needArgs(args, 2, func() error {
				price, perr := strconv.ParseFloat(args[1], 64)
				if perr != nil {
					return fmt.Errorf("bad price: %w", perr)
				}
				return wl.SetTargetPrice(ctx, args[0], price)
			})
		case "profile":
			acc, perr := gw.Profile(ctx)
			if perr != nil {
				err = perr
				break
			}
			printf("%s\temail=%q tg=%q plan=%s %d/%d", acc.ID, acc.Email, acc.TelegramUsername, acc.Plan, acc.CurrentCount, acc.MaxProducts)
		case "notifications":
			items, nerr := gw.ListNotifications(ctx)
			if nerr != nil {
				err = nerr
				break
			}
			for _, n := range items {
				printf("%s\t%s\t%s", n.ID, n.CreatedAt.Format("2006-01-02 15:04"), n.Message)
			}
		case "passwd":
			err = needArgs(args, 2, func() error { return gw.ChangePassword(ctx, args[0], args[1]) })
		case "logout":
			err = orch.Logout()
		default:
			printf("unknown command %q; help выведет список", cmd)
		}

		if err != nil {
			printf("error: %v", err)
		}
	}
}

func needArgs(args []string, n int, fn func() error) error {
	if len(args) < n {
		return fmt.Errorf("expected at least %d argument(s)", n)
	}

	return fn()
}

// setupLogger настраивает slog по окружению.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		)
	default:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}),
		)
	}

	return log
}
