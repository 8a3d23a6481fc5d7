package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/prismvale/checkersd/internal/adapter/matchpresenter"
	"github.com/prismvale/checkersd/internal/checkers"
	appcfg "github.com/prismvale/checkersd/internal/config"
	"github.com/prismvale/checkersd/internal/msgcat"
	"github.com/prismvale/checkersd/internal/obslog"
	"github.com/prismvale/checkersd/internal/service/match"
	"github.com/prismvale/checkersd/pkg/checkersdto"
)

func main() {
	redName := flag.String("red", "Red", "display name for the red player")
	blackName := flag.String("black", "Black", "display name for the black player")
	room := flag.String("room", "local", "room label used for hashing and history")
	flag.Parse()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer logger.Sync()

	if cfg.RedisURL == "" {
		log.Fatalf("REDIS_URL is required for the session store")
	}
	store, err := match.NewStoreFromURL(cfg.RedisURL, time.Duration(cfg.SessionTTLSec)*time.Second)
	if err != nil {
		log.Fatalf("session store init error: %v", err)
	}
	defer store.Close()

	var repo match.Repository
	if cfg.DatabaseURL != "" {
		repo, err = match.NewRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("repository init error: %v", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, recording matches in memory only")
		repo = match.NewMemoryRepository()
	}

	svc, err := match.NewService(store, repo, match.NewSVGBoardRenderer(), match.Config{
		StartingSide:   checkers.Side(cfg.StartingSide),
		SessionTTL:     time.Duration(cfg.SessionTTLSec) * time.Second,
		HistoryLimit:   cfg.HistoryLimit,
		MaxOpenMatches: cfg.MaxOpenMatches,
	}, logger)
	if err != nil {
		log.Fatalf("service init error: %v", err)
	}

	cat, err := msgcat.New(cfg.MessageDir)
	if err != nil {
		log.Fatalf("message catalog error: %v", err)
	}
	formatter := matchpresenter.NewFormatter(cat)
	presenter := matchpresenter.NewPresenter(
		func(_, message string) error {
			fmt.Println(message)
			return nil
		},
		func(_ string, png []byte) error {
			if cfg.BoardOut == "" {
				return nil
			}
			return os.WriteFile(cfg.BoardOut, png, 0o644)
		},
	)

	meta := match.SessionMeta{
		SessionID: "cli:" + strings.ToLower(strings.TrimSpace(*room)),
		Room:      *room,
		RedName:   *redName,
		BlackName: *blackName,
	}

	repl(svc, formatter, presenter, meta)
}

func repl(svc *match.Service, formatter *matchpresenter.Formatter, presenter *matchpresenter.Presenter, meta match.SessionMeta) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)

	fmt.Println("checkersd: type 'help' for commands")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(strings.ToLower(scanner.Text()))
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return
		case "help":
			printHelp()
		case "start":
			state, err := svc.Start(ctx, meta)
			resumed := errors.Is(err, match.ErrSessionInProgress)
			if err != nil && !resumed {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Start(state, resumed), state)
			fmt.Print(state.BoardText)
		case "status", "board":
			state, err := svc.Status(ctx, meta)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Status(state), state)
			fmt.Print(state.BoardText)
		case "select":
			sq, ok := parseSquare(fields[1:])
			if !ok {
				fmt.Println("usage: select <row> <col>")
				continue
			}
			state, err := svc.Select(ctx, meta, sq)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Selected(state), state)
		case "move":
			sq, ok := parseSquare(fields[1:])
			if !ok {
				fmt.Println("usage: move <row> <col>")
				continue
			}
			result, err := svc.Play(ctx, meta, sq)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			method := ""
			if result.GameOver {
				if rec, recErr := svc.Match(ctx, result.MatchID); recErr == nil {
					method = rec.ResultMethod
				}
			}
			deliver(presenter, meta.Room, formatter.Move(result, method), result.State)
			fmt.Print(result.State.BoardText)
		case "hint":
			hints, err := svc.Hint(ctx, meta)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Hint(hints), nil)
		case "resign":
			if len(fields) < 2 {
				fmt.Println("usage: resign red|black")
				continue
			}
			side := checkers.Side(fields[1])
			result, err := svc.Resign(ctx, meta, side)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Resign(result, string(side)), nil)
		case "reset":
			state, err := svc.Reset(ctx, meta)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Reset(state), state)
			fmt.Print(state.BoardText)
		case "profile":
			if len(fields) < 2 {
				fmt.Println("usage: profile <name>")
				continue
			}
			profile, err := svc.Profile(ctx, meta, fields[1])
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.Profile(profile), nil)
		case "history":
			limit := 0
			if len(fields) >= 3 {
				limit, _ = strconv.Atoi(fields[2])
			}
			name := meta.RedName
			if len(fields) >= 2 {
				name = fields[1]
			}
			records, err := svc.History(ctx, meta, name, limit)
			if err != nil {
				fmt.Println(formatter.Reject(err))
				continue
			}
			deliver(presenter, meta.Room, formatter.History(records), nil)
		default:
			fmt.Printf("unknown command %q, type 'help'\n", fields[0])
		}
	}
}

func deliver(presenter *matchpresenter.Presenter, room, message string, state *checkersdto.SessionState) {
	var err error
	if state == nil {
		err = presenter.Text(room, message)
	} else {
		err = presenter.Board(room, message, state)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "deliver: %v\n", err)
	}
}

func parseSquare(args []string) (checkersdto.SquareRef, bool) {
	if len(args) < 2 {
		return checkersdto.SquareRef{}, false
	}
	row, err1 := strconv.Atoi(args[0])
	col, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return checkersdto.SquareRef{}, false
	}
	return checkersdto.SquareRef{Row: row, Col: col}, true
}

func printHelp() {
	fmt.Println(`commands:
  start              begin (or resume) a match
  status | board     show the current position
  select <row> <col> pick the piece to move
  move <row> <col>   move the selected piece
  hint               list movable pieces
  resign red|black   concede the match
  reset              restart from the initial position
  profile <name>     per-player statistics
  history [name] [n] recent finished matches
  quit               exit`)
}
