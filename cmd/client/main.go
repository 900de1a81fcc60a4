// Command client is the terminal front end of the shared calendar. It owns
// no business rules: it collects text from the human, renders event lists,
// and drives the mutation orchestrator.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/junhot777-lab/cyber-calender/internal/clientconfig"
	"github.com/junhot777-lab/cyber-calender/internal/confirm"
	"github.com/junhot777-lab/cyber-calender/internal/directory"
	"github.com/junhot777-lab/cyber-calender/internal/gateway"
	"github.com/junhot777-lab/cyber-calender/internal/orchestrator"
	"github.com/junhot777-lab/cyber-calender/internal/session"
)

type tokenFunc func() string

func (f tokenFunc) Token() string { return f() }

type app struct {
	gw       *gateway.Client
	dir      *directory.Directory
	sessions *session.Manager
	desk     *confirm.Desk
	orch     *orchestrator.Orchestrator

	in     *bufio.Reader
	events []gateway.Event
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	cfg, err := clientconfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	a := &app{
		desk: confirm.NewDesk(),
		in:   bufio.NewReader(os.Stdin),
	}

	a.gw = gateway.New(cfg.ServerURL,
		tokenFunc(func() string {
			if a.sessions == nil {
				return ""
			}
			return a.sessions.Token()
		}),
		gateway.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}))

	ctx := context.Background()
	a.dir, err = directory.Load(ctx, a.gw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot reach the calendar server:", err)
		os.Exit(1)
	}

	a.sessions = session.NewManager(a.gw, a.dir)
	a.orch = orchestrator.New(a.gw, a.sessions, a.desk, func(evs []gateway.Event) {
		a.events = evs
		a.printEvents()
	})

	// Default window: the current month.
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	a.orch.SetWindow(start, start.AddDate(0, 1, 0))

	fmt.Println("shared calendar — type 'help' for commands")
	a.repl(ctx)
}

func (a *app) repl(ctx context.Context) {
	for {
		fmt.Print(a.promptLabel())
		line, err := a.in.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "help":
			a.printHelp()
		case "users":
			for _, u := range a.dir.All() {
				fmt.Printf("  %-4s %s (%s)\n", u.ID, u.Name, u.Color)
			}
		case "login":
			a.cmdLogin(ctx, fields[1:])
		case "logout":
			a.sessions.Logout()
			fmt.Println("logged out")
		case "whoami":
			if cur, ok := a.sessions.Current(); ok {
				fmt.Printf("%s (%s)\n", cur.Name, cur.UserID)
			} else {
				fmt.Println("not logged in")
			}
		case "list":
			a.cmdList(ctx, fields[1:])
		case "add":
			a.cmdAdd(ctx)
		case "edit":
			a.cmdEdit(ctx, fields[1:])
		case "rm":
			a.cmdDelete(ctx, fields[1:])
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command, try 'help'")
		}
	}
}

func (a *app) printHelp() {
	fmt.Println(`  users                 show the roster
  login <id>            log in as a user
  logout                end the session
  whoami                show the active session
  list <from> <to>      list events in [from, to), dates as YYYY-MM-DD
  add                   add an event (interactive)
  edit <n>              edit event n from the last list
  rm <n>                delete event n from the last list
  quit                  leave`)
}

func (a *app) promptLabel() string {
	if cur, ok := a.sessions.Current(); ok {
		return cur.UserID + "> "
	}
	return "> "
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("usage: login <id>")
		return
	}
	passcode := a.readLine("passcode: ")

	s, err := a.sessions.Login(ctx, args[0], passcode)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("hello, %s\n", s.Name)
}

func (a *app) cmdList(ctx context.Context, args []string) {
	if len(args) == 2 {
		from, err1 := time.ParseInLocation("2006-01-02", args[0], time.Local)
		to, err2 := time.ParseInLocation("2006-01-02", args[1], time.Local)
		if err1 != nil || err2 != nil {
			fmt.Println("usage: list <from> <to> (YYYY-MM-DD)")
			return
		}
		a.orch.SetWindow(from, to)
	}
	if err := a.orch.Refresh(ctx); err != nil {
		fmt.Println("could not fetch events:", err)
	}
}

func (a *app) cmdAdd(ctx context.Context) {
	if _, ok := a.sessions.Current(); !ok {
		fmt.Println("log in first")
		return
	}

	title := a.readLine("title: ")
	day := a.readLine("date (YYYY-MM-DD): ")
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(day), time.Local)
	if err != nil {
		fmt.Println("bad date")
		return
	}

	allDay := strings.EqualFold(strings.TrimSpace(a.readLine("all day? (y/N): ")), "y")
	start, end := date, date.AddDate(0, 0, 1)
	if !allDay {
		var ok bool
		start, ok = a.readClock(date, "start (HH:MM): ")
		if !ok {
			return
		}
		end, ok = a.readClock(date, "end (HH:MM): ")
		if !ok {
			return
		}
	}

	res := a.runWithConfirm(func() orchestrator.Result {
		return a.orch.Create(ctx, title, start, end, allDay)
	})
	a.report(res, "added")
}

func (a *app) cmdEdit(ctx context.Context, args []string) {
	ev, ok := a.pickEvent(args)
	if !ok {
		return
	}
	title := a.readLine(fmt.Sprintf("new title (enter keeps %q): ", ev.Title))

	res := a.runWithConfirm(func() orchestrator.Result {
		return a.orch.Edit(ctx, ev, title)
	})
	a.report(res, "updated")
}

func (a *app) cmdDelete(ctx context.Context, args []string) {
	ev, ok := a.pickEvent(args)
	if !ok {
		return
	}

	res := a.runWithConfirm(func() orchestrator.Result {
		return a.orch.Delete(ctx, ev)
	})
	a.report(res, "deleted")
}

// runWithConfirm starts a mutation flow and services the confirmation prompt
// it raises, if any.
func (a *app) runWithConfirm(fn func() orchestrator.Result) orchestrator.Result {
	resCh := make(chan orchestrator.Result, 1)
	go func() { resCh <- fn() }()

	for {
		select {
		case p := <-a.desk.Requests():
			fmt.Println(p.Title)
			if p.Footer != "" {
				fmt.Println(p.Footer)
			}
			passcode := a.readLine("passcode ('/cancel' to abort): ")
			if strings.TrimSpace(passcode) == "/cancel" {
				a.desk.Cancel()
				continue
			}
			note := ""
			if p.NeedsNote {
				note = a.readLine("note (optional): ")
			}
			a.desk.Submit(passcode, note)
		case res := <-resCh:
			return res
		}
	}
}

func (a *app) report(res orchestrator.Result, verb string) {
	switch {
	case res.State == orchestrator.StateDone:
		fmt.Println(verb)
	case res.Silent():
		// Cancelled or discarded: say nothing, per the protocol.
	default:
		fmt.Println(res.Message)
	}
}

func (a *app) pickEvent(args []string) (gateway.Event, bool) {
	if len(args) != 1 {
		fmt.Println("usage: edit|rm <n> (run 'list' first)")
		return gateway.Event{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(a.events) {
		fmt.Println("no such event in the last list")
		return gateway.Event{}, false
	}
	return a.events[n-1], true
}

func (a *app) printEvents() {
	if len(a.events) == 0 {
		fmt.Println("  (no events)")
		return
	}
	for i, ev := range a.events {
		when := ev.StartAt.Local().Format("2006-01-02 15:04")
		if ev.AllDay {
			when = ev.StartAt.Local().Format("2006-01-02") + " (all day)"
		}
		line := fmt.Sprintf("  %2d. %s  %s — %s", i+1, when, ev.Title, ev.OwnerName)
		if ev.Note != "" {
			line += "  · " + ev.Note
		}
		fmt.Println(line)
	}
}

func (a *app) readLine(prompt string) string {
	fmt.Print(prompt)
	line, _ := a.in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func (a *app) readClock(day time.Time, prompt string) (time.Time, bool) {
	raw := strings.TrimSpace(a.readLine(prompt))
	clock, err := time.Parse("15:04", raw)
	if err != nil {
		fmt.Println("bad time")
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, time.Local), true
}
