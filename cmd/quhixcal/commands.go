package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/quhixcal/quhixcal/internal/config"
	"github.com/quhixcal/quhixcal/internal/event_bus"
	"github.com/quhixcal/quhixcal/internal/utils"
	"github.com/quhixcal/quhixcal/pkg/calendarview"
	"github.com/quhixcal/quhixcal/pkg/entry"
	"github.com/quhixcal/quhixcal/pkg/eventstore"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const monthLayout = "2006-01"

// client bundles the pieces every command works with.
type client struct {
	cfg        config.Application
	eventBus   *event_bus.EventBus
	store      *eventstore.Store
	controller *entry.Controller
	clock      utils.Clock
}

func newClient(cfg config.Application, clock utils.Clock) *client {
	eventBus := event_bus.NewEventBus()
	store := eventstore.NewStore(eventstore.NewClient(cfg.Client.BaseURL, cfg.Client.Timeout), eventBus)
	return &client{
		cfg:        cfg,
		eventBus:   eventBus,
		store:      store,
		controller: entry.NewController(store, eventBus),
		clock:      clock,
	}
}

func run(opts docopt.Opts, stdout io.Writer, stderr io.Writer) int {
	configPath, _ := opts.String("--config")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Could not read configuration: %v\n", err)
		return 1
	}
	c := newClient(cfg, utils.SystemClock{})

	if list, _ := opts.Bool("list"); list {
		return c.list(opts, stdout, stderr)
	} else if add, _ := opts.Bool("add"); add {
		return c.add(opts, stdout, stderr)
	} else if watch, _ := opts.Bool("watch"); watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return c.watch(ctx, opts, stdout, stderr)
	}
	fmt.Fprintln(stderr, usage)
	return 2
}

func (c *client) list(opts docopt.Opts, stdout io.Writer, stderr io.Writer) int {
	month, err := c.selectMonth(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	if err := c.store.LoadAll(context.Background()); err != nil {
		fmt.Fprintln(stderr, eventstore.UserMessage(err))
		return 1
	}

	view := calendarview.NewView(c.store, c.controller, c.theme(stdout), nil, nil)
	if err := view.RenderMonth(stdout, month.Year(), month.Month()); err != nil {
		log.Errorf("failed to render month: %v", err)
		return 1
	}
	return 0
}

func (c *client) add(opts docopt.Opts, stdout io.Writer, stderr io.Writer) int {
	date, _ := opts.String("--date")
	title, _ := opts.String("--title")
	recurrence, _ := opts.String("--recurrence")

	// the same path a click on the calendar takes
	if err := c.controller.SelectDate(date); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := c.controller.SetTitle(title); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := c.controller.SetRecurrence(recurrence); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := c.controller.Submit(context.Background()); err != nil {
		fmt.Fprintln(stderr, eventstore.UserMessage(err))
		return 1
	}
	fmt.Fprintf(stdout, "Added %q on %s\n", strings.TrimSpace(title), date)
	return 0
}

func (c *client) watch(ctx context.Context, opts docopt.Opts, stdout io.Writer, stderr io.Writer) int {
	month, err := c.selectMonth(opts)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	theme := c.theme(stdout)
	var view *calendarview.View
	redraw := func() {
		if theme.Color {
			fmt.Fprint(stdout, "\x1b[H\x1b[2J")
		}
		if err := view.RenderMonth(stdout, month.Year(), month.Month()); err != nil {
			log.Errorf("failed to render month: %v", err)
		}
	}
	view = calendarview.NewView(c.store, c.controller, theme, c.eventBus, redraw)
	defer view.Close()

	reload := func() {
		if err := c.store.LoadAll(ctx); err != nil {
			fmt.Fprintln(stderr, eventstore.UserMessage(err))
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(c.cfg.Client.Refresh, reload); err != nil {
		fmt.Fprintf(stderr, "Invalid refresh schedule %q: %v\n", c.cfg.Client.Refresh, err)
		return 1
	}

	reload()
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()
	return 0
}

// selectMonth reads --month and points the store at that month when --expand is set.
func (c *client) selectMonth(opts docopt.Opts) (time.Time, error) {
	month := utils.Today(c.clock)
	if value, ok := opts["--month"].(string); ok && value != "" {
		parsed, err := time.Parse(monthLayout, value)
		if err != nil {
			return time.Time{}, fmt.Errorf("month %q must be in YYYY-MM format", value)
		}
		month = parsed
	}
	if expand, _ := opts.Bool("--expand"); expand {
		c.store.SetRange(eventstore.MonthRange(month.Year(), month.Month()))
	}
	return month, nil
}

func (c *client) theme(w io.Writer) calendarview.Theme {
	if f, ok := w.(*os.File); ok {
		return calendarview.ThemeFor(f, c.cfg.UI.DarkMode)
	}
	return calendarview.Theme{DarkMode: c.cfg.UI.DarkMode}
}
