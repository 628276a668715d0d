package main

import (
	"context"

	"github.com/jmylchreest/deskshell/internal/markup"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// desktop is a running shell with its clock and page watcher.
type desktop struct {
	shell      *shell.Shell
	dispatcher *shell.Dispatcher
	clock      *shell.Clock
	watcher    *markup.Watcher
}

// desktopOptions configures startDesktop.
type desktopOptions struct {
	clock  bool // run the taskbar clock
	popups bool // show popups at startup
}

// shellOptions maps the configuration onto shell options.
func shellOptions() shell.Options {
	return shell.Options{
		GalleryPrefix: cfg.Markup.GalleryPrefix,
		PopupDelay:    cfg.Popups.Delay.Duration(),
		ClockLayout:   cfg.Clock.Layout,
		BaseZ:         cfg.Stack.BaseZ,
		Logger:        logger,
	}
}

// startDesktop builds a shell for the loaded page.
func startDesktop(ctx context.Context, opts desktopOptions) *desktop {
	s := shell.New(page.Layout(), shellOptions())
	d := &desktop{
		shell:      s,
		dispatcher: shell.NewDispatcher(s, logger),
	}

	if opts.clock && page.Layout().HasClock {
		d.clock = shell.NewClock(s, cfg.Clock.Interval.Duration(), logger)
		if err := d.clock.Start(ctx); err != nil {
			logger.Warn("failed to start clock", "error", err)
		}
	}

	if opts.popups {
		if n := s.ShowPopups(); n > 0 {
			logger.Debug("startup popups shown", "count", n)
		}
	}

	return d
}

// watchPage reloads the shell layout when the page file changes. onReload
// is called after the shell picked up the new page.
func (d *desktop) watchPage(ctx context.Context, onReload markup.ReloadFunc) {
	if !cfg.Markup.Watch || cfg.Markup.Page == "" {
		return
	}
	w, err := markup.NewWatcher(cfg.Markup.Page, cfg.Markup, cfg.PopupIDs(), func(p *markup.Page) {
		d.shell.Reload(p.Layout())
		if onReload != nil {
			onReload(p)
		}
	}, logger)
	if err != nil {
		logger.Warn("failed to create page watcher", "error", err)
		return
	}
	if err := w.Start(ctx); err != nil {
		logger.Warn("failed to start page watcher", "path", cfg.Markup.Page, "error", err)
		return
	}
	d.watcher = w
}

// Close stops the watcher and clock and releases the shell.
func (d *desktop) Close() {
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			logger.Warn("failed to stop page watcher", "error", err)
		}
	}
	if d.clock != nil {
		d.clock.Stop()
	}
	_ = d.shell.Close()
}
