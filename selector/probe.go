package selector

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// ProbeConfig configures a LiveProbe.
type ProbeConfig struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local headless Chrome via launcher.
	RemoteURL string

	Logger *slog.Logger
}

func (c *ProbeConfig) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// LiveProbe counts selector matches on a live page driven by Rod. It is the
// high-fidelity MatchCounter: the snapshot counter only sees captured HTML,
// the probe sees the rendered DOM including script-built elements.
//
// One probe owns one page. Not safe for concurrent Count calls.
type LiveProbe struct {
	cfg     ProbeConfig
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	page    *rod.Page
}

// NewLiveProbe launches (or connects to) Chrome and opens the given URL
// with stealth applied. Callers must Close the probe.
func NewLiveProbe(ctx context.Context, pageURL string, cfg ProbeConfig) (*LiveProbe, error) {
	cfg.defaults()
	p := &LiveProbe{cfg: cfg}

	var wsURL string
	if cfg.RemoteURL != "" {
		wsURL = cfg.RemoteURL
	} else {
		l := launcher.New().Headless(true).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("selector: launch chrome: %w", err)
		}
		wsURL = u
		p.lnch = l
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("selector: connect chrome: %w", err)
	}
	p.browser = b

	page, err := stealth.Page(b)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("selector: stealth page: %w", err)
	}
	if err := page.Navigate(pageURL); err != nil {
		p.Close()
		return nil, fmt.Errorf("selector: navigate %s: %w", pageURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		cfg.Logger.Warn("selector: wait load", "url", pageURL, "error", err)
	}
	p.page = page

	return p, nil
}

// Count implements MatchCounter against the live DOM.
func (p *LiveProbe) Count(ctx context.Context, sel string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.page == nil {
		return 0, fmt.Errorf("selector: probe closed")
	}

	page := p.page.Context(ctx)
	if isXPath(sel) {
		els, err := page.ElementsX(sel)
		if err != nil {
			return 0, fmt.Errorf("selector: xpath %q: %w", sel, err)
		}
		return len(els), nil
	}
	els, err := page.Elements(sel)
	if err != nil {
		return 0, fmt.Errorf("selector: query %q: %w", sel, err)
	}
	return len(els), nil
}

// Close shuts down the page and, when locally launched, Chrome itself.
func (p *LiveProbe) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.page != nil {
		if err := p.page.Close(); err != nil {
			p.cfg.Logger.Debug("selector: close page", "error", err)
		}
		p.page = nil
	}
	if p.browser != nil {
		if err := p.browser.Close(); err != nil {
			p.cfg.Logger.Debug("selector: close browser", "error", err)
		}
		p.browser = nil
	}
	if p.lnch != nil {
		p.lnch.Cleanup()
		p.lnch = nil
	}
}
