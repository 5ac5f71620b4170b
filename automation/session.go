package automation

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Session is one provider-scoped browser tab. Callers reach it through
// Puppet.Session so contexts are reused rather than relaunched.
type Session struct {
	provider Provider
	bctx     playwright.BrowserContext
	page     playwright.Page
}

// Provider returns the provider this session belongs to.
func (s *Session) Provider() Provider { return s.provider }

// Navigate loads the given URL and waits for the load event.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("navigate: empty URL")
	}
	if _, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// CurrentURL reports the page's current address.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	u := s.page.URL()
	if u == "" {
		return "", fmt.Errorf("page has no URL yet")
	}
	return u, nil
}

// Title reports the current document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	title, err := s.page.Title()
	if err != nil {
		return "", fmt.Errorf("failed to read title: %w", err)
	}
	return title, nil
}
