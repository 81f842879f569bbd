package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/tongthuyhang/manabie-auto-testing/internal/models"
)

func cdpTimeSinceEpoch(epochSeconds int64) cdp.TimeSinceEpoch {
	return cdp.TimeSinceEpoch(time.Unix(epochSeconds, 0))
}

// ExportStorageSnapshot captures the cookies and current-origin localStorage
// of the authenticated session.
func (d *Driver) ExportStorageSnapshot(ctx context.Context) (*models.StorageState, error) {
	state := &models.StorageState{
		Cookies: []models.Cookie{},
		Origins: []models.Origin{},
	}

	err := chromedp.Run(d.session.Context(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return fmt.Errorf("failed to read cookies: %w", err)
			}
			for _, c := range cookies {
				expires := int64(-1)
				if c.Expires > 0 {
					expires = int64(c.Expires)
				}
				state.Cookies = append(state.Cookies, models.Cookie{
					Name:     c.Name,
					Value:    c.Value,
					Domain:   c.Domain,
					Path:     c.Path,
					Expires:  expires,
					Secure:   c.Secure,
					HTTPOnly: c.HTTPOnly,
					SameSite: string(c.SameSite),
				})
			}
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	origin, entries, err := d.exportLocalStorage()
	if err != nil {
		return nil, err
	}
	if origin != "" {
		state.Origins = append(state.Origins, models.Origin{
			Origin:       origin,
			LocalStorage: entries,
		})
	}

	d.logger.Debug().
		Int("cookies", len(state.Cookies)).
		Int("origins", len(state.Origins)).
		Msg("Storage snapshot exported")

	return state, nil
}

// exportLocalStorage reads every localStorage key of the current origin.
func (d *Driver) exportLocalStorage() (string, []models.LocalStorageEntry, error) {
	var origin string
	var raw map[string]string

	err := chromedp.Run(d.session.Context(),
		chromedp.Evaluate(`window.location.origin`, &origin),
		chromedp.Evaluate(`
			(() => {
				const out = {};
				for (let i = 0; i < localStorage.length; i++) {
					const key = localStorage.key(i);
					out[key] = localStorage.getItem(key);
				}
				return out;
			})()
		`, &raw),
	)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read localStorage: %w", err)
	}

	entries := make([]models.LocalStorageEntry, 0, len(raw))
	for k, v := range raw {
		entries = append(entries, models.LocalStorageEntry{Name: k, Value: v})
	}
	return origin, entries, nil
}

// SeedStorageState installs a previously captured snapshot into the session
// so tests start authenticated: cookies first, then localStorage per origin
// after navigating there.
func SeedStorageState(session *Session, state *models.StorageState) error {
	err := chromedp.Run(session.Context(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range state.Cookies {
				p := network.SetCookie(c.Name, c.Value).
					WithDomain(c.Domain).
					WithPath(c.Path).
					WithSecure(c.Secure).
					WithHTTPOnly(c.HTTPOnly)
				if c.Expires > 0 {
					expires := cdpTimeSinceEpoch(c.Expires)
					p = p.WithExpires(&expires)
				}
				if err := p.Do(ctx); err != nil {
					return fmt.Errorf("failed to set cookie %s: %w", c.Name, err)
				}
			}
			return nil
		}),
	)
	if err != nil {
		return err
	}

	for _, origin := range state.Origins {
		if err := seedLocalStorage(session, origin); err != nil {
			return err
		}
	}
	return nil
}

func seedLocalStorage(session *Session, origin models.Origin) error {
	if len(origin.LocalStorage) == 0 {
		return nil
	}

	actions := []chromedp.Action{chromedp.Navigate(origin.Origin)}
	for _, entry := range origin.LocalStorage {
		actions = append(actions, chromedp.Evaluate(
			fmt.Sprintf(`localStorage.setItem(%q, %q)`, entry.Name, entry.Value), nil,
		))
	}

	if err := chromedp.Run(session.Context(), actions...); err != nil {
		return fmt.Errorf("failed to seed localStorage for %s: %w", origin.Origin, err)
	}
	return nil
}
