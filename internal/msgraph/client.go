package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

const pageSize = "100"

// Client reads calendar events from Microsoft Graph.
type Client struct {
	http    *http.Client
	baseURL string
}

// NewClient returns a client authorised with tok. Refreshed tokens are
// written to tokens.
func NewClient(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, tokens TokenFile) *Client {
	return NewClientWithHTTP(oauth2.NewClient(ctx, TokenSource(ctx, tok, cfg, tokens)), DefaultBaseURL)
}

// NewClientWithHTTP returns a client sending requests through hc to baseURL.
func NewClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{http: hc, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// TokenSource refreshes tok through cfg and saves every newly issued token
// to tokens.
func TokenSource(ctx context.Context, tok *oauth2.Token, cfg *oauth2.Config, tokens TokenFile) oauth2.TokenSource {
	return &persistingSource{src: cfg.TokenSource(ctx, tok), tokens: tokens, saved: tok}
}

type persistingSource struct {
	src    oauth2.TokenSource
	tokens TokenFile
	saved  *oauth2.Token
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		return nil, err
	}
	if p.saved == nil || tok.AccessToken != p.saved.AccessToken {
		if err := p.tokens.Save(tok); err != nil {
			log.Debug("could not save refreshed token", log.Field("error", err.Error()))
		}
		p.saved = tok
	}
	return tok, nil
}

// DateTimeZone is a Graph dateTimeTimeZone value.
type DateTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// CalendarEvent is the subset of a Graph event used for time off.
type CalendarEvent struct {
	ID          string       `json:"id"`
	Subject     string       `json:"subject"`
	IsAllDay    bool         `json:"isAllDay"`
	IsCancelled bool         `json:"isCancelled"`
	ShowAs      string       `json:"showAs"`
	Start       DateTimeZone `json:"start"`
	End         DateTimeZone `json:"end"`
}

type eventPage struct {
	Events []CalendarEvent `json:"value"`
	Next   string          `json:"@odata.nextLink"`
}

// GetCalendarView returns the events overlapping [from, to), following
// @odata.nextLink until the last page. Event times are reported in
// timezone, an IANA name, or UTC when it is empty.
func (c *Client) GetCalendarView(ctx context.Context, from, to time.Time, timezone string) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$top", pageSize)
	link := c.baseURL + "/me/calendarView?" + q.Encode()

	var events []CalendarEvent
	for pages := 0; link != ""; pages++ {
		page, err := c.getPage(ctx, link, timezone)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Events...)
		link = page.Next
		log.Debug("fetched calendar page", log.Field("page", pages), log.Field("events", len(page.Events)))
	}
	return events, nil
}

func (c *Client) getPage(ctx context.Context, link, timezone string) (eventPage, error) {
	var page eventPage
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return page, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if timezone != "" {
		req.Header.Set("Prefer", `outlook.timezone="`+timezone+`"`)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return page, fmt.Errorf("graph API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return page, fmt.Errorf("graph API error %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("decoding graph response: %w", err)
	}
	return page, nil
}
