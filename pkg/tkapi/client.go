package tkapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"beleidsgraaf/pkg/logger"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public Tweede Kamer open data endpoint.
const DefaultBaseURL = "https://gegevensmagazijn.tweedekamer.nl/OData/v4/2.0"

// submitterRelation is the ZaakActor relation marking a submitter.
const submitterRelation = "Indiener"

// Client fetches Zaak entities of one soort from the Tweede Kamer
// OData API. Responses are cached by request URL and requests are rate
// limited, so repeated polling cycles stay polite toward the source.
// Both the cache and the limiter are owned by the client instance;
// there is no package-level state.
type Client struct {
	baseURL string
	soort   string

	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	cacheTTL   time.Duration
}

// ClientParams configures a Client.
type ClientParams struct {
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Soort filters the Zaak entity set, e.g. "Motie" or
	// "Schriftelijke vragen".
	Soort string
	// Timeout bounds each HTTP request. Defaults to 30s.
	Timeout time.Duration
	// RequestsPerSecond throttles requests. Defaults to 2.
	RequestsPerSecond float64
	Burst             int
	// CacheTTL controls how long identical requests are served from
	// cache. Defaults to 5 minutes.
	CacheTTL time.Duration
}

// NewClient creates a source client for one Zaak soort.
func NewClient(params ClientParams) *Client {
	baseURL := params.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	rps := params.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := params.Burst
	if burst <= 0 {
		burst = 5
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	return &Client{
		baseURL:    baseURL,
		soort:      params.Soort,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		cache:      gocache.New(ttl, 2*ttl),
		cacheTTL:   ttl,
	}
}

// Soort returns the Zaak soort this client is configured for.
func (c *Client) Soort() string {
	return c.soort
}

// FetchItems returns up to limit items, optionally changed since the
// given timestamp. It is safe to call repeatedly: the caller's
// zaak_id idempotency gate makes duplicate deliveries harmless.
func (c *Client) FetchItems(ctx context.Context, since *time.Time, limit int) ([]FetchedItem, error) {
	if limit <= 0 {
		limit = 100
	}

	reqURL := c.buildURL(since, limit)

	if cached, found := c.cache.Get(reqURL); found {
		logger.Debug("[TKAPI] Cache hit", "soort", c.soort, "url", reqURL)
		return decodeItems(cached.([]byte))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", c.soort, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", c.soort, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: read body: %w", c.soort, err)
	}

	c.cache.Set(reqURL, body, c.cacheTTL)

	return decodeItems(body)
}

func (c *Client) buildURL(since *time.Time, limit int) string {
	filter := fmt.Sprintf("Soort eq '%s' and Verwijderd eq false", c.soort)
	if since != nil {
		filter += fmt.Sprintf(" and GewijzigdOp gt %s", since.UTC().Format(time.RFC3339))
	}

	q := url.Values{}
	q.Set("$filter", filter)
	q.Set("$top", fmt.Sprintf("%d", limit))
	q.Set("$expand", "ZaakActor")
	q.Set("$orderby", "GewijzigdOp")

	return c.baseURL + "/Zaak?" + q.Encode()
}

func decodeItems(body []byte) ([]FetchedItem, error) {
	var parsed odataResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode odata response: %w", err)
	}

	items := make([]FetchedItem, 0, len(parsed.Value))
	for _, zaak := range parsed.Value {
		items = append(items, normalizeZaak(zaak))
	}
	return items, nil
}

func normalizeZaak(zaak odataZaak) FetchedItem {
	submitters := make([]string, 0, len(zaak.Actors))
	for _, actor := range zaak.Actors {
		if actor.Relatie != submitterRelation || actor.Naam == "" {
			continue
		}
		submitters = append(submitters, actor.Naam)
	}

	extra := map[string]string{}
	if zaak.Soort != "" {
		extra["soort"] = zaak.Soort
	}
	if zaak.Kabinetsappreciatie != "" {
		extra["kabinetsappreciatie"] = zaak.Kabinetsappreciatie
	}

	return FetchedItem{
		ZaakID:      zaak.ID,
		ZaakNummer:  zaak.Nummer,
		Title:       zaak.Titel,
		Subject:     zaak.Onderwerp,
		Date:        zaak.GestartOp,
		Deadline:    zaak.Termijn,
		Ministry:    zaak.Organisatie,
		Submitters:  submitters,
		DocumentURL: documentURL(zaak.Nummer),
		ExtraData:   extra,
	}
}

func documentURL(nummer string) string {
	if nummer == "" {
		return ""
	}
	return "https://zoek.officielebekendmakingen.nl/zoeken/resultaat?zkt=Uitgebreid&q=" + url.QueryEscape(nummer)
}
