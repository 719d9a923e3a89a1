package livescore

import (
	"fmt"
	"matchcast-backend/lib/restyutil"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseUrl     = "https://www.livescore.bz"
	DefaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultFeedTimeout = time.Second * 20
)

// Paths are the feed endpoints relative to the base url, every path except
// Fixtures takes the match id as its single `%s` verb.
type Paths struct {
	Fixtures    string `json:"fixtures"`
	Event       string `json:"event"`
	LastMatches string `json:"last_matches"`
	HeadToHead  string `json:"head_to_head"`
	Standings   string `json:"standings"`
}

var DefaultPaths = Paths{
	Fixtures:    "/en/",
	Event:       "/en/football/event/%s/",
	LastMatches: "/last_matches_2018.cache?id=%s&filter=overall&team=all&lang=en",
	HeadToHead:  "/h2h_2018.cache?id=%s&filter=overall&team=all&lang=en",
	Standings:   "/standings_2020.cache?lang=en&id=%s&filter=",
}

func (p Paths) withDefaults() Paths {
	if p.Fixtures == "" {
		p.Fixtures = DefaultPaths.Fixtures
	}
	if p.Event == "" {
		p.Event = DefaultPaths.Event
	}
	if p.LastMatches == "" {
		p.LastMatches = DefaultPaths.LastMatches
	}
	if p.HeadToHead == "" {
		p.HeadToHead = DefaultPaths.HeadToHead
	}
	if p.Standings == "" {
		p.Standings = DefaultPaths.Standings
	}
	return p
}

type ClientOptions struct {
	BaseUrl   string
	UserAgent string
	// bounds every individual feed request, defaults to DefaultFeedTimeout
	FeedTimeout time.Duration
	// 0 disables client side rate limiting
	RequestsPerSecond float64
	Paths             Paths
	// when set, full http messages are dumped here at debug level
	InstrumentOutput restyutil.InstrumentOutput
}

// Client holds one http session (connection pool, cookies, headers)
// shared by every feed request of a batch. It is safe for concurrent use.
type Client struct {
	BaseUrl     *url.URL
	Http        *resty.Client
	transport   *http.Transport
	paths       Paths
	feedTimeout time.Duration
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	opts.BaseUrl = strings.TrimRight(opts.BaseUrl, "/")
	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if baseUrl.Scheme == "" || baseUrl.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", opts.BaseUrl)
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.FeedTimeout <= 0 {
		opts.FeedTimeout = DefaultFeedTimeout
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	transport, err := client.Transport()
	if err != nil {
		return nil, err
	}
	client.SetTransport(cloudflarebp.AddCloudFlareByPass(transport))

	client.SetHeaders(map[string]string{
		"user-agent":      opts.UserAgent,
		"accept-language": "en-US,en;q=0.9",
	})
	client.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseUrl.Hostname()))
	// the per-feed context deadline is the real bound, this only catches
	// requests made without one
	client.SetTimeout(opts.FeedTimeout * 2)

	restyutil.Instrument(client, tracer, opts.InstrumentOutput)

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return &Client{
		BaseUrl:     baseUrl,
		Http:        client,
		transport:   transport,
		paths:       opts.Paths.withDefaults(),
		feedTimeout: opts.FeedTimeout,
	}, nil
}

// Close releases pooled connections, the client must not be used afterwards.
func (c *Client) Close() {
	c.transport.CloseIdleConnections()
}

func (c *Client) endpoint(format, matchId string) string {
	return fmt.Sprintf(format, url.QueryEscape(matchId))
}
