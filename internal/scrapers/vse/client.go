// client.go contains the transport plumbing shared by every scraping method, each method
// lives in its own file.

package vse

import (
	"bytes"
	"fmt"
	"net/url"
	"time"
	"vse-client/internal/components/assert"
	"vse-client/internal/components/telemetry"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	report_client_authenticate = "client.authenticate"
	report_client_holdings     = "client.holdings"
	report_client_transactions = "client.transactions"
	report_client_search       = "client.search"
	report_client_portfolio    = "client.portfolio"
	report_client_submit_order = "client.submit-order"
)

const (
	DefaultBaseUrl       = "http://www.marketwatch.com"
	DefaultSecureBaseUrl = "https://secure.marketwatch.com"
	DefaultLandingPath   = "/my"

	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

type ClientOptions struct {
	// BaseUrl is where the game pages live, defaults to DefaultBaseUrl.
	BaseUrl string
	// SecureBaseUrl is where the login endpoint lives, defaults to DefaultSecureBaseUrl.
	SecureBaseUrl string
	// LandingPath is the path a logged in user is redirected to by the login status page.
	LandingPath string
	// RequestsPerSecond caps the request rate of all sessions created by the client, defaults to 2.
	RequestsPerSecond float64
	// Timeout is the timeout of a single request, defaults to 30 seconds.
	Timeout time.Duration
	// CloudflareBypass wraps the transport so that requests look like they come from a browser.
	CloudflareBypass bool
	// Dump, if set, receives the full text of every exchange with the site.
	Dump telemetry.MessageOutput
}

// Client scrapes the virtual stock exchange game. It holds no session state, every method
// takes the Credential to act with and opens its own session.
type Client struct {
	baseUrl       *url.URL
	secureBaseUrl *url.URL
	landingPath   string
	timeout       time.Duration
	bypass        bool
	limiter       *rate.Limiter
	dump          telemetry.MessageOutput

	tel telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel)

	tel = telemetry.NewScopedAPI("vse_scraper", tel)

	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.SecureBaseUrl == "" {
		opts.SecureBaseUrl = DefaultSecureBaseUrl
	}
	if opts.LandingPath == "" {
		opts.LandingPath = DefaultLandingPath
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Second * 30
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	secureBaseUrl, err := url.Parse(opts.SecureBaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse secure base url: %w", err)
	}

	return &Client{
		baseUrl:       baseUrl,
		secureBaseUrl: secureBaseUrl,
		landingPath:   opts.LandingPath,
		timeout:       opts.Timeout,
		bypass:        opts.CloudflareBypass,
		// max burst >= 2 just means that no requests will be dropped
		limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 2),
		dump:    opts.Dump,
		tel:     tel,
	}, nil
}

// session creates an independent transport session whose cookie jar starts out as a copy
// of the credential.
func (c *Client) session(cred Credential) (*resty.Client, error) {
	jar, err := cred.jar(c.baseUrl, c.secureBaseUrl)
	if err != nil {
		return nil, err
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(c.baseUrl.String())
	httpClient.SetCookieJar(jar)
	if c.bypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	httpClient.SetHeader("user-agent", defaultUserAgent)
	httpClient.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(10),
		resty.DomainCheckRedirectPolicy(c.baseUrl.Hostname(), c.secureBaseUrl.Hostname()),
	)
	httpClient.SetTimeout(c.timeout)

	httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		return c.limiter.Wait(req.Context())
	})

	telemetry.InstrumentResty(httpClient, c.tel, c.dump)

	return httpClient, nil
}

// parseDocument checks that a page answered successfully and parses its body as the literal page text.
func parseDocument(res *resty.Response) (*goquery.Document, error) {
	if res.IsError() {
		return nil, newStatusError(res)
	}
	return goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
}

func newStatusError(res *resty.Response) *StatusError {
	return &StatusError{
		Method: res.Request.Method,
		Url:    res.Request.URL,
		Status: res.StatusCode(),
		Text:   res.Status(),
	}
}

func requireGame(game string) error {
	if game == "" {
		return fmt.Errorf("%w: empty game id", ErrInvalidArgument)
	}
	return nil
}

// finalUrl returns the url of the last request made after following redirects.
func finalUrl(res *resty.Response) *url.URL {
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		return res.RawResponse.Request.URL
	}
	parsed, err := url.Parse(res.Request.URL)
	if err != nil {
		return &url.URL{}
	}
	return parsed
}
