package vse

import (
	"context"
	"fmt"
	"net/url"
	"vse-client/internal/components/assert"

	"github.com/go-resty/resty/v2"
)

const (
	loginPath       = "/user/account/logon"
	loginStatusPath = "/user/login/status"
)

// Authenticate logs in with a username (email) and a plaintext password.
//
// The site answers a login with the same page whether or not it succeeded, so the outcome is
// determined by requesting the login status page afterwards: a logged in user is redirected
// to the landing page. The accumulated cookies are returned regardless of the result, an
// error is only returned when the site could not be talked to.
func (c *Client) Authenticate(ctx context.Context, username, password string) (Credential, AuthResult, error) {
	loginError := func(err error) error {
		return fmt.Errorf("vse scraper: login failed: %w", err)
	}

	if username == "" || password == "" {
		return Credential{}, AUTH_UNKNOWN, loginError(
			fmt.Errorf("%w: empty username or password", ErrInvalidArgument),
		)
	}

	httpClient, err := c.session(Credential{})
	if err != nil {
		return Credential{}, AUTH_UNKNOWN, loginError(err)
	}
	// a rejected login may be sent to a login page on any host, the landing url is what
	// tells the outcome apart
	httpClient.SetRedirectPolicy(resty.FlexibleRedirectPolicy(10))
	jar := httpClient.GetClient().Jar
	assert.NotNil(jar)
	credential := func() Credential {
		return credentialFromJar(jar, c.baseUrl, c.secureBaseUrl)
	}

	_, err = httpClient.R().
		SetContext(ctx).
		Get("/")
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("root page request: %w", err),
		)
		return credential(), AUTH_UNKNOWN, loginError(err)
	}

	loginUrl := c.secureBaseUrl.JoinPath(loginPath)
	_, err = httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"userName":  username,
			"password":  password,
			"remChk":    "on",
			"returnUrl": loginStatusPath,
			"persist":   "true",
		}).
		Post(loginUrl.String())
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("login request: %w", err),
		)
		return credential(), AUTH_UNKNOWN, loginError(err)
	}

	res, err := httpClient.R().
		SetContext(ctx).
		Get(loginStatusPath)
	if err != nil {
		c.tel.ReportBroken(
			report_client_authenticate,
			fmt.Errorf("login status request: %w", err),
		)
		return credential(), AUTH_UNKNOWN, loginError(err)
	}

	landed := finalUrl(res)
	result := c.authResult(landed, res.IsSuccess())
	switch result {
	case AUTH_AUTHENTICATED:
		c.tel.ReportInfo("login success", username)
	case AUTH_REJECTED:
		c.tel.ReportWarning(
			report_client_authenticate,
			fmt.Errorf("auth failure: landed on %s", landed.String()),
			username,
		)
	default:
		c.tel.ReportWarning(
			report_client_authenticate,
			fmt.Errorf("login status unverifiable: %s", res.Status()),
			username,
		)
	}

	return credential(), result, nil
}

func (c *Client) authResult(landed *url.URL, success bool) AuthResult {
	assert.NotEmptyStr(c.landingPath)
	if !success {
		return AUTH_UNKNOWN
	}
	if landed.Hostname() == c.baseUrl.Hostname() && landed.Path == c.landingPath {
		return AUTH_AUTHENTICATED
	}
	return AUTH_REJECTED
}
