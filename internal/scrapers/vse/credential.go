package vse

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
)

// Credential is the set of session cookies produced by a login. It is opaque to callers
// and read-only to the client: every operation copies it into a fresh cookie jar.
//
// The site does not tell how long a session lasts, callers should authenticate again
// once operations stop being authorized.
type Credential struct {
	cookies []*http.Cookie
}

// NewCredential builds a credential out of previously saved cookies. A cookie with a Domain
// is only sent to that host, a cookie without one is sent to every host of the site.
func NewCredential(cookies []*http.Cookie) Credential {
	return Credential{cookies: copyCookies(cookies)}
}

func copyCookies(cookies []*http.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil {
			continue
		}
		out = append(out, &http.Cookie{
			Name:   c.Name,
			Value:  c.Value,
			Domain: strings.TrimPrefix(c.Domain, "."),
			Path:   c.Path,
		})
	}
	return out
}

// Cookies returns a copy of the cookies in the credential.
func (c Credential) Cookies() []*http.Cookie {
	return copyCookies(c.cookies)
}

func (c Credential) IsZero() bool {
	return len(c.cookies) == 0
}

// credentialFromJar collects the cookies a jar holds for the given urls. A jar does not
// tell where a cookie came from, so every cookie is scoped to the host it was read for.
func credentialFromJar(jar http.CookieJar, urls ...*url.URL) Credential {
	type key struct{ name, host string }
	seen := map[key]bool{}
	var cookies []*http.Cookie
	for _, u := range urls {
		host := u.Hostname()
		for _, cookie := range jar.Cookies(u) {
			k := key{name: cookie.Name, host: host}
			if seen[k] {
				continue
			}
			seen[k] = true
			cookies = append(cookies, &http.Cookie{Name: cookie.Name, Value: cookie.Value, Domain: host})
		}
	}
	return Credential{cookies: cookies}
}

// jar creates a new cookie jar seeded with the credential, each cookie only goes to the
// urls its domain matches.
func (c Credential) jar(urls ...*url.URL) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	for _, u := range urls {
		var matching []*http.Cookie
		for _, cookie := range c.cookies {
			if cookie.Domain != "" && cookie.Domain != u.Hostname() {
				continue
			}
			// host-only, the jar would otherwise also send it to subdomains
			matching = append(matching, &http.Cookie{Name: cookie.Name, Value: cookie.Value, Path: cookie.Path})
		}
		jar.SetCookies(u, matching)
	}
	return jar, nil
}

type savedCookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain,omitempty"`
	Path   string `json:"path,omitempty"`
}

func (c Credential) MarshalJSON() ([]byte, error) {
	saved := make([]savedCookie, len(c.cookies))
	for i, cookie := range c.cookies {
		saved[i] = savedCookie{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookie.Domain,
			Path:   cookie.Path,
		}
	}
	return json.Marshal(saved)
}

func (c *Credential) UnmarshalJSON(data []byte) error {
	var saved []savedCookie
	err := json.Unmarshal(data, &saved)
	if err != nil {
		return err
	}
	cookies := make([]*http.Cookie, len(saved))
	for i, s := range saved {
		cookies[i] = &http.Cookie{Name: s.Name, Value: s.Value, Domain: s.Domain, Path: s.Path}
	}
	c.cookies = cookies
	return nil
}
