package vse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"vse-client/internal/components/chrono"
	"vse-client/internal/components/telemetry"
)

const (
	testGame     = "testgame"
	testUser     = "trader@example.com"
	testPassword = "hunter2"
	testSession  = "valid-session"
	testDate     = "Tue, 15 Jan 2013 17:30:00 GMT"
)

// fakeSite emulates the pages of the game that the client scrapes.
type fakeSite struct {
	t      *testing.T
	server *httptest.Server

	mutex             sync.Mutex
	logins            int
	transactionFetch  []int
	orders            []orderPayload
	orderHeaders      http.Header
	statusCode        int
	transactionsTotal int
	hidePagination    bool
	holdingsPage      string
	searchPage        string
	portfolioPage     string
	// orderBody replaces the json answer of the order endpoint when set
	orderBody string
	// rejectTo is where a failed login is sent instead of the local login page
	rejectTo string
}

func newFakeSite(t *testing.T) *fakeSite {
	site := &fakeSite{
		t:             t,
		holdingsPage:  holdingsFixture,
		searchPage:    searchFixture,
		portfolioPage: portfolioFixture,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", site.root)
	mux.HandleFunc("/user/account/logon", site.logon)
	mux.HandleFunc("/user/login/status", site.loginStatus)
	mux.HandleFunc("/user/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>please log in</body></html>")
	})
	mux.HandleFunc("/my", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>welcome back</body></html>")
	})
	mux.HandleFunc("/game/"+testGame+"/portfolio/holdings", site.authorized(site.holdings))
	mux.HandleFunc("/game/"+testGame+"/portfolio/transactionhistory", site.authorized(site.transactions))
	mux.HandleFunc("/game/"+testGame+"/portfolio", site.authorized(site.portfolio))
	mux.HandleFunc("/game/"+testGame+"/trade", site.authorized(site.search))
	mux.HandleFunc("/game/"+testGame+"/trade/submitorder", site.authorized(site.submitOrder))

	site.server = httptest.NewServer(mux)
	t.Cleanup(site.server.Close)
	return site
}

func (s *fakeSite) client(tel telemetry.API) *Client {
	client, err := NewClient(ClientOptions{
		BaseUrl:           s.server.URL,
		SecureBaseUrl:     s.server.URL,
		RequestsPerSecond: 1000,
		Timeout:           time.Second * 5,
	}, tel)
	if err != nil {
		s.t.Fatal(err)
	}
	return client
}

func (s *fakeSite) credential() Credential {
	return NewCredential([]*http.Cookie{{Name: "session", Value: testSession}})
}

func (s *fakeSite) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "seed", Value: "1", Path: "/"})
	fmt.Fprint(w, "<html><body>home</body></html>")
}

func (s *fakeSite) logon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	err := r.ParseForm()
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	s.logins++
	s.mutex.Unlock()

	seed, err := r.Cookie("seed")
	if err != nil || seed.Value != "1" {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	if r.PostForm.Get("remChk") != "on" ||
		r.PostForm.Get("persist") != "true" ||
		r.PostForm.Get("returnUrl") != "/user/login/status" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("userName") == testUser && r.PostForm.Get("password") == testPassword {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: testSession, Path: "/"})
	}
	fmt.Fprint(w, "<html><body>logging in...</body></html>")
}

func (s *fakeSite) loginStatus(w http.ResponseWriter, r *http.Request) {
	if s.statusCode != 0 {
		w.WriteHeader(s.statusCode)
		return
	}
	session, err := r.Cookie("session")
	if err == nil && session.Value == testSession {
		http.Redirect(w, r, "/my", http.StatusFound)
		return
	}
	if s.rejectTo != "" {
		http.Redirect(w, r, s.rejectTo, http.StatusFound)
		return
	}
	http.Redirect(w, r, "/user/login?returnUrl=/user/login/status", http.StatusFound)
}

func (s *fakeSite) authorized(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := r.Cookie("session")
		if err != nil || session.Value != testSession {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Date", testDate)
		handler(w, r)
	}
}

func (s *fakeSite) holdings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("view") != "list" || query.Get("partial") != "True" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, s.holdingsPage)
}

func (s *fakeSite) portfolio(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, s.portfolioPage)
}

func (s *fakeSite) transactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	if query.Get("sort") != "TransactionDate" ||
		query.Get("descending") != "True" ||
		query.Get("partial") != "true" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	index, err := strconv.Atoi(query.Get("index"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	s.transactionFetch = append(s.transactionFetch, index)
	s.mutex.Unlock()

	fmt.Fprint(w, transactionPage(s.transactionsTotal, index, !s.hidePagination))
}

func (s *fakeSite) search(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Query().Get("week") != "1" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	err := r.ParseForm()
	if err != nil ||
		r.PostForm.Get("view") != "grid" ||
		r.PostForm.Get("partial") != "true" ||
		r.PostForm.Get("search") == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	fmt.Fprint(w, s.searchPage)
}

func (s *fakeSite) submitOrder(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || r.URL.Query().Get("week") != "1" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	var orders []orderPayload
	err := json.NewDecoder(r.Body).Decode(&orders)
	if err != nil || len(orders) != 1 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mutex.Lock()
	s.orders = append(s.orders, orders[0])
	s.orderHeaders = r.Header.Clone()
	s.mutex.Unlock()

	if s.orderBody != "" {
		fmt.Fprint(w, s.orderBody)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if orders[0].Fuid == "STOCK-XNAS-AAPL" {
		fmt.Fprint(w, `{"succeeded": true, "message": "ok"}`)
		return
	}
	fmt.Fprint(w, `{"succeeded": false, "message": "insufficient shares"}`)
}

const holdingsFixture = "<table>" +
	"<tr><th>Symbol</th><th>Shares</th><th>Gain</th></tr>" +
	`<tr data-symbol="STOCK-XNAS-AAPL" data-ticker="AAPL" data-insttype="Stock" data-price="450.12" data-shares="100" data-type="Buy">` +
	"<td>AAPL</td><td>100</td><td class=\"marketgain\">\r\n\t\t\t1,234.50\r\n\t\t<span>(2.8%)</span></td></tr>" +
	`<tr data-symbol="EXCHANGETRADEDFUND-XASQ-IXJ" data-ticker="IXJ" data-insttype="ExchangeTradedFund" data-price="1,023.50" data-shares="12" data-type="Buy">` +
	"<td>IXJ</td><td>12</td><td class=\"marketgain\">\r\n\t\t\t12.0</td></tr>" +
	`<tr data-symbol="STOCK-XNYS-F" data-ticker="F" data-insttype="Stock" data-price="12.77" data-shares="250" data-type="Short">` +
	"<td>F</td><td>250</td><td class=\"marketgain\">\r\n\t-87.25</td></tr>" +
	"</table>"

const searchFixture = `<div class="chips">` +
	`<div class="chip" data-price="430.4567" data-symbol="STOCK-XNAS-AAPL" data-ticker="AAPL"></div>` +
	`</div>`

const portfolioFixture = `<ul class="performance">` +
	`<li><span class="label">Net Worth</span><span class="data">$1,012,345.67</span></li>` +
	`<li><span class="label">Overall Gains</span><span class="data">$12,345.67</span></li>` +
	"<li><span class=\"label\">Purchasing\n Power</span><span class=\"data\">$1,500,000.00</span></li>" +
	`<li><span class="label">Cash Borrowed</span><span class="data">$0.00</span></li>` +
	`<li><span class="label">Cash Remaining</span><span class="data">$ 612,345.67</span></li>` +
	`<li><span class="label">Starting Cash:</span><span class="data">$1,000,000.00</span></li>` +
	`</ul>`

var transactionTypes = []string{"Buy", "Sell", "Short", "Cover"}

// transactionPage renders the page of a history of `total` transactions that starts at `index`.
// transaction n was executed n minutes before 2013-07-01 16:00 EDT.
func transactionPage(total, index int, pagination bool) string {
	var b strings.Builder
	b.WriteString("<table><tr><th>Symbol</th><th>Order Date</th><th>Transaction Date</th><th>Type</th><th>Amount</th><th>Price</th></tr>")
	for n := index; n < total && n < index+transactionPageSize; n++ {
		executed := transactionTime(n)
		fmt.Fprintf(
			&b,
			"<tr><td>\r\n\t<a href=\"/investing/stock/T%d\">T%d</a></td><td>%s</td><td>%s</td><td>%s</td><td>%d</td><td>$%d.50</td></tr>",
			n, n,
			executed.Add(-time.Minute).Format("1/2/2006 3:04 PM"),
			executed.Format("1/2/2006 3:04 PM"),
			transactionTypes[n%len(transactionTypes)],
			(n+1)*10,
			1000+n,
		)
	}
	b.WriteString("</table>")
	if pagination {
		fmt.Fprintf(
			&b,
			`<a class="fakebutton" href="/game/%s/portfolio/transactionhistory?partial=true&amp;count=%d&amp;sort=TransactionDate">more</a>`,
			testGame, total,
		)
	}
	return b.String()
}

func transactionTime(n int) time.Time {
	start := time.Date(2013, time.July, 1, 16, 0, 0, 0, chrono.Eastern())
	return start.Add(-time.Duration(n) * time.Minute)
}
