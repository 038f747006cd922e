package handlers

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/bcrypt"

	"github.com/phone-storefront/app/internal/auth"
	"github.com/phone-storefront/app/internal/cart"
	"github.com/phone-storefront/app/internal/catalog"
	"github.com/phone-storefront/app/internal/database"
	"github.com/phone-storefront/app/internal/session"
	"github.com/phone-storefront/app/web"
)

// testServer holds a test server and its dependencies.
type testServer struct {
	server   *httptest.Server
	store    *database.Store
	sessions *session.MemoryStore
	client   *http.Client
}

func loadTestTemplates(t *testing.T) *Templates {
	t.Helper()
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatalf("fs.Sub templates: %v", err)
	}
	tmpl, err := LoadTemplates(sub)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	return tmpl
}

// setupTestServer wires an in-memory database with the seeded catalog, a
// memory session store and the full route tree, the same way the app does.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.InitDB(":memory:")
	if err != nil {
		t.Fatalf("Failed to initialize test database: %v", err)
	}
	store := database.NewStore(db)
	if _, err := database.SeedProducts(context.Background(), store); err != nil {
		t.Fatalf("SeedProducts() error = %v", err)
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		t.Fatalf("fs.Sub static: %v", err)
	}

	logger := logr.Discard()
	sessions := session.NewMemoryStore(logger, 0)
	catalogSvc := catalog.NewService(store)

	h := New(Deps{
		Auth:      auth.NewService(store, auth.BcryptHasher{Cost: bcrypt.MinCost}, logger),
		Catalog:   catalogSvc,
		Cart:      cart.NewService(catalogSvc),
		Sessions:  session.NewManager(sessions, time.Hour, session.CookieOptions{}, logger),
		Templates: loadTestTemplates(t),
		Static:    http.FS(staticFS),
		Logger:    logger,
	})

	ts := &testServer{
		server:   httptest.NewServer(h.Routes()),
		store:    store,
		sessions: sessions,
		client:   newClient(t),
	}
	t.Cleanup(func() {
		ts.server.Close()
		sessions.Close()
		db.Close()
	})
	return ts
}

// newClient returns a client with its own cookie jar that does not follow redirects.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("Failed to create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (ts *testServer) do(t *testing.T, method, path string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, ts.server.URL+path, body)
	if err != nil {
		t.Fatalf("NewRequest %s %s: %v", method, path, err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading %s %s body: %v", method, path, err)
	}
	return resp, string(b)
}

func (ts *testServer) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	return ts.do(t, http.MethodGet, path, nil)
}

func (ts *testServer) postForm(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	return ts.do(t, http.MethodPost, path, form)
}

func (ts *testServer) sessionCookie(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(ts.server.URL)
	if err != nil {
		t.Fatalf("Failed to parse URL '%s': %v", ts.server.URL, err)
	}
	for _, c := range ts.client.Jar.Cookies(u) {
		if c.Name == session.CookieName {
			return c.Value
		}
	}
	return ""
}

func assertRedirect(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("%s %s status = %d; want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, http.StatusSeeOther)
	}
	loc, err := resp.Location()
	if err != nil {
		t.Fatalf("redirect location error: %v", err)
	}
	if loc.Path != want {
		t.Errorf("%s %s redirect location = %s; want %s", resp.Request.Method, resp.Request.URL.Path, loc.Path, want)
	}
}

func assertStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Errorf("%s %s status = %d; want %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, want)
	}
}

func assertContains(t *testing.T, body, want string) {
	t.Helper()
	if !strings.Contains(body, want) {
		t.Errorf("response body does not contain %q. Body: %s", want, body)
	}
}

func assertNotContains(t *testing.T, body, unwanted string) {
	t.Helper()
	if strings.Contains(body, unwanted) {
		t.Errorf("response body unexpectedly contains %q", unwanted)
	}
}

func TestIndexListsCatalog(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := ts.get(t, "/")
	assertStatus(t, resp, http.StatusOK)
	for _, p := range database.SeedCatalog() {
		assertContains(t, body, p.Name)
	}
	assertContains(t, body, "89,700.00")
	assertContains(t, body, "Cart (0)")
	assertContains(t, body, `href="/login"`)
}

func TestProductDetail(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("Existing", func(t *testing.T) {
		resp, body := ts.get(t, "/product/1")
		assertStatus(t, resp, http.StatusOK)
		assertContains(t, body, "Apple iPhone 16 Pro")
		assertContains(t, body, `href="/add_to_cart/1"`)
	})

	for _, path := range []string{"/product/9999", "/product/abc", "/product/-1", "/product/0"} {
		t.Run("Not Found "+path, func(t *testing.T) {
			resp, body := ts.get(t, path)
			assertStatus(t, resp, http.StatusNotFound)
			assertContains(t, body, "Product not found.")
		})
	}
}

func TestErrorPages(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("Unknown Path", func(t *testing.T) {
		resp, body := ts.get(t, "/no/such/page")
		assertStatus(t, resp, http.StatusNotFound)
		assertContains(t, body, defaultNotFoundMessage)
	})

	t.Run("Wrong Method", func(t *testing.T) {
		resp, body := ts.do(t, http.MethodPut, "/login", nil)
		assertStatus(t, resp, http.StatusMethodNotAllowed)
		if got := resp.Header.Get("Allow"); got != "GET, POST" {
			t.Errorf("Allow = %q; want %q", got, "GET, POST")
		}
		assertContains(t, body, "405")

		resp, _ = ts.postForm(t, "/cart", url.Values{})
		assertStatus(t, resp, http.StatusMethodNotAllowed)
		if got := resp.Header.Get("Allow"); got != "GET" {
			t.Errorf("Allow = %q; want %q", got, "GET")
		}
	})
}

func TestRegisterLoginProfileLogout(t *testing.T) {
	ts := setupTestServer(t)

	username := "alice"
	email := "alice@example.com"
	password := "password123"

	t.Run("GET /register", func(t *testing.T) {
		resp, body := ts.get(t, "/register")
		assertStatus(t, resp, http.StatusOK)
		assertContains(t, body, `action="/register"`)
	})

	t.Run("POST /register valid", func(t *testing.T) {
		resp, _ := ts.postForm(t, "/register", url.Values{
			"username": {username},
			"email":    {email},
			"password": {password},
		})
		assertRedirect(t, resp, "/login")

		exists, err := ts.store.EmailExists(context.Background(), email)
		if err != nil || !exists {
			t.Errorf("EmailExists() after registration = %v, %v; want true, nil", exists, err)
		}

		_, body := ts.get(t, "/login")
		assertContains(t, body, FlashRegistered)
	})

	t.Run("POST /register existing email", func(t *testing.T) {
		resp, _ := ts.postForm(t, "/register", url.Values{
			"username": {"alice2"},
			"email":    {email},
			"password": {"other"},
		})
		assertRedirect(t, resp, "/register")

		var n int
		if err := ts.store.DB().QueryRow("SELECT COUNT(*) FROM users WHERE email = ?", email).Scan(&n); err != nil {
			t.Fatalf("counting users: %v", err)
		}
		if n != 1 {
			t.Errorf("users with email %s = %d after duplicate registration; want 1", email, n)
		}

		_, body := ts.get(t, "/register")
		assertContains(t, body, FlashEmailTaken)
	})

	t.Run("POST /register existing username", func(t *testing.T) {
		resp, _ := ts.postForm(t, "/register", url.Values{
			"username": {username},
			"email":    {"someone.else@example.com"},
			"password": {"other"},
		})
		assertRedirect(t, resp, "/register")

		_, body := ts.get(t, "/register")
		assertContains(t, body, FlashUsernameTaken)
	})

	t.Run("POST /login invalid", func(t *testing.T) {
		resp, _ := ts.postForm(t, "/login", url.Values{"email": {email}, "password": {"wrong"}})
		assertRedirect(t, resp, "/login")

		_, body := ts.get(t, "/login")
		assertContains(t, body, FlashInvalidLogin)

		resp, _ = ts.get(t, "/profile")
		assertRedirect(t, resp, "/login")
		ts.get(t, "/login") // consume the flash
	})

	t.Run("POST /login valid", func(t *testing.T) {
		before := ts.sessionCookie(t)
		if before == "" {
			t.Fatal("no session cookie issued before login")
		}

		resp, _ := ts.postForm(t, "/login", url.Values{"email": {email}, "password": {password}})
		assertRedirect(t, resp, "/profile")

		after := ts.sessionCookie(t)
		if after == "" || after == before {
			t.Errorf("session id after login = %q; want a new id different from %q", after, before)
		}
		if _, err := ts.sessions.Get(context.Background(), before); err != session.ErrNotFound {
			t.Errorf("pre-login session still stored: err = %v", err)
		}
	})

	t.Run("GET /profile logged in", func(t *testing.T) {
		resp, body := ts.get(t, "/profile")
		assertStatus(t, resp, http.StatusOK)
		assertContains(t, body, username)
		assertContains(t, body, email)
		assertContains(t, body, `href="/logout"`)
	})

	t.Run("GET /logout", func(t *testing.T) {
		resp, _ := ts.get(t, "/logout")
		assertRedirect(t, resp, "/")

		resp, _ = ts.get(t, "/profile")
		assertRedirect(t, resp, "/login")

		_, body := ts.get(t, "/login")
		assertContains(t, body, FlashLoginRequired)
	})
}

func TestProfileRequiresLogin(t *testing.T) {
	ts := setupTestServer(t)

	resp, _ := ts.get(t, "/profile")
	assertRedirect(t, resp, "/login")

	_, body := ts.get(t, "/login")
	assertContains(t, body, FlashLoginRequired)
}

func TestCart(t *testing.T) {
	ts := setupTestServer(t)

	t.Run("Empty", func(t *testing.T) {
		resp, body := ts.get(t, "/cart")
		assertStatus(t, resp, http.StatusOK)
		assertContains(t, body, "Your cart is empty.")
		assertContains(t, body, "Total: 0.00")
	})

	t.Run("Add Items", func(t *testing.T) {
		for _, id := range []string{"1", "2", "1"} {
			resp, _ := ts.get(t, "/add_to_cart/"+id)
			assertRedirect(t, resp, "/product/"+id)
		}

		_, body := ts.get(t, "/product/1")
		assertContains(t, body, FlashAddedToCart)
		assertContains(t, body, "Cart (3)")

		_, body = ts.get(t, "/product/1")
		assertNotContains(t, body, FlashAddedToCart)
	})

	t.Run("View Keeps Duplicates", func(t *testing.T) {
		resp, body := ts.get(t, "/cart")
		assertStatus(t, resp, http.StatusOK)
		if n := strings.Count(body, "Apple iPhone 16 Pro"); n != 2 {
			t.Errorf("cart shows Apple iPhone 16 Pro %d times; want 2", n)
		}
		assertContains(t, body, "OnePlus 12")
		assertContains(t, body, "3 item(s)")
		// 89700 + 60800 + 89700
		assertContains(t, body, "Total: 240,200.00")
	})

	t.Run("Unknown Product Is Dropped", func(t *testing.T) {
		resp, _ := ts.get(t, "/add_to_cart/4242")
		assertRedirect(t, resp, "/product/4242")

		_, body := ts.get(t, "/cart")
		assertContains(t, body, "Total: 240,200.00")
		assertContains(t, body, "Cart (4)")
	})

	t.Run("Malformed Id", func(t *testing.T) {
		resp, _ := ts.get(t, "/add_to_cart/abc")
		assertStatus(t, resp, http.StatusNotFound)
	})
}

func TestCartSurvivesLoginAndLogout(t *testing.T) {
	ts := setupTestServer(t)

	ts.postForm(t, "/register", url.Values{"username": {"bob"}, "email": {"bob@example.com"}, "password": {"pw"}})
	ts.get(t, "/add_to_cart/3")

	resp, _ := ts.postForm(t, "/login", url.Values{"email": {"bob@example.com"}, "password": {"pw"}})
	assertRedirect(t, resp, "/profile")

	_, body := ts.get(t, "/cart")
	assertContains(t, body, "Google Pixel 6 Pro")

	ts.get(t, "/logout")
	_, body = ts.get(t, "/cart")
	assertContains(t, body, "Google Pixel 6 Pro")
	assertContains(t, body, `href="/login"`)
}

func TestSessionsAreIsolated(t *testing.T) {
	ts := setupTestServer(t)
	ts.get(t, "/add_to_cart/1")

	other := *ts
	other.client = newClient(t)

	_, body := other.get(t, "/cart")
	assertContains(t, body, "Your cart is empty.")
}

func TestStaticAssets(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := ts.get(t, "/static/css/style.css")
	assertStatus(t, resp, http.StatusOK)
	assertContains(t, body, "font-family")

	if c := ts.sessionCookie(t); c != "" {
		t.Errorf("static request issued a session cookie %q", c)
	}
}

func TestRecoverPanic(t *testing.T) {
	h := New(Deps{Templates: loadTestTemplates(t), Logger: logr.Discard()})

	handler := h.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
	}
	assertContains(t, rec.Body.String(), "Something went wrong")
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{5.5, "5.50"},
		{999, "999.00"},
		{1000, "1,000.00"},
		{89700, "89,700.00"},
		{1234567.891, "1,234,567.89"},
		{-2500, "-2,500.00"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	if got := FormatDate(time.Time{}); got != "N/A" {
		t.Errorf("FormatDate(zero) = %q; want N/A", got)
	}
	d := time.Date(2024, time.March, 5, 10, 0, 0, 0, time.UTC)
	if got := FormatDate(d); got != "March 5, 2024" {
		t.Errorf("FormatDate() = %q; want %q", got, "March 5, 2024")
	}
}
