//go:build browser

package browser_test

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	web "ukccu/internal/adapters/http"
	"ukccu/internal/adapters/storage"
	"ukccu/internal/adapters/storage/kv"
	readStateStore "ukccu/internal/adapters/storage/readstate"
	submissionStore "ukccu/internal/adapters/storage/submission"
	voteLockStore "ukccu/internal/adapters/storage/votelock"
	"ukccu/internal/content"
	"ukccu/internal/domain/votingstatus"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL     string
	Server      *http.Server
	PW          *playwright.Playwright
	Browser     playwright.Browser
	Submissions *submissionStore.KVStore
}

// catalogYAML keeps two announcements active around the current day.
func catalogYAML(now time.Time) []byte {
	day := func(offset int) string { return now.AddDate(0, 0, offset).Format("2006-01-02") }
	return []byte(fmt.Sprintf(`announcements:
  - id: prayer-week
    title: Prayer Week
    description: Morning prayer in the **chapel** every day.
    startDate: "%s"
    endDate: "%s"
    link: /events#prayer
  - id: elections
    title: Executive Elections
    description: Voting is open.
    startDate: "%s"
    endDate: "%s"
  - id: old-news
    title: Last Year
    description: Already over.
    startDate: "2020-01-01"
    endDate: "2020-01-02"
events:
  - id: prayer
    category: prayer-and-worship
    title: Prayer Week
    image: /static/img/events/prayer.jpg
    date: "%s"
    description: Seven days of prayer.
`, day(-1), day(1), day(0), day(0), day(2)))
}

// newTestApp wires the site over a temp SQLite database and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(ctx, storage.DialectSQLite, dbPath)
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}

	catalog, err := content.Parse(catalogYAML(time.Now()))
	if err != nil {
		t.Fatalf("failed to parse catalog: %v", err)
	}

	store := kv.NewSQLStore(db, storage.DialectSQLite)
	subs := submissionStore.NewKVStore(store)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()

	mux := web.NewMux(web.Deps{
		Catalog:     catalog,
		Markers:     store,
		Submissions: subs,
		ReadState:   readStateStore.NewKVStore(store),
		VoteLock:    voteLockStore.NewKVStore(store),
		Status:      votingstatus.StaticSource{Status: votingstatus.Status{Status: votingstatus.Open}},
		IPSalt:      "browser-test",
		StaticDir:   filepath.Join(findProjectRoot(t), "static"),
		TrustedOrigins: []string{
			fmt.Sprintf("127.0.0.1:%d", port),
			fmt.Sprintf("localhost:%d", port),
		},
	})
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/announcements")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return &testApp{BaseURL: baseURL, Server: srv, PW: pw, Browser: browser, Submissions: subs}
}

// newPage opens a tab in a fresh browser context, so each page is a new visitor.
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	bctx, err := a.Browser.NewContext()
	if err != nil {
		t.Fatalf("failed to create browser context: %v", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { bctx.Close() })
	return page
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
