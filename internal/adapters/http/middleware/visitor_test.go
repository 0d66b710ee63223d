package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func captureVisitor(got *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, _ = VisitorFromContext(r.Context())
	})
}

// TestVisitor_IssuesCookie assigns a UUID to a new browser.
func TestVisitor_IssuesCookie(t *testing.T) {
	var got string
	rr := httptest.NewRecorder()
	Visitor(false)(captureVisitor(&got)).ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))

	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("visitor %q is not a UUID", got)
	}
	cookies := rr.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != VisitorCookie || cookies[0].Value != got || !cookies[0].HttpOnly {
		t.Errorf("cookies = %+v", cookies)
	}
}

// TestVisitor_ReusesCookie keeps the namespace stable across requests.
func TestVisitor_ReusesCookie(t *testing.T) {
	id := uuid.New().String()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: id})

	var got string
	rr := httptest.NewRecorder()
	Visitor(false)(captureVisitor(&got)).ServeHTTP(rr, req)

	if got != id {
		t.Errorf("visitor = %s, want %s", got, id)
	}
	if len(rr.Result().Cookies()) != 0 {
		t.Error("existing cookie should not be reissued")
	}
}

// TestVisitor_ReplacesMalformedCookie does not trust arbitrary namespaces.
func TestVisitor_ReplacesMalformedCookie(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../admin"})

	var got string
	rr := httptest.NewRecorder()
	Visitor(true)(captureVisitor(&got)).ServeHTTP(rr, req)

	if got == "../../admin" || got == "" {
		t.Errorf("visitor = %q", got)
	}
	if c := rr.Result().Cookies(); len(c) != 1 || !c[0].Secure {
		t.Errorf("expected a fresh secure cookie, got %+v", c)
	}
}
