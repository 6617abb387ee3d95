package web

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/adityaprk/khatabook/internal/auth"
	"github.com/adityaprk/khatabook/internal/middleware"
	"github.com/adityaprk/khatabook/internal/models"
	"github.com/adityaprk/khatabook/internal/storage/sqlite"
)

// setupTestServer starts the full HTML surface over a temp database and
// returns a cookie-aware client that does not follow redirects, so tests
// can assert on Location headers.
func setupTestServer(t *testing.T) (*httptest.Server, *http.Client, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	creds := auth.NewMemoryCredentials()
	if err := creds.Add("admin", "correct-horse"); err != nil {
		t.Fatalf("failed to seed credentials: %v", err)
	}

	secret, err := auth.NewSigningSecret()
	if err != nil {
		t.Fatalf("failed to generate secret: %v", err)
	}
	tokens := auth.NewTokenManager(secret, time.Hour)

	handler, err := NewHandler(store, creds, tokens)
	if err != nil {
		t.Fatalf("failed to create handler: %v", err)
	}

	mux := http.NewServeMux()
	handler.Routes(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return server, client, store
}

func postForm(t *testing.T, client *http.Client, url string, form url.Values) *http.Response {
	t.Helper()

	resp, err := client.PostForm(url, form)
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	resp.Body.Close()
	return resp
}

func login(t *testing.T, client *http.Client, baseURL string) {
	t.Helper()

	resp := postForm(t, client, baseURL+"/login", url.Values{
		"username": {"admin"},
		"password": {"correct-horse"},
	})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, http.StatusFound)
	}
}

func hasSessionCookie(client *http.Client, baseURL string) bool {
	u, _ := url.Parse(baseURL)
	for _, c := range client.Jar.Cookies(u) {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			return true
		}
	}
	return false
}

func TestLoginScenario(t *testing.T) {
	// Two wrong passwords leave no cookie; the third, correct one sets a
	// session and the dashboard loads.
	server, client, _ := setupTestServer(t)

	for i := 0; i < 2; i++ {
		resp := postForm(t, client, server.URL+"/login", url.Values{
			"username": {"admin"},
			"password": {"wrong"},
		})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want %d", i+1, resp.StatusCode, http.StatusUnauthorized)
		}
		if hasSessionCookie(client, server.URL) {
			t.Fatal("expected no session cookie after failed login")
		}
	}

	login(t, client, server.URL)
	if !hasSessionCookie(client, server.URL) {
		t.Fatal("expected session cookie after successful login")
	}

	resp, err := client.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "Signed in as admin") {
		t.Error("expected dashboard to show the signed-in user")
	}
}

func TestUnauthenticatedRedirects(t *testing.T) {
	server, client, _ := setupTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/"},
		{http.MethodGet, "/customer/1"},
		{http.MethodGet, "/download_db"},
		{http.MethodPost, "/add_customer"},
		{http.MethodPost, "/add_transaction"},
		{http.MethodPost, "/delete_customer/1"},
	}

	for _, p := range paths {
		req, err := http.NewRequest(p.method, server.URL+p.path, nil)
		if err != nil {
			t.Fatalf("NewRequest failed: %v", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("%s %s failed: %v", p.method, p.path, err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Errorf("%s %s status = %d, want %d", p.method, p.path, resp.StatusCode, http.StatusFound)
		}
		if loc := resp.Header.Get("Location"); loc != "/login" {
			t.Errorf("%s %s Location = %q, want /login", p.method, p.path, loc)
		}
	}
}

func TestCustomerAndTransactionFlow(t *testing.T) {
	server, client, store := setupTestServer(t)
	login(t, client, server.URL)
	ctx := context.Background()

	resp := postForm(t, client, server.URL+"/add_customer", url.Values{
		"name":  {"Asha"},
		"phone": {"555-1111"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add_customer status = %d, want 303", resp.StatusCode)
	}

	customers, err := store.ListCustomers(ctx, "")
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(customers) != 1 {
		t.Fatalf("got %d customers, want 1", len(customers))
	}
	id := customers[0].ID
	idStr := strconv.FormatInt(id, 10)

	resp = postForm(t, client, server.URL+"/add_transaction", url.Values{
		"customer_id": {idStr},
		"amount":      {"100"},
		"type":        {"GAVE"},
		"description": {"seed loan"},
	})
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("add_transaction status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/customer/"+idStr {
		t.Errorf("add_transaction Location = %q", loc)
	}

	postForm(t, client, server.URL+"/add_transaction", url.Values{
		"customer_id": {idStr},
		"amount":      {"40"},
		"type":        {"GOT"},
	})

	balance, err := store.Balance(ctx, id)
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if balance != 60 {
		t.Errorf("balance = %v, want 60", balance)
	}

	resp, err = client.Get(server.URL + "/customer/" + idStr)
	if err != nil {
		t.Fatalf("GET customer page failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("customer page status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "Balance: 60.00") {
		t.Error("expected customer page to show the derived balance")
	}

	// Statement download.
	resp, err = client.Get(server.URL + "/customer/" + idStr + "/download")
	if err != nil {
		t.Fatalf("GET statement failed: %v", err)
	}
	csvBody, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Errorf("statement Content-Type = %q", ct)
	}
	if !strings.Contains(string(csvBody), "NET BALANCE,60.00") {
		t.Errorf("statement missing net balance row:\n%s", csvBody)
	}
}

func TestEditTransactionRedirectIgnoresForgedOwner(t *testing.T) {
	server, client, store := setupTestServer(t)
	login(t, client, server.URL)
	ctx := context.Background()

	ownerID, err := store.CreateCustomer(ctx, "Owner", "1")
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	txID, err := store.CreateTransaction(ctx, &models.Transaction{
		CustomerID: ownerID,
		Amount:     10,
		Kind:       models.TxGave,
	})
	if err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	// A forged customer_id field must not steer the redirect.
	resp := postForm(t, client, server.URL+"/edit_transaction", url.Values{
		"transaction_id": {strconv.FormatInt(txID, 10)},
		"customer_id":    {"9999"},
		"amount":         {"15"},
		"type":           {"GAVE"},
	})
	wantLoc := "/customer/" + strconv.FormatInt(ownerID, 10)
	if loc := resp.Header.Get("Location"); loc != wantLoc {
		t.Errorf("Location = %q, want %q (derived from stored owner)", loc, wantLoc)
	}

	tx, err := store.GetTransaction(ctx, txID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if tx.Amount != 15 {
		t.Errorf("amount = %v, want 15", tx.Amount)
	}
	if tx.CustomerID != ownerID {
		t.Errorf("edit must not move the transaction: owner = %d", tx.CustomerID)
	}
}

func TestAddTransactionValidation(t *testing.T) {
	server, client, store := setupTestServer(t)
	login(t, client, server.URL)
	ctx := context.Background()

	id, err := store.CreateCustomer(ctx, "Valid", "1")
	if err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}
	idStr := strconv.FormatInt(id, 10)

	bad := []url.Values{
		{"customer_id": {idStr}, "amount": {"abc"}, "type": {"GAVE"}},
		{"customer_id": {idStr}, "amount": {"-5"}, "type": {"GAVE"}},
		{"customer_id": {idStr}, "amount": {"5"}, "type": {"LENT"}},
	}
	for _, form := range bad {
		resp := postForm(t, client, server.URL+"/add_transaction", form)
		if resp.StatusCode != http.StatusSeeOther {
			t.Errorf("invalid form %v status = %d, want redirect", form, resp.StatusCode)
		}
	}

	transactions, err := store.ListTransactions(ctx, id)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if len(transactions) != 0 {
		t.Errorf("got %d transactions from invalid forms, want 0", len(transactions))
	}

	// Unknown customer gets a 404, not a silent insert.
	resp := postForm(t, client, server.URL+"/add_transaction", url.Values{
		"customer_id": {"9999"}, "amount": {"5"}, "type": {"GAVE"},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown customer status = %d, want 404", resp.StatusCode)
	}
}

func TestCustomerPageNotFound(t *testing.T) {
	server, client, _ := setupTestServer(t)
	login(t, client, server.URL)

	resp, err := client.Get(server.URL + "/customer/9999")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestRestoreRejectsWrongSuffix(t *testing.T) {
	server, client, store := setupTestServer(t)
	login(t, client, server.URL)
	ctx := context.Background()

	if _, err := store.CreateCustomer(ctx, "Keep Me", "1"); err != nil {
		t.Fatalf("CreateCustomer failed: %v", err)
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "not-a-backup.txt")
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	part.Write([]byte("junk"))
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, server.URL+"/restore_db", &buf)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("POST /restore_db failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, want redirect", resp.StatusCode)
	}

	// Data untouched.
	customers, err := store.ListCustomers(ctx, "")
	if err != nil {
		t.Fatalf("ListCustomers failed: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "Keep Me" {
		t.Errorf("expected data to survive a rejected restore, got %+v", customers)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	server, client, _ := setupTestServer(t)
	login(t, client, server.URL)

	resp, err := client.Get(server.URL + "/logout")
	if err != nil {
		t.Fatalf("GET /logout failed: %v", err)
	}
	resp.Body.Close()
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want /login", loc)
	}
	if hasSessionCookie(client, server.URL) {
		t.Error("expected session cookie to be cleared")
	}

	// The dashboard is gated again.
	resp, err = client.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("GET / failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Errorf("status after logout = %d, want redirect", resp.StatusCode)
	}
}
