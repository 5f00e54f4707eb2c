package storefrontsdk_test

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/storefront/internal/storefront/store/drivers/memory"
	"github.com/aussiebroadwan/storefront/pkg/storefrontsdk"
	"github.com/stretchr/testify/require"
)

// fakeAPI is an in-process storefront API. It accepts exactly one access
// token at a time; any other bearer token is answered as expired.
type fakeAPI struct {
	srv *httptest.Server

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	generation   int
	products     map[int]storefrontsdk.Product
	nextID       int
	sales        []storefrontsdk.Sale
	saleBodies   []string
	lastReport   string

	// refreshFails makes /Auth/refresh-token reject every call.
	refreshFails bool
	// alwaysExpired makes every authenticated endpoint answer expired.
	alwaysExpired bool
	// plainUnauthorized answers 401 without the Token-Expired header.
	plainUnauthorized bool
	// refreshHold, when set, parks /Auth/refresh-token after signalling
	// refreshStarted until the channel is closed.
	refreshHold    chan struct{}
	refreshStarted chan struct{}

	refreshCalls atomic.Int32
	productCalls atomic.Int32
	saleCalls    atomic.Int32
	reportCalls  atomic.Int32
}

var testUser = storefrontsdk.UserProfile{ID: "7", FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com"}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	api := &fakeAPI{
		accessToken:  "access-0",
		refreshToken: "refresh-0",
		products:     map[int]storefrontsdk.Product{},
		nextID:       1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /Auth/login", api.handleLogin)
	mux.HandleFunc("POST /Auth/register", api.handleRegister)
	mux.HandleFunc("POST /Auth/refresh-token", api.handleRefresh)
	mux.HandleFunc("GET /Products", api.authed(api.handleListProducts))
	mux.HandleFunc("GET /Products/{id}", api.authed(api.handleGetProduct))
	mux.HandleFunc("POST /Products", api.authed(api.handleCreateProduct))
	mux.HandleFunc("PUT /Products/{id}", api.authed(api.handleUpdateProduct))
	mux.HandleFunc("DELETE /Products/{id}", api.authed(api.handleDeleteProduct))
	mux.HandleFunc("POST /Sales", api.authed(api.handleCreateSale))
	mux.HandleFunc("GET /sales/report", api.authed(api.handleReport))

	api.srv = httptest.NewServer(mux)
	t.Cleanup(api.srv.Close)
	return api
}

// client returns an SDK client pointed at the fake API with a fresh memory store.
func (api *fakeAPI) client() *storefrontsdk.SDKClient {
	return storefrontsdk.NewSDKClient(api.srv.URL, storefrontsdk.WithStore(memory.NewStore()))
}

// login authenticates a fresh client and returns its session.
func (api *fakeAPI) login(t *testing.T) (*storefrontsdk.SDKClient, *storefrontsdk.Session) {
	t.Helper()

	client := api.client()
	session, err := client.AuthenticateWithPassword(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)
	return client, session
}

// expire rotates the access token so the one held by clients is stale.
func (api *fakeAPI) expire() {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.generation++
	api.accessToken = fmt.Sprintf("access-%d", api.generation)
}

// holdRefresh parks the next refresh until release is called.
func (api *fakeAPI) holdRefresh() (started <-chan struct{}, release func()) {
	api.mu.Lock()
	defer api.mu.Unlock()
	hold := make(chan struct{})
	api.refreshStarted = make(chan struct{}, 1)
	api.refreshHold = hold
	return api.refreshStarted, sync.OnceFunc(func() { close(hold) })
}

func (api *fakeAPI) addProduct(p storefrontsdk.Product) storefrontsdk.Product {
	api.mu.Lock()
	defer api.mu.Unlock()
	p.ID = api.nextID
	api.nextID++
	api.products[p.ID] = p
	return p
}

func (api *fakeAPI) authResponse() storefrontsdk.AuthResponse {
	return storefrontsdk.AuthResponse{
		Token:        api.accessToken,
		RefreshToken: api.refreshToken,
		ExpiresIn:    3600,
		User:         testUser,
	}
}

func (api *fakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	if req.Password != "secret1" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Credenciales inválidas"})
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	writeJSON(w, http.StatusOK, api.authResponse())
}

func (api *fakeAPI) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req storefrontsdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		// No message: the client falls back to its own
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()
	resp := api.authResponse()
	resp.User = storefrontsdk.UserProfile{ID: "8", FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
	writeJSON(w, http.StatusOK, resp)
}

func (api *fakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	api.refreshCalls.Add(1)

	var token string
	if err := json.NewDecoder(r.Body).Decode(&token); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "refresh token must be a JSON string"})
		return
	}

	api.mu.Lock()
	hold, started := api.refreshHold, api.refreshStarted
	api.mu.Unlock()
	if hold != nil {
		started <- struct{}{}
		<-hold
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if api.refreshFails || token != api.refreshToken {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid refresh token"})
		return
	}

	api.generation++
	api.accessToken = fmt.Sprintf("access-%d", api.generation)
	api.refreshToken = fmt.Sprintf("refresh-%d", api.generation)
	writeJSON(w, http.StatusOK, api.authResponse())
}

// authed enforces the bearer token the way the real API does.
func (api *fakeAPI) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/Products") {
			api.productCalls.Add(1)
		}
		switch r.URL.Path {
		case "/Sales":
			api.saleCalls.Add(1)
		case "/sales/report":
			api.reportCalls.Add(1)
		}

		if r.Header.Get("Content-Type") != "application/json" {
			writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"message": "json only"})
			return
		}

		api.mu.Lock()
		current := api.accessToken
		alwaysExpired := api.alwaysExpired
		plain := api.plainUnauthorized
		api.mu.Unlock()

		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		switch {
		case plain:
			w.WriteHeader(http.StatusUnauthorized)
			return
		case token == "":
			w.WriteHeader(http.StatusUnauthorized)
			return
		case alwaysExpired || token != current:
			w.Header().Set(storefrontsdk.HeaderTokenExpired, "true")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		next(w, r)
	}
}

func (api *fakeAPI) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	api.mu.Lock()
	defer api.mu.Unlock()

	products := make([]storefrontsdk.Product, 0, len(api.products))
	for id := 1; id < api.nextID; id++ {
		if p, ok := api.products[id]; ok {
			products = append(products, p)
		}
	}
	writeJSON(w, http.StatusOK, products)
}

func (api *fakeAPI) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	api.mu.Lock()
	defer api.mu.Unlock()

	p, ok := api.products[id]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (api *fakeAPI) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var in storefrontsdk.ProductInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	writeJSON(w, http.StatusCreated, api.addProduct(in.WithID(0)))
}

func (api *fakeAPI) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	var p storefrontsdk.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.ID != id {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "id mismatch"})
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	if _, ok := api.products[id]; !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	api.products[id] = p
	w.WriteHeader(http.StatusNoContent)
}

func (api *fakeAPI) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(r.PathValue("id"))

	api.mu.Lock()
	defer api.mu.Unlock()

	if _, ok := api.products[id]; !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Producto no encontrado"})
		return
	}
	delete(api.products, id)
	w.WriteHeader(http.StatusNoContent)
}

func (api *fakeAPI) handleCreateSale(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	var req storefrontsdk.CreateSaleRequest
	if err := json.Unmarshal(body, &req); err != nil || len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "sale needs items"})
		return
	}

	api.mu.Lock()
	defer api.mu.Unlock()

	api.saleBodies = append(api.saleBodies, string(body))

	sale := storefrontsdk.Sale{ID: len(api.sales) + 1, Date: req.Date}
	for i, item := range req.Items {
		sale.Total += float64(item.Quantity) * item.UnitPrice
		sale.Items = append(sale.Items, storefrontsdk.SaleItem{
			ID:        i + 1,
			ProductID: item.ProductID,
			Product:   api.products[item.ProductID],
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	api.sales = append(api.sales, sale)
	writeJSON(w, http.StatusCreated, sale)
}

func (api *fakeAPI) handleReport(w http.ResponseWriter, r *http.Request) {
	start, end := r.URL.Query().Get("start"), r.URL.Query().Get("end")

	api.mu.Lock()
	defer api.mu.Unlock()

	api.lastReport = r.URL.RawQuery

	sales := []storefrontsdk.Sale{}
	for _, s := range api.sales {
		if s.Date >= start && s.Date <= end {
			sales = append(sales, s)
		}
	}
	writeJSON(w, http.StatusOK, sales)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
