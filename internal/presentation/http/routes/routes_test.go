package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/domain/enum"
	"github.com/sangkips/clientbook-api/internal/infrastructure/memstore"
	"github.com/sangkips/clientbook-api/internal/presentation/http/handler"
	"github.com/sangkips/clientbook-api/pkg/money"
	"github.com/sangkips/clientbook-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

var allPermissions = []string{
	utils.PermissionManageClients,
	utils.PermissionIngestBookings,
	utils.PermissionTransfer,
}

type apiEnv struct {
	router     *gin.Engine
	store      *memstore.Store
	jwt        *utils.JWTManager
	businessID uuid.UUID
	token      string
}

func newAPIEnv(t *testing.T, rateLimit config.RateLimitConfig) *apiEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.New()
	business := &entity.Business{
		Name:     "Studio",
		Slug:     "studio",
		Active:   true,
		Settings: datatypes.NewJSONType(entity.BusinessSettings{Timezone: "UTC"}),
	}
	require.NoError(t, store.Businesses().Create(context.Background(), business))

	aggregator := service.NewStatsAggregator(store.Clients(), store.Bookings(), 0, money.PriceModeMinor)
	segments := service.NewSegmentClassifier(store.Clients(), store.Businesses(), nil)
	resolver := service.NewIdentityResolver(store.Clients(), 100)

	cfg := &config.Config{App: config.AppConfig{Name: "clientbook-api"}, RateLimit: rateLimit}
	jwtManager := utils.NewJWTManager("test-secret", "clientbook-api", time.Hour)

	limiter := NewRateLimiter(rateLimit)
	router := Setup(&Handlers{
		Client:       handler.NewClientHandler(service.NewClientService(store.Clients(), store.Bookings(), aggregator, segments, nil)),
		BookingEvent: handler.NewBookingEventHandler(service.NewBookingEventService(resolver, aggregator, store.Bookings())),
		Transfer:     handler.NewTransferHandler(service.NewClientTransferService(store.Clients())),
	}, &Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		BusinessRepo:    store.Businesses(),
		IdempotencyRepo: store.Idempotency(),
		RateLimiter:     limiter,
	})

	env := &apiEnv{router: router, store: store, jwt: jwtManager, businessID: business.ID}
	env.token = env.tokenFor(t, business.ID, allPermissions...)
	return env
}

func (e *apiEnv) tokenFor(t *testing.T, businessID uuid.UUID, permissions ...string) string {
	t.Helper()
	token, err := e.jwt.GenerateAccessToken(uuid.New(), businessID, permissions)
	require.NoError(t, err)
	return token
}

func (e *apiEnv) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthorization(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/clients", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("missing permission", func(t *testing.T) {
		token := env.tokenFor(t, env.businessID, utils.PermissionIngestBookings)
		w := env.do(t, http.MethodGet, "/api/v1/clients", nil, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unknown business", func(t *testing.T) {
		token := env.tokenFor(t, uuid.New(), allPermissions...)
		w := env.do(t, http.MethodGet, "/api/v1/clients", nil, map[string]string{"Authorization": "Bearer " + token})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCreateClientAndDuplicate(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	w := env.do(t, http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"name": "Alice", "email": "alice@example.com", "tags": []string{"VIP"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.Client
	decode(t, w, &created)

	w = env.do(t, http.MethodPost, "/api/v1/clients", map[string]interface{}{
		"name": "Alice again", "email": " ALICE@example.com",
	}, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	var dup service.DuplicateWarning
	decode(t, w, &dup)
	assert.Equal(t, created.ID, dup.ExistingClientID)
	assert.Equal(t, enum.MatchKindEmail, dup.MatchedBy)

	w = env.do(t, http.MethodPost, "/api/v1/clients", map[string]interface{}{"name": "Nobody"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestClientLifecycle(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	w := env.do(t, http.MethodPost, "/api/v1/clients", map[string]interface{}{"name": "Bob", "phone": "07700 900123"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var client entity.Client
	decode(t, w, &client)
	base := "/api/v1/clients/" + client.ID.String()

	w = env.do(t, http.MethodPost, base+"/tags", map[string]string{"tag": "regular"}, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, base+"/notes", map[string]string{"text": "likes tea"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var note entity.ClientNote
	decode(t, w, &note)

	w = env.do(t, http.MethodGet, "/api/v1/clients?tag=REGULAR", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list service.ClientListResult
	decode(t, w, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)

	w = env.do(t, http.MethodDelete, base+"/notes/"+note.ID.String(), nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, base+"/tags/regular", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPut, base, map[string]string{"name": "Robert"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &client)
	assert.Equal(t, "Robert", client.Name)

	w = env.do(t, http.MethodGet, base, nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodDelete, base, nil, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, base, nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients/not-a-uuid", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/clients?segment=vip", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingCreatedIsIdempotent(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})
	booking := &entity.Booking{
		BusinessID: env.businessID,
		Customer:   entity.BookingCustomer{Name: "Alice", Email: "alice@example.com"},
		Date:       "2025-05-01",
		Status:     enum.BookingStatusCompleted,
		Service:    entity.BookingService{Name: "Cut", Price: 4500},
	}
	require.NoError(t, env.store.Bookings().Save(context.Background(), booking))

	body := map[string]string{"booking_id": booking.ID.String()}
	headers := map[string]string{"Idempotency-Key": "evt-1"}

	first := env.do(t, http.MethodPost, "/api/v1/booking-events/created", body, headers)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	var result service.BookingEventResult
	decode(t, first, &result)
	require.NotNil(t, result.ClientID)
	assert.True(t, result.Created)
	assert.Equal(t, 1, result.Stats.TotalBookings)
	assert.Equal(t, int64(4500), result.Stats.TotalSpent)

	second := env.do(t, http.MethodPost, "/api/v1/booking-events/created", body, headers)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "true", second.Header().Get("X-Idempotency-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())

	w := env.do(t, http.MethodPost, "/api/v1/booking-events/status-changed", map[string]string{"booking_id": booking.ID.String()}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &result)
	assert.Equal(t, 1, result.Stats.TotalBookings)

	w = env.do(t, http.MethodPost, "/api/v1/booking-events/status-changed", map[string]string{}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportExport(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "clients.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Name,Email,Phone,Tags\nAlice,alice@example.com,,vip;regular\nBob,,07700 900123,\nAlice 2,ALICE@example.com,,\n,,,\nNo Contact,,,\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/clients/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.ImportResult
	decode(t, w, &result)
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Duplicates)
	assert.Equal(t, 1, result.Failed)

	w = env.do(t, http.MethodGet, "/api/v1/clients/export?format=csv", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(service.ExportHeader, ","), lines[0])
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.Contains(t, w.Body.String(), "vip;regular")

	w = env.do(t, http.MethodGet, "/api/v1/clients/export?format=pdf", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRateLimitPerBusiness(t *testing.T) {
	env := newAPIEnv(t, config.RateLimitConfig{Requests: 1, Duration: 3600})

	first := env.do(t, http.MethodGet, "/api/v1/clients", nil, nil)
	assert.Equal(t, http.StatusOK, first.Code)
	second := env.do(t, http.MethodGet, "/api/v1/clients", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)

	other := &entity.Business{Name: "Other", Slug: "other", Active: true}
	require.NoError(t, env.store.Businesses().Create(context.Background(), other))
	token := env.tokenFor(t, other.ID, allPermissions...)
	w := env.do(t, http.MethodGet, "/api/v1/clients", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
}
