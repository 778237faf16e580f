package ginserver

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"iasrentals/internal/app/dto"
	authsvc "iasrentals/internal/app/services/auth"
	"iasrentals/internal/app/wiring"
	"iasrentals/internal/infra/config"
	"iasrentals/internal/infra/obs"
	"iasrentals/internal/infra/security"
	"iasrentals/internal/infra/storage/memory"
)

const visitDate = "2030-01-15"

type fakeUploader struct {
	keys []string
}

func (u *fakeUploader) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if _, err := io.ReadAll(r); err != nil {
		return "", err
	}
	u.keys = append(u.keys, key)
	return "https://cdn.example/" + key, nil
}

type testServer struct {
	router   *gin.Engine
	uploader *fakeUploader
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	uploader := &fakeUploader{}
	buses := wiring.NewBuses(wiring.Deps{
		UoW:            store.Factory(),
		Outbox:         memory.NewOutbox(nil, nil),
		Idempotency:    memory.NewIdempotencyStore(),
		IdempotencyTTL: time.Hour,
		Uploader:       uploader,
	})
	service := &authsvc.Service{
		Users:      store.Users,
		Sessions:   store.Sessions,
		Passwords:  security.BcryptHasher{Cost: bcrypt.MinCost},
		Tokens:     security.RandomTokenGenerator{Prefix: "ias_"},
		SessionTTL: time.Hour,
	}
	router := NewRouter(config.Config{Env: "test"}, obs.Middleware{}, obs.HealthHandlers{Version: "test"}, Handlers{
		Auth:           AuthHandler{Service: service},
		Profile:        ProfileHandler{Service: service},
		Listings:       ListingHandler{Queries: buses.Queries},
		Properties:     PropertyHandler{Commands: buses.Commands, Queries: buses.Queries},
		Stats:          StatsHandler{Queries: buses.Queries},
		Visits:         VisitHandler{Commands: buses.Commands, Queries: buses.Queries},
		Reviews:        ReviewHandler{Commands: buses.Commands, Queries: buses.Queries},
		AuthMiddleware: AuthMiddleware{Service: service}.Handle,
	})
	return &testServer{router: router, uploader: uploader}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) register(t *testing.T, name, email, role string) dto.RegisterResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp dto.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func (s *testServer) createProperty(t *testing.T, token string) dto.PropertyDetails {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/properties", token, gin.H{
		"title": "Sunny flat", "description": "Close to Copou park", "address": "Str. Lapusneanu 10",
		"location": "Iasi", "price": 450, "type": "rent", "rooms": 2, "bathrooms": 1, "surface": 54,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var prop dto.PropertyDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &prop))
	return prop
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/livez", "", nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/readyz", "", nil).Code)
	rec := s.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestAuthAndProfileFlow(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "Ana Pop", "ana@example.com", "buyer")
	assert.Equal(t, "buyer", reg.User.Role)

	dup := s.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ana", "email": "ANA@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusConflict, dup.Code)

	bad := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	login := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, login.Code)
	token := decode[dto.AuthResponse](t, login).Token

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/profile", "", nil).Code)

	upd := s.do(t, http.MethodPut, "/api/profile", token, gin.H{"phone": "0740000000"})
	require.Equal(t, http.StatusOK, upd.Code, upd.Body.String())
	assert.Equal(t, "0740000000", decode[dto.UserProfile](t, upd).Phone)

	wrong := s.do(t, http.MethodPost, "/api/profile/change-password", token, gin.H{
		"current_password": "wrong-one", "new_password": "another123",
	})
	assert.Equal(t, http.StatusBadRequest, wrong.Code)

	me := s.do(t, http.MethodGet, "/api/profile/me", token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Equal(t, "ana@example.com", decode[dto.User](t, me).Email)

	logout := s.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusNoContent, logout.Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/profile/me", token, nil).Code)
}

func TestDeactivateRevokesSessions(t *testing.T) {
	s := newTestServer(t)
	reg := s.register(t, "Dan", "dan@example.com", "buyer")

	rec := s.do(t, http.MethodPost, "/api/profile/deactivate", reg.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.StatusMessage](t, rec).Success)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/profile", reg.Token, nil).Code)
	login := s.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"email": "dan@example.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, login.Code)
}

func TestPropertyCreationRequiresOwner(t *testing.T) {
	s := newTestServer(t)
	buyer := s.register(t, "Bob", "bob@example.com", "buyer")
	owner := s.register(t, "Olga", "olga@example.com", "owner")

	rec := s.do(t, http.MethodPost, "/api/properties", buyer.Token, gin.H{
		"title": "Flat", "address": "Str. X 1", "location": "Iasi", "price": 300, "type": "rent", "rooms": 1,
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	prop := s.createProperty(t, owner.Token)
	assert.Equal(t, "Iasi", prop.Location)
	assert.Equal(t, owner.User.ID, prop.Owner.ID)

	got := s.do(t, http.MethodGet, "/api/properties/"+prop.ID, "", nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "Sunny flat", decode[dto.PropertyDetails](t, got).Title)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/properties/missing", "", nil).Code)

	byOwner := s.do(t, http.MethodGet, "/api/properties/owner/"+owner.User.ID, "", nil)
	require.Equal(t, http.StatusOK, byOwner.Code)
	assert.Equal(t, 1, decode[dto.ListingCollection](t, byOwner).Total)

	listings := s.do(t, http.MethodGet, "/api/listings?search=copou&price=0-500&forRent=true", "", nil)
	require.Equal(t, http.StatusOK, listings.Code)
	collection := decode[dto.ListingCollection](t, listings)
	require.Len(t, collection.Listings, 1)
	assert.Equal(t, "450 RON/lună", collection.Listings[0].Price)

	none := s.do(t, http.MethodGet, "/api/listings?forSale=true", "", nil)
	assert.Equal(t, 0, decode[dto.ListingCollection](t, none).Total)

	stats := s.do(t, http.MethodGet, "/api/stats", "", nil)
	require.Equal(t, http.StatusOK, stats.Code)
	assert.Equal(t, 1, decode[dto.PlatformStats](t, stats).TotalListings)
}

func TestPropertyImageUpload(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olga", "olga@example.com", "owner")
	other := s.register(t, "Oana", "oana@example.com", "owner")
	prop := s.createProperty(t, owner.Token)

	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
	upload := func(token string, payload []byte) *httptest.ResponseRecorder {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("file", "front.png")
		require.NoError(t, err)
		_, err = part.Write(payload)
		require.NoError(t, err)
		require.NoError(t, w.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/properties/"+prop.ID+"/images", &body)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, upload(other.Token, png).Code)
	assert.Equal(t, http.StatusBadRequest, upload(owner.Token, []byte("plain text")).Code)

	rec := upload(owner.Token, png)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	img := decode[dto.PropertyImage](t, rec)
	assert.True(t, img.IsPrimary)
	require.Len(t, s.uploader.keys, 1)
	assert.Contains(t, s.uploader.keys[0], prop.ID)
}

func TestVisitLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olga", "olga@example.com", "owner")
	buyer := s.register(t, "Bob", "bob@example.com", "buyer")
	rival := s.register(t, "Bea", "bea@example.com", "buyer")
	prop := s.createProperty(t, owner.Token)

	body := gin.H{"property_id": prop.ID, "visit_date": visitDate, "visit_time": "10:00"}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/api/visits", "", body).Code)

	created := s.do(t, http.MethodPost, "/api/visits", buyer.Token, body)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	visit := decode[dto.Visit](t, created)
	assert.Equal(t, "scheduled", visit.Status)
	assert.Equal(t, "Sunny flat", visit.PropertyTitle)

	clash := s.do(t, http.MethodPost, "/api/visits", rival.Token, body)
	assert.Equal(t, http.StatusConflict, clash.Code)

	offGrid := s.do(t, http.MethodPost, "/api/visits", rival.Token, gin.H{
		"property_id": prop.ID, "visit_date": visitDate, "visit_time": "10:15",
	})
	assert.Equal(t, http.StatusBadRequest, offGrid.Code)

	slotsRec := s.do(t, http.MethodGet, "/api/visits/available/"+prop.ID+"?date="+visitDate, "", nil)
	require.Equal(t, http.StatusOK, slotsRec.Code)
	slots := decode[dto.AvailableSlots](t, slotsRec)
	require.Len(t, slots.Slots, 14)
	for _, slot := range slots.Slots {
		assert.Equal(t, slot.Time != "10:00", slot.Available, slot.Time)
	}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/visits/available/"+prop.ID, "", nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/visits/available/missing?date="+visitDate, "", nil).Code)

	mine := s.do(t, http.MethodGet, "/api/visits/my-visits", owner.Token, nil)
	require.Equal(t, http.StatusOK, mine.Code)
	assert.Len(t, decode[[]dto.Visit](t, mine), 1)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/visits/"+visit.ID, rival.Token, nil).Code)
	cancelled := s.do(t, http.MethodDelete, "/api/visits/"+visit.ID, owner.Token, nil)
	require.Equal(t, http.StatusOK, cancelled.Code, cancelled.Body.String())
	assert.True(t, decode[dto.StatusMessage](t, cancelled).Success)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodDelete, "/api/visits/"+visit.ID, buyer.Token, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/visits/missing", buyer.Token, nil).Code)

	again := s.do(t, http.MethodPost, "/api/visits", rival.Token, body)
	assert.Equal(t, http.StatusCreated, again.Code, "a cancelled slot can be booked again")
}

func TestScheduleVisitIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olga", "olga@example.com", "owner")
	buyer := s.register(t, "Bob", "bob@example.com", "buyer")
	prop := s.createProperty(t, owner.Token)

	body := gin.H{"property_id": prop.ID, "visit_date": visitDate, "visit_time": "11:30"}
	first := s.do(t, http.MethodPost, "/api/visits", buyer.Token, body, "Idempotency-Key", "visit-req-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	second := s.do(t, http.MethodPost, "/api/visits", buyer.Token, body, "Idempotency-Key", "visit-req-1")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	assert.Equal(t, decode[dto.Visit](t, first).ID, decode[dto.Visit](t, second).ID)

	carol := s.register(t, "Carol", "carol@example.com", "buyer")
	taken := s.do(t, http.MethodPost, "/api/visits", carol.Token, body, "Idempotency-Key", "visit-req-1")
	assert.Equal(t, http.StatusConflict, taken.Code, taken.Body.String())

	other := gin.H{"property_id": prop.ID, "visit_date": visitDate, "visit_time": "12:00"}
	own := s.do(t, http.MethodPost, "/api/visits", carol.Token, other, "Idempotency-Key", "visit-req-1")
	require.Equal(t, http.StatusCreated, own.Code, own.Body.String())
	got := decode[dto.Visit](t, own)
	assert.NotEqual(t, decode[dto.Visit](t, first).ID, got.ID)
	assert.Equal(t, carol.User.ID, got.BuyerID)
	assert.Equal(t, "12:00", got.VisitTime)
}

func TestCreateReviewIdempotencyIsPerBuyer(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olga", "olga@example.com", "owner")
	bob := s.register(t, "Bob", "bob@example.com", "buyer")
	carol := s.register(t, "Carol", "carol@example.com", "buyer")
	prop := s.createProperty(t, owner.Token)

	for i, buyer := range []dto.RegisterResponse{bob, carol} {
		slot := []string{"09:00", "09:30"}[i]
		rec := s.do(t, http.MethodPost, "/api/visits", buyer.Token, gin.H{
			"property_id": prop.ID, "visit_date": visitDate, "visit_time": slot,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	review := gin.H{"owner_id": owner.User.ID, "property_id": prop.ID, "rating": 4}
	first := s.do(t, http.MethodPost, "/api/reviews", bob.Token, review, "Idempotency-Key", "review-1")
	require.Equal(t, http.StatusCreated, first.Code, first.Body.String())
	replayed := s.do(t, http.MethodPost, "/api/reviews", bob.Token, review, "Idempotency-Key", "review-1")
	require.Equal(t, http.StatusCreated, replayed.Code, replayed.Body.String())
	assert.Equal(t, decode[dto.Review](t, first).ID, decode[dto.Review](t, replayed).ID)

	second := s.do(t, http.MethodPost, "/api/reviews", carol.Token, review, "Idempotency-Key", "review-1")
	require.Equal(t, http.StatusCreated, second.Code, second.Body.String())
	got := decode[dto.Review](t, second)
	assert.NotEqual(t, decode[dto.Review](t, first).ID, got.ID)
	assert.Equal(t, "Carol", got.BuyerName)

	summary := s.do(t, http.MethodGet, "/api/reviews/owner/"+owner.User.ID, "", nil)
	require.Equal(t, http.StatusOK, summary.Code)
	assert.Equal(t, 2, decode[dto.OwnerReviews](t, summary).TotalReviews)
}

func TestReviewGateOverHTTP(t *testing.T) {
	s := newTestServer(t)
	owner := s.register(t, "Olga", "olga@example.com", "owner")
	buyer := s.register(t, "Bob", "bob@example.com", "buyer")
	prop := s.createProperty(t, owner.Token)

	review := gin.H{"owner_id": owner.User.ID, "property_id": prop.ID, "rating": 5, "comment": "Great host"}

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPost, "/api/reviews", owner.Token, review).Code)
	noVisit := s.do(t, http.MethodPost, "/api/reviews", buyer.Token, review)
	require.Equal(t, http.StatusBadRequest, noVisit.Code)
	assert.Contains(t, noVisit.Body.String(), "must have visited")

	visit := s.do(t, http.MethodPost, "/api/visits", buyer.Token, gin.H{
		"property_id": prop.ID, "visit_date": visitDate, "visit_time": "09:00",
	})
	require.Equal(t, http.StatusCreated, visit.Code)
	visitID := decode[dto.Visit](t, visit).ID
	completed := s.do(t, http.MethodPost, "/api/visits/"+visitID+"/complete", owner.Token, nil)
	require.Equal(t, http.StatusOK, completed.Code, completed.Body.String())
	assert.Equal(t, "completed", decode[dto.Visit](t, completed).Status)

	badRating := gin.H{"owner_id": owner.User.ID, "property_id": prop.ID, "rating": 6}
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/reviews", buyer.Token, badRating).Code)

	created := s.do(t, http.MethodPost, "/api/reviews", buyer.Token, review)
	require.Equal(t, http.StatusCreated, created.Code, created.Body.String())
	got := decode[dto.Review](t, created)
	assert.Equal(t, "Bob", got.BuyerName)
	assert.Equal(t, visitID, got.VisitID)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/reviews", buyer.Token, review).Code)

	ownerReviews := s.do(t, http.MethodGet, "/api/reviews/owner/"+owner.User.ID, "", nil)
	require.Equal(t, http.StatusOK, ownerReviews.Code)
	summary := decode[dto.OwnerReviews](t, ownerReviews)
	assert.Equal(t, 1, summary.TotalReviews)
	assert.InDelta(t, 5.0, summary.AverageRating, 0.001)

	byProperty := s.do(t, http.MethodGet, "/api/reviews/property/"+prop.ID, "", nil)
	require.Equal(t, http.StatusOK, byProperty.Code)
	assert.Len(t, decode[[]dto.Review](t, byProperty), 1)

	buyerSummary := s.do(t, http.MethodGet, "/api/reviews/owner/"+buyer.User.ID, "", nil)
	require.Equal(t, http.StatusOK, buyerSummary.Code)
	assert.Zero(t, decode[dto.OwnerReviews](t, buyerSummary).TotalReviews)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/reviews/owner/missing-user", "", nil).Code)
}

func TestExtractBearerToken(t *testing.T) {
	assert.Equal(t, "abc", extractBearerToken("Bearer abc"))
	assert.Equal(t, "abc", extractBearerToken("bearer   abc "))
	assert.Empty(t, extractBearerToken("Basic abc"))
	assert.Empty(t, extractBearerToken(""))
}
