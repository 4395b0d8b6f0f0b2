package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moitinho/rifa-api/internal/api/middleware"
	"github.com/moitinho/rifa-api/internal/domain"
	"github.com/moitinho/rifa-api/internal/pkg/jwthelper"
	"github.com/moitinho/rifa-api/internal/service"
)

type stubRaffleService struct {
	raffle    domain.Raffle
	createErr error

	owned []domain.Raffle

	detail    domain.RaffleDetail
	detailErr error
	caller    domain.Identity

	listings    []domain.RaffleListing
	listingsErr error

	updateErr error
	deleteErr error

	tickets    []domain.Ticket
	ticketsErr error
}

func (s *stubRaffleService) CreateRaffle(ctx context.Context, raffle domain.Raffle) (domain.Raffle, error) {
	if s.createErr != nil {
		return domain.Raffle{}, s.createErr
	}
	raffle.ID = 1

	return raffle, nil
}

func (s *stubRaffleService) ListOwnedRaffles(ctx context.Context, userID uint) ([]domain.Raffle, error) {
	return s.owned, nil
}

func (s *stubRaffleService) GetRaffle(ctx context.Context, id uint, caller domain.Identity) (domain.RaffleDetail, error) {
	s.caller = caller

	return s.detail, s.detailErr
}

func (s *stubRaffleService) ListPublicRaffles(ctx context.Context) ([]domain.RaffleListing, error) {
	return s.listings, s.listingsErr
}

func (s *stubRaffleService) UpdateRaffle(ctx context.Context, id, userID uint, update domain.RaffleUpdate) error {
	return s.updateErr
}

func (s *stubRaffleService) DeleteRaffle(ctx context.Context, id, userID uint) error {
	return s.deleteErr
}

func (s *stubRaffleService) ListTickets(ctx context.Context, raffleID, userID uint) ([]domain.Ticket, error) {
	return s.tickets, s.ticketsErr
}

const raffleTestSigningKey = "test-signing-key"

func newRaffleTestRouter(svc RaffleService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewRaffleHandler(svc)
	authenticator := middleware.NewAuthenticator(raffleTestSigningKey)

	router := gin.New()
	router.GET("/api/v1/raffles/public", handler.HandleListPublicRaffles)
	router.GET("/api/v1/raffles/:raffleID", authenticator.SoftAuth(), handler.HandleGetRaffle)

	authed := router.Group("/api/v1", authenticator.VerifyJWT())
	authed.POST("/raffles", handler.HandleCreateRaffle)
	authed.GET("/raffles", handler.HandleListOwnedRaffles)
	authed.PUT("/raffles/:raffleID", handler.HandleUpdateRaffle)
	authed.DELETE("/raffles/:raffleID", handler.HandleDeleteRaffle)
	authed.GET("/tickets/raffle/:raffleID", handler.HandleListTickets)

	return router
}

func authedRequest(t *testing.T, method, path, body string) *http.Request {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	token, err := jwthelper.GenerateToken([]byte(raffleTestSigningKey), 7, "a@b.com", "")
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func TestHandleCreateRaffle(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{})

	body := `{
		"titulo": "Rifa do bairro",
		"descricao": "Prêmio surpresa",
		"valor_bilhete": 5.00,
		"data_sorteio": "2026-09-07T00:00:00Z",
		"numero_max": 10
	}`
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodPost, "/api/v1/raffles", body))

	assert.Equal(t, http.StatusCreated, resp.Code)
	assert.Contains(t, resp.Body.String(), `"titulo":"Rifa do bairro"`)
}

func TestHandleCreateRaffle_RequiresAuth(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/raffles", strings.NewReader(`{}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHandleCreateRaffle_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing title", body: `{"valor_bilhete":5,"data_sorteio":"2026-09-07T00:00:00Z","numero_max":10}`},
		{name: "missing price", body: `{"titulo":"Rifa","data_sorteio":"2026-09-07T00:00:00Z","numero_max":10}`},
		{name: "negative price", body: `{"titulo":"Rifa","valor_bilhete":-1,"data_sorteio":"2026-09-07T00:00:00Z","numero_max":10}`},
		{name: "zero max number", body: `{"titulo":"Rifa","valor_bilhete":5,"data_sorteio":"2026-09-07T00:00:00Z","numero_max":0}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRaffleTestRouter(&stubRaffleService{})

			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, authedRequest(t, http.MethodPost, "/api/v1/raffles", tt.body))

			assert.Equal(t, http.StatusBadRequest, resp.Code)
		})
	}
}

func TestHandleListPublicRaffles_NoAuthRequired(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{
		listings: []domain.RaffleListing{
			{Raffle: domain.Raffle{ID: 1, Title: "Rifa", MaxNumber: 10}, Sold: 4, Available: 6},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/raffles/public", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"vendidos":4`)
	assert.Contains(t, resp.Body.String(), `"disponiveis":6`)
}

func TestHandleGetRaffle_AnonymousAllowed(t *testing.T) {
	svc := &stubRaffleService{
		detail: domain.RaffleDetail{
			Raffle:           domain.Raffle{ID: 1, Title: "Rifa", MaxNumber: 3},
			OccupiedNumbers:  []int{2},
			AvailableNumbers: []int{1, 3},
		},
	}
	router := newRaffleTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/raffles/1", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"numeros_ocupados":[2]`)
	assert.Contains(t, resp.Body.String(), `"numeros_disponiveis":[1,3]`)
	assert.Equal(t, domain.Anonymous(), svc.caller)
}

func TestHandleGetRaffle_CarriesIdentity(t *testing.T) {
	svc := &stubRaffleService{}
	router := newRaffleTestRouter(svc)

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodGet, "/api/v1/raffles/1", ""))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, domain.Authenticated(7), svc.caller)
}

func TestHandleGetRaffle_NotFound(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{detailErr: service.ErrRaffleNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/raffles/99", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandleGetRaffle_InvalidID(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/raffles/abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleUpdateRaffle_NotOwned(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{updateErr: service.ErrRaffleNotFound})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodPut, "/api/v1/raffles/1", `{"titulo":"Nova"}`))

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandleDeleteRaffle(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodDelete, "/api/v1/raffles/1", ""))

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHandleListTickets(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{
		tickets: []domain.Ticket{
			{Number: 3, BuyerName: "Ana", Status: domain.PaymentPaid, ReservedAt: time.Now()},
		},
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodGet, "/api/v1/tickets/raffle/1", ""))

	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"nome_comprador":"Ana"`)
}

func TestHandleListTickets_NotOwner(t *testing.T) {
	router := newRaffleTestRouter(&stubRaffleService{ticketsErr: service.ErrNotRaffleOwner})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, authedRequest(t, http.MethodGet, "/api/v1/tickets/raffle/1", ""))

	assert.Equal(t, http.StatusForbidden, resp.Code)
}
