package account_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/voicebill/internal/account"
	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	"github.com/MrJamesThe3rd/voicebill/internal/customer"
	handler "github.com/MrJamesThe3rd/voicebill/internal/http/account"
	"github.com/MrJamesThe3rd/voicebill/internal/invoice"
)

const accountID = "acct-1"

type mocks struct {
	repo      *account.MockRepository
	customers *account.MockCustomerLister
	invoices  *account.MockInvoiceLister
}

func newServer(t *testing.T, setup func(m mocks)) http.Handler {
	t.Helper()

	ctrl := gomock.NewController(t)
	m := mocks{
		repo:      account.NewMockRepository(ctrl),
		customers: account.NewMockCustomerLister(ctrl),
		invoices:  account.NewMockInvoiceLister(ctrl),
	}

	if setup != nil {
		setup(m)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithAccountID(r.Context(), accountID)))
		})
	})
	r.Route("/account", handler.NewHandler(account.NewService(m.repo, m.customers, m.invoices)).Routes)

	return r
}

func TestHandler_Save(t *testing.T) {
	type testCase struct {
		name       string
		body       string
		setupMock  func(m mocks)
		wantStatus int
	}

	tests := []testCase{
		{
			name: "NormalizesBankDetails",
			body: `{"company_name":"Praxis Sonnenschein","iban":"de89 3704 0044 0532 0130 00","bic":" cobadeffxxx"}`,
			setupMock: func(m mocks) {
				m.repo.EXPECT().
					UpsertProfile(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, p *account.Profile) error {
						assert.Equal(t, accountID, p.AccountID)
						assert.Equal(t, "DE89370400440532013000", p.IBAN)
						assert.Equal(t, "COBADEFFXXX", p.BIC)
						assert.Equal(t, account.DefaultCountry, p.Country)
						return nil
					})
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingCompany",
			body:       `{"city":"Berlin"}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.setupMock)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/account/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestHandler_Get_NoProfile(t *testing.T) {
	srv := newServer(t, func(m mocks) {
		m.repo.EXPECT().GetProfile(gomock.Any(), accountID).Return(nil, account.ErrNotFound)
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Export(t *testing.T) {
	srv := newServer(t, func(m mocks) {
		m.repo.EXPECT().GetProfile(gomock.Any(), accountID).Return(nil, account.ErrNotFound)
		m.customers.EXPECT().List(gomock.Any(), accountID).Return([]*customer.Customer{{ID: uuid.New(), Name: "Max Mustermann"}}, nil)
		m.invoices.EXPECT().List(gomock.Any(), accountID, invoice.ListFilter{}).Return([]*invoice.Invoice{{ID: uuid.New(), Number: "0004"}}, nil)
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/account/export", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "voicebill-export-")

	var got struct {
		Profile   any              `json:"profile"`
		Customers []map[string]any `json:"customers"`
		Invoices  []map[string]any `json:"invoices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Nil(t, got.Profile)
	require.Len(t, got.Customers, 1)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, "0004", got.Invoices[0]["number"])
}

func TestHandler_Erase(t *testing.T) {
	srv := newServer(t, func(m mocks) {
		m.repo.EXPECT().EraseAccount(gomock.Any(), accountID).Return(nil)
	})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/account/", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
