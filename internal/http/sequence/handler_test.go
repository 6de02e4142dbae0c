package sequence_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	handler "github.com/MrJamesThe3rd/voicebill/internal/http/sequence"
	"github.com/MrJamesThe3rd/voicebill/internal/sequence"
)

const accountID = "acct-1"

func newServer(t *testing.T, setup func(m *sequence.MockStore)) http.Handler {
	t.Helper()

	store := sequence.NewMockStore(gomock.NewController(t))
	if setup != nil {
		setup(store)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithAccountID(r.Context(), accountID)))
		})
	})
	r.Route("/sequence", handler.NewHandler(sequence.NewAllocator(store)).Routes)

	return r
}

func TestHandler_Current(t *testing.T) {
	type testCase struct {
		name       string
		setupMock  func(m *sequence.MockStore)
		wantStatus int
		wantBody   string
	}

	tests := []testCase{
		{
			name: "Issued",
			setupMock: func(m *sequence.MockStore) {
				m.EXPECT().Current(gomock.Any(), accountID).Return(int64(3), "RE-", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"last":3,"prefix":"RE-","next":"RE-0004"}`,
		},
		{
			name: "Fresh",
			setupMock: func(m *sequence.MockStore) {
				m.EXPECT().Current(gomock.Any(), accountID).Return(int64(0), "", nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"last":0,"prefix":"","next":"0001"}`,
		},
		{
			name: "StoreDown",
			setupMock: func(m *sequence.MockStore) {
				m.EXPECT().Current(gomock.Any(), accountID).Return(int64(0), "", errors.New("dial tcp: refused"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.setupMock)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sequence/", nil))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.NotContains(t, rec.Body.String(), "refused")

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestHandler_SetPrefix(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		srv := newServer(t, func(m *sequence.MockStore) {
			m.EXPECT().SetPrefix(gomock.Any(), accountID, "RE-2025/").Return(nil)
		})

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/sequence/prefix", strings.NewReader(`{"prefix":"RE-2025/"}`)))

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Invalid", func(t *testing.T) {
		srv := newServer(t, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/sequence/prefix", strings.NewReader(`{"prefix":"RE 2025"}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
