package matching_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/voicebill/internal/auth"
	handler "github.com/MrJamesThe3rd/voicebill/internal/http/matching"
	"github.com/MrJamesThe3rd/voicebill/internal/matching"
)

const accountID = "acct-1"

func newServer(t *testing.T, setup func(m *matching.MockRepository)) http.Handler {
	t.Helper()

	repo := matching.NewMockRepository(gomock.NewController(t))
	if setup != nil {
		setup(repo)
	}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithAccountID(r.Context(), accountID)))
		})
	})
	r.Route("/mappings", handler.NewHandler(matching.NewService(repo)).Routes)

	return r
}

func TestHandler_Suggest(t *testing.T) {
	type testCase struct {
		name       string
		query      string
		setupMock  func(m *matching.MockRepository)
		wantStatus int
		wantLabel  string
	}

	tests := []testCase{
		{
			name:  "Known",
			query: "?spoken=Massage",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindLabel(gomock.Any(), accountID, "Massage").Return("Klassische Massage (60 min)", nil)
			},
			wantStatus: http.StatusOK,
			wantLabel:  "Klassische Massage (60 min)",
		},
		{
			name:  "Unknown",
			query: "?spoken=Yoga",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().FindLabel(gomock.Any(), accountID, "Yoga").Return("", nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "MissingParameter",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, tt.setupMock)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mappings/suggest"+tt.query, nil))

			require.Equal(t, tt.wantStatus, rec.Code)

			if tt.wantStatus == http.StatusOK {
				var got struct {
					Label string `json:"label"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
				assert.Equal(t, tt.wantLabel, got.Label)
			}
		})
	}
}

func TestHandler_Learn(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		srv := newServer(t, func(m *matching.MockRepository) {
			m.EXPECT().CreateMapping(gomock.Any(), accountID, "massage", "Klassische Massage (60 min)").Return(nil)
		})

		body := `{"pattern":"massage","label":"Klassische Massage (60 min)"}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mappings/", strings.NewReader(body)))

		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("MissingLabel", func(t *testing.T) {
		srv := newServer(t, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mappings/", strings.NewReader(`{"pattern":"massage"}`)))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
