package mux

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	gmux "github.com/gorilla/mux"
	"luckyman-server/internal/jwt"
	"luckyman-server/pkg/model"
	"luckyman-server/pkg/room"
)

type ctxKey int

const (
	ctxIdentityKey ctxKey = iota
)

// RoundHistory is the read side of the round store
type RoundHistory interface {
	ListRounds(ctx context.Context, roomID string, limit int) ([]*model.Round, error)
	GetRoundLog(ctx context.Context, roundID string) (json.RawMessage, error)
}

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version string
	pitBoss *room.PitBoss
	history RoundHistory

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, pitBoss *room.PitBoss, history RoundHistory) *Mux {
	this := &Mux{
		Router:  gmux.NewRouter(),
		version: version,
		pitBoss: pitBoss,
		history: history,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		rr := r.PathPrefix("/room/{id:[A-Za-z0-9_-]{1,64}}").Subrouter()
		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomID())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomIDWS())
		rr.Methods(http.MethodGet).Path("/rounds").Handler(this.getRoomIDRounds())

		r.Methods(http.MethodGet).Path("/round/{id}/log").Handler(this.getRoundIDLog())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// browsers cannot set headers on a websocket upgrade
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		identity, err := jwt.ValidIdentity(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxIdentityKey, identity)
		w.Header().Set("Luckyman-Identity", identity)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}

func identityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(ctxIdentityKey).(string)
	return identity
}
