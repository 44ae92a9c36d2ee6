package mux

import (
	"errors"
	"net/http"

	gmux "github.com/gorilla/mux"
	"luckyman-server/pkg/model"
	"luckyman-server/pkg/room"
)

func (m *Mux) getRoomID() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dealer, found := m.pitBoss.Dealer(gmux.Vars(r)["id"])
		if !found {
			writeJSONError(w, http.StatusNotFound, nil)
			return
		}

		state, err := dealer.State(r.Context())
		if err != nil {
			if errors.Is(err, room.ErrRoomClosed) {
				writeJSONError(w, http.StatusNotFound, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, state)
	}
}

func (m *Mux) getRoomIDRounds() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := parseRows(r)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err)
			return
		}

		rounds, err := m.history.ListRounds(r.Context(), gmux.Vars(r)["id"], rows)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, rounds)
	}
}

func (m *Mux) getRoundIDLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log, err := m.history.GetRoundLog(r.Context(), gmux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, model.ErrRoundNotFound) {
				writeJSONError(w, http.StatusNotFound, nil)
				return
			}

			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusOK, log)
	}
}
