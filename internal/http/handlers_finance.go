package http

import (
	"net/http"

	"finebank/internal/core"
	"finebank/internal/event"
)

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	if err := s.store.EnsureSeeded(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}

	state, err := s.store.State(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	if err := s.store.ResetUser(r.Context(), user.ID); err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityLedger, event.ActionReset, user.ID, "")

	state, err := s.store.State(r.Context(), user.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var patch core.SettingsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}
	if err := patch.Validate(); err != nil {
		writeError(w, core.WrapValidation(err))
		return
	}

	settings, err := s.store.UpdateSettings(r.Context(), user.ID, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntitySettings, event.ActionUpdate, user.ID, "")
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var c core.Category
	if err := decodeJSON(w, r, &c); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.store.CreateCategory(r.Context(), user.ID, c)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityCategory, event.ActionCreate, user.ID, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id := r.PathValue("id")

	var patch core.CategoryPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.store.UpdateCategory(r.Context(), user.ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityCategory, event.ActionUpdate, user.ID, id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id := r.PathValue("id")

	if err := s.store.DeleteCategory(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityCategory, event.ActionDelete, user.ID, id)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), user.ID, t)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityTransaction, event.ActionCreate, user.ID, created.ID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id := r.PathValue("id")

	var patch core.TransactionPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.store.UpdateTransaction(r.Context(), user.ID, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityTransaction, event.ActionUpdate, user.ID, id)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())
	id := r.PathValue("id")

	if err := s.store.DeleteTransaction(r.Context(), user.ID, id); err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityTransaction, event.ActionDelete, user.ID, id)
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handlePutBudget(w http.ResponseWriter, r *http.Request) {
	user, _ := userFrom(r.Context())

	var b core.Budget
	if err := decodeJSON(w, r, &b); err != nil {
		writeError(w, err)
		return
	}

	saved, err := s.store.PutBudget(r.Context(), user.ID, b)
	if err != nil {
		writeError(w, err)
		return
	}
	s.publish(r.Context(), event.EntityBudget, event.ActionUpdate, user.ID, saved.ID)
	writeJSON(w, http.StatusOK, saved)
}
