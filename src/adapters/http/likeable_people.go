package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"gramgram/src/domain"
)

func (s *Server) Like(w http.ResponseWriter, r *http.Request) {
	var request LikeRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, r, domain.Validation("invalid request body: %v", err))
		return
	}

	likeablePerson, err := s.likeablePersonService.Like(r.Context(), actorFrom(r), domain.LikeRequest{
		Username:           request.Username,
		AttractiveTypeCode: request.AttractiveTypeCode,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, MapLikeablePersonToResponse(*likeablePerson, s.now()))
}

func (s *Server) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	if err := s.likeablePersonService.Cancel(r.Context(), actorFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"id": id, "status": "canceled"})
}

func (s *Server) ShowModify(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	check, err := s.likeablePersonService.CanModify(r.Context(), actorFrom(r), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapLikeablePersonToResponse(check.LikeablePerson, s.now()))
}

func (s *Server) Modify(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var request ModifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.writeError(w, r, domain.Validation("invalid request body: %v", err))
		return
	}

	likeablePerson, err := s.likeablePersonService.ModifyAttractive(r.Context(), actorFrom(r), domain.ModifyRequest{
		ID:                 id,
		AttractiveTypeCode: request.AttractiveTypeCode,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapLikeablePersonToResponse(*likeablePerson, s.now()))
}

func (s *Server) ListOutgoing(w http.ResponseWriter, r *http.Request) {
	likeablePeople, err := s.likeablePersonService.ListOutgoing(r.Context(), actorFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapLikeablePeopleToResponse(likeablePeople, s.now()))
}

func (s *Server) ListIncoming(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	attractiveTypeCode, ok := s.queryInt(w, r, "attractiveTypeCode", 0)
	if !ok {
		return
	}

	sortCode, ok := s.queryInt(w, r, "sortCode", int(domain.SortDefault))
	if !ok {
		return
	}

	items, err := s.likeablePersonService.ListIncoming(r.Context(), actorFrom(r), domain.IncomingQuery{
		Gender:             params.Get("gender"),
		AttractiveTypeCode: attractiveTypeCode,
		SortCode:           domain.SortCode(sortCode),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, MapIncomingToResponse(items, s.now()))
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.writeError(w, r, domain.Validation("invalid likeable person id format"))
		return 0, false
	}
	return id, true
}

func (s *Server) queryInt(w http.ResponseWriter, r *http.Request, name string, defaultValue int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		s.writeError(w, r, domain.Validation("invalid %s format", name))
		return 0, false
	}
	return value, true
}
