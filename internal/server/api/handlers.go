package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/lojabox/lojabox/internal/common"
	"github.com/lojabox/lojabox/internal/server/models"
	"github.com/lojabox/lojabox/internal/server/services"
)

// maxAvatarFormSize caps the in-memory portion of a profile update form.
const maxAvatarFormSize = 32 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type profileResponse struct {
	ID         string    `json:"id"`
	Nome       string    `json:"nome"`
	Email      string    `json:"email"`
	FotoPerfil string    `json:"foto_perfil,omitempty"`
	Version    int64     `json:"version"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProfileResponse(p *models.Profile) profileResponse {
	return profileResponse{
		ID:         p.ID,
		Nome:       p.Name,
		Email:      p.Email,
		FotoPerfil: p.AvatarURL,
		Version:    p.Version,
		UpdatedAt:  p.UpdatedAt,
	}
}

type productResponse struct {
	ID        string    `json:"id"`
	Nome      string    `json:"nome"`
	Preco     float64   `json:"preco"`
	Descricao string    `json:"descricao,omitempty"`
	Imagem    string    `json:"imagem,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// --- auth ---

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Nome     string `json:"nome"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Nome, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		s.logger.Error(r.Context(), "register failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":    user.ID,
		"email": user.Email,
		"nome":  user.Name,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) || errors.Is(err, common.ErrRefreshTokenExpired) {
			writeError(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		s.logger.Error(r.Context(), "token refresh failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.users.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- profile ---

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	profile, err := s.profiles.EnsureProfile(r.Context(), session)
	if err != nil {
		s.logger.Error(r.Context(), "profile fetch failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (s *Server) putProfile(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarFormSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	nome := r.FormValue("nome")
	email := r.FormValue("email")
	if nome == "" || email == "" {
		writeError(w, http.StatusBadRequest, "nome and email are required")
		return
	}

	version, err := strconv.ParseInt(r.FormValue("version"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid version")
		return
	}

	var image *services.ImageUpload
	file, header, err := r.FormFile("foto")
	switch {
	case err == nil:
		defer file.Close()
		image = &services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	case errors.Is(err, http.ErrMissingFile):
		// no new avatar submitted
	default:
		writeError(w, http.StatusBadRequest, "invalid foto field")
		return
	}

	profile, err := s.profiles.UpdateProfile(r.Context(), session, version,
		services.ProfileFields{Name: nome, Email: email}, image)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			writeError(w, http.StatusConflict, "profile was changed by another request")
			return
		}
		s.logger.Error(r.Context(), "profile update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(profile))
}

// --- products ---

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	session, ok := sessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing session")
		return
	}

	products, err := s.products.ListByUser(r.Context(), session)
	if err != nil {
		s.logger.Error(r.Context(), "product listing failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, productResponse{
			ID:        p.ID,
			Nome:      p.Name,
			Preco:     p.Price,
			Descricao: p.Description,
			Imagem:    p.ImageURL,
			CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, out)
}
