package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/relstore/relstore/adapters/auth"
	"github.com/relstore/relstore/adapters/schemastatic"
	"github.com/relstore/relstore/pkg/jsonapi"
	"github.com/relstore/relstore/ports"
)

// authCookie is the session cookie name.
const authCookie = "auth-token"

type signupRequest struct {
	Name     string `json:"name"`
	Handle   string `json:"handle"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

// handleSignup registers a new user: the password is hashed, the user is
// stored as a core/user resource, and the handle is claimed in the index.
func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req signupRequest
	if err := json.Unmarshal(body, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("malformed signup body"))
		return
	}
	if req.Handle == "" || req.Password == "" {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("handle and password are required"))
		return
	}

	ctx := r.Context()
	if _, err := h.handles.Get(ctx, req.Handle); err == nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("handle already taken"))
		return
	} else if !errors.Is(err, ports.ErrNotFound) {
		h.writeStoreError(w, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	sub := jsonapi.Submission{Data: jsonapi.SubmissionData{
		Type: schemastatic.TypeUser,
		Attributes: map[string]any{
			"name":   req.Name,
			"handle": req.Handle,
			"email":  req.Email,
			"hash":   string(hash),
		},
	}}

	id, err := h.store.Create(ctx, sub)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	if err := h.handles.Set(ctx, req.Handle, id); err != nil {
		// Lost the race for the handle; the orphan user is removed.
		h.store.Remove(ctx, id)
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("handle already taken"))
		return
	}

	doc, err := h.store.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	w.Header().Set("Location", jsonapi.ResourceHref(id))
	jsonapi.WriteResource(w, http.StatusCreated, publicUser(doc))
}

// handleLogin verifies credentials and sets the session cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req loginRequest
	if err := json.Unmarshal(body, &req); err != nil {
		jsonapi.WriteError(w, jsonapi.ErrBadRequest("malformed login body"))
		return
	}

	ctx := r.Context()
	id, err := h.handles.Get(ctx, req.Handle)
	if err != nil {
		jsonapi.WriteError(w, jsonapi.ErrUnauthorized("unknown handle or wrong password"))
		return
	}

	doc, err := h.store.Get(ctx, id)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	hash, _ := doc.Attributes["hash"].(string)
	if hash == "" || !h.hasher.Compare([]byte(hash), req.Password) {
		jsonapi.WriteError(w, jsonapi.ErrUnauthorized("unknown handle or wrong password"))
		return
	}

	token, expiresAt, err := h.tokens.GenerateToken(id, req.Handle)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	jsonapi.WriteResource(w, http.StatusOK, publicUser(doc))
}

// handleLogout clears the session cookie.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	jsonapi.WriteNoContent(w)
}

// handleMe returns the logged-in user's document.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.sessionClaims(r)
	if !ok {
		jsonapi.WriteError(w, jsonapi.ErrUnauthorized(""))
		return
	}

	doc, err := h.store.Get(r.Context(), claims.UserID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	jsonapi.WriteResource(w, http.StatusOK, publicUser(doc))
}

// handleIsLogged reports whether the request carries a valid session.
func (h *Handler) handleIsLogged(w http.ResponseWriter, r *http.Request) {
	_, ok := h.sessionClaims(r)
	jsonapi.WriteMeta(w, http.StatusOK, jsonapi.Meta{"logged": ok})
}

func (h *Handler) sessionClaims(r *http.Request) (*auth.Claims, bool) {
	cookie, err := r.Cookie(authCookie)
	if err != nil {
		return nil, false
	}
	claims, err := h.tokens.ValidateToken(cookie.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

// publicUser strips the password hash from a rendered user document.
func publicUser(doc jsonapi.Resource) jsonapi.Resource {
	attrs := make(map[string]any, len(doc.Attributes))
	for k, v := range doc.Attributes {
		if k == "hash" {
			continue
		}
		attrs[k] = v
	}
	doc.Attributes = attrs
	return doc
}
