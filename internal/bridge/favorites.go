package bridge

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/session"
)

// FavoriteStore persists favorite chats per session. *store.DB satisfies it.
type FavoriteStore interface {
	AddFavorite(session, chatID string) (bool, error)
	RemoveFavorite(session, chatID string) (bool, error)
	IsFavorite(session, chatID string) (bool, error)
	ListFavorites(session string) ([]string, error)
}

// Favorites serves /api/favorites.
type Favorites struct {
	store  FavoriteStore
	logger *zap.Logger
}

// NewFavorites creates the favorites handlers.
func NewFavorites(s FavoriteStore, logger *zap.Logger) *Favorites {
	return &Favorites{store: s, logger: logger}
}

// Routes registers the handlers on r, relative to /api/favorites.
func (f *Favorites) Routes(r chi.Router) {
	r.Get("/{session}", f.list)
	r.Post("/{session}/{chatID}", f.add)
	r.Delete("/{session}/{chatID}", f.remove)
	r.Get("/{session}/{chatID}/check", f.check)
}

type resultBody struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (f *Favorites) params(w http.ResponseWriter, r *http.Request) (sess, chatID string, ok bool) {
	sess = chi.URLParam(r, "session")
	if err := session.ValidateName(sess); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	raw := chi.URLParam(r, "chatID")
	if raw == "" {
		return sess, "", true
	}
	chatID, err := url.PathUnescape(raw)
	if err != nil || chatID == "" {
		writeError(w, http.StatusBadRequest, "Invalid chat id")
		return "", "", false
	}
	return sess, chatID, true
}

func (f *Favorites) list(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := f.params(w, r)
	if !ok {
		return
	}
	favs, err := f.store.ListFavorites(sess)
	if err != nil {
		f.logger.Error("list favorites", zap.String("session", sess), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"favorites": favs})
}

func (f *Favorites) add(w http.ResponseWriter, r *http.Request) {
	sess, chatID, ok := f.params(w, r)
	if !ok {
		return
	}
	if _, err := f.store.AddFavorite(sess, chatID); err != nil {
		f.logger.Error("add favorite", zap.String("session", sess), zap.String("chat_id", chatID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, resultBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Success: true, Message: "Favorite added"})
}

func (f *Favorites) remove(w http.ResponseWriter, r *http.Request) {
	sess, chatID, ok := f.params(w, r)
	if !ok {
		return
	}
	if _, err := f.store.RemoveFavorite(sess, chatID); err != nil {
		f.logger.Error("remove favorite", zap.String("session", sess), zap.String("chat_id", chatID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, resultBody{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resultBody{Success: true, Message: "Favorite removed"})
}

func (f *Favorites) check(w http.ResponseWriter, r *http.Request) {
	sess, chatID, ok := f.params(w, r)
	if !ok {
		return
	}
	fav, err := f.store.IsFavorite(sess, chatID)
	if err != nil {
		f.logger.Error("check favorite", zap.String("session", sess), zap.String("chat_id", chatID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]any{"isFavorite": false, "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"isFavorite": fav})
}
