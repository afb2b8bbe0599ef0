package access

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// TokenFromRequest reads a token from the Authorization header, falling
// back to the token query parameter. Browsers cannot set headers on a
// websocket upgrade or an <img> request, so both are accepted.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// RequireScene rejects requests whose token does not grant the route's
// sceneId variable.
func (s *Service) RequireScene(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing token")
			return
		}

		sceneID := mux.Vars(r)["sceneId"]
		sub, err := s.Validate(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if sub != sceneID {
			writeError(w, http.StatusForbidden, "token does not grant this scene")
			return
		}

		next.ServeHTTP(w, r.WithContext(withSceneID(r.Context(), sub)))
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
