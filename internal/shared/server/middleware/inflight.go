package middleware

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"invoice-backend/internal/shared/server/respond"
)

// InFlight tracks which principals have a request of a given kind running.
type InFlight struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInFlight() *InFlight {
	return &InFlight{active: make(map[string]struct{})}
}

// Acquire marks key busy. It reports false when key is already busy.
func (f *InFlight) Acquire(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, busy := f.active[key]; busy {
		return false
	}
	f.active[key] = struct{}{}
	return true
}

func (f *InFlight) Release(key string) {
	f.mu.Lock()
	delete(f.active, key)
	f.mu.Unlock()
}

// OnePerUser rejects a second concurrent request from the same principal
// with 409 busy. Nothing is queued.
func OnePerUser(f *InFlight, what string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = c.ClientIP()
		}
		if !f.Acquire(principal) {
			respond.Error(c, http.StatusConflict, "busy", "A previous "+what+" is still running", nil)
			return
		}
		defer f.Release(principal)
		c.Next()
	}
}
