package middleware

import (
	"context"
	"net/http"
	"sync"

	"github.com/devdesignersid/codetrack/internal/common"
	"github.com/devdesignersid/codetrack/internal/domain/repository"
)

type contextKey string

const UserIDCtxKey contextKey = "userID"

// DemoIdentity attaches the shared demo user's ID to every request. The
// tracker is single-user, so this stands where a token verifier would
// normally sit; handlers read the ID the same way either way.
type DemoIdentity struct {
	userRepo repository.UserRepository

	mu     sync.Mutex
	userID string
}

func NewDemoIdentity(userRepo repository.UserRepository) *DemoIdentity {
	return &DemoIdentity{userRepo: userRepo}
}

func (d *DemoIdentity) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := d.resolve(r.Context())
		if err != nil {
			common.RespondWithError(w, http.StatusInternalServerError, "Demo user not provisioned; run the seed tool")
			return
		}
		ctx := context.WithValue(r.Context(), UserIDCtxKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (d *DemoIdentity) resolve(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.userID != "" {
		return d.userID, nil
	}
	user, err := d.userRepo.FindDemoUser(ctx)
	if err != nil {
		return "", err
	}
	d.userID = user.ID
	return d.userID, nil
}

// Helper to get user ID from context
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDCtxKey).(string)
	return userID, ok
}
