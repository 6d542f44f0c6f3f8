package store

import (
	"context"
	"strings"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

type currentUserFunc func(ctx context.Context, email string) (*apiclient.User, error)

// resolveActingUserID picks the user id mutations are attributed to.
// The session id wins unless it is empty or looks like an email, in
// which case a backend lookup resolves the real id. Lookup failure is
// tolerated: the call proceeds with whatever id is available.
func resolveActingUserID(ctx context.Context, ident session.Identity, lookup currentUserFunc) string {
	userID := ident.ID
	if userID != "" && !strings.Contains(userID, "@") {
		return userID
	}
	u, err := lookup(ctx, ident.Email)
	if err != nil || u == nil || u.ID == "" {
		logging.FromContext(ctx).Warn("acting_user_lookup_failed", "email", ident.Email, "error", err)
		return userID
	}
	return u.ID
}
