package middleware

import (
	"context"
	"errors"

	"github.com/luminospark/asambal-system/auth"
)

func ClaimsFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*auth.Claims)
	return claims, ok
}

func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, ok := ClaimsFromContext(ctx)
	if !ok || claims.UserID == "" {
		return "", errors.New("user claims not found in context")
	}
	return claims.UserID, nil
}

func GetActiveClubFromContext(ctx context.Context) (string, error) {
	clubID, ok := ctx.Value(activeClubContextKey).(string)
	if !ok || clubID == "" {
		return "", errors.New("active club not resolved for this request")
	}
	return clubID, nil
}
