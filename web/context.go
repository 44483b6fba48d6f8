package web

import (
	"context"

	"github.com/pulsekit/pulse/adapters/auth"
)

type ctxKey int

const claimsKey ctxKey = iota

// withClaims stores validated claims in the request context.
func withClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// getClaims retrieves claims from the request context.
// Returns nil if not authenticated.
func getClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// PageData is the common payload passed to every template.
type PageData struct {
	Title       string
	User        *UserInfo
	CurrentPath string
	Flash       *FlashMessage
	Data        any
}

// UserInfo is the authenticated user shown in the nav.
type UserInfo struct {
	ID    string
	Email string
}

// FlashMessage is a one-off notice rendered at the top of a page.
type FlashMessage struct {
	Type    string // "success", "error", "info"
	Message string
}

func (h *Handler) newPageData(ctx context.Context, title, path string) PageData {
	pd := PageData{
		Title:       title,
		CurrentPath: path,
	}
	if claims := getClaims(ctx); claims != nil {
		pd.User = &UserInfo{ID: claims.UserID, Email: claims.Email}
	}
	return pd
}
