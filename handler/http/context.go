package http

import (
	"context"

	"github.com/joaoportolan93/Dream-Share-oficial/service/user"
)

type ctxKey string

const (
	ctxKeyNamespace ctxKey = "namespace"
	ctxKeyRoute     ctxKey = "route"
	ctxKeyUser      ctxKey = "user"
	ctxKeyVersion   ctxKey = "version"
)

func namespaceFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyNamespace).(string)
}

func namespaceInContext(ctx context.Context, ns string) context.Context {
	return context.WithValue(ctx, ctxKeyNamespace, ns)
}

func routeFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyRoute).(string)
}

func routeInContext(ctx context.Context, route string) context.Context {
	return context.WithValue(ctx, ctxKeyRoute, route)
}

func userFromContext(ctx context.Context) *user.User {
	return ctx.Value(ctxKeyUser).(*user.User)
}

func userInContext(ctx context.Context, user *user.User) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}

func versionFromContext(ctx context.Context) string {
	return ctx.Value(ctxKeyVersion).(string)
}

func versionInContext(ctx context.Context, version string) context.Context {
	return context.WithValue(ctx, ctxKeyVersion, version)
}
