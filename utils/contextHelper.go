package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/pitix_local/appctx"
)

var (
	ContextKeyShopId        = appctx.ContextKeyShopId
	ContextKeyDeviceId      = appctx.ContextKeyDeviceId
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetShopIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyShopId)
}

func GetDeviceIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyDeviceId)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetShopIdInContext(ctx context.Context, shopId string) context.Context {
	return appctx.Set(ctx, ContextKeyShopId, shopId)
}

func SetDeviceIdInContext(ctx context.Context, deviceId string) context.Context {
	return appctx.Set(ctx, ContextKeyDeviceId, deviceId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
