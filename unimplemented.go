package statsigprovider

import (
	"context"
	"fmt"

	"github.com/open-feature/go-sdk/openfeature"
)

// UnimplementedProvider reports every evaluation as not implemented.
// Embed it and override the evaluations a backend supports.
type UnimplementedProvider struct{}

func notImplemented(flagType string) openfeature.ProviderResolutionDetail {
	return openfeature.ProviderResolutionDetail{
		ResolutionError: openfeature.NewGeneralResolutionError(
			fmt.Sprintf("%s evaluation: %s", flagType, ErrNotImplemented),
		),
		Reason: openfeature.ErrorReason,
	}
}

func (UnimplementedProvider) BooleanEvaluation(ctx context.Context, flag string, defaultValue bool, flatCtx openfeature.FlattenedContext) openfeature.BoolResolutionDetail {
	return openfeature.BoolResolutionDetail{
		Value:                    defaultValue,
		ProviderResolutionDetail: notImplemented(flagTypeBoolean),
	}
}

func (UnimplementedProvider) StringEvaluation(ctx context.Context, flag string, defaultValue string, flatCtx openfeature.FlattenedContext) openfeature.StringResolutionDetail {
	return openfeature.StringResolutionDetail{
		Value:                    defaultValue,
		ProviderResolutionDetail: notImplemented(flagTypeString),
	}
}

func (UnimplementedProvider) IntEvaluation(ctx context.Context, flag string, defaultValue int64, flatCtx openfeature.FlattenedContext) openfeature.IntResolutionDetail {
	return openfeature.IntResolutionDetail{
		Value:                    defaultValue,
		ProviderResolutionDetail: notImplemented(flagTypeInteger),
	}
}

func (UnimplementedProvider) FloatEvaluation(ctx context.Context, flag string, defaultValue float64, flatCtx openfeature.FlattenedContext) openfeature.FloatResolutionDetail {
	return openfeature.FloatResolutionDetail{
		Value:                    defaultValue,
		ProviderResolutionDetail: notImplemented(flagTypeFloat),
	}
}

func (UnimplementedProvider) ObjectEvaluation(ctx context.Context, flag string, defaultValue interface{}, flatCtx openfeature.FlattenedContext) openfeature.InterfaceResolutionDetail {
	return openfeature.InterfaceResolutionDetail{
		Value:                    defaultValue,
		ProviderResolutionDetail: notImplemented(flagTypeObject),
	}
}
