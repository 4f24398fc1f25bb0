package statsigprovider

import (
	"github.com/open-feature/go-sdk/openfeature"
	statsig "github.com/statsig-io/go-sdk"
	"go.uber.org/zap"

	"github.com/OrlandoBitencourt/statsigprovider/internal/attribute"
)

// user builds the Statsig user for one evaluation. Every attribute except the
// targeting key becomes a custom field, subject to the attribute policy.
func (p *Provider) user(flatCtx openfeature.FlattenedContext) (statsig.User, error) {
	userID := p.defaultTargetingKey
	attrs := make(map[string]any, len(flatCtx))

	for k, v := range flatCtx {
		if k == openfeature.TargetingKey {
			if key, ok := v.(string); ok && key != "" {
				userID = key
			}
			continue
		}
		attrs[k] = v
	}

	custom, dropped, err := attribute.Apply(attrs, p.attributePolicy)
	if err != nil {
		return statsig.User{}, err
	}

	if len(dropped) > 0 {
		p.logger.Debug("dropped unsupported context attributes", zap.Strings("keys", dropped))
	}

	return statsig.User{
		UserID: userID,
		Custom: custom,
	}, nil
}
