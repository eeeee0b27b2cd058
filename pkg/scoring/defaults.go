package scoring

import "fmt"

// ModelKeys lists the built-in models in report order.
var ModelKeys = []string{ModelFinancialHealth, ModelBuffett, ModelLynch}

// DefaultModels returns the built-in models with the given parameters.
func DefaultModels(p Params) []Model {
	return []Model{FinancialHealth(p), Buffett(p), Lynch(p)}
}

// ModelsByKey returns the named built-in models in the order requested.
// An empty key list selects every model.
func ModelsByKey(p Params, keys ...string) ([]Model, error) {
	if len(keys) == 0 {
		return DefaultModels(p), nil
	}
	builders := map[string]func(Params) Model{
		ModelFinancialHealth: FinancialHealth,
		ModelBuffett:         Buffett,
		ModelLynch:           Lynch,
	}
	models := make([]Model, 0, len(keys))
	for _, k := range keys {
		build, ok := builders[k]
		if !ok {
			return nil, fmt.Errorf("unknown model %q (want one of %v)", k, ModelKeys)
		}
		models = append(models, build(p))
	}
	return models, nil
}
