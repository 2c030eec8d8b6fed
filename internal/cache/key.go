package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Префиксы ключей каталога и шаблоны их инвалидации.
const (
	PrefixProducts     = "products"
	PrefixProductPlans = "product_plans"

	PatternProducts     = PrefixProducts + ":*"
	PatternProductPlans = PrefixProductPlans + ":*"
)

// Key строит ключ вида prefix:args...:k1=v1:k2=v2. Параметры сортируются по имени,
// nil и пустые строки пропускаются, поэтому одинаковые запросы дают одинаковый ключ.
func Key(prefix string, args []any, params map[string]any) string {
	parts := []string{prefix}
	for _, a := range args {
		if s, ok := stringify(a); ok {
			parts = append(parts, s)
		}
	}

	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if s, ok := stringify(params[k]); ok {
			parts = append(parts, k+"="+s)
		}
	}
	return strings.Join(parts, ":")
}

func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil || *t == "" {
			return "", false
		}
		return *t, true
	default:
		return fmt.Sprint(t), true
	}
}
