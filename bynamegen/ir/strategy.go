package ir

import "fmt"

// Strategy selects how a generated accessor computes and caches its value.
// The zero value is StrategyDictionaryCache, the default.
type Strategy int

const (
	// StrategyDictionaryCache memoizes members in one name-keyed cache per request.
	StrategyDictionaryCache Strategy = iota

	// StrategyAllOnce binds every member once, during package initialization.
	StrategyAllOnce

	// StrategyEachTime looks the member up on every access.
	StrategyEachTime

	// StrategyLazy memoizes each member on its first access.
	StrategyLazy
)

// DefaultStrategy is used when a request names no strategy or an unknown one.
const DefaultStrategy = StrategyDictionaryCache

var strategyNames = []struct {
	strategy Strategy
	names    []string
}{
	{StrategyAllOnce, []string{"all-once", "allonce", "once"}},
	{StrategyEachTime, []string{"each-time", "eachtime"}},
	{StrategyLazy, []string{"lazy"}},
	{StrategyDictionaryCache, []string{"dictionary-cache", "dictionarycache", "dictionary", "cache"}},
}

// Strategies returns all strategies in documentation order.
func Strategies() []Strategy {
	out := make([]Strategy, len(strategyNames))
	for i, n := range strategyNames {
		out[i] = n.strategy
	}
	return out
}

// String returns the canonical strategy name.
func (s Strategy) String() string {
	for _, n := range strategyNames {
		if n.strategy == s {
			return n.names[0]
		}
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the four strategies.
func (s Strategy) Valid() bool {
	return s >= StrategyDictionaryCache && s <= StrategyLazy
}

// ParseStrategy converts a strategy name to a Strategy.
// Matching is exact against the canonical name and its short forms.
// For unknown names it returns DefaultStrategy and false.
func ParseStrategy(name string) (Strategy, bool) {
	for _, n := range strategyNames {
		for _, candidate := range n.names {
			if candidate == name {
				return n.strategy, true
			}
		}
	}
	return DefaultStrategy, false
}
