package nn

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aletheia-ml/aletheia/internal/tensor"
)

// paramStateDict builds a state dictionary keyed by parameter name.
func paramStateDict(params ...*Parameter) map[string]*tensor.Tensor {
	sd := make(map[string]*tensor.Tensor, len(params))
	for _, p := range params {
		sd[p.Name()] = p.Tensor()
	}
	return sd
}

// loadParams loads every parameter from stateDict by name.
func loadParams(stateDict map[string]*tensor.Tensor, params ...*Parameter) error {
	for _, p := range params {
		src, ok := stateDict[p.Name()]
		if !ok {
			return fmt.Errorf("missing %s in state dict", p.Name())
		}
		if err := p.Load(src); err != nil {
			return err
		}
	}
	return nil
}

// PrefixStateDict copies src into dst with every key prefixed by "prefix.".
func PrefixStateDict(dst map[string]*tensor.Tensor, prefix string, src map[string]*tensor.Tensor) {
	for name, t := range src {
		dst[prefix+"."+name] = t
	}
}

// SubStateDict extracts the entries under "prefix." with the prefix removed.
func SubStateDict(stateDict map[string]*tensor.Tensor, prefix string) map[string]*tensor.Tensor {
	sub := make(map[string]*tensor.Tensor)
	p := prefix + "."
	for name, t := range stateDict {
		if rest, ok := strings.CutPrefix(name, p); ok {
			sub[rest] = t
		}
	}
	return sub
}

// SortedKeys returns the state dictionary keys in lexical order.
func SortedKeys(stateDict map[string]*tensor.Tensor) []string {
	keys := make([]string, 0, len(stateDict))
	for k := range stateDict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CountParameters returns the total number of scalar weights in a state dictionary.
func CountParameters(stateDict map[string]*tensor.Tensor) int {
	n := 0
	for _, t := range stateDict {
		n += t.NumElements()
	}
	return n
}
