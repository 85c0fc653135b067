package parse

import (
	"context"
	"testing"

	"github.com/dshills/componentsgen/internal/resolution"
	"github.com/dshills/componentsgen/pkg/types"
	"github.com/stretchr/testify/require"
)

func newTestAnalyzer(files map[string]string) *Analyzer {
	return NewAnalyzer(resolution.NewMemoryContext(files), Options{Workers: 4})
}

func ref(name, file string) types.SymbolReference {
	return types.SymbolReference{LocalName: name, FileName: file}
}

func raw(name string) types.ResolvedRange {
	return types.ResolvedRange{Kind: types.RangeRaw, Value: name}
}

func loadChain(t *testing.T, a *Analyzer, name, file string) *types.ClassChain {
	t.Helper()
	chain, err := a.ClassIndexer().LoadClassChain(context.Background(), ref(name, file))
	require.NoError(t, err)
	return chain
}

// requireTerminal asserts that no unresolved range survived resolution
func requireTerminal(t *testing.T, params []types.ResolvedParameter) {
	t.Helper()
	for _, p := range params {
		switch p.Range.Kind {
		case types.RangeRaw, types.RangeOverride, types.RangeClass:
			require.True(t, p.Range.IsTerminal(), p.Name)
		case types.RangeNested:
			requireTerminal(t, p.Range.Fields)
		default:
			t.Fatalf("parameter %s has non-terminal range %q", p.Name, p.Range.Kind)
		}
	}
}
