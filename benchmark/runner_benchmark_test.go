package benchmark

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/baditaflorin/go_ab_runner/internal/adapters/storage"
	"github.com/baditaflorin/go_ab_runner/internal/testutil"
	"github.com/baditaflorin/go_ab_runner/pkg/abtest"
)

// generateConfig builds a JSON experiment list of the given size, alternating
// between edits and redirect experiments.
func generateConfig(size int) []byte {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < size; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		typ := "edits"
		if i%2 == 1 {
			typ = "redirect"
		}
		fmt.Fprintf(&sb, `{"id": "exp_%d", "status": "active", "type": %q, "variants": [{"name": "a", "value": "/a"}, {"name": "b", "value": "/b"}]}`, i, typ)
	}
	sb.WriteString("]")
	return []byte(sb.String())
}

func BenchmarkRunConfig(b *testing.B) {
	sizes := []int{1, 10, 100}
	for _, size := range sizes {
		raw := generateConfig(size)
		b.Run(fmt.Sprintf("Experiments_%d_Fresh", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				r, err := abtest.New("https://example.com/", abtest.WithPortsLogger(testutil.Discard{}), abtest.WithSeed(uint64(i+1)))
				if err != nil {
					b.Fatal(err)
				}
				r.RunConfig(context.Background(), raw)
			}
		})

		b.Run(fmt.Sprintf("Experiments_%d_Assigned", size), func(b *testing.B) {
			local := storage.NewMemoryStore()
			r, err := abtest.New("https://example.com/", abtest.WithPortsLogger(testutil.Discard{}), abtest.WithLocalStore(local))
			if err != nil {
				b.Fatal(err)
			}
			r.RunConfig(context.Background(), raw)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				r.RunConfig(context.Background(), raw)
			}
		})
	}
}
