package event

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestChannelOrderingProperties checks dispatch order over random handler
// sets and random detach positions.
func TestChannelOrderingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("raise follows attachment order", prop.ForAll(
		func(n int) bool {
			var ch Channel[int, int]
			var got []int
			for i := 0; i < n; i++ {
				i := i
				ch.Listen(func(int, int) { got = append(got, i) })
			}
			if err := ch.Raise(0, 0); err != nil {
				return false
			}
			if len(got) != n {
				return false
			}
			for i, v := range got {
				if v != i {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 40),
	))

	properties.Property("detach then attach keeps survivors in order", prop.ForAll(
		func(n, victim int) bool {
			if n == 0 {
				return true
			}
			victim %= n

			var ch Channel[int, int]
			var got []int
			subs := make([]Subscription, n)
			for i := 0; i < n; i++ {
				i := i
				subs[i] = ch.Listen(func(int, int) { got = append(got, i) })
			}
			ch.Detach(subs[victim])
			ch.Listen(func(int, int) { got = append(got, n) })

			if ch.Len() != n {
				return false
			}
			_ = ch.Raise(0, 0)

			want := make([]int, 0, n)
			for i := 0; i < n; i++ {
				if i != victim {
					want = append(want, i)
				}
			}
			want = append(want, n)
			if len(got) != len(want) {
				return false
			}
			for i := range want {
				if got[i] != want[i] {
					return false
				}
			}
			return true
		},
		gen.IntRange(0, 30),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}
