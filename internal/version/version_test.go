package version

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	t.Run("Should accept valid versions", func(t *testing.T) {
		valid := map[string]string{
			"0":                                    "0.0.0",
			"1.2":                                  "1.2.0",
			"1.2.3":                                "1.2.3",
			"10.20.30":                             "10.20.30",
			"0.0.0.post13.dev1+g946b55b.d20210910": "0.0.0",
			"1.2.3-rc1":                            "1.2.3",
			"4.1.2+build.7":                        "4.1.2",
		}
		for raw, want := range valid {
			v, err := Parse(raw)
			require.NoError(t, err, raw)
			assert.Equal(t, want, v.String(), raw)
		}
	})

	t.Run("Should reject invalid versions", func(t *testing.T) {
		invalid := []string{
			"", "None", ".", "..", "1..", ".1", "1.2.", "1.2.3.", "1..3",
			"a", "a.b", "a.1", "1.a", "1.a.2", "-1", "-", "1.-2", "1.2-rc1",
		}
		for _, raw := range invalid {
			_, err := Parse(raw)
			require.Error(t, err, raw)
			assert.True(t, errors.Is(err, ErrInvalidVersion), raw)
			var ive *InvalidVersionError
			require.ErrorAs(t, err, &ive)
			assert.Equal(t, raw, ive.Raw)
		}
	})

	t.Run("Should ignore suffixes when comparing", func(t *testing.T) {
		a := MustParse("1.2.3.post13.dev1+g946b55b.d20210910")
		b := MustParse("1.2.3")
		assert.True(t, a.Equal(b))
		assert.Equal(t, 0, a.Compare(b))
	})

	t.Run("Should default missing components to zero", func(t *testing.T) {
		assert.True(t, MustParse("1.2").Equal(MustParse("1.2.0")))
		assert.True(t, MustParse("3").Equal(MustParse("3.0.0")))
	})
}

func TestOrdering(t *testing.T) {
	pairs := []struct{ lower, higher string }{
		{"0.0.1", "0.1"},
		{"1.2.3", "1.2.4"},
		{"1.9", "1.10"},
		{"2", "10"},
		{"1.2.3.dev1", "1.3"},
	}
	for _, p := range pairs {
		lo, hi := MustParse(p.lower), MustParse(p.higher)
		assert.True(t, lo.LessThan(hi), "%s < %s", p.lower, p.higher)
		assert.True(t, hi.GreaterThan(lo), "%s > %s", p.higher, p.lower)
		assert.False(t, lo.Equal(hi))
	}
}

func TestSatisfies(t *testing.T) {
	installed := MustParse("4.3.1")
	tests := []struct {
		op       Operator
		required string
		want     bool
	}{
		{OpEqual, "4.3.1", true},
		{OpEqual, "4.3", false},
		{OpGreaterOrEqual, "4.3", true},
		{OpGreaterOrEqual, "4.3.1", true},
		{OpGreater, "4.3.1", false},
		{OpGreater, "3.99", true},
		{OpLessOrEqual, "4.3.1", true},
		{OpLess, "4.3.1", false},
		{OpLess, "5", true},
	}
	for _, tt := range tests {
		got := installed.Satisfies(tt.op, MustParse(tt.required))
		assert.Equal(t, tt.want, got, "4.3.1 %s %s", tt.op, tt.required)
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range Operators {
		got, err := ParseOperator(string(op))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}
	_, err := ParseOperator("=>")
	assert.Error(t, err)
}

func TestExtract(t *testing.T) {
	tests := []struct {
		output string
		want   string
		ok     bool
	}{
		{"GNU Make 4.3\nBuilt for x86_64-pc-linux-gnu", "4.3", true},
		{"gcc (GCC) 13.2.1 20230801", "13.2.1", true},
		{"arm-none-eabi-gcc 10.3.1 (release 2.1.0)", "10.3.1", true},
		{"no digits here", "", false},
		{"version 7", "", false},
	}
	for _, tt := range tests {
		got, ok := Extract(tt.output)
		assert.Equal(t, tt.ok, ok, tt.output)
		assert.Equal(t, tt.want, got, tt.output)
	}
}

func TestVersionProperties(t *testing.T) {
	t.Run("Should round trip rendered triples", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			major := rapid.IntRange(0, 10000).Draw(t, "major")
			minor := rapid.IntRange(0, 10000).Draw(t, "minor")
			patch := rapid.IntRange(0, 10000).Draw(t, "patch")
			raw := fmt.Sprintf("%d.%d.%d", major, minor, patch)

			v, err := Parse(raw)
			if err != nil {
				t.Fatalf("Parse(%q): %v", raw, err)
			}
			again, err := Parse(v.String())
			if err != nil {
				t.Fatalf("Parse(%q): %v", v.String(), err)
			}
			if v.String() != raw || !again.Equal(v) {
				t.Fatalf("round trip of %q produced %q", raw, v.String())
			}
		})
	})

	t.Run("Should order lexicographically over the triple", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := rapid.SliceOfN(rapid.IntRange(0, 50), 3, 3).Draw(t, "a")
			b := rapid.SliceOfN(rapid.IntRange(0, 50), 3, 3).Draw(t, "b")
			va := MustParse(fmt.Sprintf("%d.%d.%d", a[0], a[1], a[2]))
			vb := MustParse(fmt.Sprintf("%d.%d.%d", b[0], b[1], b[2]))

			want := 0
			for i := range 3 {
				if a[i] != b[i] {
					if a[i] < b[i] {
						want = -1
					} else {
						want = 1
					}
					break
				}
			}
			if got := va.Compare(vb); got != want {
				t.Fatalf("Compare(%v, %v) = %d, want %d", a, b, got, want)
			}
			if (want > 0) != va.GreaterThan(vb) || (want < 0) != vb.GreaterThan(va) {
				t.Fatalf("GreaterThan disagrees with Compare for %v, %v", a, b)
			}
		})
	})
}
