package commission

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func ptr(f float64) *float64 { return &f }

func rate(s string) Rate { return Rate{Value: decimal.RequireFromString(s)} }

// =============================================================================
// UNIT RULE
// =============================================================================

func TestNormalizeValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
		ok   bool
	}{
		{0.12, "0.12", true},
		{12, "0.12", true},
		{1, "1", true},
		{1.5, "0.015", true},
		{0, "0", true},
		{0.005, "0.005", true},
		{100, "1", true},
		{-0.1, "", false},
		{math.NaN(), "", false},
		{math.Inf(1), "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeValue(tt.in)
		if ok != tt.ok {
			t.Errorf("NormalizeValue(%v) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(rate(tt.want)) {
			t.Errorf("NormalizeValue(%v) = %s, want %s", tt.in, got.Value, tt.want)
		}
	}
}

// =============================================================================
// PRECEDENCE
// =============================================================================

func TestResolve_Precedence(t *testing.T) {
	r := NewResolver(Config{DefaultMultiplier: 1.1})

	tests := []struct {
		name   string
		room   *float64
		hotel  *float64
		want   string
		source Source
	}{
		{"room below floor falls to hotel", ptr(0.005), ptr(0.08), "0.08", SourceHotel},
		{"room at floor wins", ptr(0.01), ptr(0.08), "0.01", SourceRoom},
		{"room fraction wins", ptr(0.02), ptr(0.08), "0.02", SourceRoom},
		{"room percent wins", ptr(12), ptr(8), "0.12", SourceRoom},
		{"room of zero falls to hotel", ptr(0), ptr(0.08), "0.08", SourceHotel},
		{"room of 100% is invalid", ptr(100), ptr(8), "0.08", SourceHotel},
		{"hotel of zero is valid", nil, ptr(0), "0", SourceHotel},
		{"hotel percent", nil, ptr(10), "0.1", SourceHotel},
		{"hotel of 1 is invalid", nil, ptr(1), "0.1", SourceDefault},
		{"negative hotel", nil, ptr(-5), "0.1", SourceDefault},
		{"nan room and hotel", ptr(math.NaN()), ptr(math.NaN()), "0.1", SourceDefault},
		{"nothing set", nil, nil, "0.1", SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.ResolveWithSource(tt.room, tt.hotel)
			assert.True(t, res.Rate.Equal(rate(tt.want)), "rate %s, want %s", res.Rate.Value, tt.want)
			assert.Equal(t, tt.source, res.Source)
			assert.True(t, r.Resolve(tt.room, tt.hotel).Equal(res.Rate))
		})
	}
}

// =============================================================================
// DEFAULT
// =============================================================================

func TestNewResolver_Default(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		want       string
		source     Source
	}{
		{"ten percent", 1.1, "0.1", SourceDefault},
		{"fifteen percent", 1.15, "0.15", SourceDefault},
		{"no commission", 1, "0", SourceDefault},
		{"below one", 0.9, "0.1", SourceFallback},
		{"unset", 0, "0.1", SourceFallback},
		{"doubling is not a rate", 2, "0.1", SourceFallback},
		{"nan", math.NaN(), "0.1", SourceFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(Config{DefaultMultiplier: tt.multiplier})
			res := r.ResolveWithSource(nil, nil)
			assert.True(t, r.Default().Equal(rate(tt.want)), "default %s, want %s", r.Default().Value, tt.want)
			assert.Equal(t, tt.source, res.Source)
		})
	}
}

func TestRate_String(t *testing.T) {
	assert.Equal(t, "12%", rate("0.12").String())
	assert.Equal(t, "0.5%", rate("0.005").String())
	assert.Equal(t, "0.1", SafeDefault.Value.String())
}

func TestResolver_DefaultNotice(t *testing.T) {
	tests := []struct {
		name       string
		multiplier float64
		source     Source
		notice     string
	}{
		{"face value", 1.1, SourceDefault, ""},
		{"no commission", 1, SourceDefault, ""},
		{"fraction below one percent reads as percent", 1.005, SourceDefault, "multiplier 1.005 is read as a 50% commission by the unit rule"},
		{"one percent is replaced", 1.01, SourceFallback, "multiplier 1.01 is not usable, using the 10% fallback"},
		{"below one is replaced", 0.9, SourceFallback, "multiplier 0.9 is not usable, using the 10% fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(Config{DefaultMultiplier: tt.multiplier})
			assert.Equal(t, tt.source, r.DefaultSource())
			assert.Equal(t, tt.notice, r.DefaultNotice())
		})
	}
}
