package pagination

import "testing"

func TestParseDefaults(t *testing.T) {
	p := Parse("", "")
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Errorf("expected defaults, got %+v", p)
	}
}

func TestParseClampsLimit(t *testing.T) {
	p := Parse("2", "500")
	if p.Limit != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, p.Limit)
	}
	if p.Page != 2 {
		t.Errorf("expected page 2, got %d", p.Page)
	}

	p = Parse("1", "0")
	if p.Limit != DefaultLimit {
		t.Errorf("expected zero limit to fall back to default, got %d", p.Limit)
	}

	p = Parse("-3", "abc")
	if p.Page != 1 || p.Limit != DefaultLimit {
		t.Errorf("expected garbage input to fall back to defaults, got %+v", p)
	}
}

func TestOffset(t *testing.T) {
	p := Params{Page: 3, Limit: 10}
	if got := p.Offset(); got != 20 {
		t.Errorf("expected offset 20, got %d", got)
	}
}
