package function

import (
	"testing"
	"time"

	"github.com/mwatts/graphlite"
)

func mustDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateUnknownFunction(t *testing.T) {
	if err := DefaultRegistry.Validate("NOT_A_FUNCTION", 1); err == nil {
		t.Fatal("expected an error for an unregistered function")
	}
}

func TestValidateArity(t *testing.T) {
	tests := []struct {
		name    string
		argc    int
		wantErr bool
	}{
		{"SUM", 1, false},
		{"SUM", 0, true},
		{"SUM", 2, true},
		{"SUBSTRING", 2, false},
		{"SUBSTRING", 3, false},
		{"SUBSTRING", 1, true},
		{"COALESCE", 5, false},
	}
	for _, tt := range tests {
		err := DefaultRegistry.Validate(tt.name, tt.argc)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%s, %d): err=%v, wantErr=%v", tt.name, tt.argc, err, tt.wantErr)
		}
	}
}

func TestIsAggregateName(t *testing.T) {
	for _, name := range []string{"COUNT", "SUM", "AVG", "MIN", "MAX", "COLLECT"} {
		if !DefaultRegistry.IsAggregateName(name) {
			t.Errorf("expected %s to be an aggregate", name)
		}
	}
	if DefaultRegistry.IsAggregateName("UPPER") {
		t.Error("expected UPPER to not be an aggregate")
	}
}

func TestExecCountStar(t *testing.T) {
	fn, _ := DefaultRegistry.Lookup("COUNT")
	result, err := fn.Execute(&Context{Star: true, Column: []graphlite.Value{{}, {}, {}}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Num != 3 {
		t.Fatalf("expected 3, got %v", result.Num)
	}
}

func TestExecSumSkipsNonNumeric(t *testing.T) {
	fn, _ := DefaultRegistry.Lookup("SUM")
	col := []graphlite.Value{graphlite.NewNumber(1), graphlite.NewNumber(2), graphlite.Null}
	result, err := fn.Execute(&Context{Column: col})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Num != 3 {
		t.Fatalf("expected 3, got %v", result.Num)
	}
}

func TestExecSubstringWithAndWithoutLength(t *testing.T) {
	fn, _ := DefaultRegistry.Lookup("SUBSTRING")
	r1, err := fn.Execute(&Context{Args: []graphlite.Value{graphlite.NewString("hello world"), graphlite.NewNumber(6)}})
	if err != nil || r1.Str != "world" {
		t.Fatalf("expected %q, got %q (err=%v)", "world", r1.Str, err)
	}
	r2, err := fn.Execute(&Context{Args: []graphlite.Value{graphlite.NewString("hello world"), graphlite.NewNumber(0), graphlite.NewNumber(5)}})
	if err != nil || r2.Str != "hello" {
		t.Fatalf("expected %q, got %q (err=%v)", "hello", r2.Str, err)
	}
}

func TestExecTypeNames(t *testing.T) {
	fn, _ := DefaultRegistry.Lookup("TYPE")
	tests := []struct {
		v    graphlite.Value
		want string
	}{
		{graphlite.NewString("x"), "STRING"},
		{graphlite.NewNumber(1), "NUMBER"},
		{graphlite.NewBool(true), "BOOLEAN"},
		{graphlite.Null, "NULL"},
	}
	for _, tt := range tests {
		r, err := fn.Execute(&Context{Args: []graphlite.Value{tt.v}})
		if err != nil || r.Str != tt.want {
			t.Errorf("TYPE(%v) = %q, want %q (err=%v)", tt.v, r.Str, tt.want, err)
		}
	}
}

func TestParseDurationUnits(t *testing.T) {
	tests := []struct {
		n        float64
		unit     string
		wantSecs float64
	}{
		{1, "S", 1},
		{1, "M", 60},
		{1, "H", 3600},
		{1, "D", 86400},
		{2, "W", 14 * 86400},
	}
	for _, tt := range tests {
		d, err := ParseDuration(tt.n, tt.unit)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Seconds() != tt.wantSecs {
			t.Errorf("ParseDuration(%v, %s) = %v, want %vs", tt.n, tt.unit, d, tt.wantSecs)
		}
	}
}

func TestAddCalendarMonthsClampsEndOfMonth(t *testing.T) {
	jan31 := mustDate(2024, 1, 31)
	feb := AddCalendarMonths(jan31, 1)
	if feb.Month().String() != "February" || feb.Day() != 29 {
		t.Fatalf("expected Feb 29 2024 (leap year clamp), got %v", feb)
	}
}

func TestAddCalendarMonthsWrapsYear(t *testing.T) {
	dec := mustDate(2023, 12, 15)
	jan := AddCalendarMonths(dec, 1)
	if jan.Year() != 2024 || jan.Month().String() != "January" {
		t.Fatalf("expected January 2024, got %v", jan)
	}
}
