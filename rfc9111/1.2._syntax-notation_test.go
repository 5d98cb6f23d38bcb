package rfc9111

import (
	"testing"
	"time"
)

func TestToDeltaSeconds(t *testing.T) {
	fiveSeconds := 5 * time.Second
	if s := toDeltaSeconds(fiveSeconds); s != 5 {
		t.Fatalf("Delta seconds is %d", s)
	}
}

func TestParseDeltaSeconds(t *testing.T) {
	if n, ok := parseDeltaSeconds("42"); !ok || n != 42 {
		t.Fatalf("Parsed %d, %v", n, ok)
	}
	for _, bad := range []string{"", "-1", "4 2", "1.5", "+3"} {
		if _, ok := parseDeltaSeconds(bad); ok {
			t.Fatalf("Parsed '%s'", bad)
		}
	}
}

func TestHttpDateRFC850(t *testing.T) {
	_, err := httpDate("Thursday, 18-Aug-50 02:01:18 GMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestHttpDateTZCase(t *testing.T) {
	_, err := httpDate("Thu, 18 Aug 2050 02:01:18 gMT")
	if err != nil {
		t.Fatalf("Error parsing date %+v", err)
	}
}

func TestTokenOrQuotedString(t *testing.T) {
	tests := map[string]string{
		"abc":       "abc",
		"":          `""`,
		"a b":       `"a b"`,
		`say "hi"`:  `"say \"hi\""`,
		`back\lash`: `"back\\lash"`,
		"*":         "*",
	}
	for in, want := range tests {
		if got := tokenOrQuotedString(in); got != want {
			t.Fatalf("%s quoted as %s", in, got)
		}
		if got := unquoteString(tokenOrQuotedString(in)); got != in {
			t.Fatalf("%s unquoted as %s", in, got)
		}
	}
}
