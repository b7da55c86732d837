package journey_test

import (
	"testing"

	"journeyd/internal/journey"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "object", input: `{"a":1}`},
		{name: "list", input: `[1,2,3]`},
		{name: "string", input: `"hello"`},
		{name: "number", input: `42.5`},
		{name: "bool", input: `true`},
		{name: "null", input: `null`},
		{name: "nested", input: `{"a":{"b":[1,{"c":null}]}}`},
		{name: "empty input", input: ``, wantErr: true},
		{name: "truncated object", input: `{"a":`, wantErr: true},
		{name: "trailing data", input: `{} {}`, wantErr: true},
		{name: "bare word", input: `nope`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := journey.ParseValue([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseValue(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValue_RoundTripPreservesShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "key order", input: `{"z":1,"a":2,"m":3}`},
		{name: "number text", input: `{"big":12345678901234567890,"dec":0.30000000000000004,"exp":1e100}`},
		{name: "nested containers", input: `{"list":[{"x":1},{"y":[true,null,"s"]}],"empty":{}}`},
		{name: "unicode string", input: `{"label":"café ☕"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := journey.ParseValue([]byte(tt.input))
			if err != nil {
				t.Fatalf("ParseValue() error = %v", err)
			}

			out, err := v.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}

			back, err := journey.ParseValue(out)
			if err != nil {
				t.Fatalf("ParseValue(round-trip) error = %v", err)
			}
			if !v.Equal(back) {
				t.Errorf("round trip changed value: %s -> %s", tt.input, out)
			}
		})
	}
}

func TestValue_KeyOrderSurvivesMarshal(t *testing.T) {
	v, err := journey.ParseValue([]byte(`{"zebra":1,"apple":2,"mango":3}`))
	if err != nil {
		t.Fatalf("ParseValue() error = %v", err)
	}

	out, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	want := `{"zebra":1,"apple":2,"mango":3}`
	if string(out) != want {
		t.Errorf("MarshalJSON() = %s, want %s", out, want)
	}
}

func TestDecodeOpaque(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantEmpty bool
	}{
		{name: "valid object", input: `{"a":1}`, wantEmpty: false},
		{name: "valid list", input: `[1]`, wantEmpty: false},
		{name: "empty blob", input: ``, wantEmpty: true},
		{name: "corrupt blob", input: `{"a":`, wantEmpty: true},
		{name: "scalar top level", input: `42`, wantEmpty: true},
		{name: "string top level", input: `"x"`, wantEmpty: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := journey.DecodeOpaque([]byte(tt.input))
			if tt.wantEmpty {
				if v.Kind() != journey.KindMap || v.Len() != 0 {
					t.Errorf("DecodeOpaque(%q) = kind %v len %d, want empty map", tt.input, v.Kind(), v.Len())
				}
			} else if v.IsEmpty() {
				t.Errorf("DecodeOpaque(%q) unexpectedly empty", tt.input)
			}
		})
	}
}

func TestValue_Equal(t *testing.T) {
	parse := func(t *testing.T, s string) journey.Value {
		t.Helper()
		v, err := journey.ParseValue([]byte(s))
		if err != nil {
			t.Fatalf("ParseValue(%q) error = %v", s, err)
		}
		return v
	}

	t.Run("same content is equal", func(t *testing.T) {
		a := parse(t, `{"x":[1,2],"y":null}`)
		b := parse(t, `{"x":[1,2],"y":null}`)
		if !a.Equal(b) {
			t.Error("identical values reported unequal")
		}
	})

	t.Run("different key order is unequal", func(t *testing.T) {
		a := parse(t, `{"a":1,"b":2}`)
		b := parse(t, `{"b":2,"a":1}`)
		if a.Equal(b) {
			t.Error("values with different member order reported equal")
		}
	})

	t.Run("different number text is unequal", func(t *testing.T) {
		a := parse(t, `1.0`)
		b := parse(t, `1`)
		if a.Equal(b) {
			t.Error("1.0 and 1 reported equal")
		}
	})
}

func TestValue_FieldAccess(t *testing.T) {
	v, err := journey.ParseValue([]byte(`{"label":"start","count":3}`))
	if err != nil {
		t.Fatalf("ParseValue() error = %v", err)
	}

	f, ok := v.Field("label")
	if !ok {
		t.Fatal("Field(label) not found")
	}
	if f.Kind() != journey.KindString {
		t.Errorf("Field(label) kind = %v, want string", f.Kind())
	}

	if _, ok := v.Field("missing"); ok {
		t.Error("Field(missing) unexpectedly found")
	}
}
