package cli

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    []string
		wantErr bool
	}{
		{"empty", "", nil, false},
		{"plain", "show route summary", []string{"show", "route", "summary"}, false},
		{"extra spaces", "  a   b  ", []string{"a", "b"}, false},
		{"single quotes", "msg='hello world'", []string{"msg=hello world"}, false},
		{"double quotes", `msg="a b"`, []string{"msg=a b"}, false},
		{"escape", `a\ b`, []string{"a b"}, false},
		{"unterminated", `msg="oops`, nil, true},
		{"trailing escape", `oops\`, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := splitWords(tt.text)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		boundary   bool
		words      []string
		incomplete string
		args       Args
	}{
		{
			name: "bare words", text: "show route", boundary: true,
			words: []string{"show", "route"}, args: Args{},
		},
		{
			name: "key value", text: "hello name=world", boundary: true,
			words: []string{"hello", "name"},
			args:  Args{"name": Value{"world"}},
		},
		{
			name: "comma list", text: "set ports=80,443,8080", boundary: true,
			words: []string{"set", "ports"},
			args:  Args{"ports": Value{"80", "443", "8080"}},
		},
		{
			name: "mid word", text: "hel", boundary: false,
			words: []string{"hel"}, incomplete: "hel", args: Args{},
		},
		{
			name: "trailing equals", text: "hello name=", boundary: true,
			words: []string{"hello", "name"}, incomplete: "name",
			args: Args{"name": Value{""}},
		},
		{
			name: "trailing comma", text: "set ports=80,", boundary: true,
			words: []string{"set", "ports"}, incomplete: "ports",
			args: Args{"ports": Value{"80", ""}},
		},
		{
			name: "quoted value keeps spaces", text: `say msg="hello world"`, boundary: true,
			words: []string{"say", "msg"},
			args:  Args{"msg": Value{"hello world"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pl, err := parseLine(tt.text, tt.boundary)
			if err != nil {
				t.Fatalf("parseLine: %v", err)
			}
			if !reflect.DeepEqual(pl.words, tt.words) {
				t.Errorf("words = %v, want %v", pl.words, tt.words)
			}
			if pl.incomplete != tt.incomplete {
				t.Errorf("incomplete = %q, want %q", pl.incomplete, tt.incomplete)
			}
			if !reflect.DeepEqual(pl.args, tt.args) {
				t.Errorf("args = %v, want %v", pl.args, tt.args)
			}
		})
	}
}

func TestParseLineBadQuoting(t *testing.T) {
	if _, err := parseLine(`msg="oops`, true); err == nil {
		t.Fatal("want error for unterminated quote")
	}
}

func TestValueText(t *testing.T) {
	if got := (Value{"a"}).Text(); got != "a" {
		t.Errorf("Text = %q, want a", got)
	}
	if got := (Value{"a", "b"}).Text(); got != "a,b" {
		t.Errorf("Text = %q, want a,b", got)
	}
}

func TestArgsAccessors(t *testing.T) {
	a := Args{"k": Value{"1", "2"}}
	if a.Get("k") != "1" {
		t.Errorf("Get = %q, want 1", a.Get("k"))
	}
	if a.Get("missing") != "" {
		t.Error("Get missing should be empty")
	}
	if len(a.List("k")) != 2 {
		t.Error("List should return all elements")
	}
	if !a.Has("k") || a.Has("missing") {
		t.Error("Has mismatch")
	}
}
