package main

import (
	"strings"
	"testing"

	"occlight/internal/lang"
)

func TestResolveLang(t *testing.T) {
	id, err := resolveLang("", "main.go", "package main\n")
	if err != nil || id != lang.Go {
		t.Fatalf("resolveLang detect = %q, %v", id, err)
	}

	id, err = resolveLang("rust", "whatever.txt", "")
	if err != nil || id != lang.Rust {
		t.Fatalf("resolveLang override = %q, %v", id, err)
	}

	id, err = resolveLang("", "deploy", "#!/bin/bash\n")
	if err != nil || id != lang.Bash {
		t.Fatalf("resolveLang shebang = %q, %v", id, err)
	}

	_, err = resolveLang("pythn", "x", "")
	if err == nil || !strings.Contains(err.Error(), `"python"`) {
		t.Fatalf("resolveLang typo error = %v, want a python suggestion", err)
	}
}

func TestBuildEngine(t *testing.T) {
	if _, err := buildEngine("chroma", lang.Go, "package main\n"); err != nil {
		t.Fatalf("chroma engine: %v", err)
	}
	if _, err := buildEngine("sitter", lang.Go, "package main\n"); err != nil {
		t.Fatalf("sitter engine: %v", err)
	}
	if _, err := buildEngine("sitter", lang.Plain, "text\n"); err == nil {
		t.Fatal("expected an error for a grammarless sitter language")
	}
	if _, err := buildEngine("regex", lang.Go, ""); err == nil {
		t.Fatal("expected an error for an unknown engine")
	}
}

func TestFirstLine(t *testing.T) {
	if got := firstLine("a\nb\n"); got != "a" {
		t.Fatalf("firstLine = %q", got)
	}
	if got := firstLine("no newline"); got != "no newline" {
		t.Fatalf("firstLine = %q", got)
	}
}
