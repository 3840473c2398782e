package prompts

import (
	"errors"
	"strings"
	"testing"
)

// --- Render: known templates ---

func TestRender_GenerateCode(t *testing.T) {
	r := NewRenderer()

	result, err := r.Render(GenerateCode, map[string]string{
		"description": "reverse a string",
		"language":    "Go",
	})
	if err != nil {
		t.Fatalf("Render(GenerateCode) failed: %v", err)
	}

	checks := []string{
		"Generate Go code",
		"reverse a string",
		"only the source code",
	}
	for _, check := range checks {
		if !strings.Contains(result, check) {
			t.Errorf("generate_code output missing: %q", check)
		}
	}
	if strings.Contains(result, "{description}") || strings.Contains(result, "{language}") {
		t.Error("placeholders were not substituted")
	}
}

func TestRender_AllTemplatesRegistered(t *testing.T) {
	ids := []string{
		GenerateCode, RefactorCode, WriteTests,
		ExplainCode, GenerateDocs, MigrateCode, WriteOpenAIAgent,
	}
	registered := List()

	for _, id := range ids {
		found := false
		for _, got := range registered {
			if got == id {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("template %q not registered", id)
		}
	}
}

func TestRender_MigrateCode_SubstitutesRepeatedPlaceholder(t *testing.T) {
	r := NewRenderer()

	result, err := r.Render(MigrateCode, map[string]string{
		"code":          "def f(): pass",
		"from_language": "Python",
		"to_language":   "Rust",
	})
	if err != nil {
		t.Fatalf("Render(MigrateCode) failed: %v", err)
	}

	// from_language appears twice in the template.
	if strings.Count(result, "Python") < 2 {
		t.Errorf("expected repeated from_language substitution, got:\n%s", result)
	}
	if !strings.Contains(result, "Rust") {
		t.Error("to_language not substituted")
	}
}

// --- Render: error cases ---

func TestRender_UnknownTemplate(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render("nonexistent", nil)
	if err == nil {
		t.Fatal("Render(nonexistent) should fail")
	}
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Errorf("error = %v, want ErrUnknownTemplate", err)
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should name the template id, got: %v", err)
	}
}

func TestRender_MissingParameter_NamesIt(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render(GenerateCode, map[string]string{"language": "Go"})
	if err == nil {
		t.Fatal("Render with missing parameter should fail")
	}

	var missing *MissingParamsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %T, want *MissingParamsError", err)
	}
	if len(missing.Params) != 1 || missing.Params[0] != "description" {
		t.Errorf("missing params = %v, want [description]", missing.Params)
	}
	if !strings.Contains(err.Error(), "description") {
		t.Errorf("error message should name 'description', got: %v", err)
	}
}

func TestRender_MissingParameters_ListsAll(t *testing.T) {
	r := NewRenderer()

	_, err := r.Render(GenerateCode, nil)
	if err == nil {
		t.Fatal("Render with no parameters should fail")
	}

	var missing *MissingParamsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %T, want *MissingParamsError", err)
	}
	want := []string{"description", "language"}
	if len(missing.Params) != len(want) {
		t.Fatalf("missing params = %v, want %v", missing.Params, want)
	}
	for i, name := range want {
		if missing.Params[i] != name {
			t.Errorf("missing[%d] = %s, want %s (sorted)", i, missing.Params[i], name)
		}
	}
}

// --- substitute: placeholder mechanics ---

func TestSubstitute_EscapedBraces(t *testing.T) {
	result, err := substitute("x", "literal {{json}} and {value}", map[string]string{"value": "v"})
	if err != nil {
		t.Fatalf("substitute failed: %v", err)
	}
	if result != "literal {json} and v" {
		t.Errorf("result = %q", result)
	}
}

func TestSubstitute_UnterminatedPlaceholderIsVerbatim(t *testing.T) {
	result, err := substitute("x", "tail {unclosed", nil)
	if err != nil {
		t.Fatalf("substitute failed: %v", err)
	}
	if result != "tail {unclosed" {
		t.Errorf("result = %q", result)
	}
}

func TestSubstitute_DuplicateMissingReportedOnce(t *testing.T) {
	_, err := substitute("x", "{a} and {a} and {a}", nil)

	var missing *MissingParamsError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %T, want *MissingParamsError", err)
	}
	if len(missing.Params) != 1 {
		t.Errorf("missing params = %v, want exactly one entry", missing.Params)
	}
}

// --- raw bodies ---

func TestBody_KeepsPlaceholders(t *testing.T) {
	body, err := Body(GenerateCode)
	if err != nil {
		t.Fatalf("Body failed: %v", err)
	}
	if !strings.Contains(body, "{description}") {
		t.Errorf("body should keep placeholders intact: %s", body)
	}
}

func TestBody_Unknown(t *testing.T) {
	_, err := Body("nope")
	if !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("error = %v, want ErrUnknownTemplate", err)
	}
}
