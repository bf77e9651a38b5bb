package htmlcontent

import "testing"

func TestFlattenDefinitionsPassesThroughBareStrings(t *testing.T) {
	out := FlattenDefinitions([]any{"a gloss"})
	if len(out) != 1 || out[0].Kind != "text" || out[0].Text != "a gloss" {
		t.Fatalf("unexpected result: %+v", out)
	}
}

func TestFlattenDefinitionsHandlesImage(t *testing.T) {
	out := FlattenDefinitions([]any{
		map[string]any{"type": "image", "path": "img/kanji.png"},
	})
	if len(out) != 1 || out[0].Kind != "image" || out[0].URL != "img/kanji.png" {
		t.Fatalf("unexpected result: %+v", out)
	}
	if out[0].Text != "" {
		t.Fatalf("image entries should not carry flattened text, got %q", out[0].Text)
	}
}

func TestFlattenDefinitionsFlattensStructuredContent(t *testing.T) {
	raw := []any{
		map[string]any{
			"type": "structured-content",
			"content": map[string]any{
				"tag": "div",
				"content": []any{
					"a common way to say ",
					map[string]any{"tag": "b", "content": "hello"},
					".",
				},
			},
		},
	}

	out := FlattenDefinitions(raw)
	if len(out) != 1 || out[0].Kind != "structured-content" {
		t.Fatalf("unexpected result: %+v", out)
	}
	want := "a common way to say hello ."
	if out[0].Text != want {
		t.Fatalf("Text = %q, want %q", out[0].Text, want)
	}
}

func TestFlattenDefinitionsNestedArraysOfNodes(t *testing.T) {
	raw := []any{
		map[string]any{
			"type": "structured-content",
			"content": []any{
				map[string]any{"tag": "ul", "content": []any{
					map[string]any{"tag": "li", "content": "first"},
					map[string]any{"tag": "li", "content": "second"},
				}},
			},
		},
	}

	got := FlattenDefinitions(raw)[0].Text
	want := "first second"
	if got != want {
		t.Fatalf("Text = %q, want %q", got, want)
	}
}

func TestFlattenDefinitionsUnrecognizedTypeFallsBackToFlattenedText(t *testing.T) {
	raw := []any{
		map[string]any{"type": "future-kind", "text": "ignored by this fallback"},
	}
	out := FlattenDefinitions(raw)
	if out[0].Kind != "text" {
		t.Fatalf("Kind = %q, want text", out[0].Kind)
	}
}

func TestFlattenEscapesMarkupCharactersInLeafText(t *testing.T) {
	got := Flatten(map[string]any{"tag": "span", "content": "1 < 2 & 3 > 0"})
	want := "1 < 2 & 3 > 0"
	if got != want {
		t.Fatalf("Flatten = %q, want %q", got, want)
	}
}

func TestFlattenEmptyContentReturnsEmptyString(t *testing.T) {
	if got := Flatten(nil); got != "" {
		t.Fatalf("Flatten(nil) = %q, want empty", got)
	}
}

func TestFlattenDefinitionsEmptyInputReturnsNil(t *testing.T) {
	if out := FlattenDefinitions(nil); out != nil {
		t.Fatalf("expected nil, got %+v", out)
	}
}
