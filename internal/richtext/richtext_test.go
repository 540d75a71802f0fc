package richtext

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	r := New()
	out, err := r.Render("# Tenses\n\nThe **present** tense.")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, `<h1 id="tenses">Tenses</h1>`) {
		t.Errorf("expected heading with id, got %q", out)
	}
	if !strings.Contains(out, "<strong>present</strong>") {
		t.Errorf("expected strong text, got %q", out)
	}
}

func TestPlainText(t *testing.T) {
	r := New()
	src := "# Tenses\n\nThe **present** tense\nis used for habits.\n\n- one\n- two\n"
	got := r.PlainText(src)
	want := "Tenses The present tense is used for habits. one two"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlainTextSkipsHTML(t *testing.T) {
	got := New().PlainText("<div>hidden</div>\n\nVisible text")
	if got != "Visible text" {
		t.Errorf("expected %q, got %q", "Visible text", got)
	}
}

func TestSummarize(t *testing.T) {
	short := "A short note."
	if got := Summarize(short); got != short {
		t.Errorf("expected %q unchanged, got %q", short, got)
	}

	long := strings.Repeat("ab", 100)
	got := Summarize(long)
	if len([]rune(got)) != SummaryLength+3 {
		t.Errorf("expected %d runes, got %d", SummaryLength+3, len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("expected ellipsis suffix, got %q", got)
	}

	exact := strings.Repeat("x", SummaryLength)
	if got := Summarize(exact); got != exact {
		t.Error("expected exact-length text to be left alone")
	}
}
