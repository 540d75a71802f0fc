package content

import (
	"errors"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		label, want string
	}{
		{"Model Tests", "model-tests"},
		{"Class 9-10", "class-9-10"},
		{"Q&A Corner!", "qa-corner"},
		{"  Spaces  ", "--spaces--"},
		{"Under_score", "under_score"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.label); got != tt.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tt.label, tt.want, got)
		}
	}
}

func TestValidateNewRequest(t *testing.T) {
	req := NewRequest{StudentName: "Rafi", ClassRoll: "9-12", Topic: "Paragraph", Message: "Please add one on floods."}
	if err := Validate(req); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}

	req.Topic = "Poetry"
	req.Message = ""
	err := Validate(req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if _, ok := verr.Fields["topic"]; !ok {
		t.Errorf("expected topic field error, got %v", verr.Fields)
	}
	if msg := verr.Fields["message"]; msg != "message is required" {
		t.Errorf("expected %q, got %q", "message is required", msg)
	}
}

func TestNewResourceTrim(t *testing.T) {
	r := NewResource{Title: "  Tenses ", Category: " grammar", Content: "\n# Body\n"}.Trim()
	if r.Title != "Tenses" || r.Category != "grammar" || r.Content != "# Body" {
		t.Errorf("unexpected trim result: %+v", r)
	}
	if err := Validate(NewResource{Title: "", Category: "grammar", Content: "x"}); err == nil {
		t.Error("expected error for empty title")
	}
}
