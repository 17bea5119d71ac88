package itemtext

import "testing"

func TestNewRequest(t *testing.T) {
	t.Parallel()

	req := NewRequest("Q1", KindQuestion, "<p>x</p>")
	if req.Identifier != "Q1_question" || req.Kind != KindQuestion || req.Markup != "<p>x</p>" {
		t.Errorf("NewRequest() = %+v", req)
	}
	if got := NewRequest("Q1", KindAnswer, "").Identifier; got != "Q1_answer" {
		t.Errorf("answer identifier = %q, want Q1_answer", got)
	}
}

func TestState_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		state State
		want  string
	}{
		{StateStart, "start"},
		{StateDetectMarkup, "detect-markup"},
		{StatePassThrough, "pass-through"},
		{StateRender, "render"},
		{StateExtract, "extract"},
		{StateDone, "done"},
		{StateFailed, "failed"},
		{State(42), "unknown"},
		{State(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestState_Terminal(t *testing.T) {
	t.Parallel()

	for s := StateStart; s <= StateFailed; s++ {
		want := s == StateDone || s == StateFailed
		if got := s.Terminal(); got != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, got, want)
		}
	}
}
