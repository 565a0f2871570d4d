package prompt

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Tiliavir/worktimer/internal/model"
)

var projects = []model.Project{{ID: 1, Name: "Alpha"}, {ID: 3, Name: "Gamma"}}

func intp(i int) *int { return &i }

func TestLinePicker(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		def     *int
		want    *int
		wantErr error
	}{
		{"select", "3\n", nil, intp(3), nil},
		{"empty keeps default", "\n", intp(1), intp(1), nil},
		{"empty without default", "\n", nil, nil, nil},
		{"zero clears", "0\n", intp(1), nil, nil},
		{"reprompt on invalid", "abc\n2\n1\n", nil, intp(1), nil},
		{"eof aborts", "", nil, nil, ErrAborted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := &LinePicker{In: strings.NewReader(tt.input), Out: &out}
			got, err := p.Pick(context.Background(), projects, tt.def)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
				t.Errorf("Pick = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinePickerOutput(t *testing.T) {
	var out bytes.Buffer
	p := &LinePicker{In: strings.NewReader("x\n7\n\n"), Out: &out}
	if _, err := p.Pick(context.Background(), projects, nil); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"Alpha", "Gamma", `"x" is not a number`, "No project with id 7"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestLinePickerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &LinePicker{In: strings.NewReader("1\n"), Out: &bytes.Buffer{}}
	if _, err := p.Pick(ctx, projects, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func press(m pickerModel, msgs ...tea.KeyMsg) pickerModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(pickerModel)
	}
	return m
}

func TestPickerModel(t *testing.T) {
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyUp}
	enter := tea.KeyMsg{Type: tea.KeyEnter}

	m := press(newPickerModel(projects, nil), down, down, down, enter)
	if m.choice == nil || *m.choice != 3 {
		t.Errorf("choice = %v, want 3 (cursor clamps at the last project)", m.choice)
	}

	m = press(newPickerModel(projects, intp(3)), up, enter)
	if m.choice == nil || *m.choice != 1 {
		t.Errorf("choice = %v, want 1", m.choice)
	}

	m = press(newPickerModel(projects, intp(1)), up, up, enter)
	if m.choice != nil || !m.done {
		t.Errorf("choice = %v, want no project", m.choice)
	}

	m = press(newPickerModel(projects, nil), tea.KeyMsg{Type: tea.KeyEsc})
	if !m.aborted {
		t.Error("esc should abort")
	}

	if v := newPickerModel(projects, intp(3)).View(); !strings.Contains(v, "> 3  Gamma") {
		t.Errorf("default not highlighted:\n%s", v)
	}
}
