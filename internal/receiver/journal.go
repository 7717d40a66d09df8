package receiver

import (
	"strconv"

	"github.com/openrails/openrails-sub024/internal/command"
)

// Call is one receiver invocation captured by a Journal.
type Call struct {
	Kind   command.Kind
	Action string
}

func (c Call) String() string {
	return c.Kind.String() + " " + c.Action
}

// Journal stands in for the simulator when replaying headless: it binds a
// recording receiver per kind and keeps every call in order.
type Journal struct {
	calls  []Call
	onCall func(Call)
}

// NewJournal creates an empty journal. onCall, if non-nil, sees each call as
// it happens.
func NewJournal(onCall func(Call)) *Journal {
	return &Journal{onCall: onCall}
}

// Bind binds a recording receiver for each kind into r. With no kinds, the
// whole catalog is bound.
func (j *Journal) Bind(r *Registry, kinds ...command.Kind) {
	if len(kinds) == 0 {
		kinds = command.Kinds()
	}
	for _, k := range kinds {
		r.Bind(k, &recorder{kind: k, journal: j})
	}
}

// Calls returns a copy of the captured calls.
func (j *Journal) Calls() []Call {
	out := make([]Call, len(j.calls))
	copy(out, j.calls)
	return out
}

// Lines returns the captured calls as strings.
func (j *Journal) Lines() []string {
	out := make([]string, len(j.calls))
	for i, c := range j.calls {
		out[i] = c.String()
	}
	return out
}

// Reset forgets all captured calls.
func (j *Journal) Reset() {
	j.calls = nil
}

func (j *Journal) add(kind command.Kind, action string) {
	c := Call{Kind: kind, Action: action}
	j.calls = append(j.calls, c)
	if j.onCall != nil {
		j.onCall(c)
	}
}

// recorder implements every receiver interface in package command.
type recorder struct {
	kind    command.Kind
	journal *Journal
}

func (r *recorder) Toggle() {
	r.journal.add(r.kind, "toggle")
}

func (r *recorder) SetState(on bool) {
	r.journal.add(r.kind, "set "+onOff(on))
}

func (r *recorder) SetIndexedState(index int, on bool) {
	r.journal.add(r.kind, "set #"+strconv.Itoa(index)+" "+onOff(on))
}

func (r *recorder) Adjust(increase bool, target *float64) {
	action := "decrease"
	if increase {
		action = "increase"
	}
	if target != nil {
		action += " to " + strconv.FormatFloat(*target, 'f', -1, 64)
	}
	r.journal.add(r.kind, action)
}

func (r *recorder) Resume() {
	r.journal.add(r.kind, "resume")
}

func (r *recorder) ShowView(view string) {
	r.journal.add(r.kind, "view "+strconv.Quote(view))
}

func (r *recorder) SaveAs(stem string) {
	r.journal.add(r.kind, "save "+strconv.Quote(stem))
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
