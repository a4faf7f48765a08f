package logger

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type named struct{}

func (named) String() string { return "a-very-long-object-name-for-tests" }

type plain struct{}

func TestObjToString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  any
		want string
	}{
		{name: "nil", obj: nil, want: "NIL"},
		{name: "string", obj: "PARSER", want: "PARSER"},
		{name: "stringer truncated", obj: named{}, want: "a-very-long-object-n"},
		{name: "pointer type", obj: &plain{}, want: "plain"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, objToString(tt.obj))
		})
	}
}

func TestLevelGate(t *testing.T) {
	l, hook := test.NewNullLogger()
	l.SetOutput(io.Discard)
	l.SetLevel(logrus.InfoLevel)
	prev := std
	SetLogger(l)
	defer SetLogger(prev)

	Debugf("PARSER", "box %s", "moov")
	require.Empty(t, hook.AllEntries())

	Infof("PARSER", "box %s", "moov")
	require.Len(t, hook.AllEntries(), 1)
	require.Equal(t, "box moov", hook.LastEntry().Message)
	require.Equal(t, "PARSER", hook.LastEntry().Data["obj"])
}
