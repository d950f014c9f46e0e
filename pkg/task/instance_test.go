// SPDX-License-Identifier: MPL-2.0

package task

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// testContext builds a context with buffered streams and an empty
// environment, suitable for asserting on task output.
func testContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	return &Context{
		ProgramName: "taskmate",
		Dir:         t.TempDir(),
		Env:         map[string]string{},
		Stdin:       strings.NewReader(""),
		Stdout:      &out,
		Stderr:      &out,
	}, &out
}

// ---------------------------------------------------------------------------
// Argument parsing tests
// ---------------------------------------------------------------------------

func TestParseArgsFlagsAndPositionals(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name: "greet",
		Flags: []Flag{
			{Name: "loud", Kind: FlagBool},
			{Name: "times", Kind: FlagInt, Default: "1"},
		},
		Positionals: []Positional{
			{Name: "who", Required: true},
			{Name: "suffix"},
		},
		Run: noopRun,
	})

	ctx, _ := testContext(t)
	inst := NewInstance(typ, "", ctx)
	inv, err := inst.ParseArgs([]string{"--loud", "--times", "3", "world"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if !inv.Bool("loud") {
		t.Error("Bool(loud) = false, want true")
	}
	if got := inv.Int("times"); got != 3 {
		t.Errorf("Int(times) = %d, want 3", got)
	}
	if got := inv.Arg("who"); got != "world" {
		t.Errorf("Arg(who) = %q, want %q", got, "world")
	}
	if got := inv.Arg("suffix"); got != "" {
		t.Errorf("Arg(suffix) = %q, want empty", got)
	}
}

func TestParseArgsMissingRequiredPositional(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:        "greet",
		Positionals: []Positional{{Name: "who", Required: true}},
		Run:         noopRun,
	})

	ctx, _ := testContext(t)
	_, err := NewInstance(typ, "", ctx).ParseArgs(nil)

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseArgs() error = %v, want *ParseError", err)
	}
	if !strings.Contains(parseErr.Error(), "who") {
		t.Errorf("error %q does not name the missing positional", parseErr.Error())
	}
}

func TestParseArgsRejectsSurplusWithoutExtraArgs(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{Name: "solo", Run: noopRun})

	ctx, _ := testContext(t)
	_, err := NewInstance(typ, "", ctx).ParseArgs([]string{"unexpected"})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseArgs() error = %v, want *ParseError", err)
	}
}

func TestParseArgsExtraPassthrough(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:        "wrap",
		ExtraArgs:   true,
		Flags:       []Flag{{Name: "arg2", Kind: FlagString}},
		Positionals: []Positional{{Name: "arg1"}},
		Run:         noopRun,
	})

	ctx, _ := testContext(t)
	inv, err := NewInstance(typ, "", ctx).ParseArgs([]string{"v1", "--arg2", "v2", "v3"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if got := inv.String("arg2"); got != "v2" {
		t.Errorf("String(arg2) = %q, want %q", got, "v2")
	}
	if got := inv.Arg("arg1"); got != "v1" {
		t.Errorf("Arg(arg1) = %q, want %q", got, "v1")
	}
	if len(inv.Extra) != 1 || inv.Extra[0] != "v3" {
		t.Errorf("Extra = %v, want [v3]", inv.Extra)
	}
}

func TestParseArgsUnknownFlagsCollectedAsExtras(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:      "wrap",
		ExtraArgs: true,
		Flags:     []Flag{{Name: "arg2", Kind: FlagString}},
		Run:       noopRun,
	})

	ctx, _ := testContext(t)
	inv, err := NewInstance(typ, "", ctx).ParseArgs([]string{"--arg2", "v2", "--unknown", "uv", "v3"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if got := inv.String("arg2"); got != "v2" {
		t.Errorf("String(arg2) = %q, want %q", got, "v2")
	}
	want := []string{"--unknown", "uv", "v3"}
	if len(inv.Extra) != len(want) {
		t.Fatalf("Extra = %v, want %v", inv.Extra, want)
	}
	for i := range want {
		if inv.Extra[i] != want[i] {
			t.Errorf("Extra[%d] = %q, want %q", i, inv.Extra[i], want[i])
		}
	}
}

func TestParseArgsUnknownFlagsSkipPositionalMatching(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:        "wrap",
		ExtraArgs:   true,
		Positionals: []Positional{{Name: "arg1", Required: true}},
		Run:         noopRun,
	})

	ctx, _ := testContext(t)
	inv, err := NewInstance(typ, "", ctx).ParseArgs([]string{"--fix", "target"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if got := inv.Arg("arg1"); got != "target" {
		t.Errorf("Arg(arg1) = %q, want %q", got, "target")
	}
	if len(inv.Extra) != 1 || inv.Extra[0] != "--fix" {
		t.Errorf("Extra = %v, want [--fix]", inv.Extra)
	}
}

func TestParseArgsKnownShorthandConsumesValue(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:      "wrap",
		ExtraArgs: true,
		Flags:     []Flag{{Name: "times", Shorthand: "t", Kind: FlagInt, Default: "1"}},
		Run:       noopRun,
	})

	ctx, _ := testContext(t)
	inv, err := NewInstance(typ, "", ctx).ParseArgs([]string{"-t", "3", "-v", "zz"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if got := inv.Int("times"); got != 3 {
		t.Errorf("Int(times) = %d, want 3", got)
	}
	want := []string{"-v", "zz"}
	if len(inv.Extra) != 2 || inv.Extra[0] != want[0] || inv.Extra[1] != want[1] {
		t.Errorf("Extra = %v, want %v", inv.Extra, want)
	}
}

func TestParseArgsDoubleDashEndsOptions(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{
		Name:      "wrap",
		ExtraArgs: true,
		Flags:     []Flag{{Name: "arg2", Kind: FlagString}},
		Run:       noopRun,
	})

	ctx, _ := testContext(t)
	inv, err := NewInstance(typ, "", ctx).ParseArgs([]string{"--", "--arg2", "raw"})
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}

	if got := inv.String("arg2"); got != "" {
		t.Errorf("String(arg2) = %q, want unset after --", got)
	}
	want := []string{"--arg2", "raw"}
	if len(inv.Extra) != 2 || inv.Extra[0] != want[0] || inv.Extra[1] != want[1] {
		t.Errorf("Extra = %v, want %v", inv.Extra, want)
	}
}

func TestParseArgsInvalidFlag(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{Name: "solo", Run: noopRun})

	ctx, _ := testContext(t)
	_, err := NewInstance(typ, "", ctx).ParseArgs([]string{"--no-such-flag"})

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("ParseArgs() error = %v, want *ParseError", err)
	}
}

// ---------------------------------------------------------------------------
// Execution dispatch tests
// ---------------------------------------------------------------------------

func TestRunWithoutImplementation(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{Name: "empty"})

	ctx, _ := testContext(t)
	inst := NewInstance(typ, "", ctx)
	_, err := inst.Run(inst.blankInvocation())

	if !errors.Is(err, ErrNotImplemented) {
		t.Fatalf("Run() error = %v, want ErrNotImplemented", err)
	}
	var contractErr *ContractError
	if !errors.As(err, &contractErr) {
		t.Fatalf("Run() error = %v, want *ContractError", err)
	}
	if contractErr.Task != "empty" {
		t.Errorf("ContractError.Task = %q, want %q", contractErr.Task, "empty")
	}
}

func TestRunNilResultMeansSuccess(t *testing.T) {
	t.Parallel()

	typ := MustDefine(&Type{Name: "quiet", Run: noopRun})

	ctx, _ := testContext(t)
	res, err := NewInstance(typ, "", ctx).Execute(nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %v, want success", res.ExitCode)
	}
}

func TestRunPropagatesError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	typ := MustDefine(&Type{
		Name: "fail",
		Run:  func(inv *Invocation) (*Result, error) { return nil, boom },
	})

	ctx, _ := testContext(t)
	_, err := NewInstance(typ, "", ctx).Execute(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want boom", err)
	}
}

func TestExecuteUsesInvocationName(t *testing.T) {
	t.Parallel()

	var seen string
	typ := MustDefine(&Type{
		Name: "hello",
		Run: func(inv *Invocation) (*Result, error) {
			seen = inv.Name
			return nil, nil
		},
	})

	ctx, _ := testContext(t)
	if _, err := NewInstance(typ, "greetings:hello", ctx).Execute(nil); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if seen != "greetings:hello" {
		t.Errorf("invocation name = %q, want %q", seen, "greetings:hello")
	}
}

// ---------------------------------------------------------------------------
// Skip condition tests
// ---------------------------------------------------------------------------

type fixedCondition struct {
	satisfied bool
	err       error
}

func (c fixedCondition) Satisfied(inv *Invocation) (bool, error) {
	return c.satisfied, c.err
}

func TestRunSkipsWhenConditionSatisfied(t *testing.T) {
	t.Parallel()

	ran := false
	typ := MustDefine(&Type{
		Name:   "cached",
		SkipIf: fixedCondition{satisfied: true},
		Run: func(inv *Invocation) (*Result, error) {
			ran = true
			return nil, nil
		},
	})

	ctx, out := testContext(t)
	res, err := NewInstance(typ, "", ctx).Execute(nil)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if ran {
		t.Error("run executed despite satisfied condition")
	}
	if !res.ExitCode.IsSuccess() {
		t.Errorf("ExitCode = %v, want success", res.ExitCode)
	}
	if !strings.Contains(out.String(), "skipping") {
		t.Errorf("output %q does not mention the skip", out.String())
	}
}

func TestRunConditionErrorAbortsExecution(t *testing.T) {
	t.Parallel()

	condErr := errors.New("stat failed")
	typ := MustDefine(&Type{
		Name:   "cached",
		SkipIf: fixedCondition{err: condErr},
		Run:    noopRun,
	})

	ctx, _ := testContext(t)
	_, err := NewInstance(typ, "", ctx).Execute(nil)
	if !errors.Is(err, condErr) {
		t.Fatalf("Execute() error = %v, want condition error", err)
	}
}

// ---------------------------------------------------------------------------
// Context isolation tests
// ---------------------------------------------------------------------------

func TestInstanceContextIsolation(t *testing.T) {
	t.Parallel()

	ctx, _ := testContext(t)
	typ := MustDefine(&Type{Name: "isolated", Run: noopRun})

	inst := NewInstance(typ, "", ctx)
	inst.Context().Dir = "/elsewhere"

	if ctx.Dir == "/elsewhere" {
		t.Error("mutating the instance context leaked into the shared context")
	}
}
