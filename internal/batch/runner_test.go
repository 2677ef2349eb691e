package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"reflect"
	"testing"

	"go.uber.org/zap/zaptest"
)

func recordingUnit(name string, calls *[]string, err error) FuncUnit {
	return FuncUnit{
		UnitName: name,
		Fn: func(ctx context.Context) error {
			*calls = append(*calls, name)
			return err
		},
	}
}

func TestRunnerHaltsOnFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("exit status 1")

	r := NewRunner([]Unit{
		recordingUnit("first", &calls, nil),
		recordingUnit("second", &calls, boom),
		recordingUnit("third", &calls, nil),
	}, zaptest.NewLogger(t))

	res := r.Run(context.Background())

	if want := []string{"first", "second"}; !reflect.DeepEqual(calls, want) {
		t.Errorf("Expected calls %v, got %v", want, calls)
	}
	if res.State != StateHalt {
		t.Errorf("Expected halt state, got %s", res.State)
	}
	if res.Failed != "second" {
		t.Errorf("Expected second to fail, got %q", res.Failed)
	}
	if !errors.Is(res.Err, boom) {
		t.Errorf("Expected wrapped unit error, got %v", res.Err)
	}
	if !reflect.DeepEqual(res.Ran, []string{"first", "second"}) {
		t.Errorf("Unexpected ran list %v", res.Ran)
	}
}

func TestRunnerRunsAllInOrder(t *testing.T) {
	var calls []string
	r := NewRunner([]Unit{
		recordingUnit("a", &calls, nil),
		recordingUnit("b", &calls, nil),
		recordingUnit("c", &calls, nil),
	}, zaptest.NewLogger(t))

	res := r.Run(context.Background())

	if res.State != StateDone || res.Err != nil {
		t.Fatalf("Expected done without error, got %s %v", res.State, res.Err)
	}
	if !reflect.DeepEqual(calls, []string{"a", "b", "c"}) {
		t.Errorf("Unexpected order %v", calls)
	}
}

func TestRunnerEmpty(t *testing.T) {
	res := NewRunner(nil, zaptest.NewLogger(t)).Run(context.Background())
	if res.State != StateDone || res.Err != nil || len(res.Ran) != 0 {
		t.Errorf("Unexpected result for empty batch: %+v", res)
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	var calls []string
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewRunner([]Unit{recordingUnit("a", &calls, nil)}, zaptest.NewLogger(t)).Run(ctx)

	if len(calls) != 0 {
		t.Errorf("Expected no units to run, got %v", calls)
	}
	if res.State != StateHalt || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Expected halt with context.Canceled, got %s %v", res.State, res.Err)
	}
}

// The test binary re-executes itself as the subprocess.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("BATCH_HELPER_PROCESS") != "1" {
		return
	}
	os.Stdout.WriteString("helper " + os.Getenv("BATCH_HELPER_NAME") + "\n")
	if os.Getenv("BATCH_HELPER_FAIL") == "1" {
		os.Exit(3)
	}
	os.Exit(0)
}

func helperUnit(name string, fail bool, out *bytes.Buffer) CommandUnit {
	env := []string{"BATCH_HELPER_PROCESS=1", "BATCH_HELPER_NAME=" + name}
	if fail {
		env = append(env, "BATCH_HELPER_FAIL=1")
	}
	return CommandUnit{
		UnitName: name,
		Path:     os.Args[0],
		Args:     []string{"-test.run=TestHelperProcess"},
		Env:      env,
		Stdout:   out,
		Stderr:   out,
	}
}

func TestCommandUnitsHaltOnNonZeroExit(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner([]Unit{
		helperUnit("one", false, &out),
		helperUnit("two", true, &out),
		helperUnit("three", false, &out),
	}, zaptest.NewLogger(t))

	res := r.Run(context.Background())

	if res.Failed != "two" {
		t.Fatalf("Expected unit two to fail, got %+v", res)
	}
	var exitErr *exec.ExitError
	if !errors.As(res.Err, &exitErr) || exitErr.ExitCode() != 3 {
		t.Errorf("Expected exit code 3, got %v", res.Err)
	}

	got := out.String()
	if !bytes.Contains(out.Bytes(), []byte("helper one")) || !bytes.Contains(out.Bytes(), []byte("helper two")) {
		t.Errorf("Expected first two helpers to run, output:\n%s", got)
	}
	if bytes.Contains(out.Bytes(), []byte("helper three")) {
		t.Errorf("Expected third helper not to run, output:\n%s", got)
	}
}
