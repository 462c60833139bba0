package forms

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFieldValidatorOnlyLastInputLands(t *testing.T) {
	var mu sync.Mutex
	var checked []string
	check := func(ctx context.Context, v string) FieldState {
		mu.Lock()
		checked = append(checked, v)
		mu.Unlock()
		return FieldState{Status: FieldValid}
	}

	f := NewFieldValidator(50*time.Millisecond, nil, check, nil)
	defer f.Close()

	for _, v := range []string{"a", "al", "ali", "alic", "alice"} {
		f.Input(v)
	}
	require.Equal(t, FieldChecking, f.State().Status)

	require.Eventually(t, func() bool { return f.State().Status == FieldValid }, time.Second, 5*time.Millisecond)
	require.Equal(t, "alice", f.State().Value)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"alice"}, checked)
}

func TestFieldValidatorDropsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan string, 2)
	check := func(ctx context.Context, v string) FieldState {
		started <- v
		if v == "slow" {
			<-release
			return FieldState{Status: FieldUnavailable, Reason: "taken"}
		}
		return FieldState{Status: FieldValid}
	}

	f := NewFieldValidator(10*time.Millisecond, nil, check, nil)
	defer f.Close()

	f.Input("slow")
	require.Equal(t, "slow", <-started)

	f.Input("fast")
	require.Equal(t, "fast", <-started)
	require.Eventually(t, func() bool { return f.State().Status == FieldValid }, time.Second, 5*time.Millisecond)

	close(release)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, FieldValid, f.State().Status)
	require.Equal(t, "fast", f.State().Value)
}

func TestFieldValidatorCloseDropsInFlightResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	check := func(ctx context.Context, v string) FieldState {
		close(started)
		<-release
		return FieldState{Status: FieldValid}
	}

	f := NewFieldValidator(10*time.Millisecond, nil, check, nil)
	f.Input("alice")
	<-started

	f.Close()
	close(release)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, FieldChecking, f.State().Status)
}

func TestFieldValidatorLocalAndEmpty(t *testing.T) {
	var changes []FieldStatus
	f := NewFieldValidator(time.Hour, localUsername, func(context.Context, string) FieldState {
		t.Fatal("remote check must not run")
		return FieldState{}
	}, func(s FieldState) { changes = append(changes, s.Status) })
	defer f.Close()

	f.Input("A!")
	require.Equal(t, FieldInvalid, f.State().Status)
	require.NotEmpty(t, f.State().Reason)

	f.Input("")
	require.Equal(t, FieldIdle, f.State().Status)
	require.Equal(t, []FieldStatus{FieldInvalid, FieldIdle}, changes)
}

func TestRequireValid(t *testing.T) {
	f := NewFieldValidator(time.Hour, nil, func(context.Context, string) FieldState { return FieldState{} }, nil)
	defer f.Close()

	err := RequireValid("email", f)
	require.EqualError(t, err, "email is required")

	f.Input("x@y.com")
	require.EqualError(t, RequireValid("email", f), "email still checking")

	f.mu.Lock()
	f.state = FieldState{Status: FieldUnavailable, Reason: "is already registered"}
	f.mu.Unlock()
	require.EqualError(t, RequireValid("email", f), "email is already registered")

	f.mu.Lock()
	f.state = FieldState{Status: FieldValid}
	f.mu.Unlock()
	require.NoError(t, RequireValid("email", f))
}

func TestFieldStatusString(t *testing.T) {
	require.Equal(t, "idle", FieldIdle.String())
	require.Equal(t, "checking", FieldChecking.String())
	require.Equal(t, "unavailable", FieldUnavailable.String())
}
