package stack_test

import (
	"testing"

	"github.com/viafanasyev/stack-machine/internal/stack"
)

func TestPushPop(t *testing.T) {
	s := stack.New[float64]()
	if s.Size() != 0 {
		t.Fatalf("new stack size = %d, want 0", s.Size())
	}
	s.Push(1)
	s.Push(2)
	s.Push(3)
	if s.Size() != 3 {
		t.Fatalf("size = %d, want 3", s.Size())
	}
	top, err := s.Top()
	if err != nil || top != 3 {
		t.Fatalf("top = %v, %v, want 3, nil", top, err)
	}
	for _, want := range []float64{3, 2, 1} {
		got, err := s.Pop()
		if err != nil {
			t.Fatalf("Pop: %v", err)
		}
		if got != want {
			t.Fatalf("Pop = %v, want %v", got, want)
		}
	}
}

func TestUnderflow(t *testing.T) {
	s := stack.New[int32]()
	if _, err := s.Pop(); err != stack.ErrUnderflow {
		t.Fatalf("Pop on empty stack: %v, want ErrUnderflow", err)
	}
	if _, err := s.Top(); err != stack.ErrUnderflow {
		t.Fatalf("Top on empty stack: %v, want ErrUnderflow", err)
	}
}

func TestGuardedVerify(t *testing.T) {
	g := stack.NewGuarded[float64]()
	g.Push(1.5)
	g.Push(2.5)
	if !g.Verify() {
		t.Fatal("Verify() = false after normal pushes")
	}
	if _, err := g.Pop(); err != nil {
		t.Fatalf("Pop: %v", err)
	}
	if !g.Verify() {
		t.Fatal("Verify() = false after normal pop")
	}
}
