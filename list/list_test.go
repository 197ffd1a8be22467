package list_test

import (
	"testing"

	"github.com/go-test/deep"

	"github.com/m-lab/netlinkx/list"
)

func TestEmpty(t *testing.T) {
	var zero list.List[int]
	if !zero.Empty() || zero.Len() != 0 || zero.Front() != nil || zero.Back() != nil {
		t.Error("Zero value should be an empty list")
	}
	l := list.New[int]()
	if !l.Empty() {
		t.Error("New list should be empty")
	}
	l.Each(func(int) bool {
		t.Error("Each should not call fn on an empty list")
		return true
	})
}

func TestPushAndIterate(t *testing.T) {
	var l list.List[string]
	l.PushBack("b")
	l.PushFront("a")
	l.PushBack("c")
	if l.Empty() || l.Len() != 3 {
		t.Fatal("Expected 3 elements, got", l.Len())
	}
	if diff := deep.Equal(l.Values(), []string{"a", "b", "c"}); diff != nil {
		t.Error(diff)
	}
	if l.Front().Value != "a" || l.Back().Value != "c" {
		t.Error("Bad ends", l.Front().Value, l.Back().Value)
	}
	var back []string
	for e := l.Back(); e != nil; e = e.Prev() {
		back = append(back, e.Value)
	}
	if diff := deep.Equal(back, []string{"c", "b", "a"}); diff != nil {
		t.Error(diff)
	}
}

func TestRemove(t *testing.T) {
	l := list.New[int]()
	e1 := l.PushBack(1)
	e2 := l.PushBack(2)
	l.PushBack(3)

	if v := l.Remove(e2); v != 2 {
		t.Error("Remove should return the value, got", v)
	}
	if diff := deep.Equal(l.Values(), []int{1, 3}); diff != nil {
		t.Error(diff)
	}
	// Removing twice, or from another list, is a no-op.
	l.Remove(e2)
	other := list.New[int]()
	other.Remove(e1)
	if l.Len() != 2 || other.Len() != 0 {
		t.Error("Bad lengths", l.Len(), other.Len())
	}
	if e2.Next() != nil || e2.Prev() != nil {
		t.Error("Removed element should be detached")
	}

	l.Remove(l.Front())
	l.Remove(l.Front())
	if !l.Empty() || l.Len() != 0 {
		t.Error("List should be empty")
	}
}

func TestEachRemoveAndStop(t *testing.T) {
	l := list.New[int]()
	elems := map[int]*list.Element[int]{}
	for i := 0; i < 6; i++ {
		elems[i] = l.PushBack(i)
	}
	l.Each(func(v int) bool {
		if v%2 == 0 {
			l.Remove(elems[v])
		}
		return true
	})
	if diff := deep.Equal(l.Values(), []int{1, 3, 5}); diff != nil {
		t.Error(diff)
	}

	var seen []int
	l.Each(func(v int) bool {
		seen = append(seen, v)
		return v < 3
	})
	if diff := deep.Equal(seen, []int{1, 3}); diff != nil {
		t.Error(diff)
	}

	l.Init()
	if !l.Empty() {
		t.Error("Init should clear the list")
	}
}
