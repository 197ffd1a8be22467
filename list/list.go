// Package list implements a circular doubly linked list. The list owns a
// sentinel element whose next and prev point back at itself when the list is
// empty, so insertion and removal never special-case the ends.
//
// It is container/list with a type parameter, plus the Empty and Each
// operations the netlink helpers use to hand back parsed records.
package list

// Element is an element of a List.
type Element[T any] struct {
	next, prev *Element[T]
	list       *List[T]

	Value T
}

// Next returns the next element, or nil at the end of the list.
func (e *Element[T]) Next() *Element[T] {
	if p := e.next; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// Prev returns the previous element, or nil at the front of the list.
func (e *Element[T]) Prev() *Element[T] {
	if p := e.prev; e.list != nil && p != &e.list.root {
		return p
	}
	return nil
}

// List is a circular doubly linked list. The zero value is an empty list
// ready to use.
type List[T any] struct {
	root Element[T]
	len  int
}

// New returns an initialized list.
func New[T any]() *List[T] { return new(List[T]).Init() }

// Init initializes or clears l.
func (l *List[T]) Init() *List[T] {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

func (l *List[T]) lazyInit() {
	if l.root.next == nil {
		l.Init()
	}
}

// Empty reports whether the sentinel points back at itself.
func (l *List[T]) Empty() bool {
	return l.root.next == nil || l.root.next == &l.root
}

// Len returns the number of elements.
func (l *List[T]) Len() int { return l.len }

// Front returns the first element or nil.
func (l *List[T]) Front() *Element[T] {
	if l.Empty() {
		return nil
	}
	return l.root.next
}

// Back returns the last element or nil.
func (l *List[T]) Back() *Element[T] {
	if l.Empty() {
		return nil
	}
	return l.root.prev
}

func (l *List[T]) insert(e, at *Element[T]) *Element[T] {
	e.prev = at
	e.next = at.next
	e.prev.next = e
	e.next.prev = e
	e.list = l
	l.len++
	return e
}

// PushFront adds v at the head of the list.
func (l *List[T]) PushFront(v T) *Element[T] {
	l.lazyInit()
	return l.insert(&Element[T]{Value: v}, &l.root)
}

// PushBack adds v at the tail of the list.
func (l *List[T]) PushBack(v T) *Element[T] {
	l.lazyInit()
	return l.insert(&Element[T]{Value: v}, l.root.prev)
}

// Remove unlinks e from l if it is an element of l, and returns its value.
func (l *List[T]) Remove(e *Element[T]) T {
	if e.list == l {
		e.prev.next = e.next
		e.next.prev = e.prev
		e.next = nil
		e.prev = nil
		e.list = nil
		l.len--
	}
	return e.Value
}

// Each calls fn for every value from front to back until fn returns false.
// fn may remove the element it is called for.
func (l *List[T]) Each(fn func(v T) bool) {
	for e := l.Front(); e != nil; {
		next := e.Next()
		if !fn(e.Value) {
			return
		}
		e = next
	}
}

// Values returns the values in order.
func (l *List[T]) Values() []T {
	out := make([]T, 0, l.len)
	l.Each(func(v T) bool {
		out = append(out, v)
		return true
	})
	return out
}
