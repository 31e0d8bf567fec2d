package esp

import (
	"reflect"
	"testing"
)

func TestStoreDistinguishesAbsentFromEmpty(t *testing.T) {
	store := NewStore()
	store.Set("blank", NewEmpty())

	val, ok := store.Get("blank")
	if !ok {
		t.Fatalf("blank should be bound")
	}
	if !val.IsEmpty() {
		t.Fatalf("blank should hold empty, got %#v", val)
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatalf("missing should not be bound")
	}
}

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()
	store.Set("x", NewInt(1))
	store.Set("x", NewString("one"))

	val, _ := store.Get("x")
	if !val.Equal(NewString("one")) {
		t.Fatalf("expected overwrite, got %#v", val)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one entry, got %d", store.Len())
	}
}

func TestStoreNamesAreCaseSensitiveAndSorted(t *testing.T) {
	store := NewStore()
	store.Set("b", NewInt(1))
	store.Set("B", NewInt(2))
	store.Set("a", NewInt(3))

	want := []string{"B", "a", "b"}
	if got := store.Names(); !reflect.DeepEqual(got, want) {
		t.Fatalf("names = %v, want %v", got, want)
	}
}

func TestStoreCloneIsIndependent(t *testing.T) {
	store := NewStore()
	store.Set("x", NewInt(1))
	clone := store.Clone()
	clone.Set("x", NewInt(2))
	store.Clear()

	if store.Len() != 0 {
		t.Fatalf("clear left %d entries", store.Len())
	}
	val, ok := clone.Get("x")
	if !ok || !val.Equal(NewInt(2)) {
		t.Fatalf("clone lost its value: %#v", val)
	}
}
