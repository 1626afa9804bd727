package brep

import (
	"errors"
	"reflect"
	"testing"
)

func TestAttributeMap_EmplaceLookup(t *testing.T) {
	m := New()
	m.AppendVertex()
	m.AppendVertex()
	attrs := m.Vertices().Attributes()

	pos, err := Emplace[[3]float32](attrs, "position")
	if err != nil {
		t.Fatalf("Emplace: %v", err)
	}
	if pos.Len() != 2 {
		t.Errorf("len = %d, want 2", pos.Len())
	}
	pos.Set(1, [3]float32{1, 2, 3})

	got, err := Lookup[[3]float32](attrs, "position")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.At(1) != [3]float32{1, 2, 3} {
		t.Errorf("value = %v", got.At(1))
	}
	if got.Type() != reflect.TypeFor[[3]float32]() {
		t.Errorf("type = %v", got.Type())
	}

	m.AppendVertex()
	if pos.Len() != 3 {
		t.Errorf("len after append = %d, want 3", pos.Len())
	}
}

func TestAttributeMap_Errors(t *testing.T) {
	var attrs AttributeMap

	tests := []struct {
		name string
		run  func() error
		want error
	}{
		{"lookup missing", func() error { _, err := Lookup[int](&attrs, "missing"); return err }, ErrAttributeNotFound},
		{"lookup wrong type", func() error { _, err := Lookup[string](&attrs, "count"); return err }, ErrAttributeType},
		{"emplace existing", func() error { _, err := Emplace[int](&attrs, "count"); return err }, ErrAttributeExists},
		{"ensure wrong type", func() error { _, err := Ensure[float64](&attrs, "count"); return err }, ErrAttributeType},
	}

	if _, err := Emplace[int](&attrs, "count"); err != nil {
		t.Fatal(err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAttributeMap_EnsureRemoveNames(t *testing.T) {
	var attrs AttributeMap

	a, err := Ensure[uint8](&attrs, "material")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Ensure[uint8](&attrs, "material")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("Ensure created a second attribute")
	}

	if _, err := Emplace[float32](&attrs, "area"); err != nil {
		t.Fatal(err)
	}
	if names := attrs.Names(); len(names) != 2 || names[0] != "area" || names[1] != "material" {
		t.Errorf("names = %v", names)
	}

	if !attrs.Remove("area") {
		t.Error("Remove returned false")
	}
	if attrs.Remove("area") {
		t.Error("second Remove returned true")
	}
	if attrs.Contains("area") || attrs.Len() != 1 {
		t.Error("attribute not removed")
	}
}
