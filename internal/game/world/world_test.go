package world

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/midgard-geom/pkg/brep"
	"github.com/Faultbox/midgard-geom/pkg/formats"
	"github.com/Faultbox/midgard-geom/pkg/math"
	"github.com/Faultbox/midgard-geom/pkg/meshops"
)

func TestManager_LoadMap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "field.brep")
	if err := formats.EncodeBrepFile(path, "field", gridMesh(t, 2, 2, nil)); err != nil {
		t.Fatal(err)
	}

	mgr := NewManager()
	if err := mgr.LoadMap(path); err != nil {
		t.Fatalf("LoadMap: %v", err)
	}
	if mgr.IsLoading() {
		t.Error("manager still loading")
	}

	cur := mgr.Current()
	if cur == nil || cur.Name != "field" {
		t.Fatalf("current map = %+v", cur)
	}
	if n := cur.Mesh.Faces().Len(); n != 8 {
		t.Errorf("faces = %d, want 8", n)
	}

	agent := cur.Spawn(math.Vec3{X: 1.5, Z: 0.2})
	if agent == nil || agent.Face == nil {
		t.Fatal("spawn failed")
	}
}

func TestManager_LoadMapMissing(t *testing.T) {
	mgr := NewManager()
	if err := mgr.LoadMap(filepath.Join(t.TempDir(), "missing.brep")); err == nil {
		t.Fatal("expected error")
	}
	if mgr.Current() != nil {
		t.Error("failed load should not replace the current map")
	}
}

func TestNewMap_RequiresPositions(t *testing.T) {
	m := brep.New()
	m.AppendFace(m.AppendVertex(), m.AppendVertex(), m.AppendVertex())

	_, err := NewMap("bare", m)
	if !errors.Is(err, brep.ErrAttributeNotFound) {
		t.Errorf("err = %v, want ErrAttributeNotFound", err)
	}

	if _, err := brep.Emplace[math.Vec3](m.Vertices().Attributes(), meshops.AttrPosition); err != nil {
		t.Fatal(err)
	}
	if _, err := NewMap("bare", m); err != nil {
		t.Errorf("NewMap: %v", err)
	}
}

func TestMap_SpawnEmpty(t *testing.T) {
	m := brep.New()
	if _, err := brep.Emplace[math.Vec3](m.Vertices().Attributes(), meshops.AttrPosition); err != nil {
		t.Fatal(err)
	}
	wm, err := NewMap("empty", m)
	if err != nil {
		t.Fatal(err)
	}
	if a := wm.Spawn(math.Vec3{}); a != nil {
		t.Errorf("spawn on empty map = %+v, want nil", a)
	}
}
