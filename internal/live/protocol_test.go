package live

import "testing"

func TestClientSent(t *testing.T) {
	accepted := []string{
		TypePointerDown, TypePointerMove, TypePointerUp,
		TypePinchStart, TypePinchMove, TypePinchEnd,
		TypeToolSelect, TypeTextPlace, TypeTextUpdate,
		TypeDelete, TypeUndo, TypeRedo, TypeClear, TypeSave,
	}
	for _, typ := range accepted {
		if !clientSent(typ) {
			t.Errorf("clientSent(%q) = false, want true", typ)
		}
	}

	// Server-emitted and unknown types never cross the read pump.
	rejected := []string{
		TypeWelcome, TypeSceneUpdate, TypeSessionState,
		TypeSaveOK, TypeSaveFailed, TypeError, "scene.mutate", "",
	}
	for _, typ := range rejected {
		if clientSent(typ) {
			t.Errorf("clientSent(%q) = true, want false", typ)
		}
	}
}
