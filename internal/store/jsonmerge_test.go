package store

import "testing"

func TestMergePatchDeletesNullKeys(t *testing.T) {
	base := []byte(`{"name":"bot","likes":"go","mood":"content"}`)
	patch := []byte(`{"likes":null}`)

	got, err := MergePatch(base, patch)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	if containsAny(string(got), `"likes"`) {
		t.Errorf("expected likes key deleted, got %s", got)
	}
	if !containsAny(string(got), `"name":"bot"`) || !containsAny(string(got), `"mood":"content"`) {
		t.Errorf("expected untouched keys preserved, got %s", got)
	}
}

func TestMergePatchOverwritesExistingKey(t *testing.T) {
	base := []byte(`{"mood":"content"}`)
	patch := []byte(`{"mood":"curious"}`)

	got, err := MergePatch(base, patch)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	if !containsAny(string(got), `"mood":"curious"`) {
		t.Errorf("expected mood overwritten, got %s", got)
	}
}

func TestMergePatchAddsNewKey(t *testing.T) {
	base := []byte(`{}`)
	patch := []byte(`{"name":"bot"}`)

	got, err := MergePatch(base, patch)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	if !containsAny(string(got), `"name":"bot"`) {
		t.Errorf("expected name key added, got %s", got)
	}
}

func TestMergePatchEmptyBase(t *testing.T) {
	got, err := MergePatch(nil, []byte(`{"name":"bot"}`))
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	if !containsAny(string(got), `"name":"bot"`) {
		t.Errorf("expected name key on empty base, got %s", got)
	}
}

func TestMergePatchIsShallowNotRecursive(t *testing.T) {
	base := []byte(`{"prefs":{"theme":"dark","lang":"en"}}`)
	patch := []byte(`{"prefs":{"theme":"light"}}`)

	got, err := MergePatch(base, patch)
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	// one-level-deep merge replaces the whole "prefs" object — "lang" does
	// not survive, since the patch value for "prefs" is not itself merged.
	if containsAny(string(got), `"lang"`) {
		t.Errorf("expected nested object fully replaced (shallow merge), got %s", got)
	}
	if !containsAny(string(got), `"theme":"light"`) {
		t.Errorf("expected replaced theme, got %s", got)
	}
}
